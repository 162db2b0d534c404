package models

// LikeEdge — ребро «пользователь лайкнул комментарий». Само существование ребра = лайк.
type LikeEdge struct {
	CommentID string `json:"comment_id"`
	UserID    string `json:"user_id"`
}

// Reaction — агрегат по комментарию для конкретного зрителя.
type Reaction struct {
	Count       int  `json:"count"`
	ViewerLiked bool `json:"viewer_liked"`
}

// ReactionState — авторитетный ответ слоя данных на переключение лайка.
type ReactionState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Reaction приводит ответ сервера к виду агрегата.
func (s ReactionState) Reaction() Reaction {
	return Reaction{Count: s.Count, ViewerLiked: s.Liked}
}
