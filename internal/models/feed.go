package models

import "time"

// FeedEventKind — тип изменения, пришедшего по каналу уведомлений.
type FeedEventKind string

const (
	FeedCommentCreated  FeedEventKind = "comment_created"
	FeedCommentUpdated  FeedEventKind = "comment_updated"
	FeedCommentDeleted  FeedEventKind = "comment_deleted"
	FeedReactionChanged FeedEventKind = "reaction_changed"
)

// FeedEvent — уведомление об удалённом изменении в области ContentID.
// Содержимое события на перестроение не влияет (только триггер), кроме
// FeedCommentDeleted: его CommentID попадает в надгробия сессии.
type FeedEvent struct {
	ContentID string        `json:"content_id"`
	Kind      FeedEventKind `json:"kind"`
	CommentID string        `json:"comment_id,omitempty"`
	At        time.Time     `json:"at"`
}
