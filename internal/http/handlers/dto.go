package handlers

import "github.com/pribylovaa/discussion-service/internal/models"

type openSessionRequest struct {
	ContentID string `json:"content_id"`
}

type sessionResponse struct {
	SessionID string       `json:"session_id"`
	ViewerID  string       `json:"viewer_id,omitempty"`
	View      *models.View `json:"view"`
}

type switchContentRequest struct {
	ContentID string `json:"content_id"`
}

type moderationRequest struct {
	AutoHideOnReport *bool `json:"auto_hide_on_report"`
}

type submitCommentRequest struct {
	ParentID string `json:"parent_id,omitempty"`
	Body     string `json:"body"`
}

type reportRequest struct {
	Reason  models.ReportReason `json:"reason"`
	Details string              `json:"details,omitempty"`
}

type collapseResponse struct {
	CommentID string `json:"comment_id"`
	Collapsed bool   `json:"collapsed"`
}

type reactionResponse struct {
	CommentID string `json:"comment_id"`
	models.Reaction
}

type draftResponse struct {
	ParentID string `json:"parent_id"`
	Body     string `json:"body"`
	Found    bool   `json:"found"`
}
