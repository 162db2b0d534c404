package models

import "time"

// ReportReason — причина жалобы (закрытое перечисление).
type ReportReason string

const (
	ReasonSpam           ReportReason = "spam"
	ReasonHarassment     ReportReason = "harassment"
	ReasonInappropriate  ReportReason = "inappropriate"
	ReasonMisinformation ReportReason = "misinformation"
	ReasonOther          ReportReason = "other"
)

// Report — жалоба на комментарий.
type Report struct {
	ID         string       `json:"id"`
	TargetID   string       `json:"target_id"         validate:"required"`
	ReporterID string       `json:"reporter_id"       validate:"required"`
	Reason     ReportReason `json:"reason"            validate:"required,oneof=spam harassment inappropriate misinformation other"`
	Details    string       `json:"details,omitempty" validate:"omitempty,max=1000"`
	CreatedAt  time.Time    `json:"created_at"`
}

// ModerationState — пер-зрительское состояние модерации.
// HiddenIDs — объединение локального кеша и удалённого списка (без дублей).
type ModerationState struct {
	HiddenIDs        []string `json:"hidden_ids"`
	AutoHideOnReport bool     `json:"auto_hide_on_report"`
}
