package models

import "time"

// SubmissionHistory tracks every status transition of a submission.
// Rows are append-only; no update or delete path exists anywhere in the
// codebase.
type SubmissionHistory struct {
	HistoryID    int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	TenantID     int       `gorm:"column:tenant_id" json:"tenant_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	FromStatus   *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus     string    `gorm:"column:to_status" json:"to_status"`
	ChangedBy    int       `gorm:"column:changed_by" json:"changed_by"`
	Note         *string   `gorm:"column:note" json:"note,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName specifies the table for SubmissionHistory.
func (SubmissionHistory) TableName() string {
	return "submission_history"
}
