package models

import "time"

// SubmissionResponse stores one answer per (submission, question). The
// question text is snapshotted at write time so later question edits never
// change what a historical submission answered.
type SubmissionResponse struct {
	ResponseID    int        `gorm:"primaryKey;column:response_id" json:"response_id"`
	TenantID      int        `gorm:"column:tenant_id" json:"tenant_id"`
	SubmissionID  int        `gorm:"column:submission_id;uniqueIndex:uq_submission_question" json:"submission_id"`
	QuestionID    int        `gorm:"column:question_id;uniqueIndex:uq_submission_question" json:"question_id"`
	Answer        string     `gorm:"column:answer" json:"answer"`
	QuestionText  string     `gorm:"column:question_text" json:"question_text"`
	AIGenerated   bool       `gorm:"column:ai_generated" json:"ai_generated"`
	UserConfirmed bool       `gorm:"column:user_confirmed" json:"user_confirmed"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName specifies the table for SubmissionResponse.
func (SubmissionResponse) TableName() string {
	return "submission_responses"
}
