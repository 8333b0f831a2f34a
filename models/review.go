package models

import "time"

// Reviewer recommendations / decision values
const (
	VerdictAccept      = "accept"
	VerdictMinorRevise = "minor_revise"
	VerdictMajorRevise = "major_revise"
	VerdictDecline     = "decline"
)

// Review is one reviewer's seat on a submission: created at assignment,
// filled in when the reviewer records a verdict. Unique per
// (submission, reviewer); verdict writes overwrite.
type Review struct {
	ReviewID       int        `gorm:"primaryKey;column:review_id" json:"review_id"`
	TenantID       int        `gorm:"column:tenant_id" json:"tenant_id"`
	SubmissionID   int        `gorm:"column:submission_id;uniqueIndex:uq_submission_reviewer" json:"submission_id"`
	ReviewerID     int        `gorm:"column:reviewer_id;uniqueIndex:uq_submission_reviewer" json:"reviewer_id"`
	ReviewerRole   string     `gorm:"column:reviewer_role" json:"reviewer_role"`
	Recommendation *string    `gorm:"column:recommendation" json:"recommendation,omitempty"`
	Comments       *string    `gorm:"column:comments" json:"comments,omitempty"`
	Feedback       *string    `gorm:"column:feedback" json:"feedback,omitempty"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

// Decision is the single binding outcome of a submission, issued by the
// assigned main reviewer while the submission is under review.
type Decision struct {
	DecisionID     int       `gorm:"primaryKey;column:decision_id" json:"decision_id"`
	TenantID       int       `gorm:"column:tenant_id" json:"tenant_id"`
	SubmissionID   int       `gorm:"column:submission_id;uniqueIndex" json:"submission_id"`
	DecidedBy      int       `gorm:"column:decided_by" json:"decided_by"`
	Decision       string    `gorm:"column:decision" json:"decision"`
	Rationale      *string   `gorm:"column:rationale" json:"rationale,omitempty"`
	DecisionLetter *string   `gorm:"column:decision_letter" json:"decision_letter,omitempty"`
	ConditionsText *string   `gorm:"column:conditions_text" json:"conditions_text,omitempty"`
	DecidedAt      time.Time `gorm:"column:decided_at" json:"decided_at"`

	Decider *User `gorm:"foreignKey:DecidedBy" json:"decider,omitempty"`
}

// TableName overrides
func (Review) TableName() string {
	return "reviews"
}

func (Decision) TableName() string {
	return "decisions"
}
