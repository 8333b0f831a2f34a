package models

import "time"

// Submission statuses
const (
	StatusDraft             = "draft"
	StatusSubmitted         = "submitted"
	StatusInTriage          = "in_triage"
	StatusAssignedToMain    = "assigned_to_main"
	StatusUnderReview       = "under_review"
	StatusAccepted          = "accepted"
	StatusRevisionRequested = "revision_requested"
	StatusDeclined          = "declined"
)

// Submission types
const (
	SubmissionTypeStandard = "standard"
	SubmissionTypeExempt   = "exempt"
)

// Revision types (set when a decision requests revisions)
const (
	RevisionMinor = "minor"
	RevisionMajor = "major"
)

// File kinds for submission files
const (
	FileKindProtocol    = "protocol"
	FileKindConsentForm = "consent_form"
	FileKindSupporting  = "supporting"
)

// Submission is one version of an ethics review application. A revision
// spawns a new row via resubmission; the old row is kept as history.
type Submission struct {
	SubmissionID      int        `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	TenantID          int        `gorm:"column:tenant_id" json:"tenant_id"`
	BoardID           int        `gorm:"column:board_id" json:"board_id"`
	ProjectID         int        `gorm:"column:project_id" json:"project_id"`
	SubmitterID       int        `gorm:"column:submitter_id" json:"submitter_id"`
	SubmissionNumber  string     `gorm:"column:submission_number" json:"submission_number"`
	SubmissionType    string     `gorm:"column:submission_type" json:"submission_type"`
	Status            string     `gorm:"column:status" json:"status"`
	RevisionType      *string    `gorm:"column:revision_type" json:"revision_type,omitempty"`
	ProtocolFilePath  *string    `gorm:"column:protocol_file_path" json:"protocol_file_path,omitempty"`
	AISummary         *string    `gorm:"column:ai_summary" json:"ai_summary,omitempty"`
	AISummaryApproved bool       `gorm:"column:ai_summary_approved" json:"ai_summary_approved"`
	EscalatedFromID   *int       `gorm:"column:escalated_from_id" json:"escalated_from_id,omitempty"`
	Version           int        `gorm:"column:version" json:"version"`
	MainReviewerID    *int       `gorm:"column:main_reviewer_id" json:"main_reviewer_id,omitempty"`
	SubmittedAt       *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	DecidedAt         *time.Time `gorm:"column:decided_at" json:"decided_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updated_at"`

	Submitter    *User                `gorm:"foreignKey:SubmitterID" json:"submitter,omitempty"`
	MainReviewer *User                `gorm:"foreignKey:MainReviewerID" json:"main_reviewer,omitempty"`
	Board        *Board               `gorm:"foreignKey:BoardID;references:BoardID" json:"board,omitempty"`
	Files        []SubmissionFile     `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"files,omitempty"`
	Responses    []SubmissionResponse `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"responses,omitempty"`
	Reviews      []Review             `gorm:"foreignKey:SubmissionID;references:SubmissionID" json:"reviews,omitempty"`
}

// IsTerminal reports whether no further transitions exist for this row.
// revision_requested is terminal for the row itself; resubmission spawns
// a new row.
func (s *Submission) IsTerminal() bool {
	return s.Status == StatusAccepted || s.Status == StatusDeclined || s.Status == StatusRevisionRequested
}

// SubmissionFile references an uploaded document by its opaque storage
// locator. Binary storage itself is external.
type SubmissionFile struct {
	FileID       int       `gorm:"primaryKey;column:file_id" json:"file_id"`
	TenantID     int       `gorm:"column:tenant_id" json:"tenant_id"`
	SubmissionID int       `gorm:"column:submission_id" json:"submission_id"`
	FilePath     string    `gorm:"column:file_path" json:"file_path"`
	FileKind     string    `gorm:"column:file_kind" json:"file_kind"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	UploadedBy   int       `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// TableName overrides
func (Submission) TableName() string {
	return "submissions"
}

func (SubmissionFile) TableName() string {
	return "submission_files"
}
