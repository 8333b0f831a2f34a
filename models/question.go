package models

import "time"

// Question types
const (
	QuestionTypeText     = "text"
	QuestionTypeTextarea = "textarea"
	QuestionTypeSelect   = "select"
	QuestionTypeCheckbox = "checkbox"
	QuestionTypeDate     = "date"
	QuestionTypeNumber   = "number"
	QuestionTypeFile     = "file"
)

// Question applicability (applies_to)
const (
	AppliesToSubmission = "submission"
	AppliesToReview     = "review"
	AppliesToBoth       = "both"
)

// Condition operators
const (
	OperatorEquals     = "equals"
	OperatorNotEquals  = "not_equals"
	OperatorContains   = "contains"
	OperatorIsEmpty    = "is_empty"
	OperatorIsNotEmpty = "is_not_empty"
)

// QuestionSection groups a board's questions into an ordered form section.
type QuestionSection struct {
	SectionID    int        `gorm:"primaryKey;column:section_id" json:"section_id"`
	TenantID     int        `gorm:"column:tenant_id" json:"tenant_id"`
	BoardID      int        `gorm:"column:board_id" json:"board_id"`
	SectionName  string     `gorm:"column:section_name" json:"section_name"`
	Slug         string     `gorm:"column:slug" json:"slug"`
	DisplayOrder int        `gorm:"column:display_order" json:"display_order"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// Question is a single form question attached to a board and section.
// Retired questions keep is_active=false so historical submissions can
// still resolve them; they are never physically deleted.
type Question struct {
	QuestionID   int        `gorm:"primaryKey;column:question_id" json:"question_id"`
	TenantID     int        `gorm:"column:tenant_id" json:"tenant_id"`
	BoardID      int        `gorm:"column:board_id" json:"board_id"`
	SectionID    int        `gorm:"column:section_id" json:"section_id"`
	QuestionText string     `gorm:"column:question_text" json:"question_text"`
	QuestionType string     `gorm:"column:question_type" json:"question_type"`
	Options      *string    `gorm:"column:options" json:"options,omitempty"` // JSON-encoded list for select/checkbox
	IsRequired   bool       `gorm:"column:is_required" json:"is_required"`
	DisplayOrder int        `gorm:"column:display_order" json:"display_order"`
	AppliesTo    string     `gorm:"column:applies_to" json:"applies_to"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreatedAt    time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    *time.Time `gorm:"column:updated_at" json:"updated_at"`

	Section    *QuestionSection    `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
	Conditions []QuestionCondition `gorm:"foreignKey:QuestionID;references:QuestionID" json:"conditions"`
}

// QuestionCondition gates a question's visibility on another question's
// answer. All conditions of a question must hold for it to be visible.
type QuestionCondition struct {
	ConditionID         int       `gorm:"primaryKey;column:condition_id" json:"condition_id"`
	QuestionID          int       `gorm:"column:question_id" json:"question_id"`
	DependsOnQuestionID int       `gorm:"column:depends_on_question_id" json:"depends_on_question_id"`
	Operator            string    `gorm:"column:operator" json:"operator"`
	CompareValue        string    `gorm:"column:compare_value" json:"compare_value"`
	CreatedAt           time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (QuestionSection) TableName() string {
	return "question_sections"
}

func (Question) TableName() string {
	return "questions"
}

func (QuestionCondition) TableName() string {
	return "question_conditions"
}
