package services

import (
	"errors"
	"strings"
	"time"

	"ethics-review-api/models"

	"gorm.io/gorm"
)

// FormService owns a board's form definition: ordered sections, questions,
// and the conditional-display rules between questions. It is independent of
// submissions; submissions reference it for validation and visibility.
type FormService struct {
	db *gorm.DB
}

// NewFormService creates a FormService backed by the given database.
func NewFormService(db *gorm.DB) *FormService {
	return &FormService{db: db}
}

// SectionInput carries the fields for creating or updating a section.
type SectionInput struct {
	SectionName  string
	Slug         string
	DisplayOrder int
}

// CreateSection adds a form section to a board.
func (s *FormService) CreateSection(actor Actor, boardID int, input *SectionInput) (*models.QuestionSection, error) {
	if input.SectionName == "" {
		return nil, validationErr("section name is required")
	}
	if err := s.boardExists(actor, boardID); err != nil {
		return nil, err
	}

	section := models.QuestionSection{
		TenantID:     actor.TenantID,
		BoardID:      boardID,
		SectionName:  input.SectionName,
		Slug:         input.Slug,
		DisplayOrder: input.DisplayOrder,
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// UpdateSection updates a section's name, slug, or position.
func (s *FormService) UpdateSection(actor Actor, sectionID int, input *SectionInput) (*models.QuestionSection, error) {
	var section models.QuestionSection
	if err := s.db.Where("section_id = ? AND tenant_id = ?", sectionID, actor.TenantID).
		First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("section %d not found", sectionID)
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"display_order": input.DisplayOrder,
		"updated_at":    now,
	}
	if input.SectionName != "" {
		updates["section_name"] = input.SectionName
	}
	if input.Slug != "" {
		updates["slug"] = input.Slug
	}
	if err := s.db.Model(&models.QuestionSection{}).
		Where("section_id = ?", section.SectionID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.First(&section, section.SectionID).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// ListSections returns a board's sections in display order.
func (s *FormService) ListSections(actor Actor, boardID int) ([]models.QuestionSection, error) {
	if err := s.boardExists(actor, boardID); err != nil {
		return nil, err
	}
	var sections []models.QuestionSection
	if err := s.db.Where("board_id = ?", boardID).
		Order("display_order ASC, section_id ASC").Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

// ConditionInput is one visibility rule on a question.
type ConditionInput struct {
	DependsOnQuestionID int    `json:"depends_on_question_id"`
	Operator            string `json:"operator"`
	CompareValue        string `json:"compare_value"`
}

// QuestionInput carries the fields for creating or updating a question.
// Conditions is a pointer so updates can distinguish "leave untouched" (nil)
// from "replace with this list" — an empty non-nil slice clears all
// conditions.
type QuestionInput struct {
	SectionID    int               `json:"section_id"`
	QuestionText string            `json:"question_text"`
	QuestionType string            `json:"question_type"`
	Options      *string           `json:"options"`
	IsRequired   bool              `json:"is_required"`
	DisplayOrder int               `json:"display_order"`
	AppliesTo    string            `json:"applies_to"`
	Conditions   *[]ConditionInput `json:"conditions"`
}

// CreateQuestion adds a question to a board, optionally with conditions.
func (s *FormService) CreateQuestion(actor Actor, boardID int, input *QuestionInput) (*models.Question, error) {
	if input.QuestionText == "" {
		return nil, validationErr("question text is required")
	}
	if !validQuestionType(input.QuestionType) {
		return nil, validationErr("invalid question type: %s", input.QuestionType)
	}
	appliesTo := input.AppliesTo
	if appliesTo == "" {
		appliesTo = models.AppliesToSubmission
	}
	if !validAppliesTo(appliesTo) {
		return nil, validationErr("invalid applies_to: %s", appliesTo)
	}
	if err := s.boardExists(actor, boardID); err != nil {
		return nil, err
	}

	var section models.QuestionSection
	if err := s.db.Where("section_id = ?", input.SectionID).First(&section).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("section %d not found", input.SectionID)
		}
		return nil, err
	}
	if section.BoardID != boardID {
		return nil, validationErr("section %d belongs to a different board", input.SectionID)
	}

	question := models.Question{
		TenantID:     actor.TenantID,
		BoardID:      boardID,
		SectionID:    input.SectionID,
		QuestionText: input.QuestionText,
		QuestionType: input.QuestionType,
		Options:      input.Options,
		IsRequired:   input.IsRequired,
		DisplayOrder: input.DisplayOrder,
		AppliesTo:    appliesTo,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		if input.Conditions != nil {
			return s.replaceConditions(tx, &question, *input.Conditions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuestion(actor, question.QuestionID)
}

// UpdateQuestion updates a question in place. A nil Conditions pointer leaves
// the existing conditions untouched; a non-nil pointer fully replaces them,
// so an explicitly empty list clears every condition.
func (s *FormService) UpdateQuestion(actor Actor, questionID int, input *QuestionInput) (*models.Question, error) {
	question, err := s.GetQuestion(actor, questionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if input.QuestionText != "" {
		updates["question_text"] = input.QuestionText
	}
	if input.QuestionType != "" {
		if !validQuestionType(input.QuestionType) {
			return nil, validationErr("invalid question type: %s", input.QuestionType)
		}
		updates["question_type"] = input.QuestionType
	}
	if input.AppliesTo != "" {
		if !validAppliesTo(input.AppliesTo) {
			return nil, validationErr("invalid applies_to: %s", input.AppliesTo)
		}
		updates["applies_to"] = input.AppliesTo
	}
	if input.SectionID != 0 && input.SectionID != question.SectionID {
		var section models.QuestionSection
		if err := s.db.Where("section_id = ?", input.SectionID).First(&section).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFoundErr("section %d not found", input.SectionID)
			}
			return nil, err
		}
		if section.BoardID != question.BoardID {
			return nil, validationErr("section %d belongs to a different board", input.SectionID)
		}
		updates["section_id"] = input.SectionID
	}
	if input.Options != nil {
		updates["options"] = *input.Options
	}
	updates["is_required"] = input.IsRequired
	if input.DisplayOrder != 0 {
		updates["display_order"] = input.DisplayOrder
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Question{}).
			Where("question_id = ?", question.QuestionID).
			Updates(updates).Error; err != nil {
			return err
		}
		if input.Conditions != nil {
			return s.replaceConditions(tx, question, *input.Conditions)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetQuestion(actor, questionID)
}

// RetireQuestion deactivates a question. Historical submissions keep
// resolving it; it just stops appearing on new forms.
func (s *FormService) RetireQuestion(actor Actor, questionID int) error {
	question, err := s.GetQuestion(actor, questionID)
	if err != nil {
		return err
	}
	now := time.Now()
	return s.db.Model(&models.Question{}).
		Where("question_id = ?", question.QuestionID).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now}).Error
}

// GetQuestion fetches a question with its conditions, scoped to the tenant.
func (s *FormService) GetQuestion(actor Actor, questionID int) (*models.Question, error) {
	var question models.Question
	if err := s.db.Preload("Conditions").
		Where("question_id = ? AND tenant_id = ?", questionID, actor.TenantID).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("question %d not found", questionID)
		}
		return nil, err
	}
	return &question, nil
}

// ListQuestionsInput filters the active questions of a board.
type ListQuestionsInput struct {
	SectionID *int
	AppliesTo string // submission | review; empty returns everything
}

// ListQuestions returns a board's active questions with conditions loaded,
// ordered for display. AppliesTo filtering includes questions marked "both".
func (s *FormService) ListQuestions(actor Actor, boardID int, input *ListQuestionsInput) ([]models.Question, error) {
	if err := s.boardExists(actor, boardID); err != nil {
		return nil, err
	}

	query := s.db.Preload("Conditions").
		Where("board_id = ? AND is_active = ?", boardID, true)
	if input != nil {
		if input.SectionID != nil {
			query = query.Where("section_id = ?", *input.SectionID)
		}
		switch input.AppliesTo {
		case "":
		case models.AppliesToSubmission, models.AppliesToReview:
			query = query.Where("applies_to IN ?", []string{input.AppliesTo, models.AppliesToBoth})
		default:
			return nil, validationErr("invalid applies_to filter: %s", input.AppliesTo)
		}
	}

	var questions []models.Question
	if err := query.Order("display_order ASC, question_id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// EvaluateVisibility computes which questions are visible against the given
// response set (answers keyed by question id). A question with no conditions
// is always visible; otherwise all of its conditions must hold.
func EvaluateVisibility(questions []models.Question, responses map[int]string) map[int]bool {
	visible := make(map[int]bool, len(questions))
	for _, q := range questions {
		visible[q.QuestionID] = questionVisible(&q, responses)
	}
	return visible
}

func questionVisible(q *models.Question, responses map[int]string) bool {
	for _, cond := range q.Conditions {
		answer := responses[cond.DependsOnQuestionID]
		if !conditionHolds(cond.Operator, answer, cond.CompareValue) {
			return false
		}
	}
	return true
}

func conditionHolds(operator, answer, compareValue string) bool {
	switch operator {
	case models.OperatorEquals:
		return answer == compareValue
	case models.OperatorNotEquals:
		return answer != compareValue
	case models.OperatorContains:
		return strings.Contains(answer, compareValue)
	case models.OperatorIsEmpty:
		return strings.TrimSpace(answer) == ""
	case models.OperatorIsNotEmpty:
		return strings.TrimSpace(answer) != ""
	}
	return false
}

// replaceConditions swaps a question's condition list wholesale after
// validating that every depends-on question exists on the same board.
func (s *FormService) replaceConditions(tx *gorm.DB, question *models.Question, inputs []ConditionInput) error {
	for _, in := range inputs {
		if !validOperator(in.Operator) {
			return validationErr("invalid condition operator: %s", in.Operator)
		}
		if in.DependsOnQuestionID == question.QuestionID {
			return validationErr("question cannot depend on itself")
		}
		var dep models.Question
		if err := tx.Where("question_id = ?", in.DependsOnQuestionID).First(&dep).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("depends-on question %d not found", in.DependsOnQuestionID)
			}
			return err
		}
		if dep.BoardID != question.BoardID {
			return validationErr("depends-on question %d belongs to a different board", in.DependsOnQuestionID)
		}
	}

	if err := tx.Where("question_id = ?", question.QuestionID).
		Delete(&models.QuestionCondition{}).Error; err != nil {
		return err
	}
	for _, in := range inputs {
		cond := models.QuestionCondition{
			QuestionID:          question.QuestionID,
			DependsOnQuestionID: in.DependsOnQuestionID,
			Operator:            in.Operator,
			CompareValue:        in.CompareValue,
			CreatedAt:           time.Now(),
		}
		if err := tx.Create(&cond).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *FormService) boardExists(actor Actor, boardID int) error {
	var count int64
	if err := s.db.Model(&models.Board{}).
		Where("board_id = ? AND tenant_id = ?", boardID, actor.TenantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFoundErr("board %d not found", boardID)
	}
	return nil
}

func validQuestionType(t string) bool {
	switch t {
	case models.QuestionTypeText, models.QuestionTypeTextarea, models.QuestionTypeSelect,
		models.QuestionTypeCheckbox, models.QuestionTypeDate, models.QuestionTypeNumber,
		models.QuestionTypeFile:
		return true
	}
	return false
}

func validAppliesTo(a string) bool {
	switch a {
	case models.AppliesToSubmission, models.AppliesToReview, models.AppliesToBoth:
		return true
	}
	return false
}

func validOperator(op string) bool {
	switch op {
	case models.OperatorEquals, models.OperatorNotEquals, models.OperatorContains,
		models.OperatorIsEmpty, models.OperatorIsNotEmpty:
		return true
	}
	return false
}
