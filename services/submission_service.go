package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ethics-review-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionService is the workflow engine: it owns the submission state
// machine and coordinates the board registry, form definitions, reviews, and
// the history ledger. Every status change runs as a compare-and-set plus the
// matching history append inside one transaction, so concurrent writers lose
// with a precondition error instead of clobbering each other.
type SubmissionService struct {
	db     *gorm.DB
	boards *BoardService
	ai     AIAssist
}

// NewSubmissionService creates a SubmissionService. The AI adapter may be the
// disabled adapter; every AI call degrades to a soft no-op on failure.
func NewSubmissionService(db *gorm.DB, boards *BoardService, ai AIAssist) *SubmissionService {
	if ai == nil {
		ai = DisabledAIAssist{}
	}
	return &SubmissionService{db: db, boards: boards, ai: ai}
}

// statusTransitions is the full transition table. Escalation is absent on
// purpose: it forks a new submission from any source status and never moves
// the original row.
var statusTransitions = map[string][]string{
	models.StatusDraft:             {models.StatusSubmitted},
	models.StatusSubmitted:         {models.StatusInTriage, models.StatusDraft},
	models.StatusInTriage:          {models.StatusAssignedToMain},
	models.StatusAssignedToMain:    {models.StatusUnderReview},
	models.StatusUnderReview:       {models.StatusAccepted, models.StatusRevisionRequested, models.StatusDeclined},
	models.StatusAccepted:          {},
	models.StatusRevisionRequested: {},
	models.StatusDeclined:          {},
}

// CanTransition reports whether the transition table allows from -> to.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// transition performs the atomic status change: a compare-and-set against the
// expected current status plus the history append, both on tx. A losing
// concurrent writer gets a precondition error.
func (s *SubmissionService) transition(tx *gorm.DB, sub *models.Submission, to string, actor Actor, note *string, extra map[string]interface{}) error {
	if !CanTransition(sub.Status, to) {
		return preconditionErr("submission %d cannot move from %s to %s", sub.SubmissionID, sub.Status, to)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	for k, v := range extra {
		updates[k] = v
	}

	result := tx.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", sub.SubmissionID, sub.Status).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return preconditionErr("submission %d is no longer in status %s", sub.SubmissionID, sub.Status)
	}

	from := sub.Status
	history := models.SubmissionHistory{
		TenantID:     sub.TenantID,
		SubmissionID: sub.SubmissionID,
		FromStatus:   &from,
		ToStatus:     to,
		ChangedBy:    actor.UserID,
		Note:         note,
		CreatedAt:    now,
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}

	sub.Status = to
	sub.UpdatedAt = now
	return nil
}

// authorize resolves the actor's board roles once and checks them against the
// permission table. Platform admin and superuser bypass.
func (s *SubmissionService) authorize(actor Actor, boardID int, action Action) error {
	if actor.IsPrivileged() {
		return nil
	}
	roles, err := s.boards.RolesOf(boardID, actor.UserID)
	if err != nil {
		return err
	}
	if !roleAllowed(action, roles) {
		return forbiddenErr("user %d may not perform %s on board %d", actor.UserID, action, boardID)
	}
	return nil
}

// CreateSubmissionInput carries the fields for a new draft.
type CreateSubmissionInput struct {
	BoardID        int    `json:"board_id" binding:"required"`
	ProjectID      int    `json:"project_id" binding:"required"`
	SubmissionType string `json:"submission_type"`
}

// Create opens a new draft submission at version 1.
func (s *SubmissionService) Create(actor Actor, input *CreateSubmissionInput) (*models.Submission, error) {
	subType := input.SubmissionType
	if subType == "" {
		subType = models.SubmissionTypeStandard
	}
	if subType != models.SubmissionTypeStandard && subType != models.SubmissionTypeExempt {
		return nil, validationErr("invalid submission type: %s", subType)
	}

	board, err := s.boards.GetBoard(actor, input.BoardID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	submission := models.Submission{
		TenantID:         actor.TenantID,
		BoardID:          board.BoardID,
		ProjectID:        input.ProjectID,
		SubmitterID:      actor.UserID,
		SubmissionNumber: generateSubmissionNumber(subType),
		SubmissionType:   subType,
		Status:           models.StatusDraft,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

// generateSubmissionNumber builds a human-readable reference like
// ERB-2026-1a2b3c4d. Uniqueness comes from the uuid suffix.
func generateSubmissionNumber(submissionType string) string {
	prefix := "ERB"
	if submissionType == models.SubmissionTypeExempt {
		prefix = "ERX"
	}
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().Year(), suffix)
}

// Get fetches a submission scoped to the actor's tenant.
func (s *SubmissionService) Get(actor Actor, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Preload("Files").Preload("Responses").
		Where("submission_id = ? AND tenant_id = ?", submissionID, actor.TenantID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("submission %d not found", submissionID)
		}
		return nil, err
	}
	return &submission, nil
}

// getBare fetches a submission row without relations.
func (s *SubmissionService) getBare(actor Actor, submissionID int) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Where("submission_id = ? AND tenant_id = ?", submissionID, actor.TenantID).
		First(&submission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("submission %d not found", submissionID)
		}
		return nil, err
	}
	return &submission, nil
}

// ListSubmissionsInput filters the submission list.
type ListSubmissionsInput struct {
	BoardID *int
	Status  string
}

// List returns the submissions visible to the actor: their own, plus every
// submission on boards where they hold a role; privileged actors see the
// whole tenant.
func (s *SubmissionService) List(actor Actor, input *ListSubmissionsInput) ([]models.Submission, error) {
	query := s.db.Where("tenant_id = ?", actor.TenantID)

	if !actor.IsPrivileged() {
		var memberBoards []int
		if err := s.db.Model(&models.BoardMember{}).
			Where("user_id = ? AND is_active = ?", actor.UserID, true).
			Distinct().Pluck("board_id", &memberBoards).Error; err != nil {
			return nil, err
		}
		if len(memberBoards) > 0 {
			query = query.Where("submitter_id = ? OR board_id IN ?", actor.UserID, memberBoards)
		} else {
			query = query.Where("submitter_id = ?", actor.UserID)
		}
	}

	if input != nil {
		if input.BoardID != nil {
			query = query.Where("board_id = ?", *input.BoardID)
		}
		if input.Status != "" {
			query = query.Where("status = ?", input.Status)
		}
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

// UpdateDraftInput carries the mutable fields of a draft.
type UpdateDraftInput struct {
	SubmissionType   *string `json:"submission_type"`
	ProtocolFilePath *string `json:"protocol_file_path"`
}

// UpdateDraft edits submission metadata. Only the submitter may edit, and
// only while the row is still a draft.
func (s *SubmissionService) UpdateDraft(actor Actor, submissionID int, input *UpdateDraftInput) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		return nil, forbiddenErr("only the submitter may edit this submission")
	}
	if submission.Status != models.StatusDraft {
		return nil, preconditionErr("submission %d is not editable in status %s", submissionID, submission.Status)
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.SubmissionType != nil {
		if *input.SubmissionType != models.SubmissionTypeStandard && *input.SubmissionType != models.SubmissionTypeExempt {
			return nil, validationErr("invalid submission type: %s", *input.SubmissionType)
		}
		updates["submission_type"] = *input.SubmissionType
	}
	if input.ProtocolFilePath != nil {
		updates["protocol_file_path"] = *input.ProtocolFilePath
	}

	if err := s.db.Model(&models.Submission{}).
		Where("submission_id = ? AND status = ?", submission.SubmissionID, models.StatusDraft).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// ResponseInput is one answer to a form question.
type ResponseInput struct {
	QuestionID    int    `json:"question_id" binding:"required"`
	Answer        string `json:"answer"`
	UserConfirmed bool   `json:"user_confirmed"`
}

// SaveResponses upserts answers, one row per (submission, question), with the
// question text snapshotted at write time. The submitter writes while the row
// is a draft; assigned reviewers write review-applicable answers while the
// submission is under review.
func (s *SubmissionService) SaveResponses(actor Actor, submissionID int, inputs []ResponseInput) error {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return err
	}

	asSubmitter := submission.SubmitterID == actor.UserID
	if asSubmitter && submission.Status != models.StatusDraft {
		return preconditionErr("submission %d is not editable in status %s", submissionID, submission.Status)
	}
	if !asSubmitter && !actor.IsPrivileged() {
		assigned, err := s.isAssignedReviewer(submission.SubmissionID, actor.UserID)
		if err != nil {
			return err
		}
		if !assigned {
			return forbiddenErr("user %d may not answer for submission %d", actor.UserID, submissionID)
		}
		if submission.Status != models.StatusUnderReview {
			return preconditionErr("review answers require status %s", models.StatusUnderReview)
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, in := range inputs {
			var question models.Question
			if err := tx.Where("question_id = ? AND board_id = ?", in.QuestionID, submission.BoardID).
				First(&question).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundErr("question %d not found on board %d", in.QuestionID, submission.BoardID)
				}
				return err
			}
			if err := upsertResponse(tx, submission, &question, in.Answer, false, in.UserConfirmed); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertResponse(tx *gorm.DB, submission *models.Submission, question *models.Question, answer string, aiGenerated, userConfirmed bool) error {
	now := time.Now()
	var existing models.SubmissionResponse
	err := tx.Where("submission_id = ? AND question_id = ?", submission.SubmissionID, question.QuestionID).
		First(&existing).Error
	if err == nil {
		return tx.Model(&models.SubmissionResponse{}).
			Where("response_id = ?", existing.ResponseID).
			Updates(map[string]interface{}{
				"answer":         answer,
				"question_text":  question.QuestionText,
				"ai_generated":   aiGenerated,
				"user_confirmed": userConfirmed,
				"updated_at":     now,
			}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	response := models.SubmissionResponse{
		TenantID:      submission.TenantID,
		SubmissionID:  submission.SubmissionID,
		QuestionID:    question.QuestionID,
		Answer:        answer,
		QuestionText:  question.QuestionText,
		AIGenerated:   aiGenerated,
		UserConfirmed: userConfirmed,
		CreatedAt:     now,
	}
	return tx.Create(&response).Error
}

// AttachFileInput registers an uploaded document by its storage locator.
type AttachFileInput struct {
	FileKind     string `json:"file_kind" binding:"required"`
	OriginalName string `json:"original_name"`
	FilePath     string `json:"file_path"` // generated when empty; storage itself is external
}

// AttachFile records a file reference on a submission. The submitter,
// board members, and privileged actors may attach.
func (s *SubmissionService) AttachFile(actor Actor, submissionID int, input *AttachFileInput) (*models.SubmissionFile, error) {
	switch input.FileKind {
	case models.FileKindProtocol, models.FileKindConsentForm, models.FileKindSupporting:
	default:
		return nil, validationErr("invalid file kind: %s", input.FileKind)
	}

	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		roles, err := s.boards.RolesOf(submission.BoardID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if len(roles) == 0 {
			return nil, forbiddenErr("user %d may not attach files to submission %d", actor.UserID, submissionID)
		}
	}

	locator := input.FilePath
	if locator == "" {
		locator = fmt.Sprintf("submissions/%d/%s", submission.SubmissionID, uuid.NewString())
	}

	file := models.SubmissionFile{
		TenantID:     submission.TenantID,
		SubmissionID: submission.SubmissionID,
		FilePath:     locator,
		FileKind:     input.FileKind,
		OriginalName: input.OriginalName,
		UploadedBy:   actor.UserID,
		UploadedAt:   time.Now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&file).Error; err != nil {
			return err
		}
		if input.FileKind == models.FileKindProtocol {
			return tx.Model(&models.Submission{}).
				Where("submission_id = ?", submission.SubmissionID).
				Update("protocol_file_path", locator).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListFiles returns a submission's file references.
func (s *SubmissionService) ListFiles(actor Actor, submissionID int) ([]models.SubmissionFile, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	var files []models.SubmissionFile
	if err := s.db.Where("submission_id = ?", submission.SubmissionID).
		Order("file_id ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

// Submit moves a draft to submitted. Only the submitter may submit.
func (s *SubmissionService) Submit(actor Actor, submissionID int) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.SubmitterID != actor.UserID {
		return nil, forbiddenErr("only the submitter may submit")
	}
	if submission.Status != models.StatusDraft {
		return nil, preconditionErr("submission %d is not a draft", submissionID)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, submission, models.StatusSubmitted, actor, nil,
			map[string]interface{}{"submitted_at": now})
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// TriageInput carries the coordinator's triage call.
type TriageInput struct {
	Accept bool   `json:"accept"`
	Note   string `json:"note"`
}

// Triage is the coordinator's gate on a submitted item: accept moves it into
// formal triage, return bounces it back to the submitter as a draft.
func (s *SubmissionService) Triage(actor Actor, submissionID int, input *TriageInput) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, submission.BoardID, ActionTriage); err != nil {
		return nil, err
	}
	if submission.Status != models.StatusSubmitted {
		return nil, preconditionErr("submission %d is not awaiting triage", submissionID)
	}

	target := models.StatusInTriage
	if !input.Accept {
		target = models.StatusDraft
	}
	var note *string
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note = &trimmed
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, submission, target, actor, note, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// AssignMainReviewer puts a submission in the hands of the single reviewer
// empowered to decide it. Creates the main reviewer's review seat.
func (s *SubmissionService) AssignMainReviewer(actor Actor, submissionID, reviewerID int) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(actor, submission.BoardID, ActionAssignMain); err != nil {
		return nil, err
	}
	if submission.Status != models.StatusInTriage {
		return nil, preconditionErr("submission %d is not in triage", submissionID)
	}

	role, err := s.reviewRoleFor(submission.BoardID, reviewerID)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, submission, models.StatusAssignedToMain, actor, nil,
			map[string]interface{}{"main_reviewer_id": reviewerID}); err != nil {
			return err
		}
		return createReviewIfMissing(tx, submission, reviewerID, role)
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// AssignReviewers adds associate reviewers in a batch and opens the formal
// review. Only the assigned main reviewer (or a privileged actor) may do
// this. Re-assigning an existing reviewer is skipped, so the call is
// idempotent.
func (s *SubmissionService) AssignReviewers(actor Actor, submissionID int, reviewerIDs []int) (*models.Submission, error) {
	if len(reviewerIDs) == 0 {
		return nil, validationErr("at least one reviewer is required")
	}

	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if !actor.IsPrivileged() {
		if submission.MainReviewerID == nil || *submission.MainReviewerID != actor.UserID {
			return nil, forbiddenErr("only the assigned main reviewer may assign reviewers")
		}
	}
	if submission.Status != models.StatusAssignedToMain {
		return nil, preconditionErr("submission %d is not awaiting reviewer assignment", submissionID)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.transition(tx, submission, models.StatusUnderReview, actor, nil, nil); err != nil {
			return err
		}
		for _, reviewerID := range reviewerIDs {
			role, err := s.reviewRoleFor(submission.BoardID, reviewerID)
			if err != nil {
				return err
			}
			if err := createReviewIfMissing(tx, submission, reviewerID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// reviewRoleFor derives the review role from the assignee's current board
// membership, falling back to associate reviewer when none fits.
func (s *SubmissionService) reviewRoleFor(boardID, reviewerID int) (string, error) {
	roles, err := s.boards.RolesOf(boardID, reviewerID)
	if err != nil {
		return "", err
	}
	for _, preferred := range []string{
		models.BoardRoleMainReviewer,
		models.BoardRoleAssociateReviewer,
		models.BoardRoleStatistician,
	} {
		for _, held := range roles {
			if held == preferred {
				return preferred, nil
			}
		}
	}
	return models.BoardRoleAssociateReviewer, nil
}

func createReviewIfMissing(tx *gorm.DB, submission *models.Submission, reviewerID int, role string) error {
	var count int64
	if err := tx.Model(&models.Review{}).
		Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, reviewerID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil // already assigned, keep the call idempotent
	}
	review := models.Review{
		TenantID:     submission.TenantID,
		SubmissionID: submission.SubmissionID,
		ReviewerID:   reviewerID,
		ReviewerRole: role,
		CreatedAt:    time.Now(),
	}
	return tx.Create(&review).Error
}

// DecisionInput carries the main reviewer's binding decision.
type DecisionInput struct {
	Decision       string `json:"decision" binding:"required"`
	Rationale      string `json:"rationale"`
	DecisionLetter string `json:"decision_letter"`
	ConditionsText string `json:"conditions_text"`
}

// Decide issues the single final decision. Only the assigned main reviewer
// may decide — other board admins and even the superuser are rejected — and
// the 1:1 decision row makes a second decision impossible.
func (s *SubmissionService) Decide(actor Actor, submissionID int, input *DecisionInput) (*models.Submission, error) {
	var target string
	var revisionType *string
	switch input.Decision {
	case models.VerdictAccept:
		target = models.StatusAccepted
	case models.VerdictMinorRevise:
		target = models.StatusRevisionRequested
		rt := models.RevisionMinor
		revisionType = &rt
	case models.VerdictMajorRevise:
		target = models.StatusRevisionRequested
		rt := models.RevisionMajor
		revisionType = &rt
	case models.VerdictDecline:
		target = models.StatusDeclined
	default:
		return nil, validationErr("invalid decision: %s", input.Decision)
	}

	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.MainReviewerID == nil || *submission.MainReviewerID != actor.UserID {
		return nil, forbiddenErr("only the assigned main reviewer may issue the decision")
	}
	if submission.Status != models.StatusUnderReview {
		return nil, preconditionErr("submission %d is not under review", submissionID)
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Decision{}).
			Where("submission_id = ?", submission.SubmissionID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return preconditionErr("submission %d already has a decision", submissionID)
		}

		extra := map[string]interface{}{"decided_at": now}
		if revisionType != nil {
			extra["revision_type"] = *revisionType
		}
		if err := s.transition(tx, submission, target, actor, nil, extra); err != nil {
			return err
		}

		decision := models.Decision{
			TenantID:       submission.TenantID,
			SubmissionID:   submission.SubmissionID,
			DecidedBy:      actor.UserID,
			Decision:       input.Decision,
			Rationale:      ptrOrNil(input.Rationale),
			DecisionLetter: ptrOrNil(input.DecisionLetter),
			ConditionsText: ptrOrNil(input.ConditionsText),
			DecidedAt:      now,
		}
		return tx.Create(&decision).Error
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// Resubmit creates the next version of a revision-requested submission. The
// original row is never mutated; responses and files carry over onto the new
// draft.
func (s *SubmissionService) Resubmit(actor Actor, submissionID int) (*models.Submission, error) {
	original, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if original.SubmitterID != actor.UserID {
		return nil, forbiddenErr("only the submitter may resubmit")
	}
	if original.Status != models.StatusRevisionRequested {
		return nil, preconditionErr("submission %d has no revision request", submissionID)
	}

	now := time.Now()
	next := models.Submission{
		TenantID:         original.TenantID,
		BoardID:          original.BoardID,
		ProjectID:        original.ProjectID,
		SubmitterID:      original.SubmitterID,
		SubmissionNumber: generateSubmissionNumber(original.SubmissionType),
		SubmissionType:   original.SubmissionType,
		Status:           models.StatusDraft,
		ProtocolFilePath: original.ProtocolFilePath,
		Version:          original.Version + 1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		return s.copyContent(tx, original, &next)
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, next.SubmissionID)
}

// Escalate forks a submission onto a different board as a new version-1
// submission. The source status is deliberately not checked; the original row
// is left untouched either way.
func (s *SubmissionService) Escalate(actor Actor, submissionID, targetBoardID int) (*models.Submission, error) {
	original, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if original.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		return nil, forbiddenErr("only the submitter may escalate")
	}

	target, err := s.boards.GetBoard(actor, targetBoardID)
	if err != nil {
		return nil, err
	}
	if target.BoardID == original.BoardID {
		return nil, validationErr("submission %d is already on board %d", submissionID, targetBoardID)
	}

	now := time.Now()
	escalatedFrom := original.SubmissionID
	next := models.Submission{
		TenantID:         original.TenantID,
		BoardID:          target.BoardID,
		ProjectID:        original.ProjectID,
		SubmitterID:      original.SubmitterID,
		SubmissionNumber: generateSubmissionNumber(original.SubmissionType),
		SubmissionType:   original.SubmissionType,
		Status:           models.StatusDraft,
		ProtocolFilePath: original.ProtocolFilePath,
		EscalatedFromID:  &escalatedFrom,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&next).Error; err != nil {
			return err
		}
		return s.copyContent(tx, original, &next)
	})
	if err != nil {
		return nil, err
	}
	return s.getBare(actor, next.SubmissionID)
}

// copyContent carries responses and file references from one submission row
// onto its successor.
func (s *SubmissionService) copyContent(tx *gorm.DB, from, to *models.Submission) error {
	now := time.Now()

	var responses []models.SubmissionResponse
	if err := tx.Where("submission_id = ?", from.SubmissionID).Find(&responses).Error; err != nil {
		return err
	}
	for _, r := range responses {
		copied := models.SubmissionResponse{
			TenantID:      to.TenantID,
			SubmissionID:  to.SubmissionID,
			QuestionID:    r.QuestionID,
			Answer:        r.Answer,
			QuestionText:  r.QuestionText,
			AIGenerated:   r.AIGenerated,
			UserConfirmed: r.UserConfirmed,
			CreatedAt:     now,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return err
		}
	}

	var files []models.SubmissionFile
	if err := tx.Where("submission_id = ?", from.SubmissionID).Find(&files).Error; err != nil {
		return err
	}
	for _, f := range files {
		copied := models.SubmissionFile{
			TenantID:     to.TenantID,
			SubmissionID: to.SubmissionID,
			FilePath:     f.FilePath,
			FileKind:     f.FileKind,
			OriginalName: f.OriginalName,
			UploadedBy:   f.UploadedBy,
			UploadedAt:   now,
		}
		if err := tx.Create(&copied).Error; err != nil {
			return err
		}
	}
	return nil
}

// GenerateSummary asks the AI adapter to summarize the protocol text and
// stores the result pending human approval. The AI call runs outside any
// transaction; failures are downgraded to "no summary".
func (s *SubmissionService) GenerateSummary(ctx context.Context, actor Actor, submissionID int, protocolText string) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		return nil, forbiddenErr("only the submitter may request a summary")
	}
	if strings.TrimSpace(protocolText) == "" {
		return nil, validationErr("protocol text is required")
	}

	summary, err := s.ai.Summarize(ctx, protocolText)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			log.Printf("ai summarize failed for submission %d: %v", submissionID, err)
		}
		return submission, nil
	}

	if err := s.db.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]interface{}{
			"ai_summary":          summary,
			"ai_summary_approved": false,
			"updated_at":          time.Now(),
		}).Error; err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// ApproveSummary marks the stored AI summary as approved by a human.
func (s *SubmissionService) ApproveSummary(actor Actor, submissionID int) (*models.Submission, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		return nil, forbiddenErr("only the submitter may approve the summary")
	}
	if submission.AISummary == nil {
		return nil, preconditionErr("submission %d has no summary to approve", submissionID)
	}

	if err := s.db.Model(&models.Submission{}).
		Where("submission_id = ?", submission.SubmissionID).
		Updates(map[string]interface{}{
			"ai_summary_approved": true,
			"updated_at":          time.Now(),
		}).Error; err != nil {
		return nil, err
	}
	return s.getBare(actor, submissionID)
}

// Prefill asks the AI adapter to pre-draft answers for the board's
// submission questions that have no answer yet. Produced answers land
// flagged ai_generated and unconfirmed; failures and unparseable output mean
// no answers, never a hard error.
func (s *SubmissionService) Prefill(ctx context.Context, actor Actor, submissionID int, protocolText string) (int, error) {
	submission, err := s.getBare(actor, submissionID)
	if err != nil {
		return 0, err
	}
	if submission.SubmitterID != actor.UserID && !actor.IsPrivileged() {
		return 0, forbiddenErr("only the submitter may request prefill")
	}
	if submission.Status != models.StatusDraft {
		return 0, preconditionErr("submission %d is not a draft", submissionID)
	}
	if strings.TrimSpace(protocolText) == "" {
		return 0, validationErr("protocol text is required")
	}

	var questions []models.Question
	if err := s.db.Where("board_id = ? AND is_active = ? AND applies_to IN ?",
		submission.BoardID, true, []string{models.AppliesToSubmission, models.AppliesToBoth}).
		Order("display_order ASC").Find(&questions).Error; err != nil {
		return 0, err
	}

	var answered []int
	if err := s.db.Model(&models.SubmissionResponse{}).
		Where("submission_id = ?", submission.SubmissionID).
		Pluck("question_id", &answered).Error; err != nil {
		return 0, err
	}
	answeredSet := make(map[int]bool, len(answered))
	for _, id := range answered {
		answeredSet[id] = true
	}

	open := make([]models.Question, 0, len(questions))
	for _, q := range questions {
		if !answeredSet[q.QuestionID] {
			open = append(open, q)
		}
	}
	if len(open) == 0 {
		return 0, nil
	}

	answers, err := s.ai.Prefill(ctx, protocolText, open)
	if err != nil {
		log.Printf("ai prefill failed for submission %d: %v", submissionID, err)
		return 0, nil
	}
	if len(answers) == 0 {
		return 0, nil
	}

	written := 0
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, q := range open {
			answer, ok := answers[q.QuestionID]
			if !ok || strings.TrimSpace(answer) == "" {
				continue
			}
			question := q
			if err := upsertResponse(tx, submission, &question, answer, true, false); err != nil {
				return err
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func (s *SubmissionService) isAssignedReviewer(submissionID, userID int) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Review{}).
		Where("submission_id = ? AND reviewer_id = ?", submissionID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func ptrOrNil(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
