package services

import (
	"errors"
	"time"

	"ethics-review-api/models"

	"gorm.io/gorm"
)

// ReviewService records reviewer verdicts and serves review and decision
// reads. Reviewer seats are created by the lifecycle controller at
// assignment time.
type ReviewService struct {
	db     *gorm.DB
	boards *BoardService
}

// NewReviewService creates a ReviewService backed by the given database.
func NewReviewService(db *gorm.DB, boards *BoardService) *ReviewService {
	return &ReviewService{db: db, boards: boards}
}

// VerdictInput carries a reviewer's recommendation.
type VerdictInput struct {
	Recommendation string `json:"recommendation" binding:"required"`
	Comments       string `json:"comments"`
	Feedback       string `json:"feedback"`
}

// RecordVerdict stores the reviewer's recommendation on their own review
// seat, stamping completion time. A repeat call from the same reviewer
// overwrites the previous verdict: it is the same human re-submitting.
func (s *ReviewService) RecordVerdict(actor Actor, submissionID int, input *VerdictInput) (*models.Review, error) {
	switch input.Recommendation {
	case models.VerdictAccept, models.VerdictMinorRevise, models.VerdictMajorRevise, models.VerdictDecline:
	default:
		return nil, validationErr("invalid recommendation: %s", input.Recommendation)
	}

	submission, err := s.getSubmission(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.Status != models.StatusUnderReview {
		return nil, preconditionErr("submission %d is not under review", submissionID)
	}

	var review models.Review
	if err := s.db.Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, actor.UserID).
		First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbiddenErr("user %d is not an assigned reviewer of submission %d", actor.UserID, submissionID)
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"recommendation": input.Recommendation,
		"comments":       ptrOrNil(input.Comments),
		"feedback":       ptrOrNil(input.Feedback),
		"completed_at":   now,
		"updated_at":     now,
	}
	if err := s.db.Model(&models.Review{}).
		Where("review_id = ?", review.ReviewID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	if err := s.db.First(&review, review.ReviewID).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviews returns a submission's reviews. Access is limited to the
// submitter, the assigned reviewers, board coordinators, and privileged
// actors; everyone else gets forbidden, not an empty list.
func (s *ReviewService) ListReviews(actor Actor, submissionID int) ([]models.Review, error) {
	submission, err := s.getSubmission(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeViewer(actor, submission); err != nil {
		return nil, err
	}

	var reviews []models.Review
	if err := s.db.Preload("Reviewer").
		Where("submission_id = ?", submission.SubmissionID).
		Order("review_id ASC").Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}

// GetDecision returns the submission's final decision, if one exists.
func (s *ReviewService) GetDecision(actor Actor, submissionID int) (*models.Decision, error) {
	submission, err := s.getSubmission(actor, submissionID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeViewer(actor, submission); err != nil {
		return nil, err
	}

	var decision models.Decision
	if err := s.db.Where("submission_id = ?", submission.SubmissionID).
		First(&decision).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("submission %d has no decision", submissionID)
		}
		return nil, err
	}
	return &decision, nil
}

func (s *ReviewService) authorizeViewer(actor Actor, submission *models.Submission) error {
	if actor.IsPrivileged() || submission.SubmitterID == actor.UserID {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.Review{}).
		Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, actor.UserID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	roles, err := s.boards.RolesOf(submission.BoardID, actor.UserID)
	if err != nil {
		return err
	}
	if roleAllowed(ActionViewReviews, roles) {
		return nil
	}
	return forbiddenErr("user %d may not view reviews of submission %d", actor.UserID, submission.SubmissionID)
}

func (s *ReviewService) getSubmission(actor Actor, submissionID int) (*models.Submission, error) {
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
