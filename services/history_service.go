package services

import (
	"errors"

	"ethics-review-api/models"

	"gorm.io/gorm"
)

// HistoryService reads the append-only transition ledger. Writes happen
// exclusively inside the lifecycle controller's transitions; there is no
// update or delete operation.
type HistoryService struct {
	db *gorm.DB
}

// NewHistoryService creates a HistoryService backed by the given database.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// List returns a submission's transitions oldest first.
func (s *HistoryService) List(actor Actor, submissionID int) ([]models.SubmissionHistory, error) {
	var count int64
	if err := s.db.Model(&models.Submission{}).
		Where("submission_id = ? AND tenant_id = ?", submissionID, actor.TenantID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFoundErr("submission %d not found", submissionID)
	}

	var history []models.SubmissionHistory
	if err := s.db.Where("submission_id = ?", submissionID).
		Order("history_id ASC").Find(&history).Error; err != nil {
		return nil, err
	}
	return history, nil
}

// Walkable reports whether the recorded sequence is a valid walk of the
// transition table starting from draft.
func Walkable(history []models.SubmissionHistory) error {
	current := models.StatusDraft
	for _, h := range history {
		if h.FromStatus == nil || *h.FromStatus != current {
			return errors.New("history entry does not continue from the previous status")
		}
		if !CanTransition(*h.FromStatus, h.ToStatus) {
			return errors.New("history entry records a transition outside the table")
		}
		current = h.ToStatus
	}
	return nil
}
