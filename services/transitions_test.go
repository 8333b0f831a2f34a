package services

import (
	"testing"

	"ethics-review-api/models"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to string }{
		{models.StatusDraft, models.StatusSubmitted},
		{models.StatusSubmitted, models.StatusInTriage},
		{models.StatusSubmitted, models.StatusDraft},
		{models.StatusInTriage, models.StatusAssignedToMain},
		{models.StatusAssignedToMain, models.StatusUnderReview},
		{models.StatusUnderReview, models.StatusAccepted},
		{models.StatusUnderReview, models.StatusRevisionRequested},
		{models.StatusUnderReview, models.StatusDeclined},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to string }{
		{models.StatusDraft, models.StatusUnderReview},
		{models.StatusDraft, models.StatusAccepted},
		{models.StatusInTriage, models.StatusSubmitted},
		{models.StatusInTriage, models.StatusUnderReview},
		{models.StatusAccepted, models.StatusDraft},
		{models.StatusDeclined, models.StatusUnderReview},
		{models.StatusRevisionRequested, models.StatusSubmitted},
		{models.StatusUnderReview, models.StatusDraft},
		{"bogus", models.StatusDraft},
	}
	for _, tc := range denied {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoSuccessors(t *testing.T) {
	for _, status := range []string{models.StatusAccepted, models.StatusRevisionRequested, models.StatusDeclined} {
		if targets := statusTransitions[status]; len(targets) != 0 {
			t.Errorf("terminal status %s has successors %v", status, targets)
		}
	}
}

func TestWalkable(t *testing.T) {
	str := func(s string) *string { return &s }

	valid := []models.SubmissionHistory{
		{FromStatus: str(models.StatusDraft), ToStatus: models.StatusSubmitted},
		{FromStatus: str(models.StatusSubmitted), ToStatus: models.StatusInTriage},
		{FromStatus: str(models.StatusInTriage), ToStatus: models.StatusAssignedToMain},
		{FromStatus: str(models.StatusAssignedToMain), ToStatus: models.StatusUnderReview},
		{FromStatus: str(models.StatusUnderReview), ToStatus: models.StatusAccepted},
	}
	if err := Walkable(valid); err != nil {
		t.Errorf("valid walk rejected: %v", err)
	}

	// The triage-return loop is a legal walk.
	loop := []models.SubmissionHistory{
		{FromStatus: str(models.StatusDraft), ToStatus: models.StatusSubmitted},
		{FromStatus: str(models.StatusSubmitted), ToStatus: models.StatusDraft},
		{FromStatus: str(models.StatusDraft), ToStatus: models.StatusSubmitted},
	}
	if err := Walkable(loop); err != nil {
		t.Errorf("triage-return walk rejected: %v", err)
	}

	gap := []models.SubmissionHistory{
		{FromStatus: str(models.StatusDraft), ToStatus: models.StatusSubmitted},
		{FromStatus: str(models.StatusInTriage), ToStatus: models.StatusAssignedToMain},
	}
	if err := Walkable(gap); err == nil {
		t.Error("walk with a gap was accepted")
	}

	skip := []models.SubmissionHistory{
		{FromStatus: str(models.StatusDraft), ToStatus: models.StatusAccepted},
	}
	if err := Walkable(skip); err == nil {
		t.Error("walk outside the transition table was accepted")
	}
}
