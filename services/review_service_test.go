package services

import (
	"testing"

	"ethics-review-api/models"
)

func TestRecordVerdict(t *testing.T) {
	db, subs, reviews := newEngine(t)
	board := seedBoard(t, db)
	submission := driveToUnderReview(t, subs, board.BoardID)

	// Reviews only open while the submission is under review.
	early := createDraft(t, subs, board.BoardID)
	_, err := reviews.RecordVerdict(actorAssociate, early.SubmissionID, &VerdictInput{Recommendation: models.VerdictAccept})
	if !IsPrecondition(err) {
		t.Fatalf("verdict on a draft: got %v, want precondition error", err)
	}

	// Unassigned users get forbidden, even when they sit on the board.
	_, err = reviews.RecordVerdict(actorCoordinator, submission.SubmissionID, &VerdictInput{Recommendation: models.VerdictAccept})
	if !IsForbidden(err) {
		t.Fatalf("verdict by unassigned coordinator: got %v, want forbidden", err)
	}

	_, err = reviews.RecordVerdict(actorAssociate, submission.SubmissionID, &VerdictInput{Recommendation: "approve"})
	if !IsValidation(err) {
		t.Fatalf("unknown recommendation: got %v, want validation error", err)
	}

	review, err := reviews.RecordVerdict(actorAssociate, submission.SubmissionID, &VerdictInput{
		Recommendation: models.VerdictMajorRevise,
		Comments:       "Sample size is not justified.",
	})
	if err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}
	if review.Recommendation == nil || *review.Recommendation != models.VerdictMajorRevise {
		t.Fatalf("recommendation not stored: %v", review.Recommendation)
	}
	if review.CompletedAt == nil {
		t.Fatal("completion time not stamped")
	}

	// The same reviewer may change their mind; the verdict is overwritten.
	review, err = reviews.RecordVerdict(actorAssociate, submission.SubmissionID, &VerdictInput{
		Recommendation: models.VerdictAccept,
		Comments:       "Revised analysis plan addresses my concern.",
	})
	if err != nil {
		t.Fatalf("RecordVerdict overwrite: %v", err)
	}
	if review.Recommendation == nil || *review.Recommendation != models.VerdictAccept {
		t.Fatalf("overwrite not applied: %v", review.Recommendation)
	}

	// Still exactly one review row for this reviewer.
	var count int64
	if err := db.Model(&models.Review{}).
		Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, actorAssociate.UserID).
		Count(&count).Error; err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if count != 1 {
		t.Fatalf("reviewer has %d review rows, want 1", count)
	}
}

func TestReviewerAssignmentIsIdempotent(t *testing.T) {
	db, subs, _ := newEngine(t)
	board := seedBoard(t, db)
	submission := createDraft(t, subs, board.BoardID)

	if _, err := subs.Submit(actorSubmitter, submission.SubmissionID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := subs.Triage(actorCoordinator, submission.SubmissionID, &TriageInput{Accept: true}); err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if _, err := subs.AssignMainReviewer(actorCoordinator, submission.SubmissionID, actorMain.UserID); err != nil {
		t.Fatalf("AssignMainReviewer: %v", err)
	}

	// The main reviewer appears in the batch too; their seat already exists.
	if _, err := subs.AssignReviewers(actorMain, submission.SubmissionID,
		[]int{actorMain.UserID, actorAssociate.UserID, actorAssociate.UserID}); err != nil {
		t.Fatalf("AssignReviewers: %v", err)
	}

	var count int64
	if err := db.Model(&models.Review{}).
		Where("submission_id = ?", submission.SubmissionID).Count(&count).Error; err != nil {
		t.Fatalf("count reviews: %v", err)
	}
	if count != 2 {
		t.Fatalf("submission has %d review seats, want 2", count)
	}

	// Roles reflect board membership.
	var main models.Review
	if err := db.Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, actorMain.UserID).
		First(&main).Error; err != nil {
		t.Fatalf("load main review: %v", err)
	}
	if main.ReviewerRole != models.BoardRoleMainReviewer {
		t.Fatalf("main reviewer seat has role %s", main.ReviewerRole)
	}
}

func TestOnlyMainReviewerAssignsReviewers(t *testing.T) {
	db, subs, _ := newEngine(t)
	board := seedBoard(t, db)
	submission := createDraft(t, subs, board.BoardID)

	if _, err := subs.Submit(actorSubmitter, submission.SubmissionID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := subs.Triage(actorCoordinator, submission.SubmissionID, &TriageInput{Accept: true}); err != nil {
		t.Fatalf("Triage: %v", err)
	}
	if _, err := subs.AssignMainReviewer(actorCoordinator, submission.SubmissionID, actorMain.UserID); err != nil {
		t.Fatalf("AssignMainReviewer: %v", err)
	}

	// The coordinator picked the main reviewer but cannot pick the panel.
	_, err := subs.AssignReviewers(actorCoordinator, submission.SubmissionID, []int{actorAssociate.UserID})
	if !IsForbidden(err) {
		t.Fatalf("coordinator assigning reviewers: got %v, want forbidden", err)
	}

	_, err = subs.AssignReviewers(actorMain, submission.SubmissionID, nil)
	if !IsValidation(err) {
		t.Fatalf("empty reviewer batch: got %v, want validation error", err)
	}
}

func TestListReviewsAccess(t *testing.T) {
	db, subs, reviews := newEngine(t)
	board := seedBoard(t, db)
	submission := driveToUnderReview(t, subs, board.BoardID)

	if _, err := reviews.RecordVerdict(actorAssociate, submission.SubmissionID, &VerdictInput{
		Recommendation: models.VerdictAccept,
	}); err != nil {
		t.Fatalf("RecordVerdict: %v", err)
	}

	for _, actor := range []Actor{actorSubmitter, actorAssociate, actorMain, actorCoordinator, actorAdmin} {
		got, err := reviews.ListReviews(actor, submission.SubmissionID)
		if err != nil {
			t.Fatalf("ListReviews for user %d: %v", actor.UserID, err)
		}
		if len(got) != 2 {
			t.Fatalf("user %d sees %d reviews, want 2", actor.UserID, len(got))
		}
	}

	// Everyone else is rejected outright, not shown an empty list.
	if _, err := reviews.ListReviews(actorOutsider, submission.SubmissionID); !IsForbidden(err) {
		t.Fatalf("outsider ListReviews: got %v, want forbidden", err)
	}
}

func TestGetDecision(t *testing.T) {
	db, subs, reviews := newEngine(t)
	board := seedBoard(t, db)
	submission := driveToUnderReview(t, subs, board.BoardID)

	if _, err := reviews.GetDecision(actorSubmitter, submission.SubmissionID); !IsNotFound(err) {
		t.Fatalf("decision before decide: got %v, want not found", err)
	}

	if _, err := subs.Decide(actorMain, submission.SubmissionID, &DecisionInput{
		Decision:       models.VerdictDecline,
		Rationale:      "Risk outweighs benefit.",
		DecisionLetter: "Dear researcher, ...",
	}); err != nil {
		t.Fatalf("Decide: %v", err)
	}

	decision, err := reviews.GetDecision(actorSubmitter, submission.SubmissionID)
	if err != nil {
		t.Fatalf("GetDecision: %v", err)
	}
	if decision.Decision != models.VerdictDecline || decision.DecidedBy != actorMain.UserID {
		t.Fatalf("decision row: %+v", decision)
	}
	if decision.Rationale == nil || *decision.Rationale != "Risk outweighs benefit." {
		t.Fatalf("rationale not stored: %v", decision.Rationale)
	}

	if _, err := reviews.GetDecision(actorOutsider, submission.SubmissionID); !IsForbidden(err) {
		t.Fatalf("outsider GetDecision: got %v, want forbidden", err)
	}
}
