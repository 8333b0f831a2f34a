package services

import (
	"fmt"
	"testing"
	"time"

	"ethics-review-api/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Board{},
		&models.BoardMember{},
		&models.QuestionSection{},
		&models.Question{},
		&models.QuestionCondition{},
		&models.Submission{},
		&models.SubmissionFile{},
		&models.SubmissionResponse{},
		&models.Review{},
		&models.Decision{},
		&models.SubmissionHistory{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return db
}

const testTenant = 1

// Test actors used across the suite.
var (
	actorSubmitter   = Actor{UserID: 10, TenantID: testTenant, RoleID: models.RoleResearcher}
	actorCoordinator = Actor{UserID: 20, TenantID: testTenant, RoleID: models.RoleStaff}
	actorMain        = Actor{UserID: 30, TenantID: testTenant, RoleID: models.RoleStaff}
	actorAssociate   = Actor{UserID: 40, TenantID: testTenant, RoleID: models.RoleStaff}
	actorAdmin       = Actor{UserID: 50, TenantID: testTenant, RoleID: models.RoleAdmin}
	actorOutsider    = Actor{UserID: 60, TenantID: testTenant, RoleID: models.RoleResearcher}
)

// seedBoard creates an institutional board with a coordinator, a main
// reviewer, and an associate reviewer.
func seedBoard(t *testing.T, db *gorm.DB) *models.Board {
	t.Helper()

	board := models.Board{
		TenantID:  testTenant,
		BoardName: "Institutional Review Board",
		BoardType: models.BoardTypeInstitutional,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := db.Create(&board).Error; err != nil {
		t.Fatalf("failed to seed board: %v", err)
	}

	memberships := []models.BoardMember{
		{TenantID: testTenant, BoardID: board.BoardID, UserID: actorCoordinator.UserID, Role: models.BoardRoleCoordinator, IsActive: true},
		{TenantID: testTenant, BoardID: board.BoardID, UserID: actorMain.UserID, Role: models.BoardRoleMainReviewer, IsActive: true},
		{TenantID: testTenant, BoardID: board.BoardID, UserID: actorAssociate.UserID, Role: models.BoardRoleAssociateReviewer, IsActive: true},
	}
	for i := range memberships {
		memberships[i].CreatedAt = time.Now()
		if err := db.Create(&memberships[i]).Error; err != nil {
			t.Fatalf("failed to seed membership: %v", err)
		}
	}
	return &board
}

// newEngine wires the service stack over a fresh database.
func newEngine(t *testing.T) (*gorm.DB, *SubmissionService, *ReviewService) {
	t.Helper()
	db := newTestDB(t)
	boards := NewBoardService(db)
	subs := NewSubmissionService(db, boards, DisabledAIAssist{})
	reviews := NewReviewService(db, boards)
	return db, subs, reviews
}

// createDraft seeds a draft submission on the given board.
func createDraft(t *testing.T, svc *SubmissionService, boardID int) *models.Submission {
	t.Helper()
	submission, err := svc.Create(actorSubmitter, &CreateSubmissionInput{
		BoardID:        boardID,
		ProjectID:      1,
		SubmissionType: models.SubmissionTypeStandard,
	})
	if err != nil {
		t.Fatalf("failed to create draft: %v", err)
	}
	return submission
}

// driveToUnderReview walks a fresh draft through submit, triage, main
// reviewer assignment, and associate assignment.
func driveToUnderReview(t *testing.T, svc *SubmissionService, boardID int) *models.Submission {
	t.Helper()
	submission := createDraft(t, svc, boardID)

	if _, err := svc.Submit(actorSubmitter, submission.SubmissionID); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Triage(actorCoordinator, submission.SubmissionID, &TriageInput{Accept: true}); err != nil {
		t.Fatalf("triage failed: %v", err)
	}
	if _, err := svc.AssignMainReviewer(actorCoordinator, submission.SubmissionID, actorMain.UserID); err != nil {
		t.Fatalf("assign main failed: %v", err)
	}
	updated, err := svc.AssignReviewers(actorMain, submission.SubmissionID, []int{actorAssociate.UserID})
	if err != nil {
		t.Fatalf("assign reviewers failed: %v", err)
	}
	return updated
}
