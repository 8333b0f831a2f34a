package services

import (
	"testing"

	"ethics-review-api/models"
)

func TestCreateBoardUniqueness(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db)

	if _, err := svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName: "IRB",
		BoardType: models.BoardTypeInstitutional,
	}); err != nil {
		t.Fatalf("first institutional board: %v", err)
	}

	_, err := svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName: "Second IRB",
		BoardType: models.BoardTypeInstitutional,
	})
	if !IsPrecondition(err) {
		t.Fatalf("second institutional board: got %v, want precondition error", err)
	}

	dept := 7
	if _, err := svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName:    "CS Council",
		BoardType:    models.BoardTypeDepartmentCouncil,
		DepartmentID: &dept,
	}); err != nil {
		t.Fatalf("first council for department: %v", err)
	}

	_, err = svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName:    "Shadow Council",
		BoardType:    models.BoardTypeDepartmentCouncil,
		DepartmentID: &dept,
	})
	if !IsPrecondition(err) {
		t.Fatalf("second council for same department: got %v, want precondition error", err)
	}

	otherDept := 8
	if _, err := svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName:    "Math Council",
		BoardType:    models.BoardTypeDepartmentCouncil,
		DepartmentID: &otherDept,
	}); err != nil {
		t.Fatalf("council for a different department: %v", err)
	}
}

func TestCreateBoardValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db)

	_, err := svc.CreateBoard(actorAdmin, &CreateBoardInput{BoardType: models.BoardTypeInstitutional})
	if !IsValidation(err) {
		t.Errorf("missing name: got %v, want validation error", err)
	}

	_, err = svc.CreateBoard(actorAdmin, &CreateBoardInput{BoardName: "X", BoardType: "committee"})
	if !IsValidation(err) {
		t.Errorf("unknown board type: got %v, want validation error", err)
	}

	_, err = svc.CreateBoard(actorAdmin, &CreateBoardInput{
		BoardName: "Council",
		BoardType: models.BoardTypeDepartmentCouncil,
	})
	if !IsValidation(err) {
		t.Errorf("council without department: got %v, want validation error", err)
	}
}

func TestMembershipLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db)
	board := seedBoard(t, db)

	// Same user may hold a second distinct role.
	if _, err := svc.AddMember(actorAdmin, board.BoardID, actorCoordinator.UserID, models.BoardRoleStatistician); err != nil {
		t.Fatalf("second role for same user: %v", err)
	}

	// Re-granting a held role conflicts.
	_, err := svc.AddMember(actorAdmin, board.BoardID, actorCoordinator.UserID, models.BoardRoleCoordinator)
	if !IsPrecondition(err) {
		t.Fatalf("duplicate role grant: got %v, want precondition error", err)
	}

	_, err = svc.AddMember(actorAdmin, board.BoardID, 99, "chairman")
	if !IsValidation(err) {
		t.Fatalf("unknown role: got %v, want validation error", err)
	}

	roles, err := svc.RolesOf(board.BoardID, actorCoordinator.UserID)
	if err != nil {
		t.Fatalf("RolesOf: %v", err)
	}
	if len(roles) != 2 {
		t.Fatalf("RolesOf returned %v, want coordinator and statistician", roles)
	}

	if err := svc.RemoveMember(actorAdmin, board.BoardID, actorCoordinator.UserID, models.BoardRoleStatistician); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}
	if err := svc.RemoveMember(actorAdmin, board.BoardID, actorCoordinator.UserID, models.BoardRoleStatistician); !IsNotFound(err) {
		t.Fatalf("removing an inactive membership: got %v, want not found", err)
	}

	// Removal deactivates; a fresh grant of the same role works again.
	if _, err := svc.AddMember(actorAdmin, board.BoardID, actorCoordinator.UserID, models.BoardRoleStatistician); err != nil {
		t.Fatalf("re-grant after removal: %v", err)
	}

	held, err := svc.HasRole(board.BoardID, actorMain.UserID, models.BoardRoleMainReviewer)
	if err != nil || !held {
		t.Fatalf("HasRole(main reviewer) = %v, %v", held, err)
	}
	held, err = svc.HasRole(board.BoardID, actorMain.UserID, models.BoardRoleCoordinator)
	if err != nil || held {
		t.Fatalf("HasRole(coordinator) = %v, %v, want false", held, err)
	}
}

func TestBoardTenantScoping(t *testing.T) {
	db := newTestDB(t)
	svc := NewBoardService(db)
	board := seedBoard(t, db)

	foreign := Actor{UserID: 1, TenantID: 2, RoleID: models.RoleAdmin}
	if _, err := svc.GetBoard(foreign, board.BoardID); !IsNotFound(err) {
		t.Fatalf("cross-tenant board read: got %v, want not found", err)
	}

	boards, err := svc.ListBoards(foreign)
	if err != nil {
		t.Fatalf("ListBoards: %v", err)
	}
	if len(boards) != 0 {
		t.Fatalf("foreign tenant sees %d boards, want 0", len(boards))
	}
}
