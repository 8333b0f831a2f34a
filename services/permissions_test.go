package services

import (
	"testing"

	"ethics-review-api/models"
)

func TestRoleAllowed(t *testing.T) {
	cases := []struct {
		name   string
		action Action
		roles  []string
		want   bool
	}{
		{"coordinator triages", ActionTriage, []string{models.BoardRoleCoordinator}, true},
		{"main reviewer cannot triage", ActionTriage, []string{models.BoardRoleMainReviewer}, false},
		{"coordinator assigns main", ActionAssignMain, []string{models.BoardRoleCoordinator}, true},
		{"main reviewer assigns reviewers", ActionAssignReviewers, []string{models.BoardRoleMainReviewer}, true},
		{"coordinator cannot assign reviewers", ActionAssignReviewers, []string{models.BoardRoleCoordinator}, false},
		{"statistician has no workflow powers", ActionTriage, []string{models.BoardRoleStatistician}, false},
		{"multiple roles, one matching", ActionTriage, []string{models.BoardRoleAssociateReviewer, models.BoardRoleCoordinator}, true},
		{"no roles", ActionTriage, nil, false},
		{"unknown action", Action("detonate"), []string{models.BoardRoleCoordinator}, false},
		{"coordinator views reviews", ActionViewReviews, []string{models.BoardRoleCoordinator}, true},
	}
	for _, tc := range cases {
		if got := roleAllowed(tc.action, tc.roles); got != tc.want {
			t.Errorf("%s: roleAllowed(%s, %v) = %v, want %v", tc.name, tc.action, tc.roles, got, tc.want)
		}
	}
}

func TestIsPrivileged(t *testing.T) {
	if (Actor{RoleID: models.RoleResearcher}).IsPrivileged() {
		t.Error("researcher should not be privileged")
	}
	if (Actor{RoleID: models.RoleStaff}).IsPrivileged() {
		t.Error("staff should not be privileged")
	}
	if !(Actor{RoleID: models.RoleAdmin}).IsPrivileged() {
		t.Error("admin should be privileged")
	}
	if !(Actor{RoleID: models.RoleSuperuser}).IsPrivileged() {
		t.Error("superuser should be privileged")
	}
}

func TestErrorKindHelpers(t *testing.T) {
	if !IsNotFound(notFoundErr("x")) || IsNotFound(forbiddenErr("x")) {
		t.Error("IsNotFound misclassifies")
	}
	if !IsPrecondition(preconditionErr("x")) || IsPrecondition(validationErr("x")) {
		t.Error("IsPrecondition misclassifies")
	}
	if !IsForbidden(forbiddenErr("x")) || IsForbidden(notFoundErr("x")) {
		t.Error("IsForbidden misclassifies")
	}
	if !IsValidation(validationErr("x")) || IsValidation(preconditionErr("x")) {
		t.Error("IsValidation misclassifies")
	}
	if IsNotFound(nil) || IsForbidden(ErrAIUnavailable) {
		t.Error("untyped errors must not match any kind")
	}
}
