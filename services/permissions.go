package services

import "ethics-review-api/models"

// Actor is the authenticated principal performing an action. RoleID is the
// platform role from the JWT; board-level roles are resolved per action from
// board_members.
type Actor struct {
	UserID   int
	TenantID int
	RoleID   int
}

// IsPrivileged reports whether the platform role bypasses board role checks.
func (a Actor) IsPrivileged() bool {
	return a.RoleID == models.RoleAdmin || a.RoleID == models.RoleSuperuser
}

// Action names a permission-gated workflow operation.
type Action string

const (
	ActionTriage          Action = "triage"
	ActionAssignMain      Action = "assign_main"
	ActionAssignReviewers Action = "assign_reviewers"
	ActionManageBoard     Action = "manage_board"
	ActionManageQuestions Action = "manage_questions"
	ActionViewReviews     Action = "view_reviews"
)

// permissionTable maps each action to the board roles allowed to perform it.
// Platform admin and superuser bypass the table entirely. Actions tied to a
// specific person (submit, resubmit, decide) are checked against the
// submission row instead of a role.
var permissionTable = map[Action][]string{
	ActionTriage:          {models.BoardRoleCoordinator},
	ActionAssignMain:      {models.BoardRoleCoordinator},
	ActionAssignReviewers: {models.BoardRoleMainReviewer},
	ActionManageBoard:     {models.BoardRoleCoordinator},
	ActionManageQuestions: {models.BoardRoleCoordinator},
	ActionViewReviews:     {models.BoardRoleCoordinator},
}

// roleAllowed reports whether any of the held board roles permits the action.
func roleAllowed(action Action, heldRoles []string) bool {
	allowed, ok := permissionTable[action]
	if !ok {
		return false
	}
	for _, held := range heldRoles {
		for _, role := range allowed {
			if held == role {
				return true
			}
		}
	}
	return false
}
