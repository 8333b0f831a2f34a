package services

import (
	"errors"
	"time"

	"ethics-review-api/models"

	"gorm.io/gorm"
)

// BoardService owns boards and board memberships. Every other service
// queries it to resolve which board roles a user holds.
type BoardService struct {
	db *gorm.DB
}

// NewBoardService creates a BoardService backed by the given database.
func NewBoardService(db *gorm.DB) *BoardService {
	return &BoardService{db: db}
}

// CreateBoardInput carries the fields for a new board.
type CreateBoardInput struct {
	BoardName    string
	BoardType    string
	DepartmentID *int
}

// CreateBoard creates a board, enforcing the uniqueness invariants: at most
// one institutional board per tenant, at most one department council per
// department.
func (s *BoardService) CreateBoard(actor Actor, input *CreateBoardInput) (*models.Board, error) {
	if input.BoardName == "" {
		return nil, validationErr("board name is required")
	}

	switch input.BoardType {
	case models.BoardTypeInstitutional:
		var count int64
		if err := s.db.Model(&models.Board{}).
			Where("tenant_id = ? AND board_type = ? AND is_active = ?", actor.TenantID, models.BoardTypeInstitutional, true).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, preconditionErr("tenant already has an institutional board")
		}
	case models.BoardTypeDepartmentCouncil:
		if input.DepartmentID == nil {
			return nil, validationErr("department council requires a department")
		}
		var count int64
		if err := s.db.Model(&models.Board{}).
			Where("tenant_id = ? AND board_type = ? AND department_id = ? AND is_active = ?",
				actor.TenantID, models.BoardTypeDepartmentCouncil, *input.DepartmentID, true).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, preconditionErr("department already has a research council")
		}
	default:
		return nil, validationErr("invalid board type: %s", input.BoardType)
	}

	board := models.Board{
		TenantID:     actor.TenantID,
		DepartmentID: input.DepartmentID,
		BoardName:    input.BoardName,
		BoardType:    input.BoardType,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.db.Create(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// UpdateBoardInput carries optional board metadata updates.
type UpdateBoardInput struct {
	BoardName *string
	IsActive  *bool
}

// UpdateBoard updates board metadata. Board type and department are fixed at
// creation.
func (s *BoardService) UpdateBoard(actor Actor, boardID int, input *UpdateBoardInput) (*models.Board, error) {
	board, err := s.GetBoard(actor, boardID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{"updated_at": now}
	if input.BoardName != nil {
		if *input.BoardName == "" {
			return nil, validationErr("board name is required")
		}
		updates["board_name"] = *input.BoardName
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := s.db.Model(&models.Board{}).
		Where("board_id = ?", board.BoardID).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.GetBoard(actor, boardID)
}

// GetBoard fetches a board scoped to the actor's tenant.
func (s *BoardService) GetBoard(actor Actor, boardID int) (*models.Board, error) {
	var board models.Board
	if err := s.db.Where("board_id = ? AND tenant_id = ?", boardID, actor.TenantID).
		First(&board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("board %d not found", boardID)
		}
		return nil, err
	}
	return &board, nil
}

// ListBoards returns the tenant's boards.
func (s *BoardService) ListBoards(actor Actor) ([]models.Board, error) {
	var boards []models.Board
	if err := s.db.Where("tenant_id = ?", actor.TenantID).
		Order("board_id ASC").Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// AddMember grants a board role to a user. Granting a role the user already
// holds is a conflict, not a no-op.
func (s *BoardService) AddMember(actor Actor, boardID, userID int, role string) (*models.BoardMember, error) {
	if !validBoardRole(role) {
		return nil, validationErr("invalid board role: %s", role)
	}

	board, err := s.GetBoard(actor, boardID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ? AND role = ? AND is_active = ?", board.BoardID, userID, role, true).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, preconditionErr("user %d already holds role %s on board %d", userID, role, boardID)
	}

	member := models.BoardMember{
		TenantID:  actor.TenantID,
		BoardID:   board.BoardID,
		UserID:    userID,
		Role:      role,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := s.db.Create(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember deactivates a (board, user, role) membership.
func (s *BoardService) RemoveMember(actor Actor, boardID, userID int, role string) error {
	board, err := s.GetBoard(actor, boardID)
	if err != nil {
		return err
	}

	now := time.Now()
	result := s.db.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ? AND role = ? AND is_active = ?", board.BoardID, userID, role, true).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("membership not found")
	}
	return nil
}

// ListMembers returns the active members of a board with user data loaded.
func (s *BoardService) ListMembers(actor Actor, boardID int) ([]models.BoardMember, error) {
	board, err := s.GetBoard(actor, boardID)
	if err != nil {
		return nil, err
	}

	var members []models.BoardMember
	if err := s.db.Preload("User").
		Where("board_id = ? AND is_active = ?", board.BoardID, true).
		Order("member_id ASC").Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// RolesOf returns the active board roles a user holds on a board.
func (s *BoardService) RolesOf(boardID, userID int) ([]string, error) {
	var members []models.BoardMember
	if err := s.db.Where("board_id = ? AND user_id = ? AND is_active = ?", boardID, userID, true).
		Find(&members).Error; err != nil {
		return nil, err
	}
	roles := make([]string, 0, len(members))
	for _, m := range members {
		roles = append(roles, m.Role)
	}
	return roles, nil
}

// HasRole reports whether the user holds the given active role on the board.
func (s *BoardService) HasRole(boardID, userID int, role string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.BoardMember{}).
		Where("board_id = ? AND user_id = ? AND role = ? AND is_active = ?", boardID, userID, role, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func validBoardRole(role string) bool {
	switch role {
	case models.BoardRoleCoordinator, models.BoardRoleMainReviewer,
		models.BoardRoleAssociateReviewer, models.BoardRoleStatistician:
		return true
	}
	return false
}
