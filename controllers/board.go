package controllers

import (
	"net/http"

	"ethics-review-api/services"

	"github.com/gin-gonic/gin"
)

// CreateBoard creates a review board for the tenant.
func CreateBoard(c *gin.Context) {
	var req struct {
		BoardName    string `json:"board_name" binding:"required"`
		BoardType    string `json:"board_type" binding:"required"`
		DepartmentID *int   `json:"department_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := boardSvc().CreateBoard(actorFromContext(c), &services.CreateBoardInput{
		BoardName:    req.BoardName,
		BoardType:    req.BoardType,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"board":   board,
	})
}

// UpdateBoard updates board metadata.
func UpdateBoard(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		BoardName *string `json:"board_name"`
		IsActive  *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := boardSvc().UpdateBoard(actorFromContext(c), boardID, &services.UpdateBoardInput{
		BoardName: req.BoardName,
		IsActive:  req.IsActive,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"board":   board,
	})
}

// GetBoard returns one board.
func GetBoard(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	board, err := boardSvc().GetBoard(actorFromContext(c), boardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"board":   board,
	})
}

// GetBoards lists the tenant's boards.
func GetBoards(c *gin.Context) {
	boards, err := boardSvc().ListBoards(actorFromContext(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"boards":  boards,
		"total":   len(boards),
	})
}

// AddBoardMember grants a board role to a user.
func AddBoardMember(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID int    `json:"user_id" binding:"required"`
		Role   string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := boardSvc().AddMember(actorFromContext(c), boardID, req.UserID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"member":  member,
	})
}

// RemoveBoardMember revokes a (board, user, role) membership.
func RemoveBoardMember(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	role := c.Query("role")
	if role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role query parameter is required"})
		return
	}

	if err := boardSvc().RemoveMember(actorFromContext(c), boardID, userID, role); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Membership removed",
	})
}

// GetBoardMembers lists a board's active members.
func GetBoardMembers(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := boardSvc().ListMembers(actorFromContext(c), boardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"members": members,
		"total":   len(members),
	})
}
