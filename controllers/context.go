package controllers

import (
	"log"
	"net/http"
	"strconv"

	"ethics-review-api/config"
	"ethics-review-api/services"

	"github.com/gin-gonic/gin"
)

// aiAssist is the process-wide AI adapter, built once at startup from the
// explicit config value.
var aiAssist services.AIAssist = services.DisabledAIAssist{}

// InitAIAssist builds the AI adapter from configuration. Called from main.
func InitAIAssist(cfg config.AIConfig) {
	aiAssist = services.NewAIAssist(cfg)
}

func boardSvc() *services.BoardService {
	return services.NewBoardService(config.DB)
}

func formSvc() *services.FormService {
	return services.NewFormService(config.DB)
}

func submissionSvc() *services.SubmissionService {
	return services.NewSubmissionService(config.DB, boardSvc(), aiAssist)
}

func reviewSvc() *services.ReviewService {
	return services.NewReviewService(config.DB, boardSvc())
}

func historySvc() *services.HistoryService {
	return services.NewHistoryService(config.DB)
}

// actorFromContext builds the service-layer principal from the values the
// auth middleware stored.
func actorFromContext(c *gin.Context) services.Actor {
	actor := services.Actor{}
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			actor.UserID = id
		}
	}
	if v, ok := c.Get("roleID"); ok {
		if id, ok := v.(int); ok {
			actor.RoleID = id
		}
	}
	if v, ok := c.Get("tenantID"); ok {
		if id, ok := v.(int); ok {
			actor.TenantID = id
		}
	}
	return actor
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondServiceError maps typed service errors onto stable status codes.
// Not-found and forbidden stay distinct so the frontend can tell "doesn't
// exist" from "exists but you can't touch it".
func respondServiceError(c *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsPrecondition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
