package controllers

import (
	"fmt"
	"net/http"

	"ethics-review-api/services"

	"github.com/gin-gonic/gin"
)

// RecordVerdict stores the calling reviewer's recommendation.
func RecordVerdict(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.VerdictInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := reviewSvc().RecordVerdict(actorFromContext(c), submissionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Verdict recorded",
		"review":  review,
	})
}

// GetReviews lists a submission's reviews for authorized viewers.
func GetReviews(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	reviews, err := reviewSvc().ListReviews(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"reviews": reviews,
		"total":   len(reviews),
	})
}

// IssueDecision records the main reviewer's binding decision.
func IssueDecision(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.DecisionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().Decide(actorFromContext(c), submissionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifySubmitter(submission, "Decision issued",
		fmt.Sprintf("A decision was issued on your submission %s: %s.", submission.SubmissionNumber, req.Decision))

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Decision issued",
		"submission": submission,
	})
}

// GetDecision returns the final decision, if any.
func GetDecision(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	decision, err := reviewSvc().GetDecision(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"decision": decision,
	})
}
