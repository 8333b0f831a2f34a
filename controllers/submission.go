package controllers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"ethics-review-api/config"
	"ethics-review-api/models"
	"ethics-review-api/services"

	"github.com/gin-gonic/gin"
)

// ===================== SUBMISSION LIFECYCLE =====================

// CreateSubmission opens a new draft.
func CreateSubmission(c *gin.Context) {
	var req services.CreateSubmissionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().Create(actorFromContext(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Submission created successfully",
		"submission": submission,
	})
}

// GetSubmissions lists the submissions visible to the caller.
func GetSubmissions(c *gin.Context) {
	input := services.ListSubmissionsInput{Status: c.Query("status")}
	if raw := c.Query("board_id"); raw != "" {
		boardID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid board_id"})
			return
		}
		input.BoardID = &boardID
	}

	submissions, err := submissionSvc().List(actorFromContext(c), &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"submissions": submissions,
		"total":       len(submissions),
	})
}

// GetSubmission returns a specific submission with responses and files.
func GetSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	submission, err := submissionSvc().Get(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// UpdateSubmission edits draft metadata.
func UpdateSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateDraftInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().UpdateDraft(actorFromContext(c), submissionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// SaveResponses upserts form answers for a submission.
func SaveResponses(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Responses []services.ResponseInput `json:"responses" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := submissionSvc().SaveResponses(actorFromContext(c), submissionID, req.Responses); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Responses saved",
	})
}

// AttachFile registers an uploaded document locator on a submission.
func AttachFile(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.AttachFileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := submissionSvc().AttachFile(actorFromContext(c), submissionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"file":    file,
	})
}

// GetFiles lists a submission's file references.
func GetFiles(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	files, err := submissionSvc().ListFiles(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"files":   files,
		"total":   len(files),
	})
}

// SubmitSubmission moves a draft into the review pipeline.
func SubmitSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	submission, err := submissionSvc().Submit(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Submission submitted",
		"submission": submission,
	})
}

// TriageSubmission accepts a submitted item into triage or returns it to the
// submitter.
func TriageSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.TriageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().Triage(actorFromContext(c), submissionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	message := "Submission accepted into triage"
	if !req.Accept {
		message = "Submission returned to submitter"
		notifySubmitter(submission, "Submission returned",
			fmt.Sprintf("Your submission %s was returned for changes.", submission.SubmissionNumber))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    message,
		"submission": submission,
	})
}

// AssignMainReviewer hands a triaged submission to its deciding reviewer.
func AssignMainReviewer(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReviewerID int `json:"reviewer_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().AssignMainReviewer(actorFromContext(c), submissionID, req.ReviewerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Main reviewer assigned",
		"submission": submission,
	})
}

// AssignReviewers adds associate reviewers and opens the formal review.
func AssignReviewers(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ReviewerIDs []int `json:"reviewer_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().AssignReviewers(actorFromContext(c), submissionID, req.ReviewerIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Reviewers assigned",
		"submission": submission,
	})
}

// ResubmitSubmission creates the next version after a revision request.
func ResubmitSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	submission, err := submissionSvc().Resubmit(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Resubmission created",
		"submission": submission,
	})
}

// EscalateSubmission forks the submission onto another board.
func EscalateSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		TargetBoardID int `json:"target_board_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().Escalate(actorFromContext(c), submissionID, req.TargetBoardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"message":    "Submission escalated",
		"submission": submission,
	})
}

// GetHistory returns a submission's transition ledger, oldest first.
func GetHistory(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	history, err := historySvc().List(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": history,
		"total":   len(history),
	})
}

// ===================== AI ASSIST =====================

// GenerateAISummary asks the AI adapter to summarize the protocol text. A
// failed or empty AI answer is a soft no-op; the submission is unaffected.
func GenerateAISummary(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ProtocolText string `json:"protocol_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := submissionSvc().GenerateSummary(c.Request.Context(), actorFromContext(c), submissionID, req.ProtocolText)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"summary":    submission.AISummary,
		"submission": submission,
	})
}

// ApproveAISummary marks the stored summary as human-approved.
func ApproveAISummary(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	submission, err := submissionSvc().ApproveSummary(actorFromContext(c), submissionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"submission": submission,
	})
}

// PrefillResponses drafts answers for unanswered questions from the
// protocol text. Produced answers are flagged ai_generated and unconfirmed.
func PrefillResponses(c *gin.Context) {
	submissionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ProtocolText string `json:"protocol_text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	written, err := submissionSvc().Prefill(c.Request.Context(), actorFromContext(c), submissionID, req.ProtocolText)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"answers_prefilled": written,
	})
}

// notifySubmitter emails the submitter about a workflow event. Delivery is
// fire-and-forget; a mail failure never fails the transition that caused it.
func notifySubmitter(submission *models.Submission, subject, body string) {
	go func() {
		var user models.User
		if err := config.DB.Select("email").
			Where("user_id = ?", submission.SubmitterID).
			First(&user).Error; err != nil {
			return
		}
		html := fmt.Sprintf("<p>%s</p>", body)
		if err := config.SendMail([]string{user.Email}, subject, html); err != nil {
			log.Printf("Failed to send notification mail: %v", err)
		}
	}()
}
