package controllers

import (
	"net/http"
	"strconv"

	"ethics-review-api/services"

	"github.com/gin-gonic/gin"
)

// CreateSection adds a form section to a board.
func CreateSection(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		SectionName  string `json:"section_name" binding:"required"`
		Slug         string `json:"slug"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	section, err := formSvc().CreateSection(actorFromContext(c), boardID, &services.SectionInput{
		SectionName:  req.SectionName,
		Slug:         req.Slug,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"section": section,
	})
}

// UpdateSection updates a section.
func UpdateSection(c *gin.Context) {
	sectionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		SectionName  string `json:"section_name"`
		Slug         string `json:"slug"`
		DisplayOrder int    `json:"display_order"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	section, err := formSvc().UpdateSection(actorFromContext(c), sectionID, &services.SectionInput{
		SectionName:  req.SectionName,
		Slug:         req.Slug,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"section": section,
	})
}

// GetSections lists a board's sections in display order.
func GetSections(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sections, err := formSvc().ListSections(actorFromContext(c), boardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"sections": sections,
		"total":    len(sections),
	})
}

// CreateQuestion adds a question, optionally with visibility conditions.
func CreateQuestion(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := formSvc().CreateQuestion(actorFromContext(c), boardID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"question": question,
	})
}

// UpdateQuestion updates a question. Omitting "conditions" leaves the
// existing conditions untouched; sending an empty list clears them.
func UpdateQuestion(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.QuestionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := formSvc().UpdateQuestion(actorFromContext(c), questionID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"question": question,
	})
}

// RetireQuestion deactivates a question without deleting it.
func RetireQuestion(c *gin.Context) {
	questionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := formSvc().RetireQuestion(actorFromContext(c), questionID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Question retired",
	})
}

// GetQuestions lists a board's active questions, optionally filtered by
// section and applicability, with computed visibility when a submission id
// is supplied.
func GetQuestions(c *gin.Context) {
	boardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	input := services.ListQuestionsInput{AppliesTo: c.Query("applies_to")}
	if raw := c.Query("section_id"); raw != "" {
		sectionID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid section_id"})
			return
		}
		input.SectionID = &sectionID
	}

	actor := actorFromContext(c)
	questions, err := formSvc().ListQuestions(actor, boardID, &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := gin.H{
		"success":   true,
		"questions": questions,
		"total":     len(questions),
	}

	// With ?submission_id= the response includes per-question visibility
	// computed against that submission's stored answers.
	if raw := c.Query("submission_id"); raw != "" {
		submissionID, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission_id"})
			return
		}
		submission, err := submissionSvc().Get(actor, submissionID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		answers := make(map[int]string, len(submission.Responses))
		for _, r := range submission.Responses {
			answers[r.QuestionID] = r.Answer
		}
		response["visibility"] = services.EvaluateVisibility(questions, answers)
	}

	c.JSON(http.StatusOK, response)
}
