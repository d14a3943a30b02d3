package handler

import (
	"net/http"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/service"
	"github.com/gin-gonic/gin"
)

// LevelCompletedMessage is the body returned when a level is completed
const LevelCompletedMessage = "Level completed successfully!"

// StudentHandler serves the caller's own activities, attempts and progress.
// The student is always the authenticated principal.
type StudentHandler struct {
	learningService service.LearningService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(learningService service.LearningService) *StudentHandler {
	return &StudentHandler{learningService: learningService}
}

// ListActivities lists the activities of a level
// GET /api/student/levels/:levelId/activities
func (h *StudentHandler) ListActivities(c *gin.Context) {
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	activities, err := h.learningService.ListActivities(c.Request.Context(), levelID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}

// GetActivity returns one activity
// GET /api/student/activities/:activityId
func (h *StudentHandler) GetActivity(c *gin.Context) {
	activityID, ok := pathID(c, "activityId")
	if !ok {
		return
	}

	activity, err := h.learningService.GetActivity(c.Request.Context(), activityID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// ListContent returns the learning material of a level in content order
// GET /api/student/levels/:levelId/content
func (h *StudentHandler) ListContent(c *gin.Context) {
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	items, err := h.learningService.ListContent(c.Request.Context(), levelID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetContent returns one learning material item
// GET /api/student/content/:contentId
func (h *StudentHandler) GetContent(c *gin.Context) {
	contentID, ok := pathID(c, "contentId")
	if !ok {
		return
	}

	item, err := h.learningService.GetContent(c.Request.Context(), contentID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Submit records the caller's next attempt at an activity
// POST /api/student/activities/:activityId/submit
func (h *StudentHandler) Submit(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	activityID, ok := pathID(c, "activityId")
	if !ok {
		return
	}

	var req dto.SubmitActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sub, err := h.learningService.Submit(c.Request.Context(), p.UserID, activityID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// LatestSubmission returns the caller's latest attempt, 204 when there is none
// GET /api/student/activities/:activityId/latest-submission
func (h *StudentHandler) LatestSubmission(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	activityID, ok := pathID(c, "activityId")
	if !ok {
		return
	}

	sub, err := h.learningService.LatestSubmission(c.Request.Context(), p.UserID, activityID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if sub == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ListSubmissions lists the caller's attempts across a level
// GET /api/student/levels/:levelId/activity-submissions
func (h *StudentHandler) ListSubmissions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	subs, err := h.learningService.ListSubmissions(c.Request.Context(), p.UserID, levelID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// CanCompleteLevel answers a bare boolean
// GET /api/student/levels/:levelId/can-complete
func (h *StudentHandler) CanCompleteLevel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	can, err := h.learningService.CanCompleteLevel(c.Request.Context(), p.UserID, levelID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, can)
}

// CompleteLevel marks the level completed for the caller
// POST /api/student/levels/:levelId/complete
func (h *StudentHandler) CompleteLevel(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	if _, err := h.learningService.CompleteLevel(c.Request.Context(), p.UserID, levelID); err != nil {
		RespondError(c, err)
		return
	}
	c.String(http.StatusOK, LevelCompletedMessage)
}

// ListProgress lists the caller's progress rows
// GET /api/student/progress
func (h *StudentHandler) ListProgress(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	rows, err := h.learningService.ListProgress(c.Request.Context(), p.UserID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
