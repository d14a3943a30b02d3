package handler

import (
	"net/http"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/dto"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/service"
	"github.com/gin-gonic/gin"
)

// TeacherHandler handles progress tracking and grading requests
type TeacherHandler struct {
	progressService service.ProgressService
}

// NewTeacherHandler creates a new TeacherHandler
func NewTeacherHandler(progressService service.ProgressService) *TeacherHandler {
	return &TeacherHandler{progressService: progressService}
}

// UpdateProgress sets a student's status on a level
// PUT /api/teacher/students/:studentId/courses/:courseId/levels/:levelId/progress
func (h *TeacherHandler) UpdateProgress(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	levelID, ok := pathID(c, "levelId")
	if !ok {
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	progress, err := h.progressService.UpdateProgress(c.Request.Context(), studentID, courseID, levelID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// ListProgress lists a student's progress within a course
// GET /api/teacher/students/:studentId/courses/:courseId/progress
func (h *TeacherHandler) ListProgress(c *gin.Context) {
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}

	rows, err := h.progressService.ListProgress(c.Request.Context(), studentID, courseID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GradeSubmission scores a submission
// POST /api/teacher/activity-submissions/:submissionId/grade
func (h *TeacherHandler) GradeSubmission(c *gin.Context) {
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}

	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	sub, err := h.progressService.GradeSubmission(c.Request.Context(), submissionID, &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
