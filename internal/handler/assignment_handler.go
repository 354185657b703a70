package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/service"
	"github.com/tutoringco/portal-api/pkg/response"
)

// AssignmentHandler exposes accept/reject actions and the assignment registry.
type AssignmentHandler struct {
	assignments *service.AssignmentService
	tutors      *service.TutorService
}

// NewAssignmentHandler creates a new handler.
func NewAssignmentHandler(assignments *service.AssignmentService, tutors *service.TutorService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments, tutors: tutors}
}

// Accept godoc
// @Summary Accept a tutoring request
// @Description Move a pending request into the tutor's accepted students
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutor/requests/{id}/accept [post]
func (h *AssignmentHandler) Accept(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	accepted, err := h.assignments.Accept(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, accepted, nil)
}

// Reject godoc
// @Summary Reject a tutoring request
// @Description Remove a pending request from the queue without notifying the student
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutor/requests/{id}/reject [post]
func (h *AssignmentHandler) Reject(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	if err := h.assignments.Reject(c.Request.Context(), username, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Students godoc
// @Summary List accepted students
// @Description Students assigned to the authenticated tutor
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/students [get]
func (h *AssignmentHandler) Students(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	students, err := h.assignments.ListAccepted(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, students, nil)
}
