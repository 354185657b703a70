package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// UpdateHandler exposes the student update log.
type UpdateHandler struct {
	updates *service.UpdateService
	tutors  *service.TutorService
}

// NewUpdateHandler creates a new handler.
func NewUpdateHandler(updates *service.UpdateService, tutors *service.TutorService) *UpdateHandler {
	return &UpdateHandler{updates: updates, tutors: tutors}
}

// Post godoc
// @Summary Post a student update
// @Description Append an update to an assigned student's log
// @Tags Updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "Student email"
// @Param payload body models.PostUpdatePayload true "Update payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/students/{email}/updates [post]
func (h *UpdateHandler) Post(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	var payload models.PostUpdatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	update, err := h.updates.Post(c.Request.Context(), username, c.Param("email"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, update)
}

// List godoc
// @Summary List my updates
// @Description Updates posted for the authenticated student, newest first
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/updates [get]
func (h *UpdateHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	updates, err := h.updates.List(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updates, nil)
}

// MarkRead godoc
// @Summary Mark an update as read
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Update ID"
// @Success 204 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/updates/{id}/read [post]
func (h *UpdateHandler) MarkRead(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.updates.MarkRead(c.Request.Context(), claims.Email, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// StudentLog godoc
// @Summary View a student's update log
// @Description Updates the authenticated tutor has access to for one student
// @Tags Updates
// @Produce json
// @Security BearerAuth
// @Param email path string true "Student email"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/students/{email}/updates [get]
func (h *UpdateHandler) StudentLog(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	studentEmail := c.Param("email")
	assigned, err := h.updates.CanAccess(c.Request.Context(), studentEmail, username)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !assigned {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to you"))
		return
	}

	updates, err := h.updates.List(c.Request.Context(), studentEmail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updates, nil)
}
