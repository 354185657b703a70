package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// SessionHandler exposes session history and scheduling.
type SessionHandler struct {
	sessions *service.SessionService
	tutors   *service.TutorService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(sessions *service.SessionService, tutors *service.TutorService) *SessionHandler {
	return &SessionHandler{sessions: sessions, tutors: tutors}
}

// Log godoc
// @Summary Log a completed session
// @Description Append a session record to an assigned student's history
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "Student email"
// @Param payload body models.LogSessionPayload true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/students/{email}/sessions [post]
func (h *SessionHandler) Log(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	var payload models.LogSessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	logged, err := h.sessions.Log(c.Request.Context(), username, c.Param("email"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, logged)
}

// History godoc
// @Summary My session history
// @Description Logged sessions for the authenticated student, newest first
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/sessions [get]
func (h *SessionHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	logs, err := h.sessions.ListLogs(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, logs, nil)
}

// TutorHistory godoc
// @Summary Sessions logged by the tutor
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/sessions [get]
func (h *SessionHandler) TutorHistory(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	logs, err := h.sessions.ListLogsForTutor(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, logs, nil)
}

// Schedule godoc
// @Summary Schedule an upcoming session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param email path string true "Student email"
// @Param payload body models.ScheduleSessionPayload true "Schedule payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/students/{email}/schedule [post]
func (h *SessionHandler) Schedule(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	var payload models.ScheduleSessionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}

	scheduled, err := h.sessions.Schedule(c.Request.Context(), username, c.Param("email"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, scheduled)
}

// Upcoming godoc
// @Summary My upcoming sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/schedule [get]
func (h *SessionHandler) Upcoming(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sessions, err := h.sessions.ListScheduled(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sessions, nil)
}

// TutorSchedule godoc
// @Summary The tutor's scheduled sessions
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/schedule [get]
func (h *SessionHandler) TutorSchedule(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	sessions, err := h.sessions.ListScheduledForTutor(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, sessions, nil)
}

// Transition godoc
// @Summary Move a scheduled session to a new status
// @Description Allowed transitions only move forward; completed and cancelled are terminal
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /tutor/schedule/{id}/status [patch]
func (h *SessionHandler) Transition(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	var payload struct {
		Status models.SessionStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "status is required"))
		return
	}

	session, err := h.sessions.Transition(c.Request.Context(), username, c.Param("id"), payload.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, session, nil)
}
