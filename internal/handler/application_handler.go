package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// ApplicationHandler exposes the tutor application workflow.
type ApplicationHandler struct {
	applications *service.ApplicationService
}

// NewApplicationHandler creates a new handler.
func NewApplicationHandler(applications *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

// Submit godoc
// @Summary Apply to become a tutor
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body models.SubmitApplicationPayload true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var payload models.SubmitApplicationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	application, err := h.applications.Submit(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, application)
}

// List godoc
// @Summary List tutor applications
// @Description Admin view, optionally filtered by status
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param status query string false "Application status filter"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	status := models.ApplicationStatus(c.Query("status"))

	applications, err := h.applications.List(c.Request.Context(), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, applications, nil)
}

// Review godoc
// @Summary Approve or reject a tutor application
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param payload body models.ReviewApplicationPayload true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/applications/{id}/review [post]
func (h *ApplicationHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload models.ReviewApplicationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	application, err := h.applications.Review(c.Request.Context(), claims.UserID, c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, application, nil)
}
