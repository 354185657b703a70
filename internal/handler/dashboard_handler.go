package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// DashboardHandler serves role-specific dashboard statistics.
type DashboardHandler struct {
	dashboard *service.DashboardService
	tutors    *service.TutorService
}

// NewDashboardHandler creates a new handler.
func NewDashboardHandler(dashboard *service.DashboardService, tutors *service.TutorService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, tutors: tutors}
}

// Tutor godoc
// @Summary Tutor dashboard statistics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/dashboard [get]
func (h *DashboardHandler) Tutor(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	stats, err := h.dashboard.TutorStats(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Student godoc
// @Summary Student dashboard statistics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student/dashboard [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	stats, err := h.dashboard.StudentStats(c.Request.Context(), claims.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}

// Admin godoc
// @Summary Admin dashboard statistics
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	stats, err := h.dashboard.AdminStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil)
}
