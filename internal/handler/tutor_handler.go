package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// TutorHandler exposes the public tutor directory and profile management.
type TutorHandler struct {
	tutors *service.TutorService
}

// NewTutorHandler creates a new handler.
func NewTutorHandler(tutors *service.TutorService) *TutorHandler {
	return &TutorHandler{tutors: tutors}
}

// Directory godoc
// @Summary Tutor directory
// @Description Publicly visible active tutors
// @Tags Tutors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tutors [get]
func (h *TutorHandler) Directory(c *gin.Context) {
	tutors, err := h.tutors.Directory(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, tutors, nil)
}

// Get godoc
// @Summary Tutor profile by username
// @Tags Tutors
// @Produce json
// @Param username path string true "Tutor username"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutors/{username} [get]
func (h *TutorHandler) Get(c *gin.Context) {
	profile, err := h.tutors.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// MyProfile godoc
// @Summary The authenticated tutor's profile
// @Tags Tutors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutor/profile [get]
func (h *TutorHandler) MyProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.tutors.ProfileForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateProfile godoc
// @Summary Update the authenticated tutor's profile
// @Tags Tutors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tutor/profile [put]
func (h *TutorHandler) UpdateProfile(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var payload struct {
		Bio       string   `json:"bio"`
		Subjects  []string `json:"subjects"`
		GradeBand string   `json:"grade_band"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.tutors.UpdateProfile(c.Request.Context(), claims.UserID, payload.Bio, payload.Subjects, payload.GradeBand)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}
