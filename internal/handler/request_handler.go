package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// RequestHandler exposes the tutoring request queue.
type RequestHandler struct {
	requests *service.RequestService
	tutors   *service.TutorService
}

// NewRequestHandler creates a new handler.
func NewRequestHandler(requests *service.RequestService, tutors *service.TutorService) *RequestHandler {
	return &RequestHandler{requests: requests, tutors: tutors}
}

// Submit godoc
// @Summary Submit a tutoring request
// @Description Add a student's request to the queue of the chosen tutor
// @Tags Requests
// @Accept json
// @Produce json
// @Param payload body models.SubmitRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	var payload models.SubmitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request payload"))
		return
	}

	request, err := h.requests.Submit(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, request)
}

// List godoc
// @Summary List all pending requests
// @Description Full request queue across tutors, admin only
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) List(c *gin.Context) {
	requests, err := h.requests.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}

// Queue godoc
// @Summary List the current tutor's request queue
// @Description Pending requests addressed to the authenticated tutor
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /tutor/requests [get]
func (h *RequestHandler) Queue(c *gin.Context) {
	username, ok := resolveTutorUsername(c, h.tutors)
	if !ok {
		return
	}

	requests, err := h.requests.ListForTutor(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, requests, nil)
}
