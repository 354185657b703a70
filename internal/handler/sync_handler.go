package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutoringco/portal-api/internal/service"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
	"github.com/tutoringco/portal-api/pkg/response"
)

// SyncHandler streams change events so clients can refresh without reloading.
type SyncHandler struct {
	sync    *service.SyncService
	metrics *service.MetricsService
}

// NewSyncHandler creates a new handler.
func NewSyncHandler(sync *service.SyncService, metrics *service.MetricsService) *SyncHandler {
	return &SyncHandler{sync: sync, metrics: metrics}
}

var watchableEntities = map[string]struct{}{
	service.EntityQueue:    {},
	service.EntityUpdates:  {},
	service.EntitySessions: {},
	service.EntityStudents: {},
}

// Stream godoc
// @Summary Subscribe to change events
// @Description Server-sent events for one entity, optionally scoped by key
// @Tags Sync
// @Produce text/event-stream
// @Security BearerAuth
// @Param entity query string true "Entity name (queue, updates, sessions, students)"
// @Param key query string false "Scope key, e.g. tutor username or student email"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /sync/stream [get]
func (h *SyncHandler) Stream(c *gin.Context) {
	entity := c.Query("entity")
	if _, ok := watchableEntities[entity]; !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown entity"))
		return
	}

	events := h.sync.Watch(c.Request.Context(), entity, c.Query("key"))
	h.metrics.WatcherOpened()
	defer h.metrics.WatcherClosed()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	// The channel closes when the request context is cancelled.
	for event := range events {
		c.SSEvent("change", event)
		c.Writer.Flush()
	}
}
