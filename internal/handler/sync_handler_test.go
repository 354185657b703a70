package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tutoringco/portal-api/internal/service"
)

func TestSyncHandlerStreamRejectsUnknownEntity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sync := service.NewSyncService(nil, nil, service.SyncConfig{PollInterval: 10 * time.Millisecond})
	handler := NewSyncHandler(sync, nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/sync/stream?entity=unknown", nil)

	handler.Stream(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSyncHandlerStreamEmitsPollEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sync := service.NewSyncService(nil, nil, service.SyncConfig{PollInterval: 10 * time.Millisecond})
	handler := NewSyncHandler(sync, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(60 * time.Millisecond)
		cancel()
	}()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/sync/stream?entity=updates&key=jamie@example.com", nil).WithContext(ctx)

	handler.Stream(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event:change")
	assert.Contains(t, rec.Body.String(), "jamie@example.com")
}
