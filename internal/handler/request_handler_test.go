package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoringco/portal-api/internal/middleware"
	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
)

func submitPayload(tutor string) map[string]interface{} {
	return map[string]interface{}{
		"full_name":       "Jamie Rivera",
		"email":           "jamie@example.com",
		"grade_level":     "8",
		"school":          "Lakeside Middle",
		"subjects":        []string{"math"},
		"learning_style":  "visual",
		"frequency":       "weekly",
		"motivation":      "catch up on algebra",
		"requested_tutor": tutor,
		"tutor_name":      "Alex Chen",
	}
}

func TestRequestHandlerSubmitCreates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	requests := &requestRepoStub{}
	tutors := &tutorRepoStub{profiles: []models.TutorProfile{
		{ID: "p1", UserID: "u1", Username: "t1", FullName: "Alex Chen", Active: true},
	}}
	svc := service.NewRequestService(requests, tutors, syncStub{}, nil, nil, nil)
	handler := NewRequestHandler(svc, newTestTutorService())

	body, _ := json.Marshal(submitPayload("t1"))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, requests.requests, 1)
	assert.Equal(t, "jamie@example.com", requests.requests[0].Email)
	assert.Equal(t, "t1", requests.requests[0].RequestedTutor)
}

func TestRequestHandlerSubmitRejectsUnknownTutor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	requests := &requestRepoStub{}
	svc := service.NewRequestService(requests, &tutorRepoStub{}, syncStub{}, nil, nil, nil)
	handler := NewRequestHandler(svc, newTestTutorService())

	body, _ := json.Marshal(submitPayload("ghost"))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/requests", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.Submit(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, requests.requests)
}

func TestRequestHandlerQueueScopedToTutor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	profile := models.TutorProfile{ID: "p1", UserID: "u1", Username: "t1", Active: true}
	requests := &requestRepoStub{requests: []models.TutoringRequest{
		{ID: "r1", Email: "a@example.com", RequestedTutor: "t1"},
		{ID: "r2", Email: "b@example.com", RequestedTutor: "t2"},
	}}
	svc := service.NewRequestService(requests, &tutorRepoStub{}, syncStub{}, nil, nil, nil)
	handler := NewRequestHandler(svc, newTestTutorService(profile))

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tutor/requests", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Queue(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.TutoringRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "r1", envelope.Data[0].ID)
}

func TestRequestHandlerQueueWithoutProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewRequestService(&requestRepoStub{}, &tutorRepoStub{}, syncStub{}, nil, nil, nil)
	handler := NewRequestHandler(svc, newTestTutorService())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tutor/requests", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "stranger", Role: models.RoleTutor})

	handler.Queue(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
