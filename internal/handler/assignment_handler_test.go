package handler

import (
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

func newAssignmentFixture(requests ...models.TutoringRequest) (*AssignmentHandler, *requestRepoStub, *assignmentRepoStub) {
	requestRepo := &requestRepoStub{requests: requests}
	assignmentRepo := &assignmentRepoStub{requests: requestRepo}
	svc := service.NewAssignmentService(assignmentRepo, requestRepo, auditStub{}, syncStub{}, nil, nil, nil)
	tutors := newTestTutorService(models.TutorProfile{ID: "p1", UserID: "u1", Username: "t1", Active: true})
	return NewAssignmentHandler(svc, tutors), requestRepo, assignmentRepo
}

func TestAssignmentHandlerAcceptMovesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, requestRepo, assignmentRepo := newAssignmentFixture(models.TutoringRequest{
		ID: "req-1", FullName: "Jamie Rivera", Email: "jamie@example.com",
		RequestedTutor: "t1", TutorName: "Alex Chen",
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tutor/requests/req-1/accept", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Accept(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, requestRepo.requests)
	require.Len(t, assignmentRepo.accepted, 1)
	assert.Equal(t, "jamie@example.com", assignmentRepo.accepted[0].Email)

	var envelope struct {
		Data models.AcceptedStudent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "t1", envelope.Data.TutorUsername)
}

func TestAssignmentHandlerAcceptForeignRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, requestRepo, assignmentRepo := newAssignmentFixture(models.TutoringRequest{
		ID: "req-2", Email: "lee@example.com", RequestedTutor: "t2",
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tutor/requests/req-2/accept", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-2"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Accept(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Len(t, requestRepo.requests, 1)
	assert.Empty(t, assignmentRepo.accepted)
}

func TestAssignmentHandlerRejectReturnsNoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, requestRepo, assignmentRepo := newAssignmentFixture(models.TutoringRequest{
		ID: "req-3", Email: "sam@example.com", RequestedTutor: "t1",
	})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tutor/requests/req-3/reject", nil)
	c.Params = gin.Params{{Key: "id", Value: "req-3"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Reject(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, requestRepo.requests)
	assert.Empty(t, assignmentRepo.updates)
}

func TestAssignmentHandlerRequiresTutorProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _, _ := newAssignmentFixture()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/tutor/students", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "no-profile", Role: models.RoleTutor})

	handler.Students(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
