package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tutoringco/portal-api/internal/middleware"
	"github.com/tutoringco/portal-api/internal/models"
	"github.com/tutoringco/portal-api/internal/service"
)

type updateRepoStub struct {
	updates []models.StudentUpdate
}

func (s *updateRepoStub) Create(_ context.Context, update *models.StudentUpdate) error {
	s.updates = append(s.updates, *update)
	return nil
}

func (s *updateRepoStub) ListByStudent(_ context.Context, studentEmail string) ([]models.StudentUpdate, error) {
	var out []models.StudentUpdate
	for _, u := range s.updates {
		if u.StudentEmail == studentEmail {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *updateRepoStub) MarkRead(_ context.Context, studentEmail, updateID string) error {
	for i := range s.updates {
		if s.updates[i].ID == updateID && s.updates[i].StudentEmail == studentEmail {
			s.updates[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

type assignedStub struct {
	pairs map[string]string
}

func (s assignedStub) IsAssigned(_ context.Context, studentEmail, tutorUsername string) (bool, error) {
	return s.pairs[studentEmail] == tutorUsername, nil
}

func newUpdateFixture(repo *updateRepoStub, assigned assignedStub) *UpdateHandler {
	svc := service.NewUpdateService(repo, assigned, syncStub{}, nil, nil)
	tutors := newTestTutorService(models.TutorProfile{ID: "p1", UserID: "u1", Username: "t1", Active: true})
	return NewUpdateHandler(svc, tutors)
}

func TestUpdateHandlerPostRejectsBlankTitle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &updateRepoStub{}
	handler := newUpdateFixture(repo, assignedStub{pairs: map[string]string{"jamie@example.com": "t1"}})

	body := bytes.NewBufferString(`{"update_type":"note","title":"   ","content":"did great"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tutor/students/jamie@example.com/updates", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "email", Value: "jamie@example.com"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Post(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, repo.updates)
}

func TestUpdateHandlerPostRequiresAssignment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &updateRepoStub{}
	handler := newUpdateFixture(repo, assignedStub{pairs: map[string]string{}})

	body := bytes.NewBufferString(`{"update_type":"progress","title":"Week 3","content":"solid progress"}`)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/tutor/students/jamie@example.com/updates", body)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "email", Value: "jamie@example.com"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleTutor})

	handler.Post(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, repo.updates)
}

func TestUpdateHandlerListRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUpdateFixture(&updateRepoStub{}, assignedStub{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/student/updates", nil)

	handler.List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateHandlerMarkReadMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newUpdateFixture(&updateRepoStub{}, assignedStub{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/student/updates/missing/read", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u2", Email: "jamie@example.com", Role: models.RoleStudent})

	handler.MarkRead(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
