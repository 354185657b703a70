package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type updateRepoStub struct {
	items []models.StudentUpdate
}

func (s *updateRepoStub) Create(ctx context.Context, update *models.StudentUpdate) error {
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, *update)
	return nil
}

func (s *updateRepoStub) ListByStudent(ctx context.Context, studentEmail string) ([]models.StudentUpdate, error) {
	var out []models.StudentUpdate
	for _, update := range s.items {
		if update.StudentEmail == studentEmail {
			out = append(out, update)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *updateRepoStub) MarkRead(ctx context.Context, studentEmail, updateID string) error {
	for i := range s.items {
		if s.items[i].ID == updateID && s.items[i].StudentEmail == studentEmail {
			s.items[i].IsRead = true
			return nil
		}
	}
	return sql.ErrNoRows
}

type assignmentCheckerStub struct {
	assigned map[string]bool
}

func (s *assignmentCheckerStub) IsAssigned(ctx context.Context, studentEmail, tutorUsername string) (bool, error) {
	return s.assigned[studentEmail+"|"+tutorUsername], nil
}

func newUpdateService(repo *updateRepoStub, checker *assignmentCheckerStub, sync *syncRecorderStub) *UpdateService {
	return NewUpdateService(repo, checker, sync, validator.New(), zap.NewNop())
}

func TestUpdateServicePost(t *testing.T) {
	repo := &updateRepoStub{}
	checker := &assignmentCheckerStub{assigned: map[string]bool{"alice@example.com|t1": true}}
	sync := &syncRecorderStub{}
	service := newUpdateService(repo, checker, sync)

	update, err := service.Post(context.Background(), "t1", "alice@example.com", models.PostUpdatePayload{
		UpdateType: models.UpdateTypeProgress,
		Title:      "  Great week  ",
		Content:    "Solid improvement on algebra.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Great week", update.Title)
	assert.False(t, update.IsRead)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"updates:alice@example.com"}, sync.notified)
}

func TestUpdateServicePostEmptyTitleProducesNoWrite(t *testing.T) {
	repo := &updateRepoStub{}
	checker := &assignmentCheckerStub{assigned: map[string]bool{"alice@example.com|t1": true}}
	service := newUpdateService(repo, checker, &syncRecorderStub{})

	_, err := service.Post(context.Background(), "t1", "alice@example.com", models.PostUpdatePayload{
		UpdateType: models.UpdateTypeNote,
		Title:      "   ",
		Content:    "body",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items, "validation failure must not mutate the log")
}

func TestUpdateServicePostEmptyContentProducesNoWrite(t *testing.T) {
	repo := &updateRepoStub{}
	checker := &assignmentCheckerStub{assigned: map[string]bool{"alice@example.com|t1": true}}
	service := newUpdateService(repo, checker, &syncRecorderStub{})

	_, err := service.Post(context.Background(), "t1", "alice@example.com", models.PostUpdatePayload{
		UpdateType: models.UpdateTypeNote,
		Title:      "title",
		Content:    "",
	})
	require.Error(t, err)
	assert.Empty(t, repo.items)
}

func TestUpdateServicePostUnassignedStudentForbidden(t *testing.T) {
	repo := &updateRepoStub{}
	checker := &assignmentCheckerStub{assigned: map[string]bool{}}
	service := newUpdateService(repo, checker, &syncRecorderStub{})

	_, err := service.Post(context.Background(), "t1", "alice@example.com", models.PostUpdatePayload{
		UpdateType: models.UpdateTypeNote,
		Title:      "title",
		Content:    "body",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestUpdateServiceListNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	repo := &updateRepoStub{items: []models.StudentUpdate{
		{ID: "u-1", StudentEmail: "alice@example.com", Title: "older", CreatedAt: now.Add(-time.Hour)},
		{ID: "u-2", StudentEmail: "alice@example.com", Title: "newer", CreatedAt: now},
		{ID: "u-3", StudentEmail: "bob@example.com", Title: "other student", CreatedAt: now},
	}}
	service := newUpdateService(repo, nil, &syncRecorderStub{})

	updates, err := service.List(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "u-2", updates[0].ID)
	assert.Equal(t, "u-1", updates[1].ID)
}

func TestUpdateServiceMarkRead(t *testing.T) {
	repo := &updateRepoStub{items: []models.StudentUpdate{
		{ID: "u-1", StudentEmail: "alice@example.com"},
	}}
	sync := &syncRecorderStub{}
	service := newUpdateService(repo, nil, sync)

	require.NoError(t, service.MarkRead(context.Background(), "alice@example.com", "u-1"))
	assert.True(t, repo.items[0].IsRead)
	assert.Equal(t, []string{"updates:alice@example.com"}, sync.notified)
}
