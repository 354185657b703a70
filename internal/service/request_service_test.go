package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type requestRepoStub struct {
	items []models.TutoringRequest
}

func (s *requestRepoStub) Create(ctx context.Context, request *models.TutoringRequest) error {
	if request.ID == "" {
		request.ID = "req-1"
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	s.items = append([]models.TutoringRequest{*request}, s.items...)
	return nil
}

func (s *requestRepoStub) List(ctx context.Context) ([]models.TutoringRequest, error) {
	return s.items, nil
}

func (s *requestRepoStub) ListByTutor(ctx context.Context, tutorUsername string) ([]models.TutoringRequest, error) {
	var out []models.TutoringRequest
	for _, request := range s.items {
		if request.RequestedTutor == tutorUsername {
			out = append(out, request)
		}
	}
	return out, nil
}

func (s *requestRepoStub) GetByID(ctx context.Context, id string) (*models.TutoringRequest, error) {
	for _, request := range s.items {
		if request.ID == id {
			cp := request
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *requestRepoStub) CountByTutor(ctx context.Context, tutorUsername string) (int, error) {
	count := 0
	for _, request := range s.items {
		if request.RequestedTutor == tutorUsername {
			count++
		}
	}
	return count, nil
}

type tutorReaderStub struct {
	profiles map[string]*models.TutorProfile
}

func (s *tutorReaderStub) GetByUsername(ctx context.Context, username string) (*models.TutorProfile, error) {
	if profile, ok := s.profiles[username]; ok {
		return profile, nil
	}
	return nil, nil
}

func submitPayload(tutor string) models.SubmitRequestPayload {
	return models.SubmitRequestPayload{
		FullName:       "Alice Smith",
		Email:          "Alice@Example.com",
		GradeLevel:     "9",
		School:         "Lincoln High",
		Subjects:       []string{"math"},
		LearningStyle:  "visual",
		Frequency:      "weekly",
		Motivation:     "improve grades",
		RequestedTutor: tutor,
		TutorName:      "Tutor One",
	}
}

func TestRequestServiceSubmit(t *testing.T) {
	repo := &requestRepoStub{}
	tutors := &tutorReaderStub{profiles: map[string]*models.TutorProfile{
		"t1": {Username: "t1", Active: true},
	}}
	sync := &syncRecorderStub{}
	service := NewRequestService(repo, tutors, sync, nil, validator.New(), zap.NewNop())

	request, err := service.Submit(context.Background(), submitPayload("t1"))
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", request.Email, "email is normalised")
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"queue:t1"}, sync.notified)
}

func TestRequestServiceSubmitUnknownTutor(t *testing.T) {
	repo := &requestRepoStub{}
	tutors := &tutorReaderStub{profiles: map[string]*models.TutorProfile{}}
	service := NewRequestService(repo, tutors, &syncRecorderStub{}, nil, validator.New(), zap.NewNop())

	_, err := service.Submit(context.Background(), submitPayload("ghost"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestRequestServiceSubmitMissingFields(t *testing.T) {
	repo := &requestRepoStub{}
	service := NewRequestService(repo, nil, &syncRecorderStub{}, nil, validator.New(), zap.NewNop())

	payload := submitPayload("t1")
	payload.Subjects = nil
	_, err := service.Submit(context.Background(), payload)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)
}

func TestRequestServiceSubmitTracksQueueDepth(t *testing.T) {
	repo := &requestRepoStub{}
	tutors := &tutorReaderStub{profiles: map[string]*models.TutorProfile{
		"t1": {Username: "t1", Active: true},
	}}
	metrics := NewMetricsService()
	service := NewRequestService(repo, tutors, &syncRecorderStub{}, metrics, validator.New(), zap.NewNop())

	_, err := service.Submit(context.Background(), submitPayload("t1"))
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), submitPayload("t1"))
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.queueDepth.WithLabelValues("t1")))
}

func TestRequestServiceListNewestFirst(t *testing.T) {
	repo := &requestRepoStub{}
	tutors := &tutorReaderStub{profiles: map[string]*models.TutorProfile{
		"t1": {Username: "t1", Active: true},
	}}
	service := NewRequestService(repo, tutors, &syncRecorderStub{}, nil, validator.New(), zap.NewNop())

	_, err := service.Submit(context.Background(), submitPayload("t1"))
	require.NoError(t, err)

	second := submitPayload("t1")
	second.FullName = "Bob Jones"
	second.Email = "bob@example.com"
	_, err = service.Submit(context.Background(), second)
	require.NoError(t, err)

	queue, err := service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "bob@example.com", queue[0].Email, "most recent submission first")
}
