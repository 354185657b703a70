package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type requestRepository interface {
	Create(ctx context.Context, request *models.TutoringRequest) error
	List(ctx context.Context) ([]models.TutoringRequest, error)
	ListByTutor(ctx context.Context, tutorUsername string) ([]models.TutoringRequest, error)
	GetByID(ctx context.Context, id string) (*models.TutoringRequest, error)
	CountByTutor(ctx context.Context, tutorUsername string) (int, error)
}

type tutorDirectoryReader interface {
	GetByUsername(ctx context.Context, username string) (*models.TutorProfile, error)
}

type changeNotifier interface {
	NotifyChange(ctx context.Context, entity, key string)
}

// RequestService manages the global queue of pending tutoring requests.
type RequestService struct {
	requests  requestRepository
	tutors    tutorDirectoryReader
	sync      changeNotifier
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRequestService constructs the service.
func NewRequestService(requests requestRepository, tutors tutorDirectoryReader, sync changeNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *RequestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestService{requests: requests, tutors: tutors, sync: sync, metrics: metrics, validator: validate, logger: logger}
}

// Submit appends a request to the queue after verifying the named tutor
// exists in the directory.
func (s *RequestService) Submit(ctx context.Context, payload models.SubmitRequestPayload) (*models.TutoringRequest, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request payload")
	}

	if s.tutors != nil {
		tutor, err := s.tutors.GetByUsername(ctx, payload.RequestedTutor)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up requested tutor")
		}
		if tutor == nil || !tutor.Active {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "requested tutor not found")
		}
	}

	request := &models.TutoringRequest{
		FullName:             strings.TrimSpace(payload.FullName),
		Email:                strings.ToLower(strings.TrimSpace(payload.Email)),
		GradeLevel:           payload.GradeLevel,
		School:               payload.School,
		Subjects:             payload.Subjects,
		LearningStyle:        payload.LearningStyle,
		LearningDisabilities: payload.LearningDisabilities,
		Frequency:            payload.Frequency,
		Motivation:           payload.Motivation,
		RequestedTutor:       payload.RequestedTutor,
		TutorName:            payload.TutorName,
	}
	if err := s.requests.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit request")
	}

	s.logger.Info("tutoring request submitted",
		zap.String("request_id", request.ID),
		zap.String("requested_tutor", request.RequestedTutor))
	s.sync.NotifyChange(ctx, EntityQueue, request.RequestedTutor)
	s.gaugeQueueDepth(ctx, request.RequestedTutor)

	return request, nil
}

// gaugeQueueDepth re-counts the tutor's pending queue for the metrics gauge.
func (s *RequestService) gaugeQueueDepth(ctx context.Context, tutorUsername string) {
	if s.metrics == nil {
		return
	}
	depth, err := s.requests.CountByTutor(ctx, tutorUsername)
	if err != nil {
		s.logger.Warn("queue depth count failed", zap.String("tutor", tutorUsername), zap.Error(err))
		return
	}
	s.metrics.SetQueueDepth(tutorUsername, depth)
}

// List returns the full pending queue, newest first.
func (s *RequestService) List(ctx context.Context) ([]models.TutoringRequest, error) {
	requests, err := s.requests.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if requests == nil {
		requests = []models.TutoringRequest{}
	}
	return requests, nil
}

// ListForTutor returns pending requests naming the tutor, newest first.
func (s *RequestService) ListForTutor(ctx context.Context, tutorUsername string) ([]models.TutoringRequest, error) {
	requests, err := s.requests.ListByTutor(ctx, tutorUsername)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requests")
	}
	if requests == nil {
		requests = []models.TutoringRequest{}
	}
	return requests, nil
}

// Get fetches one pending request.
func (s *RequestService) Get(ctx context.Context, id string) (*models.TutoringRequest, error) {
	request, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	return request, nil
}
