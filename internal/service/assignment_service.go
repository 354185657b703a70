package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type assignmentRepository interface {
	Accept(ctx context.Context, requestID string, update *models.StudentUpdate) (*models.AcceptedStudent, error)
	ListByTutor(ctx context.Context, tutorUsername string) ([]models.AcceptedStudent, error)
	GetByEmailAndTutor(ctx context.Context, studentEmail, tutorUsername string) (*models.AcceptedStudent, error)
}

type requestQueueAccess interface {
	GetByID(ctx context.Context, id string) (*models.TutoringRequest, error)
	Delete(ctx context.Context, id string) error
	CountByTutor(ctx context.Context, tutorUsername string) (int, error)
}

// AssignmentService moves requests out of the queue into tutor registries.
type AssignmentService struct {
	assignments assignmentRepository
	requests    requestQueueAccess
	audits      auditWriter
	sync        changeNotifier
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(assignments assignmentRepository, requests requestQueueAccess, audits auditWriter, sync changeNotifier, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{assignments: assignments, requests: requests, audits: audits, sync: sync, metrics: metrics, validator: validate, logger: logger}
}

// Accept consumes a queued request on behalf of the acting tutor. Only the
// tutor named by the request may accept it. The queue removal, registry
// insert, and confirmation update land in one transaction.
func (s *AssignmentService) Accept(ctx context.Context, actingTutor, requestID string) (*models.AcceptedStudent, error) {
	request, err := s.authorizeQueueAction(ctx, actingTutor, requestID)
	if err != nil {
		return nil, err
	}

	update := &models.StudentUpdate{
		UpdateType: models.UpdateTypeNote,
		Title:      "Tutor Assignment Confirmed",
		Content:    fmt.Sprintf("You have been accepted by %s. They will reach out to schedule your first session.", request.TutorName),
		IsRead:     false,
	}
	accepted, err := s.assignments.Accept(ctx, requestID, update)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept request")
	}

	s.logger.Info("request accepted",
		zap.String("request_id", requestID),
		zap.String("tutor", actingTutor),
		zap.String("student_email", accepted.Email))

	s.recordAudit(ctx, actingTutor, models.AuditActionAccept, requestID, accepted.Email)
	s.sync.NotifyChange(ctx, EntityQueue, actingTutor)
	s.sync.NotifyChange(ctx, EntityStudents, actingTutor)
	s.sync.NotifyChange(ctx, EntityUpdates, accepted.Email)
	s.gaugeQueueDepth(ctx, actingTutor)

	return accepted, nil
}

// Reject removes a queued request without notifying the student. Like
// Accept, only the requested tutor may reject.
func (s *AssignmentService) Reject(ctx context.Context, actingTutor, requestID string) error {
	request, err := s.authorizeQueueAction(ctx, actingTutor, requestID)
	if err != nil {
		return err
	}

	if err := s.requests.Delete(ctx, requestID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject request")
	}

	s.logger.Info("request rejected",
		zap.String("request_id", requestID),
		zap.String("tutor", actingTutor))

	s.recordAudit(ctx, actingTutor, models.AuditActionReject, requestID, request.Email)
	s.sync.NotifyChange(ctx, EntityQueue, actingTutor)
	s.gaugeQueueDepth(ctx, actingTutor)

	return nil
}

// ListAccepted returns the tutor's registry, most recent first.
func (s *AssignmentService) ListAccepted(ctx context.Context, tutorUsername string) ([]models.AcceptedStudent, error) {
	students, err := s.assignments.ListByTutor(ctx, tutorUsername)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accepted students")
	}
	if students == nil {
		students = []models.AcceptedStudent{}
	}
	return students, nil
}

// IsAssigned reports whether the student belongs to the tutor's registry.
func (s *AssignmentService) IsAssigned(ctx context.Context, studentEmail, tutorUsername string) (bool, error) {
	student, err := s.assignments.GetByEmailAndTutor(ctx, studentEmail, tutorUsername)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	return student != nil, nil
}

func (s *AssignmentService) gaugeQueueDepth(ctx context.Context, tutorUsername string) {
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

func (s *AssignmentService) authorizeQueueAction(ctx context.Context, actingTutor, requestID string) (*models.TutoringRequest, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load request")
	}
	if request == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "request not found")
	}
	if request.RequestedTutor != actingTutor {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "request is addressed to a different tutor")
	}
	return request, nil
}

func (s *AssignmentService) recordAudit(ctx context.Context, actingTutor string, action models.AuditAction, requestID, studentEmail string) {
	if s.audits == nil {
		return
	}
	if err := s.audits.Create(ctx, &models.AuditLog{
		Action:     action,
		Resource:   "tutoring_requests",
		ResourceID: &requestID,
		NewValues:  []byte(fmt.Sprintf(`{"tutor":%q,"student_email":%q}`, actingTutor, studentEmail)),
	}); err != nil {
		s.logger.Warn("failed to record queue audit log", zap.Error(err))
	}
}
