package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

type updateRepository interface {
	Create(ctx context.Context, update *models.StudentUpdate) error
	ListByStudent(ctx context.Context, studentEmail string) ([]models.StudentUpdate, error)
	MarkRead(ctx context.Context, studentEmail, updateID string) error
}

type assignmentChecker interface {
	IsAssigned(ctx context.Context, studentEmail, tutorUsername string) (bool, error)
}

// UpdateService manages per-student update logs.
type UpdateService struct {
	updates     updateRepository
	assignments assignmentChecker
	sync        changeNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUpdateService constructs the service.
func NewUpdateService(updates updateRepository, assignments assignmentChecker, sync changeNotifier, validate *validator.Validate, logger *zap.Logger) *UpdateService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateService{updates: updates, assignments: assignments, sync: sync, validator: validate, logger: logger}
}

// Post appends an update to the student's log. Title and content must be
// non-empty after trimming; nothing is written when validation fails. The
// acting tutor must have the student in their registry.
func (s *UpdateService) Post(ctx context.Context, tutorUsername, studentEmail string, payload models.PostUpdatePayload) (*models.StudentUpdate, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	title := strings.TrimSpace(payload.Title)
	content := strings.TrimSpace(payload.Content)
	if title == "" || content == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title and content are required")
	}
	if !models.ValidUpdateType(payload.UpdateType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown update type")
	}

	if s.assignments != nil {
		assigned, err := s.assignments.IsAssigned(ctx, studentEmail, tutorUsername)
		if err != nil {
			return nil, err
		}
		if !assigned {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to this tutor")
		}
	}

	update := &models.StudentUpdate{
		StudentEmail:  studentEmail,
		TutorUsername: tutorUsername,
		UpdateType:    payload.UpdateType,
		Title:         title,
		Content:       content,
		IsRead:        false,
	}
	if err := s.updates.Create(ctx, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to post update")
	}

	s.logger.Info("student update posted",
		zap.String("update_id", update.ID),
		zap.String("student_email", studentEmail),
		zap.String("type", string(update.UpdateType)))
	s.sync.NotifyChange(ctx, EntityUpdates, studentEmail)

	return update, nil
}

// List returns the student's updates, newest first.
func (s *UpdateService) List(ctx context.Context, studentEmail string) ([]models.StudentUpdate, error) {
	updates, err := s.updates.ListByStudent(ctx, studentEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list updates")
	}
	if updates == nil {
		updates = []models.StudentUpdate{}
	}
	return updates, nil
}

// CanAccess reports whether a tutor may read the student's log.
func (s *UpdateService) CanAccess(ctx context.Context, studentEmail, tutorUsername string) (bool, error) {
	assigned, err := s.assignments.IsAssigned(ctx, studentEmail, tutorUsername)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	return assigned, nil
}

// MarkRead flips the read flag on one of the student's updates.
func (s *UpdateService) MarkRead(ctx context.Context, studentEmail, updateID string) error {
	if err := s.updates.MarkRead(ctx, studentEmail, updateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "update not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark update read")
	}
	s.sync.NotifyChange(ctx, EntityUpdates, studentEmail)
	return nil
}
