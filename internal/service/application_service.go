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

type applicationRepository interface {
	Create(ctx context.Context, app *models.TutorApplication) error
	GetByID(ctx context.Context, id string) (*models.TutorApplication, error)
	List(ctx context.Context, status models.ApplicationStatus) ([]models.TutorApplication, error)
	HasPendingForEmail(ctx context.Context, email string) (bool, error)
	Approve(ctx context.Context, applicationID, reviewerID string, note *string, profile *models.TutorProfile) error
	Reject(ctx context.Context, applicationID, reviewerID string, note *string) error
}

type applicantLookup interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type directoryInvalidator interface {
	InvalidateDirectory(ctx context.Context)
}

// ApplicationService handles volunteer tutor applications and admin review.
type ApplicationService struct {
	applications applicationRepository
	users        applicantLookup
	tutors       tutorDirectoryReader
	directory    directoryInvalidator
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(applications applicationRepository, users applicantLookup, tutors tutorDirectoryReader, directory directoryInvalidator, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{applications: applications, users: users, tutors: tutors, directory: directory, validator: validate, logger: logger}
}

// Submit files a volunteer application. One pending application per email.
func (s *ApplicationService) Submit(ctx context.Context, payload models.SubmitApplicationPayload) (*models.TutorApplication, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	email := strings.ToLower(strings.TrimSpace(payload.Email))
	pending, err := s.applications.HasPendingForEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing applications")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an application for this email is already under review")
	}

	app := &models.TutorApplication{
		FullName:          strings.TrimSpace(payload.FullName),
		Email:             email,
		Phone:             strings.TrimSpace(payload.Phone),
		EducationLevel:    payload.EducationLevel,
		Subjects:          payload.Subjects,
		GradeBand:         payload.GradeBand,
		Experience:        payload.Experience,
		AvailabilityHours: payload.AvailabilityHours,
		Motivation:        payload.Motivation,
		Status:            models.ApplicationStatusPending,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit application")
	}

	s.logger.Info("tutor application submitted", zap.String("application_id", app.ID))
	return app, nil
}

// List returns applications filtered by status when one is given.
func (s *ApplicationService) List(ctx context.Context, status models.ApplicationStatus) ([]models.TutorApplication, error) {
	apps, err := s.applications.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if apps == nil {
		apps = []models.TutorApplication{}
	}
	return apps, nil
}

// Review resolves a pending application. Approval provisions the directory
// profile under the chosen username and, if the applicant holds an account,
// upgrades its role.
func (s *ApplicationService) Review(ctx context.Context, reviewerID, applicationID string, payload models.ReviewApplicationPayload) (*models.TutorApplication, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
	}
	if app.Status != models.ApplicationStatusPending {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been reviewed")
	}

	switch payload.Status {
	case models.ApplicationStatusApproved:
		if err := s.approve(ctx, reviewerID, app, payload); err != nil {
			return nil, err
		}
	case models.ApplicationStatusRejected:
		if err := s.applications.Reject(ctx, applicationID, reviewerID, payload.ReviewNote); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been reviewed")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject application")
		}
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown review status")
	}

	reviewed, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload application")
	}
	return reviewed, nil
}

func (s *ApplicationService) approve(ctx context.Context, reviewerID string, app *models.TutorApplication, payload models.ReviewApplicationPayload) error {
	username := strings.ToLower(strings.TrimSpace(payload.Username))
	if username == "" {
		return appErrors.Clone(appErrors.ErrValidation, "a directory username is required to approve")
	}

	existing, err := s.tutors.GetByUsername(ctx, username)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username availability")
	}
	if existing != nil {
		return appErrors.Clone(appErrors.ErrConflict, "directory username is already taken")
	}

	profile := &models.TutorProfile{
		Username:  username,
		FullName:  app.FullName,
		Education: app.EducationLevel,
		Subjects:  app.Subjects,
		GradeBand: app.GradeBand,
		Active:    true,
	}
	if s.users != nil {
		account, err := s.users.GetByEmail(ctx, app.Email)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up applicant account")
		}
		if account != nil {
			profile.UserID = account.ID
		}
	}

	if err := s.applications.Approve(ctx, app.ID, reviewerID, payload.ReviewNote, profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrPreconditionFailed, "application has already been reviewed")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve application")
	}

	s.logger.Info("tutor application approved",
		zap.String("application_id", app.ID),
		zap.String("username", username))
	if s.directory != nil {
		s.directory.InvalidateDirectory(ctx)
	}
	return nil
}
