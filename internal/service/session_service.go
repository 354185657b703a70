package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tutoringco/portal-api/internal/models"
	appErrors "github.com/tutoringco/portal-api/pkg/errors"
)

// DefaultSessionMinutes is the booking length used when the scheduler does
// not specify one.
const DefaultSessionMinutes = 60

type sessionRepository interface {
	CreateLog(ctx context.Context, log *models.SessionLog) error
	ListLogsByStudent(ctx context.Context, studentEmail string) ([]models.SessionLog, error)
	ListLogsByTutor(ctx context.Context, tutorUsername string) ([]models.SessionLog, error)
	CreateScheduled(ctx context.Context, session *models.ScheduledSession) error
	GetScheduled(ctx context.Context, id string) (*models.ScheduledSession, error)
	ListScheduledByStudent(ctx context.Context, studentEmail string) ([]models.ScheduledSession, error)
	ListScheduledByTutor(ctx context.Context, tutorUsername string) ([]models.ScheduledSession, error)
	UpdateScheduledStatus(ctx context.Context, id string, status models.SessionStatus) error
}

// SessionService manages session history logs and future bookings.
type SessionService struct {
	sessions    sessionRepository
	assignments assignmentChecker
	sync        changeNotifier
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSessionService constructs the service.
func NewSessionService(sessions sessionRepository, assignments assignmentChecker, sync changeNotifier, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, assignments: assignments, sync: sync, validator: validate, logger: logger}
}

// Log records a completed session. The date must parse and the duration,
// which arrives as a string, must coerce to a positive integer; validation
// failures produce no write.
func (s *SessionService) Log(ctx context.Context, tutorUsername, studentEmail string, payload models.LogSessionPayload) (*models.SessionLog, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	duration, err := parseDuration(payload.Duration)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be a positive number of minutes")
	}

	sessionDate, err := parseDate(payload.SessionDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session date is not a recognised date")
	}

	if err := s.authorize(ctx, tutorUsername, studentEmail); err != nil {
		return nil, err
	}

	log := &models.SessionLog{
		StudentEmail:            studentEmail,
		TutorUsername:           tutorUsername,
		Title:                   strings.TrimSpace(payload.Title),
		Subject:                 payload.Subject,
		SessionDate:             sessionDate,
		DurationMinutes:         duration,
		TopicsCovered:           payload.TopicsCovered,
		Comments:                payload.Comments,
		HomeworkAssigned:        payload.HomeworkAssigned,
		NextTopics:              payload.NextTopics,
		StudentEngagementRating: payload.StudentEngagementRating,
	}
	if err := s.sessions.CreateLog(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to log session")
	}

	s.logger.Info("session logged",
		zap.String("session_id", log.ID),
		zap.String("student_email", studentEmail),
		zap.Int("duration_minutes", duration))
	s.sync.NotifyChange(ctx, EntitySessions, studentEmail)

	return log, nil
}

// ListLogs returns the student's session history, newest first.
func (s *SessionService) ListLogs(ctx context.Context, studentEmail string) ([]models.SessionLog, error) {
	logs, err := s.sessions.ListLogsByStudent(ctx, studentEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session logs")
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}
	return logs, nil
}

// ListLogsForTutor returns sessions the tutor has logged, newest first.
func (s *SessionService) ListLogsForTutor(ctx context.Context, tutorUsername string) ([]models.SessionLog, error) {
	logs, err := s.sessions.ListLogsByTutor(ctx, tutorUsername)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list session logs")
	}
	if logs == nil {
		logs = []models.SessionLog{}
	}
	return logs, nil
}

// Schedule books a future session, defaulting the duration when omitted.
func (s *SessionService) Schedule(ctx context.Context, tutorUsername, studentEmail string, payload models.ScheduleSessionPayload) (*models.ScheduledSession, error) {
	if err := s.validator.Struct(payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	scheduledAt, err := parseDateTime(payload.ScheduledAt)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled time is not a recognised date")
	}

	if err := s.authorize(ctx, tutorUsername, studentEmail); err != nil {
		return nil, err
	}

	duration := payload.DurationMinutes
	if duration <= 0 {
		duration = DefaultSessionMinutes
	}

	session := &models.ScheduledSession{
		StudentEmail:    studentEmail,
		TutorUsername:   tutorUsername,
		Title:           strings.TrimSpace(payload.Title),
		Subject:         payload.Subject,
		ScheduledAt:     scheduledAt,
		DurationMinutes: duration,
		Status:          models.SessionStatusScheduled,
		GoogleMeetLink:  payload.GoogleMeetLink,
	}
	if err := s.sessions.CreateScheduled(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule session")
	}

	s.sync.NotifyChange(ctx, EntitySessions, studentEmail)
	return session, nil
}

// ListScheduled returns the student's bookings, soonest first.
func (s *SessionService) ListScheduled(ctx context.Context, studentEmail string) ([]models.ScheduledSession, error) {
	sessions, err := s.sessions.ListScheduledByStudent(ctx, studentEmail)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled sessions")
	}
	if sessions == nil {
		sessions = []models.ScheduledSession{}
	}
	return sessions, nil
}

// ListScheduledForTutor returns the tutor's bookings, soonest first.
func (s *SessionService) ListScheduledForTutor(ctx context.Context, tutorUsername string) ([]models.ScheduledSession, error) {
	sessions, err := s.sessions.ListScheduledByTutor(ctx, tutorUsername)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scheduled sessions")
	}
	if sessions == nil {
		sessions = []models.ScheduledSession{}
	}
	return sessions, nil
}

// Transition moves a booking through its state machine. Only the owning
// tutor may transition, and only forward moves are allowed.
func (s *SessionService) Transition(ctx context.Context, tutorUsername, sessionID string, status models.SessionStatus) (*models.ScheduledSession, error) {
	session, err := s.sessions.GetScheduled(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled session")
	}
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduled session not found")
	}
	if session.TutorUsername != tutorUsername {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "session belongs to a different tutor")
	}
	if !models.CanTransition(session.Status, status) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "invalid session status transition")
	}

	if err := s.sessions.UpdateScheduledStatus(ctx, sessionID, status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "scheduled session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}

	session.Status = status
	s.sync.NotifyChange(ctx, EntitySessions, session.StudentEmail)
	return session, nil
}

func (s *SessionService) authorize(ctx context.Context, tutorUsername, studentEmail string) error {
	if s.assignments == nil {
		return nil
	}
	assigned, err := s.assignments.IsAssigned(ctx, studentEmail, tutorUsername)
	if err != nil {
		return err
	}
	if !assigned {
		return appErrors.Clone(appErrors.ErrForbidden, "student is not assigned to this tutor")
	}
	return nil
}

// parseDuration coerces a string duration like "45" to a positive minute
// count.
func parseDuration(raw string) (int, error) {
	duration, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, strconv.ErrRange
	}
	return duration, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04"}

func parseDate(raw string) (time.Time, error) {
	return parseAny(raw, dateLayouts)
}

func parseDateTime(raw string) (time.Time, error) {
	return parseAny(raw, []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04"})
}

func parseAny(raw string, layouts []string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var firstErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
