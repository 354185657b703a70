package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutoringco/portal-api/internal/models"
)

// SessionRepository persists session history logs and scheduled sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateLog appends a completed-session record to the student's history.
func (r *SessionRepository) CreateLog(ctx context.Context, log *models.SessionLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.LoggedAt.IsZero() {
		log.LoggedAt = time.Now().UTC()
	}
	const query = `INSERT INTO session_logs
		(id, student_email, tutor_username, title, subject, session_date, duration_minutes,
		 topics_covered, comments, homework_assigned, next_topics, student_engagement_rating, logged_at)
		VALUES (:id, :student_email, :tutor_username, :title, :subject, :session_date, :duration_minutes,
		 :topics_covered, :comments, :homework_assigned, :next_topics, :student_engagement_rating, :logged_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create session log: %w", err)
	}
	return nil
}

// ListLogsByStudent returns the student's session history, newest first.
func (r *SessionRepository) ListLogsByStudent(ctx context.Context, studentEmail string) ([]models.SessionLog, error) {
	const query = `SELECT id, student_email, tutor_username, title, subject, session_date, duration_minutes,
		topics_covered, comments, homework_assigned, next_topics, student_engagement_rating, logged_at
		FROM session_logs
		WHERE student_email = $1
		ORDER BY logged_at DESC, id DESC`
	var logs []models.SessionLog
	if err := r.db.SelectContext(ctx, &logs, query, studentEmail); err != nil {
		return nil, fmt.Errorf("list session logs: %w", err)
	}
	return logs, nil
}

// ListLogsByTutor returns sessions a tutor has logged, newest first.
func (r *SessionRepository) ListLogsByTutor(ctx context.Context, tutorUsername string) ([]models.SessionLog, error) {
	const query = `SELECT id, student_email, tutor_username, title, subject, session_date, duration_minutes,
		topics_covered, comments, homework_assigned, next_topics, student_engagement_rating, logged_at
		FROM session_logs
		WHERE tutor_username = $1
		ORDER BY logged_at DESC, id DESC`
	var logs []models.SessionLog
	if err := r.db.SelectContext(ctx, &logs, query, tutorUsername); err != nil {
		return nil, fmt.Errorf("list tutor session logs: %w", err)
	}
	return logs, nil
}

// CountLogsByTutor returns the number of sessions a tutor has logged.
func (r *SessionRepository) CountLogsByTutor(ctx context.Context, tutorUsername string) (int, error) {
	const query = `SELECT COUNT(*) FROM session_logs WHERE tutor_username = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tutorUsername); err != nil {
		return 0, fmt.Errorf("count tutor session logs: %w", err)
	}
	return count, nil
}

// SumMinutesByStudent totals a student's logged session time.
func (r *SessionRepository) SumMinutesByStudent(ctx context.Context, studentEmail string) (int, error) {
	const query = `SELECT COALESCE(SUM(duration_minutes), 0) FROM session_logs WHERE student_email = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, studentEmail); err != nil {
		return 0, fmt.Errorf("sum student session minutes: %w", err)
	}
	return total, nil
}

// CountLogsByStudent returns the number of sessions in a student's history.
func (r *SessionRepository) CountLogsByStudent(ctx context.Context, studentEmail string) (int, error) {
	const query = `SELECT COUNT(*) FROM session_logs WHERE student_email = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentEmail); err != nil {
		return 0, fmt.Errorf("count student session logs: %w", err)
	}
	return count, nil
}

// CountLogsSince counts sessions logged at or after the cutoff.
func (r *SessionRepository) CountLogsSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM session_logs WHERE logged_at >= $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, since.UTC()); err != nil {
		return 0, fmt.Errorf("count recent session logs: %w", err)
	}
	return count, nil
}

// CreateScheduled inserts a future session booking.
func (r *SessionRepository) CreateScheduled(ctx context.Context, session *models.ScheduledSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO scheduled_sessions
		(id, student_email, tutor_username, title, subject, scheduled_at, duration_minutes, status, google_meet_link, created_at)
		VALUES (:id, :student_email, :tutor_username, :title, :subject, :scheduled_at, :duration_minutes, :status, :google_meet_link, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create scheduled session: %w", err)
	}
	return nil
}

// GetScheduled fetches a booking by id. Returns nil when absent.
func (r *SessionRepository) GetScheduled(ctx context.Context, id string) (*models.ScheduledSession, error) {
	const query = `SELECT id, student_email, tutor_username, title, subject, scheduled_at, duration_minutes, status, google_meet_link, created_at
		FROM scheduled_sessions WHERE id = $1`
	var session models.ScheduledSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get scheduled session: %w", err)
	}
	return &session, nil
}

// ListScheduledByStudent returns a student's bookings, soonest first.
func (r *SessionRepository) ListScheduledByStudent(ctx context.Context, studentEmail string) ([]models.ScheduledSession, error) {
	const query = `SELECT id, student_email, tutor_username, title, subject, scheduled_at, duration_minutes, status, google_meet_link, created_at
		FROM scheduled_sessions
		WHERE student_email = $1
		ORDER BY scheduled_at ASC`
	var sessions []models.ScheduledSession
	if err := r.db.SelectContext(ctx, &sessions, query, studentEmail); err != nil {
		return nil, fmt.Errorf("list student scheduled sessions: %w", err)
	}
	return sessions, nil
}

// ListScheduledByTutor returns a tutor's bookings, soonest first.
func (r *SessionRepository) ListScheduledByTutor(ctx context.Context, tutorUsername string) ([]models.ScheduledSession, error) {
	const query = `SELECT id, student_email, tutor_username, title, subject, scheduled_at, duration_minutes, status, google_meet_link, created_at
		FROM scheduled_sessions
		WHERE tutor_username = $1
		ORDER BY scheduled_at ASC`
	var sessions []models.ScheduledSession
	if err := r.db.SelectContext(ctx, &sessions, query, tutorUsername); err != nil {
		return nil, fmt.Errorf("list tutor scheduled sessions: %w", err)
	}
	return sessions, nil
}

// CountUpcomingByStudent counts a student's future non-cancelled bookings.
func (r *SessionRepository) CountUpcomingByStudent(ctx context.Context, studentEmail string) (int, error) {
	const query = `SELECT COUNT(*) FROM scheduled_sessions
		WHERE student_email = $1 AND status = 'scheduled' AND scheduled_at >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentEmail, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("count student upcoming sessions: %w", err)
	}
	return count, nil
}

// CountUpcomingByTutor counts a tutor's future non-cancelled bookings.
func (r *SessionRepository) CountUpcomingByTutor(ctx context.Context, tutorUsername string) (int, error) {
	const query = `SELECT COUNT(*) FROM scheduled_sessions
		WHERE tutor_username = $1 AND status = 'scheduled' AND scheduled_at >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tutorUsername, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("count tutor upcoming sessions: %w", err)
	}
	return count, nil
}

// UpdateScheduledStatus transitions a booking to a new status.
func (r *SessionRepository) UpdateScheduledStatus(ctx context.Context, id string, status models.SessionStatus) error {
	const query = `UPDATE scheduled_sessions SET status = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update scheduled session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated session rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
