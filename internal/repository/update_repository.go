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

// UpdateRepository persists per-student update logs.
type UpdateRepository struct {
	db *sqlx.DB
}

// NewUpdateRepository constructs the repository.
func NewUpdateRepository(db *sqlx.DB) *UpdateRepository {
	return &UpdateRepository{db: db}
}

// Create appends an update to the student's log.
func (r *UpdateRepository) Create(ctx context.Context, update *models.StudentUpdate) error {
	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	if update.CreatedAt.IsZero() {
		update.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_updates
		(id, student_email, tutor_username, update_type, title, content, is_read, created_at)
		VALUES (:id, :student_email, :tutor_username, :update_type, :title, :content, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, update); err != nil {
		return fmt.Errorf("create student update: %w", err)
	}
	return nil
}

// ListByStudent returns the student's updates, newest first.
func (r *UpdateRepository) ListByStudent(ctx context.Context, studentEmail string) ([]models.StudentUpdate, error) {
	const query = `SELECT id, student_email, tutor_username, update_type, title, content, is_read, created_at
		FROM student_updates
		WHERE student_email = $1
		ORDER BY created_at DESC, id DESC`
	var updates []models.StudentUpdate
	if err := r.db.SelectContext(ctx, &updates, query, studentEmail); err != nil {
		return nil, fmt.Errorf("list student updates: %w", err)
	}
	return updates, nil
}

// MarkRead flips the read flag on one of the student's updates.
func (r *UpdateRepository) MarkRead(ctx context.Context, studentEmail, updateID string) error {
	const query = `UPDATE student_updates SET is_read = TRUE WHERE id = $1 AND student_email = $2`
	result, err := r.db.ExecContext(ctx, query, updateID, studentEmail)
	if err != nil {
		return fmt.Errorf("mark update read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check marked update rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUnread returns the student's unread update count.
func (r *UpdateRepository) CountUnread(ctx context.Context, studentEmail string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_updates WHERE student_email = $1 AND is_read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentEmail); err != nil {
		return 0, fmt.Errorf("count unread updates: %w", err)
	}
	return count, nil
}

// CountByStudent returns the total number of updates written to a student.
func (r *UpdateRepository) CountByStudent(ctx context.Context, studentEmail string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_updates WHERE student_email = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentEmail); err != nil {
		return 0, fmt.Errorf("count student updates: %w", err)
	}
	return count, nil
}

// CountByTutor returns the number of updates a tutor has posted.
func (r *UpdateRepository) CountByTutor(ctx context.Context, tutorUsername string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_updates WHERE tutor_username = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tutorUsername); err != nil {
		return 0, fmt.Errorf("count tutor updates: %w", err)
	}
	return count, nil
}
