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

// RequestRepository persists the global queue of pending tutoring requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create appends a request to the queue.
func (r *RequestRepository) Create(ctx context.Context, request *models.TutoringRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO tutoring_requests
		(id, full_name, email, grade_level, school, subjects, learning_style, learning_disabilities,
		 frequency, motivation, requested_tutor, tutor_name, created_at)
		VALUES (:id, :full_name, :email, :grade_level, :school, :subjects, :learning_style, :learning_disabilities,
		 :frequency, :motivation, :requested_tutor, :tutor_name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create tutoring request: %w", err)
	}
	return nil
}

// List returns the pending queue, newest first.
func (r *RequestRepository) List(ctx context.Context) ([]models.TutoringRequest, error) {
	const query = `SELECT id, full_name, email, grade_level, school, subjects, learning_style, learning_disabilities,
		frequency, motivation, requested_tutor, tutor_name, created_at
		FROM tutoring_requests
		ORDER BY created_at DESC, id DESC`
	var requests []models.TutoringRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list tutoring requests: %w", err)
	}
	return requests, nil
}

// ListByTutor returns pending requests naming the tutor, newest first.
func (r *RequestRepository) ListByTutor(ctx context.Context, tutorUsername string) ([]models.TutoringRequest, error) {
	const query = `SELECT id, full_name, email, grade_level, school, subjects, learning_style, learning_disabilities,
		frequency, motivation, requested_tutor, tutor_name, created_at
		FROM tutoring_requests
		WHERE requested_tutor = $1
		ORDER BY created_at DESC, id DESC`
	var requests []models.TutoringRequest
	if err := r.db.SelectContext(ctx, &requests, query, tutorUsername); err != nil {
		return nil, fmt.Errorf("list tutoring requests for tutor: %w", err)
	}
	return requests, nil
}

// GetByID fetches a single pending request. Returns nil when absent.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.TutoringRequest, error) {
	const query = `SELECT id, full_name, email, grade_level, school, subjects, learning_style, learning_disabilities,
		frequency, motivation, requested_tutor, tutor_name, created_at
		FROM tutoring_requests WHERE id = $1`
	var request models.TutoringRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutoring request: %w", err)
	}
	return &request, nil
}

// Delete removes a request from the queue. Deleting an absent id is not an
// error.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tutoring_requests WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete tutoring request: %w", err)
	}
	return nil
}

// CountPending returns the current queue depth.
func (r *RequestRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM tutoring_requests`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count tutoring requests: %w", err)
	}
	return count, nil
}

// CountByTutor returns the queue depth scoped to one tutor.
func (r *RequestRepository) CountByTutor(ctx context.Context, tutorUsername string) (int, error) {
	const query = `SELECT COUNT(*) FROM tutoring_requests WHERE requested_tutor = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tutorUsername); err != nil {
		return 0, fmt.Errorf("count tutoring requests for tutor: %w", err)
	}
	return count, nil
}
