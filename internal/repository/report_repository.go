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

// ReportRepository persists async report job state.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create enqueues a report job row.
func (r *ReportRepository) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	const query = `INSERT INTO report_jobs (id, requested_by, report_type, format, params, status, created_at)
		VALUES (:id, :requested_by, :report_type, :format, :params, :status, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create report job: %w", err)
	}
	return nil
}

// GetByID fetches a job. Returns nil when absent.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	const query = `SELECT id, requested_by, report_type, format, params, status, file_path, error_msg,
		created_at, started_at, finished_at
		FROM report_jobs WHERE id = $1`
	var job models.ReportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get report job: %w", err)
	}
	return &job, nil
}

// ListByUser returns the user's jobs, newest first.
func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]models.ReportJob, error) {
	const query = `SELECT id, requested_by, report_type, format, params, status, file_path, error_msg,
		created_at, started_at, finished_at
		FROM report_jobs
		WHERE requested_by = $1
		ORDER BY created_at DESC`
	var jobs []models.ReportJob
	if err := r.db.SelectContext(ctx, &jobs, query, userID); err != nil {
		return nil, fmt.Errorf("list report jobs: %w", err)
	}
	return jobs, nil
}

// MarkProcessing transitions a job to PROCESSING.
func (r *ReportRepository) MarkProcessing(ctx context.Context, id string) error {
	const query = `UPDATE report_jobs SET status = 'PROCESSING', started_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}
	return nil
}

// MarkFinished records a completed job and its artifact path.
func (r *ReportRepository) MarkFinished(ctx context.Context, id, filePath string) error {
	const query = `UPDATE report_jobs SET status = 'FINISHED', file_path = $1, finished_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, filePath, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark report job finished: %w", err)
	}
	return nil
}

// MarkFailed records a failed job and the failure reason.
func (r *ReportRepository) MarkFailed(ctx context.Context, id, reason string) error {
	const query = `UPDATE report_jobs SET status = 'FAILED', error_msg = $1, finished_at = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, reason, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("mark report job failed: %w", err)
	}
	return nil
}
