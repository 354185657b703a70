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

// ApplicationRepository persists volunteer tutor applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a pending application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.TutorApplication) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now().UTC()
	}
	if app.Status == "" {
		app.Status = models.ApplicationStatusPending
	}
	const query = `INSERT INTO tutor_applications
		(id, full_name, email, phone, education_level, subjects, grade_band, experience, availability_hours, motivation, status, submitted_at)
		VALUES (:id, :full_name, :email, :phone, :education_level, :subjects, :grade_band, :experience, :availability_hours, :motivation, :status, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("create tutor application: %w", err)
	}
	return nil
}

// GetByID fetches an application. Returns nil when absent.
func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.TutorApplication, error) {
	const query = `SELECT id, full_name, email, phone, education_level, subjects, grade_band, experience, availability_hours, motivation, status,
		reviewed_by, review_note, submitted_at, reviewed_at
		FROM tutor_applications WHERE id = $1`
	var app models.TutorApplication
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor application: %w", err)
	}
	return &app, nil
}

// List returns applications, optionally filtered by status, newest first.
func (r *ApplicationRepository) List(ctx context.Context, status models.ApplicationStatus) ([]models.TutorApplication, error) {
	query := `SELECT id, full_name, email, phone, education_level, subjects, grade_band, experience, availability_hours, motivation, status,
		reviewed_by, review_note, submitted_at, reviewed_at
		FROM tutor_applications`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC`

	var apps []models.TutorApplication
	if err := r.db.SelectContext(ctx, &apps, query, args...); err != nil {
		return nil, fmt.Errorf("list tutor applications: %w", err)
	}
	return apps, nil
}

// HasPendingForEmail reports whether the email already has a pending application.
func (r *ApplicationRepository) HasPendingForEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM tutor_applications WHERE email = $1 AND status = 'pending' LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check pending application: %w", err)
	}
	return true, nil
}

// CountPending returns the number of applications awaiting review.
func (r *ApplicationRepository) CountPending(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM tutor_applications WHERE status = 'pending'`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count pending applications: %w", err)
	}
	return count, nil
}

// Approve records an approval and provisions the tutor profile in one
// transaction. If the applicant already holds an account, the role upgrade is
// applied in the same transaction.
func (r *ApplicationRepository) Approve(ctx context.Context, applicationID, reviewerID string, note *string, profile *models.TutorProfile) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const updateApp = `UPDATE tutor_applications
		SET status = 'approved', reviewed_by = $1, review_note = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'pending'`
	result, err := tx.ExecContext(ctx, updateApp, reviewerID, note, now, applicationID)
	if err != nil {
		return fmt.Errorf("approve tutor application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check approved application rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	profile.CreatedAt = now
	profile.UpdatedAt = now
	const insertProfile = `INSERT INTO tutor_profiles
		(id, user_id, username, full_name, bio, education, subjects, grade_band, rating, students_helped, active, created_at, updated_at)
		VALUES (:id, :user_id, :username, :full_name, :bio, :education, :subjects, :grade_band, :rating, :students_helped, :active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertProfile, profile); err != nil {
		return fmt.Errorf("insert tutor profile: %w", err)
	}

	if profile.UserID != "" {
		const upgradeRole = `UPDATE users SET role = 'TUTOR', updated_at = $1 WHERE id = $2`
		if _, err = tx.ExecContext(ctx, upgradeRole, now, profile.UserID); err != nil {
			return fmt.Errorf("upgrade applicant role: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit approval transaction: %w", err)
	}
	return nil
}

// Reject records a rejection.
func (r *ApplicationRepository) Reject(ctx context.Context, applicationID, reviewerID string, note *string) error {
	const query = `UPDATE tutor_applications
		SET status = 'rejected', reviewed_by = $1, review_note = $2, reviewed_at = $3
		WHERE id = $4 AND status = 'pending'`
	result, err := r.db.ExecContext(ctx, query, reviewerID, note, time.Now().UTC(), applicationID)
	if err != nil {
		return fmt.Errorf("reject tutor application: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rejected application rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
