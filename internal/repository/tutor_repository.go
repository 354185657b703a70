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

// TutorRepository persists public tutor directory profiles.
type TutorRepository struct {
	db *sqlx.DB
}

// NewTutorRepository constructs the repository.
func NewTutorRepository(db *sqlx.DB) *TutorRepository {
	return &TutorRepository{db: db}
}

// Create inserts a tutor profile.
func (r *TutorRepository) Create(ctx context.Context, profile *models.TutorProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	const query = `INSERT INTO tutor_profiles
		(id, user_id, username, full_name, bio, education, subjects, grade_band, rating, students_helped, active, created_at, updated_at)
		VALUES (:id, :user_id, :username, :full_name, :bio, :education, :subjects, :grade_band, :rating, :students_helped, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create tutor profile: %w", err)
	}
	return nil
}

// ListActive returns every active tutor ordered by name.
func (r *TutorRepository) ListActive(ctx context.Context) ([]models.TutorProfile, error) {
	const query = `SELECT id, user_id, username, full_name, bio, education, subjects, grade_band, rating, students_helped, active, created_at, updated_at
		FROM tutor_profiles
		WHERE active = TRUE
		ORDER BY full_name ASC`
	var profiles []models.TutorProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list active tutors: %w", err)
	}
	return profiles, nil
}

// GetByUsername fetches a profile by its directory username. Returns nil when
// absent.
func (r *TutorRepository) GetByUsername(ctx context.Context, username string) (*models.TutorProfile, error) {
	const query = `SELECT id, user_id, username, full_name, bio, education, subjects, grade_band, rating, students_helped, active, created_at, updated_at
		FROM tutor_profiles WHERE username = $1`
	var profile models.TutorProfile
	if err := r.db.GetContext(ctx, &profile, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor profile: %w", err)
	}
	return &profile, nil
}

// GetByUserID fetches the profile owned by a user account. Returns nil when
// absent.
func (r *TutorRepository) GetByUserID(ctx context.Context, userID string) (*models.TutorProfile, error) {
	const query = `SELECT id, user_id, username, full_name, bio, education, subjects, grade_band, rating, students_helped, active, created_at, updated_at
		FROM tutor_profiles WHERE user_id = $1`
	var profile models.TutorProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tutor profile by user: %w", err)
	}
	return &profile, nil
}

// Update rewrites the mutable fields of a profile.
func (r *TutorRepository) Update(ctx context.Context, profile *models.TutorProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tutor_profiles
		SET full_name = :full_name, bio = :bio, education = :education, subjects = :subjects,
		    grade_band = :grade_band, rating = :rating, students_helped = :students_helped,
		    active = :active, updated_at = :updated_at
		WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, profile)
	if err != nil {
		return fmt.Errorf("update tutor profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated profile rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountActive returns the number of active directory profiles.
func (r *TutorRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM tutor_profiles WHERE active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active tutors: %w", err)
	}
	return count, nil
}
