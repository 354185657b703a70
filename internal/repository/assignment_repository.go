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

// AssignmentRepository persists tutor-scoped accepted-student registries.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Accept atomically consumes a queued request: the request row is locked and
// deleted, an accepted-student row is inserted for the tutor, and the
// confirmation update is appended to the student's log. All three writes
// commit or none do.
func (r *AssignmentRepository) Accept(ctx context.Context, requestID string, update *models.StudentUpdate) (accepted *models.AcceptedStudent, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin accept transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var request models.TutoringRequest
	const lockQuery = `SELECT id, full_name, email, grade_level, school, subjects, learning_style, learning_disabilities,
		frequency, motivation, requested_tutor, tutor_name, created_at
		FROM tutoring_requests WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &request, lockQuery, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock tutoring request: %w", err)
	}

	const deleteQuery = `DELETE FROM tutoring_requests WHERE id = $1`
	if _, err = tx.ExecContext(ctx, deleteQuery, requestID); err != nil {
		return nil, fmt.Errorf("remove accepted request: %w", err)
	}

	now := time.Now().UTC()
	student := models.AcceptedStudent{
		ID:                   uuid.NewString(),
		RequestID:            request.ID,
		TutorUsername:        request.RequestedTutor,
		TutorName:            request.TutorName,
		FullName:             request.FullName,
		Email:                request.Email,
		GradeLevel:           request.GradeLevel,
		School:               request.School,
		Subjects:             request.Subjects,
		LearningStyle:        request.LearningStyle,
		LearningDisabilities: request.LearningDisabilities,
		Frequency:            request.Frequency,
		Motivation:           request.Motivation,
		AcceptedAt:           now,
	}
	const insertStudent = `INSERT INTO accepted_students
		(id, request_id, tutor_username, tutor_name, full_name, email, grade_level, school, subjects, learning_style,
		 learning_disabilities, frequency, motivation, accepted_at)
		VALUES (:id, :request_id, :tutor_username, :tutor_name, :full_name, :email, :grade_level, :school, :subjects, :learning_style,
		 :learning_disabilities, :frequency, :motivation, :accepted_at)`
	if _, err = tx.NamedExecContext(ctx, insertStudent, &student); err != nil {
		return nil, fmt.Errorf("insert accepted student: %w", err)
	}

	if update.ID == "" {
		update.ID = uuid.NewString()
	}
	update.StudentEmail = request.Email
	update.TutorUsername = request.RequestedTutor
	update.CreatedAt = now
	const insertUpdate = `INSERT INTO student_updates
		(id, student_email, tutor_username, update_type, title, content, is_read, created_at)
		VALUES (:id, :student_email, :tutor_username, :update_type, :title, :content, :is_read, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertUpdate, update); err != nil {
		return nil, fmt.Errorf("insert acceptance update: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit accept transaction: %w", err)
	}
	return &student, nil
}

// ListByTutor returns the tutor's accepted students, most recent first.
func (r *AssignmentRepository) ListByTutor(ctx context.Context, tutorUsername string) ([]models.AcceptedStudent, error) {
	const query = `SELECT id, request_id, tutor_username, tutor_name, full_name, email, grade_level, school, subjects,
		learning_style, learning_disabilities, frequency, motivation, accepted_at
		FROM accepted_students
		WHERE tutor_username = $1
		ORDER BY accepted_at DESC, id DESC`
	var students []models.AcceptedStudent
	if err := r.db.SelectContext(ctx, &students, query, tutorUsername); err != nil {
		return nil, fmt.Errorf("list accepted students: %w", err)
	}
	return students, nil
}

// GetByEmailAndTutor fetches the assignment linking a student to a tutor.
// Returns nil when the student is not assigned to that tutor.
func (r *AssignmentRepository) GetByEmailAndTutor(ctx context.Context, studentEmail, tutorUsername string) (*models.AcceptedStudent, error) {
	const query = `SELECT id, request_id, tutor_username, tutor_name, full_name, email, grade_level, school, subjects,
		learning_style, learning_disabilities, frequency, motivation, accepted_at
		FROM accepted_students
		WHERE email = $1 AND tutor_username = $2`
	var student models.AcceptedStudent
	if err := r.db.GetContext(ctx, &student, query, studentEmail, tutorUsername); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get accepted student: %w", err)
	}
	return &student, nil
}

// CountByTutor returns the size of a tutor's registry.
func (r *AssignmentRepository) CountByTutor(ctx context.Context, tutorUsername string) (int, error) {
	const query = `SELECT COUNT(*) FROM accepted_students WHERE tutor_username = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tutorUsername); err != nil {
		return 0, fmt.Errorf("count accepted students: %w", err)
	}
	return count, nil
}
