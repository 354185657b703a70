package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoringco/portal-api/internal/models"
)

func newRequestMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec("INSERT INTO tutoring_requests").
		WithArgs(sqlmock.AnyArg(), "Alice Smith", "alice@example.com", "9", "Lincoln High",
			sqlmock.AnyArg(), "visual", nil, "weekly", "improve grades", "t1", "Tutor One", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.TutoringRequest{
		FullName:       "Alice Smith",
		Email:          "alice@example.com",
		GradeLevel:     "9",
		School:         "Lincoln High",
		Subjects:       pq.StringArray{"math", "physics"},
		LearningStyle:  "visual",
		Frequency:      "weekly",
		Motivation:     "improve grades",
		RequestedTutor: "t1",
		TutorName:      "Tutor One",
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryListNewestFirst(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "grade_level", "school", "subjects",
		"learning_style", "learning_disabilities", "frequency", "motivation", "requested_tutor", "tutor_name", "created_at"}).
		AddRow("req-2", "Bob", "bob@example.com", "10", "Lincoln High", pq.StringArray{"chemistry"},
			"auditory", nil, "weekly", "exam prep", "t1", "Tutor One", now).
		AddRow("req-1", "Alice", "alice@example.com", "9", "Lincoln High", pq.StringArray{"math"},
			"visual", nil, "weekly", "improve grades", "t1", "Tutor One", now.Add(-time.Minute))
	mock.ExpectQuery("SELECT (.+) FROM tutoring_requests\\s+ORDER BY created_at DESC, id DESC").
		WillReturnRows(rows)

	requests, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "req-2", requests[0].ID)
	assert.Equal(t, "req-1", requests[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryDeleteAbsentIsNoop(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tutoring_requests WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryGetByIDMissing(t *testing.T) {
	db, mock, cleanup := newRequestMock(t)
	defer cleanup()
	repo := NewRequestRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM tutoring_requests WHERE id = \\$1").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	request, err := repo.GetByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, request)
	assert.NoError(t, mock.ExpectationsWereMet())
}
