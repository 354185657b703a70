package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutoringco/portal-api/internal/models"
)

func newUpdateMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUpdateRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newUpdateMock(t)
	defer cleanup()
	repo := NewUpdateRepository(db)

	mock.ExpectExec("INSERT INTO student_updates").
		WithArgs(sqlmock.AnyArg(), "alice@example.com", "t1", "progress", "Great week", "Solid improvement on algebra.", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	update := &models.StudentUpdate{
		StudentEmail:  "alice@example.com",
		TutorUsername: "t1",
		UpdateType:    models.UpdateTypeProgress,
		Title:         "Great week",
		Content:       "Solid improvement on algebra.",
	}
	require.NoError(t, repo.Create(context.Background(), update))
	assert.NotEmpty(t, update.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRepositoryListByStudentNewestFirst(t *testing.T) {
	db, mock, cleanup := newUpdateMock(t)
	defer cleanup()
	repo := NewUpdateRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_email", "tutor_username", "update_type", "title", "content", "is_read", "created_at"}).
		AddRow("u-2", "alice@example.com", "t1", "note", "Second", "later", false, now).
		AddRow("u-1", "alice@example.com", "t1", "progress", "First", "earlier", true, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM student_updates\\s+WHERE student_email = \\$1\\s+ORDER BY created_at DESC, id DESC").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	updates, err := repo.ListByStudent(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, "u-2", updates[0].ID)
	assert.True(t, updates[0].CreatedAt.After(updates[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newUpdateMock(t)
	defer cleanup()
	repo := NewUpdateRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_updates SET is_read = TRUE WHERE id = $1 AND student_email = $2")).
		WithArgs("u-1", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkRead(context.Background(), "alice@example.com", "u-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE student_updates SET is_read = TRUE WHERE id = $1 AND student_email = $2")).
		WithArgs("missing", "alice@example.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "alice@example.com", "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRepositoryCountUnread(t *testing.T) {
	db, mock, cleanup := newUpdateMock(t)
	defer cleanup()
	repo := NewUpdateRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM student_updates WHERE student_email = $1 AND is_read = FALSE")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnread(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
