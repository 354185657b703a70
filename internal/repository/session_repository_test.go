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

func newSessionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSessionRepositoryCreateLog(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO session_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	log := &models.SessionLog{
		StudentEmail:    "alice@example.com",
		TutorUsername:   "t1",
		Title:           "Algebra review",
		Subject:         "math",
		SessionDate:     time.Now(),
		DurationMinutes: 45,
	}
	require.NoError(t, repo.CreateLog(context.Background(), log))
	assert.NotEmpty(t, log.ID)
	assert.False(t, log.LoggedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListLogsNewestFirst(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_email", "tutor_username", "title", "subject", "session_date",
		"duration_minutes", "topics_covered", "comments", "homework_assigned", "next_topics", "student_engagement_rating", "logged_at"}).
		AddRow("s-2", "alice@example.com", "t1", "Geometry", "math", now, 60, "", "", "", "", nil, now).
		AddRow("s-1", "alice@example.com", "t1", "Algebra", "math", now.Add(-24*time.Hour), 45, "", "", "", "", 4, now.Add(-24*time.Hour))
	mock.ExpectQuery("SELECT (.+) FROM session_logs\\s+WHERE student_email = \\$1\\s+ORDER BY logged_at DESC, id DESC").
		WithArgs("alice@example.com").
		WillReturnRows(rows)

	logs, err := repo.ListLogsByStudent(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "s-2", logs[0].ID)
	assert.Equal(t, 45, logs[1].DurationMinutes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositorySumMinutes(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(SUM(duration_minutes), 0) FROM session_logs WHERE student_email = $1")).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(105))

	total, err := repo.SumMinutesByStudent(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, 105, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateScheduledStatus(t *testing.T) {
	db, mock, cleanup := newSessionMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_sessions SET status = $1 WHERE id = $2")).
		WithArgs(models.SessionStatusCompleted, "sched-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateScheduledStatus(context.Background(), "sched-1", models.SessionStatusCompleted))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE scheduled_sessions SET status = $1 WHERE id = $2")).
		WithArgs(models.SessionStatusCompleted, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateScheduledStatus(context.Background(), "missing", models.SessionStatusCompleted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
