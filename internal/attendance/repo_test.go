package attendance

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var logCols = []string{"id", "member_id", "log_date", "checkin_minutes", "checkout_minutes", "worked_minutes", "created_at", "updated_at"}

func TestRepository_FindOpen(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("checkout_minutes IS NULL")).
		WithArgs("000001", "2026-03-10").
		WillReturnRows(sqlmock.NewRows(logCols).AddRow("log-1", "000001", "2026-03-10", 540, nil, nil, ts, ts))

	l, err := NewRepository(db).FindOpen(context.Background(), "000001", "2026-03-10")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, 540, l.CheckInMinutes)
	assert.True(t, l.Open())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindOpen_None(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_logs")).
		WillReturnRows(sqlmock.NewRows(logCols))

	l, err := NewRepository(db).FindOpen(context.Background(), "000001", "2026-03-10")
	require.NoError(t, err)
	assert.Nil(t, l)
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_logs")).
		WithArgs(sqlmock.AnyArg(), "000001", "2026-03-10", 540).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	l, err := NewRepository(db).Create(context.Background(), Log{MemberID: "000001", Date: "2026-03-10", CheckInMinutes: 540})
	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, ts, l.CreatedAt)
}

func TestRepository_Create_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_logs")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_attendance_logs_open"})

	_, err = NewRepository(db).Create(context.Background(), Log{MemberID: "000001", Date: "2026-03-10", CheckInMinutes: 540})
	require.ErrorIs(t, err, ErrOpenLogExists)
}

func TestRepository_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance_logs")).
		WithArgs("log-1", 600, 60).
		WillReturnRows(sqlmock.NewRows(logCols).AddRow("log-1", "000001", "2026-03-10", 540, 600, 60, ts, ts))

	l, err := NewRepository(db).Close(context.Background(), "log-1", 600, 60)
	require.NoError(t, err)
	require.NotNil(t, l.WorkedMinutes)
	assert.Equal(t, 60, *l.WorkedMinutes)
	assert.False(t, l.Open())
}

func TestRepository_Close_AlreadyClosed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE attendance_logs")).
		WillReturnRows(sqlmock.NewRows(logCols))

	_, err = NewRepository(db).Close(context.Background(), "log-1", 600, 60)
	require.Error(t, err)
}
