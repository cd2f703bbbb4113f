package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"gymkiosk/internal/store"
)

// ErrOpenLogExists is returned by Create when the member already has an open log that day.
var ErrOpenLogExists = errors.New("open log already exists")

const uniqueViolation = "23505"

// Repository persists attendance logs in Postgres.
type Repository struct {
	db store.DBTX
}

// NewRepository creates a repo.
func NewRepository(db store.DBTX) *Repository {
	return &Repository{db: db}
}

const logColumns = `id, member_id, to_char(log_date, 'YYYY-MM-DD'), checkin_minutes, checkout_minutes, worked_minutes, created_at, updated_at`

// FindOpen returns the member's log for date that has no checkout yet, or nil.
func (r *Repository) FindOpen(ctx context.Context, memberID, date string) (*Log, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+logColumns+`
		FROM attendance_logs
		WHERE member_id = $1 AND log_date = $2 AND checkout_minutes IS NULL
		LIMIT 1
	`, memberID, date)
	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// Create inserts an open log.
func (r *Repository) Create(ctx context.Context, l Log) (Log, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_logs (id, member_id, log_date, checkin_minutes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, l.ID, l.MemberID, l.Date, l.CheckInMinutes)
	if err := row.Scan(&l.CreatedAt, &l.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Log{}, ErrOpenLogExists
		}
		return Log{}, err
	}
	return l, nil
}

// Close records the checkout on an open log. Closing an already closed log fails.
func (r *Repository) Close(ctx context.Context, id string, checkout, worked int) (Log, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_logs
		SET checkout_minutes = $2, worked_minutes = $3, updated_at = NOW()
		WHERE id = $1 AND checkout_minutes IS NULL
		RETURNING `+logColumns, id, checkout, worked)
	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Log{}, fmt.Errorf("log %s is not open", id)
		}
		return Log{}, err
	}
	return l, nil
}

func scanLog(row *sql.Row) (Log, error) {
	var (
		l        Log
		checkout sql.NullInt64
		worked   sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.MemberID, &l.Date, &l.CheckInMinutes, &checkout, &worked, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Log{}, err
	}
	if checkout.Valid {
		v := int(checkout.Int64)
		l.CheckoutMinutes = &v
	}
	if worked.Valid {
		v := int(worked.Int64)
		l.WorkedMinutes = &v
	}
	return l, nil
}
