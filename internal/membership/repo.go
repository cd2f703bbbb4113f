package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"gymkiosk/internal/store"
)

// Repository persists memberships in Postgres.
type Repository struct {
	db store.DBTX
}

// NewRepository creates a repo.
func NewRepository(db store.DBTX) *Repository {
	return &Repository{db: db}
}

// Latest returns the membership with the latest end_at for memberID, or nil when none exists.
func (r *Repository) Latest(ctx context.Context, memberID string) (*Membership, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, member_id, status, start_at, end_at, location, created_at
		FROM memberships
		WHERE member_id = $1
		ORDER BY end_at DESC
		LIMIT 1
	`, memberID)
	var m Membership
	if err := row.Scan(&m.ID, &m.MemberID, &m.Status, &m.StartAt, &m.EndAt, &m.Location, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a membership and returns it with id and created_at filled.
func (r *Repository) Create(ctx context.Context, m Membership) (Membership, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusActive
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO memberships (id, member_id, status, start_at, end_at, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, m.ID, m.MemberID, m.Status, m.StartAt.UTC(), m.EndAt.UTC(), m.Location)
	var created time.Time
	if err := row.Scan(&created); err != nil {
		return Membership{}, err
	}
	m.CreatedAt = created
	return m, nil
}
