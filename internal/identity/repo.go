package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"gymkiosk/internal/store"
)

// ErrEmailTaken is returned by Create when the email already belongs to an identity.
var ErrEmailTaken = errors.New("email already registered")

// Repository persists identities in Postgres.
type Repository struct {
	db store.DBTX
}

func NewRepository(db store.DBTX) *Repository {
	return &Repository{db: db}
}

// Create inserts an identity and fills id and created_at.
func (r *Repository) Create(ctx context.Context, in Identity) (Identity, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO identities (id, email, name, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, in.ID, in.Email, in.Name, in.PasswordHash)
	if err := row.Scan(&in.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, err
	}
	return in, nil
}

// List returns up to limit identities with id greater than after, ordered by id.
func (r *Repository) List(ctx context.Context, after string, limit int) (Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM identities
		WHERE id > $1
		ORDER BY id
		LIMIT $2
	`, after, limit)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	var page Page
	for rows.Next() {
		var i Identity
		if err := rows.Scan(&i.ID, &i.Email, &i.Name, &i.PasswordHash, &i.CreatedAt); err != nil {
			return Page{}, fmt.Errorf("scan identity: %w", err)
		}
		page.Identities = append(page.Identities, i)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}
	if len(page.Identities) == limit {
		page.Next = page.Identities[len(page.Identities)-1].ID
	}
	return page, nil
}
