package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidecal/server/internal/domain/users"
	"github.com/tidecal/server/internal/storage"
)

var _ users.Repository = (*UserRepository)(nil)

type UserRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *UserRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

// EnsureUser creates the user row if it does not exist yet. Users come
// into being on first successful login, not through a signup flow.
func (r *UserRepository) EnsureUser(ctx context.Context, username string) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO users (username) VALUES ($1)
ON CONFLICT (username) DO NOTHING
`, username)
	if err != nil {
		return storage.WrapErr("ensure user", err)
	}
	return nil
}

// UpsertProfilePicture writes the blob reference for the user,
// creating the row on first use and refreshing updated_at either way.
func (r *UserRepository) UpsertProfilePicture(ctx context.Context, username, ref string) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO users (username, profile_picture, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (username)
DO UPDATE SET profile_picture = EXCLUDED.profile_picture, updated_at = now()
`, username, ref)
	if err != nil {
		return storage.WrapErr("upsert profile picture", err)
	}
	return nil
}

// GetProfilePicture returns the stored blob reference, or
// users.ErrNoPicture when the user has none.
func (r *UserRepository) GetProfilePicture(ctx context.Context, username string) (string, error) {
	var ref *string
	err := r.queryer().QueryRow(ctx, `
SELECT profile_picture FROM users WHERE username = $1
`, username).Scan(&ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", users.ErrNoPicture
		}
		return "", storage.WrapErr("get profile picture", err)
	}
	if ref == nil || *ref == "" {
		return "", users.ErrNoPicture
	}
	return *ref, nil
}
