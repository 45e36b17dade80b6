package postgres

import (
	"context"

	"github.com/opencircle/social-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, username, image, last_seen FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Username, &u.Image, &u.LastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, username, image, last_seen FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Name, &u.Username, &u.Image, &u.LastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) TouchLastSeen(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_seen=now() WHERE id=$1`, id)
	return err
}
