package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowRepository struct {
	db *pgxpool.Pool
}

func NewFollowRepository(db *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id=$1 AND following_id=$2)`,
		followerID, followingID).Scan(&exists)
	return exists, err
}

func (r *FollowRepository) Create(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, followerID, followingID)
	return err
}

func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM follows WHERE follower_id=$1 AND following_id=$2`,
		followerID, followingID)
	return err
}

func (r *FollowRepository) ListFollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT following_id FROM follows WHERE follower_id=$1`, followerID)
}

func (r *FollowRepository) ListFollowerIDs(ctx context.Context, followingID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT follower_id FROM follows WHERE following_id=$1`, followingID)
}

func (r *FollowRepository) listIDs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
