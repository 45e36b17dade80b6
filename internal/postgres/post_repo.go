package postgres

import (
	"context"
	"time"

	"github.com/opencircle/social-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.Post, error) {
	var p domain.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, author_id, content, image, is_public, original_post_id, created_at
		FROM posts WHERE id=$1
	`, id).Scan(&p.ID, &p.AuthorID, &p.Content, &p.Image, &p.IsPublic, &p.OriginalPostID, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListFeedPosts fetches public posts by the given authors strictly older than
// before, newest first.
func (r *PostRepository) ListFeedPosts(ctx context.Context, authorIDs []string, before time.Time, limit int) ([]domain.PostView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT p.id, p.author_id, p.content, p.image, p.is_public, p.original_post_id, p.created_at,
		       u.id, u.name, u.username, u.image
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.author_id = ANY($1)
		  AND p.is_public = TRUE
		  AND p.created_at < $2
		ORDER BY p.created_at DESC
		LIMIT $3
	`, authorIDs, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PostView
	for rows.Next() {
		var v domain.PostView
		if err := rows.Scan(
			&v.ID, &v.AuthorID, &v.Content, &v.Image, &v.IsPublic, &v.OriginalPostID, &v.CreatedAt,
			&v.Author.ID, &v.Author.Name, &v.Author.Username, &v.Author.Image,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FeedRepost carries a repost together with its reposting user and the target
// post (with author), the shape the aggregator materializes virtual posts from.
type FeedRepost struct {
	Repost domain.Repost
	User   domain.User
	Post   domain.PostView
}

// ListFeedReposts fetches reposts by the given users strictly older than
// before, newest first, each with its target post.
func (r *PostRepository) ListFeedReposts(ctx context.Context, userIDs []string, before time.Time, limit int) ([]FeedRepost, error) {
	rows, err := r.db.Query(ctx, `
		SELECT rp.id, rp.user_id, rp.post_id, rp.created_at,
		       ru.id, ru.name, ru.username, ru.image,
		       p.id, p.author_id, p.content, p.image, p.is_public, p.original_post_id, p.created_at,
		       au.id, au.name, au.username, au.image
		FROM reposts rp
		JOIN users ru ON ru.id = rp.user_id
		JOIN posts p  ON p.id = rp.post_id
		JOIN users au ON au.id = p.author_id
		WHERE rp.user_id = ANY($1)
		  AND rp.created_at < $2
		ORDER BY rp.created_at DESC
		LIMIT $3
	`, userIDs, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FeedRepost
	for rows.Next() {
		var fr FeedRepost
		if err := rows.Scan(
			&fr.Repost.ID, &fr.Repost.UserID, &fr.Repost.PostID, &fr.Repost.CreatedAt,
			&fr.User.ID, &fr.User.Name, &fr.User.Username, &fr.User.Image,
			&fr.Post.ID, &fr.Post.AuthorID, &fr.Post.Content, &fr.Post.Image,
			&fr.Post.IsPublic, &fr.Post.OriginalPostID, &fr.Post.CreatedAt,
			&fr.Post.Author.ID, &fr.Post.Author.Name, &fr.Post.Author.Username, &fr.Post.Author.Image,
		); err != nil {
			return nil, err
		}
		out = append(out, fr)
	}
	return out, rows.Err()
}
