package domain

import "time"

type Post struct {
	ID             string    `db:"id"`
	AuthorID       string    `db:"author_id"`
	Content        *string   `db:"content"`
	Image          *string   `db:"image"`
	IsPublic       bool      `db:"is_public"`
	OriginalPostID *string   `db:"original_post_id"` // set for quotes
	CreatedAt      time.Time `db:"created_at"`
}

// Repost is a join entity, unique per (user, post).
type Repost struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	PostID    string    `db:"post_id"`
	CreatedAt time.Time `db:"created_at"`
}

// PostView is a post together with its author summary.
type PostView struct {
	Post
	Author User
}

// FeedItem is one entry of the home feed. Originals carry their own id and
// author; reposts are materialized as virtual posts ("repost_"+repost id,
// author = reposting user, CreatedAt = repost time).
type FeedItem struct {
	ID           string
	Author       User
	Content      *string
	Image        *string
	IsRepost     bool
	OriginalPost *PostView
	CreatedAt    time.Time
}
