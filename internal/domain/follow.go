package domain

import "time"

// Follow is a directed edge, unique per (follower, following), no self-loops.
type Follow struct {
	ID          string    `db:"id"`
	FollowerID  string    `db:"follower_id"`
	FollowingID string    `db:"following_id"`
	CreatedAt   time.Time `db:"created_at"`
}
