package domain

import "time"

// User is owned by the auth/profile service; this is the read view the
// messaging and feed paths need (sender blocks, mention lookups, last seen).
type User struct {
	ID       string     `db:"id"`
	Name     *string    `db:"name"`
	Username string     `db:"username"`
	Image    *string    `db:"image"`
	LastSeen *time.Time `db:"last_seen"`
}
