package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Feed cursors are epoch milliseconds, used as an exclusive upper bound on
// created_at. New items are always newer than any issued cursor, which keeps
// pagination stable under concurrent writes.

func ParseCursor(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return time.UnixMilli(ms), nil
}

func FormatCursor(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
