package postgres

import (
	"errors"
	"testing"
	"time"
)

func TestParseCursorEmptyMeansNow(t *testing.T) {
	before := time.Now()
	got, err := ParseCursor("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Before(before) || got.After(time.Now().Add(time.Second)) {
		t.Fatalf("empty cursor should resolve to now, got %v", got)
	}
}

func TestParseCursorEpochMillis(t *testing.T) {
	got, err := ParseCursor("1700000000000")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.UnixMilli() != 1700000000000 {
		t.Fatalf("got %d, want 1700000000000", got.UnixMilli())
	}
}

func TestParseCursorInvalid(t *testing.T) {
	for _, s := range []string{"abc", "12.5", "2023-11-14T00:00:00Z"} {
		if _, err := ParseCursor(s); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("ParseCursor(%q) err = %v, want ErrInvalidCursor", s, err)
		}
	}
}

func TestFormatCursorRoundTrip(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	parsed, err := ParseCursor(FormatCursor(at))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !parsed.Equal(at) {
		t.Fatalf("round trip lost precision: %v != %v", parsed, at)
	}
}
