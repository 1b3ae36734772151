package pagination

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCursorRoundTripIsURLSafe(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 3, 12, 9, 0, 0, 123456789, time.UTC), ID: uuid.New()}
	encoded := in.Encode()
	if strings.ContainsAny(encoded, "+/=") {
		t.Fatalf("cursor %q is not url safe", encoded)
	}

	out, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if c, err := ParseCursor("  "); err != nil || c != nil {
		t.Fatalf("expected empty cursor to be nil, got %v %v", c, err)
	}
	bad := []string{
		"!!!",
		base64.RawURLEncoding.EncodeToString([]byte("no-separator")),
		base64.RawURLEncoding.EncodeToString([]byte("yesterday|" + uuid.NewString())),
		base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano) + "|nope")),
	}
	for _, value := range bad {
		if _, err := ParseCursor(value); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("expected ErrInvalidCursor for %q, got %v", value, err)
		}
	}
}

func TestNormalizeLimit(t *testing.T) {
	cases := map[int]int{0: DefaultLimit, -3: DefaultLimit, 10: 10, MaxLimit + 1: MaxLimit}
	for in, want := range cases {
		if got := NormalizeLimit(in); got != want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", in, got, want)
		}
	}
	if LimitWithBuffer(10) != 11 {
		t.Fatal("expected buffer of one")
	}
}

func TestParseCursorAcceptsPaddedTokens(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC), ID: uuid.New()}
	padded := base64.URLEncoding.EncodeToString([]byte(in.CreatedAt.Format(time.RFC3339Nano) + "|" + in.ID.String()))
	out, err := ParseCursor(padded)
	if err != nil {
		t.Fatalf("parse padded cursor: %v", err)
	}
	if out.ID != in.ID {
		t.Fatalf("unexpected id %s", out.ID)
	}
}

func TestPageTrimsBufferRow(t *testing.T) {
	type row struct {
		at time.Time
		id uuid.UUID
	}
	base := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	rows := make([]row, 0, 3)
	for i := 0; i < 3; i++ {
		rows = append(rows, row{at: base.Add(-time.Duration(i) * time.Minute), id: uuid.New()})
	}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page, next := Page(rows, 2, cursorOf)
	if len(page) != 2 || next == nil {
		t.Fatalf("expected 2 rows and a cursor, got %d %v", len(page), next)
	}
	if next.ID != rows[1].id || !next.CreatedAt.Equal(rows[1].at) {
		t.Fatalf("cursor should point at last kept row, got %+v", next)
	}

	page, next = Page(rows[:2], 2, cursorOf)
	if len(page) != 2 || next != nil {
		t.Fatalf("expected final page without cursor, got %d %v", len(page), next)
	}
}
