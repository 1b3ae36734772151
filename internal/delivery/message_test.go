package delivery

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
)

func TestBuildMessageTitles(t *testing.T) {
	cases := []struct {
		kind enums.NotificationType
		name string
		want string
	}{
		{enums.NotificationTypeReceivedAComment, "Ada", "Ada left a comment"},
		{enums.NotificationTypeReceivedAReply, "Ada", "Ada replied to your comment"},
		{enums.NotificationTypeReceivedALike, "Ada", "Ada liked your comment"},
		{enums.NotificationTypeCommentDeleted, "Ada", "Ada deleted a comment"},
		{enums.NotificationTypeReceivedAComment, "  ", "Someone left a comment"},
		{"Unknown", "Ada", "New notification"},
	}
	for _, tc := range cases {
		payload := mutationevent.NotificationPayload{Type: tc.kind, TriggeredBy: mutationevent.Actor{Name: tc.name}}
		if got := BuildMessage(payload, "").Title; got != tc.want {
			t.Fatalf("type %q: expected %q, got %q", tc.kind, tc.want, got)
		}
	}
}

func TestBuildMessageResolvesRelativeURL(t *testing.T) {
	payload := mutationevent.NotificationPayload{URL: "/dashboard/inbox"}
	if got := BuildMessage(payload, "https://chirpy.dev").URL; got != "https://chirpy.dev/dashboard/inbox" {
		t.Fatalf("unexpected url %q", got)
	}

	payload.URL = "https://blog.example.com/a"
	if got := BuildMessage(payload, "https://chirpy.dev").URL; got != payload.URL {
		t.Fatalf("absolute url should be kept, got %q", got)
	}
}

func TestBuildMessageTruncatesBody(t *testing.T) {
	avatar := "https://img.example.com/a.png"
	payload := mutationevent.NotificationPayload{
		Body:        strings.Repeat("ä", 400),
		TriggeredBy: mutationevent.Actor{Name: "Ada", Avatar: &avatar},
	}
	msg := BuildMessage(payload, "")
	if n := utf8.RuneCountInString(msg.Body); n > bodyLimit {
		t.Fatalf("expected body capped at %d runes, got %d", bodyLimit, n)
	}
	if msg.Icon != avatar {
		t.Fatalf("expected avatar icon, got %q", msg.Icon)
	}
}
