package delivery

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
	"github.com/chirpy-dev/chirpy-backend/pkg/richtext"
)

const bodyLimit = 180

// Message is the rendered copy shared by every channel.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
	Icon  string `json:"icon,omitempty"`
}

// BuildMessage renders the title and body for a payload. Relative URLs are
// resolved against appOrigin.
func BuildMessage(payload mutationevent.NotificationPayload, appOrigin string) Message {
	name := strings.TrimSpace(payload.TriggeredBy.Name)
	if name == "" {
		name = "Someone"
	}

	msg := Message{
		Title: title(payload.Type, name),
		Body:  richtext.Truncate(payload.Body, bodyLimit),
		URL:   absoluteURL(payload.URL, appOrigin),
	}
	if payload.TriggeredBy.Avatar != nil {
		msg.Icon = *payload.TriggeredBy.Avatar
	}
	return msg
}

func title(kind enums.NotificationType, name string) string {
	switch kind {
	case enums.NotificationTypeReceivedAComment:
		return fmt.Sprintf("%s left a comment", name)
	case enums.NotificationTypeReceivedAReply:
		return fmt.Sprintf("%s replied to your comment", name)
	case enums.NotificationTypeReceivedALike:
		return fmt.Sprintf("%s liked your comment", name)
	case enums.NotificationTypeCommentDeleted:
		return fmt.Sprintf("%s deleted a comment", name)
	default:
		return "New notification"
	}
}

func absoluteURL(raw, origin string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.IsAbs() || origin == "" {
		return raw
	}
	base, err := url.Parse(origin)
	if err != nil {
		return raw
	}
	return base.ResolveReference(u).String()
}
