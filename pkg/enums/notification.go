package enums

import "fmt"

// NotificationType is the notification-message type tag shared with the dashboard.
type NotificationType string

const (
	NotificationTypeReceivedAComment NotificationType = "ReceivedAComment"
	NotificationTypeReceivedAReply   NotificationType = "ReceivedAReply"
	NotificationTypeReceivedALike    NotificationType = "ReceivedALike"
	NotificationTypeCommentDeleted   NotificationType = "CommentDeleted"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeReceivedAComment,
	NotificationTypeReceivedAReply,
	NotificationTypeReceivedALike,
	NotificationTypeCommentDeleted,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
