package mutationevent

import (
	"context"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
)

// Actor is the denormalized profile of whoever triggered a notification.
type Actor struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar *string   `json:"avatar,omitempty"`
}

// Owner is the resolved owner chain of a comment: comment → page → project → user.
type Owner struct {
	// OwnerID is nil when the project has no owning user.
	OwnerID *uuid.UUID
	PageURL string
	Author  Actor
}

// NotificationPayload describes one notification to persist and deliver.
type NotificationPayload struct {
	RecipientID   uuid.UUID              `json:"recipientId"`
	Type          enums.NotificationType `json:"type"`
	TriggeredByID uuid.UUID              `json:"triggeredById"`
	TriggeredBy   Actor                  `json:"triggeredBy"`
	URL           string                 `json:"url"`
	Body          string                 `json:"body"`
}

// OwnerLookup resolves the owner chain of a comment. A missing comment is
// reported as (nil, nil).
type OwnerLookup interface {
	SiteOwnerByCommentID(ctx context.Context, commentID uuid.UUID) (*Owner, error)
}

// NotificationStore persists a notification-message record.
type NotificationStore interface {
	InsertNotificationMessage(ctx context.Context, payload NotificationPayload) error
}

// NotificationDelivery pushes a notification out of band (web push, email, relay).
type NotificationDelivery interface {
	Deliver(ctx context.Context, payload NotificationPayload) error
}
