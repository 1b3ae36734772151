package notifications

import (
	"context"
	"errors"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
)

// Store persists dispatcher payloads as inbox messages.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) (*Store, error) {
	if repo == nil {
		return nil, errors.New("notifications repository required")
	}
	return &Store{repo: repo}, nil
}

func (s *Store) InsertNotificationMessage(ctx context.Context, payload mutationevent.NotificationPayload) error {
	if !payload.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown notification type "+string(payload.Type))
	}
	message := &models.NotificationMessage{
		Type:          payload.Type,
		RecipientID:   payload.RecipientID,
		TriggeredByID: payload.TriggeredByID,
		URL:           payload.URL,
	}
	if payload.Body != "" {
		body := payload.Body
		message.Content = &body
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert notification message")
	}
	return nil
}
