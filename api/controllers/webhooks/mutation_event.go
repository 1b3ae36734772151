package webhooks

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chirpy-dev/chirpy-backend/api/responses"
	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

// EventSecretHeader carries the shared secret Hasura attaches to every event trigger call.
const EventSecretHeader = "hasura_event_secret"

const maxEventBodyBytes = 1 << 20

type MutationEventDispatcher interface {
	Handle(ctx context.Context, payload *mutationevent.EventPayload) error
}

type MutationEventGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

// MutationEvent receives Hasura change events. guard may be nil, in which
// case every delivery is dispatched.
func MutationEvent(dispatcher MutationEventDispatcher, secret string, guard MutationEventGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if !mutationevent.Authorize(r.Header.Get(EventSecretHeader), secret) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid event secret"))
			return
		}
		if dispatcher == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event dispatcher unavailable"))
			return
		}

		var payload mutationevent.EventPayload
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBodyBytes)).Decode(&payload); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event payload"))
			return
		}

		claimed := false
		if guard != nil && payload.ID != "" && payload.IsCommentInsert() {
			seen, err := guard.CheckAndMark(ctx, payload.ID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				if logg != nil {
					logg.Info(logg.WithEventID(ctx, payload.ID), "duplicate mutation event skipped")
				}
				responses.WriteEmpty(w, http.StatusOK)
				return
			}
			claimed = true
		}

		if err := dispatcher.Handle(ctx, &payload); err != nil {
			// Failures a redelivery cannot fix keep their claim, so Hasura's
			// retries are acked without dispatching again.
			if claimed && pkgerrors.Redeliverable(err) {
				_ = guard.Delete(context.WithoutCancel(ctx), payload.ID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteEmpty(w, http.StatusOK)
	}
}
