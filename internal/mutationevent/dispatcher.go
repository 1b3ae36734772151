package mutationevent

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/pkg/enums"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
	"github.com/chirpy-dev/chirpy-backend/pkg/richtext"
)

// Recorder receives one observation per handled event.
type Recorder interface {
	ObserveEvent(table, op, outcome string, elapsed time.Duration)
}

const (
	outcomeIgnored    = "ignored"
	outcomeDispatched = "dispatched"
	outcomeFailed     = "failed"
)

// DispatcherParams wires the dispatcher collaborators.
type DispatcherParams struct {
	Owners   OwnerLookup
	Store    NotificationStore
	Delivery NotificationDelivery
	Logger   *logger.Logger
	Metrics  Recorder
}

// Dispatcher turns comment inserts into a persisted and delivered notification.
type Dispatcher struct {
	owners   OwnerLookup
	store    NotificationStore
	delivery NotificationDelivery
	logg     *logger.Logger
	metrics  Recorder
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Owners == nil {
		return nil, fmt.Errorf("owner lookup required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("notification store required")
	}
	if params.Delivery == nil {
		return nil, fmt.Errorf("notification delivery required")
	}
	return &Dispatcher{
		owners:   params.Owners,
		store:    params.Store,
		delivery: params.Delivery,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Handle processes one event. Events other than a Comment insert are
// acknowledged without touching any collaborator.
func (d *Dispatcher) Handle(ctx context.Context, payload *EventPayload) (err error) {
	if payload == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event payload required")
	}
	start := time.Now()
	table, op := payload.Table.Name, string(payload.Event.Op.Normalize())
	outcome := outcomeIgnored
	defer func() {
		if err != nil {
			outcome = outcomeFailed
		}
		if d.metrics != nil {
			d.metrics.ObserveEvent(table, op, outcome, time.Since(start))
		}
	}()

	if d.logg != nil {
		ctx = d.logg.WithEventID(ctx, payload.ID)
		ctx = d.logg.WithFields(ctx, map[string]any{
			"table":         table,
			"op":            op,
			"current_retry": payload.DeliveryInfo.CurrentRetry,
		})
	}

	if !payload.IsCommentInsert() {
		d.debug(ctx, "mutation event ignored")
		return nil
	}

	row, err := decodeCommentRow(payload.Event.Data.New)
	if err != nil {
		return err
	}
	if d.logg != nil {
		ctx = d.logg.WithField(ctx, "comment_id", row.ID.String())
	}

	owner, err := d.owners.SiteOwnerByCommentID(ctx, row.ID)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve site owner")
	}
	if owner == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("comment %s not found", row.ID))
	}
	if owner.OwnerID == nil || *owner.OwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("site owner of comment %s not found", row.ID))
	}

	body, err := extractBody(row.Content)
	if err != nil {
		return err
	}

	// The row's userId is authoritative for the actor; the joined profile only
	// fills in display fields.
	triggeredBy := owner.Author
	triggeredByID := row.UserID
	if triggeredByID == uuid.Nil {
		triggeredByID = triggeredBy.ID
	}
	if triggeredBy.ID == uuid.Nil {
		triggeredBy.ID = triggeredByID
	}
	notification := NotificationPayload{
		RecipientID:   *owner.OwnerID,
		Type:          enums.NotificationTypeReceivedAComment,
		TriggeredByID: triggeredByID,
		TriggeredBy:   triggeredBy,
		URL:           owner.PageURL,
		Body:          body,
	}
	if d.logg != nil {
		ctx = d.logg.WithField(ctx, "recipient_id", notification.RecipientID.String())
	}

	if err := d.fanOut(ctx, notification); err != nil {
		return err
	}
	outcome = outcomeDispatched
	d.info(ctx, "comment notification dispatched")
	return nil
}

// fanOut starts persistence and delivery together and returns as soon as
// either fails or both succeed. The branches run on a context detached from
// the caller's cancellation, so a branch still in flight finishes on its own.
func (d *Dispatcher) fanOut(ctx context.Context, payload NotificationPayload) error {
	branchCtx := context.WithoutCancel(ctx)
	results := make(chan error, 2)

	go func() {
		if err := d.store.InsertNotificationMessage(branchCtx, payload); err != nil {
			results <- wrapDownstream(err, "persist notification message")
			return
		}
		results <- nil
	}()
	go func() {
		if err := d.delivery.Deliver(branchCtx, payload); err != nil {
			results <- wrapDownstream(err, "deliver notification")
			return
		}
		results <- nil
	}()

	for range 2 {
		select {
		case err := <-results:
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "notification fan-out interrupted")
		}
	}
	return nil
}

func wrapDownstream(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() != pkgerrors.CodeInternal {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func decodeCommentRow(raw json.RawMessage) (*CommentRow, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event.data.new is required for inserts")
	}
	var row CommentRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode comment row")
	}
	if row.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment id is required")
	}
	return &row, nil
}

func extractBody(content json.RawMessage) (string, error) {
	root, err := richtext.Parse(content)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode comment content")
	}
	return richtext.ExtractText(root), nil
}

func (d *Dispatcher) debug(ctx context.Context, msg string) {
	if d.logg != nil {
		d.logg.Debug(ctx, msg)
	}
}

func (d *Dispatcher) info(ctx context.Context, msg string) {
	if d.logg != nil {
		d.logg.Info(ctx, msg)
	}
}

// Authorize reports whether the presented secret header matches the
// configured one. An empty configured secret never authorizes.
func Authorize(header, secret string) bool {
	if secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1
}
