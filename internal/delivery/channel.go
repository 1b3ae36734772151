// Package delivery pushes dispatched notifications out of band. Each channel
// is independent; Fanout runs the enabled ones side by side.
package delivery

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	pkgerrors "github.com/chirpy-dev/chirpy-backend/pkg/errors"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

// Channel delivers a notification over one medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, payload mutationevent.NotificationPayload) error
}

// Recorder counts channel outcomes.
type Recorder interface {
	ObserveDelivery(channel, outcome string)
}

// ErrSkipped is returned by a channel that had nothing to do for this recipient.
var ErrSkipped = errors.New("delivery skipped")

const (
	outcomeSent    = "sent"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
)

type FanoutParams struct {
	Channels []Channel
	Logger   *logger.Logger
	Metrics  Recorder
}

// Fanout implements mutationevent.NotificationDelivery over several channels.
type Fanout struct {
	channels []Channel
	logg     *logger.Logger
	metrics  Recorder
}

func NewFanout(params FanoutParams) *Fanout {
	channels := make([]Channel, 0, len(params.Channels))
	for _, ch := range params.Channels {
		if ch != nil {
			channels = append(channels, ch)
		}
	}
	return &Fanout{channels: channels, logg: params.Logger, metrics: params.Metrics}
}

// Channels lists the enabled channel names.
func (f *Fanout) Channels() []string {
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Deliver sends on every channel concurrently and returns the first failure.
// Channels do not cancel each other.
func (f *Fanout) Deliver(ctx context.Context, payload mutationevent.NotificationPayload) error {
	var g errgroup.Group
	for _, ch := range f.channels {
		g.Go(func() error {
			err := ch.Send(ctx, payload)
			f.observe(ctx, ch.Name(), err)
			if err != nil && !errors.Is(err, ErrSkipped) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s delivery", ch.Name()))
			}
			return nil
		})
	}
	return g.Wait()
}

func (f *Fanout) observe(ctx context.Context, channel string, err error) {
	outcome := outcomeSent
	switch {
	case errors.Is(err, ErrSkipped):
		outcome = outcomeSkipped
	case err != nil:
		outcome = outcomeFailed
	}
	if f.metrics != nil {
		f.metrics.ObserveDelivery(channel, outcome)
	}
	if f.logg == nil {
		return
	}
	logCtx := f.logg.WithFields(ctx, map[string]any{"channel": channel, "outcome": outcome})
	if outcome == outcomeFailed {
		f.logg.Warn(f.logg.WithField(logCtx, "error", err.Error()), "notification delivery failed")
		return
	}
	f.logg.Debug(logCtx, "notification delivery finished")
}
