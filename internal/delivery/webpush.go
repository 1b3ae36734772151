package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/pkg/config"
	"github.com/chirpy-dev/chirpy-backend/pkg/db/models"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
)

const ChannelWebPush = "webpush"

type subscriptionStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.NotificationSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID *uuid.UUID, endpoint string) (int64, error)
}

type pushSender func(ctx context.Context, message []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

type WebPushParams struct {
	Config        config.WebPushConfig
	AppOrigin     string
	Subscriptions subscriptionStore
	Logger        *logger.Logger
	HTTPClient    webpush.HTTPClient
}

// WebPushChannel sends VAPID web push messages to every browser the recipient registered.
type WebPushChannel struct {
	cfg       config.WebPushConfig
	appOrigin string
	subs      subscriptionStore
	logg      *logger.Logger
	client    webpush.HTTPClient
	send      pushSender
}

func NewWebPushChannel(params WebPushParams) (*WebPushChannel, error) {
	if !params.Config.Enabled() {
		return nil, fmt.Errorf("vapid keys are required")
	}
	if params.Subscriptions == nil {
		return nil, fmt.Errorf("subscription store required")
	}
	return &WebPushChannel{
		cfg:       params.Config,
		appOrigin: params.AppOrigin,
		subs:      params.Subscriptions,
		logg:      params.Logger,
		client:    params.HTTPClient,
		send:      webpush.SendNotificationWithContext,
	}, nil
}

func (c *WebPushChannel) Name() string { return ChannelWebPush }

func (c *WebPushChannel) Send(ctx context.Context, payload mutationevent.NotificationPayload) error {
	subs, err := c.subs.ListByUser(ctx, payload.RecipientID)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return ErrSkipped
	}

	body, err := json.Marshal(BuildMessage(payload, c.appOrigin))
	if err != nil {
		return fmt.Errorf("encode push message: %w", err)
	}

	var errs error
	for _, sub := range subs {
		errs = multierr.Append(errs, c.sendOne(ctx, body, sub))
	}
	return errs
}

func (c *WebPushChannel) sendOne(ctx context.Context, body []byte, sub models.NotificationSubscription) error {
	resp, err := c.send(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{Auth: sub.Auth, P256dh: sub.P256dh},
	}, &webpush.Options{
		HTTPClient:      c.client,
		Subscriber:      c.cfg.Subscriber,
		VAPIDPublicKey:  c.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: c.cfg.VAPIDPrivateKey,
		TTL:             c.cfg.TTLSeconds,
	})
	if err != nil {
		return fmt.Errorf("push to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return c.purge(ctx, sub)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("push to %s: unexpected status %d", sub.Endpoint, resp.StatusCode)
	}
	return nil
}

// purge drops a subscription the push service no longer recognises.
func (c *WebPushChannel) purge(ctx context.Context, sub models.NotificationSubscription) error {
	if _, err := c.subs.DeleteByEndpoint(ctx, nil, sub.Endpoint); err != nil {
		return fmt.Errorf("delete stale subscription: %w", err)
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithFields(ctx, map[string]any{
			"user_id":  sub.UserID.String(),
			"endpoint": sub.Endpoint,
		}), "stale push subscription removed")
	}
	return nil
}
