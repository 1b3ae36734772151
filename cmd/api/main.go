package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/chirpy-dev/chirpy-backend/api/controllers"
	"github.com/chirpy-dev/chirpy-backend/api/routes"
	"github.com/chirpy-dev/chirpy-backend/internal/delivery"
	"github.com/chirpy-dev/chirpy-backend/internal/hasura"
	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/internal/notifications"
	"github.com/chirpy-dev/chirpy-backend/internal/owners"
	"github.com/chirpy-dev/chirpy-backend/internal/subscriptions"
	"github.com/chirpy-dev/chirpy-backend/internal/users"
	hasurawebhook "github.com/chirpy-dev/chirpy-backend/internal/webhooks/hasura"
	"github.com/chirpy-dev/chirpy-backend/pkg/config"
	"github.com/chirpy-dev/chirpy-backend/pkg/db"
	"github.com/chirpy-dev/chirpy-backend/pkg/env"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
	"github.com/chirpy-dev/chirpy-backend/pkg/metrics"
	"github.com/chirpy-dev/chirpy-backend/pkg/migrate"
	"github.com/chirpy-dev/chirpy-backend/pkg/pubsub"
	"github.com/chirpy-dev/chirpy-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	pingers := map[string]controllers.Pinger{"db": dbClient}

	var guard *hasurawebhook.IdempotencyGuard
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		pingers["redis"] = redisClient

		if cfg.Eventing.DedupeEnabled {
			guard, err = hasurawebhook.NewIdempotencyGuard(redisClient, cfg.Eventing.DedupeTTL, hasurawebhook.Scope)
			if err != nil {
				logg.Error(ctx, "failed to create event replay guard", err)
				os.Exit(1)
			}
		}
	} else if cfg.Eventing.DedupeEnabled {
		logg.Warn(ctx, "event dedupe requested without redis; dispatching every delivery")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	notificationsRepo := notifications.NewRepository(dbClient.DB())
	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())

	var (
		ownerLookup mutationevent.OwnerLookup
		store       mutationevent.NotificationStore
	)
	if cfg.Hasura.UsesGraphQL() {
		client, err := hasura.NewClient(cfg.Hasura)
		if err != nil {
			logg.Error(ctx, "failed to create hasura client", err)
			os.Exit(1)
		}
		ownerLookup, store = client, client
	} else {
		ownerLookup = owners.NewRepository(dbClient.DB())
		store, err = notifications.NewStore(notificationsRepo)
		if err != nil {
			logg.Error(ctx, "failed to create notification store", err)
			os.Exit(1)
		}
	}

	channels, closeChannels, err := deliveryChannels(ctx, cfg, logg, subscriptionsRepo, users.NewRepository(dbClient.DB()), pingers)
	if err != nil {
		logg.Error(ctx, "failed to configure delivery channels", err)
		os.Exit(1)
	}
	defer closeChannels()

	fanout := delivery.NewFanout(delivery.FanoutParams{Channels: channels, Logger: logg, Metrics: webhookMetrics})
	logg.Info(logg.WithField(ctx, "channels", fanout.Channels()), "delivery channels configured")

	dispatcher, err := mutationevent.NewDispatcher(mutationevent.DispatcherParams{
		Owners:   ownerLookup,
		Store:    store,
		Delivery: fanout,
		Logger:   logg,
		Metrics:  webhookMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create event dispatcher", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create notifications service", err)
		os.Exit(1)
	}
	subscriptionsService, err := subscriptions.NewService(subscriptionsRepo)
	if err != nil {
		logg.Error(ctx, "failed to create subscriptions service", err)
		os.Exit(1)
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	ctx = logg.WithFields(ctx, map[string]any{
		"addr":         addr,
		"data_backend": cfg.Hasura.DataBackend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:        cfg,
			Logger:        logg,
			Gatherer:      registry,
			HTTP:          metrics.NewHTTPMetrics(registry),
			Pingers:       pingers,
			Dispatcher:    dispatcher,
			EventGuard:    guard,
			Notifications: notificationsService,
			Subscriptions: subscriptionsService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

// deliveryChannels builds every channel whose configuration is present.
func deliveryChannels(
	ctx context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	subs subscriptions.Repository,
	usersRepo *users.Repository,
	pingers map[string]controllers.Pinger,
) ([]delivery.Channel, func(), error) {
	var channels []delivery.Channel
	closeFn := func() {}

	if cfg.WebPush.Enabled() {
		ch, err := delivery.NewWebPushChannel(delivery.WebPushParams{
			Config:        cfg.WebPush,
			AppOrigin:     cfg.Notifications.AppOrigin,
			Subscriptions: subs,
			Logger:        logg,
		})
		if err != nil {
			return nil, closeFn, err
		}
		channels = append(channels, ch)
	}

	if cfg.Email.Enabled() {
		ch, err := delivery.NewEmailChannel(delivery.EmailParams{
			Config:    cfg.Email,
			AppOrigin: cfg.Notifications.AppOrigin,
			Users:     usersRepo,
		})
		if err != nil {
			return nil, closeFn, err
		}
		channels = append(channels, ch)
	}

	if cfg.PubSub.Enabled() {
		client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return nil, closeFn, err
		}
		closeFn = func() {
			if err := client.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}
		ch, err := delivery.NewPubSubChannel(client.NotificationPublisher())
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		channels = append(channels, ch)
		pingers["pubsub"] = client
	}

	return channels, closeFn, nil
}
