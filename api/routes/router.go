package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chirpy-dev/chirpy-backend/api/controllers"
	webhookcontrollers "github.com/chirpy-dev/chirpy-backend/api/controllers/webhooks"
	"github.com/chirpy-dev/chirpy-backend/api/middleware"
	"github.com/chirpy-dev/chirpy-backend/internal/notifications"
	"github.com/chirpy-dev/chirpy-backend/internal/subscriptions"
	hasurawebhook "github.com/chirpy-dev/chirpy-backend/internal/webhooks/hasura"
	"github.com/chirpy-dev/chirpy-backend/pkg/config"
	"github.com/chirpy-dev/chirpy-backend/pkg/logger"
	"github.com/chirpy-dev/chirpy-backend/pkg/metrics"
)

// Dependencies are the collaborators the HTTP surface needs. Optional ones may be nil.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTPMetrics

	// Pingers feed /health/ready, keyed by dependency name.
	Pingers map[string]controllers.Pinger

	Dispatcher    webhookcontrollers.MutationEventDispatcher
	EventGuard    *hasurawebhook.IdempotencyGuard
	Notifications notifications.Service
	Subscriptions subscriptions.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTP),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	mutationEvent := webhookcontrollers.MutationEvent(deps.Dispatcher, cfg.Hasura.EventSecret, eventGuard(deps.EventGuard), logg)
	r.Post("/api/v1/events/mutation", mutationEvent)
	// Path the Hasura event triggers were originally configured with.
	r.Post("/api/mutation-event", mutationEvent)

	r.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(middleware.CORS(cfg.App.CORSOrigins))
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
		r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
		r.Delete("/{notificationId}", controllers.DeleteNotification(deps.Notifications, logg))

		r.Post("/subscriptions", controllers.RegisterDevice(deps.Subscriptions, logg))
		r.Delete("/subscriptions", controllers.UnregisterDevice(deps.Subscriptions, logg))
	})

	return r
}

// eventGuard keeps a nil guard a nil interface so the controller skips dedupe.
func eventGuard(guard *hasurawebhook.IdempotencyGuard) webhookcontrollers.MutationEventGuard {
	if guard == nil {
		return nil
	}
	return guard
}
