package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	Hasura        HasuraConfig
	JWT           JWTConfig
	WebPush       WebPushConfig
	Email         EmailConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Eventing      EventingConfig
	Notifications NotificationsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Hasura.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CHIRPY_APP_ENV" required:"true"`
	Port         string `envconfig:"CHIRPY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CHIRPY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CHIRPY_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"CHIRPY_AUTO_MIGRATE" default:"false"`
	// CORSOrigins lists dashboard origins allowed to call the inbox API.
	CORSOrigins []string `envconfig:"CHIRPY_CORS_ORIGINS" default:"http://localhost:3000,https://chirpy.dev"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"CHIRPY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"CHIRPY_DB_DSN"`

	LegacyHost     string `envconfig:"CHIRPY_DB_HOST"`
	LegacyPort     int    `envconfig:"CHIRPY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CHIRPY_DB_USER"`
	LegacyPassword string `envconfig:"CHIRPY_DB_PASSWORD"`
	LegacyName     string `envconfig:"CHIRPY_DB_NAME"`
	LegacySSLMode  string `envconfig:"CHIRPY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CHIRPY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CHIRPY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CHIRPY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CHIRPY_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// ConnectRetries bounds the startup ping attempts while Postgres comes up.
	ConnectRetries     uint64        `envconfig:"CHIRPY_DB_CONNECT_RETRIES" default:"5"`
	SlowQueryThreshold time.Duration `envconfig:"CHIRPY_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CHIRPY_REDIS_URL"`
	Address      string        `envconfig:"CHIRPY_REDIS_ADDR"`
	Password     string        `envconfig:"CHIRPY_REDIS_PASSWORD"`
	DB           int           `envconfig:"CHIRPY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CHIRPY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CHIRPY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CHIRPY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CHIRPY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CHIRPY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether any redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

// HasuraConfig covers both directions of the Hasura integration: the shared
// secret on inbound event triggers and the admin client used for GraphQL calls.
type HasuraConfig struct {
	EventSecret  string        `envconfig:"CHIRPY_HASURA_EVENT_SECRET" required:"true"`
	HTTPOrigin   string        `envconfig:"CHIRPY_HASURA_HTTP_ORIGIN"`
	AdminSecret  string        `envconfig:"CHIRPY_HASURA_ADMIN_SECRET"`
	DataBackend  string        `envconfig:"CHIRPY_DATA_BACKEND" default:"postgres"`
	RequestLimit time.Duration `envconfig:"CHIRPY_HASURA_TIMEOUT" default:"10s"`
}

// UsesGraphQL reports whether owner lookups and notification inserts go through Hasura.
func (h HasuraConfig) UsesGraphQL() bool {
	return strings.EqualFold(strings.TrimSpace(h.DataBackend), DataBackendHasura)
}

// GraphQLEndpoint returns the admin GraphQL URL derived from the HTTP origin.
func (h HasuraConfig) GraphQLEndpoint() string {
	return strings.TrimRight(strings.TrimSpace(h.HTTPOrigin), "/") + "/v1/graphql"
}

func (h HasuraConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(h.DataBackend)) {
	case "", DataBackendPostgres:
		return nil
	case DataBackendHasura:
		if strings.TrimSpace(h.HTTPOrigin) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvHasuraHTTPOrigin, EnvDataBackend, DataBackendHasura)
		}
		if strings.TrimSpace(h.AdminSecret) == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvHasuraAdminSecret, EnvDataBackend, DataBackendHasura)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvDataBackend, h.DataBackend)
	}
}

// JWTConfig verifies the dashboard-issued access tokens guarding the inbox API.
type JWTConfig struct {
	Secret string `envconfig:"CHIRPY_JWT_SECRET"`
	Issuer string `envconfig:"CHIRPY_JWT_ISSUER" default:"chirpy"`
	// ExpirationMinutes only applies to tokens minted by this service (tests, tooling).
	ExpirationMinutes int `envconfig:"CHIRPY_JWT_EXPIRATION_MINUTES" default:"60"`
}

func (j JWTConfig) Enabled() bool {
	return strings.TrimSpace(j.Secret) != ""
}

type WebPushConfig struct {
	VAPIDPublicKey  string `envconfig:"CHIRPY_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"CHIRPY_VAPID_PRIVATE_KEY"`
	Subscriber      string `envconfig:"CHIRPY_VAPID_SUBSCRIBER" default:"mailto:support@chirpy.dev"`
	TTLSeconds      int    `envconfig:"CHIRPY_WEB_PUSH_TTL" default:"86400"`
}

func (w WebPushConfig) Enabled() bool {
	return w.VAPIDPublicKey != "" && w.VAPIDPrivateKey != ""
}

type EmailConfig struct {
	ResendAPIKey string `envconfig:"CHIRPY_RESEND_API_KEY"`
	From         string `envconfig:"CHIRPY_EMAIL_FROM" default:"Chirpy <notification@mail.chirpy.dev>"`
}

func (e EmailConfig) Enabled() bool {
	return strings.TrimSpace(e.ResendAPIKey) != ""
}

type GCPConfig struct {
	ProjectID string `envconfig:"CHIRPY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic string `envconfig:"CHIRPY_PUBSUB_NOTIFICATION_TOPIC"`
	// CreateTopic creates a missing topic at startup (emulator, dev projects).
	CreateTopic bool `envconfig:"CHIRPY_PUBSUB_CREATE_TOPIC" default:"false"`
	// OrderByRecipient publishes with the recipient id as ordering key.
	OrderByRecipient bool `envconfig:"CHIRPY_PUBSUB_ORDER_BY_RECIPIENT" default:"true"`
}

func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.NotificationTopic) != ""
}

// EventingConfig controls the optional replay guard in front of the event dispatcher.
type EventingConfig struct {
	DedupeEnabled bool          `envconfig:"CHIRPY_EVENTING_DEDUPE_ENABLED" default:"false"`
	DedupeTTL     time.Duration `envconfig:"CHIRPY_EVENTING_DEDUPE_TTL" default:"24h"`
}

type NotificationsConfig struct {
	RetentionDays   int           `envconfig:"CHIRPY_NOTIFICATION_RETENTION_DAYS" default:"30"`
	CleanupInterval time.Duration `envconfig:"CHIRPY_NOTIFICATION_CLEANUP_INTERVAL" default:"24h"`
	AppOrigin       string        `envconfig:"CHIRPY_APP_ORIGIN" default:"https://chirpy.dev"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
