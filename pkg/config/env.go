package config

const (
	EnvPrefix = "CHIRPY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DataBackendPostgres = "postgres"
	DataBackendHasura   = "hasura"

	EnvAppEnv            = "CHIRPY_APP_ENV"
	EnvPort              = "CHIRPY_APP_PORT"
	EnvDBDSN             = "CHIRPY_DB_DSN"
	EnvDBHost            = "CHIRPY_DB_HOST"
	EnvDBUser            = "CHIRPY_DB_USER"
	EnvDBName            = "CHIRPY_DB_NAME"
	EnvDBPassword        = "CHIRPY_DB_PASSWORD"
	EnvRedisURL          = "CHIRPY_REDIS_URL"
	EnvHasuraEventSecret = "CHIRPY_HASURA_EVENT_SECRET"
	EnvHasuraHTTPOrigin  = "CHIRPY_HASURA_HTTP_ORIGIN"
	EnvHasuraAdminSecret = "CHIRPY_HASURA_ADMIN_SECRET"
	EnvDataBackend       = "CHIRPY_DATA_BACKEND"
	EnvJWTSecret         = "CHIRPY_JWT_SECRET"
	EnvDedupeEnabled     = "CHIRPY_EVENTING_DEDUPE_ENABLED"
	EnvRetentionDays     = "CHIRPY_NOTIFICATION_RETENTION_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
