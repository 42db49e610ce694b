package config

// EnvPrefix namespaces every environment variable this service reads.
const EnvPrefix = "PARTSMARKET"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "PARTSMARKET_APP_ENV"
	EnvPort     = "PARTSMARKET_APP_PORT"
	EnvLogLevel = "PARTSMARKET_LOG_LEVEL"

	EnvDBDSN      = "PARTSMARKET_DB_DSN"
	EnvDBHost     = "PARTSMARKET_DB_HOST"
	EnvDBUser     = "PARTSMARKET_DB_USER"
	EnvDBName     = "PARTSMARKET_DB_NAME"
	EnvDBPassword = "PARTSMARKET_DB_PASSWORD"

	EnvRedisURL = "PARTSMARKET_REDIS_URL"

	EnvJWTSecret  = "PARTSMARKET_JWT_SECRET"
	EnvJWTIssuer  = "PARTSMARKET_JWT_ISSUER"
	EnvJWTExpMins = "PARTSMARKET_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
