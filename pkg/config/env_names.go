package config

// EnvPrefix is the envconfig prefix shared by all variables.
const EnvPrefix = "SFCONNECT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

// Environment variable names referenced outside struct tags.
const (
	EnvAppEnv   = "SFCONNECT_APP_ENV"
	EnvPort     = "SFCONNECT_APP_PORT"
	EnvLogLevel = "SFCONNECT_LOG_LEVEL"

	EnvDBDSN     = "SFCONNECT_DB_DSN"
	EnvDBHost    = "SFCONNECT_DB_HOST"
	EnvDBPort    = "SFCONNECT_DB_PORT"
	EnvDBUser    = "SFCONNECT_DB_USER"
	EnvDBName    = "SFCONNECT_DB_NAME"
	EnvDBSSLMode = "SFCONNECT_DB_SSLMODE"

	EnvRedisURL = "SFCONNECT_REDIS_URL"

	EnvJWTSecret              = "SFCONNECT_JWT_SECRET"
	EnvJWTIssuer              = "SFCONNECT_JWT_ISSUER"
	EnvJWTExpMins             = "SFCONNECT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SFCONNECT_REFRESH_TOKEN_TTL_MINUTES"
)
