package config

// EnvPrefix is empty because every field names its full variable.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv         = "BALONIS_APP_ENV"
	EnvPort           = "BALONIS_APP_PORT"
	EnvLogLevel       = "BALONIS_LOG_LEVEL"
	EnvAPIBaseURL     = "BALONIS_API_BASE_URL"
	EnvAPITimeout     = "BALONIS_API_TIMEOUT"
	EnvRedisURL       = "BALONIS_REDIS_URL"
	EnvLookupCacheTTL = "BALONIS_LOOKUP_CACHE_TTL"
	EnvSettleTimeout  = "BALONIS_CATALOG_SETTLE_TIMEOUT"
	EnvSessionMax     = "BALONIS_SESSION_MAX"
	EnvSessionTTL     = "BALONIS_SESSION_TTL"
	EnvCORSOrigins    = "BALONIS_CORS_ORIGINS"
)
