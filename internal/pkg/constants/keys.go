package constants

const (
	CookieKeyAuthToken = "iod_session"
	CtxKeySessionID    = "session_id"
)

// viper keys
const (
	ViperServerAddr         = "server.addr"
	ViperServerAllowOrigins = "server.allow_origins"
	ViperShutdownTimeout    = "server.shutdown_timeout"
	ViperTrustedProxies     = "server.trusted_proxies"

	ViperLogMode = "log.mode"

	ViperAccessPassword     = "access.password"
	ViperAccessPasswordHash = "access.password_hash"
	ViperSecretKey          = "access.token_secret"
	ViperTokenTTL           = "access.token_ttl"
	ViperAttemptsPerMinute  = "access.attempts_per_minute"
	ViperSessionIdleTTL     = "access.session_idle_ttl"

	ViperDataSource       = "data.source"
	ViperDataBaseURL      = "data.base_url"
	ViperDataHTTPTimeout  = "data.http_timeout"
	ViperDataDatasets     = "data.datasets"
	ViperDataWarmOnStart  = "data.warm_on_start"
	ViperPostgresDSN      = "postgres.dsn"
	ViperPostgresMaxWait  = "postgres.connect_max_wait"
	ViperJoinKey          = "pipeline.join_key"
	ViperOverflowLAs      = "pipeline.overflow_las"
	ViperRowCeiling       = "pipeline.row_ceiling"
	ViperComparisonMaxLAs = "pipeline.comparison_max"
)

const (
	DataSourceHTTP     = "http"
	DataSourcePostgres = "postgres"
)
