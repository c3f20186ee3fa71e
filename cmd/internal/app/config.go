package app

import "time"

// Config holds runtime settings for the wayfare server. Every field is
// sourced from the environment with a workable default for development;
// the only hard requirement in production is the token secret, which is
// validated where the token manager is constructed.
type Config struct {
	HTTPAddr string

	LogLevel  string
	LogFormat string
	LogColor  bool

	// DatabaseURL selects the storage engine by scheme:
	// postgres:// or postgresql:// for PostgreSQL, mongodb:// or
	// mongodb+srv:// for MongoDB. Empty means the in-memory store,
	// which is only suitable for development and tests.
	DatabaseURL string
	MongoDBName string
	DBMaxConns  int32
	DBMinConns  int32

	// DBMigrate makes startup run the index migration once before
	// serving. It is opt-in so deployments control when schema
	// changes happen.
	DBMigrate bool

	ReadinessRequireDB bool

	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("WAYFARE_HTTP_ADDR", ":8080"),

		LogLevel:  EnvString("WAYFARE_LOG_LEVEL", "info"),
		LogFormat: EnvString("WAYFARE_LOG_FORMAT", "json"),
		LogColor:  EnvBool("WAYFARE_LOG_COLOR", false),

		DatabaseURL: EnvString("WAYFARE_DATABASE_URL", ""),
		MongoDBName: EnvString("WAYFARE_MONGO_DB", "wayfare"),
		DBMaxConns:  EnvInt32("WAYFARE_DB_MAX_CONNS", 8),
		DBMinConns:  EnvInt32("WAYFARE_DB_MIN_CONNS", 0),
		DBMigrate:   EnvBool("WAYFARE_DB_MIGRATE", false),

		ReadinessRequireDB: EnvBool("WAYFARE_READINESS_REQUIRE_DB", true),

		ReadTimeout:       EnvDuration("WAYFARE_HTTP_READ_TIMEOUT", 10*time.Second),
		ReadHeaderTimeout: EnvDuration("WAYFARE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		WriteTimeout:      EnvDuration("WAYFARE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("WAYFARE_HTTP_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout:   EnvDuration("WAYFARE_SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
