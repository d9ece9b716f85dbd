package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendSQLite   = "sqlite"
	StorageBackendMongo    = "mongo"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Storage   StorageConfig
	Postgres  PostgresConfig
	SQLite    SQLiteConfig
	MongoDB   MongoDBConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	OTel      OTelConfig
}

type AppConfig struct {
	Name     string
	Version  string
	Env      string
	LogLevel string
}

type ServerConfig struct {
	Port      string
	Host      string
	StaticDir string
}

type StorageConfig struct {
	Backend string
}

type PostgresConfig struct {
	DSN string
}

type SQLiteConfig struct {
	Path string
}

type MongoDBConfig struct {
	URI      string
	Database string
}

// CORSConfig holds the explicit origin allow-list and the parent domain whose
// subdomains are accepted as well.
type CORSConfig struct {
	AllowedOrigins []string
	ParentDomain   string
}

// RateLimitConfig bounds writes per client IP. TrustProxyHeaders lets
// X-Forwarded-For / X-Real-IP name the client; only enable it behind a proxy
// that overwrites them.
type RateLimitConfig struct {
	WritesPerMinute   int
	MaxClients        int
	ClientTTL         time.Duration
	TrustProxyHeaders bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type OTelConfig struct {
	Enabled  bool
	Endpoint string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		App: AppConfig{
			Name:     GetEnv("APP_NAME", "microfix-dashboard"),
			Version:  GetEnv("APP_VERSION", "0.1.0"),
			Env:      GetEnv("APP_ENV", "development"),
			LogLevel: GetEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:      GetEnv("APP_PORT", "3001"),
			Host:      GetEnv("APP_HOST", "localhost"),
			StaticDir: GetEnv("STATIC_DIR", ""),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(GetEnv("STORAGE_BACKEND", StorageBackendPostgres)),
		},
		Postgres: PostgresConfig{
			DSN: GetEnv("DATABASE_URL", DefaultPostgresDSN()),
		},
		SQLite: SQLiteConfig{
			Path: GetEnv("SQLITE_PATH", "dashboard.db"),
		},
		MongoDB: MongoDBConfig{
			URI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: GetEnv("MONGODB_DATABASE", "dashboard"),
		},
		CORS: CORSConfig{
			AllowedOrigins: SplitCSV(GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
			ParentDomain:   strings.ToLower(strings.TrimPrefix(GetEnv("CORS_PARENT_DOMAIN", ""), ".")),
		},
		RateLimit: RateLimitConfig{
			WritesPerMinute:   GetEnvInt("RATE_LIMIT_WRITES_PER_MINUTE", 120),
			MaxClients:        GetEnvInt("RATE_LIMIT_MAX_CLIENTS", 1000),
			ClientTTL:         GetEnvDuration("RATE_LIMIT_CLIENT_TTL", 5*time.Minute),
			TrustProxyHeaders: GetEnvBool("TRUST_PROXY_HEADERS", false),
		},
		Kafka: KafkaConfig{
			Brokers: SplitCSV(GetEnv("KAFKA_BROKERS", "")),
			Topic:   GetEnv("KAFKA_LINKS_TOPIC", "links.changed"),
		},
		OTel: OTelConfig{
			Enabled:  GetEnvBool("OTEL_ENABLED", false),
			Endpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		},
	}

	switch cfg.Storage.Backend {
	case StorageBackendPostgres, StorageBackendSQLite, StorageBackendMongo:
	default:
		return nil, fmt.Errorf("STORAGE_BACKEND must be one of postgres, sqlite, mongo (got %q)", cfg.Storage.Backend)
	}
	if cfg.RateLimit.WritesPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WRITES_PER_MINUTE must be >= 0 (got %d)", cfg.RateLimit.WritesPerMinute)
	}

	return cfg, nil
}
