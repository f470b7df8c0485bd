package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Catalog sources.
const (
	SourceEmbedded = "embedded"
	SourcePostgres = "postgres"
	SourceS3       = "s3"
)

// Traffic backends.
const (
	TrafficMemory = "memory"
	TrafficRedis  = "redis"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AWS      AWSConfig
	JWT      JWTConfig
	Search   SearchConfig
	Backend  BackendConfig
	Admin    AdminConfig
	Traffic  TrafficConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all
}

// CatalogConfig selects where the enterprise catalog is loaded from at startup.
type CatalogConfig struct {
	Source string // embedded, postgres or s3
	S3Key  string // object key when Source is s3
}

// DatabaseConfig holds PostgreSQL connection settings for the postgres catalog source.
type DatabaseConfig struct {
	URL      string // if set, used as-is
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	Migrate  bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	PubSub   bool // fan catalog changes out to other instances
}

// AWSConfig holds AWS credentials and the catalog bucket.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, e.g. a MinIO URL
	CatalogBucket   string
}

// JWTConfig holds session token signing settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
	// SweepInterval is how often expired sessions are evicted.
	SweepInterval time.Duration
}

// SearchConfig holds live-search settings.
type SearchConfig struct {
	QuietPeriod time.Duration
}

// BackendConfig holds data-source call settings.
type BackendConfig struct {
	CallTimeout  time.Duration // 0 disables
	LatencyScale float64       // multiplies the simulated delays; 0 removes them
}

// AdminConfig holds the placeholder admin login marker.
type AdminConfig struct {
	Marker string
}

// TrafficConfig selects the traffic counter.
type TrafficConfig struct {
	Backend   string // memory or redis
	KeyPrefix string
}

// DSN returns the PostgreSQL connection string.
// If DatabaseConfig.URL is set (e.g. DATABASE_URL env), it is used as-is; otherwise built from components.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// NeedsRedis reports whether any component uses Redis.
func (c *Config) NeedsRedis() bool {
	return c.Traffic.Backend == TrafficRedis || c.Redis.PubSub
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Catalog: CatalogConfig{
			Source: strings.ToLower(getEnv("CATALOG_SOURCE", SourceEmbedded)),
			S3Key:  getEnv("CATALOG_S3_KEY", "catalog.json"),
		},
		Database: DatabaseConfig{
			URL:      getEnv("DATABASE_URL", ""),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "directory"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 4),
			Migrate:  getEnvBool("DB_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PubSub:   getEnvBool("REDIS_PUBSUB", false),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			CatalogBucket:   getEnv("AWS_S3_CATALOG_BUCKET", ""),
		},
		JWT: JWTConfig{
			Secret:        getEnv("JWT_SECRET", "change-me-in-production"),
			ExpireHours:   getEnvInt("JWT_EXPIRE_HOURS", 24),
			SweepInterval: time.Duration(getEnvInt("SESSION_SWEEP_INTERVAL_SEC", 300)) * time.Second,
		},
		Search: SearchConfig{
			QuietPeriod: time.Duration(getEnvInt("SEARCH_DEBOUNCE_MS", 500)) * time.Millisecond,
		},
		Backend: BackendConfig{
			CallTimeout:  time.Duration(getEnvInt("BACKEND_CALL_TIMEOUT_MS", 10000)) * time.Millisecond,
			LatencyScale: getEnvFloat("BACKEND_LATENCY_SCALE", 1),
		},
		Admin: AdminConfig{
			Marker: getEnv("ADMIN_MARKER", "admin@example.com"),
		},
		Traffic: TrafficConfig{
			Backend:   strings.ToLower(getEnv("TRAFFIC_BACKEND", TrafficMemory)),
			KeyPrefix: getEnv("TRAFFIC_KEY_PREFIX", "directory:traffic:"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Catalog.Source {
	case SourceEmbedded, SourcePostgres:
	case SourceS3:
		if c.AWS.CatalogBucket == "" {
			return fmt.Errorf("CATALOG_SOURCE=s3 requires AWS_S3_CATALOG_BUCKET")
		}
	default:
		return fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source)
	}
	switch c.Traffic.Backend {
	case TrafficMemory, TrafficRedis:
	default:
		return fmt.Errorf("unknown TRAFFIC_BACKEND %q", c.Traffic.Backend)
	}
	if c.Search.QuietPeriod <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE_MS must be positive")
	}
	if c.Backend.CallTimeout < 0 || c.Backend.LatencyScale < 0 {
		return fmt.Errorf("BACKEND_CALL_TIMEOUT_MS and BACKEND_LATENCY_SCALE must not be negative")
	}
	return nil
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
