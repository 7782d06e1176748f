package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Notification transports.
const (
	NotifierLog      = "log"
	NotifierRedis    = "redis"
	NotifierRabbitMQ = "rabbitmq"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Database
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	// Plans
	PlanCatalogPath string

	// Redis
	RedisURL         string
	SnapshotsEnabled bool
	SnapshotTTL      time.Duration

	// RabbitMQ
	RabbitMQURL        string
	EventExchange      string
	EventMirrorEnabled bool

	// Notifications
	Notifiers                []string
	NotificationInboxSize    int
	NotifierFailureThreshold int
	NotifierOpenTimeout      time.Duration

	// Read model
	RefreshInterval time.Duration

	// Worker
	ExpiryInterval   time.Duration
	WorkerHealthAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	databaseURL := getEnv("DATABASE_URL", "")
	localMode := getBoolEnv("ARENA_LOCAL_MODE", databaseURL == "")
	driver := getEnv("DATABASE_DRIVER", "")
	if driver == "" {
		driver = "postgres"
		if localMode {
			driver = "sqlite"
		}
	}

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogFormat: getEnv("LOG_FORMAT", ""),
		UserID:    getEnv("ARENA_USER_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: driver,
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath()),
		LocalMode:      localMode,

		PlanCatalogPath: getEnv("ARENA_PLAN_CATALOG", ""),

		RedisURL:         getEnv("REDIS_URL", ""),
		SnapshotsEnabled: getBoolEnv("READMODEL_SNAPSHOTS_ENABLED", false),
		SnapshotTTL:      getDurationEnv("READMODEL_SNAPSHOT_TTL", 10*time.Minute),

		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		EventExchange:      getEnv("EVENT_EXCHANGE", "arena.domain.events"),
		EventMirrorEnabled: getBoolEnv("EVENT_MIRROR_ENABLED", false),

		Notifiers:                getListEnv("NOTIFIERS", []string{NotifierLog}),
		NotificationInboxSize:    getIntEnv("NOTIFICATION_INBOX_SIZE", 100),
		NotifierFailureThreshold: getIntEnv("NOTIFIER_FAILURE_THRESHOLD", 5),
		NotifierOpenTimeout:      getDurationEnv("NOTIFIER_OPEN_TIMEOUT", 30*time.Second),

		RefreshInterval: getDurationEnv("READMODEL_REFRESH_INTERVAL", 500*time.Millisecond),

		ExpiryInterval:   getDurationEnv("EXPIRY_INTERVAL", time.Hour),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasNotifier reports whether name is among the configured transports.
func (c *Config) HasNotifier(name string) bool {
	for _, n := range c.Notifiers {
		if n == name {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping empty items.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	out := []string{}
	current := ""
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case ',':
			if current != "" {
				out = append(out, current)
			}
			current = ""
		case ' ':
		default:
			current += string(value[i])
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".arena", "arena.db")
	}
	return filepath.Join(home, ".arena", "arena.db")
}
