package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carelink-sync service configuration
type Config struct {
	HTTP struct {
		Addr string
	}
	DBEnabled bool
	Database  DatabaseConfig
	Redis     struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	Legacy LegacyConfig
	Sync   SyncConfig
	MQTT   MQTTConfig
	Log    struct {
		Level  string
		Format string
	}
}

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// LegacyConfig legacy clinic system endpoint settings
type LegacyConfig struct {
	BaseURL string // e.g. "http://localhost:8081"
	Timeout time.Duration
}

// SyncConfig synchronization run tuning
type SyncConfig struct {
	Enabled      bool          // run on a fixed schedule (manual trigger always available)
	InitialDelay time.Duration // delay before the first scheduled run
	Interval     time.Duration // fixed rate between scheduled runs
	WorkerCount  int           // note reconciliation partition workers
	LockTTL      time.Duration // run lock expiry (stale-lock recovery)
}

// MQTTConfig MQTT trigger settings (disabled by default)
type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string // a message on this topic forces a run
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// Default to true; when the DB is unavailable the service falls back to
	// in-memory repositories so `go run` still works for local dev.
	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "carelink")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "10"), 10)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "true") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Legacy.BaseURL = getEnv("LEGACY_BASE_URL", "http://localhost:8081")
	cfg.Legacy.Timeout = parseDuration(getEnv("LEGACY_TIMEOUT", "30s"), 30*time.Second)

	cfg.Sync.Enabled = getEnv("SYNC_ENABLED", "true") == "true"
	cfg.Sync.InitialDelay = parseDuration(getEnv("SYNC_INITIAL_DELAY", "10s"), 10*time.Second)
	cfg.Sync.Interval = parseDuration(getEnv("SYNC_INTERVAL", "20s"), 20*time.Second)
	cfg.Sync.WorkerCount = parseInt(getEnv("SYNC_WORKER_COUNT", "4"), 4)
	cfg.Sync.LockTTL = parseDuration(getEnv("SYNC_LOCK_TTL", "10m"), 10*time.Minute)

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "carelink-sync")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "carelink/sync/force")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

// GetDSN builds a lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
