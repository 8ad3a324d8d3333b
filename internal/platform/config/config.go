package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	platformstrings "mss/pkg/platform/strings"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Journal backends.
const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalKafka    = "kafka"
	JournalRedis    = "redis"
	JournalNone     = "none"
)

// Config is the whole process configuration.
type Config struct {
	Server      Server
	Storage     StorageConfig
	Journal     JournalConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Referentiel string
	LogLevel    string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr string
}

type StorageConfig struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
	TxTimeout   time.Duration
}

type JournalConfig struct {
	Backend       string
	DatabaseURL   string
	RedisStream   string
	RelayInterval time.Duration
}

// RedisConfig configures the Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	Topic      string
	Partitions int
}

// FromEnv builds the configuration from environment variables, reading a
// .env file first when one exists.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	var errs []error
	duration := func(key string, def time.Duration) time.Duration {
		d, err := getEnvAsDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	integer := func(key string, def int) int {
		n, err := getEnvAsInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}

	databaseURL := os.Getenv("DATABASE_URL")
	cfg := Config{
		Server: Server{
			Addr: getEnv("MSS_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			Backend:     getEnv("STORAGE_BACKEND", StorageMemory),
			DatabaseURL: databaseURL,
			SQLitePath:  getEnv("SQLITE_PATH", "file:mss.db"),
			TxTimeout:   duration("STORAGE_TX_TIMEOUT", 5*time.Second),
		},
		Journal: JournalConfig{
			Backend:       getEnv("JOURNAL_BACKEND", JournalMemory),
			DatabaseURL:   getEnv("JOURNAL_DATABASE_URL", databaseURL),
			RedisStream:   getEnv("JOURNAL_REDIS_STREAM", "journal:mss"),
			RelayInterval: duration("JOURNAL_RELAY_INTERVAL", 5*time.Second),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    platformstrings.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:      getEnv("KAFKA_TOPIC", "journal-mss"),
			Partitions: integer("KAFKA_PARTITIONS", 3),
		},
		Referentiel: os.Getenv("REFERENTIEL_PATH"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	switch c.Journal.Backend {
	case JournalMemory, JournalNone:
	case JournalPostgres:
		if c.Journal.DatabaseURL == "" {
			return errors.New("JOURNAL_DATABASE_URL or DATABASE_URL is required for the postgres journal")
		}
	case JournalKafka:
		if len(c.Kafka.Brokers) == 0 {
			return errors.New("KAFKA_BROKERS is required for the kafka journal")
		}
	case JournalRedis:
		if c.Redis.URL == "" {
			return errors.New("REDIS_URL is required for the redis journal")
		}
	default:
		return fmt.Errorf("unknown JOURNAL_BACKEND %q", c.Journal.Backend)
	}

	if c.Journal.Backend == JournalKafka || c.RelayEnabled() {
		if c.Kafka.Partitions <= 0 {
			return fmt.Errorf("KAFKA_PARTITIONS must be positive, got %d", c.Kafka.Partitions)
		}
	}
	if c.RelayEnabled() && c.Journal.RelayInterval <= 0 {
		return fmt.Errorf("JOURNAL_RELAY_INTERVAL must be positive, got %s", c.Journal.RelayInterval)
	}
	return nil
}

// RelayEnabled reports whether outbox events should be forwarded to Kafka.
func (c Config) RelayEnabled() bool {
	return c.Journal.Backend == JournalPostgres && len(c.Kafka.Brokers) > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return value, nil
}
