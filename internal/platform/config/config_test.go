package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Chdir(t.TempDir())
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, StorageMemory, cfg.Storage.Backend)
		assert.Equal(t, JournalMemory, cfg.Journal.Backend)
		assert.Equal(t, 5*time.Second, cfg.Storage.TxTimeout)
		assert.False(t, cfg.RelayEnabled())
	})

	t.Run("reads backends and brokers", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("DATABASE_URL", "postgres://mss@localhost/mss")
		t.Setenv("JOURNAL_BACKEND", "postgres")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("STORAGE_TX_TIMEOUT", "2s")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
		assert.Equal(t, "postgres://mss@localhost/mss", cfg.Journal.DatabaseURL)
		assert.Equal(t, 2*time.Second, cfg.Storage.TxTimeout)
		assert.True(t, cfg.RelayEnabled())
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("REDIS_POOL_SIZE", "beaucoup")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_POOL_SIZE")
	})

	t.Run("rejects incomplete backends", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("JOURNAL_BACKEND", "redis")
		_, err := FromEnv()
		require.ErrorContains(t, err, "REDIS_URL")
	})
}

func TestFromEnvRejectsNonPositiveRelaySettings(t *testing.T) {
	for key, value := range map[string]string{
		"JOURNAL_RELAY_INTERVAL": "0s",
		"KAFKA_PARTITIONS":       "0",
	} {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("JOURNAL_BACKEND", "postgres")
			t.Setenv("DATABASE_URL", "postgres://mss@localhost/mss")
			t.Setenv("KAFKA_BROKERS", "k1:9092")
			t.Setenv(key, value)

			_, err := FromEnv()
			require.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Storage: StorageConfig{Backend: "oracle"},
		Journal: JournalConfig{Backend: JournalMemory},
	}
	assert.ErrorContains(t, cfg.Validate(), "STORAGE_BACKEND")

	cfg.Storage.Backend = StorageSQLite
	cfg.Journal.Backend = JournalKafka
	assert.ErrorContains(t, cfg.Validate(), "KAFKA_BROKERS")

	cfg.Kafka.Brokers = []string{"k1:9092"}
	cfg.Kafka.Partitions = -1
	assert.ErrorContains(t, cfg.Validate(), "KAFKA_PARTITIONS")

	cfg.Kafka.Partitions = 3
	cfg.Journal.Backend = JournalPostgres
	cfg.Journal.DatabaseURL = "postgres://mss@localhost/mss"
	cfg.Journal.RelayInterval = -time.Second
	assert.ErrorContains(t, cfg.Validate(), "JOURNAL_RELAY_INTERVAL")

	cfg.Journal.RelayInterval = time.Second
	assert.NoError(t, cfg.Validate())
}
