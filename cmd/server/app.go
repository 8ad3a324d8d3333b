package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/twmb/franz-go/pkg/kgo"

	authorizationService "mss/internal/authorization/service"
	homologationMetrics "mss/internal/homologation/metrics"
	homologationService "mss/internal/homologation/service"
	"mss/internal/journal"
	"mss/internal/journal/kafka"
	"mss/internal/journal/outbox"
	redisjournal "mss/internal/journal/redis"
	"mss/internal/platform/config"
	"mss/internal/platform/httpserver"
	"mss/internal/platform/metrics"
	"mss/internal/platform/redis"
	"mss/internal/referentiel"
	"mss/internal/storage"
	"mss/internal/storage/sqlstore"
	"mss/pkg/platform/circuit"
)

// app holds everything the process runs, plus what must be released on exit.
type app struct {
	homologations  *homologationService.Repository
	authorizations *authorizationService.Repository
	journal        journal.Journal
	relay          *outbox.Relay
	router         http.Handler

	checks  map[string]httpserver.HealthCheck
	closers []func()
	log     *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{checks: map[string]httpserver.HealthCheck{}, log: log}
	if err := a.build(ctx, cfg); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context, cfg config.Config) error {
	ref, err := referentiel.Load(cfg.Referentiel)
	if err != nil {
		return err
	}

	store, err := a.openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	if err := a.openJournal(ctx, cfg); err != nil {
		return err
	}

	registry := metrics.New()
	a.authorizations = authorizationService.New(store,
		authorizationService.WithLogger(a.log),
	)
	a.homologations, err = homologationService.New(store, a.authorizations, ref,
		homologationService.WithJournal(a.journal),
		homologationService.WithLogger(a.log),
		homologationService.WithMetrics(homologationMetrics.New(registry.Registerer())),
	)
	if err != nil {
		return err
	}
	a.router = httpserver.NewOpsRouter(registry.Handler(), a.checks)
	return nil
}

func (a *app) openStorage(ctx context.Context, cfg config.Config) (storage.Adapter, error) {
	if cfg.Storage.Backend == config.StorageMemory {
		return storage.NewInMemory(), nil
	}

	dialect, err := sqlstore.DialectByName(cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	dsn := cfg.Storage.DatabaseURL
	if dialect.Name == sqlstore.SQLite.Name {
		dsn = cfg.Storage.SQLitePath
	}
	store, err := sqlstore.Open(ctx, dialect, dsn, sqlstore.WithTxTimeout(cfg.Storage.TxTimeout))
	if err != nil {
		return nil, err
	}
	a.onClose(func() { _ = store.Close() })
	a.checks["storage"] = pingDB(store.DB())
	return store, nil
}

func (a *app) openJournal(ctx context.Context, cfg config.Config) error {
	switch cfg.Journal.Backend {
	case config.JournalNone:
		a.journal = journal.Discard{}
	case config.JournalMemory:
		a.journal = journal.NewInMemory()
	case config.JournalKafka:
		client, err := a.kafkaClient(ctx, cfg)
		if err != nil {
			return err
		}
		a.journal = a.guard("kafka", kafka.NewSink(client, cfg.Kafka.Topic))
	case config.JournalRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		a.onClose(func() { _ = client.Close() })
		a.checks["redis"] = client.Health
		a.journal = a.guard("redis", redisjournal.NewSink(client, cfg.Journal.RedisStream))
	case config.JournalPostgres:
		pool, err := outbox.OpenPool(ctx, cfg.Journal.DatabaseURL)
		if err != nil {
			return err
		}
		a.onClose(pool.Close)
		a.checks["journal"] = pingPool(pool)
		events := outbox.NewStore(pool)
		if err := events.Migrate(ctx); err != nil {
			return err
		}
		a.journal = events

		if cfg.RelayEnabled() {
			client, err := a.kafkaClient(ctx, cfg)
			if err != nil {
				return err
			}
			a.relay = outbox.NewRelay(events, kafka.NewSink(client, cfg.Kafka.Topic),
				outbox.WithInterval(cfg.Journal.RelayInterval),
				outbox.WithLogger(a.log),
			)
		}
	default:
		return fmt.Errorf("unknown journal backend %q", cfg.Journal.Backend)
	}
	return nil
}

func (a *app) kafkaClient(ctx context.Context, cfg config.Config) (*kgo.Client, error) {
	client, err := kafka.NewClient(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, err
	}
	a.onClose(client.Close)
	a.checks["kafka"] = client.Ping
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic, int32(cfg.Kafka.Partitions)); err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) guard(name string, sink journal.Journal) journal.Journal {
	return journal.NewGuarded(sink, circuit.New(name, circuit.WithCooldown(30*time.Second)), a.log)
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func pingDB(db *sql.DB) httpserver.HealthCheck {
	return db.PingContext
}

func pingPool(pool *pgxpool.Pool) httpserver.HealthCheck {
	return pool.Ping
}
