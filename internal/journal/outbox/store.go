// Package outbox stores journal events in Postgres and relays them to another
// journal once committed, so publishing never blocks a repository write.
package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mss/internal/journal"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_evenements (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	donnees JSONB NOT NULL,
	publie_le TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS journal_evenements_en_attente_idx
	ON journal_evenements (date) WHERE publie_le IS NULL;
`

// Store is a journal backed by the journal_evenements table.
type Store struct {
	pool *pgxpool.Pool
}

var _ journal.Journal = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// OpenPool connects to dsn and fails fast when the database is unreachable.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return pool, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate journal: %w", err)
	}
	return nil
}

// Record inserts e. Recording the same event twice is a no-op.
func (s *Store) Record(ctx context.Context, e journal.Event) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO journal_evenements (id, type, date, donnees) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		e.ID, string(e.Type), e.Date, e.Payload)
	if err != nil {
		return fmt.Errorf("record journal event %s: %w", e.ID, err)
	}
	return nil
}

// Pending returns up to limit unpublished events, oldest first.
func (s *Store) Pending(ctx context.Context, limit int) ([]journal.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, date, donnees FROM journal_evenements
		 WHERE publie_le IS NULL ORDER BY date, id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending journal events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (journal.Event, error) {
		var (
			e        journal.Event
			eventTyp string
		)
		if err := row.Scan(&e.ID, &eventTyp, &e.Date, &e.Payload); err != nil {
			return journal.Event{}, err
		}
		e.Type = journal.Type(eventTyp)
		e.Date = e.Date.UTC()
		return e, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan pending journal events: %w", err)
	}
	return events, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE journal_evenements SET publie_le = $1 WHERE id = ANY($2)`, at, ids)
	if err != nil {
		return fmt.Errorf("mark journal events published: %w", err)
	}
	return nil
}
