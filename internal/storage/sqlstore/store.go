// Package sqlstore persists storage records as JSON documents in SQL tables
// shaped (id, donnees), on Postgres or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	authmodels "mss/internal/authorization/models"
	"mss/internal/homologation/models"
	"mss/internal/storage"
	dErrors "mss/pkg/domain-errors"
	"mss/pkg/platform/tx"
)

const (
	tableHomologations  = "homologations"
	tableServices       = "services"
	tableUsers          = "utilisateurs"
	tableAuthorizations = "autorisations"
)

var tables = []string{tableHomologations, tableServices, tableUsers, tableAuthorizations}

type Store struct {
	db        *sql.DB
	dialect   Dialect
	txTimeout time.Duration
}

var _ storage.Adapter = (*Store)(nil)

type Option func(*Store)

// WithTxTimeout bounds transactions whose context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.txTimeout = d
	}
}

func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{db: db, dialect: dialect}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to dsn and creates missing tables.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*Store, error) {
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// a single connection keeps in-memory databases and write locks coherent
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect.Name, err)
	}
	s := New(db, dialect, opts...)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the document tables and the authorization lookup indexes.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := make([]string, 0, len(tables)+2)
	for _, table := range tables {
		stmts = append(stmts, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, donnees %s NOT NULL)",
			table, s.dialect.DocumentType))
	}
	stmts = append(stmts,
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS autorisations_utilisateur_idx ON autorisations (%s)",
			s.dialect.jsonText("idUtilisateur")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS autorisations_homologation_idx ON autorisations (%s)",
			s.dialect.jsonText("idHomologation")),
	)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := tx.From(ctx); ok {
		return fn(ctx)
	}
	ctx, cancel, err := storage.WithTxTimeout(ctx, s.txTimeout)
	defer cancel()
	if err != nil {
		return err
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if ctx.Err() != nil {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
		}
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) conn(ctx context.Context) tx.Queryer {
	return tx.Conn(ctx, s.db)
}

func (s *Store) put(ctx context.Context, table, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, id, err)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (id, donnees) VALUES (%s, %s) ON CONFLICT (id) DO UPDATE SET donnees = EXCLUDED.donnees",
		table, s.dialect.placeholder(1), s.dialect.placeholder(2))
	if _, err := s.conn(ctx).ExecContext(ctx, query, id, string(raw)); err != nil {
		return fmt.Errorf("save %s %s: %w", table, id, err)
	}
	return nil
}

func (s *Store) remove(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	clause, args := s.dialect.inClause("id", ids, 1)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, clause)
	if _, err := s.conn(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func get[T any](ctx context.Context, s *Store, table, id string) (*T, error) {
	query := fmt.Sprintf("SELECT donnees FROM %s WHERE id = %s", table, s.dialect.placeholder(1))
	var raw []byte
	if err := s.conn(ctx).QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("find %s %s: %w", table, id, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", table, id, err)
	}
	return &v, nil
}

// list returns the records of table in id order. An empty field selects every
// record, otherwise only those whose JSON field equals value.
func list[T any](ctx context.Context, s *Store, table, field, value string) ([]*T, error) {
	query := fmt.Sprintf("SELECT id, donnees FROM %s", table)
	var args []any
	if field != "" {
		query += fmt.Sprintf(" WHERE %s = %s", s.dialect.jsonText(field), s.dialect.placeholder(1))
		args = append(args, value)
	}
	query += " " + s.dialect.OrderByID

	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []*T
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", table, id, err)
		}
		out = append(out, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func (s *Store) Homologation(ctx context.Context, id string) (*models.HomologationData, error) {
	return get[models.HomologationData](ctx, s, tableHomologations, id)
}

func (s *Store) Homologations(ctx context.Context) ([]*models.HomologationData, error) {
	return list[models.HomologationData](ctx, s, tableHomologations, "", "")
}

func (s *Store) SaveHomologation(ctx context.Context, h *models.HomologationData) error {
	return s.put(ctx, tableHomologations, h.ID, h)
}

func (s *Store) DeleteHomologation(ctx context.Context, id string) error {
	return s.remove(ctx, tableHomologations, []string{id})
}

func (s *Store) Service(ctx context.Context, id string) (*models.ServiceData, error) {
	return get[models.ServiceData](ctx, s, tableServices, id)
}

func (s *Store) Services(ctx context.Context) ([]*models.ServiceData, error) {
	return list[models.ServiceData](ctx, s, tableServices, "", "")
}

func (s *Store) SaveService(ctx context.Context, svc *models.ServiceData) error {
	return s.put(ctx, tableServices, svc.ID, svc)
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	return s.remove(ctx, tableServices, []string{id})
}

func (s *Store) User(ctx context.Context, id string) (*models.User, error) {
	return get[models.User](ctx, s, tableUsers, id)
}

func (s *Store) Users(ctx context.Context) ([]*models.User, error) {
	return list[models.User](ctx, s, tableUsers, "", "")
}

func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	return s.put(ctx, tableUsers, u.ID, u)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.remove(ctx, tableUsers, []string{id})
}

func (s *Store) Authorization(ctx context.Context, id string) (*authmodels.Authorization, error) {
	return get[authmodels.Authorization](ctx, s, tableAuthorizations, id)
}

func (s *Store) Authorizations(ctx context.Context) ([]*authmodels.Authorization, error) {
	return list[authmodels.Authorization](ctx, s, tableAuthorizations, "", "")
}

func (s *Store) AuthorizationsByUser(ctx context.Context, userID string) ([]*authmodels.Authorization, error) {
	return list[authmodels.Authorization](ctx, s, tableAuthorizations, "idUtilisateur", userID)
}

func (s *Store) AuthorizationsByHomologation(ctx context.Context, homologationID string) ([]*authmodels.Authorization, error) {
	return list[authmodels.Authorization](ctx, s, tableAuthorizations, "idHomologation", homologationID)
}

func (s *Store) SaveAuthorization(ctx context.Context, a *authmodels.Authorization) error {
	return s.put(ctx, tableAuthorizations, a.ID, a)
}

func (s *Store) DeleteAuthorization(ctx context.Context, id string) error {
	return s.remove(ctx, tableAuthorizations, []string{id})
}

func (s *Store) DeleteAuthorizations(ctx context.Context, ids []string) error {
	return s.remove(ctx, tableAuthorizations, ids)
}
