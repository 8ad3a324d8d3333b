package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	authmodels "mss/internal/authorization/models"
	"mss/internal/homologation/models"
)

const (
	kindHomologations  = "homologations"
	kindServices       = "services"
	kindUsers          = "utilisateurs"
	kindAuthorizations = "autorisations"
)

var kinds = []string{kindHomologations, kindServices, kindUsers, kindAuthorizations}

type document map[string][]byte

// InMemory keeps every record as encoded JSON so that callers never share
// memory with stored state.
//
// Transactions take an exclusive write lock for their whole duration and
// restore a snapshot when fn fails. Writes outside a transaction wait for it
// to finish; reads do not and may observe uncommitted writes.
type InMemory struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	docs map[string]document
}

var _ Adapter = (*InMemory)(nil)

func NewInMemory() *InMemory {
	docs := make(map[string]document, len(kinds))
	for _, k := range kinds {
		docs[k] = document{}
	}
	return &InMemory{docs: docs}
}

type memTxKey struct{}

func (m *InMemory) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(memTxKey{}).(*InMemory)
	return owner == m
}

func (m *InMemory) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.inTx(ctx) {
		return fn(ctx)
	}
	ctx, cancel, err := WithTxTimeout(ctx, 0)
	defer cancel()
	if err != nil {
		return err
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return txAborted(err)
	}

	snapshot := m.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, m)); err != nil {
		m.restore(snapshot)
		return err
	}
	if err := ctx.Err(); err != nil {
		m.restore(snapshot)
		return txAborted(err)
	}
	return nil
}

func (m *InMemory) snapshot() map[string]document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]document, len(m.docs))
	for k, d := range m.docs {
		out[k] = maps.Clone(d)
	}
	return out
}

func (m *InMemory) restore(snapshot map[string]document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = snapshot
}

func (m *InMemory) write(ctx context.Context, fn func()) {
	if !m.inTx(ctx) {
		m.txMu.Lock()
		defer m.txMu.Unlock()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

func (m *InMemory) put(ctx context.Context, kind, id string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	m.write(ctx, func() {
		m.docs[kind][id] = raw
	})
	return nil
}

func (m *InMemory) remove(ctx context.Context, kind string, ids ...string) {
	m.write(ctx, func() {
		for _, id := range ids {
			delete(m.docs[kind], id)
		}
	})
}

func get[T any](m *InMemory, kind, id string) (*T, error) {
	m.mu.RLock()
	raw, ok := m.docs[kind][id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	return &v, nil
}

// list decodes every record of kind in id order, keeping those accepted by keep.
func list[T any](m *InMemory, kind string, keep func(*T) bool) ([]*T, error) {
	m.mu.RLock()
	d := maps.Clone(m.docs[kind])
	m.mu.RUnlock()

	out := make([]*T, 0, len(d))
	for _, id := range slices.Sorted(maps.Keys(d)) {
		var v T
		if err := json.Unmarshal(d[id], &v); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
		}
		if keep == nil || keep(&v) {
			out = append(out, &v)
		}
	}
	return out, nil
}

func (m *InMemory) Homologation(_ context.Context, id string) (*models.HomologationData, error) {
	return get[models.HomologationData](m, kindHomologations, id)
}

func (m *InMemory) Homologations(_ context.Context) ([]*models.HomologationData, error) {
	return list[models.HomologationData](m, kindHomologations, nil)
}

func (m *InMemory) SaveHomologation(ctx context.Context, h *models.HomologationData) error {
	return m.put(ctx, kindHomologations, h.ID, h)
}

func (m *InMemory) DeleteHomologation(ctx context.Context, id string) error {
	m.remove(ctx, kindHomologations, id)
	return nil
}

func (m *InMemory) Service(_ context.Context, id string) (*models.ServiceData, error) {
	return get[models.ServiceData](m, kindServices, id)
}

func (m *InMemory) Services(_ context.Context) ([]*models.ServiceData, error) {
	return list[models.ServiceData](m, kindServices, nil)
}

func (m *InMemory) SaveService(ctx context.Context, s *models.ServiceData) error {
	return m.put(ctx, kindServices, s.ID, s)
}

func (m *InMemory) DeleteService(ctx context.Context, id string) error {
	m.remove(ctx, kindServices, id)
	return nil
}

func (m *InMemory) User(_ context.Context, id string) (*models.User, error) {
	return get[models.User](m, kindUsers, id)
}

func (m *InMemory) Users(_ context.Context) ([]*models.User, error) {
	return list[models.User](m, kindUsers, nil)
}

func (m *InMemory) SaveUser(ctx context.Context, u *models.User) error {
	return m.put(ctx, kindUsers, u.ID, u)
}

func (m *InMemory) DeleteUser(ctx context.Context, id string) error {
	m.remove(ctx, kindUsers, id)
	return nil
}

func (m *InMemory) Authorization(_ context.Context, id string) (*authmodels.Authorization, error) {
	return get[authmodels.Authorization](m, kindAuthorizations, id)
}

func (m *InMemory) Authorizations(_ context.Context) ([]*authmodels.Authorization, error) {
	return list[authmodels.Authorization](m, kindAuthorizations, nil)
}

func (m *InMemory) AuthorizationsByUser(_ context.Context, userID string) ([]*authmodels.Authorization, error) {
	return list(m, kindAuthorizations, func(a *authmodels.Authorization) bool {
		return a.UserID == userID
	})
}

func (m *InMemory) AuthorizationsByHomologation(_ context.Context, homologationID string) ([]*authmodels.Authorization, error) {
	return list(m, kindAuthorizations, func(a *authmodels.Authorization) bool {
		return a.HomologationID == homologationID
	})
}

func (m *InMemory) SaveAuthorization(ctx context.Context, a *authmodels.Authorization) error {
	return m.put(ctx, kindAuthorizations, a.ID, a)
}

func (m *InMemory) DeleteAuthorization(ctx context.Context, id string) error {
	m.remove(ctx, kindAuthorizations, id)
	return nil
}

func (m *InMemory) DeleteAuthorizations(ctx context.Context, ids []string) error {
	m.remove(ctx, kindAuthorizations, ids...)
	return nil
}
