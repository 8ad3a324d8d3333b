// Package journal records structural changes of services for downstream
// consumers. Delivery is best-effort: callers log failures and move on.
package journal

import (
	"context"
	"slices"
	"sync"
	"time"

	"mss/pkg/platform/ids"
)

// Type names an event kind.
type Type string

const (
	TypeServiceCreated      Type = "NOUVEAU_SERVICE_CREE"
	TypeCompletenessChanged Type = "COMPLETUDE_SERVICE_MODIFIEE"
	TypeServiceDeleted      Type = "SERVICE_SUPPRIME"
)

// Event is one journal entry. Payload keys are the French field names
// consumers already rely on.
type Event struct {
	ID      string         `json:"id"`
	Type    Type           `json:"type"`
	Date    time.Time      `json:"date"`
	Payload map[string]any `json:"donnees"`
}

// ServiceID returns the service the event is about, used as partition key.
func (e Event) ServiceID() string {
	id, _ := e.Payload["idService"].(string)
	return id
}

type Journal interface {
	Record(ctx context.Context, e Event) error
}

func newEvent(t Type, at time.Time, payload map[string]any) Event {
	return Event{ID: ids.UUID{}.NewID(), Type: t, Date: at.UTC(), Payload: payload}
}

func NewServiceCreated(serviceID, userID string, at time.Time) Event {
	return newEvent(TypeServiceCreated, at, map[string]any{
		"idService":     serviceID,
		"idUtilisateur": userID,
	})
}

func NewCompletenessChanged(serviceID string, total, complete int, at time.Time) Event {
	return newEvent(TypeCompletenessChanged, at, map[string]any{
		"idService":              serviceID,
		"nombreTotalMesures":     total,
		"nombreMesuresCompletes": complete,
	})
}

func NewServiceDeleted(serviceID string, at time.Time) Event {
	return newEvent(TypeServiceDeleted, at, map[string]any{
		"idService": serviceID,
	})
}

// InMemory keeps events in insertion order.
type InMemory struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (j *InMemory) Record(_ context.Context, e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
	return nil
}

func (j *InMemory) Events() []Event {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return slices.Clone(j.events)
}

// Types lists the recorded event types in order.
func (j *InMemory) Types() []Type {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]Type, 0, len(j.events))
	for _, e := range j.events {
		out = append(out, e.Type)
	}
	return out
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, Event) error {
	return nil
}
