// Package ids provides identifier generation for persisted records.
package ids

import "github.com/google/uuid"

// Generator returns a fresh unique identifier on every call.
type Generator interface {
	NewID() string
}

// UUID generates random (version 4) UUIDs.
type UUID struct{}

func (UUID) NewID() string {
	return uuid.NewString()
}

// Func adapts a plain function to Generator.
type Func func() string

func (f Func) NewID() string {
	return f()
}

// Sequence returns a generator handing out values in order, then repeating the
// last one. It is meant for tests that assert on generated identifiers.
func Sequence(values ...string) Func {
	i := 0
	return func() string {
		if len(values) == 0 {
			return ""
		}
		v := values[min(i, len(values)-1)]
		i++
		return v
	}
}
