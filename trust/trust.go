// Package trust implements the trust-point store: up to two CVCA anchors
// (current and previous) per terminal type, with permanent rollover on
// new-root import.
package trust

import (
	"sync"

	"github.com/cardsim/termauth/cvc"
)

// Point holds a terminal type's current and previous CVCA certificates.
// Both are CVCA role; Previous may be nil if only one CVCA has ever been
// imported for this terminal type.
type Point struct {
	Current  *cvc.Certificate
	Previous *cvc.Certificate
}

// Store is the trust-point persistence surface the TA core depends on.
// Implementations must make Rollover atomic with respect to concurrent
// Get calls.
type Store interface {
	// Get returns the trust point for terminalType, and whether one
	// exists.
	Get(terminalType cvc.OID) (Point, bool)
	// Rollover assigns previous := current; current := newCVCA for
	// terminalType. It is invoked only by permanent import of a CVCA
	// and never reduces information.
	Rollover(terminalType cvc.OID, newCVCA *cvc.Certificate) error
}

// MemStore is an in-memory Store, sufficient for a single simulator
// process's lifetime.
type MemStore struct {
	mu     sync.RWMutex
	points map[cvc.OID]Point
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{points: map[cvc.OID]Point{}}
}

func (m *MemStore) Get(terminalType cvc.OID) (Point, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[terminalType]
	return p, ok
}

func (m *MemStore) Rollover(terminalType cvc.OID, newCVCA *cvc.Certificate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing := m.points[terminalType]
	m.points[terminalType] = Point{
		Current:  newCVCA,
		Previous: existing.Current,
	}
	return nil
}

// Seed installs a trust point directly, bypassing rollover bookkeeping.
// Used to provision a simulator's initial anchors at startup.
func (m *MemStore) Seed(terminalType cvc.OID, point Point) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[terminalType] = point
}
