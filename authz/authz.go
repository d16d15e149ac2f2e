// Package authz implements the authorization store: a mapping from
// terminal-type OID to relative-authorization bitfield that narrows
// monotonically as a certificate chain is walked.
package authz

import (
	"sync"

	"github.com/cardsim/termauth/cvc"
)

// Store maps terminal-type OID to the relative authorization currently
// granted for it. Zero value is an empty store.
type Store struct {
	mu   sync.RWMutex
	bits map[cvc.OID]cvc.Bitfield
}

// New returns an empty Store.
func New() *Store {
	return &Store{bits: map[cvc.OID]cvc.Bitfield{}}
}

// NewFromCHAT seeds a Store with a single entry, as when initializing the
// authorization store from the preceding PACE mechanism's confined
// authorization CHAT.
func NewFromCHAT(chat cvc.CHAT) *Store {
	s := New()
	s.bits[chat.TerminalType] = append(cvc.Bitfield(nil), chat.RelativeAuthorization...)
	return s
}

// Update narrows the store by incoming: for each (oid, bits) pair, the
// stored value becomes the bitwise AND of the existing value (or
// all-ones of bits' length if the OID was absent) and bits.
func (s *Store) Update(incoming map[cvc.OID]cvc.Bitfield) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bits == nil {
		s.bits = map[cvc.OID]cvc.Bitfield{}
	}
	for oid, bits := range incoming {
		existing, ok := s.bits[oid]
		if !ok {
			existing = cvc.AllOnes(len(bits))
		}
		s.bits[oid] = existing.And(bits)
	}
}

// UpdateFromCertificate narrows the store using the single
// (terminalTypeOid -> relativeAuthorization) pair a certificate's CHAT
// contributes.
func (s *Store) UpdateFromCertificate(cert *cvc.Certificate) {
	s.Update(map[cvc.OID]cvc.Bitfield{
		cert.CHAT.TerminalType: cert.CHAT.RelativeAuthorization,
	})
}

// Get returns the relative authorization stored for oid, and whether it
// was present.
func (s *Store) Get(oid cvc.OID) (cvc.Bitfield, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bits, ok := s.bits[oid]
	if !ok {
		return nil, false
	}
	return append(cvc.Bitfield(nil), bits...), true
}

// Clone returns an independent copy of s.
func (s *Store) Clone() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := New()
	for oid, bits := range s.bits {
		out.bits[oid] = append(cvc.Bitfield(nil), bits...)
	}
	return out
}

// Snapshot returns an independent copy of every (OID, bits) pair
// currently held, for publishing as an EffectiveAuthorizationMechanism
// once External Authenticate succeeds.
func (s *Store) Snapshot() map[cvc.OID]cvc.Bitfield {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[cvc.OID]cvc.Bitfield, len(s.bits))
	for oid, bits := range s.bits {
		out[oid] = append(cvc.Bitfield(nil), bits...)
	}
	return out
}
