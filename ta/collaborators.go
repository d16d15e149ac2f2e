package ta

import (
	"sync"

	"github.com/cardsim/termauth/cvc"
)

// PACEMechanism describes one PACE channel that has already been
// established before TA begins, as consulted by Set DST and External
// Authenticate.
type PACEMechanism interface {
	TerminalTypeOID() cvc.OID
	CompressedEphemeralChipPublicKey() []byte
	ConfinedAuthorizationStore() cvc.CHAT
}

// TerminalAuthenticationMechanism is the record PublishTerminalAuthentication
// installs into the shared SecurityStatus once External Authenticate
// succeeds.
type TerminalAuthenticationMechanism struct {
	CompressedTerminalEphemeralPublicKey []byte
	TerminalType                         cvc.OID
	AuxiliaryData                        []AuxDatum
	FirstSectorPublicKeyHash             []byte
	SecondSectorPublicKeyHash            []byte
	HashAlgorithm                        cvc.OID
	CertificateExtensions                []cvc.Extension
}

// EffectiveAuthorizationMechanism is the record PublishEffectiveAuthorization
// installs, carrying the narrowed authorization store's final per-OID
// values so relying parties elsewhere in the card can read the outcome.
type EffectiveAuthorizationMechanism struct {
	Bits map[cvc.OID]cvc.Bitfield
}

// SecurityStatus is the shared, cross-mechanism security-context surface
// the TA core reads from and appends to, but never removes from. It is
// expected to outlive any single StateMachine's reset().
type SecurityStatus interface {
	// ActivePACEMechanisms returns every PACE mechanism currently
	// established in this security context.
	ActivePACEMechanisms() []PACEMechanism

	// HasTerminalAuthenticationMechanism reports whether a TA mechanism
	// has already been published in this security context: a second run
	// without an intervening context reset fails.
	HasTerminalAuthenticationMechanism() bool

	// PublishTerminalAuthentication appends a TerminalAuthenticationMechanism.
	PublishTerminalAuthentication(m TerminalAuthenticationMechanism)

	// PublishEffectiveAuthorization appends an EffectiveAuthorizationMechanism.
	PublishEffectiveAuthorization(m EffectiveAuthorizationMechanism)
}

// MemorySecurityStatus is an in-memory SecurityStatus, sufficient for a
// single simulator process's lifetime and for tests.
type MemorySecurityStatus struct {
	mu             sync.RWMutex
	pace           []PACEMechanism
	terminalAuth   []TerminalAuthenticationMechanism
	effectiveAuthz []EffectiveAuthorizationMechanism
}

var _ SecurityStatus = (*MemorySecurityStatus)(nil)

// NewMemorySecurityStatus returns a MemorySecurityStatus seeded with the
// given already-established PACE mechanisms.
func NewMemorySecurityStatus(pace ...PACEMechanism) *MemorySecurityStatus {
	return &MemorySecurityStatus{pace: pace}
}

func (s *MemorySecurityStatus) ActivePACEMechanisms() []PACEMechanism {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PACEMechanism(nil), s.pace...)
}

func (s *MemorySecurityStatus) HasTerminalAuthenticationMechanism() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.terminalAuth) > 0
}

func (s *MemorySecurityStatus) PublishTerminalAuthentication(m TerminalAuthenticationMechanism) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terminalAuth = append(s.terminalAuth, m)
}

func (s *MemorySecurityStatus) PublishEffectiveAuthorization(m EffectiveAuthorizationMechanism) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.effectiveAuthz = append(s.effectiveAuthz, m)
}

// StaticPACEMechanism is a fixed PACEMechanism value, useful for seeding
// a SecurityStatus in tests and in the simulator's own bootstrap without
// a real PACE implementation.
type StaticPACEMechanism struct {
	TerminalType               cvc.OID
	CompressedEphemeralChipKey []byte
	Authorization              cvc.CHAT
}

var _ PACEMechanism = StaticPACEMechanism{}

func (p StaticPACEMechanism) TerminalTypeOID() cvc.OID { return p.TerminalType }
func (p StaticPACEMechanism) CompressedEphemeralChipPublicKey() []byte {
	return p.CompressedEphemeralChipKey
}
func (p StaticPACEMechanism) ConfinedAuthorizationStore() cvc.CHAT { return p.Authorization }
