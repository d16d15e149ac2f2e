package ta

import (
	"github.com/cardsim/termauth/authz"
	"github.com/cardsim/termauth/cvc"
)

// AuxDatum is one (OID, value) pair from External Authenticate's
// auxiliary authenticated data, used to check age/community-ID/validity
// conditions a terminal asserts about itself.
type AuxDatum struct {
	OID   cvc.OID
	Value []byte
	// Raw is the original tag-0x73 encoded object, re-emitted verbatim
	// inside the tag-0x67 wrapper External Authenticate signs over.
	Raw []byte
}

// SessionState is the block of fields reset() clears. Everything else
// the StateMachine touches -- the chip
// date, the trust-point store, and the shared SecurityStatus -- survives
// a reset, which is what lets a second full run after a successful one
// observe the first run's published mechanism.
type SessionState struct {
	CurrentCertificate             *cvc.Certificate
	MostRecentTemporaryCertificate *cvc.Certificate

	Challenge []byte

	AuxiliaryData []AuxDatum

	CryptographicMechanismReference cvc.OID

	CompressedTerminalEphemeralPublicKey []byte

	TerminalType cvc.OID

	FirstSectorPublicKeyHash  []byte
	SecondSectorPublicKeyHash []byte

	AuthorizationStore *authz.Store

	// authorizationStoreInitialized tracks whether AuthorizationStore has
	// already been seeded from the active PACE mechanism's confined
	// authorization this session, so a later Set DST that re-adopts a
	// trust-point anchor (rather than the temporary-certificate shortcut)
	// doesn't reset an already-narrowed store.
	authorizationStoreInitialized bool
}

func freshSessionState() SessionState {
	return SessionState{AuthorizationStore: authz.New()}
}
