package ta

import "github.com/cardsim/termauth/cvc"

// Snapshot is a serializable picture of a session's progress, taken
// between APDUs so a dispatcher pool can persist it externally and
// resume observability (state, chain position, chip date) after a
// restart. It deliberately carries certificate references rather than
// certificates: the certificates themselves live in the trust-point
// store or arrive again over the wire on replay.
type Snapshot struct {
	State    string   `json:"state"`
	ChipDate cvc.Date `json:"chipDate"`

	CurrentCHR   []byte `json:"currentCHR,omitempty"`
	TemporaryCHR []byte `json:"temporaryCHR,omitempty"`

	TerminalType cvc.OID `json:"terminalType,omitempty"`
	Mechanism    cvc.OID `json:"mechanism,omitempty"`

	Challenge                            []byte `json:"challenge,omitempty"`
	CompressedTerminalEphemeralPublicKey []byte `json:"terminalEphemeralKey,omitempty"`
}

// Snapshot returns a serializable picture of the machine's current
// session progress.
func (sm *StateMachine) Snapshot() Snapshot {
	snap := Snapshot{
		State:                                sm.state.String(),
		ChipDate:                             sm.chipDate,
		TerminalType:                         sm.session.TerminalType,
		Mechanism:                            sm.session.CryptographicMechanismReference,
		Challenge:                            sm.session.Challenge,
		CompressedTerminalEphemeralPublicKey: sm.session.CompressedTerminalEphemeralPublicKey,
	}
	if sm.session.CurrentCertificate != nil {
		snap.CurrentCHR = []byte(sm.session.CurrentCertificate.CHR)
	}
	if sm.session.MostRecentTemporaryCertificate != nil {
		snap.TemporaryCHR = []byte(sm.session.MostRecentTemporaryCertificate.CHR)
	}
	return snap
}
