package ta

import terrors "github.com/cardsim/termauth/errors"

// INS byte values for the five commands the TA core recognizes.
const (
	InsManageSecurityEnvironment byte = 0x22 // Set DST and Set AT share this INS
	InsPerformSecurityOperation  byte = 0x2A // PSO:Verify Certificate
	InsExternalAuthenticate      byte = 0x82
	InsGetChallenge              byte = 0x84
)

// P1P2 values distinguishing commands that share an INS.
const (
	P1P2SetDST              uint16 = 0x81B6
	P1P2SetAT               uint16 = 0xC1A4
	P1P2PSOVerifyCertificate uint16 = 0x00BE
	P1P2Zero                uint16 = 0x0000
)

// Command is one incoming APDU, already stripped of its physical
// transport framing: the dispatcher upstream of this core is responsible
// for secure-messaging unwrap and for setting SecureMessaged.
type Command struct {
	INS            byte
	P1P2           uint16
	Data           []byte
	SecureMessaged bool
}

// Response is the outcome of dispatching a Command: a status word, an
// optional data field (e.g. Get Challenge's random bytes), and a
// human-readable reason for audit logging.
type Response struct {
	Status terrors.StatusWord
	Data   []byte
	Reason string
}

func ok(data []byte) Response {
	return Response{Status: terrors.SW9000, Data: data, Reason: "ok"}
}

func failure(err error) Response {
	return Response{Status: terrors.StatusWordFor(err), Reason: err.Error()}
}
