package cvc

// Role is a certificate's position in the CV certificate hierarchy, as
// encoded in the top two bits of its CHAT's relative authorization.
type Role int

const (
	RoleTerminal   Role = iota // terminal (authentication/inspection/signature)
	RoleDVDomestic             // DV_TYPE_1, domestic document verifier
	RoleDVForeign              // DV_TYPE_2, foreign document verifier
	RoleCVCA                   // country verifying CA
)

func (r Role) String() string {
	switch r {
	case RoleCVCA:
		return "CVCA"
	case RoleDVDomestic:
		return "DV_TYPE_1"
	case RoleDVForeign:
		return "DV_TYPE_2"
	default:
		return "TERMINAL"
	}
}

// IsDV reports whether r is either flavor of document verifier.
func (r Role) IsDV() bool { return r == RoleDVDomestic || r == RoleDVForeign }

// Bitfield is a fixed-length, big-endian relative-authorization value.
// Its bit length is carried alongside it (len(b)*8) since authorization
// store semantics are defined per OID over bitfields of a fixed width.
type Bitfield []byte

// And returns the bitwise AND of b and other. Operands must be the same
// length; callers are expected to only AND bitfields for the same OID,
// which are fixed-width by construction.
func (b Bitfield) And(other Bitfield) Bitfield {
	n := len(b)
	if len(other) < n {
		n = len(other)
	}
	out := make(Bitfield, n)
	for i := 0; i < n; i++ {
		out[i] = b[i] & other[i]
	}
	return out
}

// AllOnes returns a Bitfield of n bytes with every bit set, used as the
// implicit "unconstrained" value for an OID with no prior authorization.
func AllOnes(n int) Bitfield {
	out := make(Bitfield, n)
	for i := range out {
		out[i] = 0xFF
	}
	return out
}

// roleMask isolates the top two bits of the first byte of a relative
// authorization value, where TR-03110 encodes the certificate's role:
// 11 = CVCA, 01 = DV domestic, 10 = DV foreign, 00 = terminal.
const roleMask = 0xC0

// RoleOf derives a certificate's role from its CHAT's relative
// authorization bitfield.
func RoleOf(relativeAuthorization Bitfield) Role {
	if len(relativeAuthorization) == 0 {
		return RoleTerminal
	}
	switch relativeAuthorization[0] & roleMask {
	case 0xC0:
		return RoleCVCA
	case 0x40:
		return RoleDVDomestic
	case 0x80:
		return RoleDVForeign
	default:
		return RoleTerminal
	}
}

// CHAT is a Certificate Holder Authorization Template: the terminal-type
// OID a certificate is scoped to, plus the relative authorization
// bitfield that both encodes its role and, for terminals, the effective
// rights it's requesting.
type CHAT struct {
	TerminalType          OID
	RelativeAuthorization Bitfield
}

// Role returns the role encoded in the CHAT's relative authorization.
func (c CHAT) Role() Role {
	return RoleOf(c.RelativeAuthorization)
}
