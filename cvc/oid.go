package cvc

// OID is a dotted-decimal object identifier, used both for
// cryptographic-mechanism references and for CHAT terminal-type tags.
type OID string

// Terminal-authentication mechanism OIDs (BSI TR-03110 Part 3, bsiTA arc
// 0.4.0.127.0.7.2.2.2). The TA core only needs to recognize these well
// enough to route to the right verifier and sector-hash algorithm; it
// never needs the full id-TA arc.
const (
	OIDTAECDSASHA1   OID = "0.4.0.127.0.7.2.2.2.2.1"
	OIDTAECDSASHA224 OID = "0.4.0.127.0.7.2.2.2.2.2"
	OIDTAECDSASHA256 OID = "0.4.0.127.0.7.2.2.2.2.3"
	OIDTAECDSASHA384 OID = "0.4.0.127.0.7.2.2.2.2.4"
	OIDTAECDSASHA512 OID = "0.4.0.127.0.7.2.2.2.2.5"

	OIDTARSAv1_5SHA1   OID = "0.4.0.127.0.7.2.2.2.1.1"
	OIDTARSAv1_5SHA256 OID = "0.4.0.127.0.7.2.2.2.1.2"
	OIDTAPSSSHA1       OID = "0.4.0.127.0.7.2.2.2.3.1"
	OIDTAPSSSHA256     OID = "0.4.0.127.0.7.2.2.2.3.2"

	// OIDTA identifies the TAInfo structure carried in EF.CardAccess /
	// EF.CardSecurity.
	OIDTA OID = "0.4.0.127.0.7.2.2.2"
)

// Terminal-type OIDs, the keys an AuthorizationStore is indexed by.
const (
	OIDTerminalAT OID = "0.4.0.127.0.7.3.1.2.2" // Authentication Terminal
	OIDTerminalIS OID = "0.4.0.127.0.7.3.1.2.1" // Inspection System
	OIDTerminalST OID = "0.4.0.127.0.7.3.1.2.3" // Signature Terminal
)

// IsECMechanism reports whether oid names an EC-based TA mechanism.
func IsECMechanism(oid OID) bool {
	switch oid {
	case OIDTAECDSASHA1, OIDTAECDSASHA224, OIDTAECDSASHA256, OIDTAECDSASHA384, OIDTAECDSASHA512:
		return true
	}
	return false
}

// IsRSAMechanism reports whether oid names an RSA-based TA mechanism.
func IsRSAMechanism(oid OID) bool {
	switch oid {
	case OIDTARSAv1_5SHA1, OIDTARSAv1_5SHA256, OIDTAPSSSHA1, OIDTAPSSSHA256:
		return true
	}
	return false
}
