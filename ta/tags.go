package ta

import "github.com/cardsim/termauth/tlv"

// Command-data tags used by MSE:Set DST, MSE:Set AT, and External
// Authenticate. The certificate-body tags
// (7F4E, 5F37) belong to cvc, not here: PSO:Verify Certificate's data is
// handed to cvc.ParseCertificate directly.
const (
	tagOID                tlv.Tag = 0x06
	tagDiscretionaryData  tlv.Tag = 0x53
	tagPublicKeyReference tlv.Tag = 0x83
	tagMechanism          tlv.Tag = 0x80
	tagAuxiliaryData      tlv.Tag = 0x67
	tagAuxiliaryDatum     tlv.Tag = 0x73
	tagEphemeralPublicKey tlv.Tag = 0x91
)
