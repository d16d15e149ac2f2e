package cvc

import "github.com/cardsim/termauth/tlv"

// TLV tags used within a certificate body and its nested objects, as
// defined by TR-03110 Part 3.
const (
	TagCertificateBody      tlv.Tag = 0x7F4E
	TagCertificateSignature tlv.Tag = 0x5F37
	tagProfileIdentifier    tlv.Tag = 0x5F29
	tagCAR                  tlv.Tag = 0x42
	tagPublicKey            tlv.Tag = 0x7F49
	tagCHR                  tlv.Tag = 0x5F20
	tagCHAT                 tlv.Tag = 0x7F4C
	tagEffectiveDate        tlv.Tag = 0x5F25
	tagExpirationDate       tlv.Tag = 0x5F24
	tagExtensions           tlv.Tag = 0x65
	tagExtensionEntry       tlv.Tag = 0x73
	tagOID                  tlv.Tag = 0x06
	tagDiscretionaryData    tlv.Tag = 0x53

	// Public-key value tags, TR-03110 Part 3 table for EC/RSA public keys.
	tagKeyPrimeModulus tlv.Tag = 0x81 // EC: p; RSA: modulus n
	tagKeyCoefficientA tlv.Tag = 0x82 // EC: a; RSA: exponent e
	tagKeyCoefficientB tlv.Tag = 0x83 // EC: b
	tagKeyBasePoint    tlv.Tag = 0x84 // EC: base point G
	tagKeyOrder        tlv.Tag = 0x85 // EC: order r
	tagKeyPublicPoint  tlv.Tag = 0x86 // EC: public point Y
	tagKeyCofactor     tlv.Tag = 0x87 // EC: cofactor f
)
