package cvc

import "github.com/cardsim/termauth/tlv"

// Extension is one (OID, value) entry from a certificate's extensions
// container. The TA core only interprets the sector extension;
// all others are carried opaquely.
type Extension struct {
	OID   OID
	Value []byte
}

// SectorExtensionOID identifies the certificate extension carrying the
// first/second sector public key hashes.
const SectorExtensionOID OID = "0.4.0.127.0.7.3.2.1"

const (
	tagSectorHash1 tlv.Tag = 0x80
	tagSectorHash2 tlv.Tag = 0x81
)

// SectorHashes scans exts for the sector extension and returns its first
// and second sector public key hashes; either may be absent.
func SectorHashes(exts []Extension) (first, second []byte) {
	for _, ext := range exts {
		if ext.OID != SectorExtensionOID {
			continue
		}
		children, err := tlv.Decode(ext.Value)
		if err != nil {
			continue
		}
		if obj, ok := tlv.Find(children, tagSectorHash1); ok {
			first = obj.Value
		}
		if obj, ok := tlv.Find(children, tagSectorHash2); ok {
			second = obj.Value
		}
	}
	return first, second
}
