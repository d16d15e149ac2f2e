package cvc

// Certificate is a parsed Card-Verifiable Certificate. Immutable once
// constructed by ParseCertificate.
type Certificate struct {
	BodyBytes      []byte
	SignatureBytes []byte

	CAR Reference
	CHR Reference

	PublicKey PublicKey
	CHAT      CHAT

	EffectiveDate  Date
	ExpirationDate Date

	Extensions []Extension
}

// Role returns the role this certificate was issued for.
func (c *Certificate) Role() Role {
	return c.CHAT.Role()
}

// SectorHashes returns this certificate's first and second sector public
// key hashes, if it carries a sector extension.
func (c *Certificate) SectorHashes() (first, second []byte) {
	return SectorHashes(c.Extensions)
}
