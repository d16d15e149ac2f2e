package cvc

import (
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/titanous/rocacheck"
)

// ECDomainParams holds an explicit set of EC domain parameters, as carried
// by a root (self-signed CVCA) certificate. Link and terminal certificates
// normally omit these and inherit them from their issuer via UpdateKey.
type ECDomainParams struct {
	P, A, B *big.Int
	Gx, Gy  *big.Int
	N       *big.Int
	F       *big.Int // cofactor
}

// ECPublicKey is the public-key value carried by an EC-mechanism
// certificate: always a public point, plus domain parameters that are
// either present (root certificates) or inherited (link/terminal
// certificates, resolved lazily by UpdateKey).
type ECPublicKey struct {
	Domain *ECDomainParams
	X, Y   *big.Int

	// curve is resolved from Domain the first time it's needed for
	// verification; see Curve().
	curve elliptic.Curve
}

// Curve returns the resolved elliptic.Curve for this key. Only the four
// NIST curves the standard library ships (P-224, P-256, P-384, P-521) are
// recognized, by field prime and group order; Brainpool and other a≠-3
// Weierstrass curves a CVC could in principle carry are not supported.
func (k *ECPublicKey) Curve() (elliptic.Curve, error) {
	if k.curve != nil {
		return k.curve, nil
	}
	if k.Domain == nil {
		return nil, fmt.Errorf("cvc: EC public key has no domain parameters; call UpdateKey first")
	}
	for _, c := range []elliptic.Curve{elliptic.P224(), elliptic.P256(), elliptic.P384(), elliptic.P521()} {
		if c.Params().P.Cmp(k.Domain.P) == 0 && c.Params().N.Cmp(k.Domain.N) == 0 {
			k.curve = c
			return c, nil
		}
	}
	return nil, fmt.Errorf("cvc: unrecognized EC domain parameters (not a supported NIST curve)")
}

// RSAPublicKey is the public-key value carried by an RSA-mechanism
// certificate.
type RSAPublicKey struct {
	N *big.Int
	E int
}

// IsROCAWeak reports whether k's modulus carries the fingerprint of
// keys generated by the Infineon RSALib affected by the ROCA
// vulnerability (CVE-2017-15361). A terminal certificate chain that
// bottoms out in such a key should be treated as NotUsable regardless of
// whether its signature otherwise verifies.
func (k *RSAPublicKey) IsROCAWeak() bool {
	return rocacheck.IsWeak(&rsa.PublicKey{N: k.N, E: k.E})
}

// PublicKey is the cryptographic-mechanism-tagged public key value carried
// by a certificate. Exactly one of EC or RSA is set.
type PublicKey struct {
	Mechanism OID
	EC        *ECPublicKey
	RSA       *RSAPublicKey
}

// UpdateKey resolves missing EC domain parameters by inheriting them from
// issuer, as required before verifying a link or terminal certificate
// whose own public-key object carries only the public point. It is a
// no-op for RSA keys and for EC keys that already carry domain
// parameters.
func (k *PublicKey) UpdateKey(issuer *PublicKey) error {
	if k.EC == nil {
		return nil
	}
	if k.EC.Domain != nil {
		return nil
	}
	if issuer == nil || issuer.EC == nil || issuer.EC.Domain == nil {
		return fmt.Errorf("cvc: cannot inherit EC domain parameters: issuer key carries none")
	}
	k.EC.Domain = issuer.EC.Domain
	return nil
}
