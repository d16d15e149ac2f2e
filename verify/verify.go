// Package verify implements the cryptographic verifier collaborator the
// TA core calls at certificate-chain links and at External
// Authenticate. It accepts RSA signatures as-is and reshapes raw EC
// r||s signatures into an ASN.1 SEQUENCE before handing them to
// crypto/ecdsa.
package verify

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	casn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/cardsim/termauth/cvc"
	terrors "github.com/cardsim/termauth/errors"
)

// Verifier checks a signature made by the named mechanism, over message,
// under pubKey. It returns nil on success, an AuthenticationFailed-kind
// error if the signature doesn't verify, or an ImplementationError-kind
// error for any other cryptographic failure (unrecognized mechanism,
// malformed key, malformed signature encoding).
type Verifier interface {
	Verify(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error
}

// StdVerifier is the default Verifier, backed directly by crypto/ecdsa
// and crypto/rsa.
type StdVerifier struct{}

var _ Verifier = StdVerifier{}

func (StdVerifier) Verify(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error {
	h, err := hashFor(mechanism)
	if err != nil {
		return terrors.ImplementationErrorError("%s", err)
	}
	digest, err := hashMessage(h, message)
	if err != nil {
		return terrors.ImplementationErrorError("%s", err)
	}

	switch {
	case cvc.IsECMechanism(mechanism):
		return verifyEC(pubKey, digest, signature)
	case cvc.IsRSAMechanism(mechanism):
		return verifyRSA(mechanism, h, pubKey, digest, signature)
	default:
		return terrors.ImplementationErrorError("unsupported verification mechanism %s", mechanism)
	}
}

func verifyEC(pubKey cvc.PublicKey, digest, signature []byte) error {
	if pubKey.EC == nil {
		return terrors.ImplementationErrorError("EC mechanism requires an EC public key")
	}
	curve, err := pubKey.EC.Curve()
	if err != nil {
		return terrors.ImplementationErrorError("%s", err)
	}
	asn1Sig, err := reshapeRawECSignature(signature)
	if err != nil {
		return terrors.ImplementationErrorError("%s", err)
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: pubKey.EC.X, Y: pubKey.EC.Y}
	if !ecdsa.VerifyASN1(pub, digest, asn1Sig) {
		return terrors.AuthenticationFailedError("EC signature did not verify")
	}
	return nil
}

func verifyRSA(mechanism cvc.OID, h crypto.Hash, pubKey cvc.PublicKey, digest, signature []byte) error {
	if pubKey.RSA == nil {
		return terrors.ImplementationErrorError("RSA mechanism requires an RSA public key")
	}
	pub := &rsa.PublicKey{N: pubKey.RSA.N, E: pubKey.RSA.E}

	var err error
	if isPSSMechanism(mechanism) {
		err = rsa.VerifyPSS(pub, h, digest, signature, nil)
	} else {
		err = rsa.VerifyPKCS1v15(pub, h, digest, signature)
	}
	if err != nil {
		return terrors.AuthenticationFailedError("RSA signature did not verify: %s", err)
	}
	return nil
}

func isPSSMechanism(mechanism cvc.OID) bool {
	return mechanism == cvc.OIDTAPSSSHA1 || mechanism == cvc.OIDTAPSSSHA256
}

// reshapeRawECSignature converts the raw r||s concatenation TR-03110
// carries into the ASN.1 SEQUENCE{INTEGER r, INTEGER s} crypto/ecdsa
// expects. r and s are equal-width halves of raw.
func reshapeRawECSignature(raw []byte) ([]byte, error) {
	if len(raw)%2 != 0 || len(raw) == 0 {
		return nil, fmt.Errorf("raw EC signature must be a nonzero even number of bytes, got %d", len(raw))
	}
	half := len(raw) / 2
	r := new(big.Int).SetBytes(raw[:half])
	s := new(big.Int).SetBytes(raw[half:])

	var b cryptobyte.Builder
	b.AddASN1(casn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

func hashFor(mechanism cvc.OID) (crypto.Hash, error) {
	switch mechanism {
	case cvc.OIDTAECDSASHA1, cvc.OIDTARSAv1_5SHA1, cvc.OIDTAPSSSHA1:
		return crypto.SHA1, nil
	case cvc.OIDTAECDSASHA224:
		return crypto.SHA224, nil
	case cvc.OIDTAECDSASHA256, cvc.OIDTARSAv1_5SHA256, cvc.OIDTAPSSSHA256:
		return crypto.SHA256, nil
	case cvc.OIDTAECDSASHA384:
		return crypto.SHA384, nil
	case cvc.OIDTAECDSASHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("no hash algorithm known for mechanism %s", mechanism)
	}
}

func hashMessage(h crypto.Hash, message []byte) ([]byte, error) {
	switch h {
	case crypto.SHA1:
		sum := sha1.Sum(message)
		return sum[:], nil
	case crypto.SHA224:
		sum := sha256.Sum224(message)
		return sum[:], nil
	case crypto.SHA256:
		sum := sha256.Sum256(message)
		return sum[:], nil
	case crypto.SHA384:
		sum := sha512.Sum384(message)
		return sum[:], nil
	case crypto.SHA512:
		sum := sha512.Sum512(message)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash %v", h)
	}
}
