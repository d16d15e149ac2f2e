package verify

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"testing"

	"github.com/cardsim/termauth/cvc"
	"github.com/stretchr/testify/require"
)

func ecPublicKey(priv *ecdsa.PrivateKey) cvc.PublicKey {
	params := priv.Curve.Params()
	return cvc.PublicKey{
		Mechanism: cvc.OIDTAECDSASHA256,
		EC: &cvc.ECPublicKey{
			Domain: &cvc.ECDomainParams{P: params.P, N: params.N},
			X:      priv.PublicKey.X,
			Y:      priv.PublicKey.Y,
		},
	}
}

func rawECSignature(t *testing.T, priv *ecdsa.PrivateKey, digest []byte) []byte {
	t.Helper()
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest)
	require.NoError(t, err)
	size := (priv.Curve.Params().BitSize + 7) / 8
	out := make([]byte, 2*size)
	rBytes, sBytes := r.Bytes(), s.Bytes()
	copy(out[size-len(rBytes):size], rBytes)
	copy(out[2*size-len(sBytes):], sBytes)
	return out
}

func TestStdVerifierECSuccess(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub := ecPublicKey(priv)

	message := []byte("hello terminal")
	digest := sha256.Sum256(message)
	sig := rawECSignature(t, priv, digest[:])

	v := StdVerifier{}
	require.NoError(t, v.Verify(cvc.OIDTAECDSASHA256, pub, message, sig))
}

func TestStdVerifierECBadSignature(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	pub := ecPublicKey(priv)

	message := []byte("hello terminal")
	digest := sha256.Sum256(message)
	sig := rawECSignature(t, priv, digest[:])
	sig[0] ^= 0xFF

	v := StdVerifier{}
	err = v.Verify(cvc.OIDTAECDSASHA256, pub, message, sig)
	require.Error(t, err)
}

func TestStdVerifierRSASuccess(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	message := []byte("hello terminal")
	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	require.NoError(t, err)

	pub := cvc.PublicKey{
		Mechanism: cvc.OIDTARSAv1_5SHA256,
		RSA:       &cvc.RSAPublicKey{N: priv.PublicKey.N, E: priv.PublicKey.E},
	}
	v := StdVerifier{}
	require.NoError(t, v.Verify(cvc.OIDTARSAv1_5SHA256, pub, message, sig))
}

func TestStdVerifierRSABadSignature(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pub := cvc.PublicKey{
		Mechanism: cvc.OIDTARSAv1_5SHA256,
		RSA:       &cvc.RSAPublicKey{N: priv.PublicKey.N, E: priv.PublicKey.E},
	}
	v := StdVerifier{}
	err = v.Verify(cvc.OIDTARSAv1_5SHA256, pub, []byte("hello"), []byte("not-a-signature"))
	require.Error(t, err)
}

func TestStdVerifierUnsupportedMechanism(t *testing.T) {
	v := StdVerifier{}
	err := v.Verify("9.9.9", cvc.PublicKey{}, []byte("x"), []byte("y"))
	require.Error(t, err)
}

func TestCachingVerifierCachesOutcome(t *testing.T) {
	calls := 0
	inner := verifierFunc(func(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error {
		calls++
		return nil
	})
	cv := NewCachingVerifier(inner, 10)

	for i := 0; i < 3; i++ {
		require.NoError(t, cv.Verify(cvc.OIDTAECDSASHA256, cvc.PublicKey{}, []byte("m"), []byte("s")))
	}
	require.Equal(t, 1, calls)
}

func TestCachingVerifierDistinctInputsMiss(t *testing.T) {
	calls := 0
	inner := verifierFunc(func(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error {
		calls++
		return nil
	})
	cv := NewCachingVerifier(inner, 10)

	require.NoError(t, cv.Verify(cvc.OIDTAECDSASHA256, cvc.PublicKey{}, []byte("m1"), []byte("s")))
	require.NoError(t, cv.Verify(cvc.OIDTAECDSASHA256, cvc.PublicKey{}, []byte("m2"), []byte("s")))
	require.Equal(t, 2, calls)
}

type verifierFunc func(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error

func (f verifierFunc) Verify(mechanism cvc.OID, pubKey cvc.PublicKey, message, signature []byte) error {
	return f(mechanism, pubKey, message, signature)
}
