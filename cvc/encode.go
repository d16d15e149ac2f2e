package cvc

import (
	"math/big"

	"github.com/cardsim/termauth/tlv"
)

// Marshal re-encodes c as PSO:Verify Certificate command data (sibling
// 7F4E/5F37 objects). It exists for test fixtures and for any component
// that needs to re-serialize a certificate it already holds parsed (e.g.
// to archive it); ParseCertificate is its inverse.
func Marshal(c *Certificate) []byte {
	body := marshalBody(c)
	out := tlv.Encode(TagCertificateBody, body)
	return append(out, tlv.Encode(TagCertificateSignature, c.SignatureBytes)...)
}

func marshalBody(c *Certificate) []byte {
	var body []byte
	body = append(body, tlv.Encode(tagProfileIdentifier, []byte{0x00})...)
	body = append(body, tlv.Encode(tagCAR, c.CAR)...)
	body = append(body, marshalPublicKey(c.PublicKey)...)
	body = append(body, tlv.Encode(tagCHR, c.CHR)...)
	body = append(body, marshalCHAT(c.CHAT)...)
	body = append(body, tlv.Encode(tagEffectiveDate, encodeDate(c.EffectiveDate))...)
	body = append(body, tlv.Encode(tagExpirationDate, encodeDate(c.ExpirationDate))...)
	if len(c.Extensions) > 0 {
		body = append(body, marshalExtensions(c.Extensions)...)
	}
	return body
}

func marshalPublicKey(pk PublicKey) []byte {
	oidBytes, err := encodeOID(pk.Mechanism)
	if err != nil {
		panic(err) // programmer error: caller built an invalid Mechanism OID
	}
	children := [][]byte{tlv.Encode(tagOID, oidBytes)}

	switch {
	case pk.EC != nil:
		if pk.EC.Domain != nil {
			d := pk.EC.Domain
			children = append(children,
				tlv.Encode(tagKeyPrimeModulus, d.P.Bytes()),
				tlv.Encode(tagKeyCoefficientA, d.A.Bytes()),
				tlv.Encode(tagKeyCoefficientB, d.B.Bytes()),
				tlv.Encode(tagKeyBasePoint, encodeECPoint(d.Gx, d.Gy)),
				tlv.Encode(tagKeyOrder, d.N.Bytes()),
			)
		}
		children = append(children, tlv.Encode(tagKeyPublicPoint, encodeECPoint(pk.EC.X, pk.EC.Y)))
		if pk.EC.Domain != nil {
			children = append(children, tlv.Encode(tagKeyCofactor, pk.EC.Domain.F.Bytes()))
		}
	case pk.RSA != nil:
		children = append(children,
			tlv.Encode(tagKeyPrimeModulus, pk.RSA.N.Bytes()),
			tlv.Encode(tagKeyCoefficientA, big.NewInt(int64(pk.RSA.E)).Bytes()),
		)
	}

	return tlv.EncodeConstructed(tagPublicKey, children...)
}

// encodeECPoint emits an uncompressed SEC1 point (0x04 || X || Y), with X
// and Y each padded to the width of the wider coordinate.
func encodeECPoint(x, y *big.Int) []byte {
	xb, yb := x.Bytes(), y.Bytes()
	width := len(xb)
	if len(yb) > width {
		width = len(yb)
	}
	out := make([]byte, 1+2*width)
	out[0] = 0x04
	copy(out[1+width-len(xb):1+width], xb)
	copy(out[1+2*width-len(yb):], yb)
	return out
}

func marshalCHAT(chat CHAT) []byte {
	oidBytes, err := encodeOID(chat.TerminalType)
	if err != nil {
		panic(err)
	}
	return tlv.EncodeConstructed(tagCHAT,
		tlv.Encode(tagOID, oidBytes),
		tlv.Encode(tagDiscretionaryData, chat.RelativeAuthorization),
	)
}

func marshalExtensions(exts []Extension) []byte {
	var entries [][]byte
	for _, ext := range exts {
		oidBytes, err := encodeOID(ext.OID)
		if err != nil {
			panic(err)
		}
		entries = append(entries, tlv.EncodeConstructed(tagExtensionEntry,
			append(tlv.Encode(tagOID, oidBytes), ext.Value...),
		))
	}
	return tlv.EncodeConstructed(tagExtensions, entries...)
}
