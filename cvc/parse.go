package cvc

import (
	"math/big"

	"github.com/cardsim/termauth/errors"
	"github.com/cardsim/termauth/tlv"
)

// ParseCertificate parses the command data of a PSO:Verify Certificate
// APDU: two sibling TLV objects, the certificate body (7F4E) and its
// signature (5F37). certificateBodyBytes is exactly the
// 7F4E value, the bytes the signature in 5F37 was computed over.
func ParseCertificate(commandData []byte) (*Certificate, error) {
	top, err := tlv.Decode(commandData)
	if err != nil {
		return nil, errors.MalformedDataError("certificate command data: %s", err)
	}

	bodyObj, ok := tlv.Find(top, TagCertificateBody)
	if !ok {
		return nil, errors.MissingReferenceError("certificate body (7F4E) missing")
	}
	sigObj, ok := tlv.Find(top, TagCertificateSignature)
	if !ok {
		return nil, errors.MissingReferenceError("certificate signature (5F37) missing")
	}

	body, err := tlv.Children(bodyObj)
	if err != nil {
		return nil, errors.MalformedDataError("certificate body: %s", err)
	}

	cert := &Certificate{
		BodyBytes:      bodyObj.Value,
		SignatureBytes: sigObj.Value,
	}

	carObj, ok := tlv.Find(body, tagCAR)
	if !ok {
		return nil, errors.MissingReferenceError("certificate authority reference (42) missing")
	}
	cert.CAR = Reference(carObj.Value)

	chrObj, ok := tlv.Find(body, tagCHR)
	if !ok {
		return nil, errors.MissingReferenceError("certificate holder reference (5F20) missing")
	}
	cert.CHR = Reference(chrObj.Value)

	pkObj, ok := tlv.Find(body, tagPublicKey)
	if !ok {
		return nil, errors.MissingReferenceError("public key (7F49) missing")
	}
	pk, err := parsePublicKey(pkObj)
	if err != nil {
		return nil, err
	}
	cert.PublicKey = pk

	chatObj, ok := tlv.Find(body, tagCHAT)
	if !ok {
		return nil, errors.MissingReferenceError("CHAT (7F4C) missing")
	}
	chat, err := parseCHAT(chatObj)
	if err != nil {
		return nil, err
	}
	cert.CHAT = chat

	effObj, ok := tlv.Find(body, tagEffectiveDate)
	if !ok {
		return nil, errors.MissingReferenceError("effective date (5F25) missing")
	}
	effDate, err := decodeDate(effObj.Value)
	if err != nil {
		return nil, errors.MalformedDataError("effective date: %s", err)
	}
	cert.EffectiveDate = effDate

	expObj, ok := tlv.Find(body, tagExpirationDate)
	if !ok {
		return nil, errors.MissingReferenceError("expiration date (5F24) missing")
	}
	expDate, err := decodeDate(expObj.Value)
	if err != nil {
		return nil, errors.MalformedDataError("expiration date: %s", err)
	}
	cert.ExpirationDate = expDate

	if extObj, ok := tlv.Find(body, tagExtensions); ok {
		exts, err := parseExtensions(extObj)
		if err != nil {
			return nil, err
		}
		cert.Extensions = exts
	}

	return cert, nil
}

func parsePublicKey(pkObj tlv.Object) (PublicKey, error) {
	children, err := tlv.Children(pkObj)
	if err != nil {
		return PublicKey{}, errors.MalformedDataError("public key: %s", err)
	}
	oidObj, ok := tlv.Find(children, tagOID)
	if !ok {
		return PublicKey{}, errors.MissingReferenceError("public key mechanism OID (06) missing")
	}
	mechanism, err := decodeOID(oidObj.Value)
	if err != nil {
		return PublicKey{}, errors.MalformedDataError("public key mechanism OID: %s", err)
	}

	pk := PublicKey{Mechanism: mechanism}

	switch {
	case IsECMechanism(mechanism):
		pointObj, ok := tlv.Find(children, tagKeyPublicPoint)
		if !ok {
			return PublicKey{}, errors.MissingReferenceError("EC public key point (86) missing")
		}
		x, y, err := decodeECPoint(pointObj.Value)
		if err != nil {
			return PublicKey{}, errors.MalformedDataError("EC public key point: %s", err)
		}
		ec := &ECPublicKey{X: x, Y: y}

		if pObj, ok := tlv.Find(children, tagKeyPrimeModulus); ok {
			// Full domain parameters present: this is a root certificate's
			// public key, not one that needs to inherit from its issuer.
			aObj, _ := tlv.Find(children, tagKeyCoefficientA)
			bObj, _ := tlv.Find(children, tagKeyCoefficientB)
			gObj, ok := tlv.Find(children, tagKeyBasePoint)
			if !ok {
				return PublicKey{}, errors.MissingReferenceError("EC base point (84) missing")
			}
			gx, gy, err := decodeECPoint(gObj.Value)
			if err != nil {
				return PublicKey{}, errors.MalformedDataError("EC base point: %s", err)
			}
			nObj, ok := tlv.Find(children, tagKeyOrder)
			if !ok {
				return PublicKey{}, errors.MissingReferenceError("EC order (85) missing")
			}
			fObj, _ := tlv.Find(children, tagKeyCofactor)
			f := big.NewInt(1)
			if fObj.Value != nil {
				f = new(big.Int).SetBytes(fObj.Value)
			}
			ec.Domain = &ECDomainParams{
				P:  new(big.Int).SetBytes(pObj.Value),
				A:  new(big.Int).SetBytes(aObj.Value),
				B:  new(big.Int).SetBytes(bObj.Value),
				Gx: gx,
				Gy: gy,
				N:  new(big.Int).SetBytes(nObj.Value),
				F:  f,
			}
		}
		pk.EC = ec

	case IsRSAMechanism(mechanism):
		nObj, ok := tlv.Find(children, tagKeyPrimeModulus)
		if !ok {
			return PublicKey{}, errors.MissingReferenceError("RSA modulus (81) missing")
		}
		eObj, ok := tlv.Find(children, tagKeyCoefficientA)
		if !ok {
			return PublicKey{}, errors.MissingReferenceError("RSA exponent (82) missing")
		}
		pk.RSA = &RSAPublicKey{
			N: new(big.Int).SetBytes(nObj.Value),
			E: int(new(big.Int).SetBytes(eObj.Value).Int64()),
		}

	default:
		return PublicKey{}, errors.MalformedDataError("unrecognized public key mechanism OID %s", mechanism)
	}

	return pk, nil
}

// decodeECPoint decodes an uncompressed SEC1 EC point (0x04 || X || Y).
func decodeECPoint(raw []byte) (x, y *big.Int, err error) {
	if len(raw) < 3 || raw[0] != 0x04 {
		return nil, nil, errors.MalformedDataError("EC point must be uncompressed (leading 0x04)")
	}
	coord := (len(raw) - 1) / 2
	x = new(big.Int).SetBytes(raw[1 : 1+coord])
	y = new(big.Int).SetBytes(raw[1+coord:])
	return x, y, nil
}

func parseCHAT(chatObj tlv.Object) (CHAT, error) {
	children, err := tlv.Children(chatObj)
	if err != nil {
		return CHAT{}, errors.MalformedDataError("CHAT: %s", err)
	}
	oidObj, ok := tlv.Find(children, tagOID)
	if !ok {
		return CHAT{}, errors.MissingReferenceError("CHAT terminal type OID (06) missing")
	}
	terminalType, err := decodeOID(oidObj.Value)
	if err != nil {
		return CHAT{}, errors.MalformedDataError("CHAT terminal type OID: %s", err)
	}
	authObj, ok := tlv.Find(children, tagDiscretionaryData)
	if !ok {
		return CHAT{}, errors.MissingReferenceError("CHAT relative authorization (53) missing")
	}
	return CHAT{
		TerminalType:          terminalType,
		RelativeAuthorization: Bitfield(authObj.Value),
	}, nil
}

func parseExtensions(extObj tlv.Object) ([]Extension, error) {
	entries, err := tlv.Children(extObj)
	if err != nil {
		return nil, errors.MalformedDataError("extensions: %s", err)
	}
	var out []Extension
	for _, entry := range tlv.FindAll(entries, tagExtensionEntry) {
		fields, err := tlv.Children(entry)
		if err != nil {
			return nil, errors.MalformedDataError("extension entry: %s", err)
		}
		oidObj, ok := tlv.Find(fields, tagOID)
		if !ok {
			return nil, errors.MissingReferenceError("extension OID (06) missing")
		}
		oid, err := decodeOID(oidObj.Value)
		if err != nil {
			return nil, errors.MalformedDataError("extension OID: %s", err)
		}
		// The remaining fields (e.g. sector hashes under 80/81) are kept
		// re-encoded so SectorHashes can re-decode them on demand.
		var rest []byte
		for _, f := range fields {
			if f.Tag == tagOID {
				continue
			}
			rest = append(rest, f.Raw...)
		}
		out = append(out, Extension{OID: oid, Value: rest})
	}
	return out, nil
}
