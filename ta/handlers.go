package ta

import (
	"github.com/cardsim/termauth/authz"
	"github.com/cardsim/termauth/cvc"
	terrors "github.com/cardsim/termauth/errors"
	"github.com/cardsim/termauth/tlv"
	"github.com/cardsim/termauth/validate"
)

// resolvePACEMechanism enforces the "exactly one active PACE mechanism"
// invariant for Set DST. External Authenticate does not call it: it
// answers 6985 when no PACE mechanism is active and otherwise reads the
// first one.
func resolvePACEMechanism(sec SecurityStatus) (PACEMechanism, error) {
	mechanisms := sec.ActivePACEMechanisms()
	switch len(mechanisms) {
	case 0:
		return nil, terrors.SecurityStatusNotSatisfiedError("no active PACE mechanism")
	case 1:
		return mechanisms[0], nil
	default:
		return nil, terrors.ImplementationErrorError("more than one active PACE mechanism")
	}
}

// handleSetDST implements MSE:Set DST.
func (sm *StateMachine) handleSetDST(cmd Command) Response {
	objs, err := tlv.Decode(cmd.Data)
	if err != nil {
		return failure(terrors.MalformedDataError("Set DST: %s", err))
	}
	refObj, present := tlv.Find(objs, tagPublicKeyReference)
	if !present {
		return failure(terrors.MissingReferenceError("Set DST: tag 0x83 absent"))
	}
	ref := cvc.Reference(refObj.Value)

	pace, err := resolvePACEMechanism(sm.security)
	if err != nil {
		return failure(err)
	}
	terminalType := pace.TerminalTypeOID()

	sm.session.CurrentCertificate = nil

	if sm.session.MostRecentTemporaryCertificate != nil && sm.session.MostRecentTemporaryCertificate.CHR.Equal(ref) {
		sm.session.CurrentCertificate = sm.session.MostRecentTemporaryCertificate
		return ok(nil)
	}

	point, found := sm.trust.Get(terminalType)
	var adopted *cvc.Certificate
	switch {
	case found && point.Current != nil && point.Current.CHR.Equal(ref):
		adopted = point.Current
	case found && point.Previous != nil && point.Previous.CHR.Equal(ref):
		adopted = point.Previous
	default:
		return failure(terrors.MissingReferenceError("Set DST: no trust point anchor matches reference"))
	}
	sm.session.CurrentCertificate = adopted
	sm.session.TerminalType = terminalType

	if !sm.session.authorizationStoreInitialized {
		sm.session.AuthorizationStore = authz.NewFromCHAT(pace.ConfinedAuthorizationStore())
		sm.session.authorizationStoreInitialized = true
	}
	if _, present := sm.session.AuthorizationStore.Get(terminalType); !present {
		return failure(terrors.SecurityStatusNotSatisfiedError("Set DST: no confined authorization for terminal type %s", terminalType))
	}
	sm.session.AuthorizationStore.UpdateFromCertificate(adopted)

	return ok(nil)
}

// handlePSOVerifyCertificate implements PSO:Verify Certificate.
func (sm *StateMachine) handlePSOVerifyCertificate(cmd Command) Response {
	cert, err := cvc.ParseCertificate(cmd.Data)
	if err != nil {
		return failure(err)
	}

	anchor := sm.session.CurrentCertificate
	if err := cert.PublicKey.UpdateKey(&anchor.PublicKey); err != nil {
		return failure(terrors.NotUsableError("%s", err))
	}

	if cert.PublicKey.RSA != nil && cert.PublicKey.RSA.IsROCAWeak() {
		return failure(terrors.NotUsableError("PSO:Verify Certificate: public key modulus is ROCA-weak"))
	}

	if !cert.CAR.Equal(anchor.CHR) {
		return failure(terrors.MissingReferenceError("PSO:Verify Certificate: CAR does not match current DST"))
	}
	if !validate.IssuerCompatible(anchor.Role(), cert.Role()) {
		return failure(terrors.NotUsableError("PSO:Verify Certificate: issuer role %s cannot sign a %s certificate", anchor.Role(), cert.Role()))
	}
	if err := sm.verifier.Verify(anchor.PublicKey.Mechanism, anchor.PublicKey, cert.BodyBytes, cert.SignatureBytes); err != nil {
		return failure(terrors.NotUsableError("PSO:Verify Certificate: signature did not verify: %s", err))
	}
	if !validate.ValidAt(anchor, cert, sm.chipDate) {
		return failure(terrors.NotUsableError("PSO:Verify Certificate: outside chip-date validity window"))
	}
	sm.chipDate = validate.AdvanceChipDate(anchor, cert, sm.chipDate)

	if cert.Role() == cvc.RoleCVCA {
		if err := sm.trust.Rollover(cert.CHAT.TerminalType, cert); err != nil {
			return failure(terrors.ImplementationErrorError("PSO:Verify Certificate: trust-point rollover failed: %s", err))
		}
	} else {
		sm.session.MostRecentTemporaryCertificate = cert
		sm.session.CurrentCertificate = cert
	}
	sm.session.AuthorizationStore.UpdateFromCertificate(cert)

	return ok(nil)
}

// handleSetAT implements MSE:Set AT. It only validates and
// stages data into the session; it mutates no state outside it.
func (sm *StateMachine) handleSetAT(cmd Command) Response {
	objs, err := tlv.Decode(cmd.Data)
	if err != nil {
		return failure(terrors.MalformedDataError("Set AT: %s", err))
	}

	refObj, present := tlv.Find(objs, tagPublicKeyReference)
	if !present {
		return failure(terrors.MalformedDataError("Set AT: tag 0x83 absent"))
	}
	if !cvc.Reference(refObj.Value).Equal(sm.session.CurrentCertificate.CHR) {
		return failure(terrors.MissingReferenceError("Set AT: key reference does not match current DST"))
	}

	mechObj, found := tlv.Find(objs, tagMechanism)
	if !found {
		return failure(terrors.MalformedDataError("Set AT: tag 0x80 absent"))
	}
	mechanism, err := cvc.DecodeOID(mechObj.Value)
	if err != nil || !(cvc.IsECMechanism(mechanism) || cvc.IsRSAMechanism(mechanism)) {
		return failure(terrors.MalformedDataError("Set AT: tag 0x80 is not a valid TA mechanism OID"))
	}

	ephemeralObj, found := tlv.Find(objs, tagEphemeralPublicKey)
	if !found {
		return failure(terrors.MalformedDataError("Set AT: tag 0x91 absent"))
	}

	var auxData []AuxDatum
	if auxObj, found := tlv.Find(objs, tagAuxiliaryData); found {
		entries, err := tlv.Children(auxObj)
		if err != nil {
			return failure(terrors.MalformedDataError("Set AT: tag 0x67 container: %s", err))
		}
		for _, entry := range tlv.FindAll(entries, tagAuxiliaryDatum) {
			children, err := tlv.Children(entry)
			if err != nil {
				return failure(terrors.MalformedDataError("Set AT: auxiliary datum: %s", err))
			}
			oidObj, found := tlv.Find(children, tagOID)
			if !found {
				return failure(terrors.MalformedDataError("Set AT: auxiliary datum missing OID"))
			}
			oid, err := cvc.DecodeOID(oidObj.Value)
			if err != nil {
				return failure(terrors.MalformedDataError("Set AT: auxiliary datum: %s", err))
			}
			dataObj, _ := tlv.Find(children, tagDiscretionaryData)
			auxData = append(auxData, AuxDatum{OID: oid, Value: dataObj.Value, Raw: entry.Raw})
		}
	}

	sm.session.CryptographicMechanismReference = mechanism
	sm.session.CompressedTerminalEphemeralPublicKey = ephemeralObj.Value
	sm.session.AuxiliaryData = auxData

	return ok(nil)
}

// handleGetChallenge implements Get Challenge.
func (sm *StateMachine) handleGetChallenge(cmd Command) Response {
	challenge := make([]byte, 8)
	if _, err := sm.rand.Read(challenge); err != nil {
		return failure(terrors.ImplementationErrorError("Get Challenge: random source failed: %s", err))
	}
	sm.session.Challenge = challenge
	return ok(challenge)
}

// handleExternalAuthenticate implements External Authenticate.
func (sm *StateMachine) handleExternalAuthenticate(cmd Command) Response {
	if sm.session.Challenge == nil {
		return failure(terrors.ConditionsNotSatisfiedError("External Authenticate: no challenge outstanding"))
	}
	if sm.security.HasTerminalAuthenticationMechanism() {
		return failure(terrors.SecurityStatusNotSatisfiedError("External Authenticate: a TerminalAuthenticationMechanism already exists"))
	}

	mechanisms := sm.security.ActivePACEMechanisms()
	if len(mechanisms) == 0 {
		return failure(terrors.ConditionsNotSatisfiedError("External Authenticate: no active PACE mechanism"))
	}
	idIcc := mechanisms[0].CompressedEphemeralChipPublicKey()

	dataToVerify := append([]byte{}, idIcc...)
	dataToVerify = append(dataToVerify, sm.session.Challenge...)
	dataToVerify = append(dataToVerify, sm.session.CompressedTerminalEphemeralPublicKey...)
	if len(sm.session.AuxiliaryData) > 0 {
		raws := make([][]byte, len(sm.session.AuxiliaryData))
		for i, a := range sm.session.AuxiliaryData {
			raws[i] = a.Raw
		}
		dataToVerify = append(dataToVerify, tlv.EncodeConstructed(tagAuxiliaryData, raws...)...)
	}

	anchor := sm.session.CurrentCertificate
	if err := sm.verifier.Verify(sm.session.CryptographicMechanismReference, anchor.PublicKey, dataToVerify, cmd.Data); err != nil {
		return failure(err)
	}

	first, second := anchor.SectorHashes()
	sm.session.FirstSectorPublicKeyHash = first
	sm.session.SecondSectorPublicKeyHash = second

	sm.security.PublishTerminalAuthentication(TerminalAuthenticationMechanism{
		CompressedTerminalEphemeralPublicKey: sm.session.CompressedTerminalEphemeralPublicKey,
		TerminalType:                         sm.session.TerminalType,
		AuxiliaryData:                        sm.session.AuxiliaryData,
		FirstSectorPublicKeyHash:             first,
		SecondSectorPublicKeyHash:            second,
		HashAlgorithm:                        sm.session.CryptographicMechanismReference,
		CertificateExtensions:                anchor.Extensions,
	})
	sm.security.PublishEffectiveAuthorization(EffectiveAuthorizationMechanism{
		Bits: sm.session.AuthorizationStore.Snapshot(),
	})

	return ok(nil)
}
