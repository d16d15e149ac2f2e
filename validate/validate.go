// Package validate holds the pure predicate functions governing CVC
// chain-link acceptance: role classification is owned by cvc itself
// (cvc.RoleOf), but issuer/candidate compatibility, the validity window,
// and the chip-date advance rule are protocol policy, not certificate
// structure, so they live here.
package validate

import "github.com/cardsim/termauth/cvc"

// IssuerCompatible reports whether issuer is an acceptable signer for a
// certificate of candidateRole: CVCA for CVCA/DV candidates, DV (either
// flavor) for terminal candidates.
func IssuerCompatible(issuerRole, candidateRole cvc.Role) bool {
	switch candidateRole {
	case cvc.RoleCVCA, cvc.RoleDVDomestic, cvc.RoleDVForeign:
		return issuerRole == cvc.RoleCVCA
	default: // RoleTerminal
		return issuerRole.IsDV()
	}
}

// ValidAt reports whether candidate, issued by issuer, is acceptable at
// chipDate:
//
//   - issuer CVCA, candidate CVCA: always valid (link certificates may be
//     imported even when the chain point is expired; chipDate is the
//     safety net enforced elsewhere).
//   - issuer CVCA, candidate DV or terminal: valid iff chipDate is on or
//     before both issuer's and candidate's expiration.
//   - otherwise: valid iff chipDate is on or before candidate's
//     expiration.
func ValidAt(issuer, candidate *cvc.Certificate, chipDate cvc.Date) bool {
	issuerRole := issuer.Role()
	candidateRole := candidate.Role()

	if issuerRole == cvc.RoleCVCA && candidateRole == cvc.RoleCVCA {
		return true
	}
	if issuerRole == cvc.RoleCVCA {
		return !chipDate.After(issuer.ExpirationDate) && !chipDate.After(candidate.ExpirationDate)
	}
	return !chipDate.After(candidate.ExpirationDate)
}

// AdvanceChipDate implements the chip-date advance rule: if chipDate
// precedes candidate's effective date, and candidate is a CVCA or a
// domestic DV, or issuer is a domestic DV, the chip date advances to
// candidate's effective date. It returns the (possibly unchanged) date.
func AdvanceChipDate(issuer, candidate *cvc.Certificate, chipDate cvc.Date) cvc.Date {
	if !chipDate.Before(candidate.EffectiveDate) {
		return chipDate
	}
	candidateRole := candidate.Role()
	issuerRole := issuer.Role()
	if candidateRole == cvc.RoleCVCA || candidateRole == cvc.RoleDVDomestic || issuerRole == cvc.RoleDVDomestic {
		return candidate.EffectiveDate
	}
	return chipDate
}
