package validate

import (
	"testing"

	"github.com/cardsim/termauth/cvc"
	"github.com/stretchr/testify/require"
)

func certWithRole(role cvc.Role, effective, expiration cvc.Date) *cvc.Certificate {
	var bits cvc.Bitfield
	switch role {
	case cvc.RoleCVCA:
		bits = cvc.Bitfield{0xC0}
	case cvc.RoleDVDomestic:
		bits = cvc.Bitfield{0x40}
	case cvc.RoleDVForeign:
		bits = cvc.Bitfield{0x80}
	default:
		bits = cvc.Bitfield{0x00}
	}
	return &cvc.Certificate{
		CHAT:           cvc.CHAT{RelativeAuthorization: bits},
		EffectiveDate:  effective,
		ExpirationDate: expiration,
	}
}

func TestIssuerCompatible(t *testing.T) {
	require.True(t, IssuerCompatible(cvc.RoleCVCA, cvc.RoleCVCA))
	require.True(t, IssuerCompatible(cvc.RoleCVCA, cvc.RoleDVDomestic))
	require.True(t, IssuerCompatible(cvc.RoleCVCA, cvc.RoleDVForeign))
	require.False(t, IssuerCompatible(cvc.RoleDVDomestic, cvc.RoleCVCA))
	require.True(t, IssuerCompatible(cvc.RoleDVDomestic, cvc.RoleTerminal))
	require.True(t, IssuerCompatible(cvc.RoleDVForeign, cvc.RoleTerminal))
	require.False(t, IssuerCompatible(cvc.RoleCVCA, cvc.RoleTerminal))
	require.False(t, IssuerCompatible(cvc.RoleTerminal, cvc.RoleTerminal))
}

func TestValidAtCVCALinkAlwaysValid(t *testing.T) {
	issuer := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2000, Month: 1, Day: 1}, cvc.Date{Year: 2001, Month: 1, Day: 1})
	candidate := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2000, Month: 1, Day: 1}, cvc.Date{Year: 2001, Month: 1, Day: 1})
	require.True(t, ValidAt(issuer, candidate, cvc.Date{Year: 2099, Month: 1, Day: 1}))
}

func TestValidAtCVCAIssuingDVRequiresBothUnexpired(t *testing.T) {
	issuer := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2000, Month: 1, Day: 1}, cvc.Date{Year: 2024, Month: 6, Day: 1})
	candidate := certWithRole(cvc.RoleDVDomestic, cvc.Date{Year: 2024, Month: 1, Day: 1}, cvc.Date{Year: 2024, Month: 12, Day: 1})

	require.True(t, ValidAt(issuer, candidate, cvc.Date{Year: 2024, Month: 3, Day: 1}))
	require.False(t, ValidAt(issuer, candidate, cvc.Date{Year: 2024, Month: 7, Day: 1})) // issuer expired
}

func TestValidAtInclusiveUpperBound(t *testing.T) {
	issuer := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2000, Month: 1, Day: 1}, cvc.Date{Year: 2024, Month: 6, Day: 1})
	candidate := certWithRole(cvc.RoleDVDomestic, cvc.Date{Year: 2024, Month: 1, Day: 1}, cvc.Date{Year: 2024, Month: 6, Day: 1})
	require.True(t, ValidAt(issuer, candidate, cvc.Date{Year: 2024, Month: 6, Day: 1}))
	require.True(t, ValidAt(issuer, candidate, candidate.ExpirationDate))
}

func TestValidAtDVIssuingTerminal(t *testing.T) {
	issuer := certWithRole(cvc.RoleDVDomestic, cvc.Date{Year: 2000, Month: 1, Day: 1}, cvc.Date{Year: 2020, Month: 1, Day: 1}) // expired issuer
	candidate := certWithRole(cvc.RoleTerminal, cvc.Date{Year: 2024, Month: 1, Day: 1}, cvc.Date{Year: 2024, Month: 12, Day: 1})
	require.True(t, ValidAt(issuer, candidate, cvc.Date{Year: 2024, Month: 6, Day: 1}))
	require.False(t, ValidAt(issuer, candidate, cvc.Date{Year: 2025, Month: 1, Day: 1}))
}

func TestAdvanceChipDate(t *testing.T) {
	cvca := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2024, Month: 6, Day: 1}, cvc.Date{Year: 2030, Month: 1, Day: 1})
	dvDomestic := certWithRole(cvc.RoleDVDomestic, cvc.Date{Year: 2024, Month: 6, Day: 1}, cvc.Date{Year: 2030, Month: 1, Day: 1})
	dvForeign := certWithRole(cvc.RoleDVForeign, cvc.Date{Year: 2024, Month: 6, Day: 1}, cvc.Date{Year: 2030, Month: 1, Day: 1})
	terminal := certWithRole(cvc.RoleTerminal, cvc.Date{Year: 2024, Month: 6, Day: 1}, cvc.Date{Year: 2030, Month: 1, Day: 1})

	chipDate := cvc.Date{Year: 2024, Month: 1, Day: 1}

	require.Equal(t, cvca.EffectiveDate, AdvanceChipDate(cvca, cvca, chipDate))
	require.Equal(t, dvDomestic.EffectiveDate, AdvanceChipDate(cvca, dvDomestic, chipDate))
	require.Equal(t, dvDomestic.EffectiveDate, AdvanceChipDate(dvDomestic, terminal, chipDate))
	require.Equal(t, chipDate, AdvanceChipDate(dvForeign, terminal, chipDate))
}

func TestAdvanceChipDateNoopWhenNotBefore(t *testing.T) {
	candidate := certWithRole(cvc.RoleCVCA, cvc.Date{Year: 2020, Month: 1, Day: 1}, cvc.Date{Year: 2030, Month: 1, Day: 1})
	chipDate := cvc.Date{Year: 2024, Month: 1, Day: 1}
	require.Equal(t, chipDate, AdvanceChipDate(candidate, candidate, chipDate))
}
