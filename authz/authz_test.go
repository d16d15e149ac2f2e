package authz

import (
	"testing"

	"github.com/cardsim/termauth/cvc"
	"github.com/stretchr/testify/require"
)

func TestNewFromCHAT(t *testing.T) {
	s := NewFromCHAT(cvc.CHAT{TerminalType: cvc.OIDTerminalAT, RelativeAuthorization: cvc.Bitfield{0xFF, 0x0F}})
	bits, ok := s.Get(cvc.OIDTerminalAT)
	require.True(t, ok)
	require.Equal(t, cvc.Bitfield{0xFF, 0x0F}, bits)
}

func TestUpdateNarrowsExisting(t *testing.T) {
	s := NewFromCHAT(cvc.CHAT{TerminalType: cvc.OIDTerminalAT, RelativeAuthorization: cvc.Bitfield{0xFF}})
	s.Update(map[cvc.OID]cvc.Bitfield{cvc.OIDTerminalAT: {0x0F}})
	bits, ok := s.Get(cvc.OIDTerminalAT)
	require.True(t, ok)
	require.Equal(t, cvc.Bitfield{0x0F}, bits)

	// bits can only ever clear, never set, across repeated narrowing.
	s.Update(map[cvc.OID]cvc.Bitfield{cvc.OIDTerminalAT: {0xFF}})
	bits, _ = s.Get(cvc.OIDTerminalAT)
	require.Equal(t, cvc.Bitfield{0x0F}, bits)
}

func TestUpdateAbsentOIDTreatedAsAllOnes(t *testing.T) {
	s := New()
	s.Update(map[cvc.OID]cvc.Bitfield{cvc.OIDTerminalIS: {0x3C}})
	bits, ok := s.Get(cvc.OIDTerminalIS)
	require.True(t, ok)
	require.Equal(t, cvc.Bitfield{0x3C}, bits)
}

func TestUpdateFromCertificate(t *testing.T) {
	s := New()
	cert := &cvc.Certificate{
		CHAT: cvc.CHAT{TerminalType: cvc.OIDTerminalST, RelativeAuthorization: cvc.Bitfield{0x80}},
	}
	s.UpdateFromCertificate(cert)
	bits, ok := s.Get(cvc.OIDTerminalST)
	require.True(t, ok)
	require.Equal(t, cvc.Bitfield{0x80}, bits)
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, ok := s.Get(cvc.OIDTerminalAT)
	require.False(t, ok)
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := NewFromCHAT(cvc.CHAT{TerminalType: cvc.OIDTerminalAT, RelativeAuthorization: cvc.Bitfield{0xFF}})
	snap := s.Snapshot()
	require.Equal(t, cvc.Bitfield{0xFF}, snap[cvc.OIDTerminalAT])

	s.Update(map[cvc.OID]cvc.Bitfield{cvc.OIDTerminalAT: {0x00}})
	require.Equal(t, cvc.Bitfield{0xFF}, snap[cvc.OIDTerminalAT], "snapshot must not see later updates")
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewFromCHAT(cvc.CHAT{TerminalType: cvc.OIDTerminalAT, RelativeAuthorization: cvc.Bitfield{0xFF}})
	clone := s.Clone()
	clone.Update(map[cvc.OID]cvc.Bitfield{cvc.OIDTerminalAT: {0x00}})

	original, _ := s.Get(cvc.OIDTerminalAT)
	cloned, _ := clone.Get(cvc.OIDTerminalAT)
	require.Equal(t, cvc.Bitfield{0xFF}, original)
	require.Equal(t, cvc.Bitfield{0x00}, cloned)
}
