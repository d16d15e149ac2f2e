package errors

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatusWordMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want StatusWord
	}{
		{NotSecureMessaged, SW6982},
		{WrongAPDUType, SW6FFF},
		{MissingReference, SW6A88},
		{MalformedData, SW6A80},
		{NotUsable, SW6984},
		{AuthenticationFailed, SW6300},
		{ConditionsNotSatisfied, SW6985},
		{SecurityStatusNotSatisfied, SW6982},
		{ImplementationError, SW6FFF},
	}
	for _, c := range cases {
		err := New(c.kind, "boom")
		ta, ok := err.(*TAError)
		require.True(t, ok)
		require.Equal(t, c.want, ta.StatusWord())
		require.Equal(t, c.want, StatusWordFor(err))
		require.True(t, Is(err, c.kind))
	}
}

func TestStatusWordForNilAndForeign(t *testing.T) {
	require.Equal(t, SW9000, StatusWordFor(nil))
	require.Equal(t, SW6FFF, StatusWordFor(errDummy{}))
}

type errDummy struct{}

func (errDummy) Error() string { return "dummy" }

func TestConstructors(t *testing.T) {
	require.True(t, Is(NotSecureMessagedError("x"), NotSecureMessaged))
	require.True(t, Is(WrongAPDUTypeError("x"), WrongAPDUType))
	require.True(t, Is(MissingReferenceError("x"), MissingReference))
	require.True(t, Is(MalformedDataError("x"), MalformedData))
	require.True(t, Is(NotUsableError("x"), NotUsable))
	require.True(t, Is(AuthenticationFailedError("x"), AuthenticationFailed))
	require.True(t, Is(ConditionsNotSatisfiedError("x"), ConditionsNotSatisfied))
	require.True(t, Is(SecurityStatusNotSatisfiedError("x"), SecurityStatusNotSatisfied))
	require.True(t, Is(ImplementationErrorError("x"), ImplementationError))
}
