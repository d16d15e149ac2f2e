// Package errors defines the typed error kinds the TA core can raise, and
// their mapping onto ISO 7816-4 status words.
package errors

import "fmt"

// Kind provides a coarse category for TAErrors, mirroring the ISO 7816-4
// outcome classes the protocol state machine can produce.
type Kind int

const (
	// NotSecureMessaged: the APDU did not traverse secure messaging.
	NotSecureMessaged Kind = iota
	// WrongAPDUType: the dispatcher routed a non-SM APDU to the TA core.
	WrongAPDUType
	// MissingReference: a mandatory TLV tag is absent, or a referenced key
	// is unknown.
	MissingReference
	// MalformedData: a TLV is present but badly encoded.
	MalformedData
	// NotUsable: a certificate failed signature/validity/issuer checks, or
	// import failed.
	NotUsable
	// AuthenticationFailed: the terminal's signature did not verify.
	AuthenticationFailed
	// ConditionsNotSatisfied: protocol order was violated.
	ConditionsNotSatisfied
	// SecurityStatusNotSatisfied: a prior TA run exists, or a required
	// mechanism is missing.
	SecurityStatusNotSatisfied
	// ImplementationError: an ambiguous precondition or an internal
	// cryptographic failure.
	ImplementationError
)

// StatusWord is a two-byte ISO 7816-4 outcome code.
type StatusWord uint16

// Status words the TA core can emit.
const (
	SW9000 StatusWord = 0x9000 // normal processing
	SW6982 StatusWord = 0x6982 // security status not satisfied
	SW6985 StatusWord = 0x6985 // conditions of use not satisfied
	SW6A88 StatusWord = 0x6A88 // reference data not found
	SW6A80 StatusWord = 0x6A80 // incorrect parameters in data field
	SW6984 StatusWord = 0x6984 // reference data not usable
	SW6300 StatusWord = 0x6300 // authentication failed
	SW6FFF StatusWord = 0x6FFF // implementation error
)

// statusWords maps each Kind to the ISO 7816-4 status word it reports.
var statusWords = map[Kind]StatusWord{
	NotSecureMessaged:          SW6982,
	WrongAPDUType:              SW6FFF,
	MissingReference:           SW6A88,
	MalformedData:              SW6A80,
	NotUsable:                  SW6984,
	AuthenticationFailed:       SW6300,
	ConditionsNotSatisfied:     SW6985,
	SecurityStatusNotSatisfied: SW6982,
	ImplementationError:        SW6FFF,
}

// TAError represents a typed error raised anywhere in the TA core.
type TAError struct {
	Kind   Kind
	Detail string
}

func (e *TAError) Error() string {
	return e.Detail
}

// StatusWord returns the ISO 7816-4 status word this error maps to.
func (e *TAError) StatusWord() StatusWord {
	sw, ok := statusWords[e.Kind]
	if !ok {
		return SW6FFF
	}
	return sw
}

// New is a convenience function for creating a new TAError.
func New(kind Kind, msg string, args ...interface{}) error {
	return &TAError{
		Kind:   kind,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// Is reports whether err is a TAError of the given Kind.
func Is(err error, kind Kind) bool {
	tErr, ok := err.(*TAError)
	if !ok {
		return false
	}
	return tErr.Kind == kind
}

// StatusWordFor returns the status word for err, defaulting to SW6FFF
// (implementation error) for errors that did not originate in this package.
func StatusWordFor(err error) StatusWord {
	if err == nil {
		return SW9000
	}
	if tErr, ok := err.(*TAError); ok {
		return tErr.StatusWord()
	}
	return SW6FFF
}

func NotSecureMessagedError(msg string, args ...interface{}) error {
	return New(NotSecureMessaged, msg, args...)
}

func WrongAPDUTypeError(msg string, args ...interface{}) error {
	return New(WrongAPDUType, msg, args...)
}

func MissingReferenceError(msg string, args ...interface{}) error {
	return New(MissingReference, msg, args...)
}

func MalformedDataError(msg string, args ...interface{}) error {
	return New(MalformedData, msg, args...)
}

func NotUsableError(msg string, args ...interface{}) error {
	return New(NotUsable, msg, args...)
}

func AuthenticationFailedError(msg string, args ...interface{}) error {
	return New(AuthenticationFailed, msg, args...)
}

func ConditionsNotSatisfiedError(msg string, args ...interface{}) error {
	return New(ConditionsNotSatisfied, msg, args...)
}

func SecurityStatusNotSatisfiedError(msg string, args ...interface{}) error {
	return New(SecurityStatusNotSatisfied, msg, args...)
}

func ImplementationErrorError(msg string, args ...interface{}) error {
	return New(ImplementationError, msg, args...)
}
