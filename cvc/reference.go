package cvc

import "bytes"

// Reference is an opaque Certification Authority Reference (CAR) or
// Certificate Holder Reference (CHR): compared by exact byte equality,
// never parsed for structure.
type Reference []byte

// Equal reports whether r and other name the same entity.
func (r Reference) Equal(other Reference) bool {
	return bytes.Equal(r, other)
}

func (r Reference) String() string {
	return string(r)
}
