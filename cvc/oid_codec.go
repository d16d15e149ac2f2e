package cvc

import (
	"fmt"
	"strconv"
	"strings"
)

// DecodeOID parses the standard DER OBJECT IDENTIFIER content octets (the
// tag-06 value, not including tag or length) into dotted-decimal form.
// Exported so callers that only have a bare OID value octet string (e.g.
// Set AT's tag-0x80 cryptographic mechanism, carried without its own
// tag/length) can decode it directly.
func DecodeOID(raw []byte) (OID, error) {
	return decodeOID(raw)
}

func decodeOID(raw []byte) (OID, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("cvc: empty OID")
	}
	arcs := make([]int64, 0, len(raw))
	first := int64(raw[0])
	arcs = append(arcs, first/40, first%40)

	var current int64
	started := false
	for _, b := range raw[1:] {
		current = current<<7 | int64(b&0x7F)
		started = true
		if b&0x80 == 0 {
			arcs = append(arcs, current)
			current = 0
			started = false
		}
	}
	if started {
		return "", fmt.Errorf("cvc: truncated OID arc")
	}

	parts := make([]string, len(arcs))
	for i, a := range arcs {
		parts[i] = strconv.FormatInt(a, 10)
	}
	return OID(strings.Join(parts, ".")), nil
}

// EncodeOID renders oid as bare DER OBJECT IDENTIFIER content octets (no
// tag or length), the form Set AT's tag-0x80 cryptographic mechanism
// carries.
func EncodeOID(oid OID) ([]byte, error) {
	return encodeOID(oid)
}

// encodeOID is decodeOID's inverse.
func encodeOID(oid OID) ([]byte, error) {
	parts := strings.Split(string(oid), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("cvc: OID %q needs at least two arcs", oid)
	}
	arcs := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cvc: OID %q has non-numeric arc %q", oid, p)
		}
		arcs[i] = v
	}

	out := []byte{byte(arcs[0]*40 + arcs[1])}
	for _, arc := range arcs[2:] {
		out = append(out, encodeBase128(arc)...)
	}
	return out, nil
}

func encodeBase128(v int64) []byte {
	if v == 0 {
		return []byte{0}
	}
	var groups []byte
	for v > 0 {
		groups = append([]byte{byte(v & 0x7F)}, groups...)
		v >>= 7
	}
	for i := 0; i < len(groups)-1; i++ {
		groups[i] |= 0x80
	}
	return groups
}
