package platform

import (
	"encoding/hex"
	"errors"
	"strings"
)

// FormatAddress renders an address as 0x-prefixed hex, the canonical textual
// form used in events and RPC payloads.
func FormatAddress(addr [20]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// ParseAddress decodes the canonical textual address form.
func ParseAddress(s string) ([20]byte, error) {
	var out [20]byte
	trimmed := strings.TrimSpace(s)
	trimmed = strings.TrimPrefix(trimmed, "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, err
	}
	if len(decoded) != len(out) {
		return out, errors.New("platform: address must be 20 bytes")
	}
	copy(out[:], decoded)
	return out, nil
}
