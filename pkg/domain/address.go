package domain

import (
	"encoding/hex"
	"strings"

	dErrors "nameledger/pkg/domain-errors"
)

// Address identifies a participant account. 20 bytes, rendered 0x-hex.
type Address [20]byte

// ZeroAddress is the unset account value. A registry record whose owner is
// ZeroAddress does not exist.
var ZeroAddress Address

// ParseAddress parses a 0x-prefixed 40-hex-digit account address.
func ParseAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimSpace(strings.ToLower(s)), "0x")
	if len(s) != 40 {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address must be 20 bytes of hex")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, dErrors.New(dErrors.CodeInvalidInput, "address is not valid hex")
	}
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
