// Package domain holds the identity types shared by every nameledger
// component: domain ids, addresses, and label normalization. Keeping them in
// one dependency-free package lets stores, services, and handlers agree on
// identity without importing each other.
package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "nameledger/pkg/domain-errors"
)

// DomainID identifies a namespace node. It is the Keccak-256 hash of the
// parent id concatenated with the hash of the normalized label, so identity
// is derived, never assigned, and parent links stay implicit.
type DomainID [32]byte

// RootID is the identity of the namespace root, Keccak-256 of empty input.
// The deploying authority owns it from bootstrap onward.
func RootID() DomainID {
	var root DomainID
	h := sha3.NewLegacyKeccak256()
	h.Sum(root[:0])
	return root
}

// ChildID derives the id of parent's child with the given normalized label.
// Deterministic: same (parent, label) always yields the same id.
func ChildID(parent DomainID, label string) DomainID {
	labelHash := keccak([]byte(label))
	var id DomainID
	h := sha3.NewLegacyKeccak256()
	h.Write(parent[:])
	h.Write(labelHash[:])
	h.Sum(id[:0])
	return id
}

func keccak(data []byte) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	h.Sum(out[:0])
	return out
}

// ParseDomainID parses a 0x-prefixed 64-hex-digit id.
func ParseDomainID(s string) (DomainID, error) {
	var id DomainID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 64 {
		return id, dErrors.New(dErrors.CodeInvalidInput, "domain id must be 32 bytes of hex")
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, dErrors.New(dErrors.CodeInvalidInput, "domain id is not valid hex")
	}
	copy(id[:], raw)
	return id, nil
}

func (d DomainID) String() string {
	return "0x" + hex.EncodeToString(d[:])
}

// IsZero reports whether the id is the all-zero value (unset, distinct from
// RootID which is a real hash).
func (d DomainID) IsZero() bool {
	return d == DomainID{}
}

// MarshalText implements encoding.TextMarshaler so ids serialize as hex in
// JSON payloads and event streams.
func (d DomainID) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DomainID) UnmarshalText(text []byte) error {
	parsed, err := ParseDomainID(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
