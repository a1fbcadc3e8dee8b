package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootID(t *testing.T) {
	root := RootID()
	assert.False(t, root.IsZero())
	assert.Equal(t, root, RootID(), "root id must be stable")
}

func TestChildID(t *testing.T) {
	root := RootID()

	t.Run("deterministic", func(t *testing.T) {
		a := ChildID(root, "wilder")
		b := ChildID(root, "wilder")
		assert.Equal(t, a, b)
	})

	t.Run("label changes the id", func(t *testing.T) {
		assert.NotEqual(t, ChildID(root, "wilder"), ChildID(root, "wolder"))
	})

	t.Run("parent changes the id", func(t *testing.T) {
		parent := ChildID(root, "wilder")
		assert.NotEqual(t, ChildID(root, "world"), ChildID(parent, "world"))
	})

	t.Run("same label under sibling parents differs", func(t *testing.T) {
		p1 := ChildID(root, "one")
		p2 := ChildID(root, "two")
		assert.NotEqual(t, ChildID(p1, "app"), ChildID(p2, "app"))
	})
}

func TestParseDomainID(t *testing.T) {
	original := ChildID(RootID(), "wilder")

	parsed, err := ParseDomainID(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)

	t.Run("accepts missing 0x prefix", func(t *testing.T) {
		parsed, err := ParseDomainID(original.String()[2:])
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("rejects short input", func(t *testing.T) {
		_, err := ParseDomainID("0xabcd")
		assert.Error(t, err)
	})

	t.Run("rejects non-hex input", func(t *testing.T) {
		_, err := ParseDomainID("0xZZ1122334455667788990011223344556677889900112233445566778899001122")
		assert.Error(t, err)
	})
}

func TestDomainIDText(t *testing.T) {
	original := ChildID(RootID(), "wilder")

	text, err := original.MarshalText()
	require.NoError(t, err)

	var decoded DomainID
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, original, decoded)
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x00112233445566778899aabbccddeeff00112233")
	require.NoError(t, err)
	assert.Equal(t, "0x00112233445566778899aabbccddeeff00112233", addr.String())
	assert.False(t, addr.IsZero())

	t.Run("zero address", func(t *testing.T) {
		assert.True(t, ZeroAddress.IsZero())
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseAddress("0x0011")
		assert.Error(t, err)
	})
}
