package registrar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

func TestOpLock(t *testing.T) {
	locks := newOpLock()
	a := id.ChildID(id.RootID(), "a")
	b := id.ChildID(id.RootID(), "b")

	require.NoError(t, locks.acquire(a))

	t.Run("held ids conflict", func(t *testing.T) {
		err := locks.acquire(a)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("other ids are independent", func(t *testing.T) {
		require.NoError(t, locks.acquire(b))
		locks.release(b)
	})

	t.Run("release frees the id", func(t *testing.T) {
		locks.release(a)
		require.NoError(t, locks.acquire(a))
		locks.release(a)
	})
}
