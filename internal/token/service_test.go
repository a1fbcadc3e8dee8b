package token

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameledger/internal/access"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

func addr(b byte) id.Address {
	var a id.Address
	a[19] = b
	return a
}

func amt(v int64) *big.Int { return big.NewInt(v) }

// newFunded builds a service with admin addr(1) and credits alice with 1000
// units of the test token.
func newFunded(t *testing.T) (*Service, id.Address, id.Address) {
	t.Helper()
	admin, tok := addr(1), addr(100)
	accessSvc, err := access.New(access.NewInMemory())
	require.NoError(t, err)
	require.NoError(t, accessSvc.Seed(context.Background(),
		[]id.Address{admin}, []id.Address{admin}, nil))

	svc, err := New(NewInMemory(), accessSvc, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Mint(context.Background(), admin, tok, addr(2), amt(1000)))
	return svc, tok, admin
}

func TestMintRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc, tok, admin := newFunded(t)

	err := svc.Mint(ctx, addr(9), tok, addr(9), amt(100))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = svc.Mint(ctx, admin, tok, addr(9), amt(0))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	svc, tok, _ := newFunded(t)
	alice, bob := addr(2), addr(3)

	t.Run("moves funds", func(t *testing.T) {
		require.NoError(t, svc.Transfer(ctx, tok, alice, bob, amt(400)))

		aliceBal, err := svc.BalanceOf(ctx, tok, alice)
		require.NoError(t, err)
		assert.Equal(t, amt(600), aliceBal)

		bobBal, err := svc.BalanceOf(ctx, tok, bob)
		require.NoError(t, err)
		assert.Equal(t, amt(400), bobBal)
	})

	t.Run("shortfall", func(t *testing.T) {
		err := svc.Transfer(ctx, tok, alice, bob, amt(601))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		err := svc.Transfer(ctx, tok, alice, bob, amt(-1))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		err = svc.Transfer(ctx, tok, alice, bob, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestTransferFrom(t *testing.T) {
	ctx := context.Background()
	svc, tok, _ := newFunded(t)
	alice, spender, sink := addr(2), addr(4), addr(5)

	t.Run("requires allowance", func(t *testing.T) {
		err := svc.TransferFrom(ctx, tok, spender, alice, sink, amt(100))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientAllowance))
	})

	t.Run("consumes allowance", func(t *testing.T) {
		require.NoError(t, svc.Approve(ctx, tok, alice, spender, amt(300)))
		require.NoError(t, svc.TransferFrom(ctx, tok, spender, alice, sink, amt(200)))

		sinkBal, err := svc.BalanceOf(ctx, tok, sink)
		require.NoError(t, err)
		assert.Equal(t, amt(200), sinkBal)

		// 100 of the approval remains.
		err = svc.TransferFrom(ctx, tok, spender, alice, sink, amt(101))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientAllowance))
		require.NoError(t, svc.TransferFrom(ctx, tok, spender, alice, sink, amt(100)))
	})

	t.Run("allowance does not create funds", func(t *testing.T) {
		require.NoError(t, svc.Approve(ctx, tok, alice, spender, amt(5000)))
		err := svc.TransferFrom(ctx, tok, spender, alice, sink, amt(5000))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientFunds))
	})
}

func TestApprove(t *testing.T) {
	ctx := context.Background()
	svc, tok, _ := newFunded(t)
	alice, spender := addr(2), addr(4)

	require.NoError(t, svc.Approve(ctx, tok, alice, spender, amt(0)))

	err := svc.Approve(ctx, tok, alice, spender, amt(-1))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestBalancesAreIsolatedPerToken(t *testing.T) {
	ctx := context.Background()
	svc, tok, _ := newFunded(t)
	other := addr(101)

	bal, err := svc.BalanceOf(ctx, other, addr(2))
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	bal, err = svc.BalanceOf(ctx, tok, addr(2))
	require.NoError(t, err)
	assert.Equal(t, amt(1000), bal)
}
