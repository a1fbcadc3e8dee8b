// Package token models the external payment token the treasury moves: an
// in-process fungible ledger with balances and spender allowances. The
// execution substrate guarantees single-writer ordering, so individual store
// operations are atomic and no cross-operation locking is needed here.
package token

import (
	"context"
	"math/big"

	id "nameledger/pkg/domain"
)

// Store persists balances and allowances per token contract address.
// Move fails with sentinel.ErrInvalidState when from cannot cover amount.
type Store interface {
	Balance(ctx context.Context, token, holder id.Address) (*big.Int, error)
	Move(ctx context.Context, token, from, to id.Address, amount *big.Int) error
	Credit(ctx context.Context, token, to id.Address, amount *big.Int) error

	Allowance(ctx context.Context, token, owner, spender id.Address) (*big.Int, error)
	SetAllowance(ctx context.Context, token, owner, spender id.Address, amount *big.Int) error
}
