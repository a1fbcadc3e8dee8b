// Package treasury holds per-domain payment configuration and staked
// balances, and executes every fund movement in the system: stake locking,
// direct charges, and refunds. It never decides prices; amounts arrive from
// the registrar already priced.
package treasury

import (
	"context"
	"math/big"

	"golang.org/x/crypto/sha3"

	id "nameledger/pkg/domain"
)

// EscrowAccount is the ledger account stakes are locked in. Derived, not
// configured, so every deployment escrows under the same address.
var EscrowAccount = accountOf("nameledger/treasury/escrow")

func accountOf(name string) id.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	var a id.Address
	copy(a[:], h.Sum(nil)[:20])
	return a
}

// StakedBalance is the refundable escrow locked for one domain.
type StakedBalance struct {
	Amount *big.Int
	Token  id.Address
}

// PaymentConfig routes a domain's registration proceeds. Either field zero
// means payments are not collected for children of this domain.
type PaymentConfig struct {
	Token       id.Address
	Beneficiary id.Address
}

// IsSet reports whether the config can route a payment.
func (c PaymentConfig) IsSet() bool {
	return !c.Token.IsZero() && !c.Beneficiary.IsZero()
}

// StakeStore persists staked balances keyed by domain id.
type StakeStore interface {
	Put(ctx context.Context, domainID id.DomainID, stake StakedBalance) error
	Get(ctx context.Context, domainID id.DomainID) (StakedBalance, error)
	Delete(ctx context.Context, domainID id.DomainID) error
}

// PaymentConfigStore persists payment configs keyed by domain id.
type PaymentConfigStore interface {
	Put(ctx context.Context, domainID id.DomainID, cfg PaymentConfig) error
	Get(ctx context.Context, domainID id.DomainID) (PaymentConfig, error)
	Delete(ctx context.Context, domainID id.DomainID) error
}
