// Package pricing computes registration prices and protocol fees. Two
// interchangeable engines exist: a length-decay curve and a flat price. Both
// read per-parent configuration and never mutate registry state; a parent's
// distribution config selects the engine by name.
package pricing

import (
	"context"
	"math/big"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// FeeDenominator is the scale for fee basis points: feeBps of 250 is 2.5%.
const FeeDenominator = 10_000

// curveSteepness controls how fast the curve decays past the base length.
// Fixed across deployments so stored stakes stay reproducible.
const curveSteepness = 3

// Pricer is the common contract both engines satisfy. PriceAndFee is a pure
// function of stored parent config and the label; FeeForPrice recomputes a
// fee from an already-known amount so revocation never needs the original
// label.
type Pricer interface {
	Name() string
	PriceAndFee(ctx context.Context, parent id.DomainID, label string) (price, fee *big.Int, err error)
	FeeForPrice(ctx context.Context, parent id.DomainID, price *big.Int) (*big.Int, error)
}

// Registry resolves pricers by the name distribution configs store.
type Registry struct {
	pricers map[string]Pricer
}

func NewRegistry(pricers ...Pricer) *Registry {
	byName := make(map[string]Pricer, len(pricers))
	for _, p := range pricers {
		byName[p.Name()] = p
	}
	return &Registry{pricers: byName}
}

// Get fails with config_not_set for unknown names: a domain whose config
// points at a pricer this deployment does not run cannot price children.
func (r *Registry) Get(name string) (Pricer, error) {
	p, ok := r.pricers[name]
	if !ok {
		return nil, dErrors.New(dErrors.CodeConfigNotSet, "no pricer registered under that name")
	}
	return p, nil
}

// feeFor applies the basis-point fee formula shared by both engines.
func feeFor(price *big.Int, feeBps int64) *big.Int {
	fee := new(big.Int).Mul(price, big.NewInt(feeBps))
	return fee.Div(fee, big.NewInt(FeeDenominator))
}
