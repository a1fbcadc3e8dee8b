package pricing

import (
	"context"
	"math/big"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// PricerFixed is the name distribution configs use to select this engine.
const PricerFixed = "fixed"

// FixedConfig charges every child of one parent the same price.
type FixedConfig struct {
	Price  *big.Int
	FeeBps int64
	IsSet  bool
}

func (c FixedConfig) Validate() error {
	if c.Price == nil || c.Price.Sign() < 0 {
		return dErrors.New(dErrors.CodeValidation, "price must be zero or positive")
	}
	if c.FeeBps < 0 || c.FeeBps > FeeDenominator {
		return dErrors.New(dErrors.CodeValidation, "fee basis points out of range")
	}
	return nil
}

// FixedConfigStore persists per-parent fixed configs.
type FixedConfigStore interface {
	Get(ctx context.Context, parent id.DomainID) (FixedConfig, error)
	Set(ctx context.Context, parent id.DomainID, cfg FixedConfig) error
	Delete(ctx context.Context, parent id.DomainID) error
}

// FixedPricer prices every label identically, length ignored.
type FixedPricer struct {
	configs FixedConfigStore
}

func NewFixedPricer(configs FixedConfigStore) *FixedPricer {
	return &FixedPricer{configs: configs}
}

func (p *FixedPricer) Name() string { return PricerFixed }

func (p *FixedPricer) PriceAndFee(ctx context.Context, parent id.DomainID, label string) (*big.Int, *big.Int, error) {
	if len(label) == 0 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidLength, "label must not be empty")
	}
	cfg, err := p.config(ctx, parent)
	if err != nil {
		return nil, nil, err
	}
	price := new(big.Int).Set(cfg.Price)
	return price, feeFor(price, cfg.FeeBps), nil
}

func (p *FixedPricer) FeeForPrice(ctx context.Context, parent id.DomainID, price *big.Int) (*big.Int, error) {
	cfg, err := p.config(ctx, parent)
	if err != nil {
		return nil, err
	}
	return feeFor(price, cfg.FeeBps), nil
}

func (p *FixedPricer) config(ctx context.Context, parent id.DomainID) (FixedConfig, error) {
	cfg, err := p.configs.Get(ctx, parent)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return FixedConfig{}, dErrors.New(dErrors.CodeConfigNotSet, "parent has no fixed price config")
		}
		return FixedConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load fixed config")
	}
	if !cfg.IsSet {
		return FixedConfig{}, dErrors.New(dErrors.CodeConfigNotSet, "parent has no fixed price config")
	}
	return cfg, nil
}
