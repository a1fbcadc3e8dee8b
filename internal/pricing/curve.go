package pricing

import (
	"context"
	"math/big"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// PricerCurve is the name distribution configs use to select this engine.
const PricerCurve = "curve"

// CurveConfig prices children of one parent. Prices are token base units.
type CurveConfig struct {
	MaxPrice            *big.Int
	MinPrice            *big.Int
	MaxLength           int
	BaseLength          int
	PrecisionMultiplier *big.Int
	FeeBps              int64
	IsSet               bool
}

// Validate rejects configs that could divide by zero or invert the price
// band.
func (c CurveConfig) Validate() error {
	if c.MaxPrice == nil || c.MinPrice == nil {
		return dErrors.New(dErrors.CodeValidation, "max and min price are required")
	}
	if c.MaxPrice.Cmp(c.MinPrice) < 0 {
		return dErrors.New(dErrors.CodeValidation, "max price must not be below min price")
	}
	if c.PrecisionMultiplier == nil || c.PrecisionMultiplier.Sign() <= 0 {
		return dErrors.New(dErrors.CodeValidation, "precision multiplier must be positive")
	}
	if c.FeeBps < 0 || c.FeeBps > FeeDenominator {
		return dErrors.New(dErrors.CodeValidation, "fee basis points out of range")
	}
	if c.BaseLength < 0 || c.MaxLength < 0 {
		return dErrors.New(dErrors.CodeValidation, "lengths must not be negative")
	}
	if c.MaxLength > 0 && c.MaxLength < c.BaseLength {
		return dErrors.New(dErrors.CodeValidation, "max length must not be below base length")
	}
	return nil
}

// CurveConfigStore persists per-parent curve configs.
type CurveConfigStore interface {
	Get(ctx context.Context, parent id.DomainID) (CurveConfig, error)
	Set(ctx context.Context, parent id.DomainID, cfg CurveConfig) error
	Delete(ctx context.Context, parent id.DomainID) error
}

// CurvePricer decays price from MaxPrice toward MinPrice as labels grow past
// the base length.
type CurvePricer struct {
	configs CurveConfigStore
}

func NewCurvePricer(configs CurveConfigStore) *CurvePricer {
	return &CurvePricer{configs: configs}
}

func (p *CurvePricer) Name() string { return PricerCurve }

// PriceAndFee computes the curve price for label under parent's config.
//
// For L <= baseLength the price is MaxPrice. Past the base the price follows
// min + (max-min)·(B·K)/(B·K + (L-B)), a strictly non-increasing rational
// decay toward MinPrice, then floors to a multiple of the precision
// multiplier so sub-unit noise never reaches the treasury.
func (p *CurvePricer) PriceAndFee(ctx context.Context, parent id.DomainID, label string) (*big.Int, *big.Int, error) {
	cfg, err := p.config(ctx, parent)
	if err != nil {
		return nil, nil, err
	}

	length := len(label)
	if length == 0 {
		return nil, nil, dErrors.New(dErrors.CodeInvalidLength, "label must not be empty")
	}
	if cfg.MaxLength > 0 && length > cfg.MaxLength {
		return nil, nil, dErrors.New(dErrors.CodeLabelTooLong, "label exceeds the parent's maximum length")
	}

	price := curvePrice(cfg, length)
	return price, feeFor(price, cfg.FeeBps), nil
}

func (p *CurvePricer) FeeForPrice(ctx context.Context, parent id.DomainID, price *big.Int) (*big.Int, error) {
	cfg, err := p.config(ctx, parent)
	if err != nil {
		return nil, err
	}
	return feeFor(price, cfg.FeeBps), nil
}

func (p *CurvePricer) config(ctx context.Context, parent id.DomainID) (CurveConfig, error) {
	cfg, err := p.configs.Get(ctx, parent)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return CurveConfig{}, dErrors.New(dErrors.CodeConfigNotSet, "parent has no curve price config")
		}
		return CurveConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load curve config")
	}
	if !cfg.IsSet {
		return CurveConfig{}, dErrors.New(dErrors.CodeConfigNotSet, "parent has no curve price config")
	}
	return cfg, nil
}

func curvePrice(cfg CurveConfig, length int) *big.Int {
	if cfg.BaseLength > 0 && length <= cfg.BaseLength {
		return new(big.Int).Set(cfg.MaxPrice)
	}

	// weight = B·K, or just K when baseLength degenerates to zero.
	weight := int64(cfg.BaseLength) * curveSteepness
	if weight == 0 {
		weight = curveSteepness
	}
	over := int64(length - cfg.BaseLength)

	span := new(big.Int).Sub(cfg.MaxPrice, cfg.MinPrice)
	span.Mul(span, big.NewInt(weight))
	span.Div(span, big.NewInt(weight+over))

	price := new(big.Int).Add(cfg.MinPrice, span)

	// Floor to a multiple of the precision multiplier, never below MinPrice.
	price.Div(price, cfg.PrecisionMultiplier)
	price.Mul(price, cfg.PrecisionMultiplier)
	if price.Cmp(cfg.MinPrice) < 0 {
		price.Set(cfg.MinPrice)
	}
	return price
}
