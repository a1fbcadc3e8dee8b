package pricing

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

func TestFixedPriceAndFee(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryFixedConfigs()
	parent := id.RootID()
	require.NoError(t, store.Set(ctx, parent, FixedConfig{
		Price:  big.NewInt(500),
		FeeBps: 100,
		IsSet:  true,
	}))
	pricer := NewFixedPricer(store)

	for _, label := range []string{"a", "wilder", "a-very-long-label-indeed"} {
		price, fee, err := pricer.PriceAndFee(ctx, parent, label)
		require.NoError(t, err)
		assert.Equal(t, int64(500), price.Int64(), "fixed price ignores length")
		assert.Equal(t, int64(5), fee.Int64())
	}
}

func TestFixedConfigNotSet(t *testing.T) {
	pricer := NewFixedPricer(NewInMemoryFixedConfigs())
	_, _, err := pricer.PriceAndFee(context.Background(), id.RootID(), "wilder")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigNotSet))
}

func TestRegistryGet(t *testing.T) {
	curve := NewCurvePricer(NewInMemoryCurveConfigs())
	fixed := NewFixedPricer(NewInMemoryFixedConfigs())
	registry := NewRegistry(curve, fixed)

	p, err := registry.Get(PricerCurve)
	require.NoError(t, err)
	assert.Equal(t, PricerCurve, p.Name())

	p, err = registry.Get(PricerFixed)
	require.NoError(t, err)
	assert.Equal(t, PricerFixed, p.Name())

	_, err = registry.Get("auction")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigNotSet))
}
