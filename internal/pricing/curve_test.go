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

func newCurveFixture(t *testing.T, cfg CurveConfig) (*CurvePricer, id.DomainID) {
	t.Helper()
	store := NewInMemoryCurveConfigs()
	parent := id.RootID()
	require.NoError(t, store.Set(context.Background(), parent, cfg))
	return NewCurvePricer(store), parent
}

func testCurveConfig() CurveConfig {
	return CurveConfig{
		MaxPrice:            big.NewInt(1000),
		MinPrice:            big.NewInt(10),
		MaxLength:           0,
		BaseLength:          4,
		PrecisionMultiplier: big.NewInt(1),
		FeeBps:              250,
		IsSet:               true,
	}
}

func TestCurvePriceAndFee(t *testing.T) {
	ctx := context.Background()
	pricer, parent := newCurveFixture(t, testCurveConfig())

	tests := []struct {
		label string
		price int64
		fee   int64
	}{
		{"a", 1000, 25},
		{"ab", 1000, 25},
		{"abcd", 1000, 25},      // at base length
		{"abcde", 923, 23},      // one past base
		{"abcdef", 858, 21},     // two past base
		{"abcdefghij", 670, 16}, // length 10
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			price, fee, err := pricer.PriceAndFee(ctx, parent, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.price, price.Int64())
			assert.Equal(t, tt.fee, fee.Int64())
		})
	}
}

func TestCurvePriceMonotonicity(t *testing.T) {
	ctx := context.Background()
	pricer, parent := newCurveFixture(t, testCurveConfig())

	label := ""
	var prev *big.Int
	for i := 1; i <= 60; i++ {
		label += "a"
		price, _, err := pricer.PriceAndFee(ctx, parent, label)
		require.NoError(t, err)

		if prev != nil {
			assert.LessOrEqual(t, price.Cmp(prev), 0,
				"price must not increase with length (len %d)", i)
		}
		assert.GreaterOrEqual(t, price.Cmp(big.NewInt(10)), 0, "price must not drop below MinPrice")
		assert.LessOrEqual(t, price.Cmp(big.NewInt(1000)), 0, "price must not exceed MaxPrice")
		prev = price
	}

	// Strictly below max immediately after the base length.
	atBase, _, err := pricer.PriceAndFee(ctx, parent, "abcd")
	require.NoError(t, err)
	pastBase, _, err := pricer.PriceAndFee(ctx, parent, "abcde")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), atBase.Int64())
	assert.Less(t, pastBase.Int64(), atBase.Int64())
	assert.Greater(t, pastBase.Int64(), int64(10))
}

func TestCurvePrecisionFloor(t *testing.T) {
	cfg := testCurveConfig()
	cfg.PrecisionMultiplier = big.NewInt(50)
	pricer, parent := newCurveFixture(t, cfg)

	price, _, err := pricer.PriceAndFee(context.Background(), parent, "abcde")
	require.NoError(t, err)
	assert.Equal(t, int64(900), price.Int64(), "923 floors to the nearest multiple of 50")
}

func TestCurveMaxLength(t *testing.T) {
	cfg := testCurveConfig()
	cfg.MaxLength = 6
	pricer, parent := newCurveFixture(t, cfg)

	_, _, err := pricer.PriceAndFee(context.Background(), parent, "abcdefg")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeLabelTooLong))
}

func TestCurveConfigNotSet(t *testing.T) {
	pricer := NewCurvePricer(NewInMemoryCurveConfigs())

	_, _, err := pricer.PriceAndFee(context.Background(), id.RootID(), "wilder")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigNotSet))

	_, err = pricer.FeeForPrice(context.Background(), id.RootID(), big.NewInt(100))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigNotSet))
}

func TestCurveFeeForPrice(t *testing.T) {
	pricer, parent := newCurveFixture(t, testCurveConfig())

	fee, err := pricer.FeeForPrice(context.Background(), parent, big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, int64(25), fee.Int64())

	t.Run("zero price", func(t *testing.T) {
		fee, err := pricer.FeeForPrice(context.Background(), parent, big.NewInt(0))
		require.NoError(t, err)
		assert.Equal(t, int64(0), fee.Int64())
	})
}

func TestCurveConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CurveConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *CurveConfig) {}},
		{name: "inverted band", mutate: func(c *CurveConfig) { c.MinPrice = big.NewInt(2000) }, wantErr: true},
		{name: "zero precision", mutate: func(c *CurveConfig) { c.PrecisionMultiplier = big.NewInt(0) }, wantErr: true},
		{name: "fee over denominator", mutate: func(c *CurveConfig) { c.FeeBps = 10_001 }, wantErr: true},
		{name: "max below base", mutate: func(c *CurveConfig) { c.MaxLength = 2 }, wantErr: true},
		{name: "missing prices", mutate: func(c *CurveConfig) { c.MaxPrice = nil }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCurveConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
