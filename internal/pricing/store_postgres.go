package pricing

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// PostgresCurveConfigs persists curve configs.
//
// Schema:
//
//	CREATE TABLE curve_price_configs (
//	    domain_id   TEXT PRIMARY KEY,
//	    max_price   NUMERIC(78) NOT NULL,
//	    min_price   NUMERIC(78) NOT NULL,
//	    max_length  INT NOT NULL,
//	    base_length INT NOT NULL,
//	    precision_multiplier NUMERIC(78) NOT NULL,
//	    fee_bps     INT NOT NULL
//	);
type PostgresCurveConfigs struct {
	db *sql.DB
}

func NewPostgresCurveConfigs(db *sql.DB) *PostgresCurveConfigs {
	return &PostgresCurveConfigs{db: db}
}

func (s *PostgresCurveConfigs) Get(ctx context.Context, parent id.DomainID) (CurveConfig, error) {
	var (
		maxPrice, minPrice, precision string
		maxLength, baseLength         int
		feeBps                        int64
	)
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT max_price, min_price, max_length, base_length, precision_multiplier, fee_bps
		FROM curve_price_configs WHERE domain_id = $1
	`, parent.String()).Scan(&maxPrice, &minPrice, &maxLength, &baseLength, &precision, &feeBps)
	if err != nil {
		if err == sql.ErrNoRows {
			return CurveConfig{}, sentinel.ErrNotFound
		}
		return CurveConfig{}, fmt.Errorf("get curve config: %w", err)
	}
	cfg := CurveConfig{
		MaxLength:  maxLength,
		BaseLength: baseLength,
		FeeBps:     feeBps,
		IsSet:      true,
	}
	var ok bool
	if cfg.MaxPrice, ok = new(big.Int).SetString(maxPrice, 10); !ok {
		return CurveConfig{}, fmt.Errorf("get curve config: bad max_price %q", maxPrice)
	}
	if cfg.MinPrice, ok = new(big.Int).SetString(minPrice, 10); !ok {
		return CurveConfig{}, fmt.Errorf("get curve config: bad min_price %q", minPrice)
	}
	if cfg.PrecisionMultiplier, ok = new(big.Int).SetString(precision, 10); !ok {
		return CurveConfig{}, fmt.Errorf("get curve config: bad precision %q", precision)
	}
	return cfg, nil
}

func (s *PostgresCurveConfigs) Set(ctx context.Context, parent id.DomainID, cfg CurveConfig) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO curve_price_configs
			(domain_id, max_price, min_price, max_length, base_length, precision_multiplier, fee_bps)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (domain_id) DO UPDATE SET
			max_price = EXCLUDED.max_price,
			min_price = EXCLUDED.min_price,
			max_length = EXCLUDED.max_length,
			base_length = EXCLUDED.base_length,
			precision_multiplier = EXCLUDED.precision_multiplier,
			fee_bps = EXCLUDED.fee_bps
	`, parent.String(), cfg.MaxPrice.String(), cfg.MinPrice.String(),
		cfg.MaxLength, cfg.BaseLength, cfg.PrecisionMultiplier.String(), cfg.FeeBps)
	if err != nil {
		return fmt.Errorf("set curve config: %w", err)
	}
	return nil
}

func (s *PostgresCurveConfigs) Delete(ctx context.Context, parent id.DomainID) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM curve_price_configs WHERE domain_id = $1
	`, parent.String())
	if err != nil {
		return fmt.Errorf("delete curve config: %w", err)
	}
	return nil
}

// PostgresFixedConfigs persists fixed configs.
//
// Schema:
//
//	CREATE TABLE fixed_price_configs (
//	    domain_id TEXT PRIMARY KEY,
//	    price     NUMERIC(78) NOT NULL,
//	    fee_bps   INT NOT NULL
//	);
type PostgresFixedConfigs struct {
	db *sql.DB
}

func NewPostgresFixedConfigs(db *sql.DB) *PostgresFixedConfigs {
	return &PostgresFixedConfigs{db: db}
}

func (s *PostgresFixedConfigs) Get(ctx context.Context, parent id.DomainID) (FixedConfig, error) {
	var (
		price  string
		feeBps int64
	)
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT price, fee_bps FROM fixed_price_configs WHERE domain_id = $1
	`, parent.String()).Scan(&price, &feeBps)
	if err != nil {
		if err == sql.ErrNoRows {
			return FixedConfig{}, sentinel.ErrNotFound
		}
		return FixedConfig{}, fmt.Errorf("get fixed config: %w", err)
	}
	parsed, ok := new(big.Int).SetString(price, 10)
	if !ok {
		return FixedConfig{}, fmt.Errorf("get fixed config: bad price %q", price)
	}
	return FixedConfig{Price: parsed, FeeBps: feeBps, IsSet: true}, nil
}

func (s *PostgresFixedConfigs) Set(ctx context.Context, parent id.DomainID, cfg FixedConfig) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO fixed_price_configs (domain_id, price, fee_bps)
		VALUES ($1, $2, $3)
		ON CONFLICT (domain_id) DO UPDATE SET
			price = EXCLUDED.price,
			fee_bps = EXCLUDED.fee_bps
	`, parent.String(), cfg.Price.String(), cfg.FeeBps)
	if err != nil {
		return fmt.Errorf("set fixed config: %w", err)
	}
	return nil
}

func (s *PostgresFixedConfigs) Delete(ctx context.Context, parent id.DomainID) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM fixed_price_configs WHERE domain_id = $1
	`, parent.String())
	if err != nil {
		return fmt.Errorf("delete fixed config: %w", err)
	}
	return nil
}
