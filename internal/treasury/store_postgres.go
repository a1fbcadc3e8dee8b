package treasury

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// PostgresStakes persists staked balances.
//
// Schema:
//
//	CREATE TABLE staked_balances (
//	    domain_id TEXT PRIMARY KEY,
//	    amount    NUMERIC(78) NOT NULL,
//	    token     TEXT NOT NULL
//	);
type PostgresStakes struct {
	db *sql.DB
}

func NewPostgresStakes(db *sql.DB) *PostgresStakes {
	return &PostgresStakes{db: db}
}

func (s *PostgresStakes) Put(ctx context.Context, domainID id.DomainID, stake StakedBalance) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO staked_balances (domain_id, amount, token)
		VALUES ($1, $2::numeric, $3)
		ON CONFLICT (domain_id) DO UPDATE SET
			amount = EXCLUDED.amount,
			token = EXCLUDED.token
	`, domainID.String(), stake.Amount.String(), stake.Token.String())
	if err != nil {
		return fmt.Errorf("put stake: %w", err)
	}
	return nil
}

func (s *PostgresStakes) Get(ctx context.Context, domainID id.DomainID) (StakedBalance, error) {
	var amount, tokenAddr string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT amount::text, token FROM staked_balances WHERE domain_id = $1
	`, domainID.String()).Scan(&amount, &tokenAddr)
	if err != nil {
		if err == sql.ErrNoRows {
			return StakedBalance{}, sentinel.ErrNotFound
		}
		return StakedBalance{}, fmt.Errorf("get stake: %w", err)
	}
	stake := StakedBalance{}
	var ok bool
	if stake.Amount, ok = new(big.Int).SetString(amount, 10); !ok {
		return StakedBalance{}, fmt.Errorf("get stake: bad amount %q", amount)
	}
	if stake.Token, err = id.ParseAddress(tokenAddr); err != nil {
		return StakedBalance{}, fmt.Errorf("get stake: bad token %q: %w", tokenAddr, err)
	}
	return stake, nil
}

func (s *PostgresStakes) Delete(ctx context.Context, domainID id.DomainID) error {
	res, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM staked_balances WHERE domain_id = $1
	`, domainID.String())
	if err != nil {
		return fmt.Errorf("delete stake: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete stake: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// PostgresPaymentConfigs persists payment configs.
//
// Schema:
//
//	CREATE TABLE payment_configs (
//	    domain_id   TEXT PRIMARY KEY,
//	    token       TEXT NOT NULL,
//	    beneficiary TEXT NOT NULL
//	);
type PostgresPaymentConfigs struct {
	db *sql.DB
}

func NewPostgresPaymentConfigs(db *sql.DB) *PostgresPaymentConfigs {
	return &PostgresPaymentConfigs{db: db}
}

func (s *PostgresPaymentConfigs) Put(ctx context.Context, domainID id.DomainID, cfg PaymentConfig) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO payment_configs (domain_id, token, beneficiary)
		VALUES ($1, $2, $3)
		ON CONFLICT (domain_id) DO UPDATE SET
			token = EXCLUDED.token,
			beneficiary = EXCLUDED.beneficiary
	`, domainID.String(), cfg.Token.String(), cfg.Beneficiary.String())
	if err != nil {
		return fmt.Errorf("put payment config: %w", err)
	}
	return nil
}

func (s *PostgresPaymentConfigs) Get(ctx context.Context, domainID id.DomainID) (PaymentConfig, error) {
	var tokenAddr, beneficiary string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT token, beneficiary FROM payment_configs WHERE domain_id = $1
	`, domainID.String()).Scan(&tokenAddr, &beneficiary)
	if err != nil {
		if err == sql.ErrNoRows {
			return PaymentConfig{}, sentinel.ErrNotFound
		}
		return PaymentConfig{}, fmt.Errorf("get payment config: %w", err)
	}
	cfg := PaymentConfig{}
	if cfg.Token, err = id.ParseAddress(tokenAddr); err != nil {
		return PaymentConfig{}, fmt.Errorf("get payment config: bad token %q: %w", tokenAddr, err)
	}
	if cfg.Beneficiary, err = id.ParseAddress(beneficiary); err != nil {
		return PaymentConfig{}, fmt.Errorf("get payment config: bad beneficiary %q: %w", beneficiary, err)
	}
	return cfg, nil
}

func (s *PostgresPaymentConfigs) Delete(ctx context.Context, domainID id.DomainID) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM payment_configs WHERE domain_id = $1
	`, domainID.String())
	if err != nil {
		return fmt.Errorf("delete payment config: %w", err)
	}
	return nil
}
