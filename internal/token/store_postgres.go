package token

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// Postgres persists token balances and allowances.
//
// Schema:
//
//	CREATE TABLE token_balances (
//	    token   TEXT NOT NULL,
//	    holder  TEXT NOT NULL,
//	    balance NUMERIC(78) NOT NULL DEFAULT 0,
//	    PRIMARY KEY (token, holder)
//	);
//	CREATE TABLE token_allowances (
//	    token     TEXT NOT NULL,
//	    owner     TEXT NOT NULL,
//	    spender   TEXT NOT NULL,
//	    allowance NUMERIC(78) NOT NULL DEFAULT 0,
//	    PRIMARY KEY (token, owner, spender)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Balance(ctx context.Context, token, holder id.Address) (*big.Int, error) {
	var raw string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT balance::text FROM token_balances WHERE token = $1 AND holder = $2
	`, token.String(), holder.String()).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("balance: %w", err)
	}
	b, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("balance: bad numeric %q", raw)
	}
	return b, nil
}

func (s *Postgres) Move(ctx context.Context, token, from, to id.Address, amount *big.Int) error {
	q := postgres.From(ctx, s.db)
	res, err := q.ExecContext(ctx, `
		UPDATE token_balances SET balance = balance - $3::numeric
		WHERE token = $1 AND holder = $2 AND balance >= $3::numeric
	`, token.String(), from.String(), amount.String())
	if err != nil {
		return fmt.Errorf("move debit: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("move debit: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return s.Credit(ctx, token, to, amount)
}

func (s *Postgres) Credit(ctx context.Context, token, to id.Address, amount *big.Int) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO token_balances (token, holder, balance)
		VALUES ($1, $2, $3::numeric)
		ON CONFLICT (token, holder) DO UPDATE SET
			balance = token_balances.balance + EXCLUDED.balance
	`, token.String(), to.String(), amount.String())
	if err != nil {
		return fmt.Errorf("credit: %w", err)
	}
	return nil
}

func (s *Postgres) Allowance(ctx context.Context, token, owner, spender id.Address) (*big.Int, error) {
	var raw string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT allowance::text FROM token_allowances
		WHERE token = $1 AND owner = $2 AND spender = $3
	`, token.String(), owner.String(), spender.String()).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return new(big.Int), nil
		}
		return nil, fmt.Errorf("allowance: %w", err)
	}
	a, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("allowance: bad numeric %q", raw)
	}
	return a, nil
}

func (s *Postgres) SetAllowance(ctx context.Context, token, owner, spender id.Address, amount *big.Int) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO token_allowances (token, owner, spender, allowance)
		VALUES ($1, $2, $3, $4::numeric)
		ON CONFLICT (token, owner, spender) DO UPDATE SET
			allowance = EXCLUDED.allowance
	`, token.String(), owner.String(), spender.String(), amount.String())
	if err != nil {
		return fmt.Errorf("set allowance: %w", err)
	}
	return nil
}
