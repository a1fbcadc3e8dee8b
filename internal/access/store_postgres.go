package access

import (
	"context"
	"database/sql"
	"fmt"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// Postgres persists role membership in the roles table.
//
// Schema:
//
//	CREATE TABLE roles (
//	    role    TEXT NOT NULL,
//	    address TEXT NOT NULL,
//	    PRIMARY KEY (role, address)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Grant(ctx context.Context, role Role, addr id.Address) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO roles (role, address)
		VALUES ($1, $2)
		ON CONFLICT (role, address) DO NOTHING
	`, string(role), addr.String())
	if err != nil {
		return fmt.Errorf("grant role: %w", err)
	}
	return nil
}

func (s *Postgres) Revoke(ctx context.Context, role Role, addr id.Address) error {
	res, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM roles WHERE role = $1 AND address = $2
	`, string(role), addr.String())
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke role: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Has(ctx context.Context, role Role, addr id.Address) (bool, error) {
	var one int
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT 1 FROM roles WHERE role = $1 AND address = $2
	`, string(role), addr.String()).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("has role: %w", err)
	}
	return true, nil
}

func (s *Postgres) Count(ctx context.Context, role Role) (int, error) {
	var n int
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT COUNT(*) FROM roles WHERE role = $1
	`, string(role)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count role: %w", err)
	}
	return n, nil
}

func (s *Postgres) List(ctx context.Context, role Role) ([]id.Address, error) {
	rows, err := postgres.From(ctx, s.db).QueryContext(ctx, `
		SELECT address FROM roles WHERE role = $1 ORDER BY address
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list role: %w", err)
	}
	defer rows.Close()

	var out []id.Address
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("list role: %w", err)
		}
		addr, err := id.ParseAddress(raw)
		if err != nil {
			return nil, fmt.Errorf("list role: bad address %q: %w", raw, err)
		}
		out = append(out, addr)
	}
	return out, rows.Err()
}
