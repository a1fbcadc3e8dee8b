package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// Postgres persists domain records and operator grants.
//
// Schema:
//
//	CREATE TABLE domain_records (
//	    domain_id TEXT PRIMARY KEY,
//	    owner     TEXT NOT NULL,
//	    resolver  TEXT NOT NULL
//	);
//	CREATE TABLE operators (
//	    owner    TEXT NOT NULL,
//	    operator TEXT NOT NULL,
//	    PRIMARY KEY (owner, operator)
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, record DomainRecord) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO domain_records (domain_id, owner, resolver)
		VALUES ($1, $2, $3)
	`, record.ID.String(), record.Owner.String(), record.Resolver.String())
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, domainID id.DomainID) (DomainRecord, error) {
	var owner, resolver string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT owner, resolver FROM domain_records WHERE domain_id = $1
	`, domainID.String()).Scan(&owner, &resolver)
	if err != nil {
		if err == sql.ErrNoRows {
			return DomainRecord{}, sentinel.ErrNotFound
		}
		return DomainRecord{}, fmt.Errorf("get record: %w", err)
	}
	record := DomainRecord{ID: domainID}
	if record.Owner, err = id.ParseAddress(owner); err != nil {
		return DomainRecord{}, fmt.Errorf("get record: bad owner %q: %w", owner, err)
	}
	if record.Resolver, err = id.ParseAddress(resolver); err != nil {
		return DomainRecord{}, fmt.Errorf("get record: bad resolver %q: %w", resolver, err)
	}
	return record, nil
}

func (s *Postgres) Update(ctx context.Context, record DomainRecord) error {
	res, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		UPDATE domain_records SET owner = $2, resolver = $3 WHERE domain_id = $1
	`, record.ID.String(), record.Owner.String(), record.Resolver.String())
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, domainID id.DomainID) error {
	res, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM domain_records WHERE domain_id = $1
	`, domainID.String())
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) SetOperator(ctx context.Context, owner, operator id.Address, allowed bool) error {
	q := postgres.From(ctx, s.db)
	if allowed {
		_, err := q.ExecContext(ctx, `
			INSERT INTO operators (owner, operator)
			VALUES ($1, $2)
			ON CONFLICT (owner, operator) DO NOTHING
		`, owner.String(), operator.String())
		if err != nil {
			return fmt.Errorf("set operator: %w", err)
		}
		return nil
	}
	_, err := q.ExecContext(ctx, `
		DELETE FROM operators WHERE owner = $1 AND operator = $2
	`, owner.String(), operator.String())
	if err != nil {
		return fmt.Errorf("unset operator: %w", err)
	}
	return nil
}

func (s *Postgres) IsOperator(ctx context.Context, owner, operator id.Address) (bool, error) {
	var one int
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT 1 FROM operators WHERE owner = $1 AND operator = $2
	`, owner.String(), operator.String()).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("is operator: %w", err)
	}
	return true, nil
}
