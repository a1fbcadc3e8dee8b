package certificate

import (
	"context"
	"database/sql"
	"fmt"

	"nameledger/internal/platform/postgres"
	id "nameledger/pkg/domain"
	"nameledger/pkg/platform/sentinel"
)

// Postgres persists certificates.
//
// Schema:
//
//	CREATE TABLE certificates (
//	    domain_id TEXT PRIMARY KEY,
//	    owner     TEXT NOT NULL,
//	    token_uri TEXT NOT NULL DEFAULT ''
//	);
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Put(ctx context.Context, cert Certificate) error {
	_, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		INSERT INTO certificates (domain_id, owner, token_uri)
		VALUES ($1, $2, $3)
		ON CONFLICT (domain_id) DO UPDATE SET
			owner = EXCLUDED.owner,
			token_uri = EXCLUDED.token_uri
	`, cert.DomainID.String(), cert.Owner.String(), cert.TokenURI)
	if err != nil {
		return fmt.Errorf("put certificate: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, domainID id.DomainID) (Certificate, error) {
	var owner, tokenURI string
	err := postgres.From(ctx, s.db).QueryRowContext(ctx, `
		SELECT owner, token_uri FROM certificates WHERE domain_id = $1
	`, domainID.String()).Scan(&owner, &tokenURI)
	if err != nil {
		if err == sql.ErrNoRows {
			return Certificate{}, sentinel.ErrNotFound
		}
		return Certificate{}, fmt.Errorf("get certificate: %w", err)
	}
	cert := Certificate{DomainID: domainID, TokenURI: tokenURI}
	if cert.Owner, err = id.ParseAddress(owner); err != nil {
		return Certificate{}, fmt.Errorf("get certificate: bad owner %q: %w", owner, err)
	}
	return cert, nil
}

func (s *Postgres) Delete(ctx context.Context, domainID id.DomainID) error {
	res, err := postgres.From(ctx, s.db).ExecContext(ctx, `
		DELETE FROM certificates WHERE domain_id = $1
	`, domainID.String())
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete certificate: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
