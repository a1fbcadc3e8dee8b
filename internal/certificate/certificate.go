// Package certificate is the transferable ownership certificate ledger. A
// certificate shares its key with the domain it represents but is owned
// independently of the registry record: transfers here never touch the
// record, and the only reconciliation path is the registrar's reclaim.
package certificate

import (
	"context"

	id "nameledger/pkg/domain"
)

// Certificate is the non-fungible claim on one domain.
type Certificate struct {
	DomainID id.DomainID
	Owner    id.Address
	TokenURI string
}

// Store persists certificates keyed by domain id.
type Store interface {
	Put(ctx context.Context, cert Certificate) error
	Get(ctx context.Context, domainID id.DomainID) (Certificate, error)
	Delete(ctx context.Context, domainID id.DomainID) error
}
