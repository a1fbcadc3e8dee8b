// Package registry holds the canonical domain records: who administers a
// name and where it resolves. Record creation and deletion are REGISTRAR-role
// primitives; owners and their operators may only update fields of records
// that already exist. That separation keeps a compromised operator from
// fabricating or destroying domains.
package registry

import (
	"context"

	id "nameledger/pkg/domain"
)

// DomainRecord is the canonical entry for one name. A record exists iff
// Owner is non-zero. The parent link is implicit in how ID was derived.
type DomainRecord struct {
	ID       id.DomainID
	Owner    id.Address
	Resolver id.Address
}

// Exists reports whether the record denotes a live registration.
func (r DomainRecord) Exists() bool {
	return !r.Owner.IsZero()
}

// Store persists records and per-owner operator allow-lists.
type Store interface {
	Create(ctx context.Context, record DomainRecord) error
	Get(ctx context.Context, domainID id.DomainID) (DomainRecord, error)
	Update(ctx context.Context, record DomainRecord) error
	Delete(ctx context.Context, domainID id.DomainID) error

	SetOperator(ctx context.Context, owner, operator id.Address, allowed bool) error
	IsOperator(ctx context.Context, owner, operator id.Address) (bool, error)
}
