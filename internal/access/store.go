package access

import (
	"context"

	id "nameledger/pkg/domain"
)

// Store persists role membership. Grant is idempotent; Revoke on an absent
// member returns sentinel.ErrNotFound.
type Store interface {
	Grant(ctx context.Context, role Role, addr id.Address) error
	Revoke(ctx context.Context, role Role, addr id.Address) error
	Has(ctx context.Context, role Role, addr id.Address) (bool, error)
	Count(ctx context.Context, role Role) (int, error)
	List(ctx context.Context, role Role) ([]id.Address, error)
}
