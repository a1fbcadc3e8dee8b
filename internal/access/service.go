package access

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"nameledger/internal/events"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// Service enforces the role-granting matrix: GOVERNOR manages GOVERNOR and
// ADMIN membership, ADMIN manages REGISTRAR membership. Revoking the last
// governor is refused so the system can never lock itself out.
type Service struct {
	store  Store
	logger *slog.Logger
	events events.Publisher
	seeded atomic.Bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(pub events.Publisher) Option {
	return func(s *Service) { s.events = pub }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("access store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
		events: events.NewMemory(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Seed applies the bootstrap membership exactly once. A second call fails so
// deployment tooling cannot silently re-run initialization. Registrars are
// the derived service principals registrar components act under.
func (s *Service) Seed(ctx context.Context, governors, admins, registrars []id.Address) error {
	if !s.seeded.CompareAndSwap(false, true) {
		return dErrors.New(dErrors.CodeAlreadyInitialized, "access control already initialized")
	}
	if len(governors) == 0 {
		s.seeded.Store(false)
		return dErrors.New(dErrors.CodeInvalidState, "at least one governor is required")
	}
	for _, g := range governors {
		if err := s.store.Grant(ctx, RoleGovernor, g); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed governor")
		}
	}
	for _, a := range admins {
		if err := s.store.Grant(ctx, RoleAdmin, a); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed admin")
		}
	}
	for _, r := range registrars {
		if err := s.store.Grant(ctx, RoleRegistrar, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed registrar")
		}
	}
	s.logger.InfoContext(ctx, "access control seeded",
		"governors", len(governors),
		"admins", len(admins),
		"registrars", len(registrars),
	)
	return nil
}

// HasRole reports membership without failing.
func (s *Service) HasRole(ctx context.Context, role Role, addr id.Address) (bool, error) {
	ok, err := s.store.Has(ctx, role, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read role membership")
	}
	return ok, nil
}

// CheckRole fails with unauthorized when addr lacks the role.
func (s *Service) CheckRole(ctx context.Context, role Role, addr id.Address) error {
	ok, err := s.HasRole(ctx, role, addr)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, fmt.Sprintf("caller lacks role %s", role))
	}
	return nil
}

// GrantRole adds addr to role on behalf of caller, enforcing the granting
// matrix.
func (s *Service) GrantRole(ctx context.Context, caller id.Address, role Role, addr id.Address) error {
	if addr.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "grantee address is required")
	}
	if err := s.CheckRole(ctx, grantingRole(role), caller); err != nil {
		return err
	}
	if err := s.store.Grant(ctx, role, addr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to grant role")
	}

	s.logger.InfoContext(ctx, "role granted",
		"role", role,
		"address", addr,
		"grantor", caller,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeRoleGranted,
		Key:     string(role),
		Payload: events.RoleGranted{Role: string(role), Address: addr, Grantor: caller},
	})
	return nil
}

// RevokeRole removes addr from role on behalf of caller. The last governor
// cannot be revoked.
func (s *Service) RevokeRole(ctx context.Context, caller id.Address, role Role, addr id.Address) error {
	if err := s.CheckRole(ctx, grantingRole(role), caller); err != nil {
		return err
	}
	if role == RoleGovernor {
		n, err := s.store.Count(ctx, RoleGovernor)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count governors")
		}
		if n <= 1 {
			return dErrors.New(dErrors.CodeInvalidState, "cannot revoke the last governor")
		}
	}
	if err := s.store.Revoke(ctx, role, addr); err != nil {
		return dErrors.Wrap(err, dErrors.CodeNotFound, "address does not hold role")
	}

	s.logger.InfoContext(ctx, "role revoked",
		"role", role,
		"address", addr,
		"revoker", caller,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeRoleRevoked,
		Key:     string(role),
		Payload: events.RoleRevoked{Role: string(role), Address: addr, Revoker: caller},
	})
	return nil
}

// ListRole returns the current membership, for admin introspection.
func (s *Service) ListRole(ctx context.Context, role Role) ([]id.Address, error) {
	members, err := s.store.List(ctx, role)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role membership")
	}
	return members, nil
}

// grantingRole returns the role a caller must hold to manage membership of
// role.
func grantingRole(role Role) Role {
	if role == RoleRegistrar {
		return RoleAdmin
	}
	return RoleGovernor
}
