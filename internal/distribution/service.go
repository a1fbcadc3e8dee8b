package distribution

import (
	"context"
	"fmt"
	"log/slog"

	"nameledger/internal/access"
	"nameledger/internal/events"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// OwnershipChecker is the slice of the registry needed to gate policy
// mutation.
type OwnershipChecker interface {
	IsOwnerOrOperator(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error)
}

// RoleChecker is the slice of access control needed for registrar and admin
// bypasses.
type RoleChecker interface {
	HasRole(ctx context.Context, role access.Role, addr id.Address) (bool, error)
}

// Service owns distribution policy and mintlists. Setters are gated on the
// domain's name-owner, with a REGISTRAR bypass for registrar-internal seeding
// and resets, and an ADMIN bypass on the emergency clear-and-lock.
type Service struct {
	configs   ConfigStore
	mintlists MintlistStore
	ownership OwnershipChecker
	roles     RoleChecker
	logger    *slog.Logger
	events    events.Publisher
}

func New(configs ConfigStore, mintlists MintlistStore, ownership OwnershipChecker, roles RoleChecker, logger *slog.Logger, pub events.Publisher) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = events.NewMemory()
	}
	if configs == nil || mintlists == nil {
		return nil, fmt.Errorf("distribution stores are required")
	}
	if ownership == nil || roles == nil {
		return nil, fmt.Errorf("ownership and role checkers are required")
	}
	return &Service{
		configs:   configs,
		mintlists: mintlists,
		ownership: ownership,
		roles:     roles,
		logger:    logger,
		events:    pub,
	}, nil
}

// ConfigFor reads a domain's policy, returning the locked default when none
// was ever set.
func (s *Service) ConfigFor(ctx context.Context, domainID id.DomainID) (Config, error) {
	cfg, err := s.configs.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return DefaultConfig(), nil
		}
		return Config{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read distribution config")
	}
	return cfg, nil
}

// SetConfig replaces a domain's whole policy.
func (s *Service) SetConfig(ctx context.Context, caller id.Address, domainID id.DomainID, cfg Config) error {
	if err := s.authorize(ctx, caller, domainID); err != nil {
		return err
	}
	cfg.IsSet = true
	return s.put(ctx, domainID, cfg)
}

// SetPricer updates only the pricer selection.
func (s *Service) SetPricer(ctx context.Context, caller id.Address, domainID id.DomainID, pricer string) error {
	return s.mutate(ctx, caller, domainID, func(cfg *Config) { cfg.Pricer = pricer })
}

// SetPaymentType updates only the payment type.
func (s *Service) SetPaymentType(ctx context.Context, caller id.Address, domainID id.DomainID, pt PaymentType) error {
	return s.mutate(ctx, caller, domainID, func(cfg *Config) { cfg.PaymentType = pt })
}

// SetAccessType updates only the access type.
func (s *Service) SetAccessType(ctx context.Context, caller id.Address, domainID id.DomainID, at AccessType) error {
	return s.mutate(ctx, caller, domainID, func(cfg *Config) { cfg.AccessType = at })
}

func (s *Service) mutate(ctx context.Context, caller id.Address, domainID id.DomainID, apply func(*Config)) error {
	if err := s.authorize(ctx, caller, domainID); err != nil {
		return err
	}
	cfg, err := s.ConfigFor(ctx, domainID)
	if err != nil {
		return err
	}
	apply(&cfg)
	cfg.IsSet = true
	return s.put(ctx, domainID, cfg)
}

// Seed installs a policy without an ownership check; the registrar calls it
// while the record is being created, before any owner exists to ask.
func (s *Service) Seed(ctx context.Context, domainID id.DomainID, cfg Config) error {
	return s.put(ctx, domainID, cfg)
}

// ResetOnRevoke restores the locked default and empties the mintlist.
func (s *Service) ResetOnRevoke(ctx context.Context, domainID id.DomainID) error {
	if err := s.configs.Put(ctx, domainID, DefaultConfig()); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset distribution config")
	}
	if err := s.mintlists.Clear(ctx, domainID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear mintlist")
	}
	return nil
}

// UpdateMintlist applies parallel add/remove decisions: addrs[i] is allowed
// when allowed[i] is true, removed otherwise.
func (s *Service) UpdateMintlist(ctx context.Context, caller id.Address, domainID id.DomainID, addrs []id.Address, allowed []bool) error {
	if len(addrs) != len(allowed) {
		return dErrors.New(dErrors.CodeLengthMismatch, "addresses and allowed flags differ in length")
	}
	if err := s.authorize(ctx, caller, domainID); err != nil {
		return err
	}
	// Entries apply in input order, so when an address appears more than
	// once its last decision is the one that sticks.
	decisions := make(map[id.Address]bool, len(addrs))
	order := make([]id.Address, 0, len(addrs))
	for i, a := range addrs {
		if a.IsZero() {
			return dErrors.New(dErrors.CodeBadRequest, "mintlist entries must be non-zero addresses")
		}
		if _, seen := decisions[a]; !seen {
			order = append(order, a)
		}
		decisions[a] = allowed[i]
	}
	var adds, removes []id.Address
	for _, a := range order {
		if decisions[a] {
			adds = append(adds, a)
		} else {
			removes = append(removes, a)
		}
	}
	if err := s.mintlists.Add(ctx, domainID, adds); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update mintlist")
	}
	if err := s.mintlists.Remove(ctx, domainID, removes); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update mintlist")
	}

	s.logger.InfoContext(ctx, "mintlist updated",
		"domain_id", domainID,
		"added", len(adds),
		"removed", len(removes),
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeMintlistUpdated,
		Key:     domainID.String(),
		Payload: events.MintlistUpdated{DomainID: domainID, Added: adds, Removed: removes},
	})
	return nil
}

// ClearMintlist empties the allow-list without touching the access type.
func (s *Service) ClearMintlist(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	if err := s.authorize(ctx, caller, domainID); err != nil {
		return err
	}
	if err := s.mintlists.Clear(ctx, domainID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear mintlist")
	}
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeMintlistUpdated,
		Key:     domainID.String(),
		Payload: events.MintlistUpdated{DomainID: domainID, Cleared: true},
	})
	return nil
}

// ClearMintlistAndLock is the emergency brake: empty the allow-list and force
// the domain LOCKED in one call. ADMIN may pull it on any domain.
func (s *Service) ClearMintlistAndLock(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	isAdmin, err := s.roles.HasRole(ctx, access.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !isAdmin {
		if err := s.authorize(ctx, caller, domainID); err != nil {
			return err
		}
	}
	if err := s.mintlists.Clear(ctx, domainID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear mintlist")
	}
	cfg, err := s.ConfigFor(ctx, domainID)
	if err != nil {
		return err
	}
	cfg.AccessType = AccessLocked
	cfg.IsSet = true
	if err := s.put(ctx, domainID, cfg); err != nil {
		return err
	}
	s.logger.WarnContext(ctx, "mintlist cleared and domain locked",
		"domain_id", domainID,
		"caller", caller,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeMintlistUpdated,
		Key:     domainID.String(),
		Payload: events.MintlistUpdated{DomainID: domainID, Cleared: true, Locked: true},
	})
	return nil
}

// IsMintlisted reports whether addr may register under a MINTLIST domain.
func (s *Service) IsMintlisted(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error) {
	ok, err := s.mintlists.Contains(ctx, domainID, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read mintlist")
	}
	return ok, nil
}

// Mintlist returns the full allow-list for introspection.
func (s *Service) Mintlist(ctx context.Context, domainID id.DomainID) ([]id.Address, error) {
	members, err := s.mintlists.List(ctx, domainID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list mintlist")
	}
	return members, nil
}

func (s *Service) put(ctx context.Context, domainID id.DomainID, cfg Config) error {
	if err := s.configs.Put(ctx, domainID, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store distribution config")
	}
	s.events.Emit(ctx, events.Event{
		Type: events.TypeDistributionConfigSet,
		Key:  domainID.String(),
		Payload: events.DistributionConfigSet{
			DomainID:    domainID,
			AccessType:  string(cfg.AccessType),
			PaymentType: string(cfg.PaymentType),
			Pricer:      cfg.Pricer,
		},
	})
	return nil
}

func (s *Service) authorize(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	isRegistrar, err := s.roles.HasRole(ctx, access.RoleRegistrar, caller)
	if err != nil {
		return err
	}
	if isRegistrar {
		return nil
	}
	ok, err := s.ownership.IsOwnerOrOperator(ctx, domainID, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller does not own the domain")
	}
	return nil
}
