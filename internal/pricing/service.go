package pricing

import (
	"context"
	"fmt"
	"log/slog"

	"nameledger/internal/events"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// OwnershipChecker is the slice of the registry the pricing service needs to
// gate config mutation.
type OwnershipChecker interface {
	IsOwnerOrOperator(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error)
}

// Service owns price config mutation. Configs belong to the parent domain's
// name-owner; a REGISTRAR bypass exists for bootstrap and registrar-internal
// resets.
type Service struct {
	curve     *CurvePricer
	fixed     *FixedPricer
	registry  *Registry
	ownership OwnershipChecker
	logger    *slog.Logger
	events    events.Publisher
}

func NewService(curve *CurvePricer, fixed *FixedPricer, ownership OwnershipChecker, logger *slog.Logger, pub events.Publisher) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = events.NewMemory()
	}
	if curve == nil || fixed == nil {
		return nil, fmt.Errorf("both pricers are required")
	}
	if ownership == nil {
		return nil, fmt.Errorf("ownership checker is required")
	}
	return &Service{
		curve:     curve,
		fixed:     fixed,
		registry:  NewRegistry(curve, fixed),
		ownership: ownership,
		logger:    logger,
		events:    pub,
	}, nil
}

// Pricers exposes the name-keyed registry for registrar wiring.
func (s *Service) Pricers() *Registry { return s.registry }

// SetCurveConfig sets parent's curve config on behalf of caller.
func (s *Service) SetCurveConfig(ctx context.Context, caller id.Address, parent id.DomainID, cfg CurveConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, parent); err != nil {
		return err
	}
	cfg.IsSet = true
	if err := s.curve.configs.Set(ctx, parent, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store curve config")
	}
	s.logger.InfoContext(ctx, "curve price config set",
		"domain_id", parent,
		"caller", caller,
		"max_price", cfg.MaxPrice,
		"min_price", cfg.MinPrice,
		"base_length", cfg.BaseLength,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypePriceConfigSet,
		Key:     parent.String(),
		Payload: events.PriceConfigSet{DomainID: parent, Pricer: PricerCurve},
	})
	return nil
}

// SetFixedConfig sets parent's fixed config on behalf of caller.
func (s *Service) SetFixedConfig(ctx context.Context, caller id.Address, parent id.DomainID, cfg FixedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.authorize(ctx, caller, parent); err != nil {
		return err
	}
	cfg.IsSet = true
	if err := s.fixed.configs.Set(ctx, parent, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store fixed config")
	}
	s.logger.InfoContext(ctx, "fixed price config set",
		"domain_id", parent,
		"caller", caller,
		"price", cfg.Price,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypePriceConfigSet,
		Key:     parent.String(),
		Payload: events.PriceConfigSet{DomainID: parent, Pricer: PricerFixed},
	})
	return nil
}

// SeedCurveConfig installs a config without an ownership check. Used once at
// bootstrap for the root id and by the registrar when it resets revoked
// domains.
func (s *Service) SeedCurveConfig(ctx context.Context, parent id.DomainID, cfg CurveConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.IsSet = true
	if err := s.curve.configs.Set(ctx, parent, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store curve config")
	}
	return nil
}

// ClearConfigs drops both engines' configs for a domain, part of revocation
// cleanup.
func (s *Service) ClearConfigs(ctx context.Context, parent id.DomainID) error {
	if err := s.curve.configs.Delete(ctx, parent); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear curve config")
	}
	if err := s.fixed.configs.Delete(ctx, parent); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear fixed config")
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, caller id.Address, parent id.DomainID) error {
	ok, err := s.ownership.IsOwnerOrOperator(ctx, parent, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller does not own the parent domain")
	}
	return nil
}
