// Package subregistrar sells subdomains under already-registered parents.
// Each registration is gated by the parent's distribution config: the access
// type decides who may buy, the pricer names which engine prices the label,
// and the payment type decides whether the price is staked in escrow or paid
// straight to the parent's beneficiary. The actual registration sequence is
// delegated to the registrar.
package subregistrar

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/sha3"

	"nameledger/internal/distribution"
	"nameledger/internal/pricing"
	"nameledger/internal/registrar"
	"nameledger/internal/registrar/metrics"
	"nameledger/internal/registry"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// Account is the service principal subdomain registrations run under.
// Granted the REGISTRAR role at bootstrap.
var Account = accountOf("nameledger/subregistrar")

func accountOf(name string) id.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	var a id.Address
	copy(a[:], h.Sum(nil)[:20])
	return a
}

// Service checks distribution policy and prices, then hands off to the
// registrar's shared registration sequence.
type Service struct {
	registrar    *registrar.Service
	registry     *registry.Service
	distribution *distribution.Service
	pricing      *pricing.Service

	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(reg *registrar.Service, records *registry.Service, dist *distribution.Service, prices *pricing.Service, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if reg == nil || records == nil || dist == nil || prices == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "subregistrar requires registrar, registry, distribution and pricing services")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registrar:    reg,
		registry:     records,
		distribution: dist,
		pricing:      prices,
		logger:       logger.With("component", "subregistrar"),
		metrics:      m,
	}, nil
}

// RegisterSubdomain registers caller as the owner of label under parent,
// subject to the parent's distribution policy. The parent must exist, must
// not be locked, and when mintlisted the caller must be on the list.
func (s *Service) RegisterSubdomain(ctx context.Context, caller id.Address, parent id.DomainID, params registrar.RegisterParams) (id.DomainID, error) {
	start := time.Now()

	domainID, err := s.registerSubdomain(ctx, caller, parent, params)
	if err != nil {
		s.metrics.IncrementFailure("register_sub", string(dErrors.CodeOf(err)))
		return id.DomainID{}, err
	}
	s.metrics.ObserveOperation("register_sub", time.Since(start))
	return domainID, nil
}

func (s *Service) registerSubdomain(ctx context.Context, caller id.Address, parent id.DomainID, params registrar.RegisterParams) (id.DomainID, error) {
	parentRecord, err := s.registry.GetRecord(ctx, parent)
	if err != nil {
		return id.DomainID{}, err
	}
	if !parentRecord.Exists() {
		return id.DomainID{}, dErrors.New(dErrors.CodeNotFound, "parent domain is not registered")
	}

	cfg, err := s.distribution.ConfigFor(ctx, parent)
	if err != nil {
		return id.DomainID{}, err
	}

	// The parent's owner (and their operators) bypass access gating on
	// their own domain; everyone else is subject to the configured policy.
	privileged, err := s.registry.IsOwnerOrOperator(ctx, parent, caller)
	if err != nil {
		return id.DomainID{}, err
	}
	if !privileged {
		if err := s.checkAccess(ctx, cfg, parent, caller); err != nil {
			return id.DomainID{}, err
		}
	}

	label := id.NormalizeLabel(params.Label)
	pricer, err := s.pricing.Pricers().Get(cfg.Pricer)
	if err != nil {
		return id.DomainID{}, err
	}
	price, fee, err := pricer.PriceAndFee(ctx, parent, label)
	if err != nil {
		return id.DomainID{}, err
	}

	stake := cfg.PaymentType == distribution.PaymentStake
	domainID, err := s.registrar.Register(ctx, Account, parent, caller, price, fee, stake, params)
	if err != nil {
		return id.DomainID{}, err
	}

	s.logger.InfoContext(ctx, "subdomain registered",
		"domain_id", domainID,
		"parent_id", parent,
		"registrant", caller,
		"payment_type", cfg.PaymentType,
	)
	s.metrics.IncrementRegistration("sub", string(cfg.PaymentType))
	return domainID, nil
}

func (s *Service) checkAccess(ctx context.Context, cfg distribution.Config, parent id.DomainID, caller id.Address) error {
	switch cfg.AccessType {
	case distribution.AccessOpen:
		return nil
	case distribution.AccessMintlist:
		listed, err := s.distribution.IsMintlisted(ctx, parent, caller)
		if err != nil {
			return err
		}
		if !listed {
			return dErrors.New(dErrors.CodeNotMintlisted, "caller is not on the parent's mintlist")
		}
		return nil
	default:
		return dErrors.New(dErrors.CodeDistributionLocked, "parent is not distributing subdomains")
	}
}
