// Package registrar orchestrates the full lifecycle of a domain: paid
// registration under the root, reclaim of record ownership by the
// certificate holder, and revocation with stake refund. It owns no state of
// its own; it sequences the registry, certificate, treasury, pricing and
// distribution services and unwinds partial work when a step fails.
package registrar

import (
	"context"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"golang.org/x/crypto/sha3"

	"nameledger/internal/access"
	"nameledger/internal/certificate"
	"nameledger/internal/distribution"
	"nameledger/internal/events"
	"nameledger/internal/pricing"
	"nameledger/internal/registrar/metrics"
	"nameledger/internal/registry"
	"nameledger/internal/treasury"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// Account is the service principal registrar operations run under when they
// call REGISTRAR-gated store operations. Granted the REGISTRAR role at
// bootstrap.
var Account = accountOf("nameledger/registrar")

func accountOf(name string) id.Address {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	var a id.Address
	copy(a[:], h.Sum(nil)[:20])
	return a
}

// RoleChecker is the slice of access control the registrar needs.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, addr id.Address) error
}

// Service coordinates registrations against the underlying feature services.
type Service struct {
	registry     *registry.Service
	certificates *certificate.Service
	treasury     *treasury.Service
	pricing      *pricing.Service
	distribution *distribution.Service
	roles        RoleChecker

	maxLabelLength int

	mu         sync.RWMutex
	rootPricer string

	locks   *opLock
	logger  *slog.Logger
	events  events.Publisher
	metrics *metrics.Metrics
}

// Config carries the registrar's static knobs.
type Config struct {
	// MaxLabelLength bounds label validation; zero means the default.
	MaxLabelLength int
	// RootPricer names the pricing engine used for direct root
	// registrations and for the protocol fee charged on revocation.
	RootPricer string
}

func New(
	reg *registry.Service,
	certs *certificate.Service,
	treas *treasury.Service,
	prices *pricing.Service,
	dist *distribution.Service,
	roles RoleChecker,
	cfg Config,
	logger *slog.Logger,
	pub events.Publisher,
	m *metrics.Metrics,
) (*Service, error) {
	if reg == nil || certs == nil || treas == nil || prices == nil || dist == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "registrar requires all feature services")
	}
	if roles == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "registrar requires a role checker")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = events.NewMemory()
	}
	if cfg.MaxLabelLength <= 0 {
		cfg.MaxLabelLength = id.DefaultMaxLabelLength
	}
	if cfg.RootPricer == "" {
		cfg.RootPricer = pricing.PricerCurve
	}
	return &Service{
		registry:       reg,
		certificates:   certs,
		treasury:       treas,
		pricing:        prices,
		distribution:   dist,
		roles:          roles,
		maxLabelLength: cfg.MaxLabelLength,
		rootPricer:     cfg.RootPricer,
		locks:          newOpLock(),
		logger:         logger.With("component", "registrar"),
		events:         pub,
		metrics:        m,
	}, nil
}

// RootPricer exposes the configured root pricing engine name.
func (s *Service) RootPricer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rootPricer
}

// SetRootPricer switches the engine used for root registrations and
// revocation fees. Admin-only; the name must resolve in the pricer registry.
func (s *Service) SetRootPricer(ctx context.Context, caller id.Address, name string) error {
	if err := s.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
		return err
	}
	if _, err := s.pricing.Pricers().Get(name); err != nil {
		return err
	}
	s.mu.Lock()
	s.rootPricer = name
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "root pricer changed", "pricer", name, "by", caller)
	return nil
}

// RegisterParams is everything a registration needs beyond the caller.
type RegisterParams struct {
	Label    string
	TokenURI string
	Resolver id.Address
	// DistConfig and PaymentConfig, when present, are installed after the
	// mint so the new owner can start selling children immediately.
	DistConfig    *distribution.Config
	PaymentConfig *treasury.PaymentConfig
}

// RegisterRoot registers caller as the owner of a top-level domain, priced by
// the root pricer. When the supplied distribution config selects STAKE the
// price is locked in escrow and refunded (minus a protocol fee) on revoke;
// otherwise the price minus fee goes to the configured beneficiary. The fee
// reaches the zero vault either way.
func (s *Service) RegisterRoot(ctx context.Context, caller id.Address, params RegisterParams) (id.DomainID, error) {
	start := time.Now()
	label := id.NormalizeLabel(params.Label)
	if err := id.ValidateLabel(label, s.maxLabelLength); err != nil {
		s.metrics.IncrementFailure("register_root", string(dErrors.CodeOf(err)))
		return id.DomainID{}, err
	}

	pricer, err := s.pricing.Pricers().Get(s.RootPricer())
	if err != nil {
		s.metrics.IncrementFailure("register_root", string(dErrors.CodeOf(err)))
		return id.DomainID{}, err
	}
	price, fee, err := pricer.PriceAndFee(ctx, id.RootID(), label)
	if err != nil {
		s.metrics.IncrementFailure("register_root", string(dErrors.CodeOf(err)))
		return id.DomainID{}, err
	}

	paymentType := distribution.PaymentDirect
	if params.DistConfig != nil && params.DistConfig.PaymentType == distribution.PaymentStake {
		paymentType = distribution.PaymentStake
	}
	domainID, err := s.register(ctx, registerArgs{
		parent:     id.RootID(),
		label:      label,
		registrant: caller,
		price:      price,
		fee:        fee,
		stake:      paymentType == distribution.PaymentStake,
		params:     params,
	})
	if err != nil {
		s.metrics.IncrementFailure("register_root", string(dErrors.CodeOf(err)))
		return id.DomainID{}, err
	}
	s.metrics.IncrementRegistration("root", string(paymentType))
	s.metrics.ObserveOperation("register_root", time.Since(start))
	return domainID, nil
}

// registerArgs is the resolved form of a registration after pricing and
// access checks: subregistrars build one of these and hand it to register.
type registerArgs struct {
	parent     id.DomainID
	label      string
	registrant id.Address
	price      *big.Int
	fee        *big.Int
	stake      bool
	params     RegisterParams
}

// Register performs a child registration on behalf of a parent's registrar.
// Access and pricing decisions belong to the caller; this method only
// executes the common sequence. Callers must hold the REGISTRAR role.
func (s *Service) Register(ctx context.Context, caller id.Address, parent id.DomainID, registrant id.Address, price, fee *big.Int, stake bool, params RegisterParams) (id.DomainID, error) {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return id.DomainID{}, err
	}
	label := id.NormalizeLabel(params.Label)
	if err := id.ValidateLabel(label, s.maxLabelLength); err != nil {
		return id.DomainID{}, err
	}
	return s.register(ctx, registerArgs{
		parent:     parent,
		label:      label,
		registrant: registrant,
		price:      price,
		fee:        fee,
		stake:      stake,
		params:     params,
	})
}

// register runs the registration sequence under the per-id operation lock:
// create record, take payment, mint certificate, install configs, emit. Any
// failure after payment refunds and unwinds what was already done.
func (s *Service) register(ctx context.Context, args registerArgs) (id.DomainID, error) {
	domainID := id.ChildID(args.parent, args.label)

	if err := s.locks.acquire(domainID); err != nil {
		return id.DomainID{}, err
	}
	defer s.locks.release(domainID)

	existing, err := s.registry.GetRecord(ctx, domainID)
	if err == nil && existing.Exists() {
		return id.DomainID{}, dErrors.New(dErrors.CodeAlreadyExists, "domain is already registered")
	}
	if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return id.DomainID{}, err
	}

	record := registry.DomainRecord{
		ID:       domainID,
		Owner:    args.registrant,
		Resolver: args.params.Resolver,
	}
	if err := s.registry.CreateRecord(ctx, Account, record); err != nil {
		return id.DomainID{}, err
	}
	unwindRecord := func() {
		if delErr := s.registry.DeleteRecord(ctx, Account, domainID); delErr != nil {
			s.logger.ErrorContext(ctx, "registration unwind failed, record orphaned",
				"domain_id", domainID, "error", delErr)
		}
	}

	if err := s.charge(ctx, args, domainID); err != nil {
		unwindRecord()
		return id.DomainID{}, err
	}
	unwindPayment := func() {
		if args.price == nil || args.price.Sign() == 0 {
			return
		}
		if !args.stake {
			// Direct payments left the payer's wallet for good; the
			// compensation story for failed mints is the refund inside
			// ChargeDirect, which already ran. Nothing more to undo here
			// beyond logging loudly.
			s.logger.ErrorContext(ctx, "post-payment failure on direct registration",
				"domain_id", domainID)
			return
		}
		if unstakeErr := s.treasury.RefundStake(ctx, domainID, args.registrant, args.fee); unstakeErr != nil {
			s.logger.ErrorContext(ctx, "registration unwind failed, stake orphaned",
				"domain_id", domainID, "error", unstakeErr)
		}
	}

	if err := s.certificates.Mint(ctx, Account, domainID, args.registrant, args.params.TokenURI); err != nil {
		unwindPayment()
		unwindRecord()
		return id.DomainID{}, err
	}

	if args.params.DistConfig != nil {
		if err := s.distribution.Seed(ctx, domainID, *args.params.DistConfig); err != nil {
			s.logger.WarnContext(ctx, "distribution config not installed at registration",
				"domain_id", domainID, "error", err)
		}
	}
	if args.params.PaymentConfig != nil {
		if err := s.treasury.SetPaymentConfig(ctx, Account, domainID, *args.params.PaymentConfig); err != nil {
			s.logger.WarnContext(ctx, "payment config not installed at registration",
				"domain_id", domainID, "error", err)
		}
	}

	priceStr, feeStr := "0", "0"
	if args.price != nil {
		priceStr = args.price.String()
	}
	if args.fee != nil {
		feeStr = args.fee.String()
	}
	s.logger.InfoContext(ctx, "domain registered",
		"domain_id", domainID,
		"parent_id", args.parent,
		"label", args.label,
		"registrant", args.registrant,
		"price", priceStr,
		"staked", args.stake,
	)
	s.events.Emit(ctx, events.Event{
		Type: events.TypeDomainRegistered,
		Key:  domainID.String(),
		Payload: events.DomainRegistered{
			ParentID:   args.parent,
			DomainID:   domainID,
			Label:      args.label,
			TokenURI:   args.params.TokenURI,
			Registrant: args.registrant,
			Resolver:   args.params.Resolver,
			Price:      priceStr,
			Fee:        feeStr,
		},
	})
	return domainID, nil
}

// charge routes payment according to the registration's payment mode. DIRECT
// registrations pay the parent's beneficiary; STAKE registrations lock the
// full price in escrow. A zero price is free.
func (s *Service) charge(ctx context.Context, args registerArgs, domainID id.DomainID) error {
	if args.price == nil || args.price.Sign() == 0 {
		return nil
	}
	payment, err := s.treasury.PaymentConfigFor(ctx, args.parent)
	if err != nil {
		return err
	}
	if !payment.IsSet() {
		return dErrors.New(dErrors.CodeConfigNotSet, "parent has no payment config")
	}
	if args.stake {
		// Stakes lock the full price and pay the fee to the vault up front;
		// the protocol fee is additionally taken at unstake.
		return s.treasury.StakeForDomain(ctx, domainID, args.registrant, args.price, args.fee, payment.Token)
	}
	return s.treasury.ChargeDirect(ctx, domainID, args.registrant, args.price, args.fee, payment.Token, payment.Beneficiary)
}

// Reclaim re-points record ownership at the certificate holder. This is the
// only path by which a diverged record owner and certificate owner converge.
func (s *Service) Reclaim(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	start := time.Now()
	if err := s.locks.acquire(domainID); err != nil {
		return err
	}
	defer s.locks.release(domainID)

	holder, err := s.certificates.OwnerOf(ctx, domainID)
	if err != nil {
		s.metrics.IncrementFailure("reclaim", string(dErrors.CodeOf(err)))
		return err
	}
	if holder != caller {
		s.metrics.IncrementFailure("reclaim", string(dErrors.CodeNotCertificateOwner))
		return dErrors.New(dErrors.CodeNotCertificateOwner, "only the certificate holder may reclaim")
	}
	if err := s.registry.SetOwnerAsRegistrar(ctx, Account, domainID, caller); err != nil {
		s.metrics.IncrementFailure("reclaim", string(dErrors.CodeOf(err)))
		return err
	}

	s.logger.InfoContext(ctx, "domain reclaimed", "domain_id", domainID, "owner", caller)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeDomainReclaimed,
		Key:     domainID.String(),
		Payload: events.DomainReclaimed{DomainID: domainID, Owner: caller},
	})
	s.metrics.IncrementReclaim()
	s.metrics.ObserveOperation("reclaim", time.Since(start))
	return nil
}

// Revoke tears a domain down: burns the certificate, deletes the record,
// refunds any stake minus the protocol fee, and resets distribution and
// payment config so a future re-registration starts clean. The caller must
// hold BOTH the record and the certificate.
func (s *Service) Revoke(ctx context.Context, caller id.Address, domainID id.DomainID) (*big.Int, error) {
	start := time.Now()
	if err := s.locks.acquire(domainID); err != nil {
		return nil, err
	}
	defer s.locks.release(domainID)

	record, err := s.registry.GetRecord(ctx, domainID)
	if err != nil {
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(err)))
		return nil, err
	}
	holder, err := s.certificates.OwnerOf(ctx, domainID)
	if err != nil {
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(err)))
		return nil, err
	}
	if record.Owner != caller || holder != caller {
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeNotBothOwner))
		return nil, dErrors.New(dErrors.CodeNotBothOwner, "revocation requires both record and certificate ownership")
	}

	refunded := big.NewInt(0)
	_, stakeErr := s.treasury.Staked(ctx, domainID)
	switch {
	case stakeErr == nil:
		protocolFee, feeErr := s.revocationFee(ctx, domainID)
		if feeErr != nil {
			s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(feeErr)))
			return nil, feeErr
		}
		refund, unstakeErr := s.treasury.Unstake(ctx, domainID, caller, protocolFee)
		if unstakeErr != nil {
			s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(unstakeErr)))
			return nil, unstakeErr
		}
		refunded = refund
	case dErrors.HasCode(stakeErr, dErrors.CodeNothingStaked):
		// Direct-paid or free domain; nothing held in escrow.
	default:
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(stakeErr)))
		return nil, stakeErr
	}

	if err := s.certificates.Burn(ctx, Account, domainID); err != nil {
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(err)))
		return nil, err
	}
	if err := s.registry.DeleteRecord(ctx, Account, domainID); err != nil {
		s.metrics.IncrementFailure("revoke", string(dErrors.CodeOf(err)))
		return nil, err
	}
	if err := s.distribution.ResetOnRevoke(ctx, domainID); err != nil {
		s.logger.WarnContext(ctx, "distribution reset failed on revoke",
			"domain_id", domainID, "error", err)
	}
	if err := s.treasury.ClearPaymentConfig(ctx, domainID); err != nil {
		s.logger.WarnContext(ctx, "payment config clear failed on revoke",
			"domain_id", domainID, "error", err)
	}
	if err := s.pricing.ClearConfigs(ctx, domainID); err != nil {
		s.logger.WarnContext(ctx, "price config clear failed on revoke",
			"domain_id", domainID, "error", err)
	}

	s.logger.InfoContext(ctx, "domain revoked",
		"domain_id", domainID, "owner", caller, "refunded", refunded.String())
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeDomainRevoked,
		Key:     domainID.String(),
		Payload: events.DomainRevoked{DomainID: domainID, Owner: caller, Refunded: refunded.String()},
	})
	s.metrics.IncrementRevocation()
	s.metrics.ObserveOperation("revoke", time.Since(start))
	return refunded, nil
}

// revocationFee derives the protocol fee kept out of a stake refund. The fee
// is recomputed from the stored stake through the root pricing engine so it
// needs neither the original label nor the parent's current config.
func (s *Service) revocationFee(ctx context.Context, domainID id.DomainID) (*big.Int, error) {
	stake, err := s.treasury.Staked(ctx, domainID)
	if err != nil {
		return nil, err
	}
	pricer, err := s.pricing.Pricers().Get(s.RootPricer())
	if err != nil {
		return nil, err
	}
	fee, err := pricer.FeeForPrice(ctx, id.RootID(), stake.Amount)
	if err != nil {
		// A cleared root config must not strand stakes in escrow.
		if dErrors.HasCode(err, dErrors.CodeConfigNotSet) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return fee, nil
}
