package certificate

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

// RoleChecker is the slice of access control the ledger needs.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, addr id.Address) error
}

// Service enforces the ledger rules: mint and burn are REGISTRAR primitives,
// transfer belongs to the current certificate holder.
type Service struct {
	store  Store
	roles  RoleChecker
	logger *slog.Logger
	events events.Publisher
}

func New(store Store, roles RoleChecker, logger *slog.Logger, pub events.Publisher) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("certificate store is required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role checker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pub == nil {
		pub = events.NewMemory()
	}
	return &Service{store: store, roles: roles, logger: logger, events: pub}, nil
}

// Mint issues the certificate for a freshly registered domain. REGISTRAR-only.
func (s *Service) Mint(ctx context.Context, caller id.Address, domainID id.DomainID, owner id.Address, tokenURI string) error {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return err
	}
	if owner.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "certificate owner is required")
	}
	if _, err := s.store.Get(ctx, domainID); err == nil {
		return dErrors.New(dErrors.CodeAlreadyExists, "certificate already minted")
	} else if err != sentinel.ErrNotFound {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read certificate")
	}
	if err := s.store.Put(ctx, Certificate{DomainID: domainID, Owner: owner, TokenURI: tokenURI}); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint certificate")
	}
	s.logger.DebugContext(ctx, "certificate minted",
		"domain_id", domainID,
		"owner", owner,
	)
	return nil
}

// Burn destroys the certificate during revocation. REGISTRAR-only.
func (s *Service) Burn(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, domainID); err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "certificate does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to burn certificate")
	}
	s.logger.DebugContext(ctx, "certificate burned", "domain_id", domainID)
	return nil
}

// Transfer moves the certificate to a new holder. The registry record is
// deliberately untouched; owners diverge until someone reclaims.
func (s *Service) Transfer(ctx context.Context, caller id.Address, domainID id.DomainID, to id.Address) error {
	if to.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "transfer recipient is required")
	}
	cert, err := s.Get(ctx, domainID)
	if err != nil {
		return err
	}
	if cert.Owner != caller {
		return dErrors.New(dErrors.CodeNotCertificateOwner, "caller does not hold the certificate")
	}
	from := cert.Owner
	cert.Owner = to
	if err := s.store.Put(ctx, cert); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer certificate")
	}

	s.logger.InfoContext(ctx, "certificate transferred",
		"domain_id", domainID,
		"from", from,
		"to", to,
	)
	s.events.Emit(ctx, events.Event{
		Type:    events.TypeCertificateTransferred,
		Key:     domainID.String(),
		Payload: events.CertificateTransferred{DomainID: domainID, From: from, To: to},
	})
	return nil
}

// Get reads a certificate, failing not_found when absent.
func (s *Service) Get(ctx context.Context, domainID id.DomainID) (Certificate, error) {
	cert, err := s.store.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return Certificate{}, dErrors.New(dErrors.CodeNotFound, "certificate does not exist")
		}
		return Certificate{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read certificate")
	}
	return cert, nil
}

// OwnerOf returns the current certificate holder.
func (s *Service) OwnerOf(ctx context.Context, domainID id.DomainID) (id.Address, error) {
	cert, err := s.Get(ctx, domainID)
	if err != nil {
		return id.ZeroAddress, err
	}
	return cert.Owner, nil
}
