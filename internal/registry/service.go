package registry

import (
	"context"
	"fmt"
	"log/slog"

	"nameledger/internal/access"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// RoleChecker is the slice of access control the registry needs.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, addr id.Address) error
}

// Service gates record mutation. Create/Delete require the REGISTRAR role;
// owner and resolver updates require the current owner or one of their
// operators.
type Service struct {
	store  Store
	roles  RoleChecker
	logger *slog.Logger
}

func New(store Store, roles RoleChecker, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("registry store is required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role checker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, roles: roles, logger: logger}, nil
}

// CreateRecord registers a new record. REGISTRAR-only.
func (s *Service) CreateRecord(ctx context.Context, caller id.Address, record DomainRecord) error {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return err
	}
	if record.Owner.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "record owner is required")
	}
	if err := s.store.Create(ctx, record); err != nil {
		if err == sentinel.ErrConflict {
			return dErrors.New(dErrors.CodeAlreadyExists, "domain is already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create record")
	}
	s.logger.DebugContext(ctx, "record created",
		"domain_id", record.ID,
		"owner", record.Owner,
	)
	return nil
}

// DeleteRecord removes a record entirely. REGISTRAR-only.
func (s *Service) DeleteRecord(ctx context.Context, caller id.Address, domainID id.DomainID) error {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, domainID); err != nil {
		if err == sentinel.ErrNotFound {
			return dErrors.New(dErrors.CodeNotFound, "domain record does not exist")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete record")
	}
	s.logger.DebugContext(ctx, "record deleted", "domain_id", domainID)
	return nil
}

// SetOwnerAsRegistrar rewrites the owner field without an ownership check;
// reclaim authorization (certificate possession) is the registrar's job.
func (s *Service) SetOwnerAsRegistrar(ctx context.Context, caller id.Address, domainID id.DomainID, newOwner id.Address) error {
	if err := s.roles.CheckRole(ctx, access.RoleRegistrar, caller); err != nil {
		return err
	}
	return s.setOwner(ctx, domainID, newOwner)
}

// GetRecord reads a record, failing not_found for absent domains.
func (s *Service) GetRecord(ctx context.Context, domainID id.DomainID) (DomainRecord, error) {
	record, err := s.store.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return DomainRecord{}, dErrors.New(dErrors.CodeNotFound, "domain record does not exist")
		}
		return DomainRecord{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read record")
	}
	return record, nil
}

// UpdateOwner sets a new owner on an existing record. Owner-or-operator only.
func (s *Service) UpdateOwner(ctx context.Context, caller id.Address, domainID id.DomainID, newOwner id.Address) error {
	if newOwner.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "new owner is required")
	}
	if err := s.authorizeOwnerOrOperator(ctx, domainID, caller); err != nil {
		return err
	}
	return s.setOwner(ctx, domainID, newOwner)
}

// UpdateResolver sets a new resolver on an existing record. Owner-or-operator
// only.
func (s *Service) UpdateResolver(ctx context.Context, caller id.Address, domainID id.DomainID, newResolver id.Address) error {
	if err := s.authorizeOwnerOrOperator(ctx, domainID, caller); err != nil {
		return err
	}
	record, err := s.GetRecord(ctx, domainID)
	if err != nil {
		return err
	}
	record.Resolver = newResolver
	if err := s.store.Update(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update resolver")
	}
	return nil
}

// SetOperator flags operator as allowed (or not) to act for every domain
// owner currently holds. The grant is per-owner, not per-domain.
func (s *Service) SetOperator(ctx context.Context, owner, operator id.Address, allowed bool) error {
	if operator.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "operator address is required")
	}
	if err := s.store.SetOperator(ctx, owner, operator, allowed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set operator")
	}
	s.logger.InfoContext(ctx, "operator updated",
		"owner", owner,
		"operator", operator,
		"allowed", allowed,
	)
	return nil
}

// IsOwnerOrOperator reports whether addr may act for domainID's owner.
func (s *Service) IsOwnerOrOperator(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error) {
	record, err := s.store.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read record")
	}
	if record.Owner == addr {
		return true, nil
	}
	ok, err := s.store.IsOperator(ctx, record.Owner, addr)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read operators")
	}
	return ok, nil
}

func (s *Service) setOwner(ctx context.Context, domainID id.DomainID, newOwner id.Address) error {
	record, err := s.GetRecord(ctx, domainID)
	if err != nil {
		return err
	}
	record.Owner = newOwner
	if err := s.store.Update(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update owner")
	}
	return nil
}

func (s *Service) authorizeOwnerOrOperator(ctx context.Context, domainID id.DomainID, caller id.Address) error {
	ok, err := s.IsOwnerOrOperator(ctx, domainID, caller)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is neither owner nor operator")
	}
	return nil
}
