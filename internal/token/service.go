package token

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"nameledger/internal/access"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// RoleChecker is the slice of access control the ledger needs for Mint.
type RoleChecker interface {
	CheckRole(ctx context.Context, role access.Role, addr id.Address) error
}

// Service is the ERC-20-shaped surface over the balance store.
type Service struct {
	store  Store
	roles  RoleChecker
	logger *slog.Logger
}

func New(store Store, roles RoleChecker, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("token store is required")
	}
	if roles == nil {
		return nil, fmt.Errorf("role checker is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, roles: roles, logger: logger}, nil
}

// BalanceOf reads a holder's balance.
func (s *Service) BalanceOf(ctx context.Context, token, holder id.Address) (*big.Int, error) {
	b, err := s.store.Balance(ctx, token, holder)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return b, nil
}

// Transfer moves amount from the caller's own balance.
func (s *Service) Transfer(ctx context.Context, token, from, to id.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := s.store.Move(ctx, token, from, to, amount); err != nil {
		if err == sentinel.ErrInvalidState {
			return dErrors.New(dErrors.CodeInsufficientFunds, "balance does not cover the transfer")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer")
	}
	return nil
}

// TransferFrom spends owner's funds on behalf of spender, consuming
// allowance.
func (s *Service) TransferFrom(ctx context.Context, token, spender, owner, to id.Address, amount *big.Int) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	allowance, err := s.store.Allowance(ctx, token, owner, spender)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read allowance")
	}
	if allowance.Cmp(amount) < 0 {
		return dErrors.New(dErrors.CodeInsufficientAllowance, "allowance does not cover the transfer")
	}
	if err := s.store.Move(ctx, token, owner, to, amount); err != nil {
		if err == sentinel.ErrInvalidState {
			return dErrors.New(dErrors.CodeInsufficientFunds, "balance does not cover the transfer")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to transfer")
	}
	remaining := new(big.Int).Sub(allowance, amount)
	if err := s.store.SetAllowance(ctx, token, owner, spender, remaining); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update allowance")
	}
	return nil
}

// Approve lets spender move up to amount of owner's funds.
func (s *Service) Approve(ctx context.Context, token, owner, spender id.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "approval amount must be zero or positive")
	}
	if err := s.store.SetAllowance(ctx, token, owner, spender, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set allowance")
	}
	return nil
}

// Mint credits fresh funds. ADMIN-only; exists for bootstrap funding and
// devnet provisioning.
func (s *Service) Mint(ctx context.Context, caller id.Address, token, to id.Address, amount *big.Int) error {
	if err := s.roles.CheckRole(ctx, access.RoleAdmin, caller); err != nil {
		return err
	}
	if err := validAmount(amount); err != nil {
		return err
	}
	if err := s.store.Credit(ctx, token, to, amount); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint")
	}
	s.logger.InfoContext(ctx, "tokens minted",
		"token", token,
		"to", to,
		"amount", amount,
	)
	return nil
}

func validAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "amount must be positive")
	}
	return nil
}
