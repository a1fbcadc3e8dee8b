package treasury

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"nameledger/internal/access"
	"nameledger/internal/token"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
	"nameledger/pkg/platform/sentinel"
)

// OwnershipChecker is the slice of the registry the treasury needs to gate
// payment config mutation.
type OwnershipChecker interface {
	IsOwnerOrOperator(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error)
}

// RoleChecker is the slice of access control the treasury needs.
type RoleChecker interface {
	HasRole(ctx context.Context, role access.Role, addr id.Address) (bool, error)
}

// Service executes fund movements. Every mutation either completes fully or
// compensates the transfers it already made, so a failed registration or
// revocation leaves no partial escrow.
type Service struct {
	tokens    *token.Service
	stakes    StakeStore
	payments  PaymentConfigStore
	ownership OwnershipChecker
	roles     RoleChecker
	zeroVault id.Address
	logger    *slog.Logger
}

func New(tokens *token.Service, stakes StakeStore, payments PaymentConfigStore, ownership OwnershipChecker, roles RoleChecker, zeroVault id.Address, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if tokens == nil {
		return nil, fmt.Errorf("token service is required")
	}
	if stakes == nil || payments == nil {
		return nil, fmt.Errorf("treasury stores are required")
	}
	if zeroVault.IsZero() {
		return nil, fmt.Errorf("zero vault address is required")
	}
	return &Service{
		tokens:    tokens,
		stakes:    stakes,
		payments:  payments,
		ownership: ownership,
		roles:     roles,
		zeroVault: zeroVault,
		logger:    logger,
	}, nil
}

// ZeroVault is the protocol fee recipient.
func (s *Service) ZeroVault() id.Address { return s.zeroVault }

// StakeForDomain locks amount from payer into escrow keyed by domainID and
// moves the registration fee to the zero vault. The payer must have approved
// the escrow account for at least amount plus fee.
func (s *Service) StakeForDomain(ctx context.Context, domainID id.DomainID, payer id.Address, amount, fee *big.Int, tokenAddr id.Address) error {
	if amount == nil || amount.Sign() <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "stake amount must be positive")
	}
	if fee == nil {
		fee = new(big.Int)
	}
	if fee.Sign() < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "stake fee must not be negative")
	}
	if err := s.tokens.TransferFrom(ctx, tokenAddr, EscrowAccount, payer, EscrowAccount, amount); err != nil {
		return err
	}
	refundEscrow := func() {
		if refundErr := s.tokens.Transfer(ctx, tokenAddr, EscrowAccount, payer, amount); refundErr != nil {
			s.logger.ErrorContext(ctx, "stake compensation failed",
				"domain_id", domainID,
				"payer", payer,
				"amount", amount,
				"error", refundErr,
			)
		}
	}
	if fee.Sign() > 0 {
		if err := s.tokens.TransferFrom(ctx, tokenAddr, EscrowAccount, payer, s.zeroVault, fee); err != nil {
			refundEscrow()
			return err
		}
	}
	if err := s.stakes.Put(ctx, domainID, StakedBalance{Amount: amount, Token: tokenAddr}); err != nil {
		// Give the funds back before surfacing the failure.
		if fee.Sign() > 0 {
			if refundErr := s.tokens.Transfer(ctx, tokenAddr, s.zeroVault, payer, fee); refundErr != nil {
				s.logger.ErrorContext(ctx, "stake fee compensation failed",
					"domain_id", domainID,
					"payer", payer,
					"fee", fee,
					"error", refundErr,
				)
			}
		}
		refundEscrow()
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record stake")
	}
	s.logger.InfoContext(ctx, "stake locked",
		"domain_id", domainID,
		"payer", payer,
		"amount", amount,
		"fee", fee,
		"token", tokenAddr,
	)
	return nil
}

// RefundStake reverses a stake taken earlier in the same operation: the
// escrowed amount returns to the payer in full and the registration fee, when
// one was charged, is pulled back out of the zero vault. Callers use it to
// unwind a registration that failed after payment.
func (s *Service) RefundStake(ctx context.Context, domainID id.DomainID, payer id.Address, fee *big.Int) error {
	stake, err := s.Staked(ctx, domainID)
	if err != nil {
		return err
	}
	if _, err := s.Unstake(ctx, domainID, payer, big.NewInt(0)); err != nil {
		return err
	}
	if fee != nil && fee.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, stake.Token, s.zeroVault, payer, fee); err != nil {
			return err
		}
	}
	return nil
}

// ChargeDirect moves a one-time payment: price minus fee to the beneficiary,
// fee to the zero vault. No escrow is created.
func (s *Service) ChargeDirect(ctx context.Context, domainID id.DomainID, payer id.Address, price, fee *big.Int, tokenAddr, beneficiary id.Address) error {
	if price == nil || price.Sign() < 0 {
		return dErrors.New(dErrors.CodeBadRequest, "price must be zero or positive")
	}
	if price.Sign() == 0 {
		return nil
	}
	if fee == nil {
		fee = new(big.Int)
	}
	if fee.Cmp(price) > 0 {
		return dErrors.New(dErrors.CodeBadRequest, "fee exceeds price")
	}

	net := new(big.Int).Sub(price, fee)
	if net.Sign() > 0 {
		if err := s.tokens.TransferFrom(ctx, tokenAddr, EscrowAccount, payer, beneficiary, net); err != nil {
			return err
		}
	}
	if fee.Sign() > 0 {
		if err := s.tokens.TransferFrom(ctx, tokenAddr, EscrowAccount, payer, s.zeroVault, fee); err != nil {
			if net.Sign() > 0 {
				if refundErr := s.tokens.Transfer(ctx, tokenAddr, beneficiary, payer, net); refundErr != nil {
					s.logger.ErrorContext(ctx, "direct charge compensation failed",
						"domain_id", domainID,
						"payer", payer,
						"error", refundErr,
					)
				}
			}
			return err
		}
	}
	s.logger.InfoContext(ctx, "direct payment charged",
		"domain_id", domainID,
		"payer", payer,
		"price", price,
		"fee", fee,
		"beneficiary", beneficiary,
	)
	return nil
}

// Unstake returns the escrowed amount to recipient minus protocolFee, which
// goes to the zero vault, then zeroes the staked balance.
func (s *Service) Unstake(ctx context.Context, domainID id.DomainID, recipient id.Address, protocolFee *big.Int) (*big.Int, error) {
	stake, err := s.Staked(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if protocolFee == nil {
		protocolFee = new(big.Int)
	}
	if protocolFee.Cmp(stake.Amount) > 0 {
		protocolFee = new(big.Int).Set(stake.Amount)
	}

	refund := new(big.Int).Sub(stake.Amount, protocolFee)
	if refund.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, stake.Token, EscrowAccount, recipient, refund); err != nil {
			return nil, err
		}
	}
	if protocolFee.Sign() > 0 {
		if err := s.tokens.Transfer(ctx, stake.Token, EscrowAccount, s.zeroVault, protocolFee); err != nil {
			if refund.Sign() > 0 {
				if compErr := s.tokens.Transfer(ctx, stake.Token, recipient, EscrowAccount, refund); compErr != nil {
					s.logger.ErrorContext(ctx, "unstake compensation failed",
						"domain_id", domainID,
						"recipient", recipient,
						"error", compErr,
					)
				}
			}
			return nil, err
		}
	}
	if err := s.stakes.Delete(ctx, domainID); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear stake")
	}
	s.logger.InfoContext(ctx, "stake refunded",
		"domain_id", domainID,
		"recipient", recipient,
		"refund", refund,
		"protocol_fee", protocolFee,
	)
	return refund, nil
}

// Staked reads the stake for a domain, failing nothing_staked when absent.
func (s *Service) Staked(ctx context.Context, domainID id.DomainID) (StakedBalance, error) {
	stake, err := s.stakes.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return StakedBalance{}, dErrors.New(dErrors.CodeNothingStaked, "no stake is held for this domain")
		}
		return StakedBalance{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read stake")
	}
	if stake.Amount.Sign() == 0 {
		return StakedBalance{}, dErrors.New(dErrors.CodeNothingStaked, "no stake is held for this domain")
	}
	return stake, nil
}

// SetPaymentConfig stores a domain's payment routing. Callable by the
// domain's name-owner (or operator) or by REGISTRAR-role components.
func (s *Service) SetPaymentConfig(ctx context.Context, caller id.Address, domainID id.DomainID, cfg PaymentConfig) error {
	allowed, err := s.roles.HasRole(ctx, access.RoleRegistrar, caller)
	if err != nil {
		return err
	}
	if !allowed {
		ok, err := s.ownership.IsOwnerOrOperator(ctx, domainID, caller)
		if err != nil {
			return err
		}
		if !ok {
			return dErrors.New(dErrors.CodeUnauthorized, "caller does not own the domain")
		}
	}
	if err := s.payments.Put(ctx, domainID, cfg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store payment config")
	}
	s.logger.InfoContext(ctx, "payment config set",
		"domain_id", domainID,
		"token", cfg.Token,
		"beneficiary", cfg.Beneficiary,
	)
	return nil
}

// PaymentConfigFor reads a domain's payment routing; absent configs come back
// zero-valued, which callers treat as unset.
func (s *Service) PaymentConfigFor(ctx context.Context, domainID id.DomainID) (PaymentConfig, error) {
	cfg, err := s.payments.Get(ctx, domainID)
	if err != nil {
		if err == sentinel.ErrNotFound {
			return PaymentConfig{}, nil
		}
		return PaymentConfig{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read payment config")
	}
	return cfg, nil
}

// ClearPaymentConfig drops a domain's payment routing, part of revocation
// cleanup.
func (s *Service) ClearPaymentConfig(ctx context.Context, domainID id.DomainID) error {
	if err := s.payments.Delete(ctx, domainID); err != nil && err != sentinel.ErrNotFound {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear payment config")
	}
	return nil
}
