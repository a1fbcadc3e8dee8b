// Package distribution owns the per-domain policy for child registration:
// who may register (access type + mintlist), how they pay (payment type), and
// which pricing engine applies. Fresh domains start LOCKED until their owner
// opens them up; revocation resets the policy to that default.
package distribution

import (
	"context"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// AccessType controls who may register children.
type AccessType string

const (
	AccessLocked   AccessType = "LOCKED"
	AccessMintlist AccessType = "MINTLIST"
	AccessOpen     AccessType = "OPEN"
)

// ParseAccessType validates external input.
func ParseAccessType(s string) (AccessType, error) {
	switch AccessType(s) {
	case AccessLocked, AccessMintlist, AccessOpen:
		return AccessType(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown access type")
	}
}

// PaymentType controls how child registrations pay.
type PaymentType string

const (
	PaymentStake  PaymentType = "STAKE"
	PaymentDirect PaymentType = "DIRECT"
)

// ParsePaymentType validates external input.
func ParsePaymentType(s string) (PaymentType, error) {
	switch PaymentType(s) {
	case PaymentStake, PaymentDirect:
		return PaymentType(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown payment type")
	}
}

// Config is one domain's child-distribution policy. Pricer names a pricing
// engine ("curve", "fixed"); empty means none configured.
type Config struct {
	Pricer      string
	PaymentType PaymentType
	AccessType  AccessType
	IsSet       bool
}

// DefaultConfig is the policy every domain starts with and returns to on
// revocation: locked, direct payment, no pricer.
func DefaultConfig() Config {
	return Config{
		Pricer:      "",
		PaymentType: PaymentDirect,
		AccessType:  AccessLocked,
		IsSet:       false,
	}
}

// ConfigStore persists distribution configs keyed by domain id.
type ConfigStore interface {
	Put(ctx context.Context, domainID id.DomainID, cfg Config) error
	Get(ctx context.Context, domainID id.DomainID) (Config, error)
	Delete(ctx context.Context, domainID id.DomainID) error
}

// MintlistStore persists the per-domain allow-lists consulted when a domain's
// access type is MINTLIST.
type MintlistStore interface {
	Add(ctx context.Context, domainID id.DomainID, addrs []id.Address) error
	Remove(ctx context.Context, domainID id.DomainID, addrs []id.Address) error
	Contains(ctx context.Context, domainID id.DomainID, addr id.Address) (bool, error)
	Clear(ctx context.Context, domainID id.DomainID) error
	List(ctx context.Context, domainID id.DomainID) ([]id.Address, error)
}
