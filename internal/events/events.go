// Package events defines the emitted event stream consumed by the off-chain
// indexer. Field sets are part of the public contract: the indexer matches on
// Type and decodes Payload by shape, so changes here are breaking.
package events

import (
	"time"

	id "nameledger/pkg/domain"
)

// Type discriminates event payloads on the wire.
type Type string

const (
	TypeDomainRegistered       Type = "DomainRegistered"
	TypeDomainReclaimed        Type = "DomainReclaimed"
	TypeDomainRevoked          Type = "DomainRevoked"
	TypeCertificateTransferred Type = "CertificateTransferred"
	TypeRoleGranted            Type = "RoleGranted"
	TypeRoleRevoked            Type = "RoleRevoked"
	TypePriceConfigSet         Type = "PriceConfigSet"
	TypeDistributionConfigSet  Type = "DistributionConfigSet"
	TypePaymentConfigSet       Type = "PaymentConfigSet"
	TypeMintlistUpdated        Type = "MintlistUpdated"
)

// Event is the envelope all payloads ship in. Key is the domain id (or role
// name for access events) so the stream partitions by subject.
type Event struct {
	Type      Type      `json:"type"`
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// DomainRegistered is emitted once per successful registration, root or sub.
type DomainRegistered struct {
	ParentID   id.DomainID `json:"parent_id"`
	DomainID   id.DomainID `json:"domain_id"`
	Label      string      `json:"label"`
	TokenURI   string      `json:"token_uri"`
	Registrant id.Address  `json:"registrant"`
	Resolver   id.Address  `json:"resolver"`
	Price      string      `json:"price"`
	Fee        string      `json:"fee"`
}

// DomainReclaimed is emitted when a certificate holder re-takes record
// ownership.
type DomainReclaimed struct {
	DomainID id.DomainID `json:"domain_id"`
	Owner    id.Address  `json:"owner"`
}

// DomainRevoked is emitted when a domain is revoked and its stake (if any)
// refunded.
type DomainRevoked struct {
	DomainID id.DomainID `json:"domain_id"`
	Owner    id.Address  `json:"owner"`
	Refunded string      `json:"refunded"`
}

// CertificateTransferred is emitted on certificate transfers; record
// ownership is intentionally untouched.
type CertificateTransferred struct {
	DomainID id.DomainID `json:"domain_id"`
	From     id.Address  `json:"from"`
	To       id.Address  `json:"to"`
}

// RoleGranted / RoleRevoked mirror access-control membership changes.
type RoleGranted struct {
	Role    string     `json:"role"`
	Address id.Address `json:"address"`
	Grantor id.Address `json:"grantor"`
}

type RoleRevoked struct {
	Role    string     `json:"role"`
	Address id.Address `json:"address"`
	Revoker id.Address `json:"revoker"`
}

// PriceConfigSet is emitted whenever a parent's pricer config changes.
type PriceConfigSet struct {
	DomainID id.DomainID `json:"domain_id"`
	Pricer   string      `json:"pricer"`
}

// DistributionConfigSet is emitted when a domain's child-distribution policy
// changes.
type DistributionConfigSet struct {
	DomainID    id.DomainID `json:"domain_id"`
	AccessType  string      `json:"access_type"`
	PaymentType string      `json:"payment_type"`
	Pricer      string      `json:"pricer"`
}

// PaymentConfigSet is emitted when a domain's payment routing changes.
type PaymentConfigSet struct {
	DomainID    id.DomainID `json:"domain_id"`
	Token       id.Address  `json:"token"`
	Beneficiary id.Address  `json:"beneficiary"`
}

// MintlistUpdated is emitted for mintlist adds/removes/clears.
type MintlistUpdated struct {
	DomainID id.DomainID  `json:"domain_id"`
	Added    []id.Address `json:"added,omitempty"`
	Removed  []id.Address `json:"removed,omitempty"`
	Cleared  bool         `json:"cleared"`
	Locked   bool         `json:"locked"`
}
