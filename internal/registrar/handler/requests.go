package handler

import (
	"math/big"

	"nameledger/internal/distribution"
	"nameledger/internal/treasury"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

// RegisterDomainRequest covers both root and subdomain registrations; the
// route decides the parent.
type RegisterDomainRequest struct {
	Label    string `json:"label"`
	TokenURI string `json:"token_uri"`
	Resolver string `json:"resolver,omitempty"`

	Distribution *DistributionConfigBody `json:"distribution,omitempty"`
	Payment      *PaymentConfigBody      `json:"payment,omitempty"`

	resolver      id.Address
	distConfig    *distribution.Config
	paymentConfig *treasury.PaymentConfig
}

// DistributionConfigBody is the optional child-distribution policy installed
// at registration time.
type DistributionConfigBody struct {
	Pricer      string `json:"pricer"`
	PaymentType string `json:"payment_type"`
	AccessType  string `json:"access_type"`
}

func (b *DistributionConfigBody) parse() (*distribution.Config, error) {
	pt, err := distribution.ParsePaymentType(b.PaymentType)
	if err != nil {
		return nil, err
	}
	at, err := distribution.ParseAccessType(b.AccessType)
	if err != nil {
		return nil, err
	}
	return &distribution.Config{
		Pricer:      b.Pricer,
		PaymentType: pt,
		AccessType:  at,
		IsSet:       true,
	}, nil
}

// PaymentConfigBody is the optional payment routing installed at
// registration time.
type PaymentConfigBody struct {
	Token       string `json:"token"`
	Beneficiary string `json:"beneficiary"`
}

func (b *PaymentConfigBody) parse() (*treasury.PaymentConfig, error) {
	token, err := id.ParseAddress(b.Token)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payment token address is malformed")
	}
	beneficiary, err := id.ParseAddress(b.Beneficiary)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "beneficiary address is malformed")
	}
	return &treasury.PaymentConfig{Token: token, Beneficiary: beneficiary}, nil
}

func (r *RegisterDomainRequest) Validate() error {
	if r.Label == "" {
		return dErrors.New(dErrors.CodeInvalidLength, "label is required")
	}
	if r.Resolver != "" {
		addr, err := id.ParseAddress(r.Resolver)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "resolver address is malformed")
		}
		r.resolver = addr
	}
	if r.Distribution != nil {
		cfg, err := r.Distribution.parse()
		if err != nil {
			return err
		}
		r.distConfig = cfg
	}
	if r.Payment != nil {
		cfg, err := r.Payment.parse()
		if err != nil {
			return err
		}
		r.paymentConfig = cfg
	}
	return nil
}

// RegisterDomainResponse returns the derived id of the new domain.
type RegisterDomainResponse struct {
	DomainID string `json:"domain_id"`
}

// DomainResponse is the read model for GET /v1/domains/{id}.
type DomainResponse struct {
	DomainID         string                  `json:"domain_id"`
	Owner            string                  `json:"owner"`
	Resolver         string                  `json:"resolver"`
	CertificateOwner string                  `json:"certificate_owner,omitempty"`
	TokenURI         string                  `json:"token_uri,omitempty"`
	Staked           string                  `json:"staked,omitempty"`
	Distribution     *DistributionConfigBody `json:"distribution,omitempty"`
}

// RevokeResponse reports what the revocation refunded.
type RevokeResponse struct {
	Refunded string `json:"refunded"`
}

func bigString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
