package registrar

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nameledger/internal/access"
	"nameledger/internal/certificate"
	"nameledger/internal/distribution"
	"nameledger/internal/events"
	"nameledger/internal/pricing"
	"nameledger/internal/registry"
	"nameledger/internal/token"
	"nameledger/internal/treasury"
	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

func addr(b byte) id.Address {
	var a id.Address
	a[19] = b
	return a
}

func amt(v int64) *big.Int { return big.NewInt(v) }

type harness struct {
	svc          *Service
	tokens       *token.Service
	registry     *registry.Service
	certificates *certificate.Service
	treasury     *treasury.Service
	distribution *distribution.Service
	pricing      *pricing.Service
	pub          *events.Memory

	admin       id.Address
	user        id.Address
	token       id.Address
	beneficiary id.Address
	zeroVault   id.Address
}

// newHarness wires the full service graph over in-memory stores, the same
// shape the server assembles at startup. The root is seeded with a curve
// config (max 1000, min 10, base length 4, 2.5% fee) and a direct payment
// route, and the user holds 2000 units of the payment token.
func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	h := &harness{
		admin:       addr(1),
		user:        addr(2),
		token:       addr(100),
		beneficiary: addr(98),
		zeroVault:   addr(99),
	}

	accessSvc, err := access.New(access.NewInMemory())
	require.NoError(t, err)
	require.NoError(t, accessSvc.Seed(ctx,
		[]id.Address{h.admin}, []id.Address{h.admin}, []id.Address{Account}))

	h.tokens, err = token.New(token.NewInMemory(), accessSvc, nil)
	require.NoError(t, err)
	require.NoError(t, h.tokens.Mint(ctx, h.admin, h.token, h.user, amt(2000)))

	h.registry, err = registry.New(registry.NewInMemory(), accessSvc, nil)
	require.NoError(t, err)

	h.certificates, err = certificate.New(certificate.NewInMemory(), accessSvc, nil, nil)
	require.NoError(t, err)

	h.treasury, err = treasury.New(h.tokens, treasury.NewInMemoryStakes(),
		treasury.NewInMemoryPaymentConfigs(), h.registry, accessSvc, h.zeroVault, nil)
	require.NoError(t, err)

	curve := pricing.NewCurvePricer(pricing.NewInMemoryCurveConfigs())
	fixed := pricing.NewFixedPricer(pricing.NewInMemoryFixedConfigs())
	h.pricing, err = pricing.NewService(curve, fixed, h.registry, nil, nil)
	require.NoError(t, err)
	require.NoError(t, h.pricing.SeedCurveConfig(ctx, id.RootID(), pricing.CurveConfig{
		MaxPrice:            amt(1000),
		MinPrice:            amt(10),
		BaseLength:          4,
		PrecisionMultiplier: amt(1),
		FeeBps:              250,
	}))

	h.distribution, err = distribution.New(distribution.NewInMemoryConfigs(),
		distribution.NewInMemoryMintlist(), h.registry, accessSvc, nil, nil)
	require.NoError(t, err)

	h.pub = events.NewMemory()
	h.svc, err = New(h.registry, h.certificates, h.treasury, h.pricing,
		h.distribution, accessSvc, Config{}, nil, h.pub, nil)
	require.NoError(t, err)

	require.NoError(t, h.treasury.SetPaymentConfig(ctx, Account, id.RootID(),
		treasury.PaymentConfig{Token: h.token, Beneficiary: h.beneficiary}))
	return h
}

func (h *harness) balance(t *testing.T, holder id.Address) *big.Int {
	t.Helper()
	b, err := h.tokens.BalanceOf(context.Background(), h.token, holder)
	require.NoError(t, err)
	return b
}

func (h *harness) approveEscrow(t *testing.T, amount int64) {
	t.Helper()
	require.NoError(t, h.tokens.Approve(context.Background(), h.token, h.user, treasury.EscrowAccount, amt(amount)))
}

func TestRegisterRoot(t *testing.T) {
	ctx := context.Background()

	t.Run("direct payment end to end", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 1000)

		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{
			Label:    "Wild", // normalization lowercases before hashing
			TokenURI: "ipfs://wild",
			Resolver: addr(9),
		})
		require.NoError(t, err)
		assert.Equal(t, id.ChildID(id.RootID(), "wild"), domainID)

		// Price 1000, fee 25: 975 to the beneficiary, 25 to the vault.
		assert.Equal(t, amt(1000), h.balance(t, h.user))
		assert.Equal(t, amt(975), h.balance(t, h.beneficiary))
		assert.Equal(t, amt(25), h.balance(t, h.zeroVault))
		assert.Zero(t, h.balance(t, treasury.EscrowAccount).Sign())

		record, err := h.registry.GetRecord(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, h.user, record.Owner)
		assert.Equal(t, addr(9), record.Resolver)

		cert, err := h.certificates.Get(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, h.user, cert.Owner)
		assert.Equal(t, "ipfs://wild", cert.TokenURI)

		// Root domains carry no stake.
		_, err = h.treasury.Staked(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNothingStaked))

		emitted := h.pub.ByType(events.TypeDomainRegistered)
		require.Len(t, emitted, 1)
		payload, ok := emitted[0].Payload.(events.DomainRegistered)
		require.True(t, ok)
		assert.Equal(t, "wild", payload.Label)
		assert.Equal(t, "1000", payload.Price)
		assert.Equal(t, "25", payload.Fee)
	})

	t.Run("stake payment end to end", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 879)

		// "wilder" is 6 chars against base length 4: the curve prices it at
		// 858 with a 2.5% fee of 21.
		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{
			Label: "wilder",
			DistConfig: &distribution.Config{
				Pricer:      pricing.PricerCurve,
				PaymentType: distribution.PaymentStake,
				AccessType:  distribution.AccessLocked,
				IsSet:       true,
			},
		})
		require.NoError(t, err)

		assert.Equal(t, amt(1121), h.balance(t, h.user))
		assert.Equal(t, amt(858), h.balance(t, treasury.EscrowAccount))
		assert.Equal(t, amt(21), h.balance(t, h.zeroVault))
		assert.Zero(t, h.balance(t, h.beneficiary).Sign())

		stake, err := h.treasury.Staked(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, amt(858), stake.Amount)

		// Revocation refunds the stake minus the protocol fee, leaving the
		// user down exactly two fees.
		refunded, err := h.svc.Revoke(ctx, h.user, domainID)
		require.NoError(t, err)
		assert.Equal(t, amt(837), refunded)
		assert.Equal(t, amt(1958), h.balance(t, h.user))
		assert.Equal(t, amt(42), h.balance(t, h.zeroVault))
		assert.Zero(t, h.balance(t, treasury.EscrowAccount).Sign())

		_, err = h.registry.GetRecord(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = h.certificates.Get(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("failed stake registration leaves no residue", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 879)
		domainID := id.ChildID(id.RootID(), "wilder")

		// An orphaned certificate under the target id makes the mint step
		// fail after the stake and fee were taken.
		require.NoError(t, h.certificates.Mint(ctx, Account, domainID, addr(33), ""))

		_, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{
			Label: "wilder",
			DistConfig: &distribution.Config{
				PaymentType: distribution.PaymentStake,
				AccessType:  distribution.AccessLocked,
				IsSet:       true,
			},
		})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		// Both the stake and the fee came back.
		assert.Equal(t, amt(2000), h.balance(t, h.user))
		assert.Zero(t, h.balance(t, treasury.EscrowAccount).Sign())
		assert.Zero(t, h.balance(t, h.zeroVault).Sign())
		_, err = h.registry.GetRecord(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = h.treasury.Staked(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNothingStaked))
	})

	t.Run("duplicate label", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 2000)
		_, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		require.NoError(t, err)

		_, err = h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))
	})

	t.Run("invalid label", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "no spaces"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidName))
	})

	t.Run("missing root payment config", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.treasury.ClearPaymentConfig(ctx, id.RootID()))

		_, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConfigNotSet))
		// Nothing was created or charged.
		assert.Equal(t, amt(2000), h.balance(t, h.user))
		_, err = h.registry.GetRecord(ctx, id.ChildID(id.RootID(), "wild"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unapproved payer leaves no residue", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInsufficientAllowance))

		_, err = h.registry.GetRecord(ctx, id.ChildID(id.RootID(), "wild"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("installs configs for the new owner", func(t *testing.T) {
		h := newHarness(t)
		// STAKE selection makes this a staked registration: price plus fee.
		h.approveEscrow(t, 1025)

		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{
			Label: "wild",
			DistConfig: &distribution.Config{
				Pricer:      pricing.PricerCurve,
				PaymentType: distribution.PaymentStake,
				AccessType:  distribution.AccessOpen,
				IsSet:       true,
			},
			PaymentConfig: &treasury.PaymentConfig{Token: h.token, Beneficiary: h.user},
		})
		require.NoError(t, err)

		cfg, err := h.distribution.ConfigFor(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, distribution.AccessOpen, cfg.AccessType)

		payment, err := h.treasury.PaymentConfigFor(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, h.user, payment.Beneficiary)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	parent := id.RootID()

	t.Run("requires the registrar role", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Register(ctx, h.user, parent, h.user, amt(100), amt(2), false, RegisterParams{Label: "kid"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("stake locks the price and pays the fee", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 615)

		domainID, err := h.svc.Register(ctx, Account, parent, h.user, amt(600), amt(15), true, RegisterParams{Label: "kid"})
		require.NoError(t, err)

		assert.Equal(t, amt(1385), h.balance(t, h.user))
		assert.Equal(t, amt(600), h.balance(t, treasury.EscrowAccount))
		assert.Equal(t, amt(15), h.balance(t, h.zeroVault))

		stake, err := h.treasury.Staked(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, amt(600), stake.Amount)
	})

	t.Run("zero price is free", func(t *testing.T) {
		h := newHarness(t)
		domainID, err := h.svc.Register(ctx, Account, parent, h.user, amt(0), nil, false, RegisterParams{Label: "free"})
		require.NoError(t, err)

		assert.Equal(t, amt(2000), h.balance(t, h.user))
		record, err := h.registry.GetRecord(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, h.user, record.Owner)
	})

	t.Run("failed mint unwinds record and stake", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 615)
		domainID := id.ChildID(parent, "kid")

		// An orphaned certificate under the target id makes the mint step
		// fail after payment has been taken.
		require.NoError(t, h.certificates.Mint(ctx, Account, domainID, addr(33), ""))

		_, err := h.svc.Register(ctx, Account, parent, h.user, amt(600), amt(15), true, RegisterParams{Label: "kid"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyExists))

		// The stake and the fee were refunded in full and the record removed.
		assert.Equal(t, amt(2000), h.balance(t, h.user))
		assert.Zero(t, h.balance(t, treasury.EscrowAccount).Sign())
		assert.Zero(t, h.balance(t, h.zeroVault).Sign())
		_, err = h.registry.GetRecord(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestReclaim(t *testing.T) {
	ctx := context.Background()

	register := func(t *testing.T, h *harness) id.DomainID {
		t.Helper()
		h.approveEscrow(t, 1000)
		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		require.NoError(t, err)
		return domainID
	}

	t.Run("certificate holder reclaims the record", func(t *testing.T) {
		h := newHarness(t)
		buyer := addr(3)
		domainID := register(t, h)
		require.NoError(t, h.certificates.Transfer(ctx, h.user, domainID, buyer))

		// Ownership has diverged: record still names the seller.
		record, err := h.registry.GetRecord(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, h.user, record.Owner)

		require.NoError(t, h.svc.Reclaim(ctx, buyer, domainID))

		record, err = h.registry.GetRecord(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, buyer, record.Owner)
	})

	t.Run("non-holder is refused", func(t *testing.T) {
		h := newHarness(t)
		domainID := register(t, h)
		err := h.svc.Reclaim(ctx, addr(3), domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotCertificateOwner))
	})

	t.Run("unregistered domain", func(t *testing.T) {
		h := newHarness(t)
		err := h.svc.Reclaim(ctx, h.user, id.ChildID(id.RootID(), "ghost"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("staked domain refunds minus the protocol fee", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 1025)
		domainID, err := h.svc.Register(ctx, Account, id.RootID(), h.user, amt(1000), amt(25), true, RegisterParams{Label: "kid"})
		require.NoError(t, err)

		refunded, err := h.svc.Revoke(ctx, h.user, domainID)
		require.NoError(t, err)
		// 2.5% of the 1000 stake stays with the protocol on top of the fee
		// paid at registration.
		assert.Equal(t, amt(975), refunded)
		assert.Equal(t, amt(1950), h.balance(t, h.user))
		assert.Equal(t, amt(50), h.balance(t, h.zeroVault))
		assert.Zero(t, h.balance(t, treasury.EscrowAccount).Sign())

		_, err = h.registry.GetRecord(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		_, err = h.certificates.Get(ctx, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("direct-paid domain refunds nothing", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 1000)
		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		require.NoError(t, err)

		refunded, err := h.svc.Revoke(ctx, h.user, domainID)
		require.NoError(t, err)
		assert.Zero(t, refunded.Sign())
	})

	t.Run("requires both owners", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 1000)
		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{Label: "wild"})
		require.NoError(t, err)
		require.NoError(t, h.certificates.Transfer(ctx, h.user, domainID, addr(3)))

		// Record owner without the certificate.
		_, err = h.svc.Revoke(ctx, h.user, domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotBothOwner))
		// Certificate holder without the record.
		_, err = h.svc.Revoke(ctx, addr(3), domainID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotBothOwner))
	})

	t.Run("revocation resets configs", func(t *testing.T) {
		h := newHarness(t)
		h.approveEscrow(t, 1000)
		domainID, err := h.svc.RegisterRoot(ctx, h.user, RegisterParams{
			Label: "wild",
			DistConfig: &distribution.Config{
				Pricer:      pricing.PricerCurve,
				PaymentType: distribution.PaymentDirect,
				AccessType:  distribution.AccessOpen,
				IsSet:       true,
			},
			PaymentConfig: &treasury.PaymentConfig{Token: h.token, Beneficiary: h.user},
		})
		require.NoError(t, err)

		_, err = h.svc.Revoke(ctx, h.user, domainID)
		require.NoError(t, err)

		cfg, err := h.distribution.ConfigFor(ctx, domainID)
		require.NoError(t, err)
		assert.Equal(t, distribution.AccessLocked, cfg.AccessType)

		payment, err := h.treasury.PaymentConfigFor(ctx, domainID)
		require.NoError(t, err)
		assert.False(t, payment.IsSet())
	})
}

func TestRootPricerSwitch(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	assert.Equal(t, pricing.PricerCurve, h.svc.RootPricer())

	t.Run("admin switches engines", func(t *testing.T) {
		require.NoError(t, h.svc.SetRootPricer(ctx, h.admin, pricing.PricerFixed))
		assert.Equal(t, pricing.PricerFixed, h.svc.RootPricer())
	})

	t.Run("unknown engine is refused", func(t *testing.T) {
		err := h.svc.SetRootPricer(ctx, h.admin, "auction")
		assert.Error(t, err)
		assert.Equal(t, pricing.PricerFixed, h.svc.RootPricer())
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		err := h.svc.SetRootPricer(ctx, h.user, pricing.PricerCurve)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
