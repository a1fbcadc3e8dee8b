// Command server runs the nameledger HTTP service: a hierarchical naming
// registry with economically gated registration. main wires configuration,
// stores, services and the router; business logic lives in the internal
// packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"nameledger/internal/access"
	accesshandler "nameledger/internal/access/handler"
	"nameledger/internal/certificate"
	certificatehandler "nameledger/internal/certificate/handler"
	"nameledger/internal/distribution"
	distributionhandler "nameledger/internal/distribution/handler"
	"nameledger/internal/events"
	httpapi "nameledger/internal/http"
	"nameledger/internal/platform/config"
	"nameledger/internal/platform/httpserver"
	"nameledger/internal/platform/logger"
	"nameledger/internal/platform/postgres"
	"nameledger/internal/platform/redis"
	"nameledger/internal/pricing"
	pricinghandler "nameledger/internal/pricing/handler"
	"nameledger/internal/registrar"
	registrarhandler "nameledger/internal/registrar/handler"
	registrarmetrics "nameledger/internal/registrar/metrics"
	"nameledger/internal/registry"
	registryhandler "nameledger/internal/registry/handler"
	"nameledger/internal/subregistrar"
	"nameledger/internal/token"
	tokenhandler "nameledger/internal/token/handler"
	"nameledger/internal/treasury"
	treasuryhandler "nameledger/internal/treasury/handler"
	id "nameledger/pkg/domain"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Event publisher: Kafka when brokers are configured, in-process
	// otherwise.
	var publisher events.Publisher = events.NewMemory()
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer kafka.Close()
		publisher = kafka
	}

	// Stores: postgres when configured, memory otherwise.
	var (
		accessStore      access.Store
		registryStore    registry.Store
		certificateStore certificate.Store
		tokenStore       token.Store
		stakeStore       treasury.StakeStore
		paymentStore     treasury.PaymentConfigStore
		curveConfigStore pricing.CurveConfigStore
		fixedConfigStore pricing.FixedConfigStore
		distConfigStore  distribution.ConfigStore
		mintlistStore    distribution.MintlistStore
		healthChecks     = map[string]httpapi.HealthChecker{}
	)
	if cfg.PostgresURL != "" {
		db, err := postgres.Open(cfg.PostgresURL)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer db.Close()
		accessStore = access.NewPostgres(db)
		registryStore = registry.NewPostgres(db)
		certificateStore = certificate.NewPostgres(db)
		tokenStore = token.NewPostgres(db)
		stakeStore = treasury.NewPostgresStakes(db)
		paymentStore = treasury.NewPostgresPaymentConfigs(db)
		curveConfigStore = pricing.NewPostgresCurveConfigs(db)
		fixedConfigStore = pricing.NewPostgresFixedConfigs(db)
		distConfigStore = distribution.NewInMemoryConfigs()
		healthChecks["postgres"] = postgres.Pinger{DB: db}
	} else {
		accessStore = access.NewInMemory()
		registryStore = registry.NewInMemory()
		certificateStore = certificate.NewInMemory()
		tokenStore = token.NewInMemory()
		stakeStore = treasury.NewInMemoryStakes()
		paymentStore = treasury.NewInMemoryPaymentConfigs()
		curveConfigStore = pricing.NewInMemoryCurveConfigs()
		fixedConfigStore = pricing.NewInMemoryFixedConfigs()
		distConfigStore = distribution.NewInMemoryConfigs()
	}
	mintlistStore = distribution.NewInMemoryMintlist()
	if cfg.Redis.URL != "" {
		redisClient, err := redis.New(cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer redisClient.Close()
		mintlistStore = distribution.NewRedisMintlist(redisClient)
		healthChecks["redis"] = redisClient
	}

	// Services, bottom up.
	accessSvc, err := access.New(accessStore, access.WithLogger(log), access.WithPublisher(publisher))
	if err != nil {
		return err
	}
	registrySvc, err := registry.New(registryStore, accessSvc, log)
	if err != nil {
		return err
	}
	certificateSvc, err := certificate.New(certificateStore, accessSvc, log, publisher)
	if err != nil {
		return err
	}
	tokenSvc, err := token.New(tokenStore, accessSvc, log)
	if err != nil {
		return err
	}
	curvePricer := pricing.NewCurvePricer(curveConfigStore)
	fixedPricer := pricing.NewFixedPricer(fixedConfigStore)
	pricingSvc, err := pricing.NewService(curvePricer, fixedPricer, registrySvc, log, publisher)
	if err != nil {
		return err
	}
	zeroVault, err := parseAddr(cfg.ZeroVault, "NAMELEDGER_ZERO_VAULT")
	if err != nil {
		return err
	}
	treasurySvc, err := treasury.New(tokenSvc, stakeStore, paymentStore, registrySvc, accessSvc, zeroVault, log)
	if err != nil {
		return err
	}
	distributionSvc, err := distribution.New(distConfigStore, mintlistStore, registrySvc, accessSvc, log, publisher)
	if err != nil {
		return err
	}
	regMetrics := registrarmetrics.New()
	registrarSvc, err := registrar.New(registrySvc, certificateSvc, treasurySvc, pricingSvc, distributionSvc, accessSvc, registrar.Config{
		MaxLabelLength: cfg.MaxLabelLength,
	}, log, publisher, regMetrics)
	if err != nil {
		return err
	}
	subregistrarSvc, err := subregistrar.New(registrarSvc, registrySvc, distributionSvc, pricingSvc, log, regMetrics)
	if err != nil {
		return err
	}

	if err := bootstrap(ctx, cfg, log, accessSvc, pricingSvc, distributionSvc, treasurySvc); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	// Router.
	registrarHandler := registrarhandler.New(registrarSvc, subregistrarSvc, registrySvc, certificateSvc, treasurySvc, distributionSvc, log)
	router := httpapi.NewRouter(httpapi.Config{
		Logger:     log,
		AdminToken: cfg.AdminToken,
		Public: []httpapi.Registrar{
			registrarHandler,
			registryhandler.New(registrySvc, log),
			certificatehandler.New(certificateSvc, log),
			distributionhandler.New(distributionSvc, log),
			treasuryhandler.New(treasurySvc, log),
			pricinghandler.New(pricingSvc, distributionSvc, log),
			tokenhandler.New(tokenSvc, log),
		},
		Admin: []httpapi.Registrar{
			accesshandler.New(accessSvc, log),
			registrarhandler.NewAdmin(registrarHandler, registrarSvc),
			httpapi.RegistrarFunc(tokenhandler.New(tokenSvc, log).RegisterAdmin),
		},
		Checks: healthChecks,
	})

	srv, err := httpserver.New(cfg.Addr, router)
	if err != nil {
		return err
	}
	log.Info("nameledger listening", "addr", cfg.Addr)
	return httpserver.Run(ctx, srv, httpserver.DefaultShutdownGrace)
}

// bootstrap applies the one-time deployment state: role membership, the root
// domain's price and distribution configs, and root payment routing. Safe to
// rerun; seeding roles twice is refused and config seeds overwrite in place.
func bootstrap(ctx context.Context, cfg config.Server, log *slog.Logger, accessSvc *access.Service, pricingSvc *pricing.Service, distributionSvc *distribution.Service, treasurySvc *treasury.Service) error {
	governors, err := parseAddrs(cfg.Governors)
	if err != nil {
		return fmt.Errorf("NAMELEDGER_GOVERNORS: %w", err)
	}
	admins, err := parseAddrs(cfg.Admins)
	if err != nil {
		return fmt.Errorf("NAMELEDGER_ADMINS: %w", err)
	}
	registrars := []id.Address{registrar.Account, subregistrar.Account}
	if err := accessSvc.Seed(ctx, governors, admins, registrars); err != nil {
		return err
	}

	rootCurve, err := rootCurveConfig(cfg)
	if err != nil {
		return err
	}
	if err := pricingSvc.SeedCurveConfig(ctx, id.RootID(), rootCurve); err != nil {
		return err
	}
	if err := distributionSvc.Seed(ctx, id.RootID(), distribution.Config{
		Pricer:      pricing.PricerCurve,
		PaymentType: distribution.PaymentDirect,
		AccessType:  distribution.AccessOpen,
		IsSet:       true,
	}); err != nil {
		return err
	}

	if cfg.PaymentToken != "" {
		paymentToken, err := parseAddr(cfg.PaymentToken, "NAMELEDGER_PAYMENT_TOKEN")
		if err != nil {
			return err
		}
		beneficiary, err := parseAddr(cfg.RootBeneficiary, "NAMELEDGER_ROOT_BENEFICIARY")
		if err != nil {
			return err
		}
		if err := treasurySvc.SetPaymentConfig(ctx, registrar.Account, id.RootID(), treasury.PaymentConfig{
			Token:       paymentToken,
			Beneficiary: beneficiary,
		}); err != nil {
			return err
		}
		log.Info("root payment route configured",
			"token", paymentToken,
			"token_name", cfg.TokenName,
			"token_symbol", cfg.TokenSymbol,
			"beneficiary", beneficiary,
		)
	}

	log.Info("bootstrap complete",
		"governors", len(governors),
		"admins", len(admins),
		"root_pricer", pricing.PricerCurve,
	)
	return nil
}

func rootCurveConfig(cfg config.Server) (pricing.CurveConfig, error) {
	maxPrice, ok := new(big.Int).SetString(cfg.RootMaxPrice, 10)
	if !ok {
		return pricing.CurveConfig{}, fmt.Errorf("NAMELEDGER_ROOT_MAX_PRICE is not a valid amount")
	}
	minPrice, ok := new(big.Int).SetString(cfg.RootMinPrice, 10)
	if !ok {
		return pricing.CurveConfig{}, fmt.Errorf("NAMELEDGER_ROOT_MIN_PRICE is not a valid amount")
	}
	precision, ok := new(big.Int).SetString(cfg.RootPrecisionMultiplier, 10)
	if !ok {
		return pricing.CurveConfig{}, fmt.Errorf("NAMELEDGER_ROOT_PRECISION is not a valid amount")
	}
	return pricing.CurveConfig{
		MaxPrice:            maxPrice,
		MinPrice:            minPrice,
		MaxLength:           cfg.RootMaxLength,
		BaseLength:          cfg.RootBaseLength,
		PrecisionMultiplier: precision,
		FeeBps:              int64(cfg.RootFeeBps),
		IsSet:               true,
	}, nil
}

func parseAddr(raw, name string) (id.Address, error) {
	if raw == "" {
		return id.ZeroAddress, fmt.Errorf("%s is required", name)
	}
	addr, err := id.ParseAddress(raw)
	if err != nil {
		return id.ZeroAddress, fmt.Errorf("%s: %w", name, err)
	}
	return addr, nil
}

func parseAddrs(raw []string) ([]id.Address, error) {
	out := make([]id.Address, 0, len(raw))
	for _, r := range raw {
		addr, err := id.ParseAddress(r)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}
