package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "nameledger/pkg/platform/strings"
)

// Server captures process level configuration. FromEnv keeps main lean; field
// parsing that needs domain types happens in cmd wiring.
type Server struct {
	Addr       string
	AdminToken string

	// PostgresURL switches durable stores on when non-empty; otherwise the
	// in-memory stores are canonical.
	PostgresURL string

	Redis RedisConfig
	Kafka KafkaConfig

	// Bootstrap role membership and treasury wiring, applied once at startup.
	Governors []string
	Admins    []string
	ZeroVault string

	// Payment token the deployment pre-funds (hex address of the ledger
	// entry), plus its display metadata. RootBeneficiary receives the net
	// proceeds of direct root registrations.
	PaymentToken    string
	TokenName       string
	TokenSymbol     string
	RootBeneficiary string

	MaxLabelLength int

	// Root curve price config, decimal strings at token precision.
	RootMaxPrice            string
	RootMinPrice            string
	RootBaseLength          int
	RootMaxLength           int
	RootPrecisionMultiplier string
	RootFeeBps              int
}

// RedisConfig controls the optional mintlist mirror.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig controls the indexer event stream.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	return Server{
		Addr:       envOr("NAMELEDGER_ADDR", ":8080"),
		AdminToken: envOr("NAMELEDGER_ADMIN_TOKEN", "dev-admin-token-change-in-production"),

		PostgresURL: os.Getenv("NAMELEDGER_POSTGRES_URL"),

		Redis: RedisConfig{
			URL:          os.Getenv("NAMELEDGER_REDIS_URL"),
			PoolSize:     envInt("NAMELEDGER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("NAMELEDGER_REDIS_MIN_IDLE", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("NAMELEDGER_KAFKA_BROKERS")),
			Topic:   envOr("NAMELEDGER_KAFKA_TOPIC", "nameledger.events"),
		},

		Governors: splitList(os.Getenv("NAMELEDGER_GOVERNORS")),
		Admins:    splitList(os.Getenv("NAMELEDGER_ADMINS")),
		ZeroVault: os.Getenv("NAMELEDGER_ZERO_VAULT"),

		PaymentToken:    os.Getenv("NAMELEDGER_PAYMENT_TOKEN"),
		TokenName:       envOr("NAMELEDGER_TOKEN_NAME", "Nameledger Token"),
		TokenSymbol:     envOr("NAMELEDGER_TOKEN_SYMBOL", "NLT"),
		RootBeneficiary: os.Getenv("NAMELEDGER_ROOT_BENEFICIARY"),

		MaxLabelLength: envInt("NAMELEDGER_MAX_LABEL_LENGTH", 255),

		RootMaxPrice:            envOr("NAMELEDGER_ROOT_MAX_PRICE", "1000000000000000000000"),
		RootMinPrice:            envOr("NAMELEDGER_ROOT_MIN_PRICE", "10000000000000000000"),
		RootBaseLength:          envInt("NAMELEDGER_ROOT_BASE_LENGTH", 4),
		RootMaxLength:           envInt("NAMELEDGER_ROOT_MAX_LENGTH", 0),
		RootPrecisionMultiplier: envOr("NAMELEDGER_ROOT_PRECISION", "1000000000000000"),
		RootFeeBps:              envInt("NAMELEDGER_ROOT_FEE_BPS", 250),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrimLower(strings.Split(v, ","))
}
