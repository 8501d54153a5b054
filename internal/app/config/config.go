package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	CORSAllowOrigin string
	LogLevel        string

	// DatabaseURL empty means the in-memory store.
	DatabaseURL string
	DBMigrate   bool
	DBMaxConns  int32
	DBMinConns  int32

	JWTSecret     string
	TokenTTL      time.Duration
	InternalToken string

	TaxRate        decimal.Decimal
	CurrencySymbol string
	IssuerName     string
	PhoneRegion    string

	// RedisAddr empty disables the invoice cache.
	RedisAddr       string
	InvoiceCacheTTL time.Duration
}

// MustLoad reads .env (if present) and the environment, and exits on any
// missing or malformed value.
func MustLoad() Config {
	_ = godotenv.Load()
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	return cfg
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	p := &parser{}
	cfg := Config{
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		ShutdownTimeout: p.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CORSAllowOrigin: env("CORS_ALLOW_ORIGIN", "*"),
		LogLevel:        env("LOG_LEVEL", "info"),

		DatabaseURL: env("DATABASE_URL", ""),
		DBMigrate:   p.boolean("DB_MIGRATE", true),
		DBMaxConns:  int32(p.integer("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(p.integer("DB_MIN_CONNS", 2)),

		JWTSecret:     p.mustEnv("JWT_SECRET"),
		TokenTTL:      p.duration("TOKEN_TTL", 24*time.Hour),
		InternalToken: env("INTERNAL_TOKEN", ""),

		TaxRate:        p.rate("TAX_RATE", "0.19"),
		CurrencySymbol: env("CURRENCY_SYMBOL", "$"),
		IssuerName:     env("ISSUER_NAME", "Cotizador"),
		PhoneRegion:    strings.ToUpper(env("PHONE_REGION", "CL")),

		RedisAddr:       env("REDIS_ADDR", ""),
		InvoiceCacheTTL: p.duration("INVOICE_CACHE_TTL", time.Hour),
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		p.fail("LOG_LEVEL", err)
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		p.errs = append(p.errs, "DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}
	if len(p.errs) > 0 {
		return Config{}, fmt.Errorf("%s", strings.Join(p.errs, "; "))
	}
	return cfg, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// parser collects every bad value so startup reports them together.
type parser struct {
	errs []string
}

func (p *parser) fail(k string, err error) {
	p.errs = append(p.errs, fmt.Sprintf("%s: %v", k, err))
}

func (p *parser) mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		p.errs = append(p.errs, "missing env "+k)
	}
	return v
}

func (p *parser) duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(k, err)
		return def
	}
	return d
}

func (p *parser) integer(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		p.fail(k, fmt.Errorf("want a non-negative integer, got %q", v))
		return def
	}
	return n
}

func (p *parser) boolean(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(k, err)
		return def
	}
	return b
}

func (p *parser) rate(k, def string) decimal.Decimal {
	d, err := decimal.NewFromString(env(k, def))
	if err != nil {
		p.fail(k, err)
		return decimal.RequireFromString(def)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		p.fail(k, fmt.Errorf("rate %s out of range [0, 1)", d))
		return decimal.RequireFromString(def)
	}
	return d
}
