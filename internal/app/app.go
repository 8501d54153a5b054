package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/app/config"
	apphttp "github.com/cotizador/quoter/internal/app/http"
	"github.com/cotizador/quoter/internal/app/http/handlers"
	"github.com/cotizador/quoter/internal/app/logging"
	"github.com/cotizador/quoter/internal/domain/auth"
	"github.com/cotizador/quoter/internal/domain/catalog"
	xlsx "github.com/cotizador/quoter/internal/domain/export/excelize"
	"github.com/cotizador/quoter/internal/domain/quote"
	pdfgen "github.com/cotizador/quoter/internal/domain/quote/pdf/gofpdf"
	"github.com/cotizador/quoter/internal/domain/quote/pipeline"
	"github.com/cotizador/quoter/internal/domain/user"
	"github.com/cotizador/quoter/internal/infra/cache"
	"github.com/cotizador/quoter/internal/infra/db/memory"
	"github.com/cotizador/quoter/internal/infra/db/postgres"
)

type repos struct {
	users   user.Repository
	catalog catalog.Repository
	quotes  quote.Repository
}

func Run() {
	cfg := config.MustLoad()
	logg := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Pinger{}
	var store repos
	if cfg.DatabaseURL == "" {
		logg.Warn("DATABASE_URL not set, using in-memory store")
		mem := memory.New()
		store = repos{mem.Users(), mem.Catalog(), mem.Quotes()}
	} else {
		db, err := postgres.New(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			logg.Fatalf("db: %v", err)
		}
		defer db.Close()
		if cfg.DBMigrate {
			if err := db.Migrate(ctx); err != nil {
				logg.Fatalf("db: %v", err)
			}
		}
		store = repos{db.Users(), db.Catalog(), db.Quotes()}
		checks["postgres"] = db.Pool.Ping
	}

	invoiceCache := cache.Nop()
	if cfg.RedisAddr != "" {
		invoiceCache = cache.NewRedisCache(cfg.RedisAddr, "quoter")
		if err := cache.Ping(ctx, invoiceCache); err != nil {
			logg.WithField("addr", cfg.RedisAddr).Warnf("redis unreachable, invoices render uncached until it recovers: %v", err)
		}
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx, invoiceCache) }
	}

	money := quote.Money{Symbol: cfg.CurrencySymbol}
	svc := &pipeline.Service{
		Quotes:   store.quotes,
		Catalog:  store.catalog,
		Calc:     quote.NewCalculator(cfg.TaxRate),
		PDF:      pdfgen.New(money, cfg.IssuerName, logg),
		Sheets:   xlsx.New(),
		Cache:    invoiceCache,
		CacheTTL: cfg.InvoiceCacheTTL,
		Log:      logg,
	}

	router := apphttp.NewRouter(cfg, handlers.Deps{
		Users:       store.users,
		Catalog:     store.catalog,
		Quotes:      store.quotes,
		Pipeline:    svc,
		Tokens:      auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Log:         logg,
		PhoneRegion: cfg.PhoneRegion,
	}, checks)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logg.WithFields(logrus.Fields{"addr": cfg.HTTPAddr, "tax_rate": cfg.TaxRate.String()}).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalf("http: %v", err)
		}
	case <-ctx.Done():
		logg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Errorf("http shutdown: %v", err)
		}
	}
}
