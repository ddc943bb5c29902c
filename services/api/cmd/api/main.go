package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/stagepass/ticket-ledger/services/api/internal/app"
	"github.com/stagepass/ticket-ledger/services/api/internal/clock"
	"github.com/stagepass/ticket-ledger/services/api/internal/config"
	"github.com/stagepass/ticket-ledger/services/api/internal/domain"
	"github.com/stagepass/ticket-ledger/services/api/internal/events"
	"github.com/stagepass/ticket-ledger/services/api/internal/storage/memory"
	"github.com/stagepass/ticket-ledger/services/api/internal/storage/postgres"
	transporthttp "github.com/stagepass/ticket-ledger/services/api/internal/transport/http"
	"github.com/stagepass/ticket-ledger/services/api/migrations"
)

const startupTimeout = 10 * time.Second

func main() {
	logger := log.Default()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Printf("WARN: could not load .env: %v", err)
	}

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	deps, err := buildStorage(startupCtx, cfg, logger)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer deps.close()

	if err := seedRates(startupCtx, deps.rates, cfg.Ledger.InitialRates, logger); err != nil {
		log.Fatalf("seed rates: %v", err)
	}

	publisher := buildPublisher(cfg, logger)
	defer func() { _ = publisher.Close() }()

	clk := clock.NewSystem()
	catalogSvc := app.NewCatalogService(deps.catalog, clk, deps.artistIDs, deps.venueIDs, deps.eventIDs, publisher, logger)
	guard := app.NewGuard(deps.tickets, cfg.Ledger.PurchaseCap)
	ticketSvc := app.NewTicketService(
		deps.tickets, deps.catalog, deps.analytics, deps.rates,
		guard, app.NewSequentialSeats(), deps.ticketIDs, clk, publisher, logger,
	)
	currencySvc := app.NewCurrencyService(deps.rates, deps.analytics)
	analyticsSvc := app.NewAnalyticsService(deps.analytics, deps.catalog)

	mux := transporthttp.NewMux(transporthttp.Services{
		Catalog:   catalogSvc,
		Tickets:   ticketSvc,
		Currency:  currencySvc,
		Analytics: analyticsSvc,
	}, cfg.Auth.JWTSecret)

	corsOrigins := parseCSV(os.Getenv("CORS_ORIGINS"))
	handler := transporthttp.RequestLogger(transporthttp.CORS(corsOrigins, mux), logger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Printf("api listening on :%d storage=%s", cfg.Server.Port, cfg.Storage.Driver)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		logger.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf("server shutdown error: %v", err)
	}
	logger.Printf("server stopped")
}

// deps holds the wired repositories plus the id sequences seeded from them.
type deps struct {
	catalog   app.CatalogRepository
	tickets   app.TicketRepository
	rates     app.RateRepository
	analytics app.AnalyticsRepository

	artistIDs *app.Sequence32
	venueIDs  *app.Sequence32
	eventIDs  *app.Sequence32
	ticketIDs *app.Sequence64

	close func()
}

func buildStorage(ctx context.Context, cfg *config.Config, logger *log.Logger) (*deps, error) {
	switch cfg.Storage.Driver {
	case "memory":
		logger.Printf("WARN: memory storage configured, ledger state will not survive restarts")
		store := memory.NewStore()
		return &deps{
			catalog:   store,
			tickets:   store,
			rates:     store,
			analytics: store,
			artistIDs: app.NewSequence32(0),
			venueIDs:  app.NewSequence32(0),
			eventIDs:  app.NewSequence32(0),
			ticketIDs: app.NewSequence64(0),
			close:     func() {},
		}, nil

	case "postgres":
		poolCfg, err := pgxpool.ParseConfig(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse database url: %w", err)
		}
		poolCfg.MaxConns = cfg.Storage.MaxConns

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := migrations.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}

		catalogRepo := postgres.NewCatalogRepository(pool)
		ticketRepo := postgres.NewTicketRepository(pool)

		maxArtist, err := catalogRepo.MaxArtistID(ctx)
		if err != nil {
			pool.Close()
			return nil, err
		}
		maxVenue, err := catalogRepo.MaxVenueID(ctx)
		if err != nil {
			pool.Close()
			return nil, err
		}
		maxEvent, err := catalogRepo.MaxEventID(ctx)
		if err != nil {
			pool.Close()
			return nil, err
		}
		maxTicket, err := ticketRepo.MaxTicketID(ctx)
		if err != nil {
			pool.Close()
			return nil, err
		}

		return &deps{
			catalog:   catalogRepo,
			tickets:   ticketRepo,
			rates:     postgres.NewRateRepository(pool),
			analytics: postgres.NewAnalyticsRepository(pool),
			artistIDs: app.NewSequence32(maxArtist),
			venueIDs:  app.NewSequence32(maxVenue),
			eventIDs:  app.NewSequence32(maxEvent),
			ticketIDs: app.NewSequence64(maxTicket),
			close:     pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// seedRates installs configured rates that are not already present, so a
// restart never clobbers rates set through the API.
func seedRates(ctx context.Context, rates app.RateRepository, initial map[string]uint64, logger *log.Logger) error {
	for code, rate := range initial {
		cur, err := domain.ParseCurrency(code)
		if err != nil {
			return fmt.Errorf("initial rate %s: %w", code, err)
		}
		if _, err := rates.GetRate(ctx, cur); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrUnknownCurrency) {
			return err
		}
		if err := rates.SetRate(ctx, cur, rate); err != nil {
			return err
		}
		logger.Printf("seeded rate currency=%s rate=%d", cur, rate)
	}
	return nil
}

func buildPublisher(cfg *config.Config, logger *log.Logger) events.Publisher {
	if cfg.Broker.URL == "" {
		logger.Printf("WARN: AMQP_URL not set, integration events disabled")
		return events.Nop{}
	}
	pub, err := events.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		logger.Printf("WARN: broker unavailable, integration events disabled: %v", err)
		return events.Nop{}
	}
	logger.Printf("publishing events exchange=%s", cfg.Broker.Exchange)
	return pub
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
