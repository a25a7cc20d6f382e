package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"padelclub/internal/api"
	"padelclub/internal/config"
	"padelclub/internal/courts"
	"padelclub/internal/domain"
	"padelclub/internal/events"
	"padelclub/internal/logging"
	"padelclub/internal/metrics"
	"padelclub/internal/pricing"
	"padelclub/internal/repository"
	"padelclub/internal/service"
	"padelclub/internal/store"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	bookings := store.NewBookingStore()
	if err := bookings.Seed(ctx, cfg.SeedBookings); err != nil {
		return fmt.Errorf("seed bookings: %w", err)
	}
	users := store.NewUserStore()
	if err := users.Seed(ctx, cfg.SeedUsers); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	notifications := store.NewNotificationLog()

	states := initStateRepository(ctx, cfg, logger)

	eventBus := events.NewBus()
	subscribeBookingEvents(eventBus, logger)

	table := pricing.NewTable(cfg.Venue.Pricing)
	courtClient := courts.NewSimulatedClient(
		time.Duration(*cfg.Courts.LatencyMS)*time.Millisecond,
		*cfg.Courts.FailureRate,
		logger,
	)

	bookingService := service.NewBookingService(bookings, notifications, states, courtClient, table, cfg.Venue, eventBus, logger)
	rosterService := service.NewRosterService(bookings, notifications, eventBus, logger)
	userService := service.NewUserService(users, states, notifications, logger)

	apiServer := api.NewServer(cfg.Server, cfg.RateLimit, bookingService, rosterService, userService, states, logger)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	var metricsServer *http.Server
	if cfg.Monitoring.PrometheusEnabled {
		metricsServer = startMetricsServer(cfg.Monitoring.PrometheusPort, logger)
	}

	logger.Info().
		Int("bookings", len(cfg.SeedBookings)).
		Int("users", len(cfg.SeedUsers)).
		Msg("padelclub started")

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("API shutdown error")
	}
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	return nil
}

// initStateRepository prefers redis and degrades to memory, either
// when redis is disabled or when it stops answering at runtime.
func initStateRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.StateRepository {
	ttl := time.Duration(cfg.Session.TTLHours) * time.Hour
	memory := repository.NewMemoryStateRepository(ttl)

	if !cfg.Redis.Enabled {
		return memory
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory sessions")
		return memory
	}

	primary := repository.NewRedisStateRepository(client, ttl)
	return repository.NewFailoverStateRepository(primary, memory, logger)
}

func subscribeBookingEvents(bus *events.Bus, logger *zerolog.Logger) {
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingUpdated,
		events.EventBookingDeleted,
		events.EventPlayerJoined,
		events.EventPlayerLeft,
		events.EventPlayerKicked,
		events.EventPlayerInvited,
		events.EventPricingUpdated,
	} {
		et := eventType
		bus.Subscribe(et, func(event events.Event) {
			logger.Debug().
				Str("event_type", et).
				RawJSON("payload", event.Payload).
				Msg("domain event")
		})
	}
}

func startMetricsServer(port int, logger *zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}
