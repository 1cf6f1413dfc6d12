package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medibook/internal/api"
	"medibook/internal/config"
	"medibook/internal/database"
	"medibook/internal/domain"
	"medibook/internal/events"
	"medibook/internal/logging"
	"medibook/internal/metrics"
	"medibook/internal/models"
	"medibook/internal/repository"
	"medibook/internal/service"
	"medibook/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "medibook",
		Short:        "Slot scheduling and booking ledger for appointments and lab tests",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfigPath(), "Path to config.yaml")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// app holds what every subcommand needs: config, logger and an open ledger.
type app struct {
	cfg    *config.Config
	logger *zerolog.Logger
	closer io.Closer
	db     *database.DB
}

func bootstrap(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := openLedger(cmd.Context(), cfg, logger)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, closer: closer, db: db}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close ledger")
	}
	if a.closer != nil {
		_ = a.closer.Close()
	}
}

func openLedger(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*database.DB, error) {
	var (
		db  *database.DB
		err error
	)
	if cfg.Database.Driver == config.DriverSQLite {
		db, err = database.NewDB(cfg.Database.Path, logger)
	} else {
		db, err = database.Open(cfg.Database.Driver, cfg.Database.DataSource(), cfg.Database.MaxConnections, logger)
	}
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
		return nil, err
	}

	if err := db.SyncDirectory(ctx, cfg.Providers, cfg.Resources); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sync directory: %w", err)
	}
	return db, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers with background workers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema and sync providers from config",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info().
				Str("driver", a.db.Driver()).
				Int("providers", len(a.cfg.Providers)).
				Msg("ledger migrated")
			return nil
		},
	}
}

func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Mark elapsed active bookings as absent once and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			kind, _ := cmd.Flags().GetString("kind")
			providerID, _ := cmd.Flags().GetInt64("provider")
			subjectID, _ := cmd.Flags().GetInt64("subject")
			scope := models.BookingScope{Kind: models.Kind(kind), ProviderID: providerID, SubjectID: subjectID}
			if scope.Kind != "" && !scope.Kind.Valid() {
				return fmt.Errorf("unknown kind %q", kind)
			}

			bookings, err := a.bookingService(cmd.Context(), nil, events.NewEventBus())
			if err != nil {
				return err
			}
			n, err := bookings.SweepAbsent(cmd.Context(), scope)
			if err != nil {
				return err
			}
			a.logger.Info().Int("marked", n).Msg("absence sweep finished")
			return nil
		},
	}
	cmd.Flags().String("kind", "", "Limit the sweep to one kind (appointment, lab_test)")
	cmd.Flags().Int64("provider", 0, "Limit the sweep to one provider")
	cmd.Flags().Int64("subject", 0, "Limit the sweep to one subject")
	return cmd
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the SQLite ledger into backup.storage_path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			backups := database.NewBackupService(a.db, a.cfg.Backup, logging.Component(a.logger, "backup"))
			path, err := backups.PerformBackup(cmd.Context())
			if err != nil {
				return err
			}
			backups.CleanupOldBackups()
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (a *app) bookingService(ctx context.Context, redisClient *redis.Client, bus *events.EventBus) (*service.BookingService, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}
	return service.NewBookingService(a.db, a.db, a.db, a.rateLimiter(ctx, redisClient), bus, service.Options{
		MaxAdvanceDays:     a.cfg.Booking.MaxAdvanceDays,
		CancellationWindow: a.cfg.Policy.CancellationWindow,
		CreateRateLimit:    a.cfg.Booking.CreateRateLimit,
		CreateRateWindow:   a.cfg.Booking.CreateRateWindow,
		Location:           loc,
	}, logging.Component(a.logger, "booking")), nil
}

// rateLimiter prefers the shared redis counter and falls back to process memory.
func (a *app) rateLimiter(ctx context.Context, redisClient *redis.Client) domain.RateLimiter {
	memory := repository.NewMemoryRateLimiter()
	go pruneLoop(ctx, memory, a.cfg.Booking.CreateRateWindow)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverRateLimiter(
		repository.NewRedisRateLimiter(redisClient),
		memory,
		logging.Component(a.logger, "rate-limiter"),
	)
}

func pruneLoop(ctx context.Context, limiter *repository.MemoryRateLimiter, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune()
		}
	}
}

func (a *app) initRedis(ctx context.Context) *redis.Client {
	if a.cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(a.cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		// клиент оставляем: failover-лимитер и sweeper переживут недоступность
		a.logger.Warn().Err(err).Msg("redis connection failed, continuing in degraded mode")
	} else {
		a.logger.Info().Str("addr", a.cfg.Redis.Address).Msg("redis connected")
	}
	return client
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger.With().Str("component", "api-main").Logger()

	if !a.cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := a.initRedis(ctx)
	defer func() { _ = repository.Close(redisClient) }()

	bus := events.NewEventBus()
	bus.OnError(func(event *events.Event, err error) {
		logger.Warn().Err(err).Str("event", event.Type).Msg("event handler failed")
	})
	if a.cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		metrics.Subscribe(bus)
	}

	bookings, err := a.bookingService(ctx, redisClient, bus)
	if err != nil {
		return err
	}
	availability := service.NewAvailabilityService(a.db, a.db, logging.Component(a.logger, "availability"))

	ready := func(ctx context.Context) error {
		return a.db.PingContext(ctx)
	}

	grpcServer, err := api.NewGRPCServer(&a.cfg.API, bookings, ready, a.logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}
	httpServer := api.NewHTTPServer(a.cfg.API, bookings, availability, a.db, ready, a.logger)

	if a.cfg.Monitoring.PrometheusEnabled {
		go startMetricsServer(ctx, a.cfg.Monitoring.PrometheusPort, &logger)
	}
	if a.cfg.Sweeper.Enabled {
		sweeper := worker.NewSweeper(bookings, redisClient, a.cfg.Sweeper.Interval, worker.DefaultRetryPolicy(), a.logger)
		go sweeper.Start(ctx)
	}
	go database.NewBackupService(a.db, a.cfg.Backup, logging.Component(a.logger, "backup")).Start(ctx)
	go grpcServer.WatchHealth(ctx, 10*time.Second)

	return startServers(ctx, grpcServer, httpServer, a.cfg, &logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if cfg.API.GRPC.Enabled {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Str("grpc_addr", grpcServer.Addr()).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
