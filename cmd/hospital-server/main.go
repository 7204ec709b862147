package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvdm12/hospital-api/internal/config"
	"github.com/dvdm12/hospital-api/internal/domain/appointment"
	"github.com/dvdm12/hospital-api/internal/domain/identity"
	"github.com/dvdm12/hospital-api/internal/platform/auth"
	"github.com/dvdm12/hospital-api/internal/platform/db"
	"github.com/dvdm12/hospital-api/internal/platform/lock"
	"github.com/dvdm12/hospital-api/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-server",
		Short: "Hospital appointment scheduling API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

// sweepCmd runs a single no-show sweep and exits. Useful from cron when the
// long-running server's periodic sweeper is not wanted.
func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Mark overdue appointments as no-show once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc, err := buildAppointmentService(ctx, cfg, pool, logger)
			if err != nil {
				return err
			}

			marked, err := svc.ProcessNoShows(ctx, cfg.NoShowGrace())
			if err != nil {
				return fmt.Errorf("sweep failed: %w", err)
			}
			fmt.Printf("Marked %d appointment(s) as no-show.\n", len(marked))
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

// newLocker picks the doctor locker implementation. Without Redis the
// serializable transaction still prevents double-booking on a single
// Postgres; the lock only adds cross-instance fairness.
func newLocker(ctx context.Context, redisURL string, ttl time.Duration, logger zerolog.Logger) (lock.DoctorLocker, error) {
	if redisURL == "" {
		logger.Info().Msg("redis not configured, using in-process locking only")
		return lock.NoopLocker{}, nil
	}
	client, err := lock.NewClient(ctx, redisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info().Msg("connected to redis")
	return lock.NewRedisDoctorLocker(client, ttl), nil
}

func buildAppointmentService(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*appointment.Service, error) {
	doctorRepo := identity.NewDoctorRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	identitySvc := identity.NewService(doctorRepo, patientRepo)

	apptRepo := appointment.NewRepoPG(pool)
	validator := appointment.NewValidator(identitySvc, apptRepo)

	locker, err := newLocker(ctx, cfg.RedisURL, cfg.DoctorLockTTL, logger)
	if err != nil {
		return nil, err
	}

	return appointment.NewService(apptRepo, validator, identitySvc, locker,
		appointment.NewTxRunnerPG(pool), logger, cfg.SweepPageSize), nil
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("running with dev auth, all requests act as admin")
		e.Use(auth.DevMiddleware())
	} else {
		e.Use(auth.Middleware([]byte(cfg.JWTSecret)))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	// Identity domain
	doctorRepo := identity.NewDoctorRepoPG(pool)
	patientRepo := identity.NewPatientRepoPG(pool)
	identitySvc := identity.NewService(doctorRepo, patientRepo)
	identity.NewHandler(identitySvc).RegisterRoutes(apiV1)

	// Appointment domain
	apptRepo := appointment.NewRepoPG(pool)
	validator := appointment.NewValidator(identitySvc, apptRepo)
	locker, err := newLocker(ctx, cfg.RedisURL, cfg.DoctorLockTTL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build doctor locker")
	}
	apptSvc := appointment.NewService(apptRepo, validator, identitySvc, locker,
		appointment.NewTxRunnerPG(pool), logger, cfg.SweepPageSize)
	appointment.NewHandler(apptSvc, cfg.NoShowGrace()).RegisterRoutes(apiV1)

	// Background no-show sweeper
	sweeper := appointment.NewSweeper(apptSvc, cfg.NoShowGrace(), cfg.SweepInterval, logger)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)
	defer stopSweep()

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
