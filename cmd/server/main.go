package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	"github.com/zanledger/server/internal/api"
	"github.com/zanledger/server/internal/config"
	"github.com/zanledger/server/internal/repository"
	"github.com/zanledger/server/internal/seed"
	"github.com/zanledger/server/internal/service"
	"github.com/zanledger/server/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "zanledger",
		Short:         "Deposit declaration and receipt reconciliation server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return err
			}
			utils.SetupLogger(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), cfg)
		},
	}
	root.RunE = serve.RunE

	migrateCmd := &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "down" {
				return config.RollbackMigrations(cfg)
			}
			return config.RunMigrations(cfg)
		},
	}

	var fixturePath string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and optional sample customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), cfg, fixturePath)
		},
	}
	seedCmd.Flags().StringVarP(&fixturePath, "fixture", "f", "", "YAML file of sample customers")

	root.AddCommand(serve, migrateCmd, seedCmd)
	return root
}

func runServer(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to set up database")
		return err
	}
	defer db.Close()

	repo := repository.NewPostgresRepository(db)
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	handler := api.NewHandler(svc, api.Options{
		CookieSecure:   cfg.Auth.CookieSecure,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Failed to start server")
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func runSeed(ctx context.Context, cfg *config.Config, fixturePath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewPostgresRepository(db)
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	seeder := seed.NewSeeder(repo, svc)

	if _, err := seeder.Admin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return err
	}

	if fixturePath == "" {
		return nil
	}

	fixture, err := seed.LoadFixture(fixturePath)
	if err != nil {
		return err
	}
	_, err = seeder.Customers(ctx, fixture)
	return err
}
