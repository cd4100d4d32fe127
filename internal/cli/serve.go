package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/handlers"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-quiz-service/internal/utils"
)

func newServeCmd() *cobra.Command {
	var (
		port        string
		autoMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), port, autoMigrate)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (overrides PORT)")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", false, "apply schema migrations before serving")
	return cmd
}

func runServe(ctx context.Context, port string, autoMigrate bool) error {
	app, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer app.close()

	cfg := app.cfg
	if port != "" {
		cfg.Port = port
	}

	if autoMigrate {
		if err := postgres.Migrate(app.db, cfg.AuthProvider == config.AuthProviderJWT); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		app.logger.Info("Migrations applied")
	}

	logger := utils.NewSlogLogger(app.logger)

	var authProvider handlers.AuthProvider
	switch cfg.AuthProvider {
	case config.AuthProviderJWT:
		authProvider = handlers.NewJWTAuthMiddleware(cfg.JWT, app.repo.User(), logger)
	default:
		authProvider = handlers.NewCasdoorAuthMiddleware(cfg.Casdoor, app.repo.User(), logger)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlers.NewHandlerManager(app.serviceManager, app.validator, logger, authProvider, app.repo.User()).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment, "auth_provider", cfg.AuthProvider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server exited")
	return nil
}
