package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-quiz-service/internal/config"
	"github.com/SAP-F-2025/lms-quiz-service/internal/events"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories/casdoor"
	"github.com/SAP-F-2025/lms-quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/lms-quiz-service/internal/services"
	"github.com/SAP-F-2025/lms-quiz-service/internal/validator"
	"github.com/SAP-F-2025/lms-quiz-service/pkg"
)

const shutdownTimeout = 30 * time.Second

// application holds the dependencies shared by the commands
type application struct {
	cfg            *config.Config
	logger         *slog.Logger
	db             *gorm.DB
	repo           repositories.Repository
	validator      *validator.Validator
	serviceManager services.ServiceManager
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

// bootstrap connects the stores and builds the service layer
func bootstrap(ctx context.Context) (*application, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it the repositories always read through
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	repoConfig := postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	}
	if cfg.AuthProvider == config.AuthProviderCasdoor {
		repoConfig.Users = casdoor.NewUserCasdoor(casdoor.CasdoorConfig{
			Endpoint:         cfg.Casdoor.Endpoint,
			ClientID:         cfg.Casdoor.ClientID,
			ClientSecret:     cfg.Casdoor.ClientSecret,
			Certificate:      cfg.Casdoor.Cert,
			OrganizationName: cfg.Casdoor.Organization,
			ApplicationName:  cfg.Casdoor.Application,
		}, redisClient)
	}

	repoManager := postgres.NewRepositoryManager(repoConfig)
	if err := repoManager.Initialize(); err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	publisher, err := events.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		repoManager.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	v := validator.New()
	serviceManager := services.NewDefaultServiceManager(repoManager.GetRepository(), logger, v, publisher)
	if err := serviceManager.Initialize(ctx); err != nil {
		serviceManager.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &application{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		repo:           repoManager.GetRepository(),
		validator:      v,
		serviceManager: serviceManager,
	}, nil
}

// close flushes the event publisher and closes the database and cache connections
func (a *application) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.serviceManager.Shutdown(ctx); err != nil {
		a.logger.Error("Failed to shutdown services", "error", err)
	}
}
