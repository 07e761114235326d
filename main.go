package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ekaya-inc/archcatalog/pkg/cache"
	"github.com/ekaya-inc/archcatalog/pkg/config"
	"github.com/ekaya-inc/archcatalog/pkg/database"
	"github.com/ekaya-inc/archcatalog/pkg/handlers"
	"github.com/ekaya-inc/archcatalog/pkg/logging"
	"github.com/ekaya-inc/archcatalog/pkg/middleware"
	"github.com/ekaya-inc/archcatalog/pkg/models"
	"github.com/ekaya-inc/archcatalog/pkg/repositories"
	"github.com/ekaya-inc/archcatalog/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	connStr := cfg.Database.ConnectionString()
	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(connStr)),
		zap.Bool("redis_enabled", cfg.Redis.Enabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.RunMigrations {
		if err := migrate(connStr, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.String("error", logging.SanitizeError(err)))
		}
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            connStr,
		MaxConnections: cfg.Database.MaxConnections,
		AcquireTimeout: 5 * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	listCache := cache.NewNoopListCache()
	redisClient, err := database.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		// Serve uncached when Redis is down.
		logger.Warn("Redis unavailable, list cache disabled", zap.String("error", logging.SanitizeError(err)))
	} else if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		listCache = cache.NewRedisListCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.ListTTL)
		logger.Info("List cache enabled", zap.String("redis", cfg.Redis.Addr()))
	}
	listCache = cache.Guard(listCache)

	// Repositories
	applicationRepo := repositories.NewApplicationRepository()
	capabilityRepo := repositories.NewCapabilityRepository()
	processRepo := repositories.NewProcessRepository()
	technologyRepo := repositories.NewTechnologyRepository()
	ownerRepo := repositories.NewOwnerRepository()
	interfaceRepo := repositories.NewInterfaceRepository()
	skillRepo := repositories.NewSkillRepository()
	relationshipRepo := repositories.NewOwnerRelationshipRepository()

	// Services
	applicationService := services.NewApplicationService(applicationRepo, listCache, logger)
	capabilityService := services.NewCapabilityService(capabilityRepo, listCache, logger)
	processService := services.NewProcessService(processRepo, listCache, logger)
	technologyService := services.NewTechnologyService(technologyRepo, listCache, logger)
	ownerService := services.NewOwnerService(ownerRepo, listCache, logger)
	interfaceService := services.NewInterfaceService(interfaceRepo, listCache, logger)
	skillService := services.NewSkillService(skillRepo, listCache, logger)
	relationshipService := services.NewOwnerRelationshipService(relationshipRepo, listCache, logger)

	// API routes run with a request-scoped connection
	api := http.NewServeMux()
	handlers.NewCatalogHandler[models.Application]("application", applicationService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Capability]("capability", capabilityService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Process]("process", processService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Technology]("technology", technologyService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Owner]("owner", ownerService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Interface]("interface", interfaceService, logger).RegisterRoutes(api)
	handlers.NewCatalogHandler[models.Skill]("skill", skillService, logger).RegisterRoutes(api)
	handlers.NewRelationshipHandler(relationshipService, logger).RegisterRoutes(api)

	withScope := database.WithScope(database.NewScopeFunc(db), logger)
	requestLogger := middleware.RequestLogger(logger.Named("http"))

	mux := http.NewServeMux()
	mux.Handle("/api/", requestLogger(withScope(api)))
	handlers.NewHealthHandler(cfg, db, logger).RegisterRoutes(mux)

	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting archcatalog", zap.String("addr", server.Addr), zap.String("base_url", cfg.BaseURL),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	logConfig := zap.NewDevelopmentConfig()
	if cfg.IsProduction() {
		logConfig = zap.NewProductionConfig()
	}
	logConfig.Level = zap.NewAtomicLevelAt(level)

	return logConfig.Build()
}

func migrate(connStr string, logger *zap.Logger) error {
	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	return database.RunMigrations(sqlDB, logger)
}
