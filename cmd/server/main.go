package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inventory-api/internal/config"
	apphttp "inventory-api/internal/http"
	"inventory-api/internal/metrics"
	"inventory-api/internal/repository"
	"inventory-api/internal/repository/document"
	"inventory-api/internal/repository/memory"
	redisrepo "inventory-api/internal/repository/redis"
	"inventory-api/internal/repository/relational"
	"inventory-api/internal/service"
	"inventory-api/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	configureLogger(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := relational.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := relational.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate database: %v", err)
	}
	logger.Infof("using %s database", db.Dialect())

	userRepo := relational.NewUserRepository(db)
	itemRepo := relational.NewItemRepository(db)

	sessionRepo, closeSessions, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup session store: %v", err)
	}
	defer closeSessions()

	secret, err := sessionSecret(cfg, logger)
	if err != nil {
		logger.Fatalf("session secret: %v", err)
	}

	userService := service.NewUserService(userRepo)
	sessionService, err := service.NewSessionService(sessionRepo, service.SessionOptions{
		IdleTimeout: cfg.Session.IdleTimeout,
		Secret:      secret,
	})
	if err != nil {
		logger.Fatalf("setup sessions: %v", err)
	}

	backends := []apphttp.Backend{
		{Name: "relational", Prefix: "/inventory", Items: service.NewInventoryService(itemRepo)},
	}

	if cfg.Document.URI != "" {
		client, mongoDB, err := document.Open(ctx, cfg.Document.URI, cfg.Document.Database)
		if err != nil {
			logger.Fatalf("open document store: %v", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Warnf("mongo disconnect: %v", err)
			}
		}()

		docItems := document.NewItemRepository(mongoDB)
		if err := docItems.Init(ctx); err != nil {
			logger.Fatalf("init document repository: %v", err)
		}
		backends = append(backends, apphttp.Backend{
			Name:   "document",
			Prefix: "/mongo/inventory",
			Items:  service.NewInventoryService(docItems),
		})
		logger.Infof("document inventory enabled (database %s)", cfg.Document.Database)
	}

	var exports service.ExportService
	if cfg.Storage.Bucket != "" {
		storageSvc, err := buildStorage(ctx, cfg, logger)
		if err != nil {
			logger.Fatalf("setup storage: %v", err)
		}
		exports = service.NewExportService(storageSvc, service.ExportOptions{
			Bucket:    cfg.Storage.Bucket,
			KeyPrefix: cfg.Storage.KeyPrefix,
			URLExpiry: cfg.Storage.URLExpiry,
		})
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		sessionService,
		apphttp.Config{
			CookieName:     cfg.Session.CookieName,
			CookieSecure:   cfg.Session.CookieSecure,
			AllowedOrigins: cfg.Origins(),
			Exports:        exports,
			Metrics:        metrics.New(),
			Logger:         logger,
		},
		backends...,
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) {
	if strings.EqualFold(cfg.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

func ginMode(mode string) string {
	switch strings.ToLower(mode) {
	case gin.DebugMode:
		return gin.DebugMode
	case gin.TestMode:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

func buildSessionStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.SessionRepository, func(), error) {
	if !strings.EqualFold(cfg.Session.Store, "redis") {
		logger.Info("using in-memory session store")
		return memory.NewSessionRepository(), func() {}, nil
	}

	client, err := redisrepo.Connect(ctx, cfg.Redis.URL, cfg.Redis.PoolSize)
	if err != nil {
		return nil, nil, err
	}
	logger.Infof("using redis session store (pool %d)", cfg.Redis.PoolSize)
	return redisrepo.NewSessionRepository(client), func() {
		if err := client.Close(); err != nil {
			logger.Warnf("redis close: %v", err)
		}
	}, nil
}

func sessionSecret(cfg config.Config, logger *logrus.Logger) ([]byte, error) {
	if s := strings.TrimSpace(cfg.Session.Secret); s != "" {
		return []byte(s), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	logger.Warn("session.secret not set; generated a random one, sessions will not survive a restart")
	return secret, nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("exporting to s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
