// Package main is the entry point for the apikit API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"apikit/internal/config"
	"apikit/internal/core/i18n"
	"apikit/internal/domain/auth"
	"apikit/internal/domain/user"
	v1 "apikit/internal/infrastructure/http/v1"
	"apikit/internal/infrastructure/http/v1/handlers"
	"apikit/internal/infrastructure/http/v1/middleware"
	"apikit/internal/infrastructure/session"
	"apikit/internal/infrastructure/storage/postgres"
	"apikit/internal/infrastructure/storage/postgres/auth_repo"
	"apikit/internal/infrastructure/storage/postgres/migrations"
	"apikit/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		Development: !cfg.App.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting server", "app", cfg.App.Name, "env", cfg.App.Env)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdle
	poolCfg.ApplicationName = cfg.App.Name

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(ctx, pool, migrations.FS, cfg.Database.MigrationTable); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		log.Info("database migrations applied")
	}

	// --- Redis token store ---
	redisCfg := session.DefaultConfig(cfg.Redis.URL)
	redisCfg.PoolSize = cfg.Redis.PoolSize
	redisCfg.RetryAttempts = cfg.Redis.RetryAttempts
	redisCfg.RetryInterval = cfg.Redis.RetryInterval

	redisClient, err := session.Open(ctx, redisCfg)
	if err != nil {
		log.Fatalw("failed to connect to redis", "error", err)
	}
	defer func() { _ = redisClient.Close() }()

	// --- Services ---
	txManager := postgres.NewTxManager(pool,
		postgres.WithIsolation(pgx.TxIsoLevel(cfg.Database.TxIsolation)),
		postgres.WithStatementTimeout(cfg.Database.StatementTimeout),
	)
	userRepo := auth_repo.NewUserRepo(txManager)

	auditLog, err := postgres.NewAuditLog(txManager)
	if err != nil {
		log.Fatalw("failed to create audit log", "error", err)
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:      cfg.JWT.Secret,
		Issuer:      cfg.JWT.Issuer,
		TTL:         cfg.JWT.TTL,
		RememberTTL: cfg.JWT.RememberTTL,
	})

	authService := auth.NewService(
		userRepo,
		session.NewRedisStore(redisClient, cfg.Redis.KeyPrefix),
		auditLog,
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)
	userService := user.NewService(userRepo)

	resolver, err := i18n.LoadEmbedded()
	if err != nil {
		log.Fatalw("failed to load message catalogs", "error", err)
	}

	// --- Router ---
	mode := gin.DebugMode
	if cfg.App.IsProduction() {
		mode = gin.ReleaseMode
	}

	router := v1.NewRouter(v1.RouterConfig{
		Mode:        mode,
		Logger:      log,
		AuthService: authService,
		UserService: userService,
		Resolver:    resolver,
		ReadinessChecks: map[string]handlers.Check{
			"postgres": pool.Healthcheck(),
			"redis":    session.Healthcheck(redisClient),
		},
		CORS: middleware.CORSConfig{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		},
		StaticDir: cfg.App.StaticDir,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
