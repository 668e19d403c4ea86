// Package main provides a CLI tool that seeds the initial administrator.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"

	"apikit/internal/core/apperror"
	"apikit/internal/core/security"
	"apikit/internal/domain/auth"
	"apikit/internal/infrastructure/storage/postgres"
	"apikit/internal/infrastructure/storage/postgres/auth_repo"
	"apikit/internal/infrastructure/storage/postgres/migrations"
	"apikit/pkg/logger"
)

type seedConfig struct {
	DatabaseURL    string `env:"DATABASE_URL,required"`
	MigrationTable string `env:"DB_MIGRATION_TABLE" envDefault:"schema_migrations"`
	AdminUsername  string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminEmail     string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword  string `env:"ADMIN_PASSWORD,required"`
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	var cfg seedConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, migrations.FS, cfg.MigrationTable); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	userID, err := seedAdminUser(ctx, pool, cfg)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	log.Infow("seeding completed successfully", "admin_id", userID)
}

// seedAdminUser registers the administrator if needed and grants ADMIN.
func seedAdminUser(ctx context.Context, pool *postgres.Pool, cfg seedConfig) (int64, error) {
	txManager := postgres.NewTxManager(pool)
	userRepo := auth_repo.NewUserRepo(txManager)

	auditLog, err := postgres.NewAuditLog(txManager)
	if err != nil {
		return 0, err
	}

	// Register never touches sessions or tokens.
	svc := auth.NewService(userRepo, nil, auditLog, txManager, nil, auth.DefaultServiceConfig())

	var userID int64
	created, err := svc.Register(ctx, auth.RegisterRequest{
		Username: cfg.AdminUsername,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		FullName: "System Administrator",
	})
	switch {
	case err == nil:
		userID = created.ID
		logger.Info(ctx, "admin user created", "user_id", userID)
	case apperror.IsKind(err, apperror.KindLogic):
		existing, findErr := userRepo.FindByUsernameOrEmail(ctx, cfg.AdminUsername)
		if findErr != nil {
			return 0, findErr
		}
		if existing == nil {
			return 0, fmt.Errorf("email %s belongs to another user", cfg.AdminEmail)
		}
		userID = existing.ID
		logger.Info(ctx, "admin user already exists", "user_id", userID)
	default:
		return 0, err
	}

	if err := userRepo.AssignRole(ctx, userID, security.RoleAdmin); err != nil {
		return 0, err
	}
	return userID, nil
}
