package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"apikit/pkg/logger"
)

var (
	ErrSetDialect      = errors.New("migrator: failed to set dialect")
	ErrApplyMigrations = errors.New("migrator: failed to apply migrations")
)

// Migrate applies all pending goose migrations from migrations.
func Migrate(ctx context.Context, pool *Pool, migrations fs.FS, table string) error {
	// Shares the pool's connections; closing it would close the pool.
	db := stdlib.OpenDBFromPool(pool.Pool)

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{log: logger.FromContext(ctx).WithComponent("migrator")})
	if table != "" {
		goose.SetTableName(table)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}

	return nil
}

type gooseLogger struct {
	log *logger.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only; goose returns the error to the caller.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
