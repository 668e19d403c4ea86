package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"apikit/internal/core/tx"
	"apikit/pkg/logger"
)

var tracer = otel.Tracer("apikit/postgres")

var _ tx.Manager = (*TxManager)(nil)

// Querier is satisfied by both pgx.Tx and *pgxpool.Pool.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txStarter is satisfied by *pgxpool.Pool.
type txStarter interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// TxOption tunes the transactions a TxManager opens.
type TxOption func(*TxManager)

// WithIsolation sets the isolation level (read committed by default).
func WithIsolation(level pgx.TxIsoLevel) TxOption {
	return func(m *TxManager) { m.isolation = level }
}

// WithStatementTimeout bounds every statement inside a transaction; 0 disables it.
func WithStatementTimeout(d time.Duration) TxOption {
	return func(m *TxManager) { m.statementTimeout = d }
}

// TxManager runs units of work in one transaction stored in the context.
// Nested calls join the outer transaction.
type TxManager struct {
	pool             txStarter
	isolation        pgx.TxIsoLevel
	statementTimeout time.Duration
}

// NewTxManager creates a transaction manager over pool.
func NewTxManager(pool *Pool, opts ...TxOption) *TxManager {
	m := &TxManager{
		pool:             pool.Pool,
		isolation:        pgx.ReadCommitted,
		statementTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type txKey struct{}

// RunInTransaction executes fn in a transaction; an error from fn rolls it back.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	ctx, span := tracer.Start(ctx, "db.transaction",
		trace.WithAttributes(attribute.String("db.tx.isolation", string(m.isolation))))
	defer span.End()

	if err := m.run(ctx, fn); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transaction failed")
		return err
	}
	return nil
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	t, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: m.isolation})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if m.statementTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL statement_timeout = %d", m.statementTimeout.Milliseconds())
		if _, err := t.Exec(ctx, stmt); err != nil {
			_ = t.Rollback(context.WithoutCancel(ctx))
			return fmt.Errorf("set statement_timeout: %w", err)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := t.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
				logger.Error(ctx, "rollback after panic failed", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		// Rollback must complete even when ctx is already cancelled.
		if rbErr := t.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			logger.Error(ctx, "rollback failed", "error", rbErr, "cause", err)
		}
		return err
	}

	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// DB returns the transaction bound to ctx, or the pool outside one.
func (m *TxManager) DB(ctx context.Context) Querier {
	if t, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return t
	}
	return m.pool
}
