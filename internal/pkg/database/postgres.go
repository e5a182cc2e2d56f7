package database

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/logger"
	"github.com/acadvisor/acadvisor/internal/pkg/metrics"
)

const slowQueryThreshold = 100 * time.Millisecond

// PostgresDB wraps a PostgreSQL connection pool
type PostgresDB struct {
	Pool   *pgxpool.Pool
	tracer *queryTracer
}

// NewPostgres creates a new PostgreSQL connection pool
func NewPostgres(ctx context.Context, cfg config.PostgresConfig) (*PostgresDB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	tracer := newQueryTracer(logger.IsDebug())
	poolConfig.ConnConfig.Tracer = tracer

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", cfg.MaxConns),
	)

	return &PostgresDB{Pool: pool, tracer: tracer}, nil
}

// Close closes the connection pool
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks connectivity
func (db *PostgresDB) Ping(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("postgres pool not initialized")
	}
	return db.Pool.Ping(ctx)
}

// Query runs a read query on the pool
func (db *PostgresDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return db.Pool.Query(ctx, sql, args...)
}

// Stats returns what the tracer has seen since the pool opened
func (db *PostgresDB) Stats() QueryStats {
	if db.tracer == nil {
		return QueryStats{}
	}
	return db.tracer.stats()
}

// QueryStats summarizes traced queries
type QueryStats struct {
	Queries  int64
	Failed   int64
	Slow     int64
	RowsRead int64
}

// queryTracer implements pgx.QueryTracer. Every query feeds the
// acadvisor_db_* metrics; slow and failed ones are logged.
type queryTracer struct {
	debug bool

	queries  atomic.Int64
	failed   atomic.Int64
	slow     atomic.Int64
	rowsRead atomic.Int64
}

type traceKey struct{}

type traceStart struct {
	at  time.Time
	sql string
}

func newQueryTracer(debug bool) *queryTracer {
	return &queryTracer{debug: debug}
}

func (t *queryTracer) stats() QueryStats {
	return QueryStats{
		Queries:  t.queries.Load(),
		Failed:   t.failed.Load(),
		Slow:     t.slow.Load(),
		RowsRead: t.rowsRead.Load(),
	}
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, traceStart{at: time.Now(), sql: data.SQL})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(traceKey{}).(traceStart)
	if !ok {
		return
	}
	elapsed := time.Since(start.at)

	t.queries.Add(1)
	metrics.RecordStoreOp("postgres", "select", elapsed, data.Err)

	if data.Err != nil {
		t.failed.Add(1)
		logger.Warn("query failed", zap.String("sql", truncateSQL(start.sql, 200)), zap.Error(data.Err))
		return
	}
	t.rowsRead.Add(data.CommandTag.RowsAffected())

	switch {
	case elapsed > slowQueryThreshold:
		t.slow.Add(1)
		logger.Warn("slow query detected",
			zap.Int64("duration_ms", elapsed.Milliseconds()),
			zap.String("sql", truncateSQL(start.sql, 200)),
		)
	case t.debug:
		logger.Debug("query executed", zap.Duration("duration", elapsed), zap.String("sql", truncateSQL(start.sql, 200)))
	}
}

func truncateSQL(sql string, maxLen int) string {
	if len(sql) <= maxLen {
		return sql
	}
	return sql[:maxLen] + "..."
}
