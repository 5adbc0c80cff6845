package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"tgpay/pkg/config"
	"tgpay/pkg/logger"
	"tgpay/pkg/utils"
)

var Module = fx.Options(
	fx.Provide(NewDBConn),
)

type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...interface{}) pgx.Row
	SendBatch(context.Context, *pgx.Batch) pgx.BatchResults
}

type Params struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    config.IConfig
	Logger    logger.Logger
}

type dbConn struct {
	dbPool    *pgxpool.Pool
	logger    logger.Logger
	slowQuery time.Duration
}

const connectTimeout = 5 * time.Second

// NewDBConn opens the pool from database.dns. The pool is closed when the app stops.
func NewDBConn(params Params) (Querier, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	dsn := params.Config.GetString("database.dns")
	if dsn == "" {
		return nil, fmt.Errorf("db: database.dns is not set")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		params.Logger.Error(ctx, "err on pgxpool.New", zap.Error(err))
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		params.Logger.Error(ctx, "err on db.Ping", zap.Error(err))
		return nil, err
	}

	stat := pool.Stat()
	params.Logger.Info(ctx, "DB: connected", zap.Int32("max_conns", stat.MaxConns()))

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			params.Logger.Info(ctx, "DB: pool closed")
			return nil
		},
	})

	slow := params.Config.GetDuration("database.slow_query")
	if slow <= 0 {
		slow = 500 * time.Millisecond
	}
	return &dbConn{
		dbPool:    pool,
		logger:    params.Logger,
		slowQuery: slow,
	}, nil
}

// observe logs every statement at debug and slow ones at warn. Args are left out of the warn line
// because they can carry addresses and phone numbers.
func (db *dbConn) observe(ctx context.Context, op, sql string, args []interface{}) func() {
	start := time.Now()
	db.logger.Debug(ctx, "DB: "+op, zap.String("sql", utils.CompactSQL(sql)), zap.Int("args", len(args)))
	return func() {
		if took := time.Since(start); took > db.slowQuery {
			db.logger.Warn(ctx, "DB: slow "+op, zap.String("sql", utils.CompactSQL(sql)), zap.Duration("took", took))
		}
	}
}

func (db *dbConn) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	defer db.observe(ctx, "exec", sql, args)()
	return db.dbPool.Exec(ctx, sql, args...)
}

func (db *dbConn) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	defer db.observe(ctx, "query", sql, args)()
	return db.dbPool.Query(ctx, sql, args...)
}

// QueryRow is timed until the row is returned, not until it is scanned.
func (db *dbConn) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	defer db.observe(ctx, "query row", sql, args)()
	return db.dbPool.QueryRow(ctx, sql, args...)
}

func (db *dbConn) Begin(ctx context.Context) (pgx.Tx, error) {
	return db.dbPool.Begin(ctx)
}

func (db *dbConn) SendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	return db.dbPool.SendBatch(ctx, batch)
}
