package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/eslsoft/vocabook/internal/infrastructure/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// DB is an open database handle together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect string
	logger  logrus.FieldLogger
	logSQL  bool
}

// Driver wraps the handle in an ent dialect driver. Statements are traced
// through the logger when SQL logging is enabled.
func (db *DB) Driver() dialect.Driver {
	var drv dialect.Driver = entsql.OpenDB(db.Dialect, db.DB)
	if db.logSQL && db.logger != nil {
		drv = dialect.Debug(drv, db.logger.Debug)
	}
	return drv
}

// NewDB opens the configured database. The returned cleanup closes every
// resource that was opened.
func NewDB(cfg *config.Config, logger logrus.FieldLogger) (*DB, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	switch driver {
	case "sqlite3":
		if err := ensureParentDir(cfg.Database.Path); err != nil {
			return nil, nil, err
		}
		return newSQLiteDB(cfg, logger, dsn)
	case "postgres":
		return newPostgresDB(cfg, logger, dsn)
	case "pgx":
		return newPgxDB(cfg, logger, dsn)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// OpenSQLite opens a sqlite database file with foreign keys enforced.
func OpenSQLite(path string, logger logrus.FieldLogger) (*DB, func(), error) {
	dsn, err := config.SQLiteDSN(path)
	if err != nil {
		return nil, nil, err
	}
	if err := ensureParentDir(path); err != nil {
		return nil, nil, err
	}
	return newSQLiteDB(&config.Config{}, logger, dsn)
}

func ensureParentDir(path string) error {
	if path == "" || strings.HasPrefix(path, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	return nil
}

func newSQLiteDB(cfg *config.Config, logger logrus.FieldLogger, dsn string) (*DB, func(), error) {
	rawDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := rawDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
	}

	db := &DB{DB: rawDB, Dialect: dialect.SQLite, logger: logger, logSQL: cfg.Database.LogSQL}
	return db, func() { _ = rawDB.Close() }, nil
}

func newPostgresDB(cfg *config.Config, logger logrus.FieldLogger, dsn string) (*DB, func(), error) {
	rawDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres db: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping postgres db: %w", err)
	}

	db := &DB{DB: rawDB, Dialect: dialect.Postgres, logger: logger, logSQL: cfg.Database.LogSQL}
	return db, func() { _ = rawDB.Close() }, nil
}

// newPgxDB opens a pgx pool and exposes it through database/sql.
func newPgxDB(cfg *config.Config, logger logrus.FieldLogger, dsn string) (*DB, func(), error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = 10

	if cfg.Database.LogSQL && logger != nil {
		poolCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	rawDB := stdlib.OpenDBFromPool(pool)
	db := &DB{DB: rawDB, Dialect: dialect.Postgres, logger: logger, logSQL: cfg.Database.LogSQL}
	return db, func() {
		_ = rawDB.Close()
		pool.Close()
	}, nil
}
