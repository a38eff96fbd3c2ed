package dbkeeper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/drstein77/eshop/internal/storage"
	"github.com/golang-migrate/migrate"
	"github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

type Log interface {
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// DBKeeper persists key-value blobs in the storage_kv table.
type DBKeeper struct {
	pool *pgxpool.Pool
	log  Log
}

// NewDBKeeper connects to PostgreSQL and applies the migrations found in
// migrationsPath. It returns nil when the dsn is empty or the database is
// unusable; callers then fall back to memory-only storage.
func NewDBKeeper(ctx context.Context, dsn func() string, migrationsPath string, log Log) *DBKeeper {
	addr := dsn()
	if addr == "" {
		log.Info("database dsn is empty")
		return nil
	}

	config, err := pgxpool.ParseConfig(addr)
	if err != nil {
		log.Error("Unable to parse database DSN: ", zap.Error(err))
		return nil
	}

	if err := migrateUp(config.ConnConfig, migrationsPath); err != nil {
		log.Error("Error while performing migration: ", zap.Error(err))
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		log.Error("Unable to connect to database: ", zap.Error(err))
		return nil
	}

	log.Info("Connected!")

	return &DBKeeper{
		pool: pool,
		log:  log,
	}
}

func migrateUp(connConfig *pgx.ConnConfig, path string) error {
	sqlDB := stdlib.OpenDB(*connConfig)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

// Load returns the blob stored under key or storage.ErrNotFound.
func (kp *DBKeeper) Load(ctx context.Context, key string) ([]byte, error) {
	if kp.pool == nil {
		return nil, fmt.Errorf("database connection pool is nil")
	}

	var value []byte
	err := kp.pool.QueryRow(ctx, `SELECT value FROM storage_kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		kp.log.Error("Failed to load value", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to load %q: %w", key, err)
	}

	return value, nil
}

// Store overwrites the blob under key.
func (kp *DBKeeper) Store(ctx context.Context, key string, value []byte) error {
	if kp.pool == nil {
		return fmt.Errorf("database connection pool is nil")
	}

	stmt := `
		INSERT INTO storage_kv (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := kp.pool.Exec(ctx, stmt, key, string(value)); err != nil {
		kp.log.Error("Failed to store value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store %q: %w", key, err)
	}

	return nil
}

func (kp *DBKeeper) Ping(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := kp.pool.Ping(ctx); err != nil {
		kp.log.Error("Database ping failed", zap.Error(err))
		return false
	}

	return true
}

func (kp *DBKeeper) Close() bool {
	if kp.pool != nil {
		kp.pool.Close()
		kp.log.Info("Database connection pool closed")
		return true
	}
	kp.log.Info("Attempted to close a nil database connection pool")
	return false
}
