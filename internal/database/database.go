package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"medibook/internal/models"

	"github.com/rs/zerolog"
)

type DB struct {
	*sql.DB
	dialect dialect
	logger  *zerolog.Logger

	mu             sync.RWMutex
	providersCache map[providerKey]models.Provider
	resourcesCache map[int64]models.Resource
}

type providerKey struct {
	kind models.Kind
	id   int64
}

// NewDB opens (and creates, if needed) the SQLite ledger at path.
func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return Open(sqliteDriver, path, 1, logger)
}

// Open connects to the ledger using driver ("sqlite3" or "postgres") and
// applies the schema.
func Open(driver, dsn string, maxConns int, logger *zerolog.Logger) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(d.driverName, d.dsn(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite: одно соединение сериализует все транзакции записи
	// и делает :memory: одной общей базой.
	if d.singleConn || maxConns <= 0 {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:             sqlDB,
		dialect:        d,
		logger:         logger,
		providersCache: make(map[providerKey]models.Provider),
		resourcesCache: make(map[int64]models.Resource),
	}

	if err := db.Migrate(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("driver", d.name).Msg("Ledger database initialized")
	return db, nil
}

// Migrate applies the schema. Every statement is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for _, query := range db.dialect.schema {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("error executing query %s: %w", firstLine(query), err)
		}
	}
	return nil
}

// Driver returns the dialect name the ledger runs on.
func (db *DB) Driver() string {
	return db.dialect.name
}

// q rewrites ?-placeholders for the active dialect.
func (db *DB) q(query string) string {
	return db.dialect.rebind(query)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (db *DB) Close() error {
	return db.DB.Close()
}
