package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"medibook/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/mattn/go-sqlite3"
)

const (
	sqliteDriver   = "sqlite3"
	postgresDriver = "postgres"
)

type dialect struct {
	name       string
	driverName string
	singleConn bool
	schema     []string
	positional bool   // $1, $2 instead of ?
	forUpdate  string // row lock suffix for SELECT inside a tx
	lockSlot   func(ctx context.Context, tx *sql.Tx, kind models.Kind, providerID int64, date string) error
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case sqliteDriver, "sqlite":
		return dialect{
			name:       sqliteDriver,
			driverName: sqliteDriver,
			singleConn: true,
			schema:     sqliteSchema,
			lockSlot:   noLock,
		}, nil
	case postgresDriver, "pgx":
		return dialect{
			name:       postgresDriver,
			driverName: "pgx",
			schema:     postgresSchema,
			positional: true,
			forUpdate:  " FOR UPDATE",
			lockSlot:   advisoryLock,
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d dialect) dsn(dsn string) string {
	if d.name != sqliteDriver {
		return dsn
	}
	// внешние ключи и ожидание блокировки вместо SQLITE_BUSY
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func noLock(context.Context, *sql.Tx, models.Kind, int64, string) error { return nil }

// advisoryLock serializes writers of one provider-day for the rest of the transaction.
func advisoryLock(ctx context.Context, tx *sql.Tx, kind models.Kind, providerID int64, date string) error {
	key := fmt.Sprintf("%s:%d:%s", kind, providerID, date)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("failed to lock slot %s: %w", key, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-index violation in either dialect.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS providers (
		kind TEXT NOT NULL,
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		default_fee REAL NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (kind, id)
	)`,
	`CREATE TABLE IF NOT EXISTS provider_resources (
		kind TEXT NOT NULL,
		provider_id INTEGER NOT NULL,
		resource_id INTEGER NOT NULL REFERENCES resources(id),
		PRIMARY KEY (kind, provider_id, resource_id)
	)`,
	`CREATE TABLE IF NOT EXISTS availability_templates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		provider_id INTEGER NOT NULL,
		resource_id INTEGER,
		day_of_week INTEGER NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		is_available BOOLEAN NOT NULL DEFAULT 1,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		slot_duration INTEGER NOT NULL DEFAULT 0,
		slots TEXT NOT NULL DEFAULT '[]',
		fee REAL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_templates_day
		ON availability_templates(kind, provider_id, COALESCE(resource_id, 0), day_of_week)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		subject_id INTEGER NOT NULL,
		provider_id INTEGER NOT NULL,
		resource_id INTEGER,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		cancel_reason TEXT,
		fee REAL NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		version INTEGER NOT NULL DEFAULT 1
	)`,
	// Не более одной активной записи на слот; NULL-ресурс сворачивается в 0.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_slot
		ON bookings(kind, provider_id, COALESCE(resource_id, 0), date, time)
		WHERE status IN ('scheduled', 'confirmed')`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_provider_date ON bookings(kind, provider_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_subject ON bookings(subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_date ON bookings(status, date)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS resources (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS providers (
		kind TEXT NOT NULL,
		id BIGINT NOT NULL,
		name TEXT NOT NULL,
		default_fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT now(),
		updated_at TIMESTAMPTZ DEFAULT now(),
		PRIMARY KEY (kind, id)
	)`,
	`CREATE TABLE IF NOT EXISTS provider_resources (
		kind TEXT NOT NULL,
		provider_id BIGINT NOT NULL,
		resource_id BIGINT NOT NULL REFERENCES resources(id),
		PRIMARY KEY (kind, provider_id, resource_id)
	)`,
	`CREATE TABLE IF NOT EXISTS availability_templates (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		provider_id BIGINT NOT NULL,
		resource_id BIGINT,
		day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		slot_duration INTEGER NOT NULL DEFAULT 0,
		slots TEXT NOT NULL DEFAULT '[]',
		fee DOUBLE PRECISION,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_templates_day
		ON availability_templates(kind, provider_id, COALESCE(resource_id, 0), day_of_week)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGSERIAL PRIMARY KEY,
		kind TEXT NOT NULL,
		subject_id BIGINT NOT NULL,
		provider_id BIGINT NOT NULL,
		resource_id BIGINT,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'scheduled',
		cancel_reason TEXT,
		fee DOUBLE PRECISION NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		version BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_bookings_active_slot
		ON bookings(kind, provider_id, COALESCE(resource_id, 0), date, time)
		WHERE status IN ('scheduled', 'confirmed')`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_provider_date ON bookings(kind, provider_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_subject ON bookings(subject_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_date ON bookings(status, date)`,
}
