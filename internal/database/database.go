package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB is the shared connection pool. Handlers use it directly; tests swap it
// for a mock.
var DB *sql.DB

// VisitorTable is the single storage table for visit rows.
const VisitorTable = "visitor_info"

// Connect opens the connection pool using the DATABASE_URL environment variable.
func Connect() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return ConnectURL(databaseURL)
}

// ConnectURL opens the connection pool for the given connection string.
func ConnectURL(databaseURL string) error {
	db, err := sql.Open("pgx", ensureSSLMode(databaseURL))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = db
	return nil
}

// ensureSSLMode appends sslmode=require when the connection string carries no
// explicit sslmode. require encrypts the connection without verifying the
// server certificate, matching hosted-Postgres defaults.
func ensureSSLMode(databaseURL string) string {
	if strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	separator := "?"
	if strings.Contains(databaseURL, "?") {
		separator = "&"
	}
	return databaseURL + separator + "sslmode=require"
}

// Close closes the connection pool.
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}

// EnsureVisitorTable creates the visitor table when it does not exist yet.
// The statement is idempotent; concurrent callers are resolved by Postgres
// itself, not by application locking.
func EnsureVisitorTable(ctx context.Context) error {
	_, err := DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS visitor_info (
			id SERIAL PRIMARY KEY,
			ip VARCHAR(45) NOT NULL,
			country VARCHAR(100),
			city VARCHAR(100),
			state VARCHAR(100),
			device VARCHAR(50),
			browser VARCHAR(50),
			version VARCHAR(50),
			os VARCHAR(50),
			platform VARCHAR(50),
			user_agent TEXT,
			language VARCHAR(50),
			referrer TEXT,
			page_name VARCHAR(200),
			is_vpn BOOLEAN DEFAULT FALSE,
			visit_time TIMESTAMPTZ DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure visitor table: %w", err)
	}
	return nil
}
