package database

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func Open(driver, connStr string) (*sql.DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	dbConn, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("opening DB connection: %w", err)
	}

	// An in-memory SQLite database only lives as long as its connection.
	if driver == DriverSQLite && strings.Contains(connStr, ":memory:") {
		dbConn.SetMaxOpenConns(1)
	}

	if err = dbConn.Ping(); err != nil {
		dbConn.Close()
		return nil, fmt.Errorf("pinging the DB: %w", err)
	}

	return dbConn, nil
}

// Migrate creates the tables the hub needs. Every statement is idempotent.
func Migrate(db *sql.DB, driver string) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "SERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_setting (
			name  TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS device (
			id          %s,
			name        TEXT NOT NULL,
			mac_address TEXT NOT NULL UNIQUE,
			ip_address  TEXT NOT NULL DEFAULT '',
			device_type TEXT NOT NULL DEFAULT 'unknown',
			last_seen   BIGINT NOT NULL DEFAULT 0
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS shared_file (
			id              %s,
			file_path       TEXT NOT NULL,
			filename        TEXT NOT NULL,
			file_size       BIGINT NOT NULL DEFAULT 0,
			is_directory    INTEGER NOT NULL DEFAULT 0,
			shared_link     TEXT UNIQUE,
			link_expiration BIGINT,
			created_at      BIGINT NOT NULL,
			last_accessed   BIGINT,
			access_count    INTEGER NOT NULL DEFAULT 0
		)`, idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS reminder (
			id         %s,
			title      TEXT NOT NULL,
			rule       TEXT NOT NULL DEFAULT '',
			start_date BIGINT NOT NULL
		)`, idColumn),
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}

	return nil
}
