package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/Roma7-7-7/readyword/internal/dal"
)

type dialect struct {
	driverName     string
	migrationsDir  string
	migrationTable string
	configure      func(ctx context.Context, db *sql.DB, url string) error
}

var dialects = map[dal.DBType]dialect{ //nolint:gochecknoglobals // static driver table
	dal.DBTypeSQLite: {
		driverName:    "sqlite",
		migrationsDir: "sqlite",
		migrationTable: `CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		configure: configureSQLite,
	},
	dal.DBTypePostgres: {
		driverName:    "pgx",
		migrationsDir: "postgres",
		migrationTable: `CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		configure: configurePool,
	},
	dal.DBTypeMySQL: {
		driverName:    "mysql",
		migrationsDir: "mysql",
		migrationTable: `CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		)`,
		configure: configurePool,
	},
}

// Open connects to the database and applies dialect specific connection settings.
func Open(ctx context.Context, dbType dal.DBType, url string) (*sql.DB, error) {
	d, ok := dialects[dbType]
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	db, err := sql.Open(d.driverName, url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}

	if err = d.configure(ctx, db, url); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure %s: %w", dbType, err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dbType, err)
	}

	return db, nil
}

// SQLite allows a single writer. One connection keeps writes serialized and
// makes in-memory databases visible to every caller.
func configureSQLite(ctx context.Context, db *sql.DB, url string) error {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if !strings.Contains(url, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func configurePool(_ context.Context, db *sql.DB, _ string) error {
	db.SetMaxOpenConns(25)                 //nolint:mnd // pool size
	db.SetMaxIdleConns(5)                  //nolint:mnd // pool size
	db.SetConnMaxLifetime(5 * time.Minute) //nolint:mnd // recycle connections
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}
