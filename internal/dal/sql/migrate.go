package sql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

//go:embed migrations
var migrations embed.FS

// Migrate applies every embedded migration of the dialect that has not run yet.
func Migrate(ctx context.Context, db *sql.DB, dbType dal.DBType, log *slog.Logger) error {
	d, ok := dialects[dbType]
	if !ok {
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	if _, err := db.ExecContext(ctx, d.migrationTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	dir := path.Join("migrations", d.migrationsDir)
	files, err := fs.Glob(migrations, path.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	q := dal.NewQueries(dbType)
	for _, file := range files {
		name := path.Base(file)

		applied, err := migrationApplied(ctx, db, q, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		content, err := migrations.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if err = applyMigration(ctx, db, q, name, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		log.InfoContext(ctx, "migration applied", "file", name)
	}

	return nil
}

func migrationApplied(ctx context.Context, db *sql.DB, q *dal.Queries, name string) (bool, error) {
	stmt, args, err := q.Builder().Select("COUNT(*)").
		From("migrations").
		Where(squirrel.Eq{"filename": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build migration lookup: %w", err)
	}

	var count int
	if err = db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return count > 0, nil
}

func applyMigration(ctx context.Context, db *sql.DB, q *dal.Queries, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // ignore rollback errors

	for _, stmt := range splitStatements(content) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}

	stmt, args, err := q.Builder().Insert("migrations").
		Columns("filename", "executed_at").
		Values(name, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build migration record: %w", err)
	}
	if _, err = tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	return tx.Commit()
}

// splitStatements splits a migration file on semicolons that end a line.
// Lines starting with "--" are dropped.
func splitStatements(content string) []string {
	var (
		res []string
		cur strings.Builder
	)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";"); stmt != "" {
				res = append(res, stmt)
			}
			cur.Reset()
		}
	}
	if stmt := strings.TrimSpace(cur.String()); stmt != "" {
		res = append(res, stmt)
	}
	return res
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
