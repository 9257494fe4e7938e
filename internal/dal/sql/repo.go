package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

type (
	Client interface {
		ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
		QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
		QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	}

	Repository struct {
		db      *sql.DB // nil when bound to a transaction
		client  Client
		queries *dal.Queries
		log     *slog.Logger
	}
)

func NewRepository(db *sql.DB, dbType dal.DBType, log *slog.Logger) *Repository {
	return &Repository{
		db:      db,
		client:  db,
		queries: dal.NewQueries(dbType),
		log:     log,
	}
}

func (r *Repository) Transact(ctx context.Context, txFunc func(r dal.Repository) error) error {
	return r.transact(ctx, func(tx *Repository) error {
		return txFunc(tx)
	})
}

func (r *Repository) transact(ctx context.Context, txFunc func(tx *Repository) error) error {
	if r.db == nil {
		return txFunc(r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // ignore rollback errors

	if err = txFunc(&Repository{client: tx, queries: r.queries, log: r.log}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) exec(ctx context.Context, query squirrel.Sqlizer) (sql.Result, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	res, err := r.client.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}

// insert runs the insert and returns the generated id. inserted is false when
// a conflict made the database skip the row.
func (r *Repository) insert(ctx context.Context, query squirrel.InsertBuilder) (id int64, inserted bool, err error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, false, fmt.Errorf("build insert query: %w", err)
	}

	if r.queries.SupportsReturning() {
		if err = r.client.QueryRowContext(ctx, stmt, args...).Scan(&id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return 0, false, nil
			}
			return 0, false, fmt.Errorf("insert: %w", err)
		}
		return id, true, nil
	}

	res, err := r.client.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, false, fmt.Errorf("insert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}
	if id, err = res.LastInsertId(); err != nil {
		return 0, false, fmt.Errorf("last insert id: %w", err)
	}
	return id, true, nil
}

func (r *Repository) queryRow(ctx context.Context, query squirrel.Sqlizer) (*sql.Row, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	return r.client.QueryRowContext(ctx, stmt, args...), nil
}

func (r *Repository) query(ctx context.Context, query squirrel.Sqlizer) (*sql.Rows, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select query: %w", err)
	}
	rows, err := r.client.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}
