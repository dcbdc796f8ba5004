package dataset

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/airsante/airwatch/internal/table"
)

const pgUndefinedTable = "42P01"

// PostgresStore persists datasets as all-text tables in a dedicated schema,
// one table per dataset name. Writes rewrite the table inside a transaction
// so readers only ever observe the previous or the new complete state.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgresStore connects a pool and ensures the schema exists.
func NewPostgresStore(ctx context.Context, databaseURL, schema string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres store: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ensure schema %s: %w", schema, err)
	}
	return &PostgresStore{pool: pool, schema: schema}, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Read loads a dataset table whole; an undefined table maps to ErrNotFound.
func (s *PostgresStore) Read(ctx context.Context, name string) (*table.Table, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{s.schema, name}.Sanitize())
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("postgres store: read %s: %w", name, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, fd := range fields {
		headers[i] = fd.Name
	}

	t := table.New(headers...)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres store: scan %s: %w", name, err)
		}
		row := make(table.Row, len(headers))
		for i, h := range headers {
			if i < len(values) && values[i] != nil {
				row[h] = fmt.Sprint(values[i])
			} else {
				row[h] = ""
			}
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("postgres store: read %s: %w", name, err)
	}
	return t, nil
}

// Write replaces the dataset table transactionally via COPY.
func (s *PostgresStore) Write(ctx context.Context, name string, t *table.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres store: begin write %s: %w", name, err)
	}
	defer tx.Rollback(ctx)

	ident := pgx.Identifier{s.schema, name}
	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+ident.Sanitize()); err != nil {
		return fmt.Errorf("postgres store: drop %s: %w", name, err)
	}

	colDefs := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		colDefs[i] = pgx.Identifier{h}.Sanitize() + " text"
	}
	createSQL := "CREATE TABLE " + ident.Sanitize() + " (" + strings.Join(colDefs, ", ") + ")"
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return fmt.Errorf("postgres store: create %s: %w", name, err)
	}

	_, err = tx.CopyFrom(ctx, ident, t.Headers, pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
		row := t.Rows[i]
		values := make([]any, len(t.Headers))
		for j, h := range t.Headers {
			values[j] = row[h]
		}
		return values, nil
	}))
	if err != nil {
		return fmt.Errorf("postgres store: copy %s: %w", name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres store: commit %s: %w", name, err)
	}
	return nil
}

// Exists reports whether the dataset table is present in the schema.
func (s *PostgresStore) Exists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables WHERE table_schema = $1 AND table_name = $2
	)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, s.schema, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("postgres store: exists %s: %w", name, err)
	}
	return exists, nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable
}
