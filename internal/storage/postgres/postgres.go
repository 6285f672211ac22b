// Package postgres stores the row tables in PostgreSQL with the same
// generic layout as the SQLite repository.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gastos/internal/sheets"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS row_tables (
	name TEXT PRIMARY KEY,
	header TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS row_cells (
	id BIGSERIAL PRIMARY KEY,
	table_name TEXT NOT NULL REFERENCES row_tables(name) ON DELETE CASCADE,
	cells TEXT[] NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_row_cells_table ON row_cells(table_name, id);
`

type Store struct {
	pool *pgxpool.Pool
}

var _ sheets.Store = (*Store)(nil)

// Connect opens a pool, checks the connection and creates the schema.
func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Table(ctx context.Context, name string) (sheets.Table, error) {
	header, err := s.header(ctx, name)
	if err != nil {
		return sheets.Table{}, err
	}
	rows, err := s.pool.Query(ctx, `SELECT cells FROM row_cells WHERE table_name = $1 ORDER BY id`, name)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("query rows of %s: %w", name, err)
	}
	all, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return sheets.Table{}, fmt.Errorf("collect rows of %s: %w", name, err)
	}

	out := sheets.Table{Name: name, Header: header}
	for _, cells := range all {
		if sheets.IsBlank(cells) {
			continue
		}
		out.Records = append(out.Records, sheets.RecordFrom(header, cells))
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, name string, rec sheets.Record) error {
	header, err := s.ensureTable(ctx, name)
	if err != nil {
		return err
	}
	return s.insertRow(ctx, name, header, rec)
}

// ClearAndRewrite runs each statement on its own, like the spreadsheet it
// stands in for: a failure part way leaves the table truncated.
func (s *Store) ClearAndRewrite(ctx context.Context, name string, recs []sheets.Record) error {
	if _, err := s.ensureTable(ctx, name); err != nil {
		return err
	}
	header, _ := sheets.HeaderFor(name)
	if _, err := s.pool.Exec(ctx, `DELETE FROM row_cells WHERE table_name = $1`, name); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if _, err := s.pool.Exec(ctx, `UPDATE row_tables SET header = $1 WHERE name = $2`, header, name); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	for i, rec := range recs {
		if err := s.insertRow(ctx, name, header, rec); err != nil {
			return fmt.Errorf("rewrite %s row %d: %w", name, i+1, err)
		}
	}
	slog.InfoContext(ctx, "Table rewritten in Postgres", "table", name, "rows", len(recs))
	return nil
}

func (s *Store) header(ctx context.Context, name string) ([]string, error) {
	var header []string
	err := s.pool.QueryRow(ctx, `SELECT header FROM row_tables WHERE name = $1`, name).Scan(&header)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	return header, nil
}

func (s *Store) ensureTable(ctx context.Context, name string) ([]string, error) {
	canonical, err := sheets.HeaderFor(name)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO row_tables (name, header)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`
	if _, err := s.pool.Exec(ctx, query, name, canonical); err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	return s.header(ctx, name)
}

func (s *Store) insertRow(ctx context.Context, name string, header []string, rec sheets.Record) error {
	cells := sheets.RowValues(header, rec)
	if _, err := s.pool.Exec(ctx, `INSERT INTO row_cells (table_name, cells) VALUES ($1, $2)`, name, cells); err != nil {
		return fmt.Errorf("insert into %s: %w", name, err)
	}
	return nil
}

// Reset drops every stored table. Used by tests against a scratch database.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE row_cells, row_tables`)
	return err
}
