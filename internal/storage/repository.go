package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gastos/internal/sheets"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the row tables in SQLite. Each table has one
// row_tables entry holding its header and one row_cells entry per row.
type SQLiteRepository struct {
	db *sql.DB
}

var _ sheets.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Table(ctx context.Context, name string) (sheets.Table, error) {
	header, err := r.header(ctx, name)
	if err != nil {
		return sheets.Table{}, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT cells FROM row_cells WHERE table_name = ? ORDER BY id`, name)
	if err != nil {
		return sheets.Table{}, fmt.Errorf("query rows of %s: %w", name, err)
	}
	defer rows.Close()

	out := sheets.Table{Name: name, Header: header}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return sheets.Table{}, fmt.Errorf("scan row of %s: %w", name, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(raw), &cells); err != nil {
			return sheets.Table{}, fmt.Errorf("decode row of %s: %w", name, err)
		}
		if sheets.IsBlank(cells) {
			continue
		}
		out.Records = append(out.Records, sheets.RecordFrom(header, cells))
	}
	if err := rows.Err(); err != nil {
		return sheets.Table{}, fmt.Errorf("iterate rows of %s: %w", name, err)
	}
	return out, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, name string, rec sheets.Record) error {
	header, err := r.ensureTable(ctx, name)
	if err != nil {
		return err
	}
	if err := r.insertRow(ctx, name, header, rec); err != nil {
		return err
	}
	slog.DebugContext(ctx, "Row saved to SQLite", "table", name)
	return nil
}

// ClearAndRewrite deletes every row, resets the header and inserts recs
// one statement at a time, outside any transaction.
func (r *SQLiteRepository) ClearAndRewrite(ctx context.Context, name string, recs []sheets.Record) error {
	if _, err := r.ensureTable(ctx, name); err != nil {
		return err
	}
	header, _ := sheets.HeaderFor(name)
	if _, err := r.db.ExecContext(ctx, `DELETE FROM row_cells WHERE table_name = ?`, name); err != nil {
		return fmt.Errorf("clear %s: %w", name, err)
	}
	if err := r.setHeader(ctx, name, header); err != nil {
		return err
	}
	for i, rec := range recs {
		if err := r.insertRow(ctx, name, header, rec); err != nil {
			return fmt.Errorf("rewrite %s row %d: %w", name, i+1, err)
		}
	}
	slog.InfoContext(ctx, "Table rewritten in SQLite", "table", name, "rows", len(recs))
	return nil
}

func (r *SQLiteRepository) header(ctx context.Context, name string) ([]string, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT header FROM row_tables WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", sheets.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	var header []string
	if err := json.Unmarshal([]byte(raw), &header); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", name, err)
	}
	return header, nil
}

func (r *SQLiteRepository) ensureTable(ctx context.Context, name string) ([]string, error) {
	canonical, err := sheets.HeaderFor(name)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(canonical)
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO row_tables (name, header) VALUES (?, ?)`, name, string(raw)); err != nil {
		return nil, fmt.Errorf("create table %s: %w", name, err)
	}
	return r.header(ctx, name)
}

func (r *SQLiteRepository) setHeader(ctx context.Context, name string, header []string) error {
	raw, err := json.Marshal(header)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE row_tables SET header = ? WHERE name = ?`, string(raw), name); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}
	return nil
}

// SetHeader replaces the stored header of a table, creating it if needed.
// Rows keep their cell positions.
func (r *SQLiteRepository) SetHeader(ctx context.Context, name string, header []string) error {
	if _, err := r.ensureTable(ctx, name); err != nil {
		return err
	}
	return r.setHeader(ctx, name, header)
}

func (r *SQLiteRepository) insertRow(ctx context.Context, name string, header []string, rec sheets.Record) error {
	raw, err := json.Marshal(sheets.RowValues(header, rec))
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `INSERT INTO row_cells (table_name, cells) VALUES (?, ?)`, name, string(raw)); err != nil {
		return fmt.Errorf("insert into %s: %w", name, err)
	}
	return nil
}
