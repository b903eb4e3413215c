package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"catatan/internal/core"
	"catatan/internal/ports"

	_ "modernc.org/sqlite"
)

// dates keep their offset so the civil date survives a round trip
const dateLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := Migrate(dbPath)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTransaction implements ports.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, title, amount, flow, category_id, transaction_date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Amount.Units, string(t.Flow), t.CategoryID, t.Date.Format(dateLayout), t.Note)
	if err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", t.ID,
		"flow", t.Flow,
		"amount", t.Amount.Units,
		"category", t.CategoryID)
	return nil
}

const transactionColumns = `id, title, amount, flow, category_id, transaction_date, note`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		flow string
		date string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Amount.Units, &flow, &t.CategoryID, &date, &t.Note); err != nil {
		return core.Transaction{}, err
	}
	t.Flow = core.Flow(flow)
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %s: parse date %q: %w", t.ID, date, err)
	}
	t.Date = parsed
	return t, nil
}

func (r *SQLiteRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTransactions implements ports.TransactionLister
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	txns, err := r.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY transaction_date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txns, nil
}

// GetTransaction retrieves a single transaction by ID
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// PendingSync returns transactions that still need to reach Google Sheets
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit, maxAttempts int) ([]core.Transaction, error) {
	txns, err := r.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE sync_status != 'synced' AND sync_attempts < ?
		ORDER BY created_at, id
		LIMIT ?`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return txns, nil
}

// MarkSynced marks a transaction as successfully mirrored
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id, rowRef string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET sync_status = 'synced', sheet_ref = ?, sync_error = '', synced_at = ?
		WHERE id = ?`, rowRef, time.Now().UTC().Format(dateLayout), id)
	if err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction marked as synced", "id", id, "sheet_ref", rowRef)
	return nil
}

// MarkSyncError records a failed sync attempt
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET sync_status = 'error', sync_attempts = sync_attempts + 1, sync_error = ?
		WHERE id = ?`, msg, id)
	if err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}

	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id, "error", msg)
	return nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

// ListCategories implements ports.CategoryReader
func (r *SQLiteRepository) ListCategories(ctx context.Context, flow core.Flow) ([]core.Category, error) {
	query := `SELECT id, label, icon_key, icon_bg, flow FROM categories`
	var args []any
	if flow != "" {
		query += ` WHERE flow = ?`
		args = append(args, string(flow))
	}
	query += ` ORDER BY label COLLATE NOCASE, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c core.Category
			f string
		)
		if err := rows.Scan(&c.ID, &c.Label, &c.IconKey, &c.IconBg, &f); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Flow = core.Flow(f)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// UpsertCategory implements ports.CategoryWriter
func (r *SQLiteRepository) UpsertCategory(ctx context.Context, c core.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return core.ErrEmptyCategory
	}
	if !c.Flow.Valid() {
		return core.ErrInvalidFlow
	}
	label := c.Label
	if label == "" {
		label = c.ID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, label, icon_key, icon_bg, flow)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			label = excluded.label,
			icon_key = excluded.icon_key,
			icon_bg = excluded.icon_bg,
			flow = excluded.flow,
			updated_at = CURRENT_TIMESTAMP`,
		c.ID, label, c.IconKey, c.IconBg, string(c.Flow))
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}
