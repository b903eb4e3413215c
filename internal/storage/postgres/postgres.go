// Package postgres stores transactions and categories in PostgreSQL
// through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"catatan/internal/core"
	"catatan/internal/ports"
)

const (
	syncPending = "pending"
	syncSynced  = "synced"
	syncError   = "error"
)

type Category struct {
	ID        string `gorm:"primaryKey;size:64"`
	Label     string `gorm:"size:100;not null"`
	IconKey   string `gorm:"size:64;not null;default:''"`
	IconBg    string `gorm:"size:64;not null;default:''"`
	Flow      string `gorm:"size:16;not null;index:idx_categories_flow"`
	UpdatedAt time.Time
}

func (Category) TableName() string { return "categories" }

// Transaction keeps the UTC offset of the original timestamp so the civil
// date used for reporting survives timestamptz normalisation.
type Transaction struct {
	ID              string    `gorm:"primaryKey;size:64"`
	Title           string    `gorm:"size:200;not null"`
	Amount          int64     `gorm:"not null"`
	Flow            string    `gorm:"size:16;not null"`
	CategoryID      string    `gorm:"size:64;not null;index"`
	TransactionDate time.Time `gorm:"not null;index:idx_transactions_date,sort:desc"`
	UTCOffset       int       `gorm:"not null;default:0"`
	Note            string    `gorm:"not null;default:''"`
	CreatedAt       time.Time
	SyncStatus      string `gorm:"size:16;not null;default:'pending';index:idx_transactions_sync"`
	SyncAttempts    int    `gorm:"not null;default:0"`
	SyncError       string `gorm:"not null;default:''"`
	SheetRef        string `gorm:"not null;default:''"`
	SyncedAt        *time.Time
}

func (Transaction) TableName() string { return "transactions" }

func fromCore(t core.Transaction) Transaction {
	_, offset := t.Date.Zone()
	return Transaction{
		ID:              t.ID,
		Title:           t.Title,
		Amount:          t.Amount.Units,
		Flow:            string(t.Flow),
		CategoryID:      t.CategoryID,
		TransactionDate: t.Date.UTC(),
		UTCOffset:       offset,
		Note:            t.Note,
		SyncStatus:      syncPending,
	}
}

func (m Transaction) toCore() core.Transaction {
	date := m.TransactionDate.UTC()
	if m.UTCOffset != 0 {
		date = date.In(time.FixedZone("", m.UTCOffset))
	}
	return core.Transaction{
		ID:         m.ID,
		Title:      m.Title,
		Amount:     core.Money{Units: m.Amount},
		Flow:       core.Flow(m.Flow),
		CategoryID: m.CategoryID,
		Date:       date,
		Note:       m.Note,
	}
}

type Repository struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema.
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return New(db)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&Category{}, &Transaction{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	m := fromCore(t)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to PostgreSQL", "id", t.ID, "amount", t.Amount.Units)
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Order("transaction_date DESC").
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreAll(rows), nil
}

func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	var m Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return m.toCore(), nil
}

func (r *Repository) PendingSync(ctx context.Context, limit, maxAttempts int) ([]core.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("sync_status <> ? AND sync_attempts < ?", syncSynced, maxAttempts).
		Order("created_at").Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	return toCoreAll(rows), nil
}

func (r *Repository) MarkSynced(ctx context.Context, id, rowRef string) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).Updates(map[string]any{
		"sync_status": syncSynced,
		"sheet_ref":   rowRef,
		"sync_error":  "",
		"synced_at":   &now,
	})
	return affected(res, id, "mark transaction synced")
}

func (r *Repository) MarkSyncError(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	res := r.db.WithContext(ctx).Model(&Transaction{}).Where("id = ?", id).Updates(map[string]any{
		"sync_status":   syncError,
		"sync_attempts": gorm.Expr("sync_attempts + 1"),
		"sync_error":    msg,
	})
	return affected(res, id, "mark transaction sync error")
}

func affected(res *gorm.DB, id, op string) error {
	if res.Error != nil {
		return fmt.Errorf("%s: %w", op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("transaction %s: %w", id, ports.ErrNotFound)
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context, flow core.Flow) ([]core.Category, error) {
	q := r.db.WithContext(ctx).Order("lower(label)").Order("id")
	if flow != "" {
		q = q.Where("flow = ?", string(flow))
	}
	var rows []Category
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, c := range rows {
		out = append(out, core.Category{ID: c.ID, Label: c.Label, IconKey: c.IconKey, IconBg: c.IconBg, Flow: core.Flow(c.Flow)})
	}
	return out, nil
}

func (r *Repository) UpsertCategory(ctx context.Context, c core.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return core.ErrEmptyCategory
	}
	if !c.Flow.Valid() {
		return core.ErrInvalidFlow
	}
	m := Category{ID: c.ID, Label: c.Label, IconKey: c.IconKey, IconBg: c.IconBg, Flow: string(c.Flow)}
	if m.Label == "" {
		m.Label = c.ID
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"label", "icon_key", "icon_bg", "flow", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("upsert category %s: %w", c.ID, err)
	}
	return nil
}

func toCoreAll(rows []Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toCore())
	}
	return out
}
