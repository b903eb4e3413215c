package backend

import (
	"context"
	"path/filepath"
	"testing"

	"catatan/internal/config"
	"catatan/internal/core"
	"catatan/internal/memory"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Errorf("sheets is not a storage backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 3 || got[0] != "memory" {
		t.Errorf("unexpected type strings %v", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "postgres", DatabaseDSN: "dsn", GoogleSheetName: "Tx"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != PostgresBackend || cfg.DatabaseDSN != "dsn" || cfg.GoogleSheetName != "Tx" {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without dsn", Config{Type: PostgresBackend}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://x", AMQPExchange: "e"}, true},
		{"unknown", Config{Type: "x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:       MemoryBackend,
		Categories: []core.Category{{ID: "gaji", Label: "Gaji", Flow: core.FlowIncome}},
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	if res.Publisher != nil {
		t.Errorf("no publisher expected without AMQP URL")
	}
	cats, err := res.Store.ListCategories(ctx, "")
	if err != nil || len(cats) != 1 {
		t.Fatalf("expected seeded category, got %v %v", cats, err)
	}
	if err := res.Store.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "catatan.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if err := res.Store.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestCreateExporterDefaultsToMemory(t *testing.T) {
	exp, err := NewFactory(nil).CreateExporter(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateExporter: %v", err)
	}
	if _, ok := exp.(*memory.Sheet); !ok {
		t.Fatalf("expected memory sheet, got %T", exp)
	}
}
