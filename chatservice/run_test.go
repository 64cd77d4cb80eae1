package chatservice

import (
	"path/filepath"
	"testing"

	"github.com/kidspark/kidspark-engine/internal/catalog"
	"github.com/kidspark/kidspark-engine/internal/config"
)

func TestCalculateStartupHealthTimeout(t *testing.T) {
	tests := []struct {
		interval int
		want     int
	}{
		{5, 60},
		{30, 60},
		{45, 90},
		{120, 240},
	}
	for _, tt := range tests {
		if got := calculateStartupHealthTimeout(tt.interval); got != tt.want {
			t.Fatalf("interval %d: got %d, want %d", tt.interval, got, tt.want)
		}
	}
}

func TestNewStore_DriverSelection(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "run.db")}
	st, err := newStore(cfg)
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	if st == nil {
		t.Fatal("nil store")
	}

	if _, err := newStore(&config.Config{DBDriver: "oracle"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestNewCatalogSource_Selection(t *testing.T) {
	cfg := &config.Config{DBDriver: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "cat.db")}
	st, err := newStore(cfg)
	if err != nil {
		t.Fatalf("store: %v", err)
	}

	if _, err := newCatalogSource(&config.Config{CatalogProvider: "store"}, st); err != nil {
		t.Fatalf("store source: %v", err)
	}
	if _, err := newCatalogSource(&config.Config{CatalogProvider: "remote", CatalogURL: "http://localhost:9000"}, st); err != nil {
		t.Fatalf("remote source: %v", err)
	}
	if _, err := newCatalogSource(&config.Config{CatalogProvider: "csv"}, st); err != nil {
		t.Fatal("expected error for unknown provider")
	}

	src, err := newCatalogSource(&config.Config{CatalogProvider: "store", CatalogCacheTTLSeconds: 60}, st)
	if err != nil {
		t.Fatalf("cached source: %v", err)
	}
	if _, ok := src.(*catalog.CachedSource); !ok {
		t.Fatalf("expected cached source when TTL is set, got %T", src)
	}
}
