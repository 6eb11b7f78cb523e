package dial_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"

	"github.com/xraph/curve/store/dial"
	"github.com/xraph/curve/store/memory"
	"github.com/xraph/curve/store/sqlite"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     dial.Config
		check   func(any) bool
		wantErr bool
	}{
		{"Default", dial.Config{}, isMemory, false},
		{"Memory", dial.Config{Driver: "Memory"}, isMemory, false},
		{"SQLite", dial.Config{Driver: "sqlite", DSN: filepath.Join(dir, "a.db")}, isSQLite, false},
		{"SQLite3Alias", dial.Config{Driver: "sqlite3", DSN: filepath.Join(dir, "b.db")}, isSQLite, false},
		{"MissingDSN", dial.Config{Driver: "postgres"}, nil, true},
		{"UnknownDriver", dial.Config{Driver: "redis", DSN: "redis://x"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := dial.Open(ctx, tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if s != nil {
					t.Errorf("store returned alongside error: %T", s)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if !tt.check(s) {
				t.Errorf("got %T", s)
			}
		})
	}
}

func isMemory(s any) bool {
	_, ok := s.(*memory.Store)
	return ok
}

func isSQLite(s any) bool {
	_, ok := s.(*sqlite.Store)
	return ok
}

func TestFromGrove(t *testing.T) {
	ctx := context.Background()
	sdb := sqlitedriver.New()
	if err := sdb.Open(ctx, filepath.Join(t.TempDir(), "grove.db")); err != nil {
		t.Fatal(err)
	}
	db, err := grove.Open(sdb)
	if err != nil {
		t.Fatal(err)
	}

	s, err := dial.FromGrove(db)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if !isSQLite(s) {
		t.Fatalf("got %T", s)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.SetAdministrator(ctx, "admin"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.GetAdministrator(ctx); err != nil || got != "admin" {
		t.Errorf("administrator = %q, %v", got, err)
	}
}

func TestFromGroveNil(t *testing.T) {
	if _, err := dial.FromGrove(nil); err == nil {
		t.Fatal("expected error for nil database")
	}
}
