package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/config"
	"mercator-hq/configurator/pkg/telemetry/logging"
)

func newSQLite(t *testing.T, driver string) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "archive.db"),
		Driver:       driver,
		MaxOpenConns: 1,
		WALMode:      true,
		BusyTimeout:  time.Second,
	}, logging.Discard())
	if err != nil {
		t.Fatalf("NewSQLiteStorage(%s) failed: %v", driver, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns every Storage implementation under test. The cgo
// driver is left out when the binary was built without cgo.
func backends(t *testing.T) map[string]archive.Storage {
	t.Helper()
	m := map[string]archive.Storage{
		"memory": NewMemoryStorage(),
		"sqlite": newSQLite(t, DriverPureGo),
	}
	cgo, err := NewSQLiteStorage(&SQLiteConfig{
		Path:        filepath.Join(t.TempDir(), "cgo.db"),
		Driver:      DriverCgo,
		BusyTimeout: time.Second,
	}, logging.Discard())
	if err != nil {
		t.Logf("skipping sqlite3 driver: %v", err)
		return m
	}
	t.Cleanup(func() { cgo.Close() })
	m["sqlite3"] = cgo
	return m
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, s archive.Storage) {
	t.Helper()
	records := []*archive.Record{
		{ID: "r1", Action: archive.ActionBuilt, SessionID: "s1", SolutionHash: "aaa", ModelName: "Sedan",
			MarkPath: "Color=Red", Price: decimal.RequireFromString("19990.50"), TreeRef: "ref1", RecordedAt: base},
		{ID: "r2", Action: archive.ActionSaved, SessionID: "s1", Document: "solutions.xml", RecordedAt: base.Add(time.Hour)},
		{ID: "r3", Action: archive.ActionStale, SessionID: "s2", SolutionHash: "aaa", Detail: "option \"Red\" not found",
			RecordedAt: base.Add(2 * time.Hour)},
		{ID: "r4", Action: archive.ActionBuilt, SessionID: "s2", SolutionHash: "bbb", ModelName: "Coupe",
			Price: decimal.NewFromInt(25000), RecordedAt: base.Add(3 * time.Hour)},
	}
	// Stored out of order; queries must sort.
	for _, i := range []int{2, 0, 3, 1} {
		if err := s.Store(context.Background(), records[i]); err != nil {
			t.Fatalf("Store(%s) failed: %v", records[i].ID, err)
		}
	}
}

func ids(records []*archive.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStorage_Query(t *testing.T) {
	since := base.Add(time.Hour)
	until := base.Add(3 * time.Hour)

	tests := []struct {
		name  string
		query *archive.Query
		want  []string
	}{
		{"all", &archive.Query{}, []string{"r1", "r2", "r3", "r4"}},
		{"nil query", nil, []string{"r1", "r2", "r3", "r4"}},
		{"by action", &archive.Query{Action: archive.ActionBuilt}, []string{"r1", "r4"}},
		{"by hash", &archive.Query{Hash: "aaa"}, []string{"r1", "r3"}},
		{"by session", &archive.Query{SessionID: "s2"}, []string{"r3", "r4"}},
		{"time window", &archive.Query{Since: &since, Until: &until}, []string{"r2", "r3"}},
		{"limit", &archive.Query{Limit: 2}, []string{"r1", "r2"}},
		{"offset", &archive.Query{Offset: 3}, []string{"r4"}},
		{"limit and offset", &archive.Query{Limit: 1, Offset: 1}, []string{"r2"}},
		{"offset past end", &archive.Query{Offset: 10}, []string{}},
		{"no match", &archive.Query{Action: archive.ActionExported}, []string{}},
	}

	for name, s := range backends(t) {
		seed(t, s)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := s.Query(context.Background(), tt.query)
				if err != nil {
					t.Fatalf("Query() failed: %v", err)
				}
				if !equalIDs(ids(got), tt.want) {
					t.Errorf("Query() = %v, want %v", ids(got), tt.want)
				}
			})
		}
	}
}

func TestStorage_RoundTripsFields(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			got, err := s.Query(context.Background(), &archive.Query{Hash: "aaa", Action: archive.ActionBuilt})
			if err != nil || len(got) != 1 {
				t.Fatalf("Query() = %v, %v; want one record", got, err)
			}
			r := got[0]
			if r.ModelName != "Sedan" || r.MarkPath != "Color=Red" || r.TreeRef != "ref1" || r.SessionID != "s1" {
				t.Errorf("record fields = %+v", r)
			}
			if !r.Price.Equal(decimal.RequireFromString("19990.5")) {
				t.Errorf("Price = %s, want 19990.50", r.Price)
			}
			if !r.RecordedAt.Equal(base) {
				t.Errorf("RecordedAt = %s, want %s", r.RecordedAt, base)
			}
			if r.Document != "" || r.Detail != "" {
				t.Errorf("empty fields came back as %q, %q", r.Document, r.Detail)
			}
		})
	}
}

func TestStorage_Count(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			n, err := s.Count(context.Background(), &archive.Query{Action: archive.ActionBuilt})
			if err != nil {
				t.Fatalf("Count() failed: %v", err)
			}
			if n != 2 {
				t.Errorf("Count(built) = %d, want 2", n)
			}
			if n, _ := s.Count(context.Background(), nil); n != 4 {
				t.Errorf("Count(nil) = %d, want 4", n)
			}
		})
	}
}

func TestStorage_DeleteOlderThan(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			seed(t, s)
			deleted, err := s.DeleteOlderThan(context.Background(), base.Add(2*time.Hour))
			if err != nil {
				t.Fatalf("DeleteOlderThan() failed: %v", err)
			}
			if deleted != 2 {
				t.Errorf("deleted = %d, want 2", deleted)
			}
			got, _ := s.Query(context.Background(), nil)
			if want := []string{"r3", "r4"}; !equalIDs(ids(got), want) {
				t.Errorf("remaining = %v, want %v", ids(got), want)
			}
		})
	}
}

func TestStorage_DeleteOldest(t *testing.T) {
	tests := []struct {
		keep        int64
		wantDeleted int64
		want        []string
	}{
		{keep: 10, wantDeleted: 0, want: []string{"r1", "r2", "r3", "r4"}},
		{keep: 4, wantDeleted: 0, want: []string{"r1", "r2", "r3", "r4"}},
		{keep: 1, wantDeleted: 3, want: []string{"r4"}},
		{keep: 0, wantDeleted: 4, want: []string{}},
	}

	for _, tt := range tests {
		for name, s := range backends(t) {
			seed(t, s)
			deleted, err := s.DeleteOldest(context.Background(), tt.keep)
			if err != nil {
				t.Fatalf("%s: DeleteOldest(%d) failed: %v", name, tt.keep, err)
			}
			if deleted != tt.wantDeleted {
				t.Errorf("%s: DeleteOldest(%d) = %d, want %d", name, tt.keep, deleted, tt.wantDeleted)
			}
			got, _ := s.Query(context.Background(), nil)
			if !equalIDs(ids(got), tt.want) {
				t.Errorf("%s: after DeleteOldest(%d) remaining = %v, want %v", name, tt.keep, ids(got), tt.want)
			}
		}
	}
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	s := NewMemoryStorage()
	rec := &archive.Record{ID: "x", Action: archive.ActionBuilt, RecordedAt: base}
	if err := s.Store(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	rec.ModelName = "changed"

	got, _ := s.Query(context.Background(), nil)
	got[0].Detail = "also changed"

	again, _ := s.Query(context.Background(), nil)
	if again[0].ModelName != "" || again[0].Detail != "" {
		t.Errorf("stored record was mutated: %+v", again[0])
	}
}

func TestSQLiteStorage_DuplicateID(t *testing.T) {
	s := newSQLite(t, DriverPureGo)
	rec := &archive.Record{ID: "dup", Action: archive.ActionBuilt, RecordedAt: base}
	if err := s.Store(context.Background(), rec); err != nil {
		t.Fatal(err)
	}

	err := s.Store(context.Background(), rec)
	var serr *archive.StorageError
	if !errors.As(err, &serr) {
		t.Fatalf("second Store() = %v, want StorageError", err)
	}
	if serr.Operation != "store" {
		t.Errorf("Operation = %q, want store", serr.Operation)
	}
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	cfg := &SQLiteConfig{Path: path, Driver: DriverPureGo, BusyTimeout: time.Second}

	s, err := NewSQLiteStorage(cfg, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	seed(t, s)
	s.Close()

	s, err = NewSQLiteStorage(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if n, _ := s.Count(context.Background(), nil); n != 4 {
		t.Errorf("Count() after reopen = %d, want 4", n)
	}
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig().Archive
	cfg.Backend = "memory"
	s, err := New(&cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New(memory) failed: %v", err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("New(memory) = %T, want *MemoryStorage", s)
	}

	cfg.Backend = "sqlite"
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "nested", "archive.db")
	s, err = New(&cfg, logging.Discard())
	if err != nil {
		t.Fatalf("New(sqlite) failed: %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStorage); !ok {
		t.Errorf("New(sqlite) = %T, want *SQLiteStorage", s)
	}

	cfg.Backend = "postgres"
	if _, err := New(&cfg, logging.Discard()); err == nil {
		t.Error("New(postgres) succeeded")
	}
}
