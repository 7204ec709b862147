package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeMigrationFile(t *testing.T, dir, name, sql string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(sql), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadMigrations_OrderingAndFiltering(t *testing.T) {
	dir := t.TempDir()
	writeMigrationFile(t, dir, "002_availability.sql", "CREATE TABLE b (id int);")
	writeMigrationFile(t, dir, "001_core.sql", "CREATE TABLE a (id int);")
	writeMigrationFile(t, dir, "010_indexes.sql", "CREATE INDEX x ON a (id);")
	writeMigrationFile(t, dir, "README.md", "not a migration")
	writeMigrationFile(t, dir, "notes.sql", "-- no numeric prefix")

	m := NewMigrator(nil, dir)
	migrations, err := m.LoadMigrations()
	if err != nil {
		t.Fatalf("LoadMigrations() error = %v", err)
	}

	if len(migrations) != 3 {
		t.Fatalf("got %d migrations, want 3", len(migrations))
	}
	wantVersions := []int{1, 2, 10}
	for i, want := range wantVersions {
		if migrations[i].Version != want {
			t.Errorf("migrations[%d].Version = %d, want %d", i, migrations[i].Version, want)
		}
	}
	if migrations[0].Name != "001_core.sql" {
		t.Errorf("migrations[0].Name = %q, want 001_core.sql", migrations[0].Name)
	}
	if migrations[0].SQL == "" {
		t.Error("migration SQL was not loaded")
	}
}

func TestBuildStatuses_AppliedAt(t *testing.T) {
	migrations := []Migration{
		{Version: 1, Name: "001_core.sql"},
		{Version: 2, Name: "002_availability.sql"},
	}
	appliedAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)
	applied := map[int]time.Time{1: appliedAt}

	statuses := buildStatuses(migrations, applied)
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}

	if !statuses[0].Applied {
		t.Error("version 1 should be applied")
	}
	if statuses[0].AppliedAt == nil || !statuses[0].AppliedAt.Equal(appliedAt) {
		t.Errorf("version 1 AppliedAt = %v, want %v", statuses[0].AppliedAt, appliedAt)
	}

	if statuses[1].Applied {
		t.Error("version 2 should be pending")
	}
	if statuses[1].AppliedAt != nil {
		t.Errorf("pending migration AppliedAt = %v, want nil", statuses[1].AppliedAt)
	}
}

func TestLoadMigrations_MissingDir(t *testing.T) {
	m := NewMigrator(nil, "/nonexistent/migrations")
	if _, err := m.LoadMigrations(); err == nil {
		t.Fatal("expected error for missing migrations directory")
	}
}
