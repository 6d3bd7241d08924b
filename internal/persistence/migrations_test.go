package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestMigrationFilesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_tasks.sql", "001_users.sql", "README.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 || files[0] != "001_users.sql" || files[1] != "002_tasks.sql" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestMigrationFilesMissingDir(t *testing.T) {
	if _, err := migrationFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestRunMigrationsNeedsPool(t *testing.T) {
	if err := RunMigrations(context.Background(), nil, "", zap.NewNop()); err == nil {
		t.Fatalf("expected error without a pool")
	}
}
