package database

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
)

func TestMigrationSourceURL(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{"relative dir", "./migrations", "file://" + filepath.ToSlash(filepath.Join(wd, "migrations")), false},
		{"absolute dir", "/srv/app/migrations", "file:///srv/app/migrations", false},
		{"already a url", "file:///srv/app/migrations", "file:///srv/app/migrations", false},
		{"trailing slash", "/srv/app/migrations/", "file:///srv/app/migrations", false},
		{"empty", "  ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := migrationSourceURL(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("migrationSourceURL(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRecordsSchema(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	db := Wrap(sqlDB, zerolog.Nop())
	_, file, _, _ := runtime.Caller(0)
	if err := db.RunMigrations(filepath.Join(filepath.Dir(file), "..", "..", "migrations")); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	ctx := context.Background()
	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("Expected healthy schema, got %v", err)
	}

	if _, err := db.ExecContext(ctx,
		`INSERT INTO records (collection, position, body) VALUES ('schema_test', 0, '{}'), ('schema_test', 1, '{}')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM records WHERE collection = 'schema_test'`)

	counts, err := db.CollectionCounts(ctx)
	if err != nil {
		t.Fatalf("CollectionCounts failed: %v", err)
	}
	if counts["schema_test"] != 2 {
		t.Errorf("Expected 2 rows in schema_test, got %d (%v)", counts["schema_test"], counts)
	}
}
