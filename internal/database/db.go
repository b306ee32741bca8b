package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/article-image-api/internal/config"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RecordsTable holds every stored collection, one JSONB document per row
const RecordsTable = "records"

// ErrRecordsTableMissing is returned by HealthCheck before migrations have run
var ErrRecordsTableMissing = errors.New("records table does not exist")

const pingTimeout = 5 * time.Second

// DB is the Postgres backend of the record store
type DB struct {
	*sql.DB
	log zerolog.Logger
}

// New opens the pool and verifies the server answers
func New(cfg *config.DatabaseConfig, log zerolog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach %s:%s/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	db := Wrap(sqlDB, log)
	db.log.Info().
		Str("host", cfg.Host).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("Record store connected")
	return db, nil
}

// Wrap adapts an already opened connection
func Wrap(sqlDB *sql.DB, log zerolog.Logger) *DB {
	return &DB{DB: sqlDB, log: log.With().Str("component", "database").Logger()}
}

// RunMigrations brings the records schema up to date and logs what each
// collection holds afterwards.
func (db *DB) RunMigrations(migrationsPath string) error {
	source, err := migrationSourceURL(migrationsPath)
	if err != nil {
		return err
	}

	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations from %s: %w", source, err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate records schema: %w", upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	event := db.log.Info().
		Str("source", source).
		Uint("version", version).
		Bool("dirty", dirty).
		Bool("changed", upErr == nil)

	counts, err := db.CollectionCounts(context.Background())
	if err != nil {
		db.log.Warn().Err(err).Msg("Could not count stored records")
	} else {
		for collection, n := range counts {
			event = event.Int(collection, n)
		}
	}
	event.Msg("Records schema ready")

	return nil
}

// CollectionCounts returns the number of stored rows per collection
func (db *DB) CollectionCounts(ctx context.Context) (map[string]int, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM `+RecordsTable+` GROUP BY collection`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			collection string
			n          int
		)
		if err := rows.Scan(&collection, &n); err != nil {
			return nil, err
		}
		counts[collection] = n
	}
	return counts, rows.Err()
}

// HealthCheck pings the server and confirms the records table exists
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return err
	}

	var table sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, RecordsTable).Scan(&table); err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if !table.Valid {
		return ErrRecordsTableMissing
	}
	return nil
}

// migrationSourceURL turns a directory or file:// URL into an absolute
// file:// source for golang-migrate.
func migrationSourceURL(path string) (string, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "file://")
	if path == "" {
		return "", errors.New("migrations path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve migrations path %q: %w", path, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
