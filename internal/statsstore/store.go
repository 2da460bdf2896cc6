// Package statsstore persists finalized run stats to SQL (postgres or
// sqlite), an optional superset of the file-based stats-input-file
// comparison in spec.md §6: a history of runs queryable over time
// instead of only a one-shot diff against a single saved file.
package statsstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marmos91/fastpasta/internal/statsstore/migrations"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config configures a Store connection.
type Config struct {
	Driver Driver

	// SQLitePath is the file path for the sqlite driver.
	SQLitePath string

	// PostgresDSN is the connection string for the postgres driver,
	// e.g. "host=... port=... user=... password=... dbname=... sslmode=disable".
	PostgresDSN string
}

// Store persists and queries RunRecord history.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured backend. For sqlite it runs
// GORM's AutoMigrate (mirroring the teacher's control-plane store's
// simpler single-node path); for postgres it runs the embedded
// golang-migrate migrations first, then opens a GORM connection over
// the same database (mirroring the teacher's metadata postgres store).
func Open(cfg Config) (*Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return openSQLite(cfg)
	case DriverPostgres:
		return openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported statsstore driver: %s", cfg.Driver)
	}
}

func openSQLite(cfg Config) (*Store, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = "fastpasta-stats.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create statsstore directory: %w", err)
		}
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite statsstore: %w", err)
	}
	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite statsstore: %w", err)
	}
	return &Store{db: db}, nil
}

func openPostgres(cfg Config) (*Store, error) {
	if err := runPostgresMigrations(cfg.PostgresDSN); err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open postgres statsstore: %w", err)
	}
	return &Store{db: db}, nil
}

func runPostgresMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open statsstore migration connection: %w", err)
	}
	defer db.Close()

	driver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{
		MigrationsTable: "fastpasta_schema_migrations",
		DatabaseName:    "fastpasta_stats",
	})
	if err != nil {
		return fmt.Errorf("create statsstore migration driver: %w", err)
	}

	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("create statsstore migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create statsstore migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run statsstore migrations: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts a RunRecord.
func (s *Store) Save(ctx context.Context, rec RunRecord) error {
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("save run record: %w", err)
	}
	return nil
}

// ListRecent returns the limit most recently started runs, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	var recs []RunRecord
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list run records: %w", err)
	}
	return recs, nil
}
