package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/killallgit/podcast-analyzer/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const memoryPath = ":memory:"

type DB struct {
	*gorm.DB
}

// Options configures the sqlite connection
type Options struct {
	Path           string
	Verbose        bool
	EnableWAL      bool
	ForeignKeys    bool
	BusyTimeout    time.Duration
	MaxConnections int
}

// DefaultOptions returns connection options for the given path
func DefaultOptions(dbPath string) Options {
	return Options{
		Path:           dbPath,
		EnableWAL:      true,
		ForeignKeys:    true,
		BusyTimeout:    5 * time.Second,
		MaxConnections: 10,
	}
}

// Initialize creates a new database connection with default pragmas
func Initialize(dbPath string, verbose bool) (*DB, error) {
	opts := DefaultOptions(dbPath)
	opts.Verbose = verbose
	return Open(opts)
}

// Open creates a new database connection. An empty path or ":memory:"
// opens a private in-memory database on a single connection, since every
// new sqlite connection to :memory: would see its own empty database.
func Open(opts Options) (*DB, error) {
	inMemory := opts.Path == "" || opts.Path == memoryPath

	if !inMemory {
		dir := filepath.Dir(opts.Path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	logLevel := logger.Error
	if opts.Verbose {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(sqlite.Open(dsn(opts, inMemory)), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	if inMemory {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		maxConns := opts.MaxConnections
		if maxConns <= 0 {
			maxConns = 10
		}
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	return &DB{DB: db}, nil
}

func dsn(opts Options, inMemory bool) string {
	path := opts.Path
	if inMemory {
		path = memoryPath
	}

	params := fmt.Sprintf("_busy_timeout=%d", opts.BusyTimeout.Milliseconds())
	if opts.ForeignKeys {
		params += "&_foreign_keys=on"
	}
	if opts.EnableWAL && !inMemory {
		params += "&_journal_mode=WAL"
	}
	return path + "?" + params
}

// Close closes the database connection
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is working
func (db *DB) HealthCheck() error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// AutoMigrate runs GORM auto migration for the provided models
func (db *DB) AutoMigrate(models ...any) error {
	if err := db.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}
	log.Printf("[INFO] Successfully migrated %d model(s)", len(models))
	return nil
}

// Migrate creates or updates the tables for every persisted model
func (db *DB) Migrate() error {
	return db.AutoMigrate(models.All()...)
}
