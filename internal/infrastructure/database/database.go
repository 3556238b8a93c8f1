package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ressKim-io/EcoScan/api-service/internal/domain/entity"
	"github.com/ressKim-io/EcoScan/api-service/internal/infrastructure/config"
)

// Open connects to the configured SQL backend. The memory driver has no SQL
// backend and must be handled by the caller.
func Open(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	log.Info("opening database", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "postgres":
		return NewPostgresDB(cfg)
	case "sqlite":
		return NewSQLiteDB(cfg)
	default:
		return nil, fmt.Errorf("database driver %q has no SQL backend", cfg.Driver)
	}
}

// PostgresDSN builds a libpq keyword/value connection string
func PostgresDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// NewSQLiteDB opens a single-file SQLite database at cfg.Path
func NewSQLiteDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", cfg.Path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// SQLite serialises writers; one connection avoids "database is locked".
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate runs database migrations
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.Scan{},
	); err != nil {
		return err
	}
	return backfillProductKeys(db)
}

// backfillProductKeys fills the grouping key of rows written before it existed
func backfillProductKeys(db *gorm.DB) error {
	var batch []*entity.Scan
	return db.Select("id", "product").
		Where("product_key = ? OR product_key IS NULL", "").
		FindInBatches(&batch, 500, func(tx *gorm.DB, _ int) error {
			for _, s := range batch {
				err := tx.Session(&gorm.Session{NewDB: true}).
					Model(&entity.Scan{}).
					Where("id = ?", s.ID).
					Update("product_key", entity.NormalizeProduct(s.Product)).Error
				if err != nil {
					return err
				}
			}
			return nil
		}).Error
}
