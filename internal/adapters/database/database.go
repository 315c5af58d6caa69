// Package database provides the gorm connection and the repository adapters
package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// Open connects to the configured driver
func Open(cfg ports.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres", "":
		dialector = postgres.Open(fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode))
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.NewDatabaseError("failed to connect to database", err)
	}

	if cfg.Driver == "sqlite" {
		// a single connection serializes writers and keeps ":memory:" databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.NewDatabaseError("failed to access sqlite connection pool", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&CitySnapshotModel{}, &UserModel{}); err != nil {
		return errors.NewDatabaseError("failed to run migrations", err)
	}
	return nil
}

// Close safely closes the database connection
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
