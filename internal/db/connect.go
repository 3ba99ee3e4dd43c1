// Package db opens GORM connections to the Beacon store.
package db

import (
	"fmt"

	"github.com/beaconsafe/beacon/internal/config"
	"github.com/beaconsafe/beacon/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN for connecting to a shared console database.
func DSN(user, password, host string, port int, database string) string {
	cred := user
	if password != "" {
		cred = user + ":" + password
	}
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", cred, host, port, database)
}

// Open connects to the store selected by cfg: a local SQLite file by
// default, or a shared MySQL console database.
func Open(cfg config.StoreConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch cfg.Driver {
	case "mysql":
		user := cfg.User
		if user == "" {
			user = "root"
		}
		dsn := DSN(user, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
		}
		return db, nil
	default:
		db, err := gorm.Open(sqlite.Open(cfg.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: open %s: %w", cfg.Path, err)
		}
		return db, nil
	}
}

// Migrate creates or updates the Beacon tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.EmergencyContact{},
		&models.RegistrySetting{},
		&models.SosIncident{},
	); err != nil {
		return fmt.Errorf("db: migrate: %w", err)
	}
	return nil
}
