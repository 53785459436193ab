// Package database opens the gorm connection used by the audit log.
package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"pdf-to-sound-api/config"
)

// ErrNoDatabase means DB_DRIVER is unset and persistence is disabled.
var ErrNoDatabase = errors.New("no database configured")

var openHook = gorm.Open

// Open connects using cfg.DBDriver and migrates the given models.
func Open(cfg config.Config, models ...any) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.DBDriver)) {
	case "":
		return nil, ErrNoDatabase
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := openHook(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return db, nil
}
