package database

import (
	"fmt"
	"path/filepath"
	"time"

	"attend-go/internal/attend"
	"attend-go/internal/config"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. loc is the calendar timezone for day bucketing.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, loc *time.Location) (attend.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "attendance.db")
		return NewSQLiteDatabase(dbPath, loc)
	case "memory":
		return NewSQLiteDatabase(":memory:", loc)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
