package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diacare-ai/readmission/pkg/common/config"
	"github.com/diacare-ai/readmission/pkg/common/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
)

// GetDB opens the configured database once and returns the shared handle.
// SQLite is the default so the service runs without external infrastructure;
// DB_DRIVER=postgres switches to a shared server.
func GetDB() (*gorm.DB, error) {
	var err error
	dbOnce.Do(func() {
		cfg := config.Load()

		switch cfg.DBDriver {
		case "postgres":
			dsn := fmt.Sprintf(
				"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
				cfg.PostgresHost,
				cfg.PostgresUser,
				cfg.PostgresPassword,
				cfg.PostgresDB,
				cfg.PostgresPort,
				cfg.PostgresSSLMode,
			)
			db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		case "sqlite":
			if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
				if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
					err = fmt.Errorf("create sqlite directory: %w", mkErr)
					return
				}
			}
			db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		default:
			err = fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
			return
		}

		if err != nil {
			logger.Log.WithError(err).WithField("driver", cfg.DBDriver).Error("Failed to connect to database")
			return
		}

		logger.Log.WithField("driver", cfg.DBDriver).Info("Connected to database")
	})

	return db, err
}

func CloseDB() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
