package database

import (
	"fmt"
	"gestaoacoes/cmd/internal/domain/entity"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table managed by the migrator.
var Models = []any{
	&entity.Company{},
	&entity.Client{},
	&entity.Responsible{},
	&entity.User{},
	&entity.Action{},
	&entity.ActionNote{},
	&entity.Notification{},
	&entity.NotificationSettings{},
	&entity.Connection{},
	&entity.CNPJRecord{},
}

// Open connects to the configured driver and runs the migrations.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
		// Reference integrity is checked by the services.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	// Pool limits go first: an in-memory SQLite lives in a single connection.
	if err = db.AutoMigrate(Models...); err != nil {
		return nil, err
	}
	return db, nil
}

// OpenMemory returns a migrated in-memory SQLite database.
func OpenMemory() (*gorm.DB, error) {
	return Open("sqlite", ":memory:")
}
