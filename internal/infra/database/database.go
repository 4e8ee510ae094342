package database

import (
	"fmt"

	"github.com/uniedit/paysync/internal/infra/config"
	"github.com/uniedit/paysync/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New creates a new database connection. Driver errors are translated so
// unique violations surface as gorm.ErrDuplicatedKey.
func New(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// OwnedModels are the tables this service creates and migrates. Users,
// transactions and subscriptions belong to the host.
func OwnedModels() []any {
	return []any{
		&model.CustomerRecord{},
		&model.PaymentIntentRecord{},
		&model.PaymentSource{},
		&model.Plan{},
		&model.Invoice{},
		&model.SubscriptionPayment{},
	}
}

// AutoMigrate creates or updates the owned tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(OwnedModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
