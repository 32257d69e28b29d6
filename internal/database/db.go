package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ferretcontrol/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second
)

// Connect opens the Postgres pool, retrying while the database comes up.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= maxAttempts; i++ {
		slog.Info("connecting to database", "attempt", i, "max_attempts", maxAttempts)

		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}

		slog.Warn("database connection failed", "attempt", i, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to db after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("connected to database")
	return db, nil
}

// Migrate creates or updates every table. Order follows foreign keys.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.InformationAsset{},
		&models.Risk{},
		&models.Control{},
		&models.RiskControl{},
		&models.AuditLog{},
		&models.UserSessionStatus{},
		&models.SecurityNotification{},
		&models.PasswordResetCode{},
		&models.ForumPost{},
		&models.SystemSetting{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Bootstrap migrates the schema and seeds the default admin and the control
// catalog. Safe to run on every start.
func Bootstrap(ctx context.Context, db *gorm.DB, admin AdminSeed) error {
	if err := Migrate(db); err != nil {
		return err
	}
	if _, err := EnsureAdmin(ctx, db, admin); err != nil {
		return err
	}
	if _, err := SeedControls(ctx, db); err != nil {
		return err
	}
	return nil
}
