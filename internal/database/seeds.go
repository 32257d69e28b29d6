package database

import (
	"context"
	"fmt"
	"log/slog"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ISO/IEC 27001:2022 Annex A controls shipped with every install.
var DefaultControls = []models.Control{
	{Code: "A.5.1", Name: "Policies for information security", Domain: "Organizational", Description: "Define and approve security policies."},
	{Code: "A.5.15", Name: "Access control", Domain: "Organizational", Description: "Rules and rights for access control."},
	{Code: "A.5.23", Name: "Information security for use of cloud services", Domain: "Organizational", Description: "Security requirements for cloud usage."},
	{Code: "A.6.3", Name: "Information security awareness", Domain: "People", Description: "Training and awareness program."},
	{Code: "A.8.9", Name: "Configuration management", Domain: "Technological", Description: "Manage configurations securely."},
	{Code: "A.8.12", Name: "Data leakage prevention", Domain: "Technological", Description: "Prevent unauthorized disclosure."},
	{Code: "A.8.15", Name: "Logging", Domain: "Technological", Description: "Generate and protect logs."},
	{Code: "A.8.16", Name: "Monitoring activities", Domain: "Technological", Description: "Monitor systems for anomalies."},
	{Code: "A.8.24", Name: "Use of cryptography", Domain: "Technological", Description: "Use encryption where appropriate."},
	{Code: "A.5.30", Name: "ICT readiness for business continuity", Domain: "Organizational", Description: "Prepare ICT for continuity."},
}

// SeedControls inserts the catalog entries whose code is missing and returns
// how many were created.
func SeedControls(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, c := range DefaultControls {
		control := c
		res := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
			Create(&control)
		if res.Error != nil {
			return created, fmt.Errorf("seed control %s: %w", c.Code, res.Error)
		}
		if res.RowsAffected == 1 {
			created++
		}
	}
	if created > 0 {
		slog.Info("seeded controls", "created", created)
	}
	return created, nil
}

type AdminSeed struct {
	Username string
	Password string
	Email    string
}

// EnsureAdmin creates a staff account when no staff account exists yet.
func EnsureAdmin(ctx context.Context, db *gorm.DB, seed AdminSeed) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.User{}).
		Where("is_staff = ?", true).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check admin user: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if err := CreateAdmin(ctx, db, seed); err != nil {
		return false, err
	}
	slog.Info("created default admin user", "username", seed.Username)
	return true, nil
}

func CreateAdmin(ctx context.Context, db *gorm.DB, seed AdminSeed) error {
	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := models.User{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		IsStaff:      true,
		IsActive:     true,
		Profile:      &models.UserProfile{DisplayName: seed.Username},
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin %s: %w", seed.Username, err)
	}
	return nil
}
