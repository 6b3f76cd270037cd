package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"claims-management-server/config"
	"claims-management-server/database"
	"claims-management-server/models"
	"claims-management-server/utils"
)

// seedAdmin creates the initial admin account from ADMIN_EMAIL/ADMIN_PASSWORD
// when no active admin exists yet. With an empty password nothing is created,
// so production can manage admins out of band.
func seedAdmin(log *logrus.Logger) error {
	var existing models.User
	err := database.DB.Where("role = ? AND is_active = ?", models.RoleAdmin, true).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	cfg := config.AppConfig.Admin
	if cfg.Password == "" {
		log.Warn("no active admin and ADMIN_PASSWORD is empty, skipping admin seed")
		return nil
	}

	hash, err := utils.HashPassword(cfg.Password)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:        cfg.Email,
		PasswordHash: hash,
		FullName:     "Administrador",
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		return err
	}
	log.WithField("email", cfg.Email).Info("seeded initial admin account")
	return nil
}
