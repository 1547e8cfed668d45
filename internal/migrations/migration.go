package migrations

import (
	"kasir_pos/internal/models"
	"kasir_pos/internal/repository"
	"kasir_pos/internal/services"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Seed creates the default admin account, store settings, and a starter set
// of dining tables when the database is empty.
func Seed(db *gorm.DB) error {
	userRepo := repository.NewUserRepository(db)
	userService := services.NewUserService(userRepo)

	if _, err := userRepo.GetByUsername("admin"); err == nil {
		logrus.Info("Default data already seeded")
		return nil
	}

	logrus.Info("Seeding default data...")

	admin := &models.User{
		Username: "admin",
		Email:    "admin@kasirpos.local",
		Role:     string(models.RoleAdmin),
		IsActive: true,
	}
	if err := userService.CreateUser(admin, "admin123"); err != nil {
		return err
	}

	settingsRepo := repository.NewSettingsRepository(db)
	settings, err := settingsRepo.Get()
	if err != nil {
		return err
	}
	if settings.TaxPercent == 0 && settings.ServiceFee == 0 {
		settings.TaxPercent = 10
		settings.ServiceFee = 2000
		settings.UpdatedBy = admin.ID
		if err := settingsRepo.Update(settings); err != nil {
			return err
		}
	}

	tableRepo := repository.NewTableRepository(db)
	tables, err := tableRepo.GetAll()
	if err != nil {
		return err
	}
	if len(tables) == 0 {
		for _, name := range []string{"T1", "T2", "T3", "T4", "T5"} {
			table := &models.DiningTable{
				Name:     name,
				Status:   string(models.TableAvailable),
				Capacity: 4,
			}
			if err := tableRepo.Create(table); err != nil {
				return err
			}
		}
	}

	logrus.Info("Default data seeded")
	return nil
}
