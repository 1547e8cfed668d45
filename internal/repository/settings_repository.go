package repository

import (
	"errors"
	"kasir_pos/internal/models"

	"gorm.io/gorm"
)

type SettingsRepository interface {
	// Get returns the single settings row, creating a zeroed one on first use.
	Get() (*models.StoreSettings, error)
	Update(settings *models.StoreSettings) error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get() (*models.StoreSettings, error) {
	var settings models.StoreSettings
	err := r.db.First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.StoreSettings{}
			if err := r.db.Create(&settings).Error; err != nil {
				return nil, err
			}
			return &settings, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Update(settings *models.StoreSettings) error {
	return r.db.Save(settings).Error
}
