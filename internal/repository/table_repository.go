package repository

import (
	"errors"
	"kasir_pos/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTableNotFound = errors.New("table not found")
	ErrTableOccupied = errors.New("table already occupied")
)

type TableRepository interface {
	Create(table *models.DiningTable) error
	GetByID(id uint) (*models.DiningTable, error)
	GetAll() ([]models.DiningTable, error)
	Update(table *models.DiningTable) error
	Delete(id uint) error

	// Claim transitions available -> occupied; at most one caller wins.
	Claim(id uint) error
	// Release transitions occupied -> available and is idempotent: releasing
	// an already available table is not an error.
	Release(id uint) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(table *models.DiningTable) error {
	return r.db.Create(table).Error
}

func (r *tableRepository) GetByID(id uint) (*models.DiningTable, error) {
	var table models.DiningTable
	err := r.db.First(&table, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) GetAll() ([]models.DiningTable, error) {
	var tables []models.DiningTable
	err := r.db.Order("name").Find(&tables).Error
	return tables, err
}

func (r *tableRepository) Update(table *models.DiningTable) error {
	return r.db.Save(table).Error
}

func (r *tableRepository) Delete(id uint) error {
	return r.db.Delete(&models.DiningTable{}, id).Error
}

func (r *tableRepository) Claim(id uint) error {
	result := r.db.Model(&models.DiningTable{}).
		Where("id = ? AND status = ?", id, models.TableAvailable).
		Update("status", models.TableOccupied)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing table from a lost race.
		var count int64
		if err := r.db.Model(&models.DiningTable{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTableNotFound
		}
		return ErrTableOccupied
	}
	return nil
}

func (r *tableRepository) Release(id uint) error {
	result := r.db.Model(&models.DiningTable{}).
		Where("id = ?", id).
		Update("status", models.TableAvailable)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTableNotFound
	}
	return nil
}
