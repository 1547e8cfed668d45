package repository

import (
	"errors"
	"kasir_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockLine is one product/quantity pair of a reservation.
type StockLine struct {
	ProductID uint
	Quantity  int
}

type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByIDs(ids []uint) ([]models.Product, error)
	GetAll() ([]models.Product, error)
	GetActive() ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error

	// ReserveStock decrements stock for every line in one transaction.
	// If any line has insufficient stock the whole reservation is rolled
	// back and the failing product id plus the available quantity are
	// returned with ErrInsufficientStock.
	ReserveStock(lines []StockLine) (failedProductID uint, available int, err error)
	// ReleaseStock increments stock for every line (compensating action).
	ReleaseStock(lines []StockLine) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByIDs(ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Find(&products).Error
	return products, err
}

func (r *productRepository) GetActive() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("is_active = ?", true).Find(&products).Error
	return products, err
}

func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

func (r *productRepository) ReserveStock(lines []StockLine) (uint, int, error) {
	var failedID uint
	var available int

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			// Lock the row so concurrent reservations on the same
			// product serialize.
			var product models.Product
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, line.ProductID).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					failedID = line.ProductID
					return ErrProductNotFound
				}
				return err
			}

			if product.Stock < line.Quantity {
				failedID = line.ProductID
				available = product.Stock
				return ErrInsufficientStock
			}

			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				failedID = line.ProductID
				available = product.Stock
				return ErrInsufficientStock
			}
		}
		return nil
	})

	if err != nil {
		return failedID, available, err
	}
	return 0, 0, nil
}

func (r *productRepository) ReleaseStock(lines []StockLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			err := tx.Model(&models.Product{}).
				Where("id = ?", line.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", line.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
