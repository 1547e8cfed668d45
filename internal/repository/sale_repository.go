package repository

import (
	"errors"
	"kasir_pos/internal/models"
	"time"

	"gorm.io/gorm"
)

var ErrSaleNotFound = errors.New("sale not found")

type SaleRepository interface {
	// Create persists the sale and its items in a single transaction.
	Create(sale *models.Sale) error
	GetByID(id uint) (*models.Sale, error)
	GetByInvoiceNumber(invoice string) (*models.Sale, error)
	GetByDateRange(startDate, endDate time.Time) ([]models.Sale, error)
	GetByCashier(cashierID uint) ([]models.Sale, error)
	Update(sale *models.Sale) error
	// TransitionStatus atomically moves a live (pending or challenge) sale
	// to target, applying the extra column updates in the same statement.
	// It reports false when the sale was already terminal, so concurrent
	// or redelivered notifications cannot regress a settled sale.
	TransitionStatus(id uint, target string, updates map[string]interface{}) (bool, error)
	// UpdateGatewayToken stores the gateway token columns without touching
	// the status, which a webhook may have advanced in the meantime.
	UpdateGatewayToken(id uint, token, redirectURL string) error
	Delete(id uint) error
	GetAll() ([]models.Sale, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(sale *models.Sale) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(sale).Error
	})
}

func (r *saleRepository) GetByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.Preload("Items").First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) GetByInvoiceNumber(invoice string) (*models.Sale, error) {
	var sale models.Sale
	err := r.db.Preload("Items").Where("invoice_number = ?", invoice).First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// GetByDateRange returns sales created in [startDate, endDate); the upper
// bound is exclusive so day ranges do not pick up the following midnight.
func (r *saleRepository) GetByDateRange(startDate, endDate time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Preload("Items").
		Where("created_at >= ? AND created_at < ?", startDate, endDate).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepository) GetByCashier(cashierID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Where("cashier_id = ?", cashierID).Find(&sales).Error
	return sales, err
}

func (r *saleRepository) Update(sale *models.Sale) error {
	return r.db.Save(sale).Error
}

func (r *saleRepository) TransitionStatus(id uint, target string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": target}
	for column, value := range updates {
		values[column] = value
	}
	result := r.db.Model(&models.Sale{}).
		Where("id = ? AND status IN ?", id, []string{
			string(models.SalePending),
			string(models.SaleChallenge),
		}).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *saleRepository) UpdateGatewayToken(id uint, token, redirectURL string) error {
	return r.db.Model(&models.Sale{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"snap_token":   token,
			"redirect_url": redirectURL,
		}).Error
}

func (r *saleRepository) Delete(id uint) error {
	return r.db.Delete(&models.Sale{}, id).Error
}

func (r *saleRepository) GetAll() ([]models.Sale, error) {
	var sales []models.Sale
	err := r.db.Preload("Items").Find(&sales).Error
	return sales, err
}
