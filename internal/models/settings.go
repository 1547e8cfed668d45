package models

import (
	"time"
)

// StoreSettings holds the current tax rate and service fee. The values in
// effect at order creation are snapshotted into the Sale row, so later
// changes never alter historical invoices.
type StoreSettings struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TaxPercent float64   `json:"tax_percent" gorm:"default:0"`
	ServiceFee float64   `json:"service_fee" gorm:"default:0"` // flat amount, dine-in only
	UpdatedBy  uint      `json:"updated_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
