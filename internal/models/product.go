package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Name         string         `json:"name" gorm:"not null"`
	UnitCost     float64        `json:"unit_cost" gorm:"not null"`
	UnitPrice    float64        `json:"unit_price" gorm:"not null"`
	Stock        int            `json:"stock" gorm:"not null;default:0"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	IsPromo      bool           `json:"is_promo" gorm:"default:false"`
	PromoPercent float64        `json:"promo_percent" gorm:"default:0"` // 0-100
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at" gorm:"index"`
}

// EffectiveUnitPrice returns the sale price after the promo discount, if
// any, rounded to whole rupiah so line subtotals stay integral.
func (p *Product) EffectiveUnitPrice() float64 {
	if p.IsPromo && p.PromoPercent > 0 {
		return math.Round(p.UnitPrice - p.UnitPrice*(p.PromoPercent/100))
	}
	return p.UnitPrice
}
