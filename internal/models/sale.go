package models

import (
	"time"

	"gorm.io/gorm"
)

type Sale struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	InvoiceNumber  string         `json:"invoice_number" gorm:"unique;not null"`
	CashierID      uint           `json:"cashier_id" gorm:"not null"`
	CustomerID     *uint          `json:"customer_id"`
	TableID        *uint          `json:"table_id"`
	PaymentMethod  string         `json:"payment_method" gorm:"not null"` // cash, gateway
	OrderType      string         `json:"order_type" gorm:"not null"`     // dine_in, take_away, delivery
	Status         string         `json:"status" gorm:"default:'pending'"`
	Subtotal       float64        `json:"subtotal" gorm:"not null"`
	TaxPercent     float64        `json:"tax_percent"` // snapshot at creation time
	TaxAmount      float64        `json:"tax_amount"`
	ServiceFee     float64        `json:"service_fee"`
	Total          float64        `json:"total" gorm:"not null"`
	Profit         float64        `json:"profit"`
	StockCommitted bool           `json:"stock_committed" gorm:"default:false"`
	SnapToken      string         `json:"snap_token"`
	RedirectURL    string         `json:"redirect_url"`
	GatewayTxnID   string         `json:"gateway_txn_id"`
	PaidAt         *time.Time     `json:"paid_at"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at" gorm:"index"`

	Items []SaleItem `json:"items" gorm:"foreignKey:SaleID"`
}

// SaleItem captures the unit price at sale time; it never follows later
// product price changes.
type SaleItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SaleID    uint      `json:"sale_id" gorm:"not null;index"`
	ProductID uint      `json:"product_id" gorm:"not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	UnitPrice float64   `json:"unit_price" gorm:"not null"`
	UnitCost  float64   `json:"unit_cost" gorm:"not null"`
	Subtotal  float64   `json:"subtotal" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SalePaid      SaleStatus = "paid"
	SaleCancelled SaleStatus = "cancelled"
	SaleExpired   SaleStatus = "expired"
	SaleChallenge SaleStatus = "challenge"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentGateway PaymentMethod = "gateway"
)

type OrderType string

const (
	OrderDineIn   OrderType = "dine_in"
	OrderTakeAway OrderType = "take_away"
	OrderDelivery OrderType = "delivery"
)

// IsTerminal reports whether a sale may no longer change status.
// challenge is not terminal: the gateway resolves it to paid or cancelled.
func (s SaleStatus) IsTerminal() bool {
	return s == SalePaid || s == SaleCancelled || s == SaleExpired
}
