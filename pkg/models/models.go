package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is a single cash or credit sale. Records are immutable once
// written except for PaidAmount, which accumulates repayments over time.
type SaleRecord struct {
	ID           uuid.UUID       `json:"id"`
	CustomerName string          `json:"customer_name"`
	Phone        string          `json:"phone,omitempty"` // optional contact, empty when unknown
	Amount       decimal.Decimal `json:"amount"`
	IsCredit     bool            `json:"is_credit"`
	PaidAmount   decimal.Decimal `json:"paid_amount"` // cumulative repayments against this sale
	Timestamp    time.Time       `json:"timestamp"`
	ShopID       string          `json:"shop_id"`
}

// Product is an inventory item belonging to one shop.
type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellPrice    decimal.Decimal `json:"sell_price"`
	Stock        int             `json:"stock"`
	ReorderLevel int             `json:"reorder_level"`
	Category     string          `json:"category,omitempty"`
	ShopID       string          `json:"shop_id"`
}

// LowStock reports whether the product is at or below its reorder level.
func (p *Product) LowStock() bool {
	return p.Stock <= p.ReorderLevel
}

// ShopSettings holds the owner's shop profile and payment accounts used
// when composing payment-reminder messages.
type ShopSettings struct {
	ShopID       string `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	OwnerPhone   string `json:"owner_phone"`
	Telebirr     string `json:"telebirr"`
	CBEAccount   string `json:"cbe_account"`
	OtherAccount string `json:"other_account"`
}
