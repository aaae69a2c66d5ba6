package models

import (
	"time"

	"gorm.io/gorm"
)

type Portfolio struct {
	gorm.Model
	UserID uint   `gorm:"index" json:"user_id"`
	Name   string `json:"name"`
}

// Holding is the current position for one symbol in one portfolio.
// Price is the mark price (last known), not an execution price.
type Holding struct {
	gorm.Model
	PortfolioID uint    `gorm:"index" json:"portfolio_id"`
	Symbol      string  `gorm:"index" json:"symbol"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// TotalValue is quantity at the current mark price.
func (h *Holding) TotalValue() float64 {
	return float64(h.Quantity) * h.Price
}

const (
	TransactionBuy  = "Buy"
	TransactionSell = "Sell"
)

// Transaction is an append-only ledger entry. Price is the execution
// price, independent of the holding's mark price. StockID keeps pointing
// at the holding identity even after the holding is deleted.
type Transaction struct {
	gorm.Model
	PortfolioID uint      `gorm:"index" json:"portfolio_id"`
	StockID     uint      `gorm:"index" json:"stock_id"`
	Type        string    `json:"type"` // Buy/Sell
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Date        time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"date"`
}

// Value is quantity at the execution price.
func (t *Transaction) Value() float64 {
	return float64(t.Quantity) * t.Price
}
