package models

import (
	"time"

	"gorm.io/gorm"
)

type StockPrice struct {
	gorm.Model
	Symbol    string
	Price     float64
	Timestamp time.Time
}
