package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"invest-tracker/models"
	"invest-tracker/store"

	"gorm.io/gorm"
)

// PriceLookup is the slice of the market-data client the holdings
// manager needs.
type PriceLookup interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// HoldingService maintains the current-position record per
// (portfolio, symbol): quantity and last-known mark price.
type HoldingService struct {
	holdings *store.HoldingStore
	prices   PriceLookup
}

func NewHoldingService(holdings *store.HoldingStore, prices PriceLookup) *HoldingService {
	return &HoldingService{holdings: holdings, prices: prices}
}

// AddStock creates a holding or tops up an existing one. A nil price
// means fetch the live quote; either way the given price overwrites the
// old mark price unconditionally and the quantity is increased.
func (s *HoldingService) AddStock(ctx context.Context, portfolioID uint, symbol string, quantity int, price *float64) (*models.Holding, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, validationf("symbol must not be empty")
	}

	var markPrice float64
	if price == nil {
		live, err := s.prices.Quote(ctx, symbol)
		if err != nil {
			return nil, fmt.Errorf("fetch price for %s: %w", symbol, err)
		}
		markPrice = live
	} else if *price <= 0 {
		return nil, validationf("price must be positive")
	} else {
		markPrice = *price
	}

	existing, err := s.holdings.BySymbol(portfolioID, symbol)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		err := s.holdings.Update(existing.ID, map[string]interface{}{
			"price":    markPrice,
			"quantity": existing.Quantity + quantity,
		})
		if err != nil {
			return nil, err
		}
		return s.holdings.ByID(existing.ID)
	}

	holding := &models.Holding{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Quantity:    quantity,
		Price:       markPrice,
	}
	if err := s.holdings.Create(holding); err != nil {
		return nil, err
	}
	return holding, nil
}

// Holdings lists all positions in a portfolio.
func (s *HoldingService) Holdings(portfolioID uint) ([]models.Holding, error) {
	return s.holdings.ByPortfolio(portfolioID)
}

// Holding returns a single position by identity.
func (s *HoldingService) Holding(stockID uint) (*models.Holding, error) {
	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return nil, translate(err, "stock", stockID)
	}
	return holding, nil
}

// PortfolioValue sums quantity times mark price over all holdings.
func (s *HoldingService) PortfolioValue(portfolioID uint) (float64, error) {
	holdings, err := s.holdings.ByPortfolio(portfolioID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, h := range holdings {
		total += h.TotalValue()
	}
	return total, nil
}

// RefreshPrice overwrites one holding's mark price with the live quote.
func (s *HoldingService) RefreshPrice(ctx context.Context, stockID uint) (float64, error) {
	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return 0, translate(err, "stock", stockID)
	}

	live, err := s.prices.Quote(ctx, holding.Symbol)
	if err != nil {
		return 0, fmt.Errorf("refresh price for %s: %w", holding.Symbol, err)
	}
	if err := s.holdings.Update(stockID, map[string]interface{}{"price": live}); err != nil {
		return 0, err
	}
	return live, nil
}

// RefreshFailure records one holding whose quote could not be fetched
// during a batch refresh. The holding keeps its prior price.
type RefreshFailure struct {
	StockID uint   `json:"stock_id"`
	Symbol  string `json:"symbol"`
	Reason  string `json:"reason"`
}

// RefreshReport aggregates a batch refresh: successes counted, failures
// itemized.
type RefreshReport struct {
	Updated  int              `json:"updated"`
	Failures []RefreshFailure `json:"failures,omitempty"`
}

// RefreshAll re-prices every holding in a portfolio. A failed lookup
// does not stop the batch; the failing holding is reported and left
// unchanged.
func (s *HoldingService) RefreshAll(ctx context.Context, portfolioID uint) (*RefreshReport, error) {
	holdings, err := s.holdings.ByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}

	report := &RefreshReport{}
	for _, h := range holdings {
		live, err := s.prices.Quote(ctx, h.Symbol)
		if err != nil {
			report.Failures = append(report.Failures, RefreshFailure{
				StockID: h.ID,
				Symbol:  h.Symbol,
				Reason:  err.Error(),
			})
			continue
		}
		if err := s.holdings.Update(h.ID, map[string]interface{}{"price": live}); err != nil {
			report.Failures = append(report.Failures, RefreshFailure{
				StockID: h.ID,
				Symbol:  h.Symbol,
				Reason:  err.Error(),
			})
			continue
		}
		report.Updated++
	}
	return report, nil
}

// Remove deletes a holding unconditionally.
func (s *HoldingService) Remove(stockID uint) error {
	if _, err := s.holdings.ByID(stockID); err != nil {
		return translate(err, "stock", stockID)
	}
	return s.holdings.Delete(stockID)
}

// SetFields is the administrative override. Unlike a sell, setting
// quantity to 0 keeps the holding record.
func (s *HoldingService) SetFields(stockID uint, price *float64, quantity *int) (*models.Holding, error) {
	if price != nil && *price <= 0 {
		return nil, validationf("price must be positive")
	}
	if quantity != nil && *quantity < 0 {
		return nil, validationf("quantity cannot be negative")
	}

	if _, err := s.holdings.ByID(stockID); err != nil {
		return nil, translate(err, "stock", stockID)
	}

	fields := make(map[string]interface{})
	if price != nil {
		fields["price"] = *price
	}
	if quantity != nil {
		fields["quantity"] = *quantity
	}
	if len(fields) > 0 {
		if err := s.holdings.Update(stockID, fields); err != nil {
			return nil, err
		}
	}
	return s.holdings.ByID(stockID)
}

// HoldingSnapshot is the point-in-time view of one position at its
// current mark price.
type HoldingSnapshot struct {
	Symbol       string    `json:"symbol"`
	Quantity     int       `json:"quantity"`
	CurrentPrice float64   `json:"current_price"`
	TotalValue   float64   `json:"total_value"`
	AsOf         time.Time `json:"as_of"`
}

// Snapshot values a single holding at its mark price.
func (s *HoldingService) Snapshot(stockID uint) (*HoldingSnapshot, error) {
	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return nil, translate(err, "stock", stockID)
	}
	return &HoldingSnapshot{
		Symbol:       holding.Symbol,
		Quantity:     holding.Quantity,
		CurrentPrice: holding.Price,
		TotalValue:   holding.TotalValue(),
		AsOf:         time.Now(),
	}, nil
}
