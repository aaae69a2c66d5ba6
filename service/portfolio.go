package service

import (
	"context"
	"fmt"
	"strings"

	"invest-tracker/models"
	"invest-tracker/store"
)

// PortfolioService composes the holdings manager and the accounting
// engine into per-portfolio and per-user views, and owns portfolio CRUD.
type PortfolioService struct {
	portfolios   *store.PortfolioStore
	holdings     *HoldingService
	transactions *TransactionService
}

func NewPortfolioService(portfolios *store.PortfolioStore, holdings *HoldingService, transactions *TransactionService) *PortfolioService {
	return &PortfolioService{
		portfolios:   portfolios,
		holdings:     holdings,
		transactions: transactions,
	}
}

// Create adds a portfolio; names are unique per user.
func (s *PortfolioService) Create(userID uint, name string) (*models.Portfolio, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("portfolio name must not be empty")
	}

	existing, err := s.portfolios.ByUser(userID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.Name == name {
			return nil, fmt.Errorf("portfolio %q: %w", name, ErrDuplicate)
		}
	}

	portfolio := &models.Portfolio{UserID: userID, Name: name}
	if err := s.portfolios.Create(portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// List returns all portfolios owned by a user.
func (s *PortfolioService) List(userID uint) ([]models.Portfolio, error) {
	return s.portfolios.ByUser(userID)
}

// Get returns one portfolio by identity.
func (s *PortfolioService) Get(portfolioID uint) (*models.Portfolio, error) {
	portfolio, err := s.portfolios.ByID(portfolioID)
	if err != nil {
		return nil, translate(err, "portfolio", portfolioID)
	}
	return portfolio, nil
}

// Rename changes a portfolio's name.
func (s *PortfolioService) Rename(portfolioID uint, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return validationf("portfolio name must not be empty")
	}
	if _, err := s.Get(portfolioID); err != nil {
		return err
	}
	return s.portfolios.Rename(portfolioID, name)
}

// Delete removes a portfolio and cascades to its holdings and ledger.
func (s *PortfolioService) Delete(portfolioID uint) error {
	if _, err := s.Get(portfolioID); err != nil {
		return err
	}
	return s.portfolios.Delete(portfolioID)
}

// PortfolioAnalytics is the composed per-portfolio view: performance,
// current positions, and the standout holdings.
type PortfolioAnalytics struct {
	Portfolio       *models.Portfolio     `json:"portfolio_info"`
	Performance     *PortfolioPerformance `json:"performance"`
	Holdings        []models.Holding      `json:"stocks"`
	StockCount      int                   `json:"stock_count"`
	TopStock        *models.Holding       `json:"top_stock"`
	HighestQuantity *models.Holding       `json:"highest_quantity_stock"`
}

// Analytics composes performance with the holdings snapshot, picking
// the holding with the largest value and the one with the largest
// quantity. Ties keep the first holding encountered.
func (s *PortfolioService) Analytics(portfolioID uint) (*PortfolioAnalytics, error) {
	portfolio, err := s.Get(portfolioID)
	if err != nil {
		return nil, err
	}

	performance, err := s.transactions.Performance(portfolioID)
	if err != nil {
		return nil, err
	}
	holdings, err := s.holdings.Holdings(portfolioID)
	if err != nil {
		return nil, err
	}

	var topStock, highestQuantity *models.Holding
	for i := range holdings {
		h := &holdings[i]
		if topStock == nil || h.TotalValue() > topStock.TotalValue() {
			topStock = h
		}
		if highestQuantity == nil || h.Quantity > highestQuantity.Quantity {
			highestQuantity = h
		}
	}

	return &PortfolioAnalytics{
		Portfolio:       portfolio,
		Performance:     performance,
		Holdings:        holdings,
		StockCount:      len(holdings),
		TopStock:        topStock,
		HighestQuantity: highestQuantity,
	}, nil
}

// PortfolioSummary is one row of the per-user overview. A portfolio
// whose metrics could not be computed carries zeros and the error text
// instead of aborting the batch.
type PortfolioSummary struct {
	PortfolioID        uint    `json:"portfolio_id"`
	Name               string  `json:"portfolio_name"`
	CurrentValue       float64 `json:"current_value"`
	TotalGainLoss      float64 `json:"total_gain_loss"`
	GainLossPercentage float64 `json:"gain_loss_percentage"`
	StockCount         int     `json:"stock_count"`
	Error              string  `json:"error,omitempty"`
}

// Summary computes performance for each of the user's portfolios with
// per-portfolio failure isolation.
func (s *PortfolioService) Summary(userID uint) ([]PortfolioSummary, error) {
	portfolios, err := s.portfolios.ByUser(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]PortfolioSummary, 0, len(portfolios))
	for _, p := range portfolios {
		entry := PortfolioSummary{PortfolioID: p.ID, Name: p.Name}

		performance, err := s.transactions.Performance(p.ID)
		if err != nil {
			entry.Error = err.Error()
			summaries = append(summaries, entry)
			continue
		}
		holdings, err := s.holdings.Holdings(p.ID)
		if err != nil {
			entry.Error = err.Error()
			summaries = append(summaries, entry)
			continue
		}

		entry.CurrentValue = performance.CurrentValue
		entry.TotalGainLoss = performance.TotalGainLoss
		entry.GainLossPercentage = performance.GainLossPercentage
		entry.StockCount = len(holdings)
		summaries = append(summaries, entry)
	}
	return summaries, nil
}

// RefreshResult reports a portfolio-wide price refresh.
type RefreshResult struct {
	PortfolioName string           `json:"portfolio_name"`
	StocksUpdated int              `json:"stocks_updated"`
	Failures      []RefreshFailure `json:"failures,omitempty"`
}

// RefreshPrices re-prices all holdings in the portfolio from the live
// quote source.
func (s *PortfolioService) RefreshPrices(ctx context.Context, portfolioID uint) (*RefreshResult, error) {
	portfolio, err := s.Get(portfolioID)
	if err != nil {
		return nil, err
	}

	report, err := s.holdings.RefreshAll(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{
		PortfolioName: portfolio.Name,
		StocksUpdated: report.Updated,
		Failures:      report.Failures,
	}, nil
}
