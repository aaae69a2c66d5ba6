package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"invest-tracker/models"
	"invest-tracker/store"

	"gorm.io/gorm"
)

const recentActivityWindow = 30 * 24 * time.Hour

// TransactionService owns the append-only ledger and everything derived
// from it: buy/sell recording against current holdings, portfolio and
// per-stock performance, and trading analytics.
type TransactionService struct {
	db           *gorm.DB
	holdings     *store.HoldingStore
	transactions *store.TransactionStore
	now          func() time.Time
}

func NewTransactionService(db *gorm.DB, holdings *store.HoldingStore, transactions *store.TransactionStore) *TransactionService {
	return &TransactionService{
		db:           db,
		holdings:     holdings,
		transactions: transactions,
		now:          time.Now,
	}
}

// Buy increases the holding's quantity and appends a Buy entry to the
// ledger. The mark price is left untouched; only the ledger carries the
// execution price. Both writes run in one store transaction.
func (s *TransactionService) Buy(portfolioID, stockID uint, quantity int, price float64) (*models.Transaction, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	if price <= 0 {
		return nil, validationf("price must be positive")
	}

	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return nil, translate(err, "stock", stockID)
	}
	if holding.PortfolioID != portfolioID {
		return nil, notFound("stock", stockID)
	}

	trans := &models.Transaction{
		PortfolioID: portfolioID,
		StockID:     stockID,
		Type:        models.TransactionBuy,
		Quantity:    quantity,
		Price:       price,
		Date:        s.now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := s.holdings.WithTx(tx).Update(stockID, map[string]interface{}{
			"quantity": holding.Quantity + quantity,
		})
		if err != nil {
			return err
		}
		return s.transactions.WithTx(tx).Create(trans)
	})
	if err != nil {
		return nil, err
	}
	return trans, nil
}

// Sell decreases the holding's quantity and appends a Sell entry.
// Selling down to exactly 0 deletes the holding, retiring its identity.
func (s *TransactionService) Sell(portfolioID, stockID uint, quantity int, price float64) (*models.Transaction, error) {
	if quantity <= 0 {
		return nil, validationf("quantity must be positive")
	}
	if price <= 0 {
		return nil, validationf("price must be positive")
	}

	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return nil, translate(err, "stock", stockID)
	}
	if holding.PortfolioID != portfolioID {
		return nil, notFound("stock", stockID)
	}
	if quantity > holding.Quantity {
		return nil, &InsufficientQuantityError{
			Symbol:    holding.Symbol,
			Requested: quantity,
			Available: holding.Quantity,
		}
	}

	trans := &models.Transaction{
		PortfolioID: portfolioID,
		StockID:     stockID,
		Type:        models.TransactionSell,
		Quantity:    quantity,
		Price:       price,
		Date:        s.now(),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		remaining := holding.Quantity - quantity
		holdings := s.holdings.WithTx(tx)
		if remaining == 0 {
			if err := holdings.Delete(stockID); err != nil {
				return err
			}
		} else {
			err := holdings.Update(stockID, map[string]interface{}{"quantity": remaining})
			if err != nil {
				return err
			}
		}
		return s.transactions.WithTx(tx).Create(trans)
	})
	if err != nil {
		return nil, err
	}
	return trans, nil
}

// PortfolioTransactions returns the ledger for a portfolio, most recent
// first.
func (s *TransactionService) PortfolioTransactions(portfolioID uint) ([]models.Transaction, error) {
	return s.transactions.ByPortfolio(portfolioID)
}

// StockTransactions returns the ledger slice tied to one stock identity.
func (s *TransactionService) StockTransactions(stockID uint) ([]models.Transaction, error) {
	return s.transactions.ByStock(stockID)
}

// Transaction looks up a single ledger entry.
func (s *TransactionService) Transaction(transID uint) (*models.Transaction, error) {
	trans, err := s.transactions.ByID(transID)
	if err != nil {
		return nil, translate(err, "transaction", transID)
	}
	return trans, nil
}

// DeleteTransaction removes a ledger entry. Administrative only; normal
// flows never rewrite the ledger.
func (s *TransactionService) DeleteTransaction(transID uint) error {
	if _, err := s.transactions.ByID(transID); err != nil {
		return translate(err, "transaction", transID)
	}
	return s.transactions.Delete(transID)
}

// PortfolioPerformance is a portfolio-level cash-flow reconciliation:
// money that left (invested) against money still held at mark value or
// already returned (sold). It is not per-lot realized/unrealized math.
type PortfolioPerformance struct {
	TotalInvested        float64 `json:"total_invested"`
	CurrentHoldingsValue float64 `json:"current_holdings_value"`
	CurrentValue         float64 `json:"current_value"`
	TotalSold            float64 `json:"total_sold"`
	NetValue             float64 `json:"net_value"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	GainLossPercentage   float64 `json:"gain_loss_percentage"`
	TransactionCount     int     `json:"transaction_count"`
	BuyVolume            float64 `json:"buy_volume"`
	SellVolume           float64 `json:"sell_volume"`
	RecentActivity       int     `json:"recent_activity"`
	StocksHeld           int     `json:"stocks_held"`
}

// Performance derives portfolio metrics from the full ledger plus the
// current holdings snapshot.
func (s *TransactionService) Performance(portfolioID uint) (*PortfolioPerformance, error) {
	transactions, err := s.transactions.ByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}

	perf := &PortfolioPerformance{TransactionCount: len(transactions)}
	for _, t := range transactions {
		if t.Type == models.TransactionBuy {
			perf.TotalInvested += t.Value()
			perf.BuyVolume += t.Value()
		} else {
			perf.TotalSold += t.Value()
			perf.SellVolume += t.Value()
		}
	}

	holdings, err := s.holdings.ByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	for _, h := range holdings {
		perf.CurrentHoldingsValue += h.TotalValue()
	}
	perf.CurrentValue = perf.CurrentHoldingsValue
	perf.StocksHeld = len(holdings)

	perf.NetValue = perf.CurrentHoldingsValue + perf.TotalSold
	perf.TotalGainLoss = perf.NetValue - perf.TotalInvested
	if perf.TotalInvested > 0 {
		perf.GainLossPercentage = perf.TotalGainLoss / perf.TotalInvested * 100
	}

	cutoff := s.now().Add(-recentActivityWindow)
	for _, t := range transactions {
		if t.Date.After(cutoff) {
			perf.RecentActivity++
		}
	}
	return perf, nil
}

// StockPerformance covers one stock identity: its ledger slice plus the
// current holding record when it still exists.
type StockPerformance struct {
	Symbol                    string  `json:"symbol"`
	CurrentShares             int     `json:"current_shares"`
	CurrentPrice              float64 `json:"current_price"`
	AverageBuyPrice           float64 `json:"average_buy_price"`
	TotalInvested             float64 `json:"total_invested"`
	TotalProceeds             float64 `json:"total_proceeds"`
	CurrentValue              float64 `json:"current_value"`
	UnrealizedGainLoss        float64 `json:"unrealized_gain_loss"`
	UnrealizedGainLossPercent float64 `json:"unrealized_gain_loss_percent"`
	TransactionCount          int     `json:"transaction_count"`
}

// StockPerformanceFor computes unrealized gain/loss for a stock
// identity. Current shares come from the holding record, never from
// replaying the ledger, so administrative overrides stay authoritative.
func (s *TransactionService) StockPerformanceFor(stockID uint) (*StockPerformance, error) {
	transactions, err := s.transactions.ByStock(stockID)
	if err != nil {
		return nil, err
	}
	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		holding = nil
	}
	if holding == nil && len(transactions) == 0 {
		return nil, fmt.Errorf("stock %d: %w", stockID, ErrNoData)
	}

	var totalSharesBought int
	var totalCost, totalProceeds float64
	for _, t := range transactions {
		if t.Type == models.TransactionBuy {
			totalSharesBought += t.Quantity
			totalCost += t.Value()
		} else {
			totalProceeds += t.Value()
		}
	}

	perf := &StockPerformance{
		Symbol:           fmt.Sprintf("Stock_%d", stockID),
		TotalInvested:    totalCost,
		TotalProceeds:    totalProceeds,
		TransactionCount: len(transactions),
	}
	if holding != nil {
		perf.Symbol = holding.Symbol
		perf.CurrentShares = holding.Quantity
		perf.CurrentPrice = holding.Price
	}
	if totalSharesBought > 0 {
		perf.AverageBuyPrice = totalCost / float64(totalSharesBought)
	}

	perf.CurrentValue = float64(perf.CurrentShares) * perf.CurrentPrice
	costBasis := float64(perf.CurrentShares) * perf.AverageBuyPrice
	perf.UnrealizedGainLoss = perf.CurrentValue - costBasis
	if costBasis != 0 {
		perf.UnrealizedGainLossPercent = perf.UnrealizedGainLoss / costBasis * 100
	}
	return perf, nil
}

// MonthlyActivity buckets one calendar month of trading.
type MonthlyActivity struct {
	Buys       int     `json:"buys"`
	Sells      int     `json:"sells"`
	BuyVolume  float64 `json:"buy_volume"`
	SellVolume float64 `json:"sell_volume"`
}

// StockActivity accumulates trading per stock identity.
type StockActivity struct {
	StockID uint    `json:"stock_id"`
	Symbol  string  `json:"symbol"`
	Buys    int     `json:"buys"`
	Sells   int     `json:"sells"`
	Volume  float64 `json:"volume"`
}

// BuySellRatio is the split of transaction counts, as percentages.
type BuySellRatio struct {
	BuyRatio  float64 `json:"buy_ratio"`
	SellRatio float64 `json:"sell_ratio"`
}

// TransactionAnalytics is the trend view over a portfolio's ledger.
type TransactionAnalytics struct {
	MonthlyBreakdown  map[string]*MonthlyActivity `json:"monthly_breakdown"`
	MostTraded        []StockActivity             `json:"most_traded_stocks"`
	TotalTransactions int                         `json:"total_transactions"`
	BuySellRatio      BuySellRatio                `json:"buy_sell_ratio"`
}

// Analytics groups the ledger by calendar month, ranks the five most
// traded stock identities by combined volume, and reports the buy/sell
// count split. An empty ledger is ErrNoData, not an empty structure.
func (s *TransactionService) Analytics(portfolioID uint) (*TransactionAnalytics, error) {
	transactions, err := s.transactions.ByPortfolio(portfolioID)
	if err != nil {
		return nil, err
	}
	if len(transactions) == 0 {
		return nil, fmt.Errorf("portfolio %d has no transactions: %w", portfolioID, ErrNoData)
	}

	monthly := make(map[string]*MonthlyActivity)
	for _, t := range transactions {
		key := t.Date.Format("2006-01")
		bucket, ok := monthly[key]
		if !ok {
			bucket = &MonthlyActivity{}
			monthly[key] = bucket
		}
		if t.Type == models.TransactionBuy {
			bucket.Buys++
			bucket.BuyVolume += t.Value()
		} else {
			bucket.Sells++
			bucket.SellVolume += t.Value()
		}
	}

	// Activity slice keeps first-seen order so equal volumes rank by
	// first appearance in the ledger.
	var activity []*StockActivity
	index := make(map[uint]*StockActivity)
	for _, t := range transactions {
		entry, ok := index[t.StockID]
		if !ok {
			entry = &StockActivity{StockID: t.StockID, Symbol: s.resolveSymbol(t.StockID)}
			index[t.StockID] = entry
			activity = append(activity, entry)
		}
		if t.Type == models.TransactionBuy {
			entry.Buys++
		} else {
			entry.Sells++
		}
		entry.Volume += t.Value()
	}
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].Volume > activity[j].Volume
	})
	if len(activity) > 5 {
		activity = activity[:5]
	}
	mostTraded := make([]StockActivity, len(activity))
	for i, a := range activity {
		mostTraded[i] = *a
	}

	return &TransactionAnalytics{
		MonthlyBreakdown:  monthly,
		MostTraded:        mostTraded,
		TotalTransactions: len(transactions),
		BuySellRatio:      buySellRatio(transactions),
	}, nil
}

// resolveSymbol maps a stock identity to its symbol via the current
// holding; retired identities get a synthetic label.
func (s *TransactionService) resolveSymbol(stockID uint) string {
	holding, err := s.holdings.ByID(stockID)
	if err != nil {
		return fmt.Sprintf("Stock_%d", stockID)
	}
	return holding.Symbol
}

// buySellRatio splits the transaction count into buy/sell percentages.
// Both are 0 on an empty ledger.
func buySellRatio(transactions []models.Transaction) BuySellRatio {
	var buys, sells int
	for _, t := range transactions {
		if t.Type == models.TransactionBuy {
			buys++
		} else {
			sells++
		}
	}
	total := buys + sells
	if total == 0 {
		return BuySellRatio{}
	}
	return BuySellRatio{
		BuyRatio:  float64(buys) / float64(total) * 100,
		SellRatio: float64(sells) / float64(total) * 100,
	}
}
