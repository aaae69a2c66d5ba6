package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"invest-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuySellValidation(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")

	var validation *ValidationError
	_, err := f.transactions.Buy(p.ID, 1, 0, 50)
	require.ErrorAs(t, err, &validation)
	_, err = f.transactions.Buy(p.ID, 1, 5, 0)
	require.ErrorAs(t, err, &validation)
	_, err = f.transactions.Sell(p.ID, 1, -1, 50)
	require.ErrorAs(t, err, &validation)

	_, err = f.transactions.Buy(p.ID, 999, 5, 50)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBuySellForeignStockRejected(t *testing.T) {
	f := newFixture(t)
	mine := f.newPortfolio(t, "mine")
	other := &models.Portfolio{UserID: 2, Name: "other"}
	require.NoError(t, f.db.Create(other).Error)

	foreign, err := f.holdings.AddStock(context.Background(), other.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)

	// A stock identity outside the given portfolio reads as not found;
	// the foreign position and both ledgers stay untouched.
	_, err = f.transactions.Buy(mine.ID, foreign.ID, 5, 60)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.transactions.Sell(mine.ID, foreign.ID, 10, 60)
	require.ErrorIs(t, err, ErrNotFound)

	after, err := f.holdings.Holding(foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, after.Quantity)

	ledger, err := f.transactions.PortfolioTransactions(mine.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
	ledger, err = f.transactions.PortfolioTransactions(other.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestBuyLeavesMarkPriceUntouched(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)

	trans, err := f.transactions.Buy(p.ID, holding.ID, 5, 62)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionBuy, trans.Type)
	assert.Equal(t, 62.0, trans.Price)

	after, err := f.holdings.Holding(holding.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, after.Quantity)
	assert.Equal(t, 50.0, after.Price) // execution price lives in the ledger only
}

func TestSellInsufficientQuantity(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 30, floatPtr(50))
	require.NoError(t, err)

	_, err = f.transactions.Sell(p.ID, holding.ID, 50, 55)
	var insufficient *InsufficientQuantityError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 50, insufficient.Requested)
	assert.Equal(t, 30, insufficient.Available)
	assert.Contains(t, err.Error(), "cannot sell 50 shares of AAPL, only 30 available")

	// Failed sell leaves the position and the ledger untouched.
	after, err := f.holdings.Holding(holding.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, after.Quantity)

	ledger, err := f.transactions.StockTransactions(holding.ID)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestRoundTripGainLoss(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	ctx := context.Background()

	// Open with 10 @ $50, top up 5 @ $55 through the manual-price path.
	holding, err := f.holdings.AddStock(ctx, p.ID, "XYZ", 10, floatPtr(50))
	require.NoError(t, err)
	require.NoError(t, f.transStore.Create(&models.Transaction{
		PortfolioID: p.ID, StockID: holding.ID,
		Type: models.TransactionBuy, Quantity: 10, Price: 50, Date: time.Now(),
	}))

	topped, err := f.holdings.AddStock(ctx, p.ID, "XYZ", 5, floatPtr(55))
	require.NoError(t, err)
	assert.Equal(t, 15, topped.Quantity)
	assert.Equal(t, 55.0, topped.Price)
	require.NoError(t, f.transStore.Create(&models.Transaction{
		PortfolioID: p.ID, StockID: holding.ID,
		Type: models.TransactionBuy, Quantity: 5, Price: 55, Date: time.Now(),
	}))

	// Selling everything retires the holding identity.
	_, err = f.transactions.Sell(p.ID, holding.ID, 15, 60)
	require.NoError(t, err)
	_, err = f.holdings.Holding(holding.ID)
	require.ErrorIs(t, err, ErrNotFound)

	ledger, err := f.transactions.PortfolioTransactions(p.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 3)

	perf, err := f.transactions.Performance(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 775.0, perf.TotalInvested)
	assert.Equal(t, 900.0, perf.TotalSold)
	assert.Equal(t, 0.0, perf.CurrentHoldingsValue)
	assert.Equal(t, 900.0, perf.NetValue)
	assert.Equal(t, 125.0, perf.TotalGainLoss)
	assert.InDelta(t, 16.13, perf.GainLossPercentage, 0.01)
	assert.Equal(t, perf.TotalInvested, perf.BuyVolume)
	assert.Equal(t, perf.TotalSold, perf.SellVolume)
	assert.Equal(t, 0, perf.StocksHeld)
}

func TestPerformanceZeroInvested(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")

	perf, err := f.transactions.Performance(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, perf.TotalInvested)
	assert.Equal(t, 0.0, perf.GainLossPercentage)
	assert.Equal(t, 0, perf.TransactionCount)
}

func TestPerformanceRecentActivityWindow(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 100, floatPtr(50))
	require.NoError(t, err)

	base := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	f.transactions.now = func() time.Time { return base.AddDate(0, -3, 0) }
	_, err = f.transactions.Buy(p.ID, holding.ID, 10, 50)
	require.NoError(t, err)

	f.transactions.now = func() time.Time { return base.AddDate(0, 0, -5) }
	_, err = f.transactions.Sell(p.ID, holding.ID, 5, 52)
	require.NoError(t, err)

	f.transactions.now = func() time.Time { return base }
	perf, err := f.transactions.Performance(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, perf.TransactionCount)
	assert.Equal(t, 1, perf.RecentActivity)
}

func TestStockPerformance(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)

	_, err = f.transactions.Buy(p.ID, holding.ID, 10, 40)
	require.NoError(t, err)
	_, err = f.transactions.Buy(p.ID, holding.ID, 10, 60)
	require.NoError(t, err)
	_, err = f.transactions.Sell(p.ID, holding.ID, 5, 70)
	require.NoError(t, err)

	// Mark the position at $55: 25 shares held, average buy $50.
	_, err = f.holdings.SetFields(holding.ID, floatPtr(55), nil)
	require.NoError(t, err)

	perf, err := f.transactions.StockPerformanceFor(holding.ID)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", perf.Symbol)
	assert.Equal(t, 25, perf.CurrentShares) // holding record, not bought-sold
	assert.Equal(t, 50.0, perf.AverageBuyPrice)
	assert.Equal(t, 1000.0, perf.TotalInvested)
	assert.Equal(t, 350.0, perf.TotalProceeds)
	assert.Equal(t, 1375.0, perf.CurrentValue)
	assert.Equal(t, 125.0, perf.UnrealizedGainLoss)
	assert.InDelta(t, 10.0, perf.UnrealizedGainLossPercent, 0.001)
	assert.Equal(t, 3, perf.TransactionCount)
}

func TestStockPerformanceNoData(t *testing.T) {
	f := newFixture(t)
	_, err := f.transactions.StockPerformanceFor(12345)
	require.ErrorIs(t, err, ErrNoData)
}

func TestStockPerformanceRetiredHolding(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)
	_, err = f.transactions.Buy(p.ID, holding.ID, 5, 40)
	require.NoError(t, err)
	_, err = f.transactions.Sell(p.ID, holding.ID, 15, 45)
	require.NoError(t, err)

	// Holding is gone; the ledger slice still answers.
	perf, err := f.transactions.StockPerformanceFor(holding.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, perf.CurrentShares)
	assert.Equal(t, 0.0, perf.CurrentValue)
	assert.Equal(t, 0.0, perf.UnrealizedGainLossPercent)
	assert.Equal(t, 675.0, perf.TotalProceeds)
	assert.Equal(t, fmt.Sprintf("Stock_%d", holding.ID), perf.Symbol)
}

func TestStockPerformanceStoreFailure(t *testing.T) {
	f := newFixture(t)

	// A broken holdings table is a store failure, not a retired
	// holding: the error must surface instead of reading as zeros.
	require.NoError(t, f.db.Migrator().DropTable(&models.Holding{}))

	_, err := f.transactions.StockPerformanceFor(1)
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNoData)
}

func TestAnalyticsEmptyLedger(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")

	_, err := f.transactions.Analytics(p.ID)
	require.ErrorIs(t, err, ErrNoData)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	ctx := context.Background()

	aapl, err := f.holdings.AddStock(ctx, p.ID, "AAPL", 100, floatPtr(50))
	require.NoError(t, err)
	msft, err := f.holdings.AddStock(ctx, p.ID, "MSFT", 100, floatPtr(300))
	require.NoError(t, err)

	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	f.transactions.now = func() time.Time { return jan }
	_, err = f.transactions.Buy(p.ID, aapl.ID, 10, 50) // 500
	require.NoError(t, err)
	_, err = f.transactions.Buy(p.ID, msft.ID, 10, 300) // 3000
	require.NoError(t, err)

	f.transactions.now = func() time.Time { return feb }
	_, err = f.transactions.Sell(p.ID, aapl.ID, 5, 55) // 275
	require.NoError(t, err)

	analytics, err := f.transactions.Analytics(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, analytics.TotalTransactions)

	require.Contains(t, analytics.MonthlyBreakdown, "2026-01")
	require.Contains(t, analytics.MonthlyBreakdown, "2026-02")
	assert.Equal(t, 2, analytics.MonthlyBreakdown["2026-01"].Buys)
	assert.Equal(t, 3500.0, analytics.MonthlyBreakdown["2026-01"].BuyVolume)
	assert.Equal(t, 1, analytics.MonthlyBreakdown["2026-02"].Sells)
	assert.Equal(t, 275.0, analytics.MonthlyBreakdown["2026-02"].SellVolume)

	require.Len(t, analytics.MostTraded, 2)
	assert.Equal(t, "MSFT", analytics.MostTraded[0].Symbol) // 3000 > 775
	assert.Equal(t, 3000.0, analytics.MostTraded[0].Volume)
	assert.Equal(t, "AAPL", analytics.MostTraded[1].Symbol)
	assert.Equal(t, 775.0, analytics.MostTraded[1].Volume)

	assert.InDelta(t, 66.67, analytics.BuySellRatio.BuyRatio, 0.01)
	assert.InDelta(t, 33.33, analytics.BuySellRatio.SellRatio, 0.01)
}

func TestAnalyticsRetiredIdentityLabel(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)

	_, err = f.transactions.Sell(p.ID, holding.ID, 10, 55)
	require.NoError(t, err)

	analytics, err := f.transactions.Analytics(p.ID)
	require.NoError(t, err)
	require.Len(t, analytics.MostTraded, 1)
	assert.Equal(t, fmt.Sprintf("Stock_%d", holding.ID), analytics.MostTraded[0].Symbol)
}

func TestAnalyticsTopFiveOnly(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		symbol := fmt.Sprintf("SYM%d", i)
		holding, err := f.holdings.AddStock(ctx, p.ID, symbol, 100, floatPtr(10))
		require.NoError(t, err)
		_, err = f.transactions.Buy(p.ID, holding.ID, i+1, 10)
		require.NoError(t, err)
	}

	analytics, err := f.transactions.Analytics(p.ID)
	require.NoError(t, err)
	require.Len(t, analytics.MostTraded, 5)
	assert.Equal(t, "SYM6", analytics.MostTraded[0].Symbol)
	assert.Equal(t, "SYM2", analytics.MostTraded[4].Symbol)
}

func TestBuySellRatioEmpty(t *testing.T) {
	ratio := buySellRatio(nil)
	assert.Equal(t, 0.0, ratio.BuyRatio)
	assert.Equal(t, 0.0, ratio.SellRatio)
}

func TestDeleteTransaction(t *testing.T) {
	f := newFixture(t)
	p := f.newPortfolio(t, "growth")
	holding, err := f.holdings.AddStock(context.Background(), p.ID, "AAPL", 10, floatPtr(50))
	require.NoError(t, err)

	trans, err := f.transactions.Buy(p.ID, holding.ID, 5, 50)
	require.NoError(t, err)

	require.NoError(t, f.transactions.DeleteTransaction(trans.ID))
	_, err = f.transactions.Transaction(trans.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = f.transactions.DeleteTransaction(trans.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
