package service

import (
	"context"
	"fmt"
	"testing"

	"invest-tracker/marketdata"
	"invest-tracker/models"
	"invest-tracker/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Transaction{},
		&models.StockPrice{},
	))
	return db
}

// stubPrices fakes the market-data client for the holdings manager.
type stubPrices struct {
	quotes map[string]float64
	fail   map[string]bool
}

func (s *stubPrices) Quote(ctx context.Context, symbol string) (float64, error) {
	if s.fail[symbol] {
		return 0, fmt.Errorf("quote %s: %w", symbol, marketdata.ErrUnavailable)
	}
	price, ok := s.quotes[symbol]
	if !ok {
		return 0, fmt.Errorf("quote %s: %w", symbol, marketdata.ErrUnavailable)
	}
	return price, nil
}

type fixture struct {
	db           *gorm.DB
	prices       *stubPrices
	holdingStore *store.HoldingStore
	transStore   *store.TransactionStore
	holdings     *HoldingService
	transactions *TransactionService
	portfolios   *PortfolioService
	users        *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	prices := &stubPrices{quotes: map[string]float64{}, fail: map[string]bool{}}
	holdingStore := store.NewHoldingStore(db)
	transStore := store.NewTransactionStore(db)

	holdings := NewHoldingService(holdingStore, prices)
	transactions := NewTransactionService(db, holdingStore, transStore)
	portfolios := NewPortfolioService(store.NewPortfolioStore(db), holdings, transactions)
	users := NewUserService(store.NewUserStore(db))

	return &fixture{
		db:           db,
		prices:       prices,
		holdingStore: holdingStore,
		transStore:   transStore,
		holdings:     holdings,
		transactions: transactions,
		portfolios:   portfolios,
		users:        users,
	}
}

func (f *fixture) newPortfolio(t *testing.T, name string) *models.Portfolio {
	t.Helper()
	portfolio := &models.Portfolio{UserID: 1, Name: name}
	require.NoError(t, f.db.Create(portfolio).Error)
	return portfolio
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
