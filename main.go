package main

import (
	"log"
	"os"

	"invest-tracker/config"
	"invest-tracker/handlers"
	"invest-tracker/marketdata"
	"invest-tracker/middleware"
	"invest-tracker/models"
	"invest-tracker/service"
	"invest-tracker/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	db, err := config.OpenDB()
	if err != nil {
		log.Fatal("Failed to connect to the database: ", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance: ", err)
	}
	defer sqlDB.Close()

	rdb, err := config.OpenRedis()
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Portfolio{},
		&models.Holding{},
		&models.Transaction{},
		&models.StockPrice{},
	); err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}

	market := marketdata.NewClient(os.Getenv("ALPHA_VANTAGE_API_KEY"), rdb)

	holdingStore := store.NewHoldingStore(db)
	transactionStore := store.NewTransactionStore(db)

	holdingService := service.NewHoldingService(holdingStore, market)
	transactionService := service.NewTransactionService(db, holdingStore, transactionStore)
	portfolioService := service.NewPortfolioService(store.NewPortfolioStore(db), holdingService, transactionService)
	userService := service.NewUserService(store.NewUserStore(db))

	h := &handlers.Handler{
		Users:        userService,
		Portfolios:   portfolioService,
		Holdings:     holdingService,
		Transactions: transactionService,
		Market:       market,
		DB:           db,
		Redis:        rdb,
	}

	router := gin.Default()

	// Public routes
	router.POST("/signup", h.Signup)
	router.POST("/login", h.Login)

	// Protected routes
	auth := router.Group("/")
	auth.Use(middleware.JWTAuth())
	{
		auth.PUT("/users/me", h.UpdateProfile)
		auth.DELETE("/users/me", h.DeleteAccount)

		auth.POST("/portfolios", h.CreatePortfolio)
		auth.GET("/portfolios", h.ListPortfolios)
		auth.PUT("/portfolios/:id", h.RenamePortfolio)
		auth.DELETE("/portfolios/:id", h.DeletePortfolio)
		auth.GET("/portfolios/:id/analytics", h.PortfolioAnalytics)
		auth.GET("/portfolios/:id/performance", h.PortfolioPerformance)
		auth.GET("/portfolios/:id/trends", h.PortfolioTrends)
		auth.GET("/portfolios/:id/transactions", h.PortfolioTransactions)
		auth.POST("/portfolios/:id/refresh", h.RefreshPortfolio)
		auth.GET("/portfolios/:id/stocks", h.ListStocks)
		auth.POST("/portfolios/:id/stocks", h.AddStock)
		auth.GET("/summary", h.PortfolioSummary)

		auth.PUT("/stocks/:id", h.UpdateStock)
		auth.DELETE("/stocks/:id", h.DeleteStock)
		auth.POST("/stocks/:id/refresh", h.RefreshStock)
		auth.GET("/stocks/:id/performance", h.StockPerformance)
		auth.GET("/stocks/:id/snapshot", h.StockSnapshot)
		auth.GET("/stocks/:id/transactions", h.StockTransactions)

		auth.POST("/transactions/buy", h.Buy)
		auth.POST("/transactions/sell", h.Sell)
		auth.GET("/transactions/:id", h.GetTransaction)
		auth.DELETE("/transactions/:id", h.DeleteTransaction)

		auth.GET("/prices/:symbol", h.GetStockPrice)
		auth.GET("/history/:symbol", h.GetHistoricalData)
		auth.GET("/search/:symbol", h.SearchSymbol)
	}

	router.Run(":8080")
}
