package handlers

import (
	"net/http"

	"invest-tracker/models"

	"github.com/gin-gonic/gin"
)

type StockInput struct {
	Symbol   string   `json:"symbol" binding:"required"`
	Quantity int      `json:"quantity" binding:"required,min=1"`
	Price    *float64 `json:"price"` // omit to fetch the live quote
}

func (h *Handler) AddStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	var input StockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holding, err := h.Holdings.AddStock(c.Request.Context(), id, input.Symbol, input.Quantity, input.Price)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

type holdingView struct {
	models.Holding
	TotalValue float64 `json:"total_value"`
}

func (h *Handler) ListStocks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	holdings, err := h.Holdings.Holdings(id)
	if err != nil {
		respondErr(c, err)
		return
	}

	views := make([]holdingView, len(holdings))
	for i, holding := range holdings {
		views[i] = holdingView{Holding: holding, TotalValue: holding.TotalValue()}
	}
	c.JSON(http.StatusOK, views)
}

type UpdateStockInput struct {
	Quantity *int     `json:"quantity"`
	Price    *float64 `json:"price"`
}

func (h *Handler) UpdateStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedHolding(c, id); !ok {
		return
	}

	var input UpdateStockInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	holding, err := h.Holdings.SetFields(id, input.Price, input.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *Handler) DeleteStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedHolding(c, id); !ok {
		return
	}

	if err := h.Holdings.Remove(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock deleted successfully"})
}

func (h *Handler) RefreshStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	holding, ok := h.ownedHolding(c, id)
	if !ok {
		return
	}

	price, err := h.Holdings.RefreshPrice(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": holding.Symbol, "price": price})
}

func (h *Handler) StockPerformance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.canAccessStock(c, id) {
		return
	}

	performance, err := h.Transactions.StockPerformanceFor(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, performance)
}

func (h *Handler) StockSnapshot(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedHolding(c, id); !ok {
		return
	}

	snapshot, err := h.Holdings.Snapshot(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) StockTransactions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if !h.canAccessStock(c, id) {
		return
	}

	transactions, err := h.Transactions.StockTransactions(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

// canAccessStock authorizes a stock identity through its holding, or
// through its ledger when the holding is already retired.
func (h *Handler) canAccessStock(c *gin.Context, stockID uint) bool {
	holding, err := h.Holdings.Holding(stockID)
	if err == nil {
		portfolio, perr := h.Portfolios.Get(holding.PortfolioID)
		if perr != nil {
			respondErr(c, perr)
			return false
		}
		if portfolio.UserID != currentUser(c) {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
			return false
		}
		return true
	}

	transactions, terr := h.Transactions.StockTransactions(stockID)
	if terr != nil || len(transactions) == 0 {
		respondErr(c, err)
		return false
	}
	portfolio, perr := h.Portfolios.Get(transactions[0].PortfolioID)
	if perr != nil {
		respondErr(c, perr)
		return false
	}
	if portfolio.UserID != currentUser(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock not found"})
		return false
	}
	return true
}
