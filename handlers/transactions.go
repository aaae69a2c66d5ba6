package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type TradeInput struct {
	PortfolioID uint    `json:"portfolio_id" binding:"required"`
	StockID     uint    `json:"stock_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

func (h *Handler) Buy(c *gin.Context) {
	var input TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownedPortfolio(c, input.PortfolioID); !ok {
		return
	}

	trans, err := h.Transactions.Buy(input.PortfolioID, input.StockID, input.Quantity, input.Price)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, trans)
}

func (h *Handler) Sell(c *gin.Context) {
	var input TradeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := h.ownedPortfolio(c, input.PortfolioID); !ok {
		return
	}

	trans, err := h.Transactions.Sell(input.PortfolioID, input.StockID, input.Quantity, input.Price)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, trans)
}

func (h *Handler) PortfolioTransactions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	transactions, err := h.Transactions.PortfolioTransactions(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	trans, err := h.Transactions.Transaction(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if _, ok := h.ownedPortfolio(c, trans.PortfolioID); !ok {
		return
	}
	c.JSON(http.StatusOK, trans)
}

func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	trans, err := h.Transactions.Transaction(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if _, ok := h.ownedPortfolio(c, trans.PortfolioID); !ok {
		return
	}

	if err := h.Transactions.DeleteTransaction(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
