package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PortfolioInput struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) CreatePortfolio(c *gin.Context) {
	var input PortfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	portfolio, err := h.Portfolios.Create(currentUser(c), input.Name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, portfolio)
}

func (h *Handler) ListPortfolios(c *gin.Context) {
	portfolios, err := h.Portfolios.List(currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolios)
}

func (h *Handler) RenamePortfolio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	var input PortfolioInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Portfolios.Rename(id, input.Name); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio updated successfully"})
}

func (h *Handler) DeletePortfolio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	if err := h.Portfolios.Delete(id); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted successfully"})
}

func (h *Handler) PortfolioAnalytics(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	analytics, err := h.Portfolios.Analytics(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) PortfolioPerformance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	performance, err := h.Transactions.Performance(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, performance)
}

// PortfolioTrends serves the transaction analytics: monthly buckets,
// most traded stocks, buy/sell split.
func (h *Handler) PortfolioTrends(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	analytics, err := h.Transactions.Analytics(id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *Handler) PortfolioSummary(c *gin.Context) {
	summaries, err := h.Portfolios.Summary(currentUser(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) RefreshPortfolio(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, ok := h.ownedPortfolio(c, id); !ok {
		return
	}

	result, err := h.Portfolios.RefreshPrices(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
