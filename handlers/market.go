package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"invest-tracker/models"
	"invest-tracker/store"

	"github.com/gin-gonic/gin"
)

const historyCacheTTL = 24 * time.Hour

func (h *Handler) GetStockPrice(c *gin.Context) {
	symbol := c.Param("symbol")

	price, err := h.Market.Quote(c.Request.Context(), symbol)
	if err != nil {
		respondErr(c, err)
		return
	}

	entry := models.StockPrice{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now(),
	}
	h.DB.Create(&entry)

	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "price": price})
}

func (h *Handler) SearchSymbol(c *gin.Context) {
	info, err := h.Market.Lookup(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *Handler) GetHistoricalData(c *gin.Context) {
	symbol := c.Param("symbol")
	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("stock:%s:history", symbol)

	if h.Redis != nil {
		if cached, err := h.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var bars []models.StockPrice
			if err := json.Unmarshal([]byte(cached), &bars); err == nil {
				c.JSON(http.StatusOK, bars)
				return
			}
		}
	}

	bars, err := h.Market.History(ctx, symbol)
	if err != nil {
		respondErr(c, err)
		return
	}

	if err := store.CreateInBatches(h.DB, bars, 100); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store historical data"})
		return
	}

	if h.Redis != nil {
		if data, err := json.Marshal(bars); err == nil {
			h.Redis.Set(ctx, cacheKey, data, historyCacheTTL)
		}
	}
	c.JSON(http.StatusOK, bars)
}
