package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"invest-tracker/marketdata"
	"invest-tracker/models"
	"invest-tracker/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Handler binds the service layer to the gin routes.
type Handler struct {
	Users        *service.UserService
	Portfolios   *service.PortfolioService
	Holdings     *service.HoldingService
	Transactions *service.TransactionService
	Market       *marketdata.Client
	DB           *gorm.DB
	Redis        *redis.Client
}

func currentUser(c *gin.Context) uint {
	return c.MustGet("user_id").(uint)
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// respondErr maps service errors onto HTTP statuses.
func respondErr(c *gin.Context, err error) {
	var validation *service.ValidationError
	var insufficient *service.InsufficientQuantityError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &insufficient):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, marketdata.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ownedPortfolio loads a portfolio and verifies it belongs to the
// authenticated user. Foreign portfolios read as not found.
func (h *Handler) ownedPortfolio(c *gin.Context, portfolioID uint) (*models.Portfolio, bool) {
	portfolio, err := h.Portfolios.Get(portfolioID)
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	if portfolio.UserID != currentUser(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "portfolio not found"})
		return nil, false
	}
	return portfolio, true
}

// ownedHolding resolves a holding through its portfolio's owner.
func (h *Handler) ownedHolding(c *gin.Context, stockID uint) (*models.Holding, bool) {
	holding, err := h.Holdings.Holding(stockID)
	if err != nil {
		respondErr(c, err)
		return nil, false
	}
	if _, ok := h.ownedPortfolio(c, holding.PortfolioID); !ok {
		return nil, false
	}
	return holding, true
}
