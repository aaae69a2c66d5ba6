package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"invest-tracker/models"

	"github.com/go-redis/redis/v8"
)

const (
	defaultBaseURL = "https://www.alphavantage.co"
	quoteCacheTTL  = 5 * time.Minute
	descriptionCap = 200
)

// ErrUnavailable marks any failure to obtain usable market data: network
// errors, unknown symbols, or quotes without a positive price.
var ErrUnavailable = errors.New("market data unavailable")

// Client fetches quotes and company data from Alpha Vantage, with a
// Redis cache in front of the quote endpoint. The Redis client may be
// nil, in which case every quote goes to the API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	apiKey     string
	rdb        *redis.Client
}

func NewClient(apiKey string, rdb *redis.Client) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		HTTPClient: http.DefaultClient,
		apiKey:     apiKey,
		rdb:        rdb,
	}
}

type quoteResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		PreviousClose string `json:"08. previous close"`
	} `json:"Global Quote"`
	TimeSeriesDaily map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

type overviewResponse struct {
	Name                 string `json:"Name"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	Description          string `json:"Description"`
	MarketCapitalization string `json:"MarketCapitalization"`
}

// SymbolInfo is the descriptive record returned by Lookup.
type SymbolInfo struct {
	Symbol        string  `json:"symbol"`
	CompanyName   string  `json:"company_name"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close"`
	MarketCap     float64 `json:"market_cap"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	Description   string  `json:"description"`
}

func (c *Client) get(ctx context.Context, function, symbol string, out interface{}) error {
	u := fmt.Sprintf("%s/query?function=%s&symbol=%s&apikey=%s",
		c.BaseURL, function, url.QueryEscape(symbol), c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: API returned %s", ErrUnavailable, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// Quote returns the current price for a symbol. A missing or
// non-positive price is reported as ErrUnavailable, never as a $0 asset.
func (c *Client) Quote(ctx context.Context, symbol string) (float64, error) {
	symbol = strings.ToUpper(symbol)
	cacheKey := fmt.Sprintf("stock:%s:price", symbol)

	if c.rdb != nil {
		if cached, err := c.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if price, err := strconv.ParseFloat(cached, 64); err == nil && price > 0 {
				return price, nil
			}
		}
	}

	var result quoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", symbol, &result); err != nil {
		return 0, err
	}

	price, err := strconv.ParseFloat(result.GlobalQuote.Price, 64)
	if err != nil || price <= 0 {
		return 0, fmt.Errorf("%w: no usable price for %s", ErrUnavailable, symbol)
	}

	if c.rdb != nil {
		c.rdb.Set(ctx, cacheKey, result.GlobalQuote.Price, quoteCacheTTL)
	}
	return price, nil
}

// Lookup returns descriptive company data together with the current quote.
func (c *Client) Lookup(ctx context.Context, symbol string) (*SymbolInfo, error) {
	symbol = strings.ToUpper(symbol)

	var overview overviewResponse
	if err := c.get(ctx, "OVERVIEW", symbol, &overview); err != nil {
		return nil, err
	}
	if overview.Name == "" {
		return nil, fmt.Errorf("%w: no company data for %s", ErrUnavailable, symbol)
	}

	var quote quoteResponse
	if err := c.get(ctx, "GLOBAL_QUOTE", symbol, &quote); err != nil {
		return nil, err
	}

	price, _ := strconv.ParseFloat(quote.GlobalQuote.Price, 64)
	prevClose, _ := strconv.ParseFloat(quote.GlobalQuote.PreviousClose, 64)
	marketCap, _ := strconv.ParseFloat(overview.MarketCapitalization, 64)

	description := overview.Description
	if runes := []rune(description); len(runes) > descriptionCap {
		description = string(runes[:descriptionCap]) + "..."
	}

	return &SymbolInfo{
		Symbol:        symbol,
		CompanyName:   overview.Name,
		CurrentPrice:  price,
		PreviousClose: prevClose,
		MarketCap:     marketCap,
		Sector:        overview.Sector,
		Industry:      overview.Industry,
		Description:   description,
	}, nil
}

// History returns the daily close series for a symbol.
func (c *Client) History(ctx context.Context, symbol string) ([]models.StockPrice, error) {
	symbol = strings.ToUpper(symbol)

	var result quoteResponse
	if err := c.get(ctx, "TIME_SERIES_DAILY", symbol, &result); err != nil {
		return nil, err
	}
	if len(result.TimeSeriesDaily) == 0 {
		return nil, fmt.Errorf("%w: no historical data for %s", ErrUnavailable, symbol)
	}

	var bars []models.StockPrice
	for date, day := range result.TimeSeriesDaily {
		closePrice, err := strconv.ParseFloat(day.Close, 64)
		if err != nil {
			continue
		}
		timestamp, err := time.Parse("2006-01-02", date)
		if err != nil {
			continue
		}
		bars = append(bars, models.StockPrice{
			Symbol:    symbol,
			Price:     closePrice,
			Timestamp: timestamp,
		})
	}
	return bars, nil
}
