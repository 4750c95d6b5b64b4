// Package alphavantage provides a client for the Alpha Vantage quote API
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hyuoka/workpal/internal/common"
	"github.com/hyuoka/workpal/internal/interfaces"
	"github.com/hyuoka/workpal/internal/models"
)

const (
	DefaultBaseURL       = "https://www.alphavantage.co"
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 5 // requests per minute (free tier)
	DefaultFallbackDelay = 500 * time.Millisecond
)

// ErrRateLimited is returned when the API signals its request cap via
// the Note/Information response fields instead of an HTTP status.
var ErrRateLimited = errors.New("alphavantage: request cap reached")

// ErrSymbolNotFound is returned when no ticker variant yields a quote.
var ErrSymbolNotFound = errors.New("alphavantage: symbol not found")

// flexFloat64 handles JSON values that may be either a number or a string.
// Percent suffixes ("1.2500%") are stripped before parsing.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if s == "" || s == "N/A" || s == "-" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements the QuoteClient interface
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	logger        *common.Logger
	limiter       *rate.Limiter
	fallbackDelay time.Duration
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit in requests per minute
func WithRateLimit(requestsPerMinute int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithFallbackDelay sets the pause between ticker-variant attempts
func WithFallbackDelay(delay time.Duration) ClientOption {
	return func(c *Client) {
		c.fallbackDelay = delay
	}
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:       rate.NewLimiter(rate.Every(time.Minute/DefaultRateLimit), 1),
		logger:        common.NewSilentLogger(),
		fallbackDelay: DefaultFallbackDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Function   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("alphavantage API error: %s (status: %d, function: %s)", e.Message, e.StatusCode, e.Function)
}

// capFields is decoded from every response body to detect the request
// cap, which the API reports inside a 200 response.
type capFields struct {
	Note        string `json:"Note"`
	Information string `json:"Information"`
}

// get performs a rate-limited GET against /query and decodes the body
// into result after checking for the request-cap fields.
func (c *Client) get(ctx context.Context, function string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("function", function).Msg("Alpha Vantage API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Function:   function,
		}
	}

	var capped capFields
	if err := json.Unmarshal(body, &capped); err == nil {
		if capped.Note != "" || capped.Information != "" {
			c.logger.Warn().Str("function", function).Msg("Alpha Vantage request cap reached")
			return ErrRateLimited
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

var jpTickerPattern = regexp.MustCompile(`^\d{4}$`)

// candidateSymbols expands a bare 4-digit Japanese ticker into the
// exchange-suffixed variants the API actually knows.
func candidateSymbols(symbol string) []string {
	if jpTickerPattern.MatchString(symbol) {
		return []string{symbol, symbol + ".T", symbol + ".TYO"}
	}
	return []string{symbol}
}

// sleep pauses between ticker-variant attempts, honoring ctx cancellation.
func (c *Client) sleep(ctx context.Context) error {
	if c.fallbackDelay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.fallbackDelay):
		return nil
	}
}

// SearchSymbols finds tickers matching the given keywords
func (c *Client) SearchSymbols(ctx context.Context, keywords string) ([]models.SymbolMatch, error) {
	params := url.Values{}
	params.Set("keywords", keywords)

	var resp searchResponse
	if err := c.get(ctx, "SYMBOL_SEARCH", params, &resp); err != nil {
		return nil, err
	}

	matches := make([]models.SymbolMatch, 0, len(resp.BestMatches))
	for _, m := range resp.BestMatches {
		if m.Symbol == "" {
			continue
		}
		matches = append(matches, models.SymbolMatch{
			Symbol:   m.Symbol,
			Name:     m.Name,
			Type:     m.Type,
			Region:   m.Region,
			Currency: m.Currency,
		})
	}
	return matches, nil
}

// searchResponse represents the SYMBOL_SEARCH payload
type searchResponse struct {
	BestMatches []struct {
		Symbol   string `json:"1. symbol"`
		Name     string `json:"2. name"`
		Type     string `json:"3. type"`
		Region   string `json:"4. region"`
		Currency string `json:"8. currency"`
	} `json:"bestMatches"`
}

// GetQuote retrieves the latest quote for a symbol. Bare 4-digit
// tickers fall back to the Tokyo exchange suffixes when the API
// returns an empty quote.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*interfaces.Quote, error) {
	candidates := candidateSymbols(symbol)

	for i, candidate := range candidates {
		if i > 0 {
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
		}

		params := url.Values{}
		params.Set("symbol", candidate)

		var resp quoteResponse
		if err := c.get(ctx, "GLOBAL_QUOTE", params, &resp); err != nil {
			return nil, err
		}

		if resp.GlobalQuote.Symbol == "" {
			c.logger.Debug().Str("symbol", candidate).Msg("Empty quote, trying next variant")
			continue
		}

		return &interfaces.Quote{
			Symbol:        symbol,
			Price:         float64(resp.GlobalQuote.Price),
			PreviousClose: float64(resp.GlobalQuote.PreviousClose),
			Change:        float64(resp.GlobalQuote.Change),
			ChangePercent: float64(resp.GlobalQuote.ChangePercent),
			Volume:        int64(resp.GlobalQuote.Volume),
			TradingDay:    resp.GlobalQuote.TradingDay,
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// quoteResponse represents the GLOBAL_QUOTE payload
type quoteResponse struct {
	GlobalQuote struct {
		Symbol        string      `json:"01. symbol"`
		Price         flexFloat64 `json:"05. price"`
		Volume        flexFloat64 `json:"06. volume"`
		TradingDay    string      `json:"07. latest trading day"`
		PreviousClose flexFloat64 `json:"08. previous close"`
		Change        flexFloat64 `json:"09. change"`
		ChangePercent flexFloat64 `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetDailyHistory retrieves up to limit recent daily closes,
// chronological oldest-first.
func (c *Client) GetDailyHistory(ctx context.Context, symbol string, limit int) ([]float64, error) {
	candidates := candidateSymbols(symbol)

	for i, candidate := range candidates {
		if i > 0 {
			if err := c.sleep(ctx); err != nil {
				return nil, err
			}
		}

		params := url.Values{}
		params.Set("symbol", candidate)
		params.Set("outputsize", "compact")

		var resp dailyResponse
		if err := c.get(ctx, "TIME_SERIES_DAILY", params, &resp); err != nil {
			return nil, err
		}

		if len(resp.Series) == 0 {
			c.logger.Debug().Str("symbol", candidate).Msg("Empty series, trying next variant")
			continue
		}

		dates := make([]string, 0, len(resp.Series))
		for date := range resp.Series {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		if limit > 0 && len(dates) > limit {
			dates = dates[len(dates)-limit:]
		}

		closes := make([]float64, len(dates))
		for i, date := range dates {
			closes[i] = float64(resp.Series[date].Close)
		}
		return closes, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrSymbolNotFound, symbol)
}

// dailyResponse represents the TIME_SERIES_DAILY payload
type dailyResponse struct {
	Series map[string]struct {
		Close flexFloat64 `json:"4. close"`
	} `json:"Time Series (Daily)"`
}
