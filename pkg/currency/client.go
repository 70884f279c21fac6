package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultEndpoint = "https://api.apilayer.com/exchangerates_data"

// RateSource looks up how many units of to one unit of from buys.
type RateSource interface {
	Rate(ctx context.Context, from, to string) (decimal.Decimal, error)
}

// {"success":true,"base":"USD","date":"2024-03-10","rates":{"RUB":91.5}}
type latestResponse struct {
	Success bool                       `json:"success"`
	Base    string                     `json:"base"`
	Date    string                     `json:"date"`
	Rates   map[string]decimal.Decimal `json:"rates"`
	Error   *struct {
		Code    interface{} `json:"code"`
		Type    string      `json:"type"`
		Message string      `json:"message"`
		Info    string      `json:"info"`
	} `json:"error"`
}

// APIClient queries the exchangerates_data "latest" endpoint.
type APIClient struct {
	Endpoint   string
	APIKey     string
	HTTPClient *http.Client
}

func NewAPIClient(endpoint, apiKey string) *APIClient {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	return &APIClient{
		Endpoint:   strings.TrimSuffix(endpoint, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *APIClient) Rate(ctx context.Context, from, to string) (decimal.Decimal, error) {
	if c.APIKey == "" {
		return decimal.Zero, fmt.Errorf("exchange rate api key is not set")
	}

	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	q := url.Values{}
	q.Set("symbols", to)
	q.Set("base", from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Endpoint+"/latest?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("apikey", c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	rs, err := client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error getting currency conversion: %w", err)
	}
	defer rs.Body.Close()

	if rs.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("currency conversion request failed: %s", rs.Status)
	}

	var body latestResponse
	if err := json.NewDecoder(rs.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("error parsing currency conversion response: %w", err)
	}

	if !body.Success {
		if body.Error != nil {
			msg := body.Error.Message
			if msg == "" {
				msg = body.Error.Info
			}
			return decimal.Zero, fmt.Errorf("currency conversion api error: %s", msg)
		}
		return decimal.Zero, fmt.Errorf("currency conversion api error")
	}

	rate, ok := body.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("no %s rate in response for base %s", to, from)
	}

	return rate, nil
}
