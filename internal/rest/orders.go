// Package rest is the thin REST surface the chat core needs: fetching
// the order an offer message points at, so the offer can be rendered
// with its title and price context.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/slvrxyzz/tvoizakaz/internal/auth"
	"github.com/slvrxyzz/tvoizakaz/internal/config"
)

// Order is the backend's order resource, trimmed to what the chat
// views render next to an offer.
type Order struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Price            float64 `json:"price"`
	Currency         string  `json:"currency"`
	Term             int     `json:"term"`
	Status           string  `json:"status"`
	OrderType        string  `json:"order_type"`
	CreatedAt        string  `json:"created_at"`
	CustomerID       int64   `json:"customer_id"`
	ExecutorID       int64   `json:"executor_id"`
	CategoryName     string  `json:"category_name"`
	CustomerName     string  `json:"customer_name"`
	CustomerNickname string  `json:"customer_nickname"`
}

// Client calls the marketplace REST API.
type Client struct {
	baseURL string
	creds   *auth.Source
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(server config.ServerConfig, creds *auth.Source, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(server.APIURL, "/"),
		creds:   creds,
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// GetOrder fetches one order by id.
func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("invalid order id %d", orderID)
	}

	url := fmt.Sprintf("%s/orders/%d", c.baseURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch order %d: %w", orderID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("order fetch failed",
			zap.Int64("order_id", orderID),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("fetch order %d: status %d: %s", orderID, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order %d: %w", orderID, err)
	}
	return &order, nil
}
