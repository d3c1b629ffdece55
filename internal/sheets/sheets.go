// Package sheets mirrors placed orders to a spreadsheet web hook.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/m3rciful/grocerybot/core/logger"
	"github.com/m3rciful/grocerybot/core/telegram/netutil"
	"github.com/m3rciful/grocerybot/internal/orders"
)

const component = "sheets"

const defaultTimeout = 10 * time.Second

// Row is the JSON document posted for every order.
type Row struct {
	OrderID       string `json:"order_id"`
	CreatedAt     string `json:"created_at"`
	UserID        int64  `json:"user_id"`
	Customer      string `json:"customer"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Instructions  string `json:"instructions"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Items         string `json:"items"`
	Subtotal      string `json:"subtotal"`
	DeliveryFee   string `json:"delivery_fee"`
	Total         string `json:"total"`
	Status        string `json:"status"`
}

// NewRow flattens an order into a single spreadsheet row.
func NewRow(o orders.Order) Row {
	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, fmt.Sprintf("%s x%d (%s)", it.Name, it.Quantity, it.Unit))
	}
	return Row{
		OrderID:       o.ID,
		CreatedAt:     o.CreatedAt.UTC().Format(time.RFC3339),
		UserID:        o.UserID,
		Customer:      o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		Instructions:  o.Instructions,
		PaymentMethod: o.PaymentMethod,
		Items:         strings.Join(items, "; "),
		Subtotal:      o.Subtotal.StringFixed(2),
		DeliveryFee:   o.DeliveryFee.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		Status:        string(o.Status),
	}
}

// Client posts rows to the configured URL.
type Client struct {
	url      string
	http     *http.Client
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

// New returns a sink for url. An empty url yields a sink that does nothing.
// timeout bounds each attempt.
func New(url string, client *http.Client, timeout time.Duration) orders.Sink {
	url = strings.TrimSpace(url)
	if url == "" {
		return disabled{}
	}
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{url: url, http: client, timeout: timeout, attempts: 3, backoff: 250 * time.Millisecond}
}

// Persist implements orders.Sink. Timeouts, dial failures and 429/502/503/504
// answers are retried with a linear backoff.
func (c *Client) Persist(ctx context.Context, o orders.Order) error {
	body, err := json.Marshal(NewRow(o))
	if err != nil {
		return fmt.Errorf("sheets: encode order %s: %w", o.ID, err)
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		code, retry, err := c.post(ctx, body)
		if err == nil {
			logger.Debug(ctx, component, "order.persist",
				slog.String("status", "ok"),
				slog.Int("http_status", code),
				slog.Int("attempts", attempt),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)
			return nil
		}
		lastErr = fmt.Errorf("sheets: post order %s: %w", o.ID, err)
		if !retry || attempt == c.attempts {
			break
		}
		logger.Warn(ctx, component, "order.persist",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(time.Duration(attempt) * c.backoff):
		}
	}
	return lastErr
}

// post sends one request and reports the status code and whether a failure
// is worth another attempt.
func (c *Client) post(ctx context.Context, body []byte) (int, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, netutil.ShouldRetry(err), err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, netutil.RetryableStatus(resp.StatusCode), fmt.Errorf("status %s", resp.Status)
	}
	return resp.StatusCode, false, nil
}

type disabled struct{}

func (disabled) Persist(context.Context, orders.Order) error { return nil }
