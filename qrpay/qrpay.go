// Package qrpay is a minimal client for the QR bank-transfer payment
// gateway. The gateway owns the money movement; this client only
// creates payment intents and asks after their status.
package qrpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether the gateway will never change this status
// again, which is what stops the polling watcher.
func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusExpired || s == StatusCancelled
}

// Payment is the gateway's view of a payment intent.
type Payment struct {
	ID        string    `json:"id"`
	Status    Status    `json:"status"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	QRCode    string    `json:"qr_code"`
	Reference string    `json:"reference"`
	Message   string    `json:"message,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PaymentRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	AccountNo string `json:"account_no"`
	Reference string `json:"reference"`
}

// Error carries the gateway's own message when it provides one, so
// callers can surface it to users verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("gateway: unexpected status %d", e.StatusCode)
}

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("calling gateway: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&e)
		return &Error{StatusCode: res.StatusCode, Message: e.Message}
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding gateway response: %w", err)
		}
	}

	return nil
}

func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodPost, "/v1/payments", req, &p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (c *Client) GetPayment(ctx context.Context, id string) (Payment, error) {
	var p Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &p); err != nil {
		return Payment{}, err
	}
	return p, nil
}

func (c *Client) CancelPayment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/payments/"+id, nil, nil)
}
