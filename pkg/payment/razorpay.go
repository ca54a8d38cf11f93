package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to a razorpay-style REST gateway. Calls carry a hard timeout;
// a timed-out intent creation surfaces as an error and is never retried
// in-request — the enclosing order transaction aborts instead.
type Client struct {
	baseURL       string
	keyID         string
	keySecret     string
	webhookSecret string
	http          *http.Client
}

type ClientConfig struct {
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:       cfg.BaseURL,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		http:          &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Name() string { return "razorpay" }

type gatewayOrderResp struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (c *Client) CreateIntent(ctx context.Context, amount int64, currency, receipt string, customer CustomerInfo) (*Intent, error) {
	body := map[string]any{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes": map[string]string{
			"customer_name":  customer.Name,
			"customer_email": customer.Email,
			"customer_phone": customer.Phone,
		},
	}
	raw, err := c.post(ctx, "/v1/orders", body)
	if err != nil {
		return nil, err
	}

	var resp gatewayOrderResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gateway: decode order response: %w", err)
	}
	return &Intent{
		ID:              resp.ID,
		ProviderOrderID: resp.ID,
		Amount:          resp.Amount,
		Currency:        resp.Currency,
		Status:          resp.Status,
		Raw:             string(raw),
	}, nil
}

func (c *Client) VerifyPaymentSignature(providerOrderID, paymentID, signature string) bool {
	return VerifyHMAC(c.keySecret, PaymentMessage(providerOrderID, paymentID), signature)
}

type gatewayRefundResp struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

func (c *Client) InitiateRefund(ctx context.Context, paymentID string, amount int64, reason string) (*RefundResult, error) {
	body := map[string]any{
		"amount": amount,
		"notes":  map[string]string{"reason": reason},
	}
	raw, err := c.post(ctx, "/v1/payments/"+paymentID+"/refund", body)
	if err != nil {
		return nil, err
	}

	var resp gatewayRefundResp
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gateway: decode refund response: %w", err)
	}
	return &RefundResult{ID: resp.ID, PaymentID: resp.PaymentID, Amount: resp.Amount, Status: resp.Status}, nil
}

func (c *Client) VerifyWebhookSignature(payload []byte, signature string) bool {
	return VerifyHMAC(c.webhookSecret, payload, signature)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway: %s: %w", path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("gateway: %s returned %d: %s", path, res.StatusCode, raw)
	}
	return raw, nil
}
