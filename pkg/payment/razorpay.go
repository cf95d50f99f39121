package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.razorpay.com"

// Order is a gateway-side payment reservation, correlated to a booking by ID.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway creates orders before the client-side checkout runs.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*Order, error)
}

// Client talks to the Razorpay Orders REST API with basic auth.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	log       *zap.Logger
}

type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

func NewClient(keyID, keySecret string, log *zap.Logger, opts ...ClientOption) *Client {
	c := &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   defaultBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
		log:       log.With(zap.String("client", "razorpay")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*Order, error) {
	if c.keyID == "" || c.keySecret == "" {
		return nil, fmt.Errorf("razorpay keys not configured")
	}

	body, err := json.Marshal(map[string]any{
		"amount":          amountMinorUnits,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		c.log.Error("Order creation rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("create order: gateway returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("gateway returned order without id")
	}

	c.log.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", amountMinorUnits))

	return &order, nil
}

// Verifier checks the signature the checkout flow hands back.
type Verifier struct {
	secret []byte
}

func NewVerifier(keySecret string) *Verifier {
	return &Verifier{secret: []byte(keySecret)}
}

// Verify recomputes HMAC-SHA256 over "orderID|paymentID" and compares in
// constant time. Timing-safe equality here is a correctness requirement.
func (v *Verifier) Verify(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
