package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifierAcceptsValidSignature(t *testing.T) {
	v := NewVerifier("test-secret")

	signature := sign("test-secret", "order_123", "pay_456")
	assert.True(t, v.Verify("order_123", "pay_456", signature))
}

func TestVerifierRejectsMutatedSignature(t *testing.T) {
	v := NewVerifier("test-secret")

	signature := sign("test-secret", "order_123", "pay_456")

	// Flip every character one at a time: no mutation may pass
	for i := 0; i < len(signature); i++ {
		mutated := []byte(signature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		assert.False(t, v.Verify("order_123", "pay_456", string(mutated)),
			"mutation at index %d must not verify", i)
	}
}

func TestVerifierRejectsWrongSecret(t *testing.T) {
	v := NewVerifier("test-secret")

	signature := sign("other-secret", "order_123", "pay_456")
	assert.False(t, v.Verify("order_123", "pay_456", signature))
}

func TestClientCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key-id", user)
		require.Equal(t, "key-secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, float64(49900), body["amount"])
		require.Equal(t, "INR", body["currency"])

		json.NewEncoder(w).Encode(Order{
			ID:       "order_test",
			Amount:   49900,
			Currency: "INR",
			Receipt:  body["receipt"].(string),
			Status:   "created",
		})
	}))
	defer srv.Close()

	client := NewClient("key-id", "key-secret", zap.NewNop(), WithBaseURL(srv.URL))

	order, err := client.CreateOrder(context.Background(), 49900, "INR", "RCPT-1")
	require.NoError(t, err)
	assert.Equal(t, "order_test", order.ID)
	assert.Equal(t, int64(49900), order.Amount)
}

func TestClientCreateOrderGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"description":"bad key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("key-id", "key-secret", zap.NewNop(), WithBaseURL(srv.URL))

	_, err := client.CreateOrder(context.Background(), 100, "INR", "RCPT-2")
	assert.Error(t, err)
}

func TestClientCreateOrderMissingKeys(t *testing.T) {
	client := NewClient("", "", zap.NewNop())

	_, err := client.CreateOrder(context.Background(), 100, "INR", "RCPT-3")
	assert.Error(t, err)
}
