package payment_gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/contracts"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPayPalTestServer(t *testing.T, tokenCalls *int32, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)
		w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	})
	for path, handler := range routes {
		mux.HandleFunc(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newPayPalTestService(baseURL string) contracts.PaymentGatewayService {
	cfg := &config.InternalConfig{PaymentGateway: config.AppPaymentGateway{
		BaseUrl:                 baseURL,
		ClientID:                "client",
		ClientSecret:            "secret",
		RequestTimeoutInSeconds: 5,
	}}
	return NewPayPalService(cfg, zap.NewNop())
}

func TestPayPalService_CreateOrder(t *testing.T) {
	var tokenCalls int32
	server := newPayPalTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/v2/checkout/orders": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("PayPal-Request-Id"))

			var body paypalCreateOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "CAPTURE", body.Intent)
			require.Len(t, body.PurchaseUnits, 1)
			assert.Equal(t, "appt-1", body.PurchaseUnits[0].ReferenceID)
			assert.Equal(t, "50.00", body.PurchaseUnits[0].Amount.Value)
			assert.Equal(t, "USD", body.PurchaseUnits[0].Amount.CurrencyCode)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"ORDER-1","status":"CREATED","links":[{"href":"https://self","rel":"self"},{"href":"https://approve","rel":"approve"}]}`))
		},
	})
	service := newPayPalTestService(server.URL)

	order, err := service.CreateOrder(context.Background(), "appt-1", 50, "USD")
	require.NoError(t, err)
	assert.Equal(t, "ORDER-1", order.OrderID)
	assert.Equal(t, "https://approve", order.ApprovalURL)

	_, err = service.CreateOrder(context.Background(), "appt-1", 50, "USD")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenCalls), "token should be cached")
}

func TestPayPalService_CaptureOrder(t *testing.T) {
	t.Run("completed capture", func(t *testing.T) {
		var tokenCalls int32
		server := newPayPalTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
			"/v2/checkout/orders/ORDER-1/capture": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{
					"id":"ORDER-1","status":"COMPLETED",
					"payer":{"payer_id":"PAYER-9"},
					"payment_source":{"paypal":{}},
					"purchase_units":[{"reference_id":"appt-1","payee":{"merchant_id":"M-1"},
						"payments":{"captures":[{"id":"CAP-1","status":"COMPLETED","create_time":"2026-01-01T10:00:00Z"}]}}]
				}`))
			},
		})

		capture, err := newPayPalTestService(server.URL).CaptureOrder(context.Background(), "ORDER-1")
		require.NoError(t, err)
		assert.Equal(t, "CAP-1", capture.CaptureID)
		assert.Equal(t, "PAYER-9", capture.PayerID)
		assert.Equal(t, "M-1", capture.MerchantID)
		assert.Equal(t, "paypal", capture.PaymentMethod)
		assert.Equal(t, "COMPLETED", capture.ProcessorResponse)
		assert.NotEmpty(t, capture.Raw)
	})

	t.Run("declined capture", func(t *testing.T) {
		var tokenCalls int32
		server := newPayPalTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
			"/v2/checkout/orders/ORDER-2/capture": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"ORDER-2","status":"COMPLETED","purchase_units":[{"payments":{"captures":[{"id":"CAP-2","status":"DECLINED","status_details":{"reason":"DECLINED_BY_RISK_FRAUD_FILTERS"}}]}}]}`))
			},
		})

		_, err := newPayPalTestService(server.URL).CaptureOrder(context.Background(), "ORDER-2")
		var providerErr *contracts.ProviderError
		require.True(t, errors.As(err, &providerErr))
		assert.Equal(t, "CAPTURE_DECLINED", providerErr.Name)
		assert.Equal(t, "DECLINED_BY_RISK_FRAUD_FILTERS", providerErr.Message)
	})

	t.Run("provider rejects", func(t *testing.T) {
		var tokenCalls int32
		server := newPayPalTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
			"/v2/checkout/orders/ORDER-3/capture": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed","debug_id":"dbg-1"}`))
			},
		})

		_, err := newPayPalTestService(server.URL).CaptureOrder(context.Background(), "ORDER-3")
		var providerErr *contracts.ProviderError
		require.True(t, errors.As(err, &providerErr))
		assert.Equal(t, http.StatusUnprocessableEntity, providerErr.StatusCode)
		assert.Equal(t, "UNPROCESSABLE_ENTITY", providerErr.Name)
		assert.Equal(t, "dbg-1", providerErr.DebugID)
	})
}

func TestPayPalService_RefundCapture(t *testing.T) {
	var tokenCalls int32
	server := newPayPalTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/v2/payments/captures/CAP-1/refund": func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			var body paypalRefundRequest
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, "75.50", body.Amount.Value)
			assert.Equal(t, "patient cancelled", body.NoteToPayer)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"REF-1","status":"COMPLETED"}`))
		},
	})

	refund, err := newPayPalTestService(server.URL).RefundCapture(context.Background(), "CAP-1", 75.5, "USD", "patient cancelled")
	require.NoError(t, err)
	assert.Equal(t, "REF-1", refund.RefundID)
	assert.Equal(t, "COMPLETED", refund.Status)
}

func TestPayPalService_TokenFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid_client","error_description":"Client Authentication failed"}`))
	}))
	defer server.Close()

	_, err := newPayPalTestService(server.URL).CreateOrder(context.Background(), "appt-1", 10, "USD")
	var providerErr *contracts.ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, "invalid_client", providerErr.Name)
	assert.Equal(t, "Client Authentication failed", providerErr.Message)
}
