package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	quoteapp "staybook/internal/app/handlers/quote"
	"staybook/internal/app/policies"
	"staybook/internal/domain/property"
	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/storage/memory"
)

type stubPayments struct {
	err error
}

func (s stubPayments) CreateSession(ctx context.Context, req policies.SessionRequest) (policies.Session, error) {
	if s.err != nil {
		return policies.Session{}, s.err
	}
	return policies.Session{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}, nil
}

type testServer struct {
	handler  http.Handler
	payments *stubPayments
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	properties := memory.NewPropertyRepository()
	properties.Add(&property.Property{
		ID:                "prop-1",
		Slug:              "villa-x",
		Name:              "Villa X",
		Currency:          "EUR",
		NightlyPriceCents: 10000,
	})
	reservations := memory.NewReservationRepository()
	events := memory.NewOutbox()
	payments := &stubPayments{}
	factory := memory.Factory{
		PropertiesRepo:   properties,
		ReservationsRepo: reservations,
		OutboxStore:      events,
	}

	srv := NewServer(
		config.Config{Env: "test", HTTPAddr: ":0"},
		obs.Middleware{},
		obs.HealthHandlers{},
		Handlers{
			Availability: AvailabilityHandler{Query: &availabilityapp.GetAvailabilityHandler{
				Properties:   properties,
				Reservations: reservations,
			}},
			Quote: QuoteHandler{Query: &quoteapp.GetQuoteHandler{Properties: properties}},
			Checkout: BookingHandler{Commands: &bookingapp.CreateBookingHandler{
				UoWFactory:     factory,
				Properties:     properties,
				Payments:       payments,
				BaseURL:        "https://stay.example",
				PaymentTimeout: time.Second,
			}},
			Payments: PaymentsHandler{
				Commands:      &bookingapp.ConfirmPaymentHandler{UoWFactory: factory},
				WebhookSecret: "whsec_test",
			},
		},
	)
	return &testServer{handler: srv.Handler, payments: payments}
}

func (ts *testServer) do(t *testing.T, method, target string, body any, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func checkoutBody(checkIn, checkOut string) map[string]any {
	return map[string]any{
		"property_slug": "villa-x",
		"checkin":       checkIn,
		"checkout":      checkOut,
		"guests":        2,
		"email":         "guest@example.com",
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	rec, _ := ts.do(t, http.MethodGet, "/livez", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = ts.do(t, http.MethodGet, "/readyz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	reservationID := body["reservation_id"].(string)

	rec, body = ts.do(t, http.MethodGet, "/availability?property_slug=villa-x&from=2024-06-01&to=2024-06-30", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	occupied := body["occupied"].([]any)
	require.Len(t, occupied, 1)
	entry := occupied[0].(map[string]any)
	assert.Equal(t, reservationID, entry["id"])
	assert.Equal(t, "2024-06-01", entry["checkin"])
	assert.Equal(t, "2024-06-04", entry["checkout"])
	assert.Equal(t, "pending", entry["status"])
}

func TestAvailabilityEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing range", "/availability?property_slug=villa-x", http.StatusBadRequest},
		{"malformed date", "/availability?property_slug=villa-x&from=June-1&to=2024-06-30", http.StatusBadRequest},
		{"reversed range", "/availability?property_slug=villa-x&from=2024-06-30&to=2024-06-01", http.StatusBadRequest},
		{"unknown property", "/availability?property_slug=no-such&from=2024-06-01&to=2024-06-30", http.StatusNotFound},
		{"no property reference", "/availability?from=2024-06-01&to=2024-06-30", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := ts.do(t, http.MethodGet, tt.target, nil, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, false, body["ok"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestQuoteEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/quote", map[string]any{
		"property_slug": "villa-x",
		"checkin":       "2024-06-01",
		"checkout":      "2024-06-04",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, float64(3), body["nights"])
	assert.Equal(t, float64(10000), body["price_per_night_cents"])
	assert.Equal(t, float64(30000), body["total_cents"])
	assert.Equal(t, "300.00 EUR", body["total_formatted"])
	assert.Equal(t, "EUR", body["currency"])
}

func TestQuoteEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/quote", map[string]any{
		"property_slug": "villa-x",
		"checkin":       "2024-06-04",
		"checkout":      "2024-06-04",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
}

func TestCheckoutEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.NotEmpty(t, body["reservation_id"])
	assert.Equal(t, "https://pay.example/cs_test_1", body["checkout_url"])
	assert.Equal(t, float64(30000), body["amount_cents"])
	assert.Equal(t, "EUR", body["currency"])
}

func TestCheckoutEndpointConflict(t *testing.T) {
	ts := newTestServer(t)

	rec, _ := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-03", "2024-06-06"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.NotEmpty(t, body["error"])
}

func TestCheckoutEndpointValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing email", func(b map[string]any) { delete(b, "email") }},
		{"malformed email", func(b map[string]any) { b["email"] = "not-an-email" }},
		{"same day stay", func(b map[string]any) { b["checkout"] = b["checkin"] }},
		{"malformed checkin", func(b map[string]any) { b["checkin"] = "June 1st" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := checkoutBody("2024-06-01", "2024-06-04")
			tt.mutate(body)
			rec, decoded := ts.do(t, http.MethodPost, "/checkout", body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, decoded["ok"])
		})
	}
}

func TestCheckoutEndpointGatewayFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.payments.err = fmt.Errorf("%w: boom", policies.ErrGatewayUnavailable)

	rec, body := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["ok"])

	// The compensating delete freed the dates.
	ts.payments.err = nil
	rec, _ = ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPaymentsConfirmEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/checkout", checkoutBody("2024-06-01", "2024-06-04"), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	reservationID := body["reservation_id"].(string)

	confirm := map[string]any{"reservation_id": reservationID, "session_id": "cs_test_1"}
	secret := map[string]string{"X-Webhook-Secret": "whsec_test"}

	rec, body = ts.do(t, http.MethodPost, "/payments/confirm", confirm, secret)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "paid", body["status"])

	// Idempotent re-delivery.
	rec, body = ts.do(t, http.MethodPost, "/payments/confirm", confirm, secret)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "paid", body["status"])
}

func TestPaymentsConfirmEndpointSecret(t *testing.T) {
	ts := newTestServer(t)
	confirm := map[string]any{"reservation_id": "res-1"}

	rec, body := ts.do(t, http.MethodPost, "/payments/confirm", confirm, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, false, body["ok"])

	rec, body = ts.do(t, http.MethodPost, "/payments/confirm", confirm, map[string]string{"X-Webhook-Secret": "wrong"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, false, body["ok"])
}
