package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"staybook/internal/app/policies"
	"staybook/internal/infra/obs"
)

const sessionsPath = "/v1/checkout/sessions"

// Client creates hosted checkout sessions through the Stripe-compatible
// HTTP API. Only the session-creation contract is consumed here; webhooks
// and session internals belong to the gateway.
type Client struct {
	HTTPClient *http.Client
	APIBase    string
	SecretKey  string
	Logger     *slog.Logger
}

func NewClient(apiBase, secretKey string, logger *slog.Logger) *Client {
	return &Client{
		HTTPClient: &http.Client{},
		APIBase:    strings.TrimRight(apiBase, "/"),
		SecretKey:  secretKey,
		Logger:     logger,
	}
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession posts a form-encoded checkout-session request. Context
// deadline and transport errors map to ErrGatewayUnavailable, 4xx responses
// to ErrSessionRejected.
func (c *Client) CreateSession(ctx context.Context, req policies.SessionRequest) (policies.Session, error) {
	var zero policies.Session
	if req.AmountCents <= 0 {
		return zero, fmt.Errorf("%w: amount must be positive", policies.ErrSessionRejected)
	}
	if len(req.Currency) != 3 {
		return zero, fmt.Errorf("%w: invalid currency %q", policies.ErrSessionRejected, req.Currency)
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", strings.ToLower(req.Currency))
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.AmountCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIBase+sessionsPath, strings.NewReader(form.Encode()))
	if err != nil {
		return zero, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if rid := obs.RequestIDFromContext(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}
	// One session per reservation, even across retries.
	if key := req.Metadata["reservation_id"]; key != "" {
		httpReq.Header.Set("Idempotency-Key", key)
	}

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", policies.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("%w: reading response: %v", policies.ErrGatewayUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		var session sessionResponse
		if err := json.Unmarshal(body, &session); err != nil {
			return zero, fmt.Errorf("%w: malformed session response: %v", policies.ErrGatewayUnavailable, err)
		}
		if session.URL == "" {
			return zero, fmt.Errorf("%w: session response missing url", policies.ErrGatewayUnavailable)
		}
		return policies.Session{ID: session.ID, URL: session.URL}, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return zero, fmt.Errorf("%w: %s", policies.ErrSessionRejected, gatewayMessage(body, resp.StatusCode))
	default:
		return zero, fmt.Errorf("%w: %s", policies.ErrGatewayUnavailable, gatewayMessage(body, resp.StatusCode))
	}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func gatewayMessage(body []byte, status int) string {
	var gw errorResponse
	if err := json.Unmarshal(body, &gw); err == nil && gw.Error.Message != "" {
		return gw.Error.Message
	}
	return fmt.Sprintf("gateway returned status %d", status)
}

var _ policies.PaymentSessionFactory = (*Client)(nil)
