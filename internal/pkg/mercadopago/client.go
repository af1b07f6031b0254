package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/vivaarte/vivaarte/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.mercadopago.com"

var ErrPaymentNotFound = errors.New("payment not found at gateway")

// Client is a thin wrapper around the Mercado Pago REST API. Outbound
// calls carry the request context plus a client-level timeout and run
// through a circuit breaker so a dead gateway fails fast instead of
// holding webhook requests open.
type Client struct {
	AccessToken string
	APIBaseURL  string

	HTTPClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewClientFromEnv builds a client from MP_ACCESS_TOKEN / MP_API_BASE_URL.
func NewClientFromEnv() *Client {
	return NewClient(
		strings.TrimSpace(env.GetEnv("MP_ACCESS_TOKEN", "")),
		strings.TrimSpace(env.GetEnv("MP_API_BASE_URL", defaultAPIBaseURL)),
	)
}

func NewClient(accessToken, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}
	return &Client{
		AccessToken: accessToken,
		APIBaseURL:  strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "mercadopago",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// CreatePreference registers a checkout preference and returns its id and
// redirect URLs.
func (c *Client) CreatePreference(ctx context.Context, pref PreferenceRequest) (*PreferenceResponse, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, errors.New("MP_ACCESS_TOKEN is not configured")
	}
	if len(pref.Items) == 0 {
		return nil, errors.New("preference requires at least one item")
	}

	body, err := json.Marshal(pref)
	if err != nil {
		return nil, err
	}

	var out PreferenceResponse
	err = c.doJSON(ctx, http.MethodPost, "/checkout/preferences", bytes.NewReader(body), &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("gateway returned preference without id")
	}
	return &out, nil
}

// GetPayment fetches the authoritative payment resource by id.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if strings.TrimSpace(c.AccessToken) == "" {
		return nil, errors.New("MP_ACCESS_TOKEN is not configured")
	}
	id := strings.TrimSpace(paymentID)
	if id == "" {
		return nil, errors.New("payment id is required")
	}

	var out Payment
	if err := c.doJSON(ctx, http.MethodGet, "/v1/payments/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.APIBaseURL+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrPaymentNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("gateway %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("invalid JSON from gateway: %w", err)
		}
		return nil, nil
	})
	return err
}
