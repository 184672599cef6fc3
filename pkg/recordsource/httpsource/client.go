// Package httpsource serves backoffice tables from a REST API.
package httpsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/recliq/go-backoffice/components/backoffice"
)

// Config configures the REST client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// Client talks to the platform's record endpoints.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient builds a client for the records API.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpsource: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Source fetches records of type T from one collection path.
type Source[T any] struct {
	client *Client
	path   string
}

var _ backoffice.Source[backoffice.Payment] = (*Source[backoffice.Payment])(nil)

// NewSource binds a collection path such as "/payments" to the client.
func NewSource[T any](client *Client, path string) *Source[T] {
	return &Source[T]{client: client, path: "/" + strings.TrimLeft(path, "/")}
}

// Fetch GETs the collection with filters as query parameters and decodes a JSON array.
func (s *Source[T]) Fetch(ctx context.Context, filters map[string]string) ([]T, error) {
	params := url.Values{}
	for key, value := range filters {
		params.Set(key, value)
	}
	var out []T
	if err := s.client.get(ctx, s.path, params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sources binds the seven record tables to their collection endpoints.
// Interventions come from log when set.
func Sources(client *Client, log *backoffice.ActionLog) backoffice.Sources {
	src := backoffice.Sources{
		Payments:    NewSource[backoffice.Payment](client, "/payments"),
		Commissions: NewSource[backoffice.Commission](client, "/commissions"),
		Balances:    NewSource[backoffice.Balance](client, "/balances"),
		FraudFlags:  NewSource[backoffice.FraudFlag](client, "/fraud-flags"),
		Referrals:   NewSource[backoffice.Referral](client, "/referrals"),
		Agents:      NewSource[backoffice.AgentPerformance](client, "/agents"),
		Users:       NewSource[backoffice.ActiveUser](client, "/users"),
	}
	if log != nil {
		src.Interventions = log
	}
	return src
}

func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("httpsource: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("httpsource: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("httpsource: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("httpsource: decode response: %w", err)
	}
	return nil
}
