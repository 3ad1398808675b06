// Package store implements a typed client for the Shopware Store API.
//
// The client is deliberately thin: it attaches the sales-channel credential
// headers, joins paths under the /store-api/ prefix and normalizes
// success/error handling. Everything above that (criteria construction,
// response reshaping) belongs to the tool handlers in internal/tools.
//
// A Client is scoped to one set of Credentials and is meant to be built
// fresh per tool invocation; the HTTP transport and rate limiter behind it
// are shared across invocations.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Credentials identify one storefront session on the upstream shop.
// All fields are optional at the type level; operations that act on a
// customer (cart, orders) fail upstream with 403 when the context token
// does not belong to a logged-in customer.
type Credentials struct {
	AccessKey    string
	ContextToken string
	LanguageID   string
	ShopURL      string
}

// HTTPClient is the subset of *http.Client the store client needs.
// It exists so tests can swap in a scripted transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx response from the Store API. The numeric status is
// carried as structured data so callers can match on it (notably 403 for
// "not authenticated") instead of grepping the message text.
type APIError struct {
	Status     int
	StatusText string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("store api error: status %d %s, body: %s", e.Status, e.StatusText, e.Body)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Options carries the process-wide collaborators shared by all clients.
type Options struct {
	HTTPClient HTTPClient
	Limiter    *rate.Limiter
	Logger     *slog.Logger
}

type Client struct {
	creds   Credentials
	http    HTTPClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient builds a client bound to one invocation's credentials.
// Zero-value Options fields fall back to a default transport and logger.
func NewClient(creds Credentials, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	creds.ShopURL = NormalizeShopURL(creds.ShopURL)
	return &Client{
		creds:   creds,
		http:    httpClient,
		limiter: opts.Limiter,
		logger:  logger,
	}
}

// NormalizeShopURL strips trailing slashes so endpoint joining always
// produces exactly one slash at each joint.
func NormalizeShopURL(shopURL string) string {
	return strings.TrimRight(strings.TrimSpace(shopURL), "/")
}

// endpoint joins the shop base URL, the fixed /store-api/ prefix and the
// request path.
func (c *Client) endpoint(path string) string {
	return c.creds.ShopURL + "/store-api/" + strings.TrimLeft(path, "/")
}

// Get issues a GET request and decodes the JSON response into dest.
// A nil dest discards the body.
func (c *Client) Get(ctx context.Context, path string, dest any) error {
	return c.do(ctx, http.MethodGet, path, nil, dest)
}

// Post serializes body as JSON, issues a POST request and decodes the
// response into dest. A nil body sends an empty JSON object, matching what
// the Store API expects on criteria endpoints called without criteria.
func (c *Client) Post(ctx context.Context, path string, body, dest any) error {
	return c.do(ctx, http.MethodPost, path, body, dest)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	var reader io.Reader
	if method == http.MethodPost {
		if body == nil {
			body = struct{}{}
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	// Credential headers are always present, empty when absent. The
	// upstream treats a missing header and an empty one the same way.
	req.Header.Set("sw-access-key", c.creds.AccessKey)
	req.Header.Set("sw-context-token", c.creds.ContextToken)
	req.Header.Set("sw-language-id", c.creds.LanguageID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       string(raw),
		}
	}

	// 204 is a valid empty success (e.g. context mutations).
	if resp.StatusCode == http.StatusNoContent || dest == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
