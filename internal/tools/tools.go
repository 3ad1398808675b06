// Package tools implements the MCP tool handlers exposed by the adapter.
//
// Every handler is a thin, stateless translation: decode and validate the
// call arguments, issue one or a few Store API requests through
// internal/store, reshape the response into a compact payload. Credentials
// arrive with every invocation and are never retained.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

// DefaultLanguageID is the upstream's system default language, used when
// neither the call arguments nor the configuration provide one.
const DefaultLanguageID = "2fbb5fe2e29a4d70aa5854ce7ce3e20b"

// Config holds the shop defaults every tool invocation falls back to when
// the call arguments leave a credential field empty.
type Config struct {
	ShopURL    string `yaml:"shop_url" env:"SHOPWARE_SHOP_URL"`
	AccessKey  string `yaml:"access_key" env:"SHOPWARE_ACCESS_KEY"`
	LanguageID string `yaml:"language_id" env:"SHOPWARE_LANGUAGE_ID"`
	Timeout    string `yaml:"timeout" env:"SHOPWARE_TIMEOUT"`
	RateLimit  int    `yaml:"rate_limit" env:"SHOPWARE_RATE_LIMIT"` // requests per minute
	Burst      int    `yaml:"burst"`
}

func (c Config) withDefaults() Config {
	if c.LanguageID == "" {
		c.LanguageID = DefaultLanguageID
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 120
	}
	if c.Burst <= 0 {
		c.Burst = 10
	}
	return c
}

// Deps carries the process-wide collaborators shared by all tool handlers:
// the HTTP transport, the upstream rate limiter and the logger. Everything
// request-scoped lives in the per-invocation store.Client.
type Deps struct {
	cfg     Config
	http    store.HTTPClient
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDeps builds the shared dependencies from configuration.
func NewDeps(cfg Config, logger *slog.Logger) Deps {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		logger.Warn("invalid timeout, using 30s", "timeout", cfg.Timeout)
		timeout = 30 * time.Second
	}
	return Deps{
		cfg:     cfg,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RateLimit)/60.0), cfg.Burst),
		logger:  logger,
	}
}

// All returns every tool handler, ready for registration.
func All(d Deps) []mcpserver.ToolHandler {
	return []mcpserver.ToolHandler{
		NewSearchProductsTool(d),
		NewProductDetailsTool(d),
		NewListCategoriesTool(d),
		NewCategoryProductsTool(d),
		NewProductReviewsTool(d),
		NewGetCartTool(d),
		NewAddToCartTool(d),
		NewListOrdersTool(d),
		NewPlaceOrderTool(d),
		NewShippingMethodsTool(d),
		NewPaymentMethodsTool(d),
	}
}

// credentialArgs are the session fields merged into every tool's argument
// schema. Each falls back to the configured default when empty.
type credentialArgs struct {
	AccessKey    string `json:"access_key"`
	ContextToken string `json:"context_token"`
	LanguageID   string `json:"language_id"`
	ShopURL      string `json:"shop_url"`
}

// client builds the invocation-scoped store client from the call's
// credentials merged with the configured defaults.
func (d Deps) client(a credentialArgs) *store.Client {
	creds := store.Credentials{
		AccessKey:    a.AccessKey,
		ContextToken: a.ContextToken,
		LanguageID:   a.LanguageID,
		ShopURL:      a.ShopURL,
	}
	if creds.AccessKey == "" {
		creds.AccessKey = d.cfg.AccessKey
	}
	if creds.LanguageID == "" {
		creds.LanguageID = d.cfg.LanguageID
	}
	if creds.ShopURL == "" {
		creds.ShopURL = d.cfg.ShopURL
	}
	return store.NewClient(creds, store.Options{
		HTTPClient: d.http,
		Limiter:    d.limiter,
		Logger:     d.logger,
	})
}

// decodeArgs round-trips the loosely typed argument map into a typed
// struct so each tool validates against real fields.
func decodeArgs(args map[string]any, out any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// schemaWith merges the operation-specific properties with the shared
// credential properties into one JSON-Schema object.
func schemaWith(props map[string]any, required ...string) map[string]any {
	merged := map[string]any{
		"access_key": map[string]any{
			"type":        "string",
			"description": "Sales channel access key (falls back to server config)",
		},
		"context_token": map[string]any{
			"type":        "string",
			"description": "Session context token identifying the visitor's cart/login state",
		},
		"language_id": map[string]any{
			"type":        "string",
			"description": "Language UUID (falls back to the shop default language)",
		},
		"shop_url": map[string]any{
			"type":        "string",
			"description": "Base shop URL (falls back to server config)",
		},
	}
	for k, v := range props {
		merged[k] = v
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": merged,
		"required":   required,
	}
}

// pageArgs are the shared pagination arguments.
type pageArgs struct {
	Limit int `json:"limit"`
	Page  int `json:"page"`
}

func (p pageArgs) normalize(def, max int) (limit, page int) {
	limit = p.Limit
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	page = p.Page
	if page <= 0 {
		page = 1
	}
	return limit, page
}

func hasNextPage(total, page, limit int) bool {
	return total > page*limit
}

// Caller-facing sort keys and their upstream mapping.
type sortSpec struct {
	fields    []store.SortField
	byRating  bool
	ascending bool
}

func mapSort(key string) (sortSpec, error) {
	switch key {
	case "":
		return sortSpec{}, nil
	case "price-asc":
		return sortSpec{fields: []store.SortField{{Field: "cheapestPrice", Order: store.SortAscending}}}, nil
	case "price-desc":
		return sortSpec{fields: []store.SortField{{Field: "cheapestPrice", Order: store.SortDescending}}}, nil
	case "name-asc":
		return sortSpec{fields: []store.SortField{{Field: "name", Order: store.SortAscending}}}, nil
	case "name-desc":
		return sortSpec{fields: []store.SortField{{Field: "name", Order: store.SortDescending}}}, nil
	case "rating", "rating-desc":
		return sortSpec{
			fields:   []store.SortField{{Field: "ratingAverage", Order: store.SortDescending}},
			byRating: true,
		}, nil
	case "rating-asc":
		return sortSpec{
			fields:    []store.SortField{{Field: "ratingAverage", Order: store.SortAscending}},
			byRating:  true,
			ascending: true,
		}, nil
	default:
		return sortSpec{}, fmt.Errorf("unknown sort key %q", key)
	}
}

// sortByRating re-sorts a fetched page by rating in-process. The upstream
// sorts unrated products unpredictably; here they always go last,
// regardless of direction.
func sortByRating(products []store.Product, ascending bool) {
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i].RatingAverage, products[j].RatingAverage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		if ascending {
			return *a < *b
		}
		return *a > *b
	})
}

// priceRangeFilter builds the optional price filter from the bounds that
// are present. Returns false when neither bound is set.
func priceRangeFilter(minPrice, maxPrice *float64) (store.Filter, bool) {
	if minPrice == nil && maxPrice == nil {
		return store.Filter{}, false
	}
	return store.RangeFilter("price", minPrice, maxPrice), true
}

// stripHTML removes all markup from a description, collapsing whitespace.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var parts []string
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			parts = append(parts, string(z.Text()))
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// pick prefers the translated form of a field over the raw one.
func pick(translated, raw string) string {
	if translated != "" {
		return translated
	}
	return raw
}

// currencySymbol fetches the sales-channel currency symbol. Best effort:
// failures are logged and the summary simply goes without a symbol.
func (d Deps) currencySymbol(ctx context.Context, client *store.Client) string {
	var sc store.SalesChannelContext
	if err := client.Get(ctx, "context", &sc); err != nil {
		d.logger.Warn("currency context fetch failed", "error", err)
		return ""
	}
	if sc.Currency == nil {
		return ""
	}
	return sc.Currency.Symbol
}

func formatPrice(amount float64, symbol string) string {
	if symbol == "" {
		return fmt.Sprintf("%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, symbol)
}

// backfillParentNames resolves display names for variants that carry no
// name of their own by fetching all their parents in one batched call.
// Best effort: on failure the page is returned as fetched.
func (d Deps) backfillParentNames(ctx context.Context, client *store.Client, products []store.Product) {
	parentIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, p := range products {
		if p.DisplayName() == "" && p.ParentID != "" && !seen[p.ParentID] {
			seen[p.ParentID] = true
			parentIDs = append(parentIDs, p.ParentID)
		}
	}
	if len(parentIDs) == 0 {
		return
	}

	var parents store.SearchResult[store.Product]
	if err := client.Post(ctx, "product", store.Criteria{IDs: parentIDs}, &parents); err != nil {
		d.logger.Warn("parent product backfill failed", "parents", len(parentIDs), "error", err)
		return
	}

	names := make(map[string]string, len(parents.Elements))
	for _, parent := range parents.Elements {
		names[parent.ID] = parent.DisplayName()
	}
	for i := range products {
		if products[i].DisplayName() == "" {
			products[i].Name = names[products[i].ParentID]
		}
	}
}

// notLoggedIn is the designated informational (non-error) result for
// operations that need a logged-in customer but hit an upstream 403.
func notLoggedIn(action string) *mcpserver.ToolCallResult {
	return mcpserver.TextResult(fmt.Sprintf(
		"You are not logged in. Please log in to your shop account to %s.", action))
}
