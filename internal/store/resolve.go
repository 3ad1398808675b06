package store

import (
	"context"
	"errors"
	"regexp"
)

// ErrProductNotFound is returned when a product reference cannot be
// resolved to a canonical identifier. Callers must treat it as "no such
// product" and must not send the input upstream.
var ErrProductNotFound = errors.New("product not found")

// The two textual UUID forms the upstream accepts as canonical
// identifiers. Anything else is treated as a catalog number (SKU).
// uuid.Parse is not used here on purpose: it also accepts brace and URN
// forms the Store API would reject.
var (
	uuidHyphenated = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	uuidCompact    = regexp.MustCompile(`^(?i)[0-9a-f]{32}$`)
)

// IsCanonicalID reports whether s is already a canonical product
// identifier in either textual UUID form.
func IsCanonicalID(s string) bool {
	return uuidHyphenated.MatchString(s) || uuidCompact.MatchString(s)
}

// ResolveProductID turns a free-form product reference into a canonical
// identifier. Canonical identifiers pass through without a network call;
// anything else is looked up as a catalog number with one exact-match
// search, taking the first hit. A failed lookup is logged and degrades to
// ErrProductNotFound rather than propagating.
func (c *Client) ResolveProductID(ctx context.Context, reference string) (string, error) {
	if IsCanonicalID(reference) {
		return reference, nil
	}

	criteria := Criteria{
		Limit:  1,
		Filter: []Filter{EqualsFilter("productNumber", reference)},
	}
	var result SearchResult[Product]
	if err := c.Post(ctx, "product", criteria, &result); err != nil {
		c.logger.Warn("catalog number lookup failed",
			"productNumber", reference, "error", err)
		return "", ErrProductNotFound
	}
	if len(result.Elements) == 0 {
		return "", ErrProductNotFound
	}
	return result.Elements[0].ID, nil
}
