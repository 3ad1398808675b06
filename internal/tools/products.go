package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

const (
	searchLimitDefault = 3
	searchLimitMax     = 3
)

// productSummary is the reduced listing view of a product.
type productSummary struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ProductNumber string   `json:"productNumber,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	Stock         int      `json:"stock"`
	Available     bool     `json:"available"`
	Rating        *float64 `json:"rating,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
	Options       []string `json:"options,omitempty"`
}

// listingPayload is the shared shape of paginated product listings.
type listingPayload struct {
	Total       int              `json:"total"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	HasNextPage bool             `json:"hasNextPage"`
	Products    []productSummary `json:"products"`
}

func summarizeProduct(p store.Product) productSummary {
	s := productSummary{
		ID:            p.ID,
		Name:          p.DisplayName(),
		ProductNumber: p.ProductNumber,
		Stock:         p.AvailableStock,
		Available:     p.Available,
		Rating:        p.RatingAverage,
		Options:       optionLabels(p.Options),
	}
	if p.CalculatedPrice != nil {
		price := p.CalculatedPrice.UnitPrice
		s.Price = &price
	}
	if p.Cover != nil && p.Cover.Media != nil {
		s.ImageURL = p.Cover.Media.URL
	}
	return s
}

func optionLabels(options []store.PropertyOption) []string {
	labels := make([]string, 0, len(options))
	for _, o := range options {
		name := pick(o.Translated.Name, o.Name)
		if o.Group != nil {
			if group := pick(o.Group.Translated.Name, o.Group.Name); group != "" {
				labels = append(labels, group+": "+name)
				continue
			}
		}
		labels = append(labels, name)
	}
	return labels
}

func listingAssociations() map[string]store.Criteria {
	return map[string]store.Criteria{
		"cover": {},
		"options": {
			Associations: map[string]store.Criteria{"group": {}},
		},
	}
}

// SearchProductsTool searches the catalog by free-text term.
type SearchProductsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewSearchProductsTool(deps Deps) *SearchProductsTool {
	return &SearchProductsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "search_products",
			ToolDescription: "Search the shop catalog by keyword, with optional price bounds and sorting",
			ToolSchema: schemaWith(map[string]any{
				"term": map[string]any{
					"type":        "string",
					"description": "Search term",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Results per page (default %d, max %d)", searchLimitDefault, searchLimitMax),
					"minimum":     1,
					"maximum":     searchLimitMax,
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
					"minimum":     1,
				},
				"min_price": map[string]any{
					"type":        "number",
					"description": "Optional lower price bound",
				},
				"max_price": map[string]any{
					"type":        "number",
					"description": "Optional upper price bound",
				},
				"sort": map[string]any{
					"type":        "string",
					"description": "Sort order",
					"enum":        []string{"price-asc", "price-desc", "name-asc", "name-desc", "rating", "rating-desc", "rating-asc"},
				},
			}, "term"),
		},
		deps: deps,
	}
}

func (t *SearchProductsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		pageArgs
		Term     string   `json:"term"`
		Sort     string   `json:"sort"`
		MinPrice *float64 `json:"min_price"`
		MaxPrice *float64 `json:"max_price"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	if in.Term == "" {
		return mcpserver.ErrorResult(errors.New("term is required")), nil
	}

	spec, err := mapSort(in.Sort)
	if err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	limit, page := in.normalize(searchLimitDefault, searchLimitMax)

	criteria := store.Criteria{
		Term:           in.Term,
		Page:           page,
		Limit:          limit,
		Sort:           spec.fields,
		Associations:   listingAssociations(),
		TotalCountMode: store.ExactTotalCount,
	}
	if filter, ok := priceRangeFilter(in.MinPrice, in.MaxPrice); ok {
		criteria.Filter = append(criteria.Filter, filter)
	}

	client := t.deps.client(in.credentialArgs)
	var result store.SearchResult[store.Product]
	if err := client.Post(ctx, "search", criteria, &result); err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("product search failed: %w", err)), nil
	}

	if result.Total == 0 {
		return mcpserver.TextResult(fmt.Sprintf("No products found for %q.", in.Term)), nil
	}

	t.deps.backfillParentNames(ctx, client, result.Elements)
	if spec.byRating {
		sortByRating(result.Elements, spec.ascending)
	}

	payload := listingPayload{
		Total:       result.Total,
		Page:        page,
		Limit:       limit,
		HasNextPage: hasNextPage(result.Total, page, limit),
		Products:    make([]productSummary, 0, len(result.Elements)),
	}
	for _, p := range result.Elements {
		payload.Products = append(payload.Products, summarizeProduct(p))
	}
	return mcpserver.SuccessResult(payload), nil
}

// productDetail is the reduced detail view of a single product.
type productDetail struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	ProductNumber  string   `json:"productNumber,omitempty"`
	Description    string   `json:"description,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	PriceFormatted string   `json:"priceFormatted,omitempty"`
	Stock          int      `json:"stock"`
	Available      bool     `json:"available"`
	Rating         *float64 `json:"rating,omitempty"`
	Images         []string `json:"images,omitempty"`
	Options        []string `json:"options,omitempty"`
	Manufacturer   string   `json:"manufacturer,omitempty"`
	Categories     []string `json:"categories,omitempty"`
}

// ProductDetailsTool fetches one product by SKU or UUID.
type ProductDetailsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewProductDetailsTool(deps Deps) *ProductDetailsTool {
	return &ProductDetailsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "get_product_details",
			ToolDescription: "Fetch details for one product by product number (SKU) or UUID",
			ToolSchema: schemaWith(map[string]any{
				"product_id": map[string]any{
					"type":        "string",
					"description": "Product UUID or product number (SKU)",
				},
			}, "product_id"),
		},
		deps: deps,
	}
}

func detailAssociations() map[string]store.Criteria {
	return map[string]store.Criteria{
		"cover": {},
		"media": {
			Associations: map[string]store.Criteria{"media": {}},
		},
		"options": {
			Associations: map[string]store.Criteria{"group": {}},
		},
		"manufacturer": {},
		"categories":   {},
	}
}

func (t *ProductDetailsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		ProductID string `json:"product_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	if in.ProductID == "" {
		return mcpserver.ErrorResult(errors.New("product_id is required")), nil
	}

	client := t.deps.client(in.credentialArgs)
	id, err := client.ResolveProductID(ctx, in.ProductID)
	if errors.Is(err, store.ErrProductNotFound) {
		return mcpserver.TextResult(fmt.Sprintf("Product %q not found.", in.ProductID)), nil
	}

	product, err := t.fetchProduct(ctx, client, id)
	if err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("product lookup failed: %w", err)), nil
	}
	if product == nil {
		return mcpserver.TextResult(fmt.Sprintf("Product %q not found.", in.ProductID)), nil
	}

	detail := t.buildDetail(ctx, client, *product)

	symbol := t.deps.currencySymbol(ctx, client)
	if detail.Price != nil && symbol != "" {
		detail.PriceFormatted = formatPrice(*detail.Price, symbol)
	}

	return mcpserver.SuccessResult(detail), nil
}

func (t *ProductDetailsTool) fetchProduct(ctx context.Context, client *store.Client, id string) (*store.Product, error) {
	criteria := store.Criteria{
		IDs:          []string{id},
		Associations: detailAssociations(),
	}
	var result store.SearchResult[store.Product]
	if err := client.Post(ctx, "product", criteria, &result); err != nil {
		return nil, err
	}
	if len(result.Elements) == 0 {
		return nil, nil
	}
	return &result.Elements[0], nil
}

// buildDetail reshapes a product, falling back to the parent product for
// each display field a variant leaves empty. The parent is fetched at most
// once, best effort.
func (t *ProductDetailsTool) buildDetail(ctx context.Context, client *store.Client, p store.Product) productDetail {
	detail := productDetail{
		ID:            p.ID,
		Name:          p.DisplayName(),
		ProductNumber: p.ProductNumber,
		Description:   pick(p.Translated.Description, p.Description),
		Stock:         p.AvailableStock,
		Available:     p.Available,
		Rating:        p.RatingAverage,
		Images:        mediaURLs(p),
		Options:       optionLabels(p.Options),
		Manufacturer:  manufacturerName(p.Manufacturer),
		Categories:    categoryNames(p.Categories),
	}
	if p.CalculatedPrice != nil {
		price := p.CalculatedPrice.UnitPrice
		detail.Price = &price
	}

	needsParent := p.ParentID != "" &&
		(detail.Name == "" || detail.Description == "" || len(detail.Images) == 0 ||
			detail.Manufacturer == "" || len(detail.Categories) == 0)
	if needsParent {
		parent, err := t.fetchProduct(ctx, client, p.ParentID)
		if err != nil {
			t.deps.logger.Warn("parent product fetch failed", "parentId", p.ParentID, "error", err)
		} else if parent != nil {
			if detail.Name == "" {
				detail.Name = parent.DisplayName()
			}
			if detail.Description == "" {
				detail.Description = pick(parent.Translated.Description, parent.Description)
			}
			if len(detail.Images) == 0 {
				detail.Images = mediaURLs(*parent)
			}
			if detail.Manufacturer == "" {
				detail.Manufacturer = manufacturerName(parent.Manufacturer)
			}
			if len(detail.Categories) == 0 {
				detail.Categories = categoryNames(parent.Categories)
			}
		}
	}

	detail.Description = stripHTML(detail.Description)
	return detail
}

func mediaURLs(p store.Product) []string {
	var urls []string
	if p.Cover != nil && p.Cover.Media != nil && p.Cover.Media.URL != "" {
		urls = append(urls, p.Cover.Media.URL)
	}
	for _, m := range p.Media {
		if m.Media != nil && m.Media.URL != "" && (len(urls) == 0 || m.Media.URL != urls[0]) {
			urls = append(urls, m.Media.URL)
		}
	}
	return urls
}

func manufacturerName(m *store.Manufacturer) string {
	if m == nil {
		return ""
	}
	return pick(m.Translated.Name, m.Name)
}

func categoryNames(categories []store.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		if name := c.DisplayName(); name != "" {
			names = append(names, name)
		}
	}
	return names
}
