package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

const (
	categoryLimitDefault = 10
	categoryLimitMax     = 50
)

type categorySummary struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Level      int      `json:"level,omitempty"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
}

// ListCategoriesTool lists the shop's active categories.
type ListCategoriesTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewListCategoriesTool(deps Deps) *ListCategoriesTool {
	return &ListCategoriesTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "list_categories",
			ToolDescription: "List the shop's active product categories",
			ToolSchema: schemaWith(map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Results per page (default %d, max %d)", categoryLimitDefault, categoryLimitMax),
					"minimum":     1,
					"maximum":     categoryLimitMax,
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
					"minimum":     1,
				},
			}),
		},
		deps: deps,
	}
}

func (t *ListCategoriesTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		pageArgs
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	limit, page := in.normalize(categoryLimitDefault, categoryLimitMax)

	criteria := store.Criteria{
		Page:           page,
		Limit:          limit,
		Filter:         []store.Filter{store.EqualsFilter("active", true)},
		Sort:           []store.SortField{{Field: "level", Order: store.SortAscending}, {Field: "name", Order: store.SortAscending}},
		TotalCountMode: store.ExactTotalCount,
	}

	client := t.deps.client(in.credentialArgs)
	var result store.SearchResult[store.Category]
	if err := client.Post(ctx, "category", criteria, &result); err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("category listing failed: %w", err)), nil
	}

	if result.Total == 0 {
		return mcpserver.TextResult("No categories found."), nil
	}

	payload := struct {
		Total       int               `json:"total"`
		Page        int               `json:"page"`
		Limit       int               `json:"limit"`
		HasNextPage bool              `json:"hasNextPage"`
		Categories  []categorySummary `json:"categories"`
	}{
		Total:       result.Total,
		Page:        page,
		Limit:       limit,
		HasNextPage: hasNextPage(result.Total, page, limit),
		Categories:  make([]categorySummary, 0, len(result.Elements)),
	}
	for _, c := range result.Elements {
		payload.Categories = append(payload.Categories, categorySummary{
			ID:         c.ID,
			Name:       c.DisplayName(),
			Level:      c.Level,
			Breadcrumb: c.Breadcrumb,
		})
	}
	return mcpserver.SuccessResult(payload), nil
}

// CategoryProductsTool lists the products of one category.
type CategoryProductsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewCategoryProductsTool(deps Deps) *CategoryProductsTool {
	return &CategoryProductsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "list_category_products",
			ToolDescription: "List products of one category, with optional price bounds and sorting",
			ToolSchema: schemaWith(map[string]any{
				"category_id": map[string]any{
					"type":        "string",
					"description": "Category UUID (from list_categories)",
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
			}, "category_id"),
		},
		deps: deps,
	}
}

func (t *CategoryProductsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		pageArgs
		CategoryID string   `json:"category_id"`
		Sort       string   `json:"sort"`
		MinPrice   *float64 `json:"min_price"`
		MaxPrice   *float64 `json:"max_price"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	if in.CategoryID == "" {
		return mcpserver.ErrorResult(errors.New("category_id is required")), nil
	}

	spec, err := mapSort(in.Sort)
	if err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	limit, page := in.normalize(searchLimitDefault, searchLimitMax)

	criteria := store.Criteria{
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
	if err := client.Post(ctx, "product-listing/"+in.CategoryID, criteria, &result); err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("category product listing failed: %w", err)), nil
	}

	if result.Total == 0 {
		return mcpserver.TextResult("No products found in this category."), nil
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
