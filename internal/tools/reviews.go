package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/RobinCoderZhao/shopware-mcp/internal/store"
	"github.com/RobinCoderZhao/shopware-mcp/pkg/mcpserver"
)

const (
	reviewLimitDefault = 3
	reviewLimitMax     = 10
)

type reviewSummary struct {
	Title     string  `json:"title,omitempty"`
	Content   string  `json:"content"`
	Points    float64 `json:"points"`
	Author    string  `json:"author,omitempty"`
	CreatedAt string  `json:"createdAt,omitempty"`
}

// ProductReviewsTool lists customer reviews for a product. Variants rarely
// carry reviews of their own, so an empty result falls back to the parent
// product's reviews.
type ProductReviewsTool struct {
	mcpserver.BaseTool
	deps Deps
}

func NewProductReviewsTool(deps Deps) *ProductReviewsTool {
	return &ProductReviewsTool{
		BaseTool: mcpserver.BaseTool{
			ToolName:        "get_product_reviews",
			ToolDescription: "List customer reviews for a product (by product number or UUID)",
			ToolSchema: schemaWith(map[string]any{
				"product_id": map[string]any{
					"type":        "string",
					"description": "Product UUID or product number (SKU)",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": fmt.Sprintf("Results per page (default %d, max %d)", reviewLimitDefault, reviewLimitMax),
					"minimum":     1,
					"maximum":     reviewLimitMax,
				},
				"page": map[string]any{
					"type":        "integer",
					"description": "Page number, starting at 1",
					"minimum":     1,
				},
			}, "product_id"),
		},
		deps: deps,
	}
}

func (t *ProductReviewsTool) Execute(ctx context.Context, args map[string]any) (*mcpserver.ToolCallResult, error) {
	var in struct {
		credentialArgs
		pageArgs
		ProductID string `json:"product_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return mcpserver.ErrorResult(err), nil
	}
	if in.ProductID == "" {
		return mcpserver.ErrorResult(errors.New("product_id is required")), nil
	}
	limit, page := in.normalize(reviewLimitDefault, reviewLimitMax)

	client := t.deps.client(in.credentialArgs)
	id, err := client.ResolveProductID(ctx, in.ProductID)
	if errors.Is(err, store.ErrProductNotFound) {
		return mcpserver.TextResult(fmt.Sprintf("Product %q not found.", in.ProductID)), nil
	}

	result, err := t.fetchReviews(ctx, client, id, page, limit)
	if err != nil {
		return mcpserver.ErrorResult(fmt.Errorf("review listing failed: %w", err)), nil
	}

	if result.Total == 0 {
		if parentResult := t.parentReviews(ctx, client, id, page, limit); parentResult != nil {
			result = *parentResult
		}
	}

	if result.Total == 0 {
		return mcpserver.TextResult("No reviews found for this product."), nil
	}

	payload := struct {
		Total       int             `json:"total"`
		Page        int             `json:"page"`
		Limit       int             `json:"limit"`
		HasNextPage bool            `json:"hasNextPage"`
		Reviews     []reviewSummary `json:"reviews"`
	}{
		Total:       result.Total,
		Page:        page,
		Limit:       limit,
		HasNextPage: hasNextPage(result.Total, page, limit),
		Reviews:     make([]reviewSummary, 0, len(result.Elements)),
	}
	for _, r := range result.Elements {
		payload.Reviews = append(payload.Reviews, reviewSummary{
			Title:     r.Title,
			Content:   r.Content,
			Points:    r.Points,
			Author:    r.ExternalUser,
			CreatedAt: r.CreatedAt,
		})
	}
	return mcpserver.SuccessResult(payload), nil
}

func (t *ProductReviewsTool) fetchReviews(ctx context.Context, client *store.Client, productID string, page, limit int) (store.SearchResult[store.Review], error) {
	criteria := store.Criteria{
		Page:           page,
		Limit:          limit,
		Sort:           []store.SortField{{Field: "createdAt", Order: store.SortDescending}},
		TotalCountMode: store.ExactTotalCount,
	}
	var result store.SearchResult[store.Review]
	err := client.Post(ctx, "product/"+productID+"/reviews", criteria, &result)
	return result, err
}

// parentReviews tries the parent product's reviews when the variant has
// none. Best effort: any failure is logged and treated as "no reviews".
func (t *ProductReviewsTool) parentReviews(ctx context.Context, client *store.Client, productID string, page, limit int) *store.SearchResult[store.Review] {
	var product store.SearchResult[store.Product]
	if err := client.Post(ctx, "product", store.Criteria{IDs: []string{productID}}, &product); err != nil {
		t.deps.logger.Warn("review parent lookup failed", "productId", productID, "error", err)
		return nil
	}
	if len(product.Elements) == 0 || product.Elements[0].ParentID == "" {
		return nil
	}

	result, err := t.fetchReviews(ctx, client, product.Elements[0].ParentID, page, limit)
	if err != nil {
		t.deps.logger.Warn("parent review fetch failed", "parentId", product.Elements[0].ParentID, "error", err)
		return nil
	}
	return &result
}
