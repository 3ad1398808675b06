package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCategoryID = "44444444-2222-3333-4444-555555555555"

func TestListCategories(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 3,
			"elements": [
				{"id": "c1", "translated": {"name": "Clothing"}, "level": 1},
				{"id": "c2", "translated": {"name": "Shirts"}, "level": 2, "breadcrumb": ["Home", "Clothing", "Shirts"]}
			]
		}`),
	}}
	tool := NewListCategoriesTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	// Only active categories are requested.
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(stub.bodies[0]), &sent))
	filters := sent["filter"].([]any)
	require.Len(t, filters, 1)
	assert.Equal(t, "active", filters[0].(map[string]any)["field"])

	var payload struct {
		Total      int               `json:"total"`
		Categories []categorySummary `json:"categories"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, 3, payload.Total)
	require.Len(t, payload.Categories, 2)
	assert.Equal(t, "Clothing", payload.Categories[0].Name)
	assert.Equal(t, []string{"Home", "Clothing", "Shirts"}, payload.Categories[1].Breadcrumb)
}

func TestListCategoryProducts_UsesListingRoute(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 7,
			"elements": [{"id": "p1", "translated": {"name": "Blue Shirt"}}]
		}`),
	}}
	tool := NewCategoryProductsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{
		"category_id": testCategoryID,
		"page":        1,
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, stub.requests, 1)
	assert.Contains(t, stub.requests[0].URL.Path, "/store-api/product-listing/"+testCategoryID)

	var payload listingPayload
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, 7, payload.Total)
	assert.True(t, payload.HasNextPage, "total=7, page=1, limit=3")
}

func TestListCategoryProducts_MissingCategory(t *testing.T) {
	tool := NewCategoryProductsTool(testDeps(&scriptedHTTP{}))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
