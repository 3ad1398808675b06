package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const variantParentID = "11111111-2222-3333-4444-555555555555"

func TestSearchProducts_VariantNameBackfill(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 2,
			"elements": [
				{"id": "p1", "productNumber": "SW-1", "translated": {"name": "Red Cap"}},
				{"id": "p2", "productNumber": "SW-2.1", "parentId": "`+variantParentID+`"}
			]
		}`),
		jsonResponse(http.StatusOK, `{
			"total": 1,
			"elements": [{"id": "`+variantParentID+`", "translated": {"name": "Blue Shirt"}}]
		}`),
	}}
	tool := NewSearchProductsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{"term": "shirt"})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var payload listingPayload
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	assert.Equal(t, 2, payload.Total)
	assert.False(t, payload.HasNextPage)
	require.Len(t, payload.Products, 2)
	assert.Equal(t, "Red Cap", payload.Products[0].Name)
	assert.Equal(t, "Blue Shirt", payload.Products[1].Name, "variant inherits the parent display name")

	// First call is the search, second the batched parent fetch.
	require.Len(t, stub.requests, 2)
	assert.Contains(t, stub.requests[0].URL.Path, "/store-api/search")
	assert.Contains(t, stub.requests[1].URL.Path, "/store-api/product")
	assert.Contains(t, stub.bodies[1], variantParentID)
}

func TestSearchProducts_NoResultsIsInformational(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{"total":0,"elements":[]}`),
	}}
	tool := NewSearchProductsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{"term": "unobtainium"})
	require.NoError(t, err)
	assert.False(t, result.IsError, "absence of data is not a fault")
	assert.Contains(t, result.Content[0].Text, "No products found")
}

func TestSearchProducts_MissingTerm(t *testing.T) {
	tool := NewSearchProductsTool(testDeps(&scriptedHTTP{}))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSearchProducts_PriceFilterAndLimitCap(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{"total":0,"elements":[]}`),
	}}
	tool := NewSearchProductsTool(testDeps(stub))

	_, err := tool.Execute(context.Background(), map[string]any{
		"term":      "shirt",
		"limit":     50,
		"max_price": 20,
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(stub.bodies[0]), &sent))
	assert.Equal(t, float64(searchLimitMax), sent["limit"], "limit is capped")

	filters := sent["filter"].([]any)
	require.Len(t, filters, 1)
	filter := filters[0].(map[string]any)
	assert.Equal(t, "range", filter["type"])
	assert.Equal(t, map[string]any{"lte": float64(20)}, filter["parameters"])
}

func productDetailResponses(description string) []*http.Response {
	return []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 1,
			"elements": [{
				"id": "p1",
				"productNumber": "SW-1",
				"translated": {"name": "Soft Shirt", "description": "`+description+`"},
				"availableStock": 4,
				"available": true,
				"calculatedPrice": {"unitPrice": 19.99, "totalPrice": 19.99, "quantity": 1}
			}]
		}`),
		jsonResponse(http.StatusOK, `{"currency": {"isoCode": "EUR", "symbol": "€"}}`),
	}
}

func TestProductDetails_StripsHTMLAndFormatsPrice(t *testing.T) {
	stub := &scriptedHTTP{responses: productDetailResponses("<p>Soft <b>cotton</b></p>")}
	tool := NewProductDetailsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{
		"product_id": "11111111-2222-3333-4444-555555555555",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var detail productDetail
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &detail))
	assert.Equal(t, "Soft Shirt", detail.Name)
	assert.Equal(t, "Soft cotton", detail.Description)
	assert.Equal(t, "19.99 €", detail.PriceFormatted)
}

func TestProductDetails_Idempotent(t *testing.T) {
	run := func() string {
		stub := &scriptedHTTP{responses: productDetailResponses("plain")}
		tool := NewProductDetailsTool(testDeps(stub))
		result, err := tool.Execute(context.Background(), map[string]any{
			"product_id": "11111111-2222-3333-4444-555555555555",
		})
		require.NoError(t, err)
		return result.Content[0].Text
	}
	assert.Equal(t, run(), run(), "same input against unchanged upstream yields identical output")
}

func TestProductDetails_VariantParentFallback(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		// The variant has no name, description, media or manufacturer.
		jsonResponse(http.StatusOK, `{
			"total": 1,
			"elements": [{"id": "p2", "productNumber": "SW-2.1", "parentId": "`+variantParentID+`"}]
		}`),
		// Parent fetch.
		jsonResponse(http.StatusOK, `{
			"total": 1,
			"elements": [{
				"id": "`+variantParentID+`",
				"translated": {"name": "Blue Shirt", "description": "A fine shirt"},
				"manufacturer": {"name": "Shirtmakers"}
			}]
		}`),
		// Currency context.
		jsonResponse(http.StatusOK, `{"currency": {"symbol": "€"}}`),
	}}
	tool := NewProductDetailsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{
		"product_id": "22222222-2222-3333-4444-555555555555",
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	var detail productDetail
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &detail))
	assert.Equal(t, "Blue Shirt", detail.Name)
	assert.Equal(t, "A fine shirt", detail.Description)
	assert.Equal(t, "Shirtmakers", detail.Manufacturer)
}

func TestProductDetails_SKUNotFound(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{"total":0,"elements":[]}`),
	}}
	tool := NewProductDetailsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{"product_id": "NO-SUCH"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "not found")
	require.Len(t, stub.requests, 1, "an unresolved SKU must not trigger further calls")
}
