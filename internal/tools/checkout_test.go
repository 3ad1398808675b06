package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingMethods_StripsHTMLAndResolvesDeliveryTime(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 1,
			"elements": [{
				"id": "sm1",
				"name": "Standard",
				"translated": {"name": "Standard", "description": "<p>Delivered by <b>courier</b></p>"},
				"deliveryTime": {"name": "1-3 days", "translated": {"name": "1-3 days"}}
			}]
		}`),
	}}
	tool := NewShippingMethodsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, stub.requests, 1)
	assert.Equal(t, http.MethodGet, stub.requests[0].Method)
	assert.Equal(t, "onlyAvailable=true", stub.requests[0].URL.RawQuery)

	var payload struct {
		Methods []methodSummary `json:"shippingMethods"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	require.Len(t, payload.Methods, 1)
	assert.Equal(t, "Standard", payload.Methods[0].Name)
	assert.Equal(t, "Delivered by courier", payload.Methods[0].Description)
	assert.Equal(t, "1-3 days", payload.Methods[0].DeliveryTime)
}

func TestShippingMethods_Empty(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{"total": 0, "elements": []}`),
	}}
	tool := NewShippingMethodsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "No shipping methods")
}

func TestPaymentMethods_Listing(t *testing.T) {
	stub := &scriptedHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{
			"total": 2,
			"elements": [
				{"id": "pm1", "translated": {"name": "Invoice"}},
				{"id": "pm2", "translated": {"name": "Credit card", "description": "<i>Visa and Mastercard</i>"}}
			]
		}`),
	}}
	tool := NewPaymentMethodsTool(testDeps(stub))

	result, err := tool.Execute(context.Background(), map[string]any{})
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Len(t, stub.requests, 1)
	assert.Contains(t, stub.requests[0].URL.Path, "/store-api/payment-method")

	var payload struct {
		Methods []methodSummary `json:"paymentMethods"`
	}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
	require.Len(t, payload.Methods, 2)
	assert.Equal(t, "Invoice", payload.Methods[0].Name)
	assert.Equal(t, "Visa and Mastercard", payload.Methods[1].Description)
}
