package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubHTTP is a scripted HTTPClient that records every request and replays
// canned responses in order.
type stubHTTP struct {
	responses []*http.Response
	err       error
	requests  []*http.Request
	bodies    []string
}

func (s *stubHTTP) Do(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return jsonResponse(http.StatusOK, `{}`), nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(creds Credentials, stub *stubHTTP) *Client {
	return NewClient(creds, Options{HTTPClient: stub})
}

func TestClient_URLJoining(t *testing.T) {
	stub := &stubHTTP{}
	client := newTestClient(Credentials{ShopURL: "https://shop.example.com/"}, stub)

	err := client.Get(context.Background(), "/product", nil)
	require.NoError(t, err)

	require.Len(t, stub.requests, 1)
	assert.Equal(t, "https://shop.example.com/store-api/product", stub.requests[0].URL.String())
}

func TestClient_CredentialHeaders(t *testing.T) {
	stub := &stubHTTP{}
	client := newTestClient(Credentials{
		AccessKey: "SWSC123",
		ShopURL:   "https://shop.example.com",
	}, stub)

	err := client.Get(context.Background(), "context", nil)
	require.NoError(t, err)

	h := stub.requests[0].Header
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "SWSC123", h.Get("sw-access-key"))

	// Absent credentials become empty headers, never omitted ones.
	_, ok := h["Sw-Context-Token"]
	assert.True(t, ok, "sw-context-token header must be present")
	assert.Equal(t, "", h.Get("sw-context-token"))
	_, ok = h["Sw-Language-Id"]
	assert.True(t, ok, "sw-language-id header must be present")
}

func TestClient_PostSerializesBody(t *testing.T) {
	stub := &stubHTTP{}
	client := newTestClient(Credentials{ShopURL: "https://shop.example.com"}, stub)

	err := client.Post(context.Background(), "search", Criteria{Term: "shirt", Limit: 3}, nil)
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(stub.bodies[0]), &sent))
	assert.Equal(t, "shirt", sent["term"])
	assert.Equal(t, float64(3), sent["limit"])
}

func TestClient_ErrorCarriesStatusAndBody(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{
		jsonResponse(http.StatusForbidden, `{"errors":[{"code":"CHECKOUT__CUSTOMER_NOT_LOGGED_IN"}]}`),
	}}
	client := newTestClient(Credentials{ShopURL: "https://shop.example.com"}, stub)

	err := client.Get(context.Background(), "checkout/cart", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "Forbidden", apiErr.StatusText)
	assert.Contains(t, apiErr.Body, "CUSTOMER_NOT_LOGGED_IN")

	assert.True(t, IsStatus(err, http.StatusForbidden))
	assert.False(t, IsStatus(err, http.StatusNotFound))
}

func TestClient_NoContentLeavesDestUntouched(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{jsonResponse(http.StatusNoContent, "")}}
	client := newTestClient(Credentials{ShopURL: "https://shop.example.com"}, stub)

	dest := map[string]any{"pre": "existing"}
	err := client.Post(context.Background(), "context", nil, &dest)
	require.NoError(t, err)
	assert.Equal(t, "existing", dest["pre"])
}

func TestClient_DecodesSuccessBody(t *testing.T) {
	stub := &stubHTTP{responses: []*http.Response{
		jsonResponse(http.StatusOK, `{"total":2,"elements":[{"id":"a"},{"id":"b"}]}`),
	}}
	client := newTestClient(Credentials{ShopURL: "https://shop.example.com"}, stub)

	var result SearchResult[Product]
	err := client.Post(context.Background(), "product", Criteria{}, &result)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	require.Len(t, result.Elements, 2)
	assert.Equal(t, "a", result.Elements[0].ID)
}

func TestNormalizeShopURL(t *testing.T) {
	assert.Equal(t, "https://shop.example.com", NormalizeShopURL("https://shop.example.com///"))
	assert.Equal(t, "https://shop.example.com", NormalizeShopURL(" https://shop.example.com/"))
	assert.Equal(t, "", NormalizeShopURL(""))
}
