package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, apiURL string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = "extract_brand"
	req.Params.Arguments = args

	res, err := handleExtractBrand(apiURL)(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestExtractBrand_FormatsProfile(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/brand", r.URL.Path)
		var req brandRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotURL = req.URL
		_, _ = w.Write([]byte(`{"success":true,"profile":{"companyName":"Acme Corp","industry":"Technology",
"primaryColor":"#1a73e8","secondaryColor":"#06b6d4","logo":"https://acme.com/logo.svg",
"fonts":["Inter"],"keywords":["software","cloud"]},"timing":{"total_ms":420}}`))
	}))
	defer srv.Close()

	res := callTool(t, srv.URL, map[string]any{"url": "acme.com"})
	assert.False(t, res.IsError)
	assert.Equal(t, "acme.com", gotURL)

	text := resultText(t, res)
	assert.Contains(t, text, "Company: Acme Corp")
	assert.Contains(t, text, "Description: (none)")
	assert.Contains(t, text, "Colors: primary #1a73e8, secondary #06b6d4")
	assert.Contains(t, text, "Keywords: software, cloud")
	assert.Contains(t, text, "Extracted in 420ms")
}

func TestExtractBrand_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"FETCH_FAILED","message":"unexpected status","status_code":403}}`))
	}))
	defer srv.Close()

	res := callTool(t, srv.URL, map[string]any{"url": "acme.com"})
	assert.True(t, res.IsError)
	text := resultText(t, res)
	assert.Contains(t, text, "[FETCH_FAILED]")
	assert.Contains(t, text, "HTTP 403")
}

func TestExtractBrand_MissingURL(t *testing.T) {
	res := callTool(t, "http://127.0.0.1:0", map[string]any{})
	assert.True(t, res.IsError)
	assert.Equal(t, "url is required", resultText(t, res))
}
