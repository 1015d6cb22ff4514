package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// brandRequest mirrors the brandkit API request model.
type brandRequest struct {
	URL string `json:"url"`
}

// brandResponse mirrors the brandkit API response model.
type brandResponse struct {
	Success bool `json:"success"`
	Profile *struct {
		CompanyName    string   `json:"companyName"`
		Description    string   `json:"description"`
		Industry       string   `json:"industry"`
		PrimaryColor   string   `json:"primaryColor"`
		SecondaryColor string   `json:"secondaryColor"`
		Logo           string   `json:"logo"`
		Fonts          []string `json:"fonts"`
		Keywords       []string `json:"keywords"`
	} `json:"profile"`
	Timing *struct {
		TotalMs int64 `json:"total_ms"`
	} `json:"timing"`
	Error *struct {
		Code       string `json:"code"`
		Message    string `json:"message"`
		StatusCode int    `json:"status_code"`
	} `json:"error"`
}

func main() {
	_ = godotenv.Load()

	apiURL := strings.TrimRight(os.Getenv("BRANDKIT_API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}

	s := server.NewMCPServer(
		"brandkit",
		"0.1.0",
		server.WithToolCapabilities(false),
	)

	extractBrandTool := mcp.NewTool("extract_brand",
		mcp.WithDescription("Extract a company's brand profile from its website: name, description, industry, primary and secondary colors, logo URL, fonts and keywords."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The company website, e.g. 'acme.com' or 'https://acme.com'"),
		),
	)
	s.AddTool(extractBrandTool, handleExtractBrand(apiURL))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleExtractBrand(apiURL string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		body, err := json.Marshal(brandRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/v1/brand", bytes.NewReader(body))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var brandResp brandResponse
		if err := json.Unmarshal(respBody, &brandResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !brandResp.Success || brandResp.Profile == nil {
			errMsg := "brand extraction failed"
			if e := brandResp.Error; e != nil {
				errMsg = fmt.Sprintf("[%s] %s", e.Code, e.Message)
				if e.StatusCode != 0 {
					errMsg += fmt.Sprintf(" (site returned HTTP %d)", e.StatusCode)
				}
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		return mcp.NewToolResultText(formatProfile(&brandResp)), nil
	}
}

func formatProfile(r *brandResponse) string {
	p := r.Profile
	var sb strings.Builder
	fmt.Fprintf(&sb, "Company: %s\n", orNone(p.CompanyName))
	fmt.Fprintf(&sb, "Industry: %s\n", orNone(p.Industry))
	fmt.Fprintf(&sb, "Description: %s\n", orNone(p.Description))
	fmt.Fprintf(&sb, "Colors: primary %s, secondary %s\n", p.PrimaryColor, p.SecondaryColor)
	fmt.Fprintf(&sb, "Logo: %s\n", orNone(p.Logo))
	fmt.Fprintf(&sb, "Fonts: %s\n", orNone(strings.Join(p.Fonts, ", ")))
	fmt.Fprintf(&sb, "Keywords: %s\n", orNone(strings.Join(p.Keywords, ", ")))
	if r.Timing != nil {
		fmt.Fprintf(&sb, "\n---\nExtracted in %dms", r.Timing.TotalMs)
	}
	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
