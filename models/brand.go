package models

// BrandProfile is the normalized brand description produced for one website.
type BrandProfile struct {
	CompanyName    string   `json:"companyName"`
	Description    string   `json:"description"`
	Industry       string   `json:"industry"`
	PrimaryColor   string   `json:"primaryColor"`
	SecondaryColor string   `json:"secondaryColor"`
	Logo           string   `json:"logo"`
	Fonts          []string `json:"fonts"`
	Keywords       []string `json:"keywords"`
}

// BrandRequest is the payload for POST /api/v1/brand.
type BrandRequest struct {
	// URL is the website to profile. A bare host ("acme.com") is accepted. Required.
	URL string `json:"url" binding:"required"`
}

// BrandResponse is the response for POST /api/v1/brand.
type BrandResponse struct {
	// Success indicates whether a profile was produced.
	Success bool `json:"success"`

	// Profile is populated only when Success is true.
	Profile *BrandProfile `json:"profile,omitempty"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	FetchMs   int64 `json:"fetch_ms"`
	ExtractMs int64 `json:"extract_ms"`
	RankMs    int64 `json:"rank_ms"`
	EnhanceMs int64 `json:"enhance_ms"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Enhancement bool   `json:"enhancement"`
	Version     string `json:"version"`
}
