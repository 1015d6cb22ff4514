package brand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/brandkit/enhance"
	"github.com/use-agent/brandkit/extractor"
	"github.com/use-agent/brandkit/logo"
)

func TestResolve_Palette(t *testing.T) {
	tests := []struct {
		name          string
		colors        []string
		wantPrimary   string
		wantSecondary string
	}{
		{"no colors", nil, DefaultPrimaryColor, DefaultSecondaryColor},
		{"one color", []string{"#1a73e8"}, "#1a73e8", DefaultSecondaryColor},
		{"two colors", []string{"#1a73e8", "#ff6600"}, "#1a73e8", "#ff6600"},
		{"identical pair uses next distinct", []string{"#1a73e8", "#1A73E8", "#1a73e8", "#ff6600"}, "#1a73e8", "#ff6600"},
		{"identical pair without alternative", []string{"#1a73e8", "#1a73e8"}, "#1a73e8", "#1a73e8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Resolve(ResolveInput{Signals: &extractor.Signals{Colors: tt.colors}})
			assert.Equal(t, tt.wantPrimary, p.PrimaryColor)
			assert.Equal(t, tt.wantSecondary, p.SecondaryColor)
		})
	}
}

func TestResolve_AIOverridesFieldByField(t *testing.T) {
	signals := &extractor.Signals{
		CompanyName: "Acme Corp",
		Description: "Acme builds software solutions",
		Industry:    "Technology",
		Colors:      []string{"#1a73e8", "#ff6600"},
		Fonts:       []string{"Inter"},
		Keywords:    []string{"software", "solution", "business"},
	}
	ai := enhance.Result{
		Description:  "Acme makes developer tools.",
		PrimaryColor: "#000080",
		Keywords:     []string{"DevTools", "devtools", "CI", "Cloud", "Testing", "Extra"},
	}

	p := Resolve(ResolveInput{Signals: signals, AI: ai})
	assert.Equal(t, "Acme Corp", p.CompanyName)
	assert.Equal(t, "Acme makes developer tools.", p.Description)
	assert.Equal(t, "Technology", p.Industry)
	assert.Equal(t, "#000080", p.PrimaryColor)
	assert.Equal(t, "#ff6600", p.SecondaryColor)
	assert.Equal(t, []string{"Inter"}, p.Fonts)
	assert.Equal(t, []string{"devtools", "ci", "cloud", "testing"}, p.Keywords)
}

func TestResolve_LogoPrecedence(t *testing.T) {
	ranked := []logo.Candidate{
		{URL: "https://acme.com/acme-logo.svg", OK: true, Score: 48},
		{URL: "https://acme.com/favicon.ico", OK: true, Score: 7},
	}
	ai := enhance.Result{Logo: "https://cdn.acme.com/ai-logo.png"}

	assert.Equal(t, "https://acme.com/acme-logo.svg", Resolve(ResolveInput{Ranked: ranked, AI: ai}).Logo)
	assert.Equal(t, "https://cdn.acme.com/ai-logo.png", Resolve(ResolveInput{AI: ai}).Logo)
	assert.Equal(t, "", Resolve(ResolveInput{}).Logo)
}

func TestResolve_AlwaysComplete(t *testing.T) {
	p := Resolve(ResolveInput{})
	require.NotNil(t, p)
	assert.Equal(t, DefaultPrimaryColor, p.PrimaryColor)
	assert.Equal(t, DefaultSecondaryColor, p.SecondaryColor)
	assert.NotNil(t, p.Fonts)
	assert.NotNil(t, p.Keywords)
}

func TestResolve_DoesNotAliasInputs(t *testing.T) {
	signals := &extractor.Signals{Fonts: []string{"Inter"}, Keywords: []string{"software"}}
	p := Resolve(ResolveInput{Signals: signals})
	p.Fonts[0] = "Changed"
	assert.Equal(t, "Inter", signals.Fonts[0])
}
