package extractor

// IndustryTerm maps a business vocabulary word to the industry it signals.
type IndustryTerm struct {
	Term     string
	Industry string
}

// Vocabulary holds the static tables the extractor matches against.
// Tables are data, not behavior: tune them by passing a modified copy to New.
type Vocabulary struct {
	// DenylistColors are neutral chrome colors (#rrggbb, lowercase) that are
	// never reported as brand colors.
	DenylistColors []string

	// IndustryTerms are matched against the meta description, in order.
	IndustryTerms []IndustryTerm

	// ActionVerbs are matched against title and H1 text.
	ActionVerbs []string

	// GenericKeywords pad the keyword list when too few were found.
	GenericKeywords []string

	// GenericTitleWords are stripped when deriving the company name.
	GenericTitleWords []string

	// GenericFontFamilies are CSS generic and system stacks, never brand fonts.
	GenericFontFamilies []string
}

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		DenylistColors: []string{
			"#ffffff", "#fefefe", "#fdfdfd", "#fcfcfc", "#fafafa", "#f9f9f9", "#f8f8f8",
			"#f5f5f5", "#f4f4f4", "#f2f2f2", "#f0f0f0", "#eeeeee", "#ebebeb", "#e8e8e8",
			"#e5e5e5", "#e0e0e0", "#dddddd", "#d9d9d9", "#d3d3d3", "#cccccc", "#c0c0c0",
			"#bbbbbb", "#aaaaaa", "#a9a9a9", "#999999", "#888888", "#808080", "#777777",
			"#666666", "#555555", "#444444", "#333333", "#2d2d2d", "#282828", "#222222",
			"#1e1e1e", "#1a1a1a", "#111111", "#0a0a0a", "#050505", "#010101", "#000000",
			// Bootstrap grays.
			"#f8f9fa", "#e9ecef", "#dee2e6", "#ced4da", "#adb5bd", "#6c757d", "#495057",
			"#343a40", "#212529",
			// Tailwind gray and slate.
			"#f9fafb", "#f3f4f6", "#e5e7eb", "#d1d5db", "#9ca3af", "#6b7280", "#4b5563",
			"#374151", "#1f2937", "#111827", "#f8fafc", "#f1f5f9", "#e2e8f0", "#cbd5e1",
			"#94a3b8", "#64748b", "#475569", "#334155", "#1e293b", "#0f172a",
		},
		IndustryTerms: []IndustryTerm{
			{"software", "Technology"},
			{"saas", "Technology"},
			{"cloud", "Technology"},
			{"technology", "Technology"},
			{"artificial intelligence", "Technology"},
			{"cybersecurity", "Technology"},
			{"analytics", "Technology"},
			{"platform", "Technology"},
			{"solution", "Business Services"},
			{"consulting", "Consulting"},
			{"marketing", "Marketing"},
			{"agency", "Marketing"},
			{"design", "Design"},
			{"ecommerce", "Retail"},
			{"e-commerce", "Retail"},
			{"retail", "Retail"},
			{"fashion", "Retail"},
			{"restaurant", "Food & Beverage"},
			{"coffee", "Food & Beverage"},
			{"food", "Food & Beverage"},
			{"health", "Healthcare"},
			{"medical", "Healthcare"},
			{"dental", "Healthcare"},
			{"fitness", "Health & Fitness"},
			{"finance", "Finance"},
			{"financial", "Finance"},
			{"banking", "Finance"},
			{"insurance", "Insurance"},
			{"real estate", "Real Estate"},
			{"construction", "Construction"},
			{"education", "Education"},
			{"learning", "Education"},
			{"travel", "Travel"},
			{"hotel", "Hospitality"},
			{"law firm", "Legal"},
			{"legal", "Legal"},
			{"manufacturing", "Manufacturing"},
			{"logistics", "Logistics"},
			{"automotive", "Automotive"},
			{"energy", "Energy"},
			{"nonprofit", "Nonprofit"},
			{"photography", "Creative"},
			{"media", "Media"},
			{"services", "Business Services"},
		},
		ActionVerbs: []string{
			"build", "create", "grow", "innovate", "transform", "deliver", "design",
			"develop", "launch", "scale", "automate", "connect", "empower", "simplify",
			"secure", "optimize", "manage", "discover", "shop", "learn",
		},
		GenericKeywords: []string{"business", "services", "quality", "professional"},
		GenericTitleWords: []string{
			"home", "homepage", "home page", "welcome", "official site", "official website",
		},
		GenericFontFamilies: []string{
			"serif", "sans-serif", "monospace", "cursive", "fantasy", "system-ui",
			"ui-sans-serif", "ui-serif", "ui-monospace", "ui-rounded", "emoji", "math",
			"inherit", "initial", "unset", "revert", "-apple-system", "blinkmacsystemfont",
			"segoe ui", "apple color emoji", "segoe ui emoji", "segoe ui symbol",
			"noto color emoji",
		},
	}
}
