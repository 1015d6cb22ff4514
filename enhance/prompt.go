package enhance

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxHTMLBytes is how much of the page is sent to the model.
const maxHTMLBytes = 8 << 10

const systemPrompt = `You are a web scraping and branding assistant. You read the HTML of a business homepage and describe the brand behind it.

Rules:
- Return ONLY a JSON object, no markdown fences or explanation.
- Use exactly these keys: companyName, description, industry, primaryColor, secondaryColor, logo, fonts, keywords.
- primaryColor and secondaryColor are #rrggbb hex values.
- logo is a URL to the logo image file as it appears in the HTML.
- fonts and keywords are arrays of strings; give at most 4 keywords.
- Use an empty string or empty array when a value cannot be determined.`

// buildPrompt renders the user prompt: the heuristic findings followed by
// the head of the page.
func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("Website: ")
	b.WriteString(in.Origin)
	b.WriteString("\n\nHeuristic findings (may be wrong or incomplete):\n")
	fmt.Fprintf(&b, "- companyName: %s\n", in.CompanyName)
	fmt.Fprintf(&b, "- description: %s\n", in.Description)
	fmt.Fprintf(&b, "- colors: %s\n", strings.Join(in.Colors, ", "))
	fmt.Fprintf(&b, "- keywords: %s\n", strings.Join(in.Keywords, ", "))
	fmt.Fprintf(&b, "- logo candidates: %s\n", strings.Join(in.LogoCandidates, ", "))
	b.WriteString("\nHTML (truncated):\n")
	b.WriteString(truncateUTF8(in.HTML, maxHTMLBytes))
	b.WriteString("\n\nRespond with the JSON object only.")
	return b.String()
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
