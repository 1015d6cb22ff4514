package extractor

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// keywords collects up to four tags from layered sources, stopping as soon
// as the list is full: meta keywords, industry terms in the description,
// then action verbs in title and H1 with the company name removed.
func (e *Extractor) keywords(metaKeywords, description, title, h1, companyName string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, maxKeywords)
	add := func(k string) {
		k = strings.ToLower(collapse(k))
		if k == "" || len(k) > 40 || len(out) >= maxKeywords {
			return
		}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	for _, k := range strings.Split(metaKeywords, ",") {
		add(k)
	}

	desc := strings.ToLower(description)
	for _, term := range e.vocab.IndustryTerms {
		if containsWord(desc, term.Term) {
			add(term.Term)
		}
	}

	text := title + " " + h1
	if companyName != "" {
		text = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(companyName)).ReplaceAllString(text, " ")
	}
	text = strings.ToLower(text)
	for _, verb := range e.vocab.ActionVerbs {
		if containsWord(text, verb) {
			add(verb)
		}
	}

	for _, g := range e.vocab.GenericKeywords {
		if len(out) >= minKeywords {
			break
		}
		add(g)
	}
	return out
}

// industry returns the label of the first industry term in the description,
// falling back to the title.
func (e *Extractor) industry(description, title string) string {
	for _, text := range []string{description, title} {
		lower := strings.ToLower(text)
		for _, term := range e.vocab.IndustryTerms {
			if containsWord(lower, term.Term) {
				return term.Industry
			}
		}
	}
	return ""
}

// containsWord reports whether term occurs in text starting at a word
// boundary. The end is left open so "solution" matches "solutions".
func containsWord(text, term string) bool {
	if term == "" {
		return false
	}
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], term)
		if i < 0 {
			return false
		}
		i += offset
		if i == 0 || !isWordByte(text[i-1]) {
			return true
		}
		offset = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

var (
	reFontFamily  = regexp.MustCompile(`(?i)font-family\s*:\s*((?:"[^"]*"|'[^']*'|[^;}"'<>])+)`)
	reGoogleFonts = regexp.MustCompile(`(?i)fonts\.googleapis\.com/css2?\?([^"'\s<>]+)`)
)

// fonts lists declared font families: Google Fonts stylesheets first, then
// the leading non-generic family of each font-family declaration.
func (e *Extractor) fonts(rawHTML string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		name = strings.Trim(strings.TrimSpace(name), `"'`)
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || len(out) >= maxFonts || strings.HasPrefix(key, "var(") {
			return
		}
		if _, generic := e.genericFonts[key]; generic {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}

	for _, m := range reGoogleFonts.FindAllStringSubmatch(rawHTML, -1) {
		for _, family := range googleFamilies(m[1]) {
			add(family)
		}
	}

	for _, m := range reFontFamily.FindAllStringSubmatch(rawHTML, -1) {
		for _, family := range strings.Split(html.UnescapeString(m[1]), ",") {
			family = strings.Trim(strings.TrimSpace(family), `"'`)
			if _, generic := e.genericFonts[strings.ToLower(family)]; generic || family == "" {
				continue
			}
			add(family)
			break
		}
	}
	return out
}

// googleFamilies parses the family parameters of a Google Fonts URL query,
// covering both the css ("A|B:400") and css2 ("family=A:wght@400;700") forms.
func googleFamilies(rawQuery string) []string {
	var out []string
	for _, pair := range strings.Split(html.UnescapeString(rawQuery), "&") {
		value, ok := strings.CutPrefix(pair, "family=")
		if !ok {
			continue
		}
		value, err := url.QueryUnescape(value)
		if err != nil {
			continue
		}
		for _, family := range strings.Split(value, "|") {
			name, _, _ := strings.Cut(family, ":")
			name = strings.TrimSpace(name)
			if name != "" && unicode.IsLetter([]rune(name)[0]) {
				out = append(out, name)
			}
		}
	}
	return out
}
