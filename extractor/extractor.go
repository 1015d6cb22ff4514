// Package extractor pulls brand signals out of raw homepage HTML.
//
// Extraction is pattern based: regular expressions over the markup plus the
// x/net/html tokenizer for text runs. No DOM tree is built, so malformed or
// truncated pages still yield whatever signals can be matched. Every string
// returned is untrusted page content.
package extractor

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	maxColors   = 10
	maxKeywords = 4
	minKeywords = 3
	maxFonts    = 5
)

// Signals are the best-effort fields extracted from one page.
type Signals struct {
	Origin string

	Title         string
	Description   string
	OGTitle       string
	OGDescription string
	OGSiteName    string
	OGImage       string
	H1            string

	CompanyName string
	Industry    string

	// Colors are lowercase #rrggbb values, neutral colors removed.
	Colors   []string
	Keywords []string
	Fonts    []string

	// LogoCandidates are absolute URLs in discovery order.
	LogoCandidates []string
}

// Extractor matches Signals out of HTML. It is safe for concurrent use.
type Extractor struct {
	vocab        Vocabulary
	denylist     map[string]struct{}
	genericFonts map[string]struct{}
	genericWords *regexp.Regexp
}

// New creates an Extractor over the given vocabulary tables.
func New(vocab Vocabulary) *Extractor {
	e := &Extractor{
		vocab:        vocab,
		denylist:     toSet(vocab.DenylistColors),
		genericFonts: toSet(vocab.GenericFontFamilies),
	}
	if len(vocab.GenericTitleWords) > 0 {
		quoted := make([]string, 0, len(vocab.GenericTitleWords))
		for _, w := range vocab.GenericTitleWords {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
		}
		e.genericWords = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}
	return e
}

// Extract returns the signals found in rawHTML. origin (scheme://host) is
// used to resolve relative logo references and as a last-resort name source.
func (e *Extractor) Extract(rawHTML, origin string) *Signals {
	s := &Signals{Origin: origin}

	meta := metaContent(rawHTML)
	s.Title = extractTitle(rawHTML)
	s.Description = meta["description"]
	s.OGTitle = meta["og:title"]
	s.OGDescription = meta["og:description"]
	s.OGSiteName = meta["og:site_name"]
	s.OGImage = firstNonEmpty(meta["og:image"], meta["og:image:url"], meta["og:image:secure_url"])
	s.H1 = extractH1(rawHTML)
	if s.Description == "" {
		s.Description = s.OGDescription
	}

	s.CompanyName = e.companyName(s, origin)
	s.Industry = e.industry(s.Description, s.Title)
	s.Colors = e.colors(rawHTML, meta["theme-color"])
	s.Keywords = e.keywords(meta["keywords"], s.Description, s.Title, s.H1, s.CompanyName)
	s.Fonts = e.fonts(rawHTML)
	s.LogoCandidates = logoCandidates(rawHTML, origin, s.OGImage)
	return s
}

var (
	reMetaTag = regexp.MustCompile(`(?is)<meta\b([^>]*)>`)
	reAttr    = regexp.MustCompile(`(?s)([a-zA-Z_:][-a-zA-Z0-9_:.]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"'=<>` + "`" + `]+))`)
	reSep     = regexp.MustCompile(`\s+[-|–—·:•]+\s+|\s*\|\s*`)
	reSpaces  = regexp.MustCompile(`\s+`)
	reWelcome = regexp.MustCompile(`(?i)^\s*welcome\s+to\s+`)
)

// parseAttrs parses the attribute section of a start tag. Keys are
// lowercased and values HTML-unescaped; the first occurrence wins.
func parseAttrs(s string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range reAttr.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(m[1])
		if _, seen := attrs[key]; seen {
			continue
		}
		attrs[key] = html.UnescapeString(m[2] + m[3] + m[4])
	}
	return attrs
}

// metaContent indexes <meta> content by lowercased name or property.
func metaContent(rawHTML string) map[string]string {
	out := make(map[string]string)
	for _, m := range reMetaTag.FindAllStringSubmatch(rawHTML, -1) {
		attrs := parseAttrs(m[1])
		key := strings.ToLower(strings.TrimSpace(firstNonEmpty(attrs["property"], attrs["name"], attrs["itemprop"])))
		content := strings.TrimSpace(attrs["content"])
		if key == "" || content == "" {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = content
		}
	}
	return out
}

// extractTitle uses the HTML tokenizer to find the first <title> text.
func extractTitle(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	inTitle := false
	var buf bytes.Buffer
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapse(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				buf.Write(tokenizer.Text())
			}
		case html.EndTagToken:
			if inTitle {
				return collapse(buf.String())
			}
		}
	}
}

// extractH1 returns the visible text of every <h1>, space separated.
func extractH1(rawHTML string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(rawHTML))
	depth := 0
	var buf strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return collapse(buf.String())
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "h1" {
				depth++
			}
		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "h1" && depth > 0 {
				depth--
				buf.WriteByte(' ')
			}
		case html.TextToken:
			if depth > 0 {
				buf.Write(tokenizer.Text())
				buf.WriteByte(' ')
			}
		}
	}
}

// companyName prefers og:title, then <title>, then og:site_name, then the
// registrable label of the host.
func (e *Extractor) companyName(s *Signals, origin string) string {
	for _, candidate := range []string{s.OGTitle, s.Title, s.OGSiteName} {
		if name := e.cleanTitle(candidate); name != "" {
			return name
		}
	}
	return nameFromHost(origin)
}

// cleanTitle drops " - Tagline" / " | Section" suffixes and generic words,
// returning the first segment that still has content.
func (e *Extractor) cleanTitle(title string) string {
	for _, segment := range reSep.Split(title, -1) {
		segment = reWelcome.ReplaceAllString(segment, "")
		if e.genericWords != nil {
			segment = e.genericWords.ReplaceAllString(segment, "")
		}
		segment = strings.Trim(collapse(segment), " ,.!-|:")
		if segment != "" {
			return segment
		}
	}
	return ""
}

func nameFromHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" || isIPLabel(label) {
		return ""
	}
	words := strings.FieldsFunc(label, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func isIPLabel(label string) bool {
	for _, r := range label {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(html.UnescapeString(s), " "))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = struct{}{}
	}
	return set
}
