// Package logo turns raw logo references into a ranked list of probed
// candidates.
package logo

import (
	"net/url"
	"strings"
	"unicode"
)

// slugToken is replaced by the company-name slug in fallback paths.
const slugToken = "{slug}"

// DefaultFallbackPaths are conventional logo locations that are probed even
// when the page never references them.
var DefaultFallbackPaths = []string{
	"/logo.svg",
	"/logo.png",
	"/images/logo.svg",
	"/images/logo.png",
	"/img/logo.svg",
	"/img/logo.png",
	"/assets/logo.svg",
	"/assets/logo.png",
	"/assets/images/logo.svg",
	"/assets/images/logo.png",
	"/static/logo.svg",
	"/static/logo.png",
	"/" + slugToken + "-logo.svg",
	"/" + slugToken + "-logo.png",
	"/" + slugToken + ".svg",
	"/images/" + slugToken + "-logo.png",
	"/assets/" + slugToken + "-logo.svg",
	"/favicon.svg",
	"/apple-touch-icon.png",
}

// Normalize appends the fallback paths, resolved against origin, to the
// candidates found in the page. The result is deduplicated by exact string
// and keeps discovery order, found candidates first. Templates containing
// {slug} are skipped when companyName has no letters or digits.
func Normalize(found []string, origin, companyName string, fallbacks []string) []string {
	out := make([]string, 0, len(found)+len(fallbacks))
	seen := make(map[string]struct{}, cap(out))
	add := func(u string) {
		if u == "" {
			return
		}
		if _, dup := seen[u]; dup {
			return
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}

	for _, u := range found {
		add(u)
	}

	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err != nil || base.Host == "" {
		return out
	}
	slug := Slug(companyName)
	for _, p := range fallbacks {
		if strings.Contains(p, slugToken) {
			if slug == "" {
				continue
			}
			p = strings.ReplaceAll(p, slugToken, slug)
		}
		ref, err := base.Parse(p)
		if err != nil {
			continue
		}
		add(ref.String())
	}
	return out
}

// Slug lowercases name and keeps only letters and digits: "Acme Corp."
// becomes "acmecorp".
func Slug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
