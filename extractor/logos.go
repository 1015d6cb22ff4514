package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	reLinkTag   = regexp.MustCompile(`(?is)<link\b([^>]*)>`)
	reImgTag    = regexp.MustCompile(`(?is)<img\b([^>]*)>`)
	reHeaderNav = regexp.MustCompile(`(?is)<(header|nav)\b[^>]*>(.*?)</(?:header|nav)>`)
	reNamedBox  = regexp.MustCompile(`(?is)<(?:div|a|span|figure|p|h1|section)\b[^>]*\b(?:class|id)\s*=\s*["'][^"']*\b(?:site-logo|brand-logo|header-logo|header-title-logo|navbar-brand|site-branding|custom-logo-link|logo-wrapper|logo-container)\b[^"']*["'][^>]*>(.*?)</(?:div|a|span|figure|p|h1|section)>`)
	reLogoFile  = regexp.MustCompile(`(?i)["'(=]\s*([^"'()\s<>]*(?:logo|brand|header|identity)[^"'()\s<>]*\.(?:svg|png|webp|jpe?g|gif|ico)(?:\?[^"'()\s<>]*)?)`)
	reSVGRef    = regexp.MustCompile(`(?i)["'(=]\s*([^"'()\s<>]+\.svg(?:\?[^"'()\s<>]*)?)`)
	reLDLogo    = regexp.MustCompile(`(?i)"logo"\s*:\s*(?:"([^"]+)"|\{[^{}]*?"url"\s*:\s*"([^"]+)")`)
	reItemLogo  = regexp.MustCompile(`(?is)<(?:img|link|meta)\b[^>]*\bitemprop\s*=\s*["']logo["'][^>]*>`)
	reShopify   = regexp.MustCompile(`(?i)((?:https?:)?//cdn\.shopify\.com/s/files/[^"'\s<>)]*logo[^"'\s<>)]*)`)
	reWixMedia  = regexp.MustCompile(`(?i)((?:https?:)?//static\.wixstatic\.com/media/[^"'\s<>)]+)`)
	reLogoWord  = regexp.MustCompile(`(?i)logo|brand`)
)

// logoCandidates runs the pattern battery over rawHTML and returns absolute
// http(s) URLs, deduplicated by exact string in discovery order.
func logoCandidates(rawHTML, origin, ogImage string) []string {
	var found []string
	add := func(ref string) {
		if ref != "" {
			found = append(found, ref)
		}
	}

	// Favicons and touch icons.
	for _, m := range reLinkTag.FindAllStringSubmatch(rawHTML, -1) {
		attrs := parseAttrs(m[1])
		if strings.Contains(strings.ToLower(attrs["rel"]), "icon") {
			add(attrs["href"])
		}
	}

	// <img> tagged as logo or brand.
	for _, m := range reImgTag.FindAllStringSubmatch(rawHTML, -1) {
		attrs := parseAttrs(m[1])
		if reLogoWord.MatchString(attrs["class"] + " " + attrs["alt"] + " " + attrs["id"]) {
			add(imgSource(attrs))
		}
	}

	for _, m := range reHeaderNav.FindAllStringSubmatch(rawHTML, -1) {
		for _, img := range reImgTag.FindAllStringSubmatch(m[2], -1) {
			add(imgSource(parseAttrs(img[1])))
		}
	}

	for _, m := range reNamedBox.FindAllStringSubmatch(rawHTML, -1) {
		for _, img := range reImgTag.FindAllStringSubmatch(m[1], -1) {
			add(imgSource(parseAttrs(img[1])))
		}
	}

	for _, m := range reLogoFile.FindAllStringSubmatch(rawHTML, -1) {
		add(m[1])
	}

	add(ogImage)

	for _, m := range reSVGRef.FindAllStringSubmatch(rawHTML, -1) {
		add(m[1])
	}

	// CMS conventions: schema.org JSON-LD and microdata, Shopify and Wix CDNs.
	for _, m := range reLDLogo.FindAllStringSubmatch(rawHTML, -1) {
		add(m[1] + m[2])
	}
	for _, tag := range reItemLogo.FindAllString(rawHTML, -1) {
		attrs := parseAttrs(tag)
		add(firstNonEmpty(imgSource(attrs), attrs["href"], attrs["content"]))
	}
	for _, m := range reShopify.FindAllStringSubmatch(rawHTML, -1) {
		add(m[1])
	}
	for _, header := range reHeaderNav.FindAllStringSubmatch(rawHTML, -1) {
		for _, m := range reWixMedia.FindAllStringSubmatch(header[2], -1) {
			add(m[1])
		}
	}

	return absolutize(found, origin)
}

// imgSource returns the image URL of an <img>, including lazy-loading
// attributes and the first srcset entry.
func imgSource(attrs map[string]string) string {
	for _, key := range []string{"src", "data-src", "data-lazy-src", "data-original", "data-image"} {
		if v := strings.TrimSpace(attrs[key]); v != "" && !strings.HasPrefix(v, "data:") {
			return v
		}
	}
	for _, key := range []string{"srcset", "data-srcset"} {
		if v := strings.TrimSpace(attrs[key]); v != "" {
			first, _, _ := strings.Cut(v, ",")
			if fields := strings.Fields(first); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return ""
}

// absolutize resolves refs against origin, keeping only http(s) URLs.
func absolutize(refs []string, origin string) []string {
	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		abs := ResolveURL(base, ref)
		if abs == "" {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}

// ResolveURL resolves ref against base and returns it without its fragment,
// or "" when ref is not an http(s) resource.
func ResolveURL(base *url.URL, ref string) string {
	ref = strings.ReplaceAll(html.UnescapeString(strings.TrimSpace(ref)), `\/`, "/")
	lower := strings.ToLower(ref)
	if ref == "" || strings.HasPrefix(ref, "#") ||
		strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:") {
		return ""
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
