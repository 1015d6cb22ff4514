package extractor

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	reStyleBlock = regexp.MustCompile(`(?is)<style\b[^>]*>(.*?)</style>`)
	reStyleAttr  = regexp.MustCompile(`(?is)\sstyle\s*=\s*(?:"([^"]*)"|'([^']*)')`)
	reCustomProp = regexp.MustCompile(`(?i)(--[a-z0-9_-]+)\s*:\s*([^;{}]+)`)
	reColorToken = regexp.MustCompile(`(?i)#[0-9a-f]{6}\b|#[0-9a-f]{3}\b|rgba?\([^)]*\)|hsla?\([^)]*\)|var\(\s*--[a-z0-9_-]+\s*(?:,[^)]*)?\)`)
	reVarName    = regexp.MustCompile(`(?i)var\(\s*(--[a-z0-9_-]+)`)
)

// colors collects brand colors in signal-strength order: theme-color, CSS
// custom properties, <style> blocks, then inline style attributes.
func (e *Extractor) colors(rawHTML, themeColor string) []string {
	var css []string
	for _, m := range reStyleBlock.FindAllStringSubmatch(rawHTML, -1) {
		css = append(css, m[1])
	}
	var inline []string
	for _, m := range reStyleAttr.FindAllStringSubmatch(rawHTML, -1) {
		inline = append(inline, m[1]+m[2])
	}

	props := make(map[string]string)
	var propOrder []string
	for _, chunk := range append(append([]string{}, css...), inline...) {
		for _, m := range reCustomProp.FindAllStringSubmatch(chunk, -1) {
			name := strings.ToLower(m[1])
			if _, seen := props[name]; !seen {
				props[name] = strings.TrimSpace(m[2])
				propOrder = append(propOrder, name)
			}
		}
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(token string) {
		if len(out) >= maxColors {
			return
		}
		hex, ok := e.resolveColor(token, props, 0)
		if !ok {
			return
		}
		if _, denied := e.denylist[hex]; denied {
			return
		}
		if _, dup := seen[hex]; dup {
			return
		}
		seen[hex] = struct{}{}
		out = append(out, hex)
	}

	if themeColor != "" {
		add(themeColor)
	}
	for _, name := range propOrder {
		for _, token := range reColorToken.FindAllString(props[name], -1) {
			add(token)
		}
	}
	for _, chunk := range css {
		for _, token := range reColorToken.FindAllString(chunk, -1) {
			add(token)
		}
	}
	for _, chunk := range inline {
		for _, token := range reColorToken.FindAllString(chunk, -1) {
			add(token)
		}
	}
	return out
}

// resolveColor converts a color token to #rrggbb, following var() references
// through the document's custom properties.
func (e *Extractor) resolveColor(token string, props map[string]string, depth int) (string, bool) {
	token = strings.TrimSpace(token)
	if m := reVarName.FindStringSubmatch(token); m != nil {
		if depth > 3 {
			return "", false
		}
		value, ok := props[strings.ToLower(m[1])]
		if !ok {
			// var(--x, fallback)
			if _, fallback, found := strings.Cut(token, ","); found {
				value = fallback
			}
		}
		inner := reColorToken.FindString(value)
		if inner == "" {
			return "", false
		}
		return e.resolveColor(inner, props, depth+1)
	}
	return NormalizeColor(token)
}

// NormalizeColor converts a hex, rgb(a) or hsl(a) color to lowercase
// #rrggbb. Fully transparent colors are rejected.
func NormalizeColor(token string) (string, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	switch {
	case strings.HasPrefix(token, "#"):
		return normalizeHex(token)
	case strings.HasPrefix(token, "rgb"):
		return parseRGB(token)
	case strings.HasPrefix(token, "hsl"):
		return parseHSL(token)
	}
	return "", false
}

func normalizeHex(token string) (string, bool) {
	hex := strings.TrimPrefix(token, "#")
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", false
		}
	}
	switch len(hex) {
	case 3:
		return "#" + string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}), true
	case 6:
		return "#" + hex, true
	}
	return "", false
}

// colorArgs splits "rgba(1, 2, 3 / 50%)" style arguments.
func colorArgs(token string) []string {
	open := strings.IndexByte(token, '(')
	end := strings.LastIndexByte(token, ')')
	if open < 0 || end < open {
		return nil
	}
	return strings.FieldsFunc(token[open+1:end], func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
}

func parseRGB(token string) (string, bool) {
	args := colorArgs(token)
	if len(args) < 3 {
		return "", false
	}
	var rgb [3]float64
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(args[i], 255)
		if !ok {
			return "", false
		}
		rgb[i] = v
	}
	if len(args) > 3 && isTransparent(args[3]) {
		return "", false
	}
	return toHex(rgb[0], rgb[1], rgb[2]), true
}

func parseHSL(token string) (string, bool) {
	args := colorArgs(token)
	if len(args) < 3 {
		return "", false
	}
	h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
	if err != nil {
		return "", false
	}
	s, ok1 := parseChannel(args[1], 1)
	l, ok2 := parseChannel(args[2], 1)
	if !ok1 || !ok2 {
		return "", false
	}
	if len(args) > 3 && isTransparent(args[3]) {
		return "", false
	}

	h = math.Mod(math.Mod(h, 360)+360, 360) / 360
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		q := l * (1 + s)
		if l >= 0.5 {
			q = l + s - l*s
		}
		p := 2*l - q
		r = hueToRGB(p, q, h+1.0/3)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3)
	}
	return toHex(r*255, g*255, b*255), true
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	}
	return p
}

// parseChannel parses "128" or "50%" into [0, scale].
func parseChannel(arg string, scale float64) (float64, bool) {
	if strings.HasSuffix(arg, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp(v/100*scale, scale), true
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, false
	}
	if scale == 1 && v > 1 {
		// hsl saturation/lightness written without "%".
		v /= 100
	}
	return clamp(v, scale), true
}

func isTransparent(alpha string) bool {
	v, ok := parseChannel(alpha, 1)
	return ok && v == 0
}

func clamp(v, max float64) float64 {
	return math.Min(math.Max(v, 0), max)
}

func toHex(r, g, b float64) string {
	return fmt.Sprintf("#%02x%02x%02x", int(math.Round(r)), int(math.Round(g)), int(math.Round(b)))
}
