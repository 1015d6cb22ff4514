package enhance

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/use-agent/brandkit/extractor"
)

// firstJSONObject returns the first balanced {...} substring of text.
// Braces inside JSON string literals are not counted. A '{' that never
// closes is skipped and the scan resumes at the next one.
func firstJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := balancedEnd(text, start); ok {
			return text[start:end], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// balancedEnd scans from the '{' at start and returns the index just past
// its matching '}'.
func balancedEnd(text string, start int) (int, bool) {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// parseResult decodes the model's JSON answer field by field, so one field
// of the wrong type does not discard the others. Colors that are not valid
// CSS colors and logos that are not http(s) URLs are dropped.
func parseResult(text, origin string) (Result, error) {
	obj, ok := firstJSONObject(text)
	if !ok {
		return Result{}, ErrNoJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return Result{}, err
	}

	r := Result{
		CompanyName: stringField(fields, "companyName"),
		Description: stringField(fields, "description"),
		Industry:    stringField(fields, "industry"),
		Fonts:       listField(fields, "fonts"),
		Keywords:    listField(fields, "keywords"),
	}
	if c, ok := extractor.NormalizeColor(stringField(fields, "primaryColor")); ok {
		r.PrimaryColor = c
	}
	if c, ok := extractor.NormalizeColor(stringField(fields, "secondaryColor")); ok {
		r.SecondaryColor = c
	}
	if ref := stringField(fields, "logo"); ref != "" {
		if base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/"); err == nil {
			r.Logo = extractor.ResolveURL(base, ref)
		}
	}
	return r, nil
}

func stringField(fields map[string]json.RawMessage, key string) string {
	var s string
	if err := json.Unmarshal(fields[key], &s); err != nil {
		return ""
	}
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") || s == "N/A" {
		return ""
	}
	return s
}

// listField accepts either a JSON array of strings or a comma-separated string.
func listField(fields map[string]json.RawMessage, key string) []string {
	var items []string
	if err := json.Unmarshal(fields[key], &items); err != nil {
		s := stringField(fields, key)
		if s == "" {
			return nil
		}
		items = strings.Split(s, ",")
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
