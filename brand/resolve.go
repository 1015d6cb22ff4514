package brand

import (
	"strings"

	"github.com/use-agent/brandkit/enhance"
	"github.com/use-agent/brandkit/extractor"
	"github.com/use-agent/brandkit/logo"
	"github.com/use-agent/brandkit/models"
)

// Palette used when the page yields no usable color.
const (
	DefaultPrimaryColor   = "#8b5cf6"
	DefaultSecondaryColor = "#06b6d4"
)

const maxKeywords = 4

// ResolveInput is everything the resolver merges.
type ResolveInput struct {
	Signals *extractor.Signals
	// Ranked is the scorer output, best first.
	Ranked []logo.Candidate
	AI     enhance.Result
}

// Resolve merges heuristic and AI findings into a complete profile. AI
// values win wherever they are non-empty, except for the logo, where a
// successfully probed candidate is preferred over the model's suggestion.
func Resolve(in ResolveInput) *models.BrandProfile {
	s := in.Signals
	if s == nil {
		s = &extractor.Signals{}
	}
	ai := in.AI

	primary, secondary := heuristicPalette(s.Colors)

	p := &models.BrandProfile{
		CompanyName:    pick(ai.CompanyName, s.CompanyName),
		Description:    pick(ai.Description, s.Description),
		Industry:       pick(ai.Industry, s.Industry),
		PrimaryColor:   pick(ai.PrimaryColor, primary),
		SecondaryColor: pick(ai.SecondaryColor, secondary),
		Fonts:          pickList(ai.Fonts, s.Fonts),
		Keywords:       capKeywords(pickList(ai.Keywords, s.Keywords)),
	}

	p.Logo = ai.Logo
	if len(in.Ranked) > 0 {
		p.Logo = in.Ranked[0].URL
	}
	return p
}

// heuristicPalette chooses primary and secondary from the extracted colors.
// When the first two are equal, the next distinct color becomes secondary.
func heuristicPalette(colors []string) (primary, secondary string) {
	if len(colors) == 0 {
		return DefaultPrimaryColor, DefaultSecondaryColor
	}
	primary = colors[0]
	secondary = DefaultSecondaryColor
	if len(colors) >= 2 {
		secondary = colors[1]
		if strings.EqualFold(secondary, primary) {
			for _, c := range colors[2:] {
				if !strings.EqualFold(c, primary) {
					secondary = c
					break
				}
			}
		}
	}
	return primary, secondary
}

func pick(ai, heuristic string) string {
	if ai = strings.TrimSpace(ai); ai != "" {
		return ai
	}
	return heuristic
}

func pickList(ai, heuristic []string) []string {
	src := heuristic
	if len(ai) > 0 {
		src = ai
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// capKeywords lowercases, drops duplicates and keeps at most four.
func capKeywords(keywords []string) []string {
	out := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}
