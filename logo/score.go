package logo

import (
	"net/url"
	"path"
	"sort"
	"strings"
)

// Weights are the additive points of the logo heuristic. The defaults were
// tuned by hand against real homepages; callers may pass their own.
type Weights struct {
	Logo     int
	Brand    int
	Identity int
	Header   int
	// IconSVG applies to "icon" paths with an .svg extension, favicons excluded.
	IconSVG int

	CompanyName int

	ExtSVG  int
	ExtPNG  int
	ExtWebP int
	ExtJPEG int

	TypeSVG  int
	TypePNG  int
	TypeWebP int
	TypeHTML int

	// SizeBand applies within (1KB, 500KB), SizeSweetSpot within (5KB, 100KB).
	SizeBand      int
	SizeSweetSpot int

	DirAssets  int // /assets/ /images/ /img/
	DirStatic  int // /static/ /media/
	DirUploads int // /uploads/ /content/

	Favicon        int
	TinyIcon       int // icon-16, icon-32
	AppleTouchIcon int

	ShallowPath   int // <= 4 segments
	ShallowerPath int // <= 3 segments, on top of ShallowPath
	RootFile      int // origin/file.ext
}

// DefaultWeights returns the stock scoring profile.
func DefaultWeights() Weights {
	return Weights{
		Logo:     15,
		Brand:    12,
		Identity: 10,
		Header:   8,
		IconSVG:  12,

		CompanyName: 20,

		ExtSVG:  15,
		ExtPNG:  8,
		ExtWebP: 6,
		ExtJPEG: 4,

		TypeSVG:  8,
		TypePNG:  6,
		TypeWebP: 4,
		TypeHTML: -50,

		SizeBand:      5,
		SizeSweetSpot: 3,

		DirAssets:  4,
		DirStatic:  3,
		DirUploads: 2,

		Favicon:        -3,
		TinyIcon:       -5,
		AppleTouchIcon: 2,

		ShallowPath:   3,
		ShallowerPath: 2,
		RootFile:      5,
	}
}

// Scorer ranks probed candidates.
type Scorer struct {
	w Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Rank scores every successfully probed candidate and returns them sorted
// by descending score, ties in discovery order. The one exception to score
// order: candidates served as text/html sort after every other candidate,
// even one with a lower Score, so an HTML page is only chosen when nothing
// else answered. Failed probes are dropped, so a batch where nothing
// answered yields an empty slice.
func (s *Scorer) Rank(cands []Candidate, companyName string) []Candidate {
	slug := Slug(companyName)
	ranked := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !c.OK {
			continue
		}
		c.Score = s.Score(c, slug)
		ranked = append(ranked, c)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		hi, hj := ranked[i].IsHTML(), ranked[j].IsHTML()
		if hi != hj {
			return hj
		}
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})
	return ranked
}

// Score computes the heuristic score of one candidate. slug is the
// company-name slug from Slug, or "".
func (s *Scorer) Score(c Candidate, slug string) int {
	w := s.w
	p := candidatePath(c.URL)
	ext := path.Ext(p)
	favicon := strings.Contains(p, "favicon")
	score := 0

	if strings.Contains(p, "logo") {
		score += w.Logo
	}
	if strings.Contains(p, "brand") {
		score += w.Brand
	}
	if strings.Contains(p, "identity") {
		score += w.Identity
	}
	if strings.Contains(p, "header") {
		score += w.Header
	}
	if strings.Contains(p, "icon") && ext == ".svg" && !favicon {
		score += w.IconSVG
	}

	if slug != "" && strings.Contains(Slug(p), slug) {
		score += w.CompanyName
	}

	switch ext {
	case ".svg":
		score += w.ExtSVG
	case ".png":
		score += w.ExtPNG
	case ".webp":
		score += w.ExtWebP
	case ".jpg", ".jpeg":
		score += w.ExtJPEG
	}

	ct := strings.ToLower(c.ContentType)
	switch {
	case strings.HasPrefix(ct, "image/svg"):
		score += w.TypeSVG
	case strings.HasPrefix(ct, "image/png"):
		score += w.TypePNG
	case strings.HasPrefix(ct, "image/webp"):
		score += w.TypeWebP
	case strings.HasPrefix(ct, "text/html"):
		score += w.TypeHTML
	}

	if n := c.ContentLength; n > 1<<10 && n < 500<<10 {
		score += w.SizeBand
		if n > 5<<10 && n < 100<<10 {
			score += w.SizeSweetSpot
		}
	}

	switch {
	case containsAny(p, "/assets/", "/images/", "/img/"):
		score += w.DirAssets
	case containsAny(p, "/static/", "/media/"):
		score += w.DirStatic
	case containsAny(p, "/uploads/", "/content/"):
		score += w.DirUploads
	}

	switch {
	case strings.Contains(p, "apple-touch-icon"):
		score += w.AppleTouchIcon
	case containsAny(p, "icon-16", "icon-32"):
		score += w.TinyIcon
	case favicon:
		score += w.Favicon
	}

	segments := strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
	if len(segments) <= 4 {
		score += w.ShallowPath
		if len(segments) <= 3 {
			score += w.ShallowerPath
		}
	}
	if len(segments) == 1 && ext != "" {
		score += w.RootFile
	}
	return score
}

// candidatePath returns the lowercased URL path. Host and query never
// contribute to the score.
func candidatePath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}
	return strings.ToLower(u.Path)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
