package srcset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
)

const (
	// SrcLabel is the debug text stamped on the fallback image.
	SrcLabel = "src original"

	// Separator joins srcset candidates.
	Separator = ", \n"

	retinaSuffix = "R"
)

// Candidate is one entry of a srcset attribute.
type Candidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`  // w descriptor
	Retina bool   `json:"retina"` // built with dpr=2
}

// String renders the candidate as "<url> <width>w".
func (c Candidate) String() string {
	return fmt.Sprintf("%s %dw", c.URL, c.Width)
}

// Result bundles everything a front end renders for one parameter set.
type Result struct {
	Src        string      `json:"src"`
	SrcSet     string      `json:"srcset"`
	Markup     string      `json:"markup"`
	Widths     []int       `json:"widths"`
	Candidates []Candidate `json:"candidates"`
}

// Build computes src, srcset and markup for p.
func Build(p imgparams.Params) Result {
	cands := Candidates(p)
	src := MakeSrc(p)
	set := Join(cands)
	return Result{
		Src:        src,
		SrcSet:     set,
		Markup:     Markup(src, set),
		Widths:     Widths(p),
		Candidates: cands,
	}
}

// MakeSrc returns the fallback URL. It carries the focal point and debug
// text but never w or dpr.
func MakeSrc(p imgparams.Params) string {
	p = focal(p)
	return imgparams.AddOptionalText(p, SrcLabel).BaseURL
}

// MakeSrcSet returns the srcset attribute value for p.
func MakeSrcSet(p imgparams.Params) string {
	return Join(Candidates(p))
}

// Join renders candidates separated by [Separator].
func Join(cands []Candidate) string {
	parts := make([]string, len(cands))
	for i, c := range cands {
		parts[i] = c.String()
	}
	return strings.Join(parts, Separator)
}

// Candidates lists the srcset entries of p in width order. With Retina each
// standard candidate is immediately followed by its double-width twin.
func Candidates(p imgparams.Params) []Candidate {
	base := focal(p)
	widths := Widths(p)

	n := len(widths)
	if p.Retina {
		n *= 2
	}
	out := make([]Candidate, 0, n)
	for _, w := range widths {
		label := strconv.Itoa(w)

		std := imgparams.AddOptionalText(imgparams.SetWidth(base, w), label)
		out = append(out, Candidate{URL: std.BaseURL, Width: w})

		if p.Retina {
			hi := imgparams.SetRetina(imgparams.SetWidth(base, w*2))
			hi = imgparams.AddOptionalText(hi, label+retinaSuffix)
			out = append(out, Candidate{URL: hi.BaseURL, Width: w * 2, Retina: true})
		}
	}
	return out
}

// Widths returns NumBreakpoints+1 widths spaced linearly from MinWidth to
// MaxWidth, rounded half-up and sorted ascending. Duplicates are kept.
// Entries that are not finite (NumBreakpoints == 0) are skipped; callers
// are expected to reject such parameters first.
func Widths(p imgparams.Params) []int {
	if p.NumBreakpoints < 0 {
		return nil
	}
	step := float64(p.MaxWidth-p.MinWidth) / float64(p.NumBreakpoints)

	widths := make([]int, 0, p.NumBreakpoints+1)
	for i := 0; i <= p.NumBreakpoints; i++ {
		w := float64(p.MinWidth) + float64(i)*step
		if math.IsNaN(w) || math.IsInf(w, 0) {
			continue
		}
		widths = append(widths, int(math.Floor(w+0.5)))
	}
	sort.Ints(widths)
	return widths
}

func focal(p imgparams.Params) imgparams.Params {
	if p.EnableFocalPoint {
		return imgparams.AddFocalPoint(p)
	}
	return p
}
