package errors

import (
	"math"
	"net/url"
	"strings"
	"unicode"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
)

const maxURLLength = 2048

var maxBreakpoints = int(imgparams.BreakpointsRange.Max)

// ValidateURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return New(ErrCodeInvalidURL, "URL cannot be empty")
	}
	if len(rawURL) > maxURLLength {
		return New(ErrCodeInvalidURL, "URL too long (max %d characters)", maxURLLength)
	}
	for _, r := range rawURL {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidURL, "URL contains control characters")
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "malformed URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "URL must include a host")
	}
	return nil
}

// ValidateParams rejects parameter sets the srcset generator cannot make
// sense of. The generator itself never validates.
func ValidateParams(p imgparams.Params) error {
	switch {
	case p.NumBreakpoints < 1:
		return New(ErrCodeInvalidParams, "breakpoints must be at least 1, got %d", p.NumBreakpoints)
	case p.NumBreakpoints > maxBreakpoints:
		return New(ErrCodeInvalidParams, "breakpoints must be at most %d, got %d", maxBreakpoints, p.NumBreakpoints)
	case p.MinWidth <= 0:
		return New(ErrCodeInvalidParams, "min width must be positive, got %d", p.MinWidth)
	case p.MaxWidth < p.MinWidth:
		return New(ErrCodeInvalidParams, "max width %d is below min width %d", p.MaxWidth, p.MinWidth)
	case p.MaxHeight <= 0:
		return New(ErrCodeInvalidParams, "max height must be positive, got %d", p.MaxHeight)
	}
	if p.EnableFocalPoint {
		if !inUnit(p.FocalPointX) || !inUnit(p.FocalPointY) {
			return New(ErrCodeInvalidParams, "focal point (%g, %g) must lie within [0, 1]", p.FocalPointX, p.FocalPointY)
		}
		if !(p.FocalPointZ > 0) || math.IsInf(p.FocalPointZ, 0) {
			return New(ErrCodeInvalidParams, "focal point zoom must be positive, got %g", p.FocalPointZ)
		}
	}
	return nil
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1
}
