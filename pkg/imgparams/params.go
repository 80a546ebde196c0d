package imgparams

// DefaultSourceURL is the Unsplash photo page the sandbox starts with.
const DefaultSourceURL = "https://unsplash.com/photos/-mUBrTfsu0A"

// Default parameter values used by every front end.
const (
	DefaultNumBreakpoints = 5
	DefaultMinWidth       = 300
	DefaultMaxWidth       = 600
	DefaultMaxHeight      = 400
	DefaultFocalPointX    = 0.5
	DefaultFocalPointY    = 0.5
	DefaultFocalPointZ    = 1.0
)

// Params is the configuration of one responsive image.
//
// Params is copied on every transformation and must never be modified
// through a shared pointer. Use the With* helpers or the transformer
// functions to derive new values.
type Params struct {
	BaseURL          string  `json:"base_url" toml:"-"`
	NumBreakpoints   int     `json:"num_breakpoints" toml:"breakpoints"`
	MinWidth         int     `json:"min_width" toml:"min_width"`
	MaxWidth         int     `json:"max_width" toml:"max_width"`
	MaxHeight        int     `json:"max_height" toml:"max_height"` // display hint only
	Retina           bool    `json:"retina" toml:"retina"`
	Debug            bool    `json:"debug" toml:"debug"`
	EnableFocalPoint bool    `json:"enable_focal_point" toml:"focal_point"`
	FocalPointX      float64 `json:"focal_point_x" toml:"fp_x"`
	FocalPointY      float64 `json:"focal_point_y" toml:"fp_y"`
	FocalPointZ      float64 `json:"focal_point_z" toml:"fp_z"`
}

// Defaults returns the sandbox's initial parameters for baseURL.
func Defaults(baseURL string) Params {
	return Params{
		BaseURL:        baseURL,
		NumBreakpoints: DefaultNumBreakpoints,
		MinWidth:       DefaultMinWidth,
		MaxWidth:       DefaultMaxWidth,
		MaxHeight:      DefaultMaxHeight,
		Retina:         true,
		Debug:          true,
		FocalPointX:    DefaultFocalPointX,
		FocalPointY:    DefaultFocalPointY,
		FocalPointZ:    DefaultFocalPointZ,
	}
}

// WithBaseURL returns a copy of p pointing at url.
func (p Params) WithBaseURL(url string) Params {
	p.BaseURL = url
	return p
}

// WithWidthRange returns a copy of p with new width bounds.
func (p Params) WithWidthRange(min, max int) Params {
	p.MinWidth = min
	p.MaxWidth = max
	return p
}

// WithFocalPoint returns a copy of p with focal-point cropping enabled at
// (x, y) and zoom z.
func (p Params) WithFocalPoint(x, y, z float64) Params {
	p.EnableFocalPoint = true
	p.FocalPointX = x
	p.FocalPointY = y
	p.FocalPointZ = z
	return p
}

// Range describes the bounds and step of an adjustable control.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	return min(max(v, r.Min), r.Max)
}

// Control ranges shared by the HTML form and the terminal sandbox.
var (
	BreakpointsRange = Range{Min: 1, Max: 15, Step: 1}
	FocalPointRange  = Range{Min: 0, Max: 1, Step: 0.001}
	ZoomRange        = Range{Min: 0.25, Max: 3, Step: 0.05}
)
