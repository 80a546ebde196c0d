package server

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
)

// Query keys. They match the [defaults] keys of the config file.
const (
	keyURL         = "url"
	keyBreakpoints = "breakpoints"
	keyMinWidth    = "min_width"
	keyMaxWidth    = "max_width"
	keyMaxHeight   = "max_height"
	keyRetina      = "retina"
	keyDebug       = "debug"
	keyFocalPoint  = "focal_point"
	keyFPX         = "fp_x"
	keyFPY         = "fp_y"
	keyFPZ         = "fp_z"

	// keyForm marks a submission of the parameter form, where an absent
	// checkbox means unchecked rather than unchanged.
	keyForm = "form"
)

// parseParams overlays the parameters found in q onto prev. Fields that are
// missing or do not parse keep their previous value.
func parseParams(q url.Values, prev imgparams.Params) imgparams.Params {
	p := prev
	p.NumBreakpoints = intField(q, keyBreakpoints, p.NumBreakpoints)
	p = p.WithWidthRange(intField(q, keyMinWidth, p.MinWidth), intField(q, keyMaxWidth, p.MaxWidth))
	p.MaxHeight = intField(q, keyMaxHeight, p.MaxHeight)

	form := q.Has(keyForm)
	p.Retina = boolField(q, keyRetina, form, p.Retina)
	p.Debug = boolField(q, keyDebug, form, p.Debug)
	p.EnableFocalPoint = boolField(q, keyFocalPoint, form, p.EnableFocalPoint)

	p.FocalPointX = floatField(q, keyFPX, p.FocalPointX)
	p.FocalPointY = floatField(q, keyFPY, p.FocalPointY)
	p.FocalPointZ = floatField(q, keyFPZ, p.FocalPointZ)
	return p
}

// formParams is parseParams for the sandbox form, whose breakpoint input
// is a bounded control: out-of-range counts snap to the nearest bound.
func formParams(q url.Values, prev imgparams.Params) imgparams.Params {
	p := parseParams(q, prev)
	r := imgparams.BreakpointsRange
	p.NumBreakpoints = min(max(p.NumBreakpoints, int(r.Min)), int(r.Max))
	return p
}

// encodeParams is the inverse of parseParams.
func encodeParams(p imgparams.Params) url.Values {
	q := url.Values{}
	q.Set(keyBreakpoints, strconv.Itoa(p.NumBreakpoints))
	q.Set(keyMinWidth, strconv.Itoa(p.MinWidth))
	q.Set(keyMaxWidth, strconv.Itoa(p.MaxWidth))
	q.Set(keyMaxHeight, strconv.Itoa(p.MaxHeight))
	q.Set(keyRetina, strconv.FormatBool(p.Retina))
	q.Set(keyDebug, strconv.FormatBool(p.Debug))
	q.Set(keyFocalPoint, strconv.FormatBool(p.EnableFocalPoint))
	q.Set(keyFPX, strconv.FormatFloat(p.FocalPointX, 'f', -1, 64))
	q.Set(keyFPY, strconv.FormatFloat(p.FocalPointY, 'f', -1, 64))
	q.Set(keyFPZ, strconv.FormatFloat(p.FocalPointZ, 'f', -1, 64))
	return q
}

func intField(q url.Values, key string, prev int) int {
	if !q.Has(key) {
		return prev
	}
	v, err := strconv.Atoi(strings.TrimSpace(q.Get(key)))
	if err != nil {
		return prev
	}
	return v
}

func floatField(q url.Values, key string, prev float64) float64 {
	if !q.Has(key) {
		return prev
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(q.Get(key)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return prev
	}
	return v
}

func boolField(q url.Values, key string, form, prev bool) bool {
	if !q.Has(key) {
		if form {
			return false
		}
		return prev
	}
	switch strings.ToLower(strings.TrimSpace(q.Get(key))) {
	case "", "on", "1", "true", "yes":
		return true
	case "0", "false", "off", "no":
		return false
	}
	return prev
}
