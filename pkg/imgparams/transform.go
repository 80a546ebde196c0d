package imgparams

import "strconv"

// Query parameter keys understood by the image service.
const (
	KeyWidth     = "w"
	KeyDPR       = "dpr"
	KeyTxtAlign  = "txtalign"
	KeyTxtColor  = "txtclr"
	KeyTxtFont   = "txtfont"
	KeyTxtSize   = "txtsize"
	KeyTxtFit    = "txtfit"
	KeyTxt       = "txt"
	KeyFit       = "fit"
	KeyCrop      = "crop"
	KeyFPX       = "fp-x"
	KeyFPY       = "fp-y"
	KeyFPZ       = "fp-z"
	KeyFPDebug   = "fp-debug"
	retinaFactor = "2"
)

// SetWidth requests the image at width pixels.
func SetWidth(p Params, width int) Params {
	return p.WithBaseURL(MergeQuery(p.BaseURL, Pair{KeyWidth, strconv.Itoa(width)}))
}

// SetRetina requests double pixel density.
func SetRetina(p Params) Params {
	return p.WithBaseURL(MergeQuery(p.BaseURL, Pair{KeyDPR, retinaFactor}))
}

// AddOptionalText stamps text onto the image when p.Debug is set.
// Without Debug the empty set is merged and BaseURL stays unchanged.
func AddOptionalText(p Params, text string) Params {
	return p.WithBaseURL(MergeQuery(p.BaseURL, debugText(p.Debug, text)...))
}

func debugText(debug bool, text string) []Pair {
	if !debug {
		return nil
	}
	return []Pair{
		{KeyTxtAlign, "middle,center"},
		{KeyTxtColor, "fff"},
		{KeyTxtFont, "helvetica,bold"},
		{KeyTxtSize, "100"},
		{KeyTxtFit, "max"},
		{KeyTxt, text},
	}
}

// AddFocalPoint requests a focal-point crop centered on
// (FocalPointX, FocalPointY) with zoom FocalPointZ. The crop overlay is
// drawn when p.Debug is set.
func AddFocalPoint(p Params) Params {
	return p.WithBaseURL(MergeQuery(p.BaseURL,
		Pair{KeyFit, "crop"},
		Pair{KeyCrop, "focalpoint"},
		Pair{KeyFPX, formatFloat(p.FocalPointX)},
		Pair{KeyFPY, formatFloat(p.FocalPointY)},
		Pair{KeyFPZ, formatFloat(p.FocalPointZ)},
		Pair{KeyFPDebug, strconv.FormatBool(p.Debug)},
	))
}
