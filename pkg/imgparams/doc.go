// Package imgparams models the parameters of a responsive image and the
// query-string transformations that turn them into image service URLs.
//
// # Parameters
//
// [Params] is a value type. Every transformation takes a Params and returns
// a new one with only BaseURL changed, so the src fallback and every srcset
// candidate can be derived from the same starting point without observing
// each other's intermediate URLs:
//
//	p := imgparams.Defaults("https://images.unsplash.com/photo-1")
//	wide := imgparams.SetWidth(p, 1200)   // p.BaseURL is untouched
//	hidpi := imgparams.SetRetina(wide)
//
// # Query merging
//
// [MergeQuery] layers query parameters onto a URL. Keys that already exist
// are overwritten in place and new keys are appended, so applying
// SetWidth twice leaves a single w parameter.
//
// No pixels are touched here: the remote image service performs the actual
// resizing, cropping and text overlay when the URL is requested.
package imgparams
