// Package srcset builds the src and srcset attribute values of a responsive
// <img> tag from [imgparams.Params].
//
// Widths are spaced linearly between MinWidth and MaxWidth. Every width
// yields one candidate URL with a "w" descriptor and, when Retina is set, a
// second candidate at double width and dpr=2:
//
//	p := imgparams.Defaults(imageURL)
//	res := srcset.Build(p)
//	fmt.Println(res.Markup)
//
// The generator is pure and safe for concurrent use.
package srcset
