// Package pkg holds the srcsetlab libraries.
//
// # Overview
//
// srcsetlab builds responsive image markup for Unsplash photos. A photo page
// is resolved to its full-size image URL, and the image URL plus a
// parameter set becomes src, srcset and an <img> tag:
//
//	Unsplash photo page
//	         ↓
//	    [integrations/unsplash] (resolve urls.full, cached)
//	         ↓
//	    [imgparams] (Params, query merging, transformers)
//	         ↓
//	    [srcset] (widths, candidates, markup)
//
// [sandbox] tracks one interactive session and drops lookups that a newer
// one has superseded. [cache], [errors], [observability] and [buildinfo]
// are shared infrastructure.
//
// # Quick Start
//
//	client := unsplash.NewClient(cache.NewNullCache(), unsplash.Options{})
//	imageURL, err := client.ResolveImageURL(ctx, "https://unsplash.com/photos/-mUBrTfsu0A")
//	if err != nil {
//	    return err
//	}
//	res := srcset.Build(imgparams.Defaults(imageURL))
//	fmt.Println(res.Markup)
package pkg
