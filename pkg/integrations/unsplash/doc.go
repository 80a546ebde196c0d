// Package unsplash resolves Unsplash photo page URLs into full-resolution
// image URLs.
//
// Two lookup modes are supported. Without an access key the client asks a
// lookup endpoint (GET <endpoint>?url=<page>) that proxies the Unsplash API.
// With an access key it calls the Unsplash API directly
// (GET <api>/photos/<id>). Both return a photo document whose urls.full
// field seeds the srcset generator.
package unsplash
