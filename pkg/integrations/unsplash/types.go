package unsplash

// Photo is the subset of the Unsplash photo document the sandbox reads.
type Photo struct {
	ID          string `json:"id,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Description string `json:"description,omitempty"`
	URLs        URLs   `json:"urls"`
}

// URLs lists the rendition URLs of a photo. Full is the original-size image
// served through the Imgix-backed CDN, which honors the srcset query
// parameters.
type URLs struct {
	Raw     string `json:"raw,omitempty"`
	Full    string `json:"full"`
	Regular string `json:"regular,omitempty"`
	Small   string `json:"small,omitempty"`
	Thumb   string `json:"thumb,omitempty"`
}
