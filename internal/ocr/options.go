// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ocr

// InputOption mutates an Input.
type InputOption func(*Input)

// NewInput builds an input for a PNG image.
func NewInput(id string, png []byte, opts ...InputOption) Input {
	in := Input{ID: id, Image: png}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// WithLanguages sets the recognition languages.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion restricts recognition to region. An empty region clears any
// previous restriction.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI records the image resolution.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithPSM sets the page segmentation mode.
func WithPSM(psm int) InputOption {
	return func(in *Input) { in.PSM = psm }
}

// WithWhitelist limits the recognized characters.
func WithWhitelist(chars string) InputOption {
	return func(in *Input) { in.Whitelist = chars }
}

// WithMetadata copies engine variables onto the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}
