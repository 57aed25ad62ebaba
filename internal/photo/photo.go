// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package photo finds pages that carry a photograph of a person. A page
// counts as a photo page when the face detector reports at least one face.
package photo

import (
	"context"
	"fmt"
	"image"

	"github.com/rs/zerolog"

	"github.com/pdiddy/kanapdf/internal/render"
	"github.com/pdiddy/kanapdf/pkg/types"
)

// FaceDetector counts faces in an image whose detection confidence is above
// the detector's threshold.
type FaceDetector interface {
	CountFaces(img image.Image) (int, error)
}

// Classify renders every page of data at cfg.DPI and marks the pages on which
// det finds a face. Rendering or detection failures on a single page are
// logged and the page counts as not a photo.
func Classify(ctx context.Context, r render.Renderer, det FaceDetector, data []byte, cfg types.PhotoConfig, log zerolog.Logger) ([]bool, error) {
	doc, err := r.Open(data)
	if err != nil {
		return nil, fmt.Errorf("opening document for photo detection: %w", err)
	}
	defer doc.Close()

	marks := make([]bool, doc.NumPage())
	photos := 0
	for i := range marks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.Image(i, cfg.DPI)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("rendering page for photo detection")
			continue
		}
		faces, err := det.CountFaces(img)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("face detection failed")
			continue
		}
		if faces > 0 {
			marks[i] = true
			photos++
			log.Debug().Int("page", i+1).Int("faces", faces).Msg("photo page")
		}
	}

	log.Info().Int("pages", len(marks)).Int("photos", photos).Msg("photo detection complete")
	return marks, nil
}
