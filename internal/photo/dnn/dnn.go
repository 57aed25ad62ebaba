// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dnn detects faces with OpenCV's ResNet-10 SSD face model.
package dnn

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const inputSize = 300

// Detector wraps a loaded Caffe network. It is safe for concurrent use; calls
// are serialized because a gocv.Net holds per-inference state.
type Detector struct {
	mu         sync.Mutex
	net        gocv.Net
	confidence float32
}

// New loads the network from prototxt and model. Detections at or below
// confidence are ignored.
func New(prototxt, model string, confidence float64) (*Detector, error) {
	net := gocv.ReadNetFromCaffe(prototxt, model)
	if net.Empty() {
		return nil, fmt.Errorf("loading face model %s (%s)", model, prototxt)
	}
	return &Detector{net: net, confidence: float32(confidence)}, nil
}

// CountFaces returns the number of detections above the confidence
// threshold.
func (d *Detector) CountFaces(img image.Image) (int, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return 0, fmt.Errorf("converting image: %w", err)
	}
	defer src.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(src, &resized, image.Pt(inputSize, inputSize), 0, 0, gocv.InterpolationLinear)

	blob := gocv.BlobFromImage(resized, 1.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(104, 177, 123, 0), false, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	// Output is 1×1×N×7: [image, label, confidence, x1, y1, x2, y2] per row.
	faces := 0
	for i := 0; i+2 < out.Total(); i += 7 {
		if out.GetFloatAt(0, i+2) > d.confidence {
			faces++
		}
	}
	return faces, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	return d.net.Close()
}
