package ioutils

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// ImageService converts cover art to the saved PNG form.
type ImageService struct {
	scaler draw.Scaler
}

// NewImageService creates an ImageService scaling with Catmull-Rom.
func NewImageService() *ImageService {
	return &ImageService{scaler: draw.CatmullRom}
}

// fit returns the size of a w x h image scaled down so that neither edge
// exceeds edge. ok is false when no scaling is needed.
func fit(w, h, edge int) (fw, fh int, ok bool) {
	if edge <= 0 || (w <= edge && h <= edge) {
		return w, h, false
	}
	if w >= h {
		return edge, max(1, h*edge/w), true
	}
	return max(1, w*edge/h), edge, true
}

// ToPNG decodes data (JPEG, PNG or GIF) and returns it PNG-encoded, scaled
// to fit within maxSize x maxSize when maxSize is positive.
func (s *ImageService) ToPNG(data []byte, maxSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	src := img.Bounds()
	if w, h, ok := fit(src.Dx(), src.Dy(), maxSize); ok {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		s.scaler.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
		img = dst
	} else if format == "png" {
		return data, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
