package ioutils

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

// ImageService renders cover art thumbnails.
//
// Example usage:
//
//	svc := NewImageService()
//	thumb, err := svc.Thumbnail(artwork, 300)
type ImageService struct {
	quality int
}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{quality: 90}
}

// Thumbnail resizes an image to fit within maxSize x maxSize and encodes it
// as JPEG.
//
// The aspect ratio is preserved. Images already within bounds keep their
// size but are still re-encoded. The Catmull-Rom kernel is used for scaling.
//
// Example:
//
//	// A 640x480 cover becomes 300x225
//	thumb, err := svc.Thumbnail(data, 300)
func (s *ImageService) Thumbnail(data []byte, maxSize int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxSize)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// fit scales width x height down to fit a square of side maxSize.
func fit(width, height, maxSize int) (int, int) {
	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return width, height
	}
	if width >= height {
		return maxSize, max(1, height*maxSize/width)
	}
	return max(1, width*maxSize/height), maxSize
}
