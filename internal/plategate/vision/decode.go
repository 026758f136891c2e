// Package vision turns an uploaded plate photo into a binarized image that
// an OCR engine can read.
package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sunshineplan/imgconv"
)

var (
	ErrEmptyImage       = errors.New("image is empty")
	ErrUnsupportedImage = errors.New("unsupported image type")
)

var supportedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/tiff",
	"image/webp",
}

// DetectImageType returns the sniffed MIME type of data, or
// ErrUnsupportedImage when it is not one of the raster formats we decode.
func DetectImageType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	mt := mimetype.Detect(data)
	for _, t := range supportedTypes {
		if mt.Is(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
}

// Decode sniffs and decodes an uploaded image.
func Decode(data []byte) (image.Image, error) {
	if _, err := DetectImageType(data); err != nil {
		return nil, err
	}
	img, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
