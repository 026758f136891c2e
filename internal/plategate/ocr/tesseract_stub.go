//go:build !tesseract

package ocr

import "errors"

// Tesseract is only available in binaries built with -tags tesseract.
type Tesseract struct{ Engine }

func NewTesseract([]string) (*Tesseract, error) {
	return nil, errors.New("tesseract backend not compiled in (build with -tags tesseract)")
}

func (t *Tesseract) Close() error { return nil }
