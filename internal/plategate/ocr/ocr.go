// Package ocr wraps third-party text recognition engines behind one
// interface. Engines receive an already binarized image and return text
// fragments in their native order.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// Whitelist is the character set plates are written in.
const Whitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Engine interface {
	Name() string
	Recognize(ctx context.Context, img *image.Gray) ([]types.Candidate, error)
}

// Stage names where a recognition request failed.
const (
	StageDecode    = "decode"
	StageRecognize = "recognize"
)

var ErrDisabled = errors.New("ocr backend disabled")

// RecognitionError is returned for any failure between receiving image bytes
// and getting text back from the engine.
type RecognitionError struct {
	Engine string
	Stage  string
	Err    error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("recognition failed (%s/%s): %v", e.Engine, e.Stage, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

func recognitionErr(engine string, err error) error {
	return &RecognitionError{Engine: engine, Stage: StageRecognize, Err: err}
}

// filterText keeps whitelisted characters and single spaces between them.
func filterText(s string) string {
	s = strings.ToUpper(s)
	var b strings.Builder
	space := false
	for _, r := range s {
		switch {
		case strings.ContainsRune(Whitelist, r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '.':
			space = true
		}
	}
	return b.String()
}

// Disabled is the "none" backend.
type Disabled struct{}

func (Disabled) Name() string { return "none" }

func (Disabled) Recognize(context.Context, *image.Gray) ([]types.Candidate, error) {
	return nil, recognitionErr("none", ErrDisabled)
}
