//go:build tesseract

package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// Tesseract runs recognition in-process through libtesseract. The client is
// not safe for concurrent use, so calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

func NewTesseract(languages []string) (*Tesseract, error) {
	client := gosseract.NewClient()
	if len(languages) > 0 {
		if err := client.SetLanguage(languages...); err != nil {
			client.Close()
			return nil, err
		}
	}
	if err := client.SetWhitelist(Whitelist); err != nil {
		client.Close()
		return nil, err
	}
	if err := client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		client.Close()
		return nil, err
	}
	return &Tesseract{client: client}, nil
}

func (t *Tesseract) Name() string { return "tesseract" }

func (t *Tesseract) Recognize(_ context.Context, img *image.Gray) ([]types.Candidate, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, recognitionErr(t.Name(), err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, recognitionErr(t.Name(), err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, recognitionErr(t.Name(), err)
	}

	cands := make([]types.Candidate, 0, len(boxes))
	for _, b := range boxes {
		text := filterText(b.Word)
		if text == "" {
			continue
		}
		conf := b.Confidence / 100
		box := b.Box
		cands = append(cands, types.Candidate{Text: text, Confidence: &conf, Box: &box})
	}
	return cands, nil
}

func (t *Tesseract) Close() error {
	return t.client.Close()
}
