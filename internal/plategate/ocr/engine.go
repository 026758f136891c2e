package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
)

// Backend names accepted by New.
const (
	BackendTesseract   = "tesseract"
	BackendRekognition = "rekognition"
	BackendNone        = "none"
)

type Config struct {
	Backend       string
	Languages     []string
	MinConfidence float64 // 0..1
	AWSRegion     string
}

// New builds the configured engine. The returned closer releases engine
// resources and is never nil.
func New(ctx context.Context, cfg Config) (Engine, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendTesseract, "":
		t, err := NewTesseract(cfg.Languages)
		if err != nil {
			return nil, nil, err
		}
		return t, t, nil
	case BackendRekognition:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewRekognition(rekognition.NewFromConfig(awsCfg), cfg.MinConfidence), nopCloser{}, nil
	case BackendNone:
		return Disabled{}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
