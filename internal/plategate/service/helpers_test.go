package service_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carbonaccess/plategate/internal/plategate/plate"
	"github.com/carbonaccess/plategate/internal/plategate/service"
	"github.com/carbonaccess/plategate/internal/plategate/store/memory"
	"github.com/carbonaccess/plategate/internal/plategate/types"
	"github.com/carbonaccess/plategate/internal/plategate/vision"
)

// fakeEngine returns canned candidates or a canned error.
type fakeEngine struct {
	cands []types.Candidate
	err   error
	calls int
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(context.Context, *image.Gray) ([]types.Candidate, error) {
	f.calls++
	return f.cands, f.err
}

type testEnv struct {
	registry *service.RegistryService
	access   *service.AccessService
	reports  *service.ReportService
	events   *memory.AccessEventStore
	engine   *fakeEngine
}

func newTestEnv(t *testing.T, policy service.AccessPolicy) testEnv {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := memory.NewRegistry()
	es := memory.NewAccessEventStore(reg)
	engine := &fakeEngine{}

	registry := service.NewRegistryService(reg, reg, log)
	access := service.NewAccessService(registry, es, policy, service.Pipeline{
		Engine:     engine,
		Preprocess: vision.Options{Threshold: vision.ThresholdOtsu, Invert: true},
		Extractor:  plate.Extractor{},
	}, log)

	return testEnv{
		registry: registry,
		access:   access,
		reports:  service.NewReportService(es),
		events:   es,
		engine:   engine,
	}
}

func candidates(texts ...string) []types.Candidate {
	out := make([]types.Candidate, len(texts))
	for i, s := range texts {
		out[i] = types.Candidate{Text: s}
	}
	return out
}

func conf(v float64) *float64 { return &v }

// platePhoto returns a small PNG; its content does not matter to the fake
// engine.
func platePhoto(t *testing.T) []byte {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for i := range img.Pix {
		img.Pix[i] = 220
	}
	for y := 5; y < 15; y++ {
		img.SetGray(20, y, color.Gray{Y: 20})
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
