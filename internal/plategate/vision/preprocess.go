package vision

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/imgconv"
)

type ThresholdMode string

const (
	// ThresholdOtsu picks one global level from the histogram.
	ThresholdOtsu ThresholdMode = "otsu"
	// ThresholdAdaptive compares every pixel with the mean of its window.
	ThresholdAdaptive ThresholdMode = "adaptive"
)

func ParseThresholdMode(s string) (ThresholdMode, error) {
	switch m := ThresholdMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ThresholdOtsu, ThresholdAdaptive:
		return m, nil
	case "":
		return ThresholdOtsu, nil
	default:
		return "", fmt.Errorf("unknown threshold mode %q", s)
	}
}

// Options controls Preprocess. The zero value is usable: Otsu, no blur,
// no equalization, no upscaling, non-inverted output.
type Options struct {
	MinWidth  int     // upscale captures narrower than this; 0 disables
	Equalize  bool    // histogram equalization before blurring
	BlurSigma float64 // Gaussian sigma; 0 skips the blur
	Threshold ThresholdMode
	BlockSize int // adaptive window side, forced odd; default 31
	Offset    int // subtracted from the window mean; default 10
	Invert    bool
}

// DefaultOptions mirrors the capture pipeline the access desk uses:
// slight blur and inverse Otsu.
func DefaultOptions() Options {
	return Options{
		MinWidth:  640,
		BlurSigma: 1.0,
		Threshold: ThresholdOtsu,
		BlockSize: 31,
		Offset:    10,
		Invert:    true,
	}
}

// Preprocess runs upscale, grayscale, optional equalization, blur and
// binarization, in that order. The output only holds 0 and 255.
func Preprocess(img image.Image, opt Options) *image.Gray {
	if opt.MinWidth > 0 && img.Bounds().Dx() < opt.MinWidth {
		img = imgconv.Resize(img, &imgconv.ResizeOption{Width: opt.MinWidth})
	}

	gray := toGray(imaging.Grayscale(img))

	if opt.Equalize {
		gray = Equalize(gray)
	}
	if opt.BlurSigma > 0 {
		gray = toGray(imaging.Blur(gray, opt.BlurSigma))
	}

	switch opt.Threshold {
	case ThresholdAdaptive:
		return AdaptiveThreshold(gray, opt.BlockSize, opt.Offset, opt.Invert)
	default:
		return OtsuThreshold(gray, opt.Invert)
	}
}

// toGray copies img into a zero-origin *image.Gray.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := img.(*image.NRGBA); ok {
		// imaging always returns grayscale-consistent NRGBA, R == G == B.
		for y := 0; y < b.Dy(); y++ {
			src := n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):n.PixOffset(b.Max.X, b.Min.Y+y)]
			dst := out.Pix[out.PixOffset(0, y):out.PixOffset(b.Dx(), y)]
			for x := range dst {
				dst[x] = src[x*4]
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.SetGray(x-b.Min.X, y-b.Min.Y, color.GrayModel.Convert(img.At(x, y)).(color.Gray))
		}
	}
	return out
}
