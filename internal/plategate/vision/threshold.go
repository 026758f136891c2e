package vision

import "image"

func histogram(img *image.Gray) (hist [256]int, total int) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist, b.Dx() * b.Dy()
}

// Equalize spreads the gray levels of img over the full 0..255 range.
func Equalize(img *image.Gray) *image.Gray {
	hist, total := histogram(img)
	out := image.NewGray(img.Bounds())
	if total == 0 {
		return out
	}

	var cdf [256]int
	run := 0
	for i, n := range hist {
		run += n
		cdf[i] = run
	}
	cdfMin := 0
	for _, c := range cdf {
		if c > 0 {
			cdfMin = c
			break
		}
	}

	var lut [256]uint8
	if total == cdfMin {
		// Single gray level: nothing to spread.
		for i := range lut {
			lut[i] = uint8(i)
		}
	} else {
		for i := range lut {
			if cdf[i] <= cdfMin {
				continue
			}
			lut[i] = uint8((cdf[i] - cdfMin) * 255 / (total - cdfMin))
		}
	}

	mapPixels(img, out, func(v uint8) uint8 { return lut[v] })
	return out
}

// OtsuLevel returns the threshold that maximizes between-class variance.
func OtsuLevel(img *image.Gray) uint8 {
	hist, total := histogram(img)
	if total == 0 {
		return 0
	}

	var sumAll float64
	for i, n := range hist {
		sumAll += float64(i * n)
	}

	var (
		sumB, best float64
		wB         int
		level      int
	)
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sumAll - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level)
}

// OtsuThreshold binarizes img at its Otsu level: pixels above the level
// become 255 (0 when invert is set), the rest the opposite.
func OtsuThreshold(img *image.Gray, invert bool) *image.Gray {
	level := OtsuLevel(img)
	hi, lo := binaryLevels(invert)
	out := image.NewGray(img.Bounds())
	mapPixels(img, out, func(v uint8) uint8 {
		if v > level {
			return hi
		}
		return lo
	})
	return out
}

// mapPixels writes fn(src) into dst for every pixel; both share bounds.
func mapPixels(src, dst *image.Gray, fn func(uint8) uint8) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		in := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
		o := dst.Pix[dst.PixOffset(b.Min.X, y):dst.PixOffset(b.Max.X, y)]
		for x, v := range in {
			o[x] = fn(v)
		}
	}
}

// AdaptiveThreshold compares each pixel with the mean of the blockSize x
// blockSize window around it minus offset. Window sums come from an
// integral image, so the cost does not depend on blockSize.
func AdaptiveThreshold(img *image.Gray, blockSize, offset int, invert bool) *image.Gray {
	if blockSize <= 1 {
		blockSize = 31
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	half := blockSize / 2

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	if w == 0 || h == 0 {
		return out
	}

	// integral[(y+1)*(w+1)+(x+1)] = sum of img[0..y][0..x]
	stride := w + 1
	integral := make([]int64, (h+1)*stride)
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(img.Pix[img.PixOffset(b.Min.X+x, b.Min.Y+y)])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + row
		}
	}

	hi, lo := binaryLevels(invert)
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-half), min(h-1, y+half)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-half), min(w-1, x+half)
			sum := integral[(y1+1)*stride+x1+1] - integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] + integral[y0*stride+x0]
			count := int64((y1 - y0 + 1) * (x1 - x0 + 1))
			thresh := sum/count - int64(offset)

			i := out.PixOffset(b.Min.X+x, b.Min.Y+y)
			if int64(img.Pix[i]) > thresh {
				out.Pix[i] = hi
			} else {
				out.Pix[i] = lo
			}
		}
	}
	return out
}

func binaryLevels(invert bool) (hi, lo uint8) {
	if invert {
		return 0, 255
	}
	return 255, 0
}
