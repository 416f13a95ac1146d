package follicle

import "image"

// Quality advisory copy. Advisories never block; they ride along with the
// result (or with a rejection, for everything collected before the fatal
// check).
const (
	warnLargeImage    = "Large image may take longer to process"
	warnLowResolution = "Low resolution may affect accuracy"
	warnLowLight      = "Lighting appears low. Consider a brighter image for better accuracy."
	warnOverexposed   = "Image looks overexposed. Reduce brightness or avoid direct glare."
	warnLowContrast   = "Low contrast detected. Improve lighting or reduce glare."
	warnSlightBlur    = "Slight blur detected. Results may be less accurate."

	fatalTooDark   = "Image is too dark. Please use brighter lighting."
	fatalTooBlurry = "Image appears too blurry. Please use a sharper photo."
)

// Quality computes brightness and sharpness statistics over the decoded
// pixels and escalates them to advisories or a rejection. Dimension
// advisories come first (they are independent of pixel content), then
// brightness, then blur. A fatal condition short-circuits the remaining
// checks but keeps every warning already collected.
func (p *Pipeline) Quality(c Candidate, img *image.NRGBA) Validation {
	cfg := p.Config
	var warnings []string

	if c.Width > cfg.MaxWidth || c.Height > cfg.MaxHeight {
		warnings = append(warnings, warnLargeImage)
	}
	if c.Width < cfg.LowResolution || c.Height < cfg.LowResolution {
		warnings = append(warnings, warnLowResolution)
	}

	grid := sampleLuma(img, cfg.SampleSize)

	mean, variance := grid.brightness()
	if mean < cfg.DarkBrightness {
		return Validation{Reason: fatalTooDark, Warnings: warnings}
	}
	if mean < cfg.LowBrightness {
		warnings = append(warnings, warnLowLight)
	}
	if mean > cfg.HighBrightness {
		warnings = append(warnings, warnOverexposed)
	}
	if variance < cfg.MinContrastVariance {
		warnings = append(warnings, warnLowContrast)
	}

	sharpness := grid.laplacianVariance()
	if sharpness < cfg.BlurVariance {
		return Validation{Reason: fatalTooBlurry, Warnings: warnings}
	}
	if sharpness < cfg.SlightBlurVariance {
		warnings = append(warnings, warnSlightBlur)
	}

	return Validation{OK: true, Warnings: warnings}
}

// Metrics computes the raw quality statistics without applying thresholds.
// Pure function of pixel data; nothing is cached between calls.
func Metrics(img *image.NRGBA, sampleSize int) QualityMetrics {
	grid := sampleLuma(img, sampleSize)
	mean, variance := grid.brightness()
	return QualityMetrics{
		BrightnessMean:     mean,
		BrightnessVariance: variance,
		SharpnessVariance:  grid.laplacianVariance(),
	}
}

// lumaGrid is a downsampled single-channel view of an image. Luma is the
// unweighted mean of the red, green, and blue channels; alpha is ignored.
type lumaGrid struct {
	pix  []float64
	w, h int
}

// sampleLuma shrinks the image to at most maxSize on its longest side using
// nearest sampling, preserving aspect ratio, minimum 1x1. Nearest sampling
// keeps the statistics exactly reproducible across runs, which area filters
// with parallel accumulation would not guarantee.
func sampleLuma(img *image.NRGBA, maxSize int) lumaGrid {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	gw, gh := w, h
	if w > maxSize || h > maxSize {
		scale := float64(maxSize) / float64(w)
		if s := float64(maxSize) / float64(h); s < scale {
			scale = s
		}
		gw = int(float64(w) * scale)
		gh = int(float64(h) * scale)
	}
	if gw < 1 {
		gw = 1
	}
	if gh < 1 {
		gh = 1
	}

	grid := lumaGrid{pix: make([]float64, gw*gh), w: gw, h: gh}
	for gy := 0; gy < gh; gy++ {
		sy := gy * h / gh
		for gx := 0; gx < gw; gx++ {
			sx := gx * w / gw
			off := sy*img.Stride + sx*4
			r := float64(img.Pix[off])
			g := float64(img.Pix[off+1])
			b := float64(img.Pix[off+2])
			grid.pix[gy*gw+gx] = (r + g + b) / 3
		}
	}
	return grid
}

// brightness returns the mean and population variance of the grid's luma.
func (g lumaGrid) brightness() (mean, variance float64) {
	var sum, sumSq float64
	for _, v := range g.pix {
		sum += v
		sumSq += v * v
	}
	n := float64(len(g.pix))
	mean = sum / n
	variance = sumSq/n - mean*mean
	return mean, variance
}

// laplacianVariance computes the population variance of the 4-neighbor
// discrete Laplacian (4*center - left - right - up - down) over all
// interior pixels. Returns 0 when the grid has no interior.
func (g lumaGrid) laplacianVariance() float64 {
	if g.w < 3 || g.h < 3 {
		return 0
	}

	var sum, sumSq float64
	for y := 1; y < g.h-1; y++ {
		row := y * g.w
		for x := 1; x < g.w-1; x++ {
			i := row + x
			l := 4*g.pix[i] - g.pix[i-1] - g.pix[i+1] - g.pix[i-g.w] - g.pix[i+g.w]
			sum += l
			sumSq += l * l
		}
	}
	n := float64((g.w - 2) * (g.h - 2))
	mean := sum / n
	return sumSq/n - mean*mean
}
