package follicle

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"
)

// ── Test Helpers ────────────────────────────────────────────────────────────

func makeSolidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

// makeCheckerboard builds a black/white checkerboard with cell-pixel
// squares. Bright, high-contrast, and sharp, so it clears every quality
// gate.
func makeCheckerboard(w, h, cell int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if (x/cell+y/cell)%2 == 0 {
				v = 255
			}
			off := y*img.Stride + x*4
			img.Pix[off] = v
			img.Pix[off+1] = v
			img.Pix[off+2] = v
			img.Pix[off+3] = 0xff
		}
	}
	return img
}

func encodePNG(t *testing.T, img *image.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img *image.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}

// newTestPipeline returns a pipeline over the default configuration with a
// zero-delay simulator.
func newTestPipeline() *Pipeline {
	cfg := DefaultConfig()
	cfg.SimulatorDelay = 0
	return New(cfg, NewSimulator(cfg))
}

func ctx() context.Context { return context.Background() }

// ── Admission Tests ─────────────────────────────────────────────────────────

func TestValidateOversizedFile(t *testing.T) {
	p := newTestPipeline()
	c := Candidate{Data: make([]byte, 10<<20+1), MediaType: MediaJPEG, Filename: "big.jpg"}

	v := p.Validate(&c)
	if v.OK {
		t.Fatal("oversized file should be rejected")
	}
	if v.Reason != "File exceeds 10MB limit" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestValidateOversizedJunkNeverProbed(t *testing.T) {
	// An oversized payload of garbage must fail on size, not on decoding.
	p := newTestPipeline()
	c := Candidate{Data: make([]byte, 11<<20), MediaType: "application/pdf", Filename: "junk.pdf"}

	v := p.Validate(&c)
	if v.Reason != "File exceeds 10MB limit" {
		t.Fatalf("size check should win, got %q", v.Reason)
	}
}

func TestValidateUnsupportedFormat(t *testing.T) {
	p := newTestPipeline()
	c := Candidate{Data: []byte("GIF89a"), MediaType: "image/gif", Filename: "anim.gif"}

	v := p.Validate(&c)
	if v.OK {
		t.Fatal("unsupported media type should be rejected")
	}
	if v.Reason != "Unsupported file format. Use JPG, PNG, or WebP." {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestValidateUndecodableContent(t *testing.T) {
	p := newTestPipeline()
	c := Candidate{Data: []byte("not an image at all"), MediaType: MediaJPEG, Filename: "fake.jpg"}

	v := p.Validate(&c)
	if v.OK {
		t.Fatal("undecodable content should be rejected")
	}
	if v.Reason != "Invalid image. Please ensure it meets quality requirements." {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestValidateTooSmall(t *testing.T) {
	p := newTestPipeline()
	data := encodePNG(t, makeSolidImage(300, 300, color.NRGBA{128, 128, 128, 255}))
	c := Candidate{Data: data, MediaType: MediaPNG, Filename: "tiny.png"}

	v := p.Validate(&c)
	if v.OK {
		t.Fatal("undersized image should be rejected")
	}
	if v.Reason != "Image too small. Minimum 400x400px" {
		t.Fatalf("unexpected reason: %q", v.Reason)
	}
}

func TestValidateFillsDimensions(t *testing.T) {
	p := newTestPipeline()
	data := encodePNG(t, makeSolidImage(640, 480, color.NRGBA{128, 128, 128, 255}))
	c := Candidate{Data: data, MediaType: MediaPNG, Filename: "ok.png"}

	v := p.Validate(&c)
	if !v.OK {
		t.Fatalf("valid image rejected: %q", v.Reason)
	}
	if c.Width != 640 || c.Height != 480 {
		t.Fatalf("probed dimensions should be 640x480, got %dx%d", c.Width, c.Height)
	}
}

func TestValidateKeepsPresetDimensions(t *testing.T) {
	// Pre-filled dimensions skip the probe entirely; junk bytes pass.
	p := newTestPipeline()
	c := Candidate{Data: []byte("junk"), MediaType: MediaJPEG, Filename: "x.jpg", Width: 800, Height: 800}

	if v := p.Validate(&c); !v.OK {
		t.Fatalf("preset dimensions should skip the probe, got %q", v.Reason)
	}
}

// ── Quality Tests ───────────────────────────────────────────────────────────

func TestQualityTooDark(t *testing.T) {
	p := newTestPipeline()
	img := makeSolidImage(800, 800, color.NRGBA{20, 20, 20, 255})
	c := Candidate{Width: 800, Height: 800}

	q := p.Quality(c, img)
	if q.OK {
		t.Fatal("dark image should be rejected")
	}
	if q.Reason != "Image is too dark. Please use brighter lighting." {
		t.Fatalf("unexpected reason: %q", q.Reason)
	}
	if len(q.Warnings) != 0 {
		t.Fatalf("no advisories expected before the dark check, got %v", q.Warnings)
	}
}

func TestQualityFatalKeepsPriorWarnings(t *testing.T) {
	// A uniform mid-gray image is well lit but flat and edgeless: the
	// low-contrast advisory is collected before the blur rejection.
	p := newTestPipeline()
	img := makeSolidImage(800, 800, color.NRGBA{128, 128, 128, 255})
	c := Candidate{Width: 800, Height: 800}

	q := p.Quality(c, img)
	if q.OK {
		t.Fatal("flat image should be rejected as blurry")
	}
	if q.Reason != "Image appears too blurry. Please use a sharper photo." {
		t.Fatalf("unexpected reason: %q", q.Reason)
	}
	if len(q.Warnings) != 1 || q.Warnings[0] != warnLowContrast {
		t.Fatalf("low-contrast advisory should survive the rejection, got %v", q.Warnings)
	}
}

func TestQualityLowLightAdvisory(t *testing.T) {
	p := newTestPipeline()
	img := makeSolidImage(800, 800, color.NRGBA{60, 60, 60, 255})
	c := Candidate{Width: 800, Height: 800}

	q := p.Quality(c, img)
	if q.OK {
		t.Fatal("flat image should still fail the blur gate")
	}
	want := []string{warnLowLight, warnLowContrast}
	if len(q.Warnings) != len(want) {
		t.Fatalf("expected warnings %v, got %v", want, q.Warnings)
	}
	for i := range want {
		if q.Warnings[i] != want[i] {
			t.Fatalf("warning %d should be %q, got %q", i, want[i], q.Warnings[i])
		}
	}
}

func TestQualityOverexposedAdvisory(t *testing.T) {
	p := newTestPipeline()
	img := makeSolidImage(800, 800, color.NRGBA{240, 240, 240, 255})
	c := Candidate{Width: 800, Height: 800}

	q := p.Quality(c, img)
	if len(q.Warnings) == 0 || q.Warnings[0] != warnOverexposed {
		t.Fatalf("overexposure advisory expected first, got %v", q.Warnings)
	}
}

func TestQualityDimensionAdvisoriesComeFirst(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxWidth, cfg.MaxHeight = 500, 500
	p := New(cfg, NewSimulator(cfg))
	img := makeSolidImage(600, 600, color.NRGBA{20, 20, 20, 255})
	c := Candidate{Width: 600, Height: 600}

	q := p.Quality(c, img)
	if q.OK {
		t.Fatal("dark image should be rejected")
	}
	if len(q.Warnings) != 1 || q.Warnings[0] != warnLargeImage {
		t.Fatalf("large-image advisory should precede the rejection, got %v", q.Warnings)
	}
}

func TestQualityLowResolutionAdvisory(t *testing.T) {
	p := newTestPipeline()
	img := makeCheckerboard(500, 500, 8)
	c := Candidate{Width: 500, Height: 500}

	q := p.Quality(c, img)
	if !q.OK {
		t.Fatalf("sharp checkerboard should pass, got %q", q.Reason)
	}
	if len(q.Warnings) != 1 || q.Warnings[0] != warnLowResolution {
		t.Fatalf("low-resolution advisory expected, got %v", q.Warnings)
	}
}

func TestQualityCleanPass(t *testing.T) {
	p := newTestPipeline()
	img := makeCheckerboard(800, 800, 8)
	c := Candidate{Width: 800, Height: 800}

	q := p.Quality(c, img)
	if !q.OK {
		t.Fatalf("checkerboard should pass every gate, got %q", q.Reason)
	}
	if len(q.Warnings) != 0 {
		t.Fatalf("no advisories expected, got %v", q.Warnings)
	}
}

func TestMetricsCheckerboard(t *testing.T) {
	// Nearest sampling makes the statistics exactly predictable: an 800px
	// board with 8px cells samples to a 200px grid of 2x2 blocks.
	m := Metrics(makeCheckerboard(800, 800, 8), 200)

	if m.BrightnessMean != 127.5 {
		t.Fatalf("mean should be 127.5, got %f", m.BrightnessMean)
	}
	if math.Abs(m.BrightnessVariance-16256.25) > 1e-6 {
		t.Fatalf("variance should be 16256.25, got %f", m.BrightnessVariance)
	}
	if math.Abs(m.SharpnessVariance-260100) > 1e-3 {
		t.Fatalf("sharpness variance should be 260100, got %f", m.SharpnessVariance)
	}
}

func TestMetricsFlatImage(t *testing.T) {
	m := Metrics(makeSolidImage(400, 400, color.NRGBA{128, 128, 128, 255}), 200)
	if m.BrightnessMean != 128 {
		t.Fatalf("flat mean should be 128, got %f", m.BrightnessMean)
	}
	if m.BrightnessVariance != 0 {
		t.Fatalf("flat variance should be 0, got %f", m.BrightnessVariance)
	}
	if m.SharpnessVariance != 0 {
		t.Fatalf("flat sharpness should be 0, got %f", m.SharpnessVariance)
	}
}

func TestMetricsTinyGridNoInterior(t *testing.T) {
	m := Metrics(makeCheckerboard(2, 2, 1), 200)
	if m.SharpnessVariance != 0 {
		t.Fatalf("grid without interior should report 0 sharpness, got %f", m.SharpnessVariance)
	}
}

// ── Compression Tests ───────────────────────────────────────────────────────

func TestCompressSkipsSmallImage(t *testing.T) {
	p := newTestPipeline()
	img := makeCheckerboard(800, 800, 8)
	data := encodePNG(t, img)
	c := Candidate{Data: data, MediaType: MediaPNG, Filename: "board.png", Width: 800, Height: 800}

	comp, err := p.Compress(ctx(), c, img)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if comp.WasCompressed {
		t.Fatal("small in-bounds image should pass through")
	}
	if comp.Candidate.Filename != "board.png" {
		t.Fatalf("pass-through should keep the filename, got %q", comp.Candidate.Filename)
	}
	if !strings.HasPrefix(comp.Preview, "data:image/png;base64,") {
		t.Fatalf("preview should be a PNG data URL, got prefix %q", comp.Preview[:32])
	}
}

func TestCompressDownscalesOversized(t *testing.T) {
	p := newTestPipeline()
	img := makeCheckerboard(3200, 1600, 8)
	c := Candidate{Data: []byte("placeholder"), MediaType: MediaPNG, Filename: "wide.png", Width: 3200, Height: 1600}

	comp, err := p.Compress(ctx(), c, img)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if !comp.WasCompressed {
		t.Fatal("oversized image should be compressed")
	}
	if comp.Candidate.Width != 1600 || comp.Candidate.Height != 800 {
		t.Fatalf("expected 1600x800, got %dx%d", comp.Candidate.Width, comp.Candidate.Height)
	}
	if comp.Candidate.MediaType != MediaJPEG {
		t.Fatalf("compressed output should be JPEG, got %q", comp.Candidate.MediaType)
	}
	if comp.Candidate.Filename != "wide-optimized.jpg" {
		t.Fatalf("unexpected derived filename: %q", comp.Candidate.Filename)
	}
	if !strings.HasPrefix(comp.Preview, "data:image/jpeg;base64,") {
		t.Fatal("preview should be a JPEG data URL")
	}
}

func TestCompressReencodesLargePayload(t *testing.T) {
	// In-bounds dimensions but a payload over the size threshold still
	// forces a re-encode.
	p := newTestPipeline()
	img := makeCheckerboard(800, 800, 8)
	c := Candidate{Data: make([]byte, 2<<20), MediaType: MediaPNG, Filename: "heavy.png", Width: 800, Height: 800}

	comp, err := p.Compress(ctx(), c, img)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if !comp.WasCompressed {
		t.Fatal("payload over the size threshold should be re-encoded")
	}
	if comp.Candidate.Width != 800 || comp.Candidate.Height != 800 {
		t.Fatalf("dimensions should be unchanged, got %dx%d", comp.Candidate.Width, comp.Candidate.Height)
	}
}

func TestCompressContextCancelled(t *testing.T) {
	p := newTestPipeline()
	img := makeCheckerboard(800, 800, 8)
	c := Candidate{Data: []byte("x"), MediaType: MediaPNG, Filename: "a.png", Width: 800, Height: 800}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Compress(cancelled, c, img); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDerivedFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"photo.png", "photo-optimized.jpg"},
		{"scalp.top.jpeg", "scalp.top-optimized.jpg"},
		{"noext", "noext-optimized.jpg"},
		{"", "upload-optimized.jpg"},
	}
	for _, c := range cases {
		if got := derivedFilename(c.in); got != c.want {
			t.Fatalf("derivedFilename(%q) should be %q, got %q", c.in, c.want, got)
		}
	}
}

// ── Media Type Detection ────────────────────────────────────────────────────

func TestDetectMediaType(t *testing.T) {
	jpegData := encodeJPEG(t, makeSolidImage(8, 8, color.NRGBA{1, 2, 3, 255}))
	pngData := encodePNG(t, makeSolidImage(8, 8, color.NRGBA{1, 2, 3, 255}))
	webpData := append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0)

	cases := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"jpeg magic", "x.bin", jpegData, MediaJPEG},
		{"png magic", "x.bin", pngData, MediaPNG},
		{"webp magic", "x.bin", webpData, MediaWebP},
		{"jpg extension", "photo.JPG", []byte("??"), MediaJPEG},
		{"jpeg extension", "photo.jpeg", []byte("??"), MediaJPEG},
		{"png extension", "photo.png", []byte("??"), MediaPNG},
		{"webp extension", "photo.webp", []byte("??"), MediaWebP},
		{"unknown", "photo.tiff", []byte("??"), ""},
	}
	for _, c := range cases {
		if got := DetectMediaType(c.filename, c.data); got != c.want {
			t.Fatalf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
}

// ── End-to-End Pipeline ─────────────────────────────────────────────────────

func TestRunRequiresConsent(t *testing.T) {
	p := newTestPipeline()
	data := encodeJPEG(t, makeCheckerboard(800, 800, 8))

	_, err := p.Run(ctx(), data, MediaJPEG, "board.jpg", false)
	if !errors.Is(err, ErrConsentRequired) {
		t.Fatalf("expected ErrConsentRequired, got %v", err)
	}
}

func TestRunRejectsOversized(t *testing.T) {
	p := newTestPipeline()

	_, err := p.Run(ctx(), make([]byte, 12<<20), MediaJPEG, "big.jpg", true)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Reason != "File exceeds 10MB limit" {
		t.Fatalf("unexpected reason: %q", verr.Reason)
	}
}

func TestRunRejectsDarkImage(t *testing.T) {
	p := newTestPipeline()
	data := encodeJPEG(t, makeSolidImage(800, 800, color.NRGBA{20, 20, 20, 255}))

	_, err := p.Run(ctx(), data, MediaJPEG, "dark.jpg", true)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Reason != "Image is too dark. Please use brighter lighting." {
		t.Fatalf("unexpected reason: %q", verr.Reason)
	}
}

func TestRunHappyPath(t *testing.T) {
	p := newTestPipeline()
	data := encodeJPEG(t, makeCheckerboard(800, 800, 8))

	out, err := p.Run(ctx(), data, MediaJPEG, "board.jpg", true)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("no advisories expected, got %v", out.Warnings)
	}
	if out.WasCompressed {
		t.Fatal("in-bounds image should not be compressed")
	}
	if out.Result.ID == "" {
		t.Fatal("result should carry a request ID")
	}
	if _, err := time.Parse(time.RFC3339, out.Result.Timestamp); err != nil {
		t.Fatalf("timestamp should be RFC3339, got %q", out.Result.Timestamp)
	}
	if out.Result.DensityScore < 35 || out.Result.DensityScore > 89 {
		t.Fatalf("density score out of simulated range: %d", out.Result.DensityScore)
	}
	if out.Result.DensityCategory != DensityCategory(out.Result.DensityScore) {
		t.Fatalf("category %q does not match score %d", out.Result.DensityCategory, out.Result.DensityScore)
	}
	if len(out.Result.Resources) != 3 {
		t.Fatalf("expected 3 educational resources, got %d", len(out.Result.Resources))
	}
	if !strings.HasPrefix(out.Preview, "data:image/jpeg;base64,") {
		t.Fatal("preview should be a JPEG data URL")
	}
}

func TestRunDeterministicAcrossRuns(t *testing.T) {
	p := newTestPipeline()
	data := encodeJPEG(t, makeCheckerboard(800, 800, 8))

	a, err := p.Run(ctx(), data, MediaJPEG, "board.jpg", true)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	b, err := p.Run(ctx(), data, MediaJPEG, "board.jpg", true)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if a.Result.DensityScore != b.Result.DensityScore ||
		a.Result.Confidence != b.Result.Confidence ||
		a.Result.PatternType != b.Result.PatternType ||
		a.Result.HairType != b.Result.HairType {
		t.Fatal("identical uploads should produce identical simulated results")
	}
	if a.Result.ID == b.Result.ID {
		t.Fatal("request IDs should be unique per run")
	}
}

func TestRunCompressesOversizedUpload(t *testing.T) {
	p := newTestPipeline()
	data := encodeJPEG(t, makeCheckerboard(2000, 2000, 8))

	out, err := p.Run(ctx(), data, MediaJPEG, "huge.jpg", true)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if !out.WasCompressed {
		t.Fatal("2000px upload should be downscaled before submission")
	}
}
