package follicle

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"

	_ "image/png" // PNG decode support

	_ "golang.org/x/image/webp" // WebP decode support
)

// Codec is the imaging capability the pipeline runs on: probing dimensions
// without a full decode, decoding to pixels, and lossy re-encoding. The
// default implementation uses the standard decoders plus x/image for WebP;
// swap it out to back the pipeline with a different imaging library.
type Codec interface {
	// Probe returns the pixel dimensions by reading only the image header.
	Probe(data []byte) (width, height int, err error)

	// Decode decodes the full image into NRGBA pixels.
	Decode(data []byte) (*image.NRGBA, error)

	// EncodeJPEG encodes the pixels as JPEG at the given quality (1-100).
	EncodeJPEG(img *image.NRGBA, quality int) ([]byte, error)
}

// StdCodec is the default Codec, backed by image/jpeg, image/png, and
// golang.org/x/image/webp.
type StdCodec struct{}

// Probe implements Codec using image.DecodeConfig, which stops after the
// header. No pixel data is touched.
func (StdCodec) Probe(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("follicle: probe: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Decode implements Codec.
func (StdCodec) Decode(data []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("follicle: decode: %w", err)
	}
	return toNRGBA(img), nil
}

// EncodeJPEG implements Codec. Opaque images take the RGBA fast path so the
// encoder skips per-pixel alpha handling.
func (StdCodec) EncodeJPEG(img *image.NRGBA, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if isOpaque(img) {
		rgba := &image.RGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
		err = jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: quality})
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	}
	if err != nil {
		return nil, fmt.Errorf("follicle: jpeg encode: %w", err)
	}
	return buf.Bytes(), nil
}

// DetectMediaType sniffs the media type from magic bytes, falling back to
// the filename extension. Returns "" when neither identifies the content.
func DetectMediaType(filename string, data []byte) string {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return MediaJPEG
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return MediaPNG
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return MediaWebP
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return MediaJPEG
	case ".png":
		return MediaPNG
	case ".webp":
		return MediaWebP
	}
	return ""
}

// toNRGBA converts any image.Image to *image.NRGBA. Already-NRGBA images
// are returned as-is; the pipeline never mutates decoded pixels in place.
func toNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			off := (y-bounds.Min.Y)*dst.Stride + (x-bounds.Min.X)*4
			switch {
			case a == 0:
				dst.Pix[off] = 0
				dst.Pix[off+1] = 0
				dst.Pix[off+2] = 0
				dst.Pix[off+3] = 0
			case a == 0xffff:
				dst.Pix[off] = uint8(r >> 8)
				dst.Pix[off+1] = uint8(g >> 8)
				dst.Pix[off+2] = uint8(b >> 8)
				dst.Pix[off+3] = 0xff
			default:
				// Un-premultiply alpha.
				dst.Pix[off] = uint8(((r * 0xffff) / a) >> 8)
				dst.Pix[off+1] = uint8(((g * 0xffff) / a) >> 8)
				dst.Pix[off+2] = uint8(((b * 0xffff) / a) >> 8)
				dst.Pix[off+3] = uint8(a >> 8)
			}
		}
	}
	return dst
}

// isOpaque checks if all pixels have full alpha.
func isOpaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}
