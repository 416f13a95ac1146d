package follicle

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// Compress bounds the payload before submission. Candidates that already
// fit within CompressMaxDimension on both sides and stay under
// CompressAbove bytes pass through untouched. Everything else is downscaled
// (never upscaled, aspect ratio preserved) and re-encoded as JPEG at the
// configured quality, producing a new candidate with a derived filename.
func (p *Pipeline) Compress(ctx context.Context, c Candidate, img *image.NRGBA) (Compression, error) {
	if err := ctx.Err(); err != nil {
		return Compression{}, err
	}

	cfg := p.Config
	maxDim := float64(cfg.CompressMaxDimension)
	scale := math.Min(maxDim/float64(c.Width), maxDim/float64(c.Height))
	if scale > 1 {
		scale = 1
	}

	if scale == 1 && c.Size() < cfg.CompressAbove {
		return Compression{
			Candidate: c,
			Preview:   dataURL(c.MediaType, c.Data),
		}, nil
	}

	src := img
	w, h := c.Width, c.Height
	if scale < 1 {
		w = int(float64(c.Width) * scale)
		h = int(float64(c.Height) * scale)
		dst := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		src = dst
	}

	data, err := p.Codec.EncodeJPEG(src, cfg.JPEGQuality)
	if err != nil {
		return Compression{}, fmt.Errorf("follicle: compress: %w", err)
	}

	out := Candidate{
		Data:      data,
		MediaType: MediaJPEG,
		Filename:  derivedFilename(c.Filename),
		Width:     w,
		Height:    h,
	}
	p.Log.Debug("compressed candidate",
		"filename", out.Filename,
		"dimensions", fmt.Sprintf("%dx%d -> %dx%d", c.Width, c.Height, w, h),
		"bytes", fmt.Sprintf("%d -> %d", c.Size(), out.Size()))

	return Compression{
		Candidate:     out,
		WasCompressed: true,
		Preview:       dataURL(MediaJPEG, data),
	}, nil
}

// derivedFilename strips the extension and appends the optimized-JPEG
// suffix, mirroring what the upload surface shows the user.
func derivedFilename(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		stem = "upload"
	}
	return stem + "-optimized.jpg"
}

// dataURL renders bytes as a base64 data URL for presentation previews.
func dataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
