// Package follicle is the image admission and result pipeline behind the
// FollicleAI scalp-analysis product. It decides locally whether an uploaded
// photo is usable before any bytes leave the machine, bounds the payload,
// and produces a structured analysis result, from the real inference
// backend or from a deterministic offline simulator.
//
// The pipeline is strictly sequential per candidate:
//
//	validator → quality analyzer → compressor → {simulate | remote call} → normalizer
//
//   - Admission: fast content-agnostic checks (size, format, dimensions)
//   - Quality gating: brightness and Laplacian-sharpness statistics over a
//     downsampled luma grid, escalating to advisories or rejection
//   - Compression: content-aware downscale and JPEG re-encode to bound the
//     upload, skipped when the candidate is already small
//   - Simulation: a fingerprint-seeded synthetic backend, reproducible
//     across runs, for development and testing without the real service
//   - Normalization: one stable output shape for real and simulated results
//
// Independent requests are fully isolated and may run concurrently; no
// stage shares mutable state with another.
package follicle

import (
	"context"
	"image"
	"io"
	"log/slog"
)

// Backend is the analysis capability behind the local gates: either the
// remote inference service or the offline simulator, selected once at
// construction rather than per call.
type Backend interface {
	// Analyze submits an admitted, quality-checked, possibly-compressed
	// candidate and returns the raw analysis payload.
	Analyze(ctx context.Context, c Candidate, consent bool) (*Response, error)

	// Health reports whether the backend is reachable. Used by external
	// collaborators, never by the pipeline itself.
	Health(ctx context.Context) bool
}

// Pipeline wires the stages together. Construct one per configuration; it
// holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	// Config holds every threshold and limit.
	Config Config

	// Backend performs (or simulates) the analysis.
	Backend Backend

	// Codec supplies decode/probe/encode. Defaults to StdCodec.
	Codec Codec

	// Log receives stage-level debug logging. Defaults to a discard handler.
	Log *slog.Logger
}

// New returns a pipeline over the given configuration and backend.
func New(cfg Config, backend Backend) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Backend: backend,
		Codec:   StdCodec{},
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Run takes a raw upload through the full pipeline. Local failures surface
// as *ValidationError (with any advisories collected before the rejection)
// and never reach the network; transport failures surface as
// ErrAnalysisFailed. A false consent flag blocks before any work.
func (p *Pipeline) Run(ctx context.Context, data []byte, mediaType, filename string, consent bool) (*Outcome, error) {
	if !consent {
		return nil, ErrConsentRequired
	}

	c := Candidate{Data: data, MediaType: mediaType, Filename: filename}
	if v := p.Validate(&c); !v.OK {
		p.Log.Debug("candidate rejected at admission", "filename", filename, "reason", v.Reason)
		return nil, &ValidationError{Reason: v.Reason}
	}

	img, err := p.decode(&c)
	if err != nil {
		p.Log.Debug("decode failed", "filename", filename, "err", err)
		return nil, &ValidationError{Reason: "Invalid image. Please ensure it meets quality requirements."}
	}

	q := p.Quality(c, img)
	if !q.OK {
		p.Log.Debug("candidate rejected at quality gate", "filename", filename, "reason", q.Reason)
		return nil, &ValidationError{Reason: q.Reason, Warnings: q.Warnings}
	}

	comp, err := p.Compress(ctx, c, img)
	if err != nil {
		return nil, err
	}

	resp, err := p.Backend.Analyze(ctx, comp.Candidate, consent)
	if err != nil {
		return nil, err
	}

	result := Normalize(resp)
	p.Log.Debug("analysis complete",
		"id", result.ID,
		"density", result.DensityScore,
		"category", result.DensityCategory,
		"warnings", len(q.Warnings))

	return &Outcome{
		Result:        result,
		Warnings:      q.Warnings,
		WasCompressed: comp.WasCompressed,
		Preview:       comp.Preview,
	}, nil
}

// decode turns the candidate's bytes into pixels and, for JPEG input with
// AutoOrient enabled, normalizes the EXIF orientation. Orientations 5-8
// swap width and height, so the candidate's probed dimensions are refreshed
// from the oriented pixels.
func (p *Pipeline) decode(c *Candidate) (*image.NRGBA, error) {
	img, err := p.Codec.Decode(c.Data)
	if err != nil {
		return nil, err
	}

	if p.Config.AutoOrient && c.MediaType == MediaJPEG {
		if orient := ReadOrientation(c.Data); orient > OrientNormal {
			img = ApplyOrientation(img, orient)
			c.Width = img.Bounds().Dx()
			c.Height = img.Bounds().Dy()
		}
	}
	return img, nil
}
