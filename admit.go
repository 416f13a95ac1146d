package follicle

import "fmt"

// Validate runs the admission checks: byte size, declared media type, and
// decoded dimensions, in that order, first failure wins. Size and format
// are decided before the image header is probed, so an oversized or
// mistyped payload is rejected without touching its content. Pixel data is
// never inspected here.
//
// The candidate's Width and Height are filled in from the image header if
// they are not already set.
func (p *Pipeline) Validate(c *Candidate) Validation {
	cfg := p.Config

	if c.Size() > cfg.MaxFileSize {
		return rejected(fmt.Sprintf("File exceeds %dMB limit", cfg.MaxFileSize>>20))
	}

	if !cfg.accepts(c.MediaType) {
		return rejected("Unsupported file format. Use JPG, PNG, or WebP.")
	}

	if c.Width == 0 && c.Height == 0 {
		w, h, err := p.Codec.Probe(c.Data)
		if err != nil {
			p.Log.Debug("probe failed", "filename", c.Filename, "err", err)
			return rejected("Invalid image. Please ensure it meets quality requirements.")
		}
		c.Width, c.Height = w, h
	}

	if c.Width < cfg.MinWidth || c.Height < cfg.MinHeight {
		return rejected(fmt.Sprintf("Image too small. Minimum %dx%dpx", cfg.MinWidth, cfg.MinHeight))
	}

	return Validation{OK: true}
}

func rejected(reason string) Validation {
	return Validation{Reason: reason}
}
