package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <image>...",
		Short: "Run only the local admission and quality gates",
		Long: `Check validates images against the admission rules (size, format,
dimensions) and the quality gates (brightness, contrast, sharpness) without
analyzing anything. Useful to pre-flight a photo before submission.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().Bool("metrics", false, "Print the raw brightness and sharpness statistics")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, _, log, err := setup(cmd)
	if err != nil {
		return err
	}

	showMetrics, _ := cmd.Flags().GetBool("metrics")

	// The backend is never reached; the simulator stands in as a no-op.
	pipeline := follicle.New(cfg, follicle.NewSimulator(cfg))
	pipeline.Log = log

	var rejected int
	for _, path := range args {
		name := filepath.Base(path)
		data, mediaType, err := readUpload(path)
		if err != nil {
			return err
		}

		v, metrics, err := checkOne(pipeline, data, mediaType, name, showMetrics)
		if err != nil {
			return err
		}

		switch {
		case v.OK:
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
		default:
			rejected++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: rejected: %s\n", name, v.Reason)
		}
		for _, w := range v.Warnings {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: warning: %s\n", name, w)
		}
		if showMetrics && metrics != nil {
			fmt.Fprintf(cmd.OutOrStdout(),
				"%s: brightness mean=%.1f variance=%.1f, sharpness variance=%.1f\n",
				name, metrics.BrightnessMean, metrics.BrightnessVariance, metrics.SharpnessVariance)
		}
	}

	if rejected > 0 {
		return fmt.Errorf("%d of %d images rejected", rejected, len(args))
	}
	return nil
}

// checkOne runs admission then quality on a single file, optionally
// computing the raw metrics for display.
func checkOne(p *follicle.Pipeline, data []byte, mediaType, name string, withMetrics bool) (follicle.Validation, *follicle.QualityMetrics, error) {
	c := follicle.Candidate{Data: data, MediaType: mediaType, Filename: name}
	if v := p.Validate(&c); !v.OK {
		return v, nil, nil
	}

	img, err := p.Codec.Decode(data)
	if err != nil {
		return follicle.Validation{}, nil, errors.New(name + ": undecodable image")
	}

	v := p.Quality(c, img)
	if !withMetrics {
		return v, nil, nil
	}
	m := follicle.Metrics(img, p.Config.SampleSize)
	return v, &m, nil
}
