package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle"
)

// NewCompressCmd creates the compress command.
func NewCompressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compress <input> [output]",
		Short: "Downscale and re-encode an image the way the pipeline would",
		Long: `Compress applies the pipeline's payload bounding to a single image:
images already within the dimension cap and under the size threshold pass
through unchanged; everything else is downscaled and re-encoded as JPEG.

The output path defaults to the derived name the pipeline would use
(<stem>-optimized.jpg) next to the input.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runCompress,
	}

	return cmd
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg, _, log, err := setup(cmd)
	if err != nil {
		return err
	}

	input := args[0]
	data, mediaType, err := readUpload(input)
	if err != nil {
		return err
	}

	pipeline := follicle.New(cfg, follicle.NewSimulator(cfg))
	pipeline.Log = log

	c := follicle.Candidate{Data: data, MediaType: mediaType, Filename: filepath.Base(input)}
	if w, h, err := pipeline.Codec.Probe(data); err == nil {
		c.Width, c.Height = w, h
	} else {
		return fmt.Errorf("%s: not a decodable image", input)
	}

	img, err := pipeline.Codec.Decode(data)
	if err != nil {
		return fmt.Errorf("%s: not a decodable image", input)
	}

	comp, err := pipeline.Compress(cmd.Context(), c, img)
	if err != nil {
		return err
	}

	if !comp.WasCompressed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: already within limits (%dx%d, %d bytes), nothing to do\n",
			input, c.Width, c.Height, len(data))
		return nil
	}

	output := filepath.Join(filepath.Dir(input), comp.Candidate.Filename)
	if len(args) == 2 {
		output = args[1]
	}
	if err := os.WriteFile(output, comp.Candidate.Data, 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d (%d bytes) -> %s: %dx%d (%d bytes)\n",
		input, c.Width, c.Height, len(data),
		output, comp.Candidate.Width, comp.Candidate.Height, comp.Candidate.Size())
	return nil
}
