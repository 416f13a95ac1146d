package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle"
	"github.com/follicleai/follicle/internal/history"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>...",
		Short: "Gate, compress, and analyze one or more scalp photos",
		Long: `Analyze runs the full pipeline on each image: admission checks, quality
gating, conditional compression, analysis, and normalization. Results are
printed as JSON and stored in the local history unless --no-history is set.

Analysis requires explicit consent (--consent): this tool is for awareness,
not medical diagnosis.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().Bool("consent", false, "Confirm this is not medical diagnosis and accept the privacy policy")
	cmd.Flags().String("backend", "", "Base URL of a real analysis backend (default: offline simulator)")
	cmd.Flags().Int("workers", 0, "Concurrent analyses for multiple images (0 = number of CPUs)")
	cmd.Flags().Bool("no-history", false, "Do not record results in the local history")
	cmd.Flags().Bool("no-delay", false, "Skip the simulator's artificial latency")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, file, log, err := setup(cmd)
	if err != nil {
		return err
	}

	consent, _ := cmd.Flags().GetBool("consent")
	if !consent {
		return errors.New("consent required: re-run with --consent to confirm this is not medical diagnosis")
	}

	backendURL, _ := cmd.Flags().GetString("backend")
	noDelay, _ := cmd.Flags().GetBool("no-delay")
	simulated := backendURL == ""

	var backend follicle.Backend
	if simulated {
		sim := follicle.NewSimulator(cfg)
		if noDelay {
			sim.Delay = 0
		}
		backend = sim
	} else {
		cfg.BaseURL = backendURL
		backend = follicle.NewRemote(cfg, log)
	}

	pipeline := follicle.New(cfg, backend)
	pipeline.Log = log

	var store *history.Store
	if noHistory, _ := cmd.Flags().GetBool("no-history"); !noHistory {
		dir := history.DefaultDir()
		if file != nil && file.HistoryDir != "" {
			dir = file.HistoryDir
		}
		store, err = history.Open(dir)
		if err != nil {
			log.Warn("history unavailable, results will not be recorded", "err", err)
		} else {
			defer store.Close()
		}
	}

	items := make([]follicle.BatchItem, 0, len(args))
	for _, path := range args {
		data, mediaType, err := readUpload(path)
		if err != nil {
			return err
		}
		items = append(items, follicle.BatchItem{
			Data:      data,
			MediaType: mediaType,
			Filename:  filepath.Base(path),
		})
	}

	workers, _ := cmd.Flags().GetInt("workers")
	results := pipeline.RunBatch(cmd.Context(), items, follicle.BatchOptions{
		Workers: workers,
		Consent: true,
	})

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			reportFailure(cmd, r.Item.Filename, r.Err)
			continue
		}
		for _, w := range r.Outcome.Warnings {
			log.Warn(w, "file", r.Item.Filename)
		}
		if err := enc.Encode(r.Outcome.Result); err != nil {
			return err
		}
		if store != nil {
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := store.Save(saveCtx, history.Entry{
				Result:    r.Outcome.Result,
				Filename:  r.Item.Filename,
				Warnings:  r.Outcome.Warnings,
				Simulated: simulated,
			})
			cancel()
			if err != nil {
				log.Warn("could not record result", "file", r.Item.Filename, "err", err)
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d analyses failed", failed, len(results))
	}
	return nil
}

// reportFailure prints a per-file failure, keeping rejection advisories
// visible next to the reason.
func reportFailure(cmd *cobra.Command, filename string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", filename, err)
	var verr *follicle.ValidationError
	if errors.As(err, &verr) {
		for _, w := range verr.Warnings {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", filename, w)
		}
	}
}
