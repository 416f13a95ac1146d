package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle"
)

// NewHealthCmd creates the health command.
func NewHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check whether the analysis backend is reachable",
		Long: `Health probes the analysis backend. Without --backend the offline
simulator is checked, which is always available.`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}

	cmd.Flags().String("backend", "", "Base URL of a real analysis backend (default: offline simulator)")

	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, _, log, err := setup(cmd)
	if err != nil {
		return err
	}

	var backend follicle.Backend
	target := "simulator (offline)"
	if url, _ := cmd.Flags().GetString("backend"); url != "" {
		cfg.BaseURL = url
		backend = follicle.NewRemote(cfg, log)
		target = url
	} else {
		backend = follicle.NewSimulator(cfg)
	}

	if !backend.Health(cmd.Context()) {
		return fmt.Errorf("%s: %w", target, errors.New("backend unreachable"))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", target)
	return nil
}
