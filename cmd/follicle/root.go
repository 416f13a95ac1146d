// Package main provides the entry point for the follicle CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle"
	"github.com/follicleai/follicle/internal/config"
)

// NewRootCmd creates the root command for follicle.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follicle",
		Short: "Local quality gating and analysis for scalp photos",
		Long: `follicle decides locally whether a scalp photo is usable for analysis
(size, format, dimensions, brightness, sharpness), shrinks oversized
uploads, and produces a structured analysis result.

By default results are simulated offline, deterministic per file, so no
bytes leave the machine. Use --backend to submit to a real service.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().String("config", "", "Path to configuration file (default: .follicle.yml in cwd or home)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewCompressCmd())
	cmd.AddCommand(NewHealthCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the shared pieces every subcommand needs: the effective
// configuration (defaults layered with the optional YAML file), the loaded
// file for CLI-only settings, and a logger honoring --debug.
func setup(cmd *cobra.Command) (follicle.Config, *config.File, *slog.Logger, error) {
	cfg := follicle.DefaultConfig()

	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	var file *config.File
	if found := config.Find(path); found != "" {
		f, err := config.Load(found)
		if err != nil {
			return cfg, nil, nil, fmt.Errorf("load config %s: %w", found, err)
		}
		file = f
		cfg = f.Apply(cfg)
	} else if explicit {
		return cfg, nil, nil, fmt.Errorf("config %s: %w", path, config.ErrConfigNotFound)
	}

	debug, _ := cmd.Flags().GetBool("debug")
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return cfg, file, log, nil
}

// readUpload loads a file and sniffs its media type for pipeline input.
func readUpload(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided image path is the point
	if err != nil {
		return nil, "", err
	}
	return data, follicle.DetectMediaType(path, data), nil
}
