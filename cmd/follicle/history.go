package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/follicleai/follicle/internal/history"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past analysis results",
		Long: `History lists previously recorded analyses, newest first. Results are
stored locally; nothing is fetched from a server.`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 10, "Maximum entries to show (0 = all)")
	cmd.Flags().Bool("json", false, "Print full entries as JSON instead of a summary line")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	_, file, _, err := setup(cmd)
	if err != nil {
		return err
	}

	dir := history.DefaultDir()
	if file != nil && file.HistoryDir != "" {
		dir = file.HistoryDir
	}
	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded analyses")
		return nil
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, e := range entries {
		source := "remote"
		if e.Simulated {
			source = "simulated"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-24s density %3d (%s)  confidence %3d  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.Filename, e.Result.DensityScore, e.Result.DensityCategory,
			e.Result.Confidence, source)
	}
	return nil
}
