package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/concept-rag/conceptrag/internal/seed"
	"github.com/concept-rag/conceptrag/internal/store"
)

type statsOutput struct {
	Tables     map[store.Table]store.TableStats `json:"tables"`
	Checkpoint *checkpointOutput                `json:"checkpoint,omitempty"`
}

type checkpointOutput struct {
	Stage          string `json:"stage"`
	TotalProcessed int    `json:"total_processed"`
	TotalFailed    int    `json:"total_failed"`
}

func newStatsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show row counts and seeding checkpoint status",
		Long: `Reports per-table row counts and vector-index partition counts,
plus the current seeding checkpoint's stage and processed/failed file
counts, if one exists alongside the configured files directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStats(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func runStats(cmd *cobra.Command, jsonOutput bool) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	c, err := buildContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer func() { _ = c.Close() }()

	tables, err := c.Store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	result := statsOutput{Tables: tables}

	checkpointPath := filepath.Join(cfg.FilesDir, seed.CheckpointFileName)
	if cp, err := seed.LoadCheckpoint(checkpointPath); err == nil && cp.Stage != "" {
		result.Checkpoint = &checkpointOutput{
			Stage:          cp.Stage,
			TotalProcessed: cp.TotalProcessed,
			TotalFailed:    cp.TotalFailed,
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Index Statistics")
	fmt.Fprintln(w, "================")
	for _, table := range []store.Table{store.TableCatalog, store.TableChunks, store.TableConcepts, store.TableCategories, store.TableVisuals} {
		stats := result.Tables[table]
		fmt.Fprintf(w, "  %-12s %6d rows  (%d partitions)\n", table, stats.Rows, stats.PartitionCount)
	}
	fmt.Fprintln(w)
	if result.Checkpoint != nil {
		fmt.Fprintln(w, "Seeding Checkpoint")
		fmt.Fprintln(w, "==================")
		fmt.Fprintf(w, "  stage:            %s\n", result.Checkpoint.Stage)
		fmt.Fprintf(w, "  files processed:  %d\n", result.Checkpoint.TotalProcessed)
		fmt.Fprintf(w, "  files failed:     %d\n", result.Checkpoint.TotalFailed)
	} else {
		fmt.Fprintln(w, "Seeding Checkpoint: none found")
	}
	return nil
}
