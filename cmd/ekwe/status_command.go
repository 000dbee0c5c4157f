package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ekwe/internal/dataset"
	"ekwe/internal/issued"
)

const statusSampleSize = 10

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show dataset coverage and pending words",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := dataset.Load(cfg.Paths.DatasetFile)
			if err != nil {
				return fmt.Errorf("load dataset: %w", err)
			}

			cache, err := issued.Open(cfg.IssuedDBPath())
			if err != nil {
				return fmt.Errorf("open issued cache: %w", err)
			}
			defer cache.Close()

			resolved := 0
			var missing []*dataset.Entry
			for _, entry := range entries.Entries() {
				if entry.AudioURL != "" {
					resolved++
				} else {
					missing = append(missing, entry)
				}
			}
			issuedCount, err := cache.Count(cmd.Context())
			if err != nil {
				return fmt.Errorf("issued cache: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("ekwe status", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Dataset", statusInfo, cfg.Paths.DatasetFile, colorize))
			fmt.Fprintln(out, renderStatusLine("Entries", statusInfo, fmt.Sprintf("%d", entries.Len()), colorize))
			coverageKind := statusOK
			if len(missing) > 0 {
				coverageKind = statusWarn
			}
			fmt.Fprintln(out, renderStatusLine("With audio", coverageKind, fmt.Sprintf("%d of %d", resolved, entries.Len()), colorize))
			fmt.Fprintln(out, renderStatusLine("Issued cache", statusInfo, fmt.Sprintf("%d words", issuedCount), colorize))
			fmt.Fprintln(out, renderStatusLine("Audio assets", statusInfo, fmt.Sprintf("%d files in %s", countAssets(cfg.Paths.AudioDir), cfg.Paths.AudioDir), colorize))

			if len(missing) == 0 {
				fmt.Fprintln(out, "\nEvery entry has audio.")
				return nil
			}

			rows := make([][]string, 0, statusSampleSize)
			for _, entry := range missing {
				if len(rows) == statusSampleSize {
					break
				}
				tracked := "no"
				if has, err := cache.Has(cmd.Context(), entry.Word); err == nil && has {
					tracked = "yes"
				}
				rows = append(rows, []string{entry.Word, entry.FirstDefinition("-"), tracked})
			}
			fmt.Fprintf(out, "\nNext words missing audio (%d total):\n", len(missing))
			fmt.Fprintln(out, renderPendingTable(rows))
			return nil
		},
	}
}

// renderPendingTable lays out the words still waiting on audio as a
// three-column table: word, first definition, and whether an issue is
// already tracked for it.
func renderPendingTable(rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Word", "Definition", "Issue tracked"})
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1], row[2]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func countAssets(dir string) int {
	names, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	count := 0
	for _, entry := range names {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != "" {
			count++
		}
	}
	return count
}
