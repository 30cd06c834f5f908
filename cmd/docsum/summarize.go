package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/artifacts"
	"github.com/dgallion1/docsum/internal/progress"
)

var (
	summarizeOut  string
	summarizeDOCX bool
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <file>",
	Short: "Summarize one document and wait for the result",
	Long: `Run the full pipeline on a local file without starting the HTTP server.
The artifacts (source_text.txt, chapters_info.json, generation_log.md,
summary.md) are written to the output directory.

Examples:
  docsum summarize lectures.pdf
  docsum summarize notes.md --out ./notes-summary --docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if summarizeOut != "" {
			cfg.OutputDir = summarizeOut
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		a := newApp(cfg, log)
		defer a.client.Close()
		a.orch.Start(ctx)
		defer a.orch.Stop()

		run, err := a.orch.Begin(ctx, filepath.Base(args[0]), data)
		if err != nil {
			return err
		}
		if err := a.orch.Wait(ctx); err != nil {
			return err
		}
		if st := a.orch.Tracker().Snapshot(); st.Status != progress.StatusCompleted {
			return fmt.Errorf("run %s ended with status %s", run.ID, st.Status)
		}

		store := a.orch.Store()
		out := store.Path(artifacts.SummaryFile)
		if summarizeDOCX {
			docx := store.Path(artifacts.DOCXFile)
			if err := a.conv.ToDOCX(ctx, out, docx); err != nil {
				return fmt.Errorf("convert to docx: %w", err)
			}
			out = docx
		}

		snap := run.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d chapters, %d failed chunks\n%s\n",
			snap.Filename, snap.TotalChapters, snap.FailedChunks, out)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().StringVar(&summarizeOut, "out", "", "output directory (overrides config)")
	summarizeCmd.Flags().BoolVar(&summarizeDOCX, "docx", false, "also convert the summary to .docx")
}
