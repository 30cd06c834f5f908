package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "docsum",
	Short: "Summarize long documents chapter by chapter with a local LLM",
	Long: `docsum splits a long document (PDF, DOCX, HTML, Markdown or text) into
chapters, cuts each chapter into model-sized chunks and summarizes them one
at a time through an OpenAI-compatible server such as LM Studio.

Configuration comes from defaults, an optional config.json/config.yaml and
DOCSUM_* environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.json or ./config.yaml)",
	)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summarizeCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
