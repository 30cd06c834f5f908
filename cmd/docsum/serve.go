package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docsum/internal/api"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the docsum HTTP server",
	Long: `Start the docsum HTTP server.

Endpoints:
  GET  /health          - liveness
  GET  /status          - progress of the current run
  GET  /chapters        - chapter count and lengths of the last document
  POST /upload          - start a run (multipart field "file")
  GET  /api/run         - snapshot of the current run
  POST /check-services  - is the summarization server reachable
  GET  /download-docx   - final summary as Word (pandoc)
  GET  /download-html   - final summary as HTML
  GET  /config          - effective configuration
  GET  /api/stats/llm   - rolling model latency stats`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := newLogger()

		cfg, err := loadConfig()
		if err != nil {
			log.Error("invalid configuration", "error", err)
			return err
		}
		if servePort != "" {
			cfg.Port = servePort
		}

		a := newApp(cfg, log)
		defer a.client.Close()
		a.orch.Start(ctx)

		srv := api.NewServer(a.orch, a.client, a.client.Stats, a.conv, log, cfg)
		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      srv,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Graceful shutdown.
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		log.Info("starting docsum", "port", cfg.Port, "model", cfg.LMStudioModel, "output_dir", cfg.OutputDir)
		err = httpServer.ListenAndServe()
		a.orch.Stop()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides config)")
}
