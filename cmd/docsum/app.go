package main

import (
	"log/slog"
	"time"

	"github.com/dgallion1/docsum/internal/artifacts"
	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/config"
	"github.com/dgallion1/docsum/internal/llm"
	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/pipeline"
	"github.com/dgallion1/docsum/internal/progress"
	"github.com/dgallion1/docsum/internal/render"
	"github.com/dgallion1/docsum/internal/segment"
	"github.com/dgallion1/docsum/internal/summarize"
)

type app struct {
	client *llm.Client
	orch   *pipeline.Orchestrator
	conv   render.Converter
}

// newApp wires the pipeline from configuration. The caller starts it.
func newApp(cfg config.Config, log *slog.Logger) *app {
	client := llm.NewClient(llm.Config{
		BaseURL:     cfg.LMStudioURL,
		Model:       cfg.LMStudioModel,
		APIKey:      cfg.LMStudioAPIKey,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.RequestTimeout + 10*time.Second,
	})

	queue := summarize.NewQueue(client, summarize.Config{
		Instructions: cfg.SystemPrompt,
		Timeout:      cfg.RequestTimeout,
		Pace:         cfg.PaceDelay,
	}, log)

	segCfg := segment.DefaultConfig()
	if len(cfg.SplitKeywords) > 0 {
		segCfg.Keywords = cfg.SplitKeywords
	}
	if len(cfg.StopPhrases) > 0 {
		segCfg.StopPhrases = cfg.StopPhrases
	}
	segCfg.MinLength = cfg.MinChapterLength
	segCfg.FallbackSize = cfg.MaxChunkSize
	segCfg.KeepPreamble = cfg.KeepPreamble
	segCfg.MaxPreambleLength = cfg.MaxPreambleLength

	chunkCfg := chunker.DefaultConfig()
	chunkCfg.MaxChunkSize = cfg.MaxChunkSize

	orch := pipeline.NewOrchestrator(pipeline.Options{
		Segment:       segCfg,
		Chunk:         chunkCfg,
		Parser:        parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		HeadingLabel:  cfg.ChapterHeading,
		ProbeAttempts: cfg.ProbeAttempts,
		ProbeDelay:    time.Second,
	}, queue, client, artifacts.NewStore(cfg.OutputDir), progress.NewTracker(), log)

	return &app{
		client: client,
		orch:   orch,
		conv: render.Converter{
			Pandoc:         render.Pandoc{Bin: cfg.PandocPath},
			NativeFallback: cfg.DOCXFallbackNative,
			Log:            log,
		},
	}
}
