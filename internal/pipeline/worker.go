package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/docsum/internal/chunker"
)

// Section formats one chapter of the final document.
func Section(label string, index int, summary string) string {
	return fmt.Sprintf("## %s %d\n\n%s", label, index+1, summary)
}

// process summarizes every chapter of run in order and writes the final
// document. Chunk failures stay embedded in the chapter text; the run
// always ends in the completed state.
func (o *Orchestrator) process(ctx context.Context, run *Run) {
	defer o.release()

	doc := run.Document()
	log := o.log.With("run_id", run.ID, "filename", run.Filename)
	run.SetStatus(RunRunning)

	if err := o.store.ResetLog(); err != nil {
		log.Warn("reset generation log failed", "error", err)
	}

	sections := make([]string, 0, len(doc.Chapters))
	for _, ch := range doc.Chapters {
		chunker.ChunkChapter(ch, o.opts.Chunk)
		log.Info("chapter started",
			"chapter", ch.Index+1,
			"chunks", len(ch.Chunks),
			"tokens_est", chunker.EstimateTokens(ch.Text),
		)

		if err := o.queue.SummarizeChapter(ctx, ch); err != nil {
			if ctx.Err() != nil {
				log.Warn("run abandoned on shutdown", "chapter", ch.Index+1)
				o.tracker.Fail(run.ID, "shutdown: "+ctx.Err().Error())
				return
			}
			log.Error("chapter summarization aborted", "chapter", ch.Index+1, "error", err)
			ch.Summary = fmt.Sprintf("[Chapter %d processing error: %s]", ch.Index+1, err)
		}

		section := Section(o.opts.HeadingLabel, ch.Index, ch.Summary)
		sections = append(sections, section)
		run.ChapterFinished(ch.FailedChunks())
		o.tracker.ChapterDone(section)

		if err := o.store.AppendLog(section); err != nil {
			log.Warn("append generation log failed", "chapter", ch.Index+1, "error", err)
		}
	}

	final := strings.Join(sections, "\n\n")
	if err := o.store.SaveSummary(final); err != nil {
		log.Error("write summary failed", "error", err)
	}
	o.tracker.Complete(final)
	run.SetStatus(RunCompleted)

	snap := run.Snapshot()
	log.Info("run completed", "chapters", snap.TotalChapters, "failed_chunks", snap.FailedChunks)
}
