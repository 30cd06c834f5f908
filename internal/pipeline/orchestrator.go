package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"github.com/dgallion1/docsum/internal/artifacts"
	"github.com/dgallion1/docsum/internal/chunker"
	"github.com/dgallion1/docsum/internal/doctree"
	"github.com/dgallion1/docsum/internal/parser"
	"github.com/dgallion1/docsum/internal/progress"
	"github.com/dgallion1/docsum/internal/segment"
	"github.com/dgallion1/docsum/internal/summarize"
)

// Prober reports whether the summarization server is reachable.
type Prober interface {
	HealthCheck(ctx context.Context) error
}

// Options configures a pipeline.
type Options struct {
	Segment segment.Config
	Chunk   chunker.Config
	Parser  parser.Options

	HeadingLabel  string // Chapter heading word in the final document.
	ProbeAttempts uint
	ProbeDelay    time.Duration
}

// Orchestrator runs one summarization at a time: a synchronous prelude in
// Begin, then a background worker that walks the chapters in order.
type Orchestrator struct {
	opts    Options
	queue   *summarize.Queue
	probe   Prober
	store   *artifacts.Store
	tracker *progress.Tracker
	log     *slog.Logger

	runs    chan *Run
	active  atomic.Bool
	mu      sync.Mutex
	current *Run
	stopped bool
	idle    chan struct{} // Closed and replaced as runs finish.

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start before Begin.
func NewOrchestrator(opts Options, queue *summarize.Queue, probe Prober, store *artifacts.Store, tracker *progress.Tracker, log *slog.Logger) *Orchestrator {
	if opts.HeadingLabel == "" {
		opts.HeadingLabel = "Chapter"
	}
	if opts.ProbeAttempts == 0 {
		opts.ProbeAttempts = 1
	}
	return &Orchestrator{
		opts:    opts,
		queue:   queue,
		probe:   probe,
		store:   store,
		tracker: tracker,
		log:     log,
		runs:    make(chan *Run, 1),
		idle:    make(chan struct{}),
	}
}

// Start launches the summarization queue and the run worker.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.queue.Start(workerCtx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case run := <-o.runs:
				o.process(workerCtx, run)
			}
		}
	}()
}

// Stop shuts the pipeline down. An in-flight run is abandoned and later
// triggers fail with ErrStopped.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopped = true
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.queue.Stop()
	o.wg.Wait()

	// A run accepted just before Stop may never have reached the worker.
	select {
	case run := <-o.runs:
		o.tracker.Fail(run.ID, ErrStopped.Error())
		o.release()
	default:
	}
}

// Begin validates and prepares a run, then hands it to the worker. It
// returns once the chapters are known; summarization continues in the
// background and is observed through the tracker.
func (o *Orchestrator) Begin(ctx context.Context, filename string, data []byte) (*Run, error) {
	if !o.active.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	o.mu.Lock()
	stopped := o.stopped
	o.mu.Unlock()
	if stopped {
		o.release()
		return nil, ErrStopped
	}

	run, err := o.prepare(ctx, filename, data)
	if err != nil {
		o.release()
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		o.tracker.Fail(run.ID, ErrStopped.Error())
		o.releaseLocked()
		return nil, ErrStopped
	}
	o.current = run
	// The single-run guard keeps the buffer empty, so this never blocks.
	o.runs <- run
	return run, nil
}

func (o *Orchestrator) prepare(ctx context.Context, filename string, data []byte) (*Run, error) {
	runID := uuid.NewString()
	log := o.log.With("run_id", runID, "filename", filename)

	fail := func(err error) (*Run, error) {
		log.Error("run rejected", "error", err)
		o.tracker.Fail(runID, err.Error())
		return nil, err
	}

	o.tracker.Start(runID, 0)

	p, err := parser.ForFile(filename, o.opts.Parser)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrExtraction, err))
	}

	err = retry.Do(
		func() error { return o.probe.HealthCheck(ctx) },
		retry.Context(ctx),
		retry.Attempts(o.opts.ProbeAttempts),
		retry.Delay(o.opts.ProbeDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("summarization server probe failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrResourceUnavailable, err))
	}

	if err := o.store.SaveUpload(filename, data); err != nil {
		log.Warn("keeping upload failed", "error", err)
	}

	text, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrExtraction, err))
	}
	if strings.TrimSpace(text) == "" {
		return fail(ErrExtraction)
	}
	if err := o.store.SaveSource(text); err != nil {
		return fail(err)
	}

	seg := segment.Segment(text, o.opts.Segment)
	if seg.PreambleDropped > 0 {
		log.Warn("front matter dropped", "chars", seg.PreambleDropped)
	}
	if seg.Fallback {
		log.Info("no chapter headings found, using fixed windows", "windows", len(seg.Chapters))
	}
	if len(seg.Chapters) == 0 {
		return fail(fmt.Errorf("%w: no chapters found", ErrExtraction))
	}
	doc := doctree.NewDocument(parser.Title(filename), text, seg.Chapters)
	if err := o.store.SaveChapterInfo(doc.ChapterLengths()); err != nil {
		return fail(err)
	}

	run := newRun(runID, filename, doc.Title, doc)
	o.tracker.SetTotal(len(doc.Chapters))
	log.Info("run accepted", "chapters", len(doc.Chapters), "chars", len([]rune(text)), "content_hash", run.ContentHash)
	return run, nil
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.releaseLocked()
}

func (o *Orchestrator) releaseLocked() {
	o.active.Store(false)
	close(o.idle)
	o.idle = make(chan struct{})
}

// Active reports whether a run is in progress.
func (o *Orchestrator) Active() bool {
	return o.active.Load()
}

// Current returns the most recently accepted run, or nil.
func (o *Orchestrator) Current() *Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Wait blocks until no run is active or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	for {
		o.mu.Lock()
		idle, active := o.idle, o.active.Load()
		o.mu.Unlock()
		if !active {
			return nil
		}
		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Store returns the artifact store for direct use by API handlers.
func (o *Orchestrator) Store() *artifacts.Store {
	return o.store
}

// Tracker returns the progress tracker polled by API handlers.
func (o *Orchestrator) Tracker() *progress.Tracker {
	return o.tracker
}
