package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/doctree"
)

// Summarizer produces a summary for one piece of text.
type Summarizer interface {
	Summarize(ctx context.Context, instructions, content string) (string, error)
}

// Config controls call pacing and deadlines.
type Config struct {
	Instructions string
	Timeout      time.Duration // Per-call deadline.
	Pace         time.Duration // Pause after each call before the next is taken.
}

// DefaultConfig allows five minutes per call and pauses half a second between calls.
var DefaultConfig = Config{
	Timeout: 300 * time.Second,
	Pace:    500 * time.Millisecond,
}

// ErrStopped is returned by Submit once the queue has been stopped.
var ErrStopped = errors.New("summarization queue stopped")

type reply struct {
	text string
	err  error
}

type request struct {
	ctx     context.Context
	content string
	done    chan reply
}

// Queue serializes summarization calls: at most one call is in flight
// at any moment, and calls are served in submission order.
type Queue struct {
	backend Summarizer
	cfg     Config
	log     *slog.Logger

	requests chan *request
	stopped  chan struct{}
	once     sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewQueue creates a queue over backend. Call Start before Submit.
func NewQueue(backend Summarizer, cfg Config, log *slog.Logger) *Queue {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}
	if cfg.Pace < 0 {
		cfg.Pace = 0
	}
	return &Queue{
		backend:  backend,
		cfg:      cfg,
		log:      log,
		requests: make(chan *request, 1),
		stopped:  make(chan struct{}),
	}
}

// Start launches the single worker that drains the queue.
func (q *Queue) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	q.cancel = cancel

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-workerCtx.Done():
				return
			case req := <-q.requests:
				q.serve(workerCtx, req)
			}
		}
	}()
}

// Stop shuts the worker down. Pending Submit calls return ErrStopped.
func (q *Queue) Stop() {
	q.once.Do(func() {
		close(q.stopped)
		if q.cancel != nil {
			q.cancel()
		}
	})
	q.wg.Wait()
}

func (q *Queue) serve(workerCtx context.Context, req *request) {
	ctx, cancel := context.WithTimeout(req.ctx, q.cfg.Timeout)
	text, err := q.backend.Summarize(ctx, q.cfg.Instructions, req.content)
	cancel()
	req.done <- reply{text: text, err: err}

	if q.cfg.Pace > 0 {
		select {
		case <-time.After(q.cfg.Pace):
		case <-workerCtx.Done():
		}
	}
}

// Submit enqueues content and blocks until its summary is ready.
func (q *Queue) Submit(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	req := &request{ctx: ctx, content: content, done: make(chan reply, 1)}

	select {
	case q.requests <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-q.stopped:
		return "", ErrStopped
	}

	select {
	case r := <-req.done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-q.stopped:
		return "", ErrStopped
	}
}

// ChunkErrorMarker is the text substituted for a chunk whose call failed.
func ChunkErrorMarker(index int, err error) string {
	return fmt.Sprintf("[Chunk %d processing error: %s]", index+1, err)
}

// SummarizeChapter summarizes every chunk of ch in order and joins the
// results into ch.Summary. A failed chunk is replaced by its error marker
// and the remaining chunks still run.
func (q *Queue) SummarizeChapter(ctx context.Context, ch *doctree.Chapter) error {
	log := q.log.With("chapter", ch.Index+1, "chunks", len(ch.Chunks))
	ch.Status = doctree.ChapterInProgress

	parts := make([]string, 0, len(ch.Chunks))
	for i := range ch.Chunks {
		chunk := &ch.Chunks[i]
		text, err := q.Submit(ctx, chunk.Text)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrStopped) {
				return fmt.Errorf("chapter %d chunk %d: %w", ch.Index+1, i+1, err)
			}
			log.Warn("chunk summarization failed", "chunk", i+1, "error", err)
			chunk.Failed = true
			text = ChunkErrorMarker(i, err)
		}
		chunk.Summary = text
		parts = append(parts, text)
	}

	ch.Summary = strings.Join(parts, "\n\n")
	ch.Status = doctree.ChapterCompleted
	log.Info("chapter summarized", "failed_chunks", ch.FailedChunks())
	return nil
}
