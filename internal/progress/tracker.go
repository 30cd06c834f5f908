package progress

import (
	"strings"
	"sync"
	"time"
)

// Status is the run-level processing status.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// State is a read-only, JSON-safe copy of the tracker.
type State struct {
	RunID          string    `json:"run_id,omitempty"`
	Status         Status    `json:"status"`
	Progress       int       `json:"progress"`
	CurrentChapter int       `json:"current_chapter"`
	TotalChapters  int       `json:"total_chapters"`
	PreviewText    string    `json:"preview_text"`
	ErrorMessage   *string   `json:"error_message"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tracker records the progress of the current run. Only the pipeline
// writes to it; pollers read through Snapshot.
type Tracker struct {
	mu sync.RWMutex

	runID     string
	status    Status
	progress  int
	current   int
	total     int
	completed int
	preview   strings.Builder
	errMsg    string
	updatedAt time.Time
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{status: StatusIdle, updatedAt: time.Now()}
}

// Start enters Processing for a new run and clears everything left by the
// previous one. The total may be zero until the document is segmented.
func (t *Tracker) Start(runID string, totalChapters int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = runID
	t.status = StatusProcessing
	t.progress = 0
	t.current = 0
	t.total = totalChapters
	t.completed = 0
	t.preview.Reset()
	t.errMsg = ""
	t.updatedAt = time.Now()
}

// SetTotal records the chapter count once segmentation has finished.
func (t *Tracker) SetTotal(totalChapters int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusProcessing {
		return
	}
	t.total = totalChapters
	t.updatedAt = time.Now()
}

// ChapterDone records one finished chapter and appends its section
// (heading plus summary) to the preview. Progress stays below 100 until
// Complete.
func (t *Tracker) ChapterDone(section string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != StatusProcessing {
		return
	}
	t.completed++
	t.current++
	if t.total > 0 {
		pct := t.completed * 100 / t.total
		t.progress = max(t.progress, min(pct, 99))
	}
	if t.preview.Len() > 0 {
		t.preview.WriteString("\n\n")
	}
	t.preview.WriteString(section)
	t.updatedAt = time.Now()
}

// Complete marks the run finished. The preview becomes the final document.
func (t *Tracker) Complete(final string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusCompleted
	t.progress = 100
	t.current = t.total
	t.preview.Reset()
	t.preview.WriteString(final)
	t.updatedAt = time.Now()
}

// Fail records a structural failure. Chunk-level failures never come here.
func (t *Tracker) Fail(runID, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runID = runID
	t.status = StatusError
	t.errMsg = msg
	t.updatedAt = time.Now()
}

// Status returns the current status.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := State{
		RunID:          t.runID,
		Status:         t.status,
		Progress:       t.progress,
		CurrentChapter: t.current,
		TotalChapters:  t.total,
		PreviewText:    t.preview.String(),
		UpdatedAt:      t.updatedAt,
	}
	if t.errMsg != "" {
		msg := t.errMsg
		s.ErrorMessage = &msg
	}
	return s
}
