package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docsum/internal/doctree"
)

// RunStatus represents the state of a summarization run.
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
)

// Run tracks one document from trigger to final summary.
type Run struct {
	mu sync.Mutex

	ID       string
	Filename string
	Title    string

	Status      RunStatus
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	doc          *doctree.Document
	chaptersDone int
	failedChunks int
}

func newRun(id, filename, title string, doc *doctree.Document) *Run {
	now := time.Now()
	return &Run{
		ID:          id,
		Filename:    filename,
		Title:       title,
		Status:      RunQueued,
		ContentHash: ContentHashHex([]byte(doc.Text)),
		CreatedAt:   now,
		UpdatedAt:   now,
		doc:         doc,
	}
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.UpdatedAt = time.Now()
}

// ChapterFinished records one summarized chapter and its failed chunks.
func (r *Run) ChapterFinished(failedChunks int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chaptersDone++
	r.failedChunks += failedChunks
	r.UpdatedAt = time.Now()
}

// Document returns the document being summarized.
func (r *Run) Document() *doctree.Document {
	return r.doc
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID            string    `json:"run_id"`
	Filename      string    `json:"filename"`
	Title         string    `json:"title"`
	Status        RunStatus `json:"status"`
	ContentHash   string    `json:"content_hash"`
	TotalChapters int       `json:"total_chapters"`
	ChaptersDone  int       `json:"chapters_done"`
	FailedChunks  int       `json:"failed_chunks"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RunSnapshot{
		ID:            r.ID,
		Filename:      r.Filename,
		Title:         r.Title,
		Status:        r.Status,
		ContentHash:   r.ContentHash,
		TotalChapters: len(r.doc.Chapters),
		ChaptersDone:  r.chaptersDone,
		FailedChunks:  r.failedChunks,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
