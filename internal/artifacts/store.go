// Package artifacts persists the files a summarization run leaves behind
// in the output directory.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	SourceFile      = "source_text.txt"
	ChapterInfoFile = "chapters_info.json"
	LogFile         = "generation_log.md"
	SummaryFile     = "summary.md"
	DOCXFile        = "summary.docx"
)

// ErrNoSummary is returned when no run has produced a summary yet.
var ErrNoSummary = errors.New("summary not found")

// ErrNoChapterInfo is returned when no document has been segmented yet.
var ErrNoChapterInfo = errors.New("chapter info not found")

// ChapterInfo is the segmentation metadata written before summarization starts.
type ChapterInfo struct {
	TotalChapters   int   `json:"total_chapters"`
	ChaptersLengths []int `json:"chapters_lengths"`
}

// Store reads and writes run artifacts under a single directory.
type Store struct {
	dir string
	mu  sync.Mutex // serializes log appends
}

// NewStore writes artifacts under dir, creating it on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the absolute location of an artifact.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) write(name string, data []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// SaveUpload keeps a copy of the uploaded file. Only the base name is used.
func (s *Store) SaveUpload(filename string, data []byte) error {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return fmt.Errorf("invalid upload name %q", filename)
	}
	return s.write(name, data)
}

func (s *Store) SaveSource(text string) error {
	return s.write(SourceFile, []byte(text))
}

func (s *Store) SaveChapterInfo(lengths []int) error {
	if lengths == nil {
		lengths = []int{}
	}
	data, err := json.MarshalIndent(ChapterInfo{
		TotalChapters:   len(lengths),
		ChaptersLengths: lengths,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chapter info: %w", err)
	}
	return s.write(ChapterInfoFile, data)
}

// ReadChapterInfo loads the metadata of the last segmented document.
func (s *Store) ReadChapterInfo() (ChapterInfo, error) {
	var info ChapterInfo
	data, err := os.ReadFile(s.Path(ChapterInfoFile))
	if errors.Is(err, os.ErrNotExist) {
		return info, ErrNoChapterInfo
	}
	if err != nil {
		return info, fmt.Errorf("read chapter info: %w", err)
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("decode chapter info: %w", err)
	}
	return info, nil
}

// ResetLog truncates the generation log at the start of a run.
func (s *Store) ResetLog() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(LogFile, nil)
}

// AppendLog adds one finished chapter section to the generation log.
func (s *Store) AppendLog(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.OpenFile(s.Path(LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if _, err := f.WriteString(section + "\n\n"); err != nil {
		f.Close()
		return fmt.Errorf("append log: %w", err)
	}
	return f.Close()
}

func (s *Store) SaveSummary(doc string) error {
	return s.write(SummaryFile, []byte(doc))
}

// ReadSummary returns the last final document, or ErrNoSummary.
func (s *Store) ReadSummary() (string, error) {
	data, err := os.ReadFile(s.Path(SummaryFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoSummary
	}
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return string(data), nil
}
