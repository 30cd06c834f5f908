package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsum/internal/doctree"
)

// Config controls chunking behavior.
type Config struct {
	MaxChunkSize  int     // Maximum chunk length in characters.
	BoundaryRatio float64 // A sentence cut is taken only past this fraction of the window.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxChunkSize:  15000,
		BoundaryRatio: 0.7,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxChunkSize <= 0 {
		c.MaxChunkSize = d.MaxChunkSize
	}
	if c.BoundaryRatio <= 0 || c.BoundaryRatio >= 1 {
		c.BoundaryRatio = d.BoundaryRatio
	}
	return c
}

// Split breaks chapter text into ordered chunks of at most MaxChunkSize
// characters, preferring to cut just after a sentence end or line break.
// Every chunk is trimmed; empty chunks are not emitted.
func Split(text string, cfg Config) []string {
	cfg = cfg.withDefaults()
	size := cfg.MaxChunkSize

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if utf8.RuneCountInString(trimmed) <= size {
		return []string{trimmed}
	}

	runes := []rune(text)
	threshold := float64(size) * cfg.BoundaryRatio

	var chunks []string
	for cursor := 0; cursor < len(runes); {
		end := min(cursor+size, len(runes))
		window := runes[cursor:end]

		if end < len(runes) {
			if cut := lastBoundary(window); cut >= 0 && float64(cut) > threshold {
				window = window[:cut+1]
			}
		}
		// len(window) >= 1, so the cursor always advances.
		cursor += len(window)

		if s := strings.TrimSpace(string(window)); s != "" {
			chunks = append(chunks, s)
		}
	}
	return chunks
}

// lastBoundary returns the offset of the last sentence terminator or
// newline in the window, or -1.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		switch window[i] {
		case '.', '!', '?', '\n':
			return i
		}
	}
	return -1
}

// ChunkChapter fills ch.Chunks from ch.Text.
func ChunkChapter(ch *doctree.Chapter, cfg Config) {
	parts := Split(ch.Text, cfg)
	ch.Chunks = make([]doctree.Chunk, 0, len(parts))
	for i, p := range parts {
		ch.Chunks = append(ch.Chunks, doctree.Chunk{Index: i, Text: p})
	}
}
