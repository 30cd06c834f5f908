package doctree

// Document is one run's source text and the chapters derived from it.
type Document struct {
	Title    string     // Source filename without extension
	Text     string     // Extracted text, immutable once captured
	Chapters []*Chapter // In discovery order
}

// ChapterStatus tracks a chapter through summarization.
type ChapterStatus string

const (
	ChapterPending    ChapterStatus = "pending"
	ChapterInProgress ChapterStatus = "in_progress"
	ChapterCompleted  ChapterStatus = "completed"
)

// Chapter is a contiguous, filtered segment of source text summarized as one unit.
type Chapter struct {
	Index   int    // 0-based, order preserving
	Text    string // Raw text span
	Chunks  []Chunk
	Summary string // Chunk results joined by blank lines
	Status  ChapterStatus
}

// Chunk is a bounded sub-segment of a chapter.
type Chunk struct {
	Index   int    // Position within the chapter
	Text    string // Chunk content
	Summary string // Model output, or an error marker when Failed
	Failed  bool
}

// NewDocument builds a Document with one pending chapter per segment.
func NewDocument(title, text string, segments []string) *Document {
	doc := &Document{Title: title, Text: text}
	for i, seg := range segments {
		doc.Chapters = append(doc.Chapters, &Chapter{
			Index:  i,
			Text:   seg,
			Status: ChapterPending,
		})
	}
	return doc
}

// ChapterLengths returns the character length of each chapter, in order.
func (d *Document) ChapterLengths() []int {
	out := make([]int, len(d.Chapters))
	for i, ch := range d.Chapters {
		out[i] = len([]rune(ch.Text))
	}
	return out
}

// FailedChunks counts chunks whose summary is an error marker.
func (c *Chapter) FailedChunks() int {
	n := 0
	for _, ck := range c.Chunks {
		if ck.Failed {
			n++
		}
	}
	return n
}
