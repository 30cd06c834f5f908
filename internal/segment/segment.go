// Package segment splits extracted document text into chapters.
//
// Boundaries are found heuristically: a line that starts with an optional
// numeral followed by one of the configured keywords, or a markdown heading
// marker. Fragments that are too short or look like a table of contents are
// dropped. Everything here is a pure function of its inputs.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Config parameterizes segmentation and junk detection.
type Config struct {
	Keywords    []string // Boundary keywords, matched case-insensitively.
	StopPhrases []string // Lower-case phrases marking junk near a fragment's start.

	// Text before the first boundary that does not open with a heading is
	// front matter when it is at most MaxPreambleLength characters long.
	// Longer leading text is body and goes through the normal filters.
	// KeepPreamble keeps it regardless of length.
	KeepPreamble      bool
	MaxPreambleLength int

	MinLength    int // Fragments shorter than this (trimmed, in characters) are dropped.
	FallbackSize int // Window size used when no chapters survive.

	ProbeLength      int     // Leading characters searched for stop phrases.
	DotRatio         float64 // Dot density above which a fragment may be a contents listing.
	MinLines         int     // A contents listing has more lines than this.
	SampleLines      int     // Leading lines used for the average line length.
	MaxAvgLineLength int     // A contents listing has shorter average lines than this.
}

// DefaultKeywords covers Russian study material plus English equivalents.
var DefaultKeywords = []string{
	"Вариант", "Глава", "Раздел", "Итог", "Тема", "Введение", "Эпилог",
	"Chapter", "Epilogue",
}

// DefaultStopPhrases mark tables of contents and front matter.
var DefaultStopPhrases = []string{
	"оглавление", "содержание", "contents", "table of contents",
	"введение", "предисловие", "preface", "introduction",
}

// DefaultConfig returns the documented thresholds.
func DefaultConfig() Config {
	return Config{
		Keywords:          DefaultKeywords,
		StopPhrases:       DefaultStopPhrases,
		MaxPreambleLength: 2000,
		MinLength:         100,
		FallbackSize:      15000,
		ProbeLength:       200,
		DotRatio:          0.10,
		MinLines:          5,
		SampleLines:       10,
		MaxAvgLineLength:  50,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if len(c.Keywords) == 0 {
		c.Keywords = d.Keywords
	}
	if len(c.StopPhrases) == 0 {
		c.StopPhrases = d.StopPhrases
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.FallbackSize <= 0 {
		c.FallbackSize = d.FallbackSize
	}
	if c.MaxPreambleLength <= 0 {
		c.MaxPreambleLength = d.MaxPreambleLength
	}
	if c.ProbeLength <= 0 {
		c.ProbeLength = d.ProbeLength
	}
	if c.DotRatio <= 0 {
		c.DotRatio = d.DotRatio
	}
	if c.MinLines <= 0 {
		c.MinLines = d.MinLines
	}
	if c.SampleLines <= 0 {
		c.SampleLines = d.SampleLines
	}
	if c.MaxAvgLineLength <= 0 {
		c.MaxAvgLineLength = d.MaxAvgLineLength
	}
	return c
}

// minWindowLength is the trimmed length a fallback window must exceed.
const minWindowLength = 100

// space also matches no-break and other Unicode spaces, which PDF
// extraction often leaves at the start of a line.
const space = `[\s\p{Zs}]`

func headingExpr(keywords []string) string {
	alts := make([]string, 0, len(keywords)+1)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			alts = append(alts, regexp.QuoteMeta(kw))
		}
	}
	alts = append(alts, `#{1,3}`+space)
	return `(?:\d+[.\s\p{Zs}-]*)?(?:` + strings.Join(alts, "|") + `)`
}

// BoundaryPattern compiles the chapter boundary expression for keywords.
// Group 1 marks where the next chapter begins; the newline and indentation
// before it belong to no chapter.
func BoundaryPattern(keywords []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\n` + space + `*(` + headingExpr(keywords) + `)`)
}

func leadingPattern(keywords []string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + space + `*` + headingExpr(keywords))
}

// Fragments cuts text at every boundary. The second return value reports
// whether any boundary was found.
func Fragments(text string, re *regexp.Regexp) ([]string, bool) {
	matches := re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}, false
	}
	frags := make([]string, 0, len(matches)+1)
	prev := 0
	for _, m := range matches {
		frags = append(frags, text[prev:m[0]])
		prev = m[2]
	}
	frags = append(frags, text[prev:])
	return frags, true
}

// Result is the outcome of segmenting one document.
type Result struct {
	Chapters        []string
	PreambleDropped int  // Characters of leading front matter discarded.
	Fallback        bool // Chapters are fixed windows, not keyword boundaries.
}

// Split returns the ordered chapter texts for a document.
func Split(text string, cfg Config) []string {
	return Segment(text, cfg).Chapters
}

// Segment cuts text into chapters at keyword boundaries.
//
// Short text before the first boundary is front matter (title page,
// contents) and is dropped unless it opens with a heading or KeepPreamble
// is set. When no boundary is found, or nothing survives filtering, the
// text is cut into fixed windows instead.
func Segment(text string, cfg Config) Result {
	cfg = cfg.withDefaults()

	var res Result
	frags, found := Fragments(text, BoundaryPattern(cfg.Keywords))
	if found {
		lead := leadingPattern(cfg.Keywords)
		for i, f := range frags {
			f = strings.TrimSpace(f)
			n := utf8.RuneCountInString(f)
			if i == 0 && !cfg.KeepPreamble && !lead.MatchString(f) && n <= cfg.MaxPreambleLength {
				res.PreambleDropped = n
				continue
			}
			if n < cfg.MinLength {
				continue
			}
			if IsJunk(f, cfg) {
				continue
			}
			res.Chapters = append(res.Chapters, f)
		}
	}

	if len(res.Chapters) == 0 {
		res.Chapters = FixedWindows(text, cfg.FallbackSize)
		res.Fallback = true
		res.PreambleDropped = 0
	}
	return res
}

// IsJunk reports whether a fragment is front matter or a contents listing.
func IsJunk(fragment string, cfg Config) bool {
	cfg = cfg.withDefaults()

	runes := []rune(fragment)
	head := runes
	if len(head) > cfg.ProbeLength {
		head = head[:cfg.ProbeLength]
	}
	lowerHead := strings.ToLower(string(head))
	for _, phrase := range cfg.StopPhrases {
		if phrase != "" && strings.Contains(lowerHead, strings.ToLower(phrase)) {
			return true
		}
	}

	return IsDotLeader(fragment, cfg)
}

// IsDotLeader detects "Title.......12" style listings: many dots, many
// lines and short lines.
func IsDotLeader(fragment string, cfg Config) bool {
	cfg = cfg.withDefaults()

	n := utf8.RuneCountInString(fragment)
	if n <= 100 {
		return false
	}
	ratio := float64(strings.Count(fragment, ".")) / float64(n)
	if ratio <= cfg.DotRatio {
		return false
	}
	lines := strings.Split(fragment, "\n")
	if len(lines) <= cfg.MinLines {
		return false
	}
	sample := lines[:min(cfg.SampleLines, len(lines))]
	total := 0
	for _, l := range sample {
		total += utf8.RuneCountInString(strings.TrimSpace(l))
	}
	avg := float64(total) / float64(len(sample))
	return avg < float64(cfg.MaxAvgLineLength)
}

// FixedWindows partitions text into windows of size characters, keeping
// windows with more than 100 non-blank characters.
func FixedWindows(text string, size int) []string {
	if size <= 0 {
		size = DefaultConfig().FallbackSize
	}
	runes := []rune(text)
	var out []string
	for i := 0; i < len(runes); i += size {
		w := string(runes[i:min(i+size, len(runes))])
		if utf8.RuneCountInString(strings.TrimSpace(w)) > minWindowLength {
			out = append(out, w)
		}
	}
	return out
}
