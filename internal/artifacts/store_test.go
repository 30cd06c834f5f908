package artifacts

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SourceAndChapterInfo(t *testing.T) {
	s := NewStore(t.TempDir() + "/out")

	require.NoError(t, s.SaveSource("full text"))
	require.NoError(t, s.SaveChapterInfo([]int{120, 4500}))

	src, err := os.ReadFile(s.Path(SourceFile))
	require.NoError(t, err)
	assert.Equal(t, "full text", string(src))

	raw, err := os.ReadFile(s.Path(ChapterInfoFile))
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.EqualValues(t, 2, got["total_chapters"])
	assert.Equal(t, []any{120.0, 4500.0}, got["chapters_lengths"])

	info, err := s.ReadChapterInfo()
	require.NoError(t, err)
	assert.Equal(t, ChapterInfo{TotalChapters: 2, ChaptersLengths: []int{120, 4500}}, info)
}

func TestStore_ReadChapterInfoMissing(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.ReadChapterInfo()
	assert.ErrorIs(t, err, ErrNoChapterInfo)
}

func TestStore_EmptyChapterInfo(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.SaveChapterInfo(nil))

	raw, err := os.ReadFile(s.Path(ChapterInfoFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"chapters_lengths": []`)
}

func TestStore_LogResetAndAppend(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.AppendLog("## Chapter 1\n\nold run"))
	require.NoError(t, s.ResetLog())
	require.NoError(t, s.AppendLog("## Chapter 1\n\nfirst"))
	require.NoError(t, s.AppendLog("## Chapter 2\n\nsecond"))

	raw, err := os.ReadFile(s.Path(LogFile))
	require.NoError(t, err)
	assert.Equal(t, "## Chapter 1\n\nfirst\n\n## Chapter 2\n\nsecond\n\n", string(raw))
}

func TestStore_Summary(t *testing.T) {
	s := NewStore(t.TempDir())

	_, err := s.ReadSummary()
	assert.ErrorIs(t, err, ErrNoSummary)

	require.NoError(t, s.SaveSummary("## Chapter 1\n\nx"))
	doc, err := s.ReadSummary()
	require.NoError(t, err)
	assert.Equal(t, "## Chapter 1\n\nx", doc)
}

func TestStore_SaveUploadStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, s.SaveUpload("../../etc/book.pdf", []byte("%PDF")))
	_, err := os.Stat(s.Path("book.pdf"))
	assert.NoError(t, err)

	assert.Error(t, s.SaveUpload("", nil))
}
