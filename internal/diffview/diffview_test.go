package diffview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileDiff_Equal(t *testing.T) {
	assert.Nil(t, FileDiff("x.lua", "a\nb\n", "a\nb\n"))

	out, err := Unified("x.lua", "same", "same")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFileDiff_Insertion(t *testing.T) {
	fd := FileDiff("main.lua", "a\nb\n", "a\nx\nb\n")
	require.NotNil(t, fd)
	require.Len(t, fd.Hunks, 1)

	h := fd.Hunks[0]
	assert.Equal(t, int32(1), h.OrigStartLine)
	assert.Equal(t, int32(2), h.OrigLines)
	assert.Equal(t, int32(1), h.NewStartLine)
	assert.Equal(t, int32(3), h.NewLines)
	assert.Equal(t, " a\n+x\n b\n", string(h.Body))
	assert.Equal(t, Stats{Added: 1}, Stat(fd))
}

func TestFileDiff_ContextIsTrimmed(t *testing.T) {
	before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	after := "1\n2\n3\n4\nFIVE\n6\n7\n8\n9\n"

	h := FileDiff("n.lua", before, after).Hunks[0]
	assert.Equal(t, int32(2), h.OrigStartLine)
	assert.Equal(t, int32(7), h.OrigLines)
	assert.Equal(t, " 2\n 3\n 4\n-5\n+FIVE\n 6\n 7\n 8\n", string(h.Body))
}

func TestFileDiff_Replacement(t *testing.T) {
	fd := FileDiff("f.lua", "function foo()\nend", "function bar()\nend")
	assert.Equal(t, "-function foo()\n+function bar()\n end\n", string(fd.Hunks[0].Body))
	assert.Equal(t, Stats{Added: 1, Removed: 1}, Stat(fd))
}

func TestFileDiff_FromEmpty(t *testing.T) {
	h := FileDiff("new.lua", "", "a").Hunks[0]
	assert.Equal(t, "-\n+a\n", string(h.Body))
}

func TestUnified_Headers(t *testing.T) {
	out, err := Unified("main.lua", "a\nb\n", "a\nx\nb\n")
	require.NoError(t, err)
	assert.Contains(t, out, "--- a/main.lua\n")
	assert.Contains(t, out, "+++ b/main.lua\n")
	assert.Contains(t, out, "@@ ")
	assert.Contains(t, out, "+x\n")
}

func TestStat_Nil(t *testing.T) {
	assert.Equal(t, Stats{}, Stat(nil))
}
