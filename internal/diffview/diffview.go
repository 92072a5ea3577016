// Package diffview renders the change between a document's original and
// staged text as a unified diff.
package diffview

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/LiXizhi/nplmerge/buffer"
)

// Context is the number of unchanged lines around the change.
const Context = 3

type Stats struct {
	Added   int
	Removed int
}

// FileDiff returns a single-hunk diff covering everything between the first
// and last differing line, or nil when before and after are equal.
func FileDiff(path, before, after string) *diff.FileDiff {
	if before == after {
		return nil
	}
	a, b := splitLines(before, after)

	p := 0
	for p < len(a) && p < len(b) && a[p] == b[p] {
		p++
	}
	s := 0
	for s < len(a)-p && s < len(b)-p && a[len(a)-1-s] == b[len(b)-1-s] {
		s++
	}
	origEnd, newEnd := len(a)-s, len(b)-s

	start := max(0, p-Context)
	tail := min(len(a), origEnd+Context)

	var body bytes.Buffer
	writeLines(&body, ' ', a[start:p])
	writeLines(&body, '-', a[p:origEnd])
	writeLines(&body, '+', b[p:newEnd])
	writeLines(&body, ' ', a[origEnd:tail])

	h := &diff.Hunk{
		OrigLines: int32(tail - start),
		NewLines:  int32((p - start) + (newEnd - p) + (tail - origEnd)),
		Body:      body.Bytes(),
	}
	h.OrigStartLine = startLine(start, h.OrigLines)
	h.NewStartLine = startLine(start, h.NewLines)

	return &diff.FileDiff{
		OrigName: "a/" + path,
		NewName:  "b/" + path,
		Hunks:    []*diff.Hunk{h},
	}
}

// Unified prints the diff between before and after; "" when they are equal.
func Unified(path, before, after string) (string, error) {
	fd := FileDiff(path, before, after)
	if fd == nil {
		return "", nil
	}
	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", fmt.Errorf("printing diff for %s: %w", path, err)
	}
	return string(out), nil
}

// Stat counts added and removed lines in fd.
func Stat(fd *diff.FileDiff) Stats {
	var st Stats
	if fd == nil {
		return st
	}
	for _, h := range fd.Hunks {
		for _, line := range strings.Split(string(h.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				st.Added++
			case strings.HasPrefix(line, "-"):
				st.Removed++
			}
		}
	}
	return st
}

// splitLines drops the empty last element when both texts end in a line
// break, so the final newline is not shown as a line of its own.
func splitLines(before, after string) ([]string, []string) {
	a, b := buffer.SplitLines(before), buffer.SplitLines(after)
	if len(a) > 1 && len(b) > 1 && a[len(a)-1] == "" && b[len(b)-1] == "" {
		a, b = a[:len(a)-1], b[:len(b)-1]
	}
	return a, b
}

func writeLines(w *bytes.Buffer, prefix byte, lines []string) {
	for _, l := range lines {
		w.WriteByte(prefix)
		w.WriteString(l)
		w.WriteByte('\n')
	}
}

// startLine is 1-based, except that an empty side starts at the line before.
func startLine(start int, n int32) int32 {
	if n == 0 {
		return int32(start)
	}
	return int32(start + 1)
}
