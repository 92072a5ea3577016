package buffer

import (
	"strings"

	"github.com/LiXizhi/nplmerge/internal/grapheme"
)

type Options struct {
	HistoryLimit int // default: 1000, negative disables undo
	// LineEnding joins lines in Text. LineEndingAuto detects it from the
	// initial text.
	LineEnding LineEnding
}

type selectionState struct {
	active bool
	anchor Pos
	end    Pos
}

// Buffer is an in-memory host document: grapheme-split lines, a line ending,
// a selection and undo history. It satisfies the live document contract used
// by package document, and package document stages file edits in it.
type Buffer struct {
	lines   [][]string
	ending  LineEnding
	version uint64

	sel selectionState

	opt  Options
	hist historyState

	lastChange    Change
	hasLastChange bool
}

func New(text string, opt Options) *Buffer {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	ending := opt.LineEnding
	if ending == LineEndingAuto {
		ending = DetectLineEnding(text)
	}
	return &Buffer{
		lines:  splitLines(text),
		ending: ending,
		opt:    opt,
	}
}

// Text returns the whole document joined with the buffer's line ending.
func (b *Buffer) Text() string {
	if len(b.lines) == 0 {
		return ""
	}

	eol := b.ending.Sequence()
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteString(eol)
		}
		sb.WriteString(grapheme.Join(line))
	}
	return sb.String()
}

// Version increments on every text or selection mutation.
func (b *Buffer) Version() uint64 { return b.version }

func (b *Buffer) LineEnding() LineEnding { return b.ending }

// LineCount is at least 1; the empty document has one empty line.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns line i without its terminator, or "" when i is out of range.
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return grapheme.Join(b.lines[i])
}

// LineLen returns the grapheme length of line i.
func (b *Buffer) LineLen(i int) int {
	if i < 0 || i >= len(b.lines) {
		return 0
	}
	return len(b.lines[i])
}

// Len is the document length in characters, line breaks included.
func (b *Buffer) Len() int {
	n := 0
	for _, l := range b.lines {
		n += len(l)
	}
	return n + (len(b.lines)-1)*b.ending.Width()
}

// Translator converts between positions and offsets of the current text.
func (b *Buffer) Translator() Translator {
	return NewTranslator(b, b.ending)
}

func (b *Buffer) Selection() (Span, bool) {
	if !b.sel.active {
		return Span{}, false
	}
	s := NormalizeSpan(Span{Start: b.sel.anchor, End: b.sel.end})
	if s.IsEmpty() {
		return Span{}, false
	}
	return s, true
}

// SelectionRaw returns the raw selection anchor/end without normalization.
func (b *Buffer) SelectionRaw() (Span, bool) {
	if !b.sel.active || b.sel.anchor == b.sel.end {
		return Span{}, false
	}
	return Span{Start: b.sel.anchor, End: b.sel.end}, true
}

func (b *Buffer) SetSelection(s Span) {
	clamped := ClampSpan(s, len(b.lines), b.LineLen)
	next := selectionState{
		active: true,
		anchor: clamped.Start,
		end:    clamped.End,
	}
	if NormalizeSpan(clamped).IsEmpty() {
		next = selectionState{}
	}

	prev, prevOK := b.Selection()
	b.sel = next
	cur, curOK := b.Selection()
	if prevOK == curOK && (!prevOK || prev == cur) {
		return
	}
	b.version++
}

func (b *Buffer) ClearSelection() {
	if !b.sel.active {
		return
	}
	if _, ok := b.Selection(); !ok {
		b.sel = selectionState{}
		return
	}
	b.sel = selectionState{}
	b.version++
}

func splitLines(text string) [][]string {
	parts := SplitLines(text)
	lines := make([][]string, 0, len(parts))
	for _, s := range parts {
		lines = append(lines, grapheme.Split(s))
	}
	return lines
}
