package buffer

import (
	"fmt"

	"github.com/LiXizhi/nplmerge/internal/grapheme"
)

// TextIn returns the text covered by s.
func (b *Buffer) TextIn(s Span) (string, error) {
	if err := b.Translator().CheckSpan(s); err != nil {
		return "", err
	}
	return textForLinesSpan(b.lines, s, b.ending.Sequence()), nil
}

// Replace overwrites s with text. Unlike Apply, s must be well-formed and
// inside the document.
func (b *Buffer) Replace(s Span, text string) (AppliedEdit, error) {
	if err := b.Translator().CheckSpan(s); err != nil {
		return AppliedEdit{}, err
	}

	change := b.beginChange(ChangeSourceLocal)
	sel := b.sel
	applied, changed := b.replaceSpan(s, text)
	if !changed {
		return AppliedEdit{Before: s, After: s, Inserted: text, Deleted: text}, nil
	}
	b.sel = selectionState{}
	b.version++
	b.pushUndo(undoStep{edits: []AppliedEdit{applied}, sel: sel})
	change.addAppliedEdit(applied)
	b.commitChange(change)
	return applied, nil
}

// ReplaceChars replaces count characters at linear offset off with text as a
// single undo step.
func (b *Buffer) ReplaceChars(off, count int, text string) error {
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	}
	s, err := b.Translator().Span(off, count)
	if err != nil {
		return err
	}
	_, err = b.Replace(s, text)
	return err
}

// InsertChars inserts text at linear offset off.
func (b *Buffer) InsertChars(off int, text string) error {
	p, err := b.Translator().Pos(off)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	_, err = b.Replace(Span{Start: p, End: p}, text)
	return err
}

// DeleteChars removes count characters starting at linear offset off.
func (b *Buffer) DeleteChars(off, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	}
	s, err := b.Translator().Span(off, count)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	_, err = b.Replace(s, "")
	return err
}

func (b *Buffer) replaceSpan(s Span, text string) (applied AppliedEdit, changed bool) {
	s = NormalizeSpan(ClampSpan(s, len(b.lines), b.LineLen))
	if s.IsEmpty() && text == "" {
		return AppliedEdit{}, false
	}

	startLine, startCol := s.Start.Line, s.Start.Col
	endLine, endCol := s.End.Line, s.End.Col
	deleted := textForLinesSpan(b.lines, s, b.ending.Sequence())
	if deleted == text {
		return AppliedEdit{}, false
	}

	prefix := append([]string(nil), b.lines[startLine][:startCol]...)
	suffix := append([]string(nil), b.lines[endLine][endCol:]...)

	parts := SplitLines(text)
	ins := make([][]string, 0, len(parts))
	for _, p := range parts {
		ins = append(ins, grapheme.Split(p))
	}

	var end Pos
	repl := make([][]string, 0, len(ins))
	if len(ins) == 1 {
		line := make([]string, 0, len(prefix)+len(ins[0])+len(suffix))
		line = append(line, prefix...)
		line = append(line, ins[0]...)
		line = append(line, suffix...)
		repl = append(repl, line)
		end = Pos{Line: startLine, Col: len(prefix) + len(ins[0])}
	} else {
		first := make([]string, 0, len(prefix)+len(ins[0]))
		first = append(first, prefix...)
		first = append(first, ins[0]...)
		repl = append(repl, first)

		for i := 1; i < len(ins)-1; i++ {
			repl = append(repl, append([]string(nil), ins[i]...))
		}

		lastPart := ins[len(ins)-1]
		last := make([]string, 0, len(lastPart)+len(suffix))
		last = append(last, lastPart...)
		last = append(last, suffix...)
		repl = append(repl, last)

		end = Pos{Line: startLine + len(ins) - 1, Col: len(lastPart)}
	}

	before := b.lines[:startLine]
	after := b.lines[endLine+1:]
	out := make([][]string, 0, len(before)+len(repl)+len(after))
	out = append(out, before...)
	out = append(out, repl...)
	out = append(out, after...)
	if len(out) == 0 {
		out = [][]string{nil}
	}

	b.lines = out
	return AppliedEdit{
		Before:   s,
		After:    Span{Start: s.Start, End: end},
		Inserted: text,
		Deleted:  deleted,
	}, true
}

func textForLinesSpan(lines [][]string, s Span, eol string) string {
	s = NormalizeSpan(s)
	if s.IsEmpty() {
		return ""
	}

	startLine, endLine := s.Start.Line, s.End.Line
	startCol, endCol := s.Start.Col, s.End.Col

	if startLine == endLine {
		return grapheme.Join(lines[startLine][startCol:endCol])
	}

	var out []string
	for i := startLine; i <= endLine; i++ {
		from, to := 0, len(lines[i])
		if i == startLine {
			from = startCol
		}
		if i == endLine {
			to = endCol
		}
		out = append(out, grapheme.Join(lines[i][from:to]))
	}
	return joinLines(out, eol)
}

func joinLines(lines []string, eol string) string {
	n := 0
	for _, l := range lines {
		n += len(l) + len(eol)
	}
	buf := make([]byte, 0, n)
	for i, l := range lines {
		if i > 0 {
			buf = append(buf, eol...)
		}
		buf = append(buf, l...)
	}
	return string(buf)
}
