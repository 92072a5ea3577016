package buffer

import (
	"fmt"
	"strings"

	"github.com/LiXizhi/nplmerge/internal/grapheme"
)

// Lines is the read-only line view a Translator works over.
type Lines interface {
	LineCount() int
	Line(i int) string
}

// lineLener is implemented by line stores that already know their grapheme
// lengths.
type lineLener interface {
	LineLen(i int) int
}

// Translator converts between (line, col) positions and linear character
// offsets. Every line break counts as Ending.Width() characters, so offsets
// match the text a document writes out.
//
// A Translator reads its Lines lazily; it reflects the current state of the
// underlying document.
type Translator struct {
	lines  Lines
	ending LineEnding
}

func NewTranslator(lines Lines, ending LineEnding) Translator {
	if ending == LineEndingAuto {
		ending = LineEndingLF
	}
	return Translator{lines: lines, ending: ending}
}

func (t Translator) Ending() LineEnding { return t.ending }

func (t Translator) LineCount() int {
	if t.lines == nil {
		return 1
	}
	if n := t.lines.LineCount(); n > 0 {
		return n
	}
	return 1
}

// LineLen returns the grapheme length of line i.
func (t Translator) LineLen(i int) int {
	if t.lines == nil || i < 0 || i >= t.lines.LineCount() {
		return 0
	}
	if ll, ok := t.lines.(lineLener); ok {
		return ll.LineLen(i)
	}
	return grapheme.Count(t.lines.Line(i))
}

// Len is the document length in characters.
func (t Translator) Len() int {
	n := t.LineCount()
	total := 0
	for i := 0; i < n; i++ {
		total += t.LineLen(i)
	}
	return total + (n-1)*t.ending.Width()
}

// CheckPos reports ErrOutOfRange unless p addresses an existing line and a
// column in [0, len(line)].
func (t Translator) CheckPos(p Pos) error {
	if p.Line < 0 || p.Line >= t.LineCount() || p.Col < 0 || p.Col > t.LineLen(p.Line) {
		return fmt.Errorf("%w: position %v", ErrOutOfRange, p)
	}
	return nil
}

// CheckSpan reports ErrInvalidSpan for reversed spans or endpoints outside
// the document.
func (t Translator) CheckSpan(s Span) error {
	if !s.Ordered() {
		return fmt.Errorf("%w: %v", ErrInvalidSpan, s)
	}
	if t.CheckPos(s.Start) != nil || t.CheckPos(s.End) != nil {
		return fmt.Errorf("%w: %v outside document", ErrInvalidSpan, s)
	}
	return nil
}

// Offset returns the linear offset of p.
func (t Translator) Offset(p Pos) (int, error) {
	if err := t.CheckPos(p); err != nil {
		return 0, err
	}
	w := t.ending.Width()
	off := 0
	for i := 0; i < p.Line; i++ {
		off += t.LineLen(i) + w
	}
	return off + p.Col, nil
}

// Pos returns the position of a linear offset. Offsets that fall between the
// two characters of a CRLF break have no position and fail with
// ErrOutOfRange.
func (t Translator) Pos(off int) (Pos, error) {
	if off < 0 {
		return Pos{}, fmt.Errorf("%w: offset %d", ErrOutOfRange, off)
	}
	n := t.LineCount()
	w := t.ending.Width()
	cur := 0
	for i := 0; i < n; i++ {
		l := t.LineLen(i)
		if off <= cur+l {
			return Pos{Line: i, Col: off - cur}, nil
		}
		cur += l
		if i == n-1 {
			break
		}
		if off < cur+w {
			return Pos{}, fmt.Errorf("%w: offset %d splits a line break", ErrOutOfRange, off)
		}
		cur += w
	}
	return Pos{}, fmt.Errorf("%w: offset %d past end %d", ErrOutOfRange, off, cur)
}

// Range converts s into a start offset and a character count.
func (t Translator) Range(s Span) (start, count int, err error) {
	if err := t.CheckSpan(s); err != nil {
		return 0, 0, err
	}
	start, err = t.Offset(s.Start)
	if err != nil {
		return 0, 0, err
	}
	end, err := t.Offset(s.End)
	if err != nil {
		return 0, 0, err
	}
	return start, end - start, nil
}

// Span converts an offset and a character count back into a span.
func (t Translator) Span(start, count int) (Span, error) {
	if count < 0 {
		return Span{}, fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	}
	sp, err := t.Pos(start)
	if err != nil {
		return Span{}, err
	}
	ep, err := t.Pos(start + count)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: sp, End: ep}, nil
}

// Text returns the text covered by s, with line breaks in the translator's
// ending.
func (t Translator) Text(s Span) (string, error) {
	if err := t.CheckSpan(s); err != nil {
		return "", err
	}
	if t.lines == nil {
		return "", nil
	}
	if s.Start.Line == s.End.Line {
		return grapheme.Slice(t.lines.Line(s.Start.Line), s.Start.Col, s.End.Col), nil
	}

	eol := t.ending.Sequence()
	var sb strings.Builder
	for i := s.Start.Line; i <= s.End.Line; i++ {
		line := t.lines.Line(i)
		switch i {
		case s.Start.Line:
			sb.WriteString(grapheme.Slice(line, s.Start.Col, t.LineLen(i)))
			sb.WriteString(eol)
		case s.End.Line:
			sb.WriteString(grapheme.Slice(line, 0, s.End.Col))
		default:
			sb.WriteString(line)
			sb.WriteString(eol)
		}
	}
	return sb.String(), nil
}

// CharLen is the number of characters text occupies once inserted into a
// document with ending e.
func CharLen(text string, e LineEnding) int {
	parts := SplitLines(text)
	n := 0
	for _, p := range parts {
		n += grapheme.Count(p)
	}
	return n + (len(parts)-1)*e.Width()
}

// EndAfterInsert returns where inserted text ends when it is placed at start.
func EndAfterInsert(start Pos, text string) Pos {
	parts := SplitLines(text)
	if len(parts) == 1 {
		return Pos{Line: start.Line, Col: start.Col + grapheme.Count(parts[0])}
	}
	return Pos{Line: start.Line + len(parts) - 1, Col: grapheme.Count(parts[len(parts)-1])}
}
