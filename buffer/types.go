package buffer

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos points into the logical document by (line, col).
// Line and Col are 0-based; Col counts grapheme clusters.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// Span is a half-open region in document coordinates: [Start, End).
// A span is well-formed when Start <= End in document order.
type Span struct {
	Start Pos
	End   Pos
}

// TextEdit replaces the text in Span with Text (which may contain line breaks).
type TextEdit struct {
	Span Span
	Text string
}

// SpanAt returns the single-line span [col, col+n) on line.
func SpanAt(line, col, n int) Span {
	return Span{Start: Pos{Line: line, Col: col}, End: Pos{Line: line, Col: col + n}}
}

func ComparePos(a, b Pos) int {
	if a.Line < b.Line {
		return -1
	}
	if a.Line > b.Line {
		return 1
	}
	if a.Col < b.Col {
		return -1
	}
	if a.Col > b.Col {
		return 1
	}
	return 0
}

func NormalizeSpan(s Span) Span {
	if ComparePos(s.Start, s.End) <= 0 {
		return s
	}
	return Span{Start: s.End, End: s.Start}
}

func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// Ordered reports whether Start <= End and no coordinate is negative.
func (s Span) Ordered() bool {
	if s.Start.Line < 0 || s.Start.Col < 0 || s.End.Line < 0 || s.End.Col < 0 {
		return false
	}
	return ComparePos(s.Start, s.End) <= 0
}

// Contains reports whether inner lies entirely within s.
func (s Span) Contains(inner Span) bool {
	return ComparePos(s.Start, inner.Start) <= 0 && ComparePos(inner.End, s.End) <= 0
}

// String renders the span as "line:col-line:col".
func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// ParseSpan parses the "line:col-line:col" form produced by Span.String.
func ParseSpan(text string) (Span, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return Span{}, fmt.Errorf("%w: span %q: want line:col-line:col", ErrInvalidSpan, text)
	}
	start, err := parsePos(a)
	if err != nil {
		return Span{}, fmt.Errorf("%w: span %q: %v", ErrInvalidSpan, text, err)
	}
	end, err := parsePos(b)
	if err != nil {
		return Span{}, fmt.Errorf("%w: span %q: %v", ErrInvalidSpan, text, err)
	}
	return Span{Start: start, End: end}, nil
}

func parsePos(text string) (Pos, error) {
	l, c, ok := strings.Cut(text, ":")
	if !ok {
		return Pos{}, fmt.Errorf("position %q: missing ':'", text)
	}
	line, err := strconv.Atoi(l)
	if err != nil {
		return Pos{}, fmt.Errorf("position %q: bad line", text)
	}
	col, err := strconv.Atoi(c)
	if err != nil {
		return Pos{}, fmt.Errorf("position %q: bad column", text)
	}
	return Pos{Line: line, Col: col}, nil
}

func clampInt(v, min, max int) int {
	if max < min {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampPos clamps p into document bounds described by lineCount and lineLen.
//
// The returned Pos always satisfies:
// - 0 <= Line < lineCount (with lineCount treated as at least 1)
// - 0 <= Col <= lineLen(Line)
func ClampPos(p Pos, lineCount int, lineLen func(line int) int) Pos {
	if lineCount <= 0 {
		lineCount = 1
	}

	line := clampInt(p.Line, 0, lineCount-1)

	maxCol := 0
	if lineLen != nil {
		maxCol = lineLen(line)
		if maxCol < 0 {
			maxCol = 0
		}
	}
	col := clampInt(p.Col, 0, maxCol)

	return Pos{Line: line, Col: col}
}

func ClampSpan(s Span, lineCount int, lineLen func(line int) int) Span {
	return Span{
		Start: ClampPos(s.Start, lineCount, lineLen),
		End:   ClampPos(s.End, lineCount, lineLen),
	}
}
