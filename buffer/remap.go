package buffer

import "fmt"

// RemapStatus describes what happened to a tracked position or span when an
// edit was applied before it was used.
type RemapStatus uint8

const (
	RemapUnchanged RemapStatus = iota
	RemapMoved
	RemapClamped
	RemapInvalidated
)

func (s RemapStatus) String() string {
	switch s {
	case RemapUnchanged:
		return "unchanged"
	case RemapMoved:
		return "moved"
	case RemapClamped:
		return "clamped"
	case RemapInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("RemapStatus(%d)", uint8(s))
	}
}

// Bias picks a side when a pure insertion lands exactly on a position, or
// when a position falls inside deleted text.
type Bias uint8

const (
	BiasLeft Bias = iota
	BiasRight
)

// RemapPoint is the before/after mapping of a single position.
type RemapPoint struct {
	Before Pos
	After  Pos
	Status RemapStatus
}

// RemapPos maps p through e.
func RemapPos(p Pos, e AppliedEdit, bias Bias) RemapPoint {
	start, end, newEnd := e.Before.Start, e.Before.End, e.After.End
	out := RemapPoint{Before: p, After: p, Status: RemapUnchanged}

	switch c := ComparePos(p, start); {
	case c < 0:
		return out
	case c == 0 && e.Before.IsEmpty():
		if bias == BiasRight {
			out.After = newEnd
		}
	case c == 0:
		return out
	case ComparePos(p, end) < 0:
		out.After = start
		if bias == BiasRight {
			out.After = newEnd
		}
		out.Status = RemapClamped
		return out
	default:
		if p.Line == end.Line {
			out.After = Pos{Line: newEnd.Line, Col: newEnd.Col + p.Col - end.Col}
		} else {
			out.After = Pos{Line: p.Line + newEnd.Line - end.Line, Col: p.Col}
		}
	}
	if out.After != p {
		out.Status = RemapMoved
	}
	return out
}

// RemapSpan maps s through e. An edit that replaces exactly s yields the span
// of the replacement. Insertions at s.Start move the span, insertions at
// s.End do not grow it. A span whose start ends up after its end is
// invalidated.
func RemapSpan(s Span, e AppliedEdit) (Span, RemapStatus) {
	if s == e.Before {
		out := Span{Start: s.Start, End: e.After.End}
		if out == s {
			return out, RemapUnchanged
		}
		return out, RemapMoved
	}

	start := RemapPos(s.Start, e, BiasRight)
	end := RemapPos(s.End, e, BiasLeft)
	out := Span{Start: start.After, End: end.After}
	switch {
	case ComparePos(out.Start, out.End) > 0:
		return s, RemapInvalidated
	case start.Status == RemapClamped || end.Status == RemapClamped:
		return out, RemapClamped
	case start.Status == RemapMoved || end.Status == RemapMoved:
		return out, RemapMoved
	default:
		return out, RemapUnchanged
	}
}
