package buffer

import (
	"errors"
	"testing"
)

type lineSlice []string

func (l lineSlice) LineCount() int { return len(l) }
func (l lineSlice) Line(i int) string { return l[i] }

func TestTranslator_OffsetRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		ending LineEnding
	}{
		{name: "lf", text: "ab\ncde\n\nf", ending: LineEndingLF},
		{name: "crlf", text: "ab\r\ncde\r\n\r\nf", ending: LineEndingCRLF},
		{name: "cr", text: "ab\rcde\r\rf", ending: LineEndingCR},
		{name: "unicode", text: "éx\n👨‍👩‍👧‍👦", ending: LineEndingLF},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New(tc.text, Options{})
			tr := b.Translator()
			if got := tr.Ending(); got != tc.ending {
				t.Fatalf("ending=%v, want %v", got, tc.ending)
			}
			for line := 0; line < b.LineCount(); line++ {
				for col := 0; col <= b.LineLen(line); col++ {
					p := Pos{Line: line, Col: col}
					off, err := tr.Offset(p)
					if err != nil {
						t.Fatalf("Offset(%v): %v", p, err)
					}
					back, err := tr.Pos(off)
					if err != nil {
						t.Fatalf("Pos(%d): %v", off, err)
					}
					if back != p {
						t.Fatalf("Pos(Offset(%v))=%v", p, back)
					}
				}
			}
		})
	}
}

func TestTranslator_CRLFWidth(t *testing.T) {
	tr := NewTranslator(lineSlice{"ab", "cd"}, LineEndingCRLF)

	off, err := tr.Offset(Pos{Line: 1, Col: 0})
	if err != nil {
		t.Fatalf("Offset: %v", err)
	}
	if off != 4 {
		t.Fatalf("offset=%d, want 4", off)
	}
	if got := tr.Len(); got != 6 {
		t.Fatalf("len=%d, want 6", got)
	}
	if _, err := tr.Pos(3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("Pos inside CRLF err=%v, want ErrOutOfRange", err)
	}
}

func TestTranslator_OutOfRange(t *testing.T) {
	tr := NewTranslator(lineSlice{"ab", "c"}, LineEndingLF)

	for _, p := range []Pos{{Line: -1}, {Line: 2}, {Line: 0, Col: 3}, {Line: 1, Col: -1}} {
		if _, err := tr.Offset(p); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Offset(%v) err=%v, want ErrOutOfRange", p, err)
		}
	}
	for _, off := range []int{-1, 5} {
		if _, err := tr.Pos(off); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("Pos(%d) err=%v, want ErrOutOfRange", off, err)
		}
	}
	if got, err := tr.Pos(4); err != nil || got != (Pos{Line: 1, Col: 1}) {
		t.Fatalf("Pos(4)=%v, %v; want 1:1", got, err)
	}
}

func TestTranslator_Range(t *testing.T) {
	tr := NewTranslator(lineSlice{"ab", "cd"}, LineEndingCRLF)

	start, count, err := tr.Range(Span{Start: Pos{Line: 0, Col: 1}, End: Pos{Line: 1, Col: 1}})
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if start != 1 || count != 4 {
		t.Fatalf("range=(%d,%d), want (1,4)", start, count)
	}

	_, _, err = tr.Range(Span{Start: Pos{Line: 1, Col: 0}, End: Pos{Line: 0, Col: 0}})
	if !errors.Is(err, ErrInvalidSpan) {
		t.Fatalf("reversed span err=%v, want ErrInvalidSpan", err)
	}
	_, _, err = tr.Range(Span{Start: Pos{Line: 0, Col: 0}, End: Pos{Line: 4, Col: 0}})
	if !errors.Is(err, ErrInvalidSpan) {
		t.Fatalf("missing line err=%v, want ErrInvalidSpan", err)
	}
}

func TestTranslator_Text(t *testing.T) {
	tr := NewTranslator(lineSlice{"abc", "def", "ghi"}, LineEndingCRLF)

	got, err := tr.Text(Span{Start: Pos{Line: 0, Col: 2}, End: Pos{Line: 2, Col: 1}})
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if want := "c\r\ndef\r\ng"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}

	got, err = tr.Text(SpanAt(1, 1, 2))
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if want := "ef"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestTranslator_GraphemeColumns(t *testing.T) {
	tr := NewTranslator(lineSlice{"a" + "é" + "👨‍👩‍👧‍👦" + "b"}, LineEndingLF)
	if got := tr.LineLen(0); got != 4 {
		t.Fatalf("line len=%d, want 4", got)
	}
	got, err := tr.Text(SpanAt(0, 1, 2))
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if want := "é👨‍👩‍👧‍👦"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestCharLenAndEndAfterInsert(t *testing.T) {
	if got := CharLen("ab\ncd", LineEndingCRLF); got != 6 {
		t.Fatalf("CharLen=%d, want 6", got)
	}
	if got := CharLen("", LineEndingLF); got != 0 {
		t.Fatalf("CharLen empty=%d, want 0", got)
	}
	if got, want := EndAfterInsert(Pos{Line: 2, Col: 3}, "xy"), (Pos{Line: 2, Col: 5}); got != want {
		t.Fatalf("end=%v, want %v", got, want)
	}
	if got, want := EndAfterInsert(Pos{Line: 2, Col: 3}, "x\r\nyz"), (Pos{Line: 3, Col: 2}); got != want {
		t.Fatalf("end=%v, want %v", got, want)
	}
}
