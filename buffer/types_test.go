package buffer

import (
	"errors"
	"testing"
)

func TestComparePos(t *testing.T) {
	t.Run("line", func(t *testing.T) {
		if got := ComparePos(Pos{Line: 0, Col: 0}, Pos{Line: 1, Col: 0}); got >= 0 {
			t.Fatalf("expected < 0, got %d", got)
		}
		if got := ComparePos(Pos{Line: 2, Col: 0}, Pos{Line: 1, Col: 999}); got <= 0 {
			t.Fatalf("expected > 0, got %d", got)
		}
	})

	t.Run("col", func(t *testing.T) {
		if got := ComparePos(Pos{Line: 1, Col: 0}, Pos{Line: 1, Col: 1}); got >= 0 {
			t.Fatalf("expected < 0, got %d", got)
		}
		if got := ComparePos(Pos{Line: 1, Col: 2}, Pos{Line: 1, Col: 1}); got <= 0 {
			t.Fatalf("expected > 0, got %d", got)
		}
	})

	t.Run("equal", func(t *testing.T) {
		if got := ComparePos(Pos{Line: 3, Col: 4}, Pos{Line: 3, Col: 4}); got != 0 {
			t.Fatalf("expected 0, got %d", got)
		}
	})
}

func TestNormalizeSpan(t *testing.T) {
	s := NormalizeSpan(Span{Start: Pos{Line: 2, Col: 3}, End: Pos{Line: 1, Col: 9}})
	if s.Start != (Pos{Line: 1, Col: 9}) || s.End != (Pos{Line: 2, Col: 3}) {
		t.Fatalf("unexpected span: %#v", s)
	}

	s2 := NormalizeSpan(s)
	if s2 != s {
		t.Fatalf("expected idempotent normalize: %#v != %#v", s2, s)
	}
}

func TestSpan_OrderedAndContains(t *testing.T) {
	outer := Span{Start: Pos{Line: 1, Col: 0}, End: Pos{Line: 3, Col: 0}}
	if !outer.Ordered() {
		t.Fatalf("expected ordered")
	}
	if (Span{Start: Pos{Line: 1, Col: 2}, End: Pos{Line: 1, Col: 1}}).Ordered() {
		t.Fatalf("reversed span reported ordered")
	}
	if (Span{Start: Pos{Line: -1, Col: 0}, End: Pos{Line: 1, Col: 1}}).Ordered() {
		t.Fatalf("negative span reported ordered")
	}
	if !outer.Contains(SpanAt(2, 4, 3)) {
		t.Fatalf("expected inner span contained")
	}
	if outer.Contains(SpanAt(3, 0, 1)) {
		t.Fatalf("span past end reported contained")
	}
}

func TestParseSpan(t *testing.T) {
	cases := []struct {
		in      string
		want    Span
		wantErr bool
	}{
		{in: "0:0-0:0", want: Span{}},
		{in: " 1:2-3:4 ", want: Span{Start: Pos{Line: 1, Col: 2}, End: Pos{Line: 3, Col: 4}}},
		{in: "1:2", wantErr: true},
		{in: "a:2-3:4", wantErr: true},
		{in: "1:2-3", wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseSpan(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidSpan) {
				t.Fatalf("ParseSpan(%q) err=%v, want ErrInvalidSpan", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseSpan(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSpan(%q) = %v, want %v", tc.in, got, tc.want)
		}
		if again, _ := ParseSpan(got.String()); again != got {
			t.Fatalf("String round trip: %v != %v", again, got)
		}
	}
}

func TestErrInvalidSpanIsOutOfRange(t *testing.T) {
	if !errors.Is(ErrInvalidSpan, ErrOutOfRange) {
		t.Fatalf("expected ErrInvalidSpan to wrap ErrOutOfRange")
	}
}

func TestClampPos(t *testing.T) {
	lineLens := []int{1, 0, 3}
	ll := func(line int) int { return lineLens[line] }

	cases := []struct {
		in   Pos
		want Pos
	}{
		{in: Pos{Line: -1, Col: -1}, want: Pos{Line: 0, Col: 0}},
		{in: Pos{Line: 999, Col: 999}, want: Pos{Line: 2, Col: 3}},
		{in: Pos{Line: 1, Col: 5}, want: Pos{Line: 1, Col: 0}},
		{in: Pos{Line: 0, Col: 1}, want: Pos{Line: 0, Col: 1}},
	}

	for _, tc := range cases {
		if got := ClampPos(tc.in, len(lineLens), ll); got != tc.want {
			t.Fatalf("ClampPos(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
