package grapheme

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len([]rune(text)))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	n := 0
	for g.Next() {
		n++
	}
	return n
}

// Boundaries returns the byte offsets at which the clusters of text start,
// followed by len(text).
func Boundaries(text string) []int {
	out := make([]int, 0, len(text)+1)
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		from, _ := g.Positions()
		out = append(out, from)
	}
	return append(out, len(text))
}

// IndexAligned returns the byte index of the first occurrence of sub in text
// that starts and ends on cluster boundaries, or -1. Matches that split a
// cluster, such as a base letter without its combining mark, are skipped.
func IndexAligned(text, sub string) int {
	if sub == "" {
		return 0
	}
	bounds := Boundaries(text)
	at := make(map[int]bool, len(bounds))
	for _, b := range bounds {
		at[b] = true
	}
	for from := 0; from <= len(text)-len(sub); {
		i := strings.Index(text[from:], sub)
		if i < 0 {
			return -1
		}
		i += from
		if at[i] && at[i+len(sub)] {
			return i
		}
		from = i + 1
	}
	return -1
}

// Slice returns the grapheme-safe substring for [start, end).
func Slice(text string, start, end int) string {
	if text == "" {
		return ""
	}
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}

	g := uniseg.NewGraphemes(text)
	idx := 0
	var sb strings.Builder
	for g.Next() {
		if idx >= end {
			break
		}
		if idx >= start {
			sb.WriteString(g.Str())
		}
		idx++
	}
	if start >= idx {
		return ""
	}
	return sb.String()
}

// Join concatenates grapheme clusters into a single string.
func Join(clusters []string) string {
	if len(clusters) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range clusters {
		sb.WriteString(c)
	}
	return sb.String()
}
