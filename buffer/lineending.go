package buffer

import (
	"fmt"
	"strings"
)

// LineEnding is the line break sequence a document uses on disk.
type LineEnding uint8

const (
	// LineEndingAuto asks New to detect the ending from the initial text.
	LineEndingAuto LineEnding = iota
	LineEndingLF
	LineEndingCRLF
	LineEndingCR
)

// Width is the number of characters one line break occupies in linear offsets.
func (e LineEnding) Width() int {
	if e == LineEndingCRLF {
		return 2
	}
	return 1
}

// Sequence returns the literal break written between lines.
func (e LineEnding) Sequence() string {
	switch e {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

func (e LineEnding) String() string {
	switch e {
	case LineEndingAuto:
		return "auto"
	case LineEndingLF:
		return "lf"
	case LineEndingCRLF:
		return "crlf"
	case LineEndingCR:
		return "cr"
	default:
		return fmt.Sprintf("LineEnding(%d)", uint8(e))
	}
}

// ParseLineEnding accepts "auto", "lf", "crlf" or "cr" (case-insensitive).
func ParseLineEnding(name string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return LineEndingAuto, nil
	case "lf", "unix":
		return LineEndingLF, nil
	case "crlf", "windows":
		return LineEndingCRLF, nil
	case "cr", "mac":
		return LineEndingCR, nil
	default:
		return LineEndingAuto, fmt.Errorf("unknown line ending %q", name)
	}
}

// DetectLineEnding reports the first line break found in text.
// Text without any break is treated as LF.
func DetectLineEnding(text string) LineEnding {
	i := strings.IndexAny(text, "\r\n")
	if i < 0 || text[i] == '\n' {
		return LineEndingLF
	}
	if i+1 < len(text) && text[i+1] == '\n' {
		return LineEndingCRLF
	}
	return LineEndingCR
}

// SplitLines splits text on any of "\r\n", "\n" or "\r".
// It always returns at least one line.
func SplitLines(text string) []string {
	if !strings.ContainsAny(text, "\r\n") {
		return []string{text}
	}
	out := make([]string, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			out = append(out, text[start:i])
			start = i + 1
		case '\r':
			out = append(out, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(out, text[start:])
}

// Normalize rewrites every line break in text to the sequence of e.
func (e LineEnding) Normalize(text string) string {
	if !strings.ContainsAny(text, "\r\n") {
		return text
	}
	return strings.Join(SplitLines(text), e.Sequence())
}
