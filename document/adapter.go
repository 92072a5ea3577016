package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LiXizhi/nplmerge/buffer"
)

// ErrConcurrentModification reports that a staged file changed on disk after
// it was loaded.
var ErrConcurrentModification = errors.New("file modified since it was loaded")

// Kind tells whether edits are immediately visible or staged until Commit.
type Kind uint8

const (
	// KindImmediate documents publish every edit as it is applied. A failed
	// Commit cannot take those edits back.
	KindImmediate Kind = iota + 1
	// KindStaged documents publish edits only when Commit succeeds.
	KindStaged
)

func (k Kind) String() string {
	switch k {
	case KindImmediate:
		return "immediate"
	case KindStaged:
		return "staged"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Adapter is the edit surface shared by *LiveDocument and *FileDocument.
// No other implementations exist.
//
// Offsets are linear character offsets as computed by Translator: columns
// count grapheme clusters and a line break counts Ending().Width().
type Adapter interface {
	// Path names the document in logs and errors.
	Path() string
	Kind() Kind
	Ending() buffer.LineEnding
	Translator() buffer.Translator

	LineCount() int
	Line(i int) (string, error)
	Text() string
	TextIn(s buffer.Span) (string, error)

	// InsertRange inserts lines as whole lines before line start.
	// start == LineCount() appends after the last line.
	InsertRange(start int, lines []string) (buffer.AppliedEdit, error)
	// RemoveRange deletes count characters at offset start.
	RemoveRange(start, count int) (buffer.AppliedEdit, error)
	// ReplaceRange deletes count characters at start and inserts text there.
	ReplaceRange(start, count int, text string) (buffer.AppliedEdit, error)

	// Selection reports the host selection, if the backing store has one.
	Selection() (buffer.Span, bool)

	Commit(ctx context.Context) error

	adapter()
}

// mutator is the primitive surface both variants reduce edits to.
type mutator interface {
	Translator() buffer.Translator
	insertChars(off int, text string) error
	deleteChars(off, count int) error
	// replaceChars does delete+insert as one host step. ok is false when the
	// backing store has no such primitive.
	replaceChars(off, count int, text string) (ok bool, err error)
}

func lineAt(t buffer.Translator, lines buffer.Lines, i int) (string, error) {
	if i < 0 || i >= t.LineCount() {
		return "", fmt.Errorf("%w: line %d of %d", buffer.ErrOutOfRange, i, t.LineCount())
	}
	return lines.Line(i), nil
}

func replaceRange(m mutator, start, count int, text string) (buffer.AppliedEdit, error) {
	t := m.Translator()
	before, err := t.Span(start, count)
	if err != nil {
		return buffer.AppliedEdit{}, err
	}
	deleted, err := t.Text(before)
	if err != nil {
		return buffer.AppliedEdit{}, err
	}
	text = t.Ending().Normalize(text)
	after := buffer.Span{Start: before.Start, End: buffer.EndAfterInsert(before.Start, text)}

	if ok, err := m.replaceChars(start, count, text); ok {
		if err != nil {
			return buffer.AppliedEdit{}, err
		}
		return buffer.AppliedEdit{Before: before, After: after, Inserted: text, Deleted: deleted}, nil
	}

	if count > 0 {
		if err := m.deleteChars(start, count); err != nil {
			return buffer.AppliedEdit{}, err
		}
	}
	if text != "" {
		if err := m.insertChars(start, text); err != nil {
			// The deletion already happened; report what the document now holds.
			return buffer.AppliedEdit{
				Before:  before,
				After:   buffer.Span{Start: before.Start, End: before.Start},
				Deleted: deleted,
			}, fmt.Errorf("insert after delete at offset %d: %w", start, err)
		}
	}

	return buffer.AppliedEdit{Before: before, After: after, Inserted: text, Deleted: deleted}, nil
}

func insertRange(m mutator, start int, lines []string) (buffer.AppliedEdit, error) {
	t := m.Translator()
	n := t.LineCount()
	if start < 0 || start > n {
		return buffer.AppliedEdit{}, fmt.Errorf("%w: insert at line %d of %d", buffer.ErrOutOfRange, start, n)
	}
	if len(lines) == 0 {
		p := buffer.Pos{Line: min(start, n-1)}
		return buffer.AppliedEdit{Before: buffer.Span{Start: p, End: p}, After: buffer.Span{Start: p, End: p}}, nil
	}

	eol := t.Ending().Sequence()
	body := strings.Join(lines, eol)
	if start < n {
		off, err := t.Offset(buffer.Pos{Line: start})
		if err != nil {
			return buffer.AppliedEdit{}, err
		}
		return replaceRange(m, off, 0, body+eol)
	}
	return replaceRange(m, t.Len(), 0, eol+body)
}
