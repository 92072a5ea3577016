package document

import (
	"context"

	"github.com/LiXizhi/nplmerge/buffer"
)

// TextDocument is what a host editor has to expose for live editing.
// Offsets are linear character offsets with line breaks of the document's
// own ending. A host that also has ReplaceChars(off, count, text) receives
// each replacement as one call, so its undo sees one step per edit.
type TextDocument interface {
	LineCount() int
	Line(i int) string
	InsertChars(off int, text string) error
	DeleteChars(off, count int) error
}

// Optional host capabilities, discovered with type assertions.
type lineEndinger interface{ LineEnding() buffer.LineEnding }

type selecter interface{ Selection() (buffer.Span, bool) }

type flusher interface{ Flush() error }

type charReplacer interface {
	ReplaceChars(off, count int, text string) error
}

// LiveDocument edits a host document in place. Other readers of the host
// document observe every intermediate state; Commit only flushes.
type LiveDocument struct {
	path   string
	host   TextDocument
	ending buffer.LineEnding
}

var _ Adapter = (*LiveDocument)(nil)

// NewLive wraps host. The line ending comes from the host when it reports
// one, else from ending, else LF.
func NewLive(path string, host TextDocument, ending buffer.LineEnding) *LiveDocument {
	if le, ok := host.(lineEndinger); ok {
		if e := le.LineEnding(); e != buffer.LineEndingAuto {
			ending = e
		}
	}
	if ending == buffer.LineEndingAuto {
		ending = buffer.LineEndingLF
	}
	return &LiveDocument{path: path, host: host, ending: ending}
}

func (d *LiveDocument) adapter() {}

func (d *LiveDocument) Path() string { return d.path }
func (d *LiveDocument) Kind() Kind { return KindImmediate }
func (d *LiveDocument) Ending() buffer.LineEnding { return d.ending }

// Host returns the wrapped host document.
func (d *LiveDocument) Host() TextDocument { return d.host }

func (d *LiveDocument) Translator() buffer.Translator {
	return buffer.NewTranslator(d.host, d.ending)
}

func (d *LiveDocument) LineCount() int { return d.Translator().LineCount() }

func (d *LiveDocument) Line(i int) (string, error) {
	return lineAt(d.Translator(), d.host, i)
}

func (d *LiveDocument) Text() string {
	t := d.Translator()
	n := t.LineCount()
	text, _ := t.Text(buffer.Span{End: buffer.Pos{Line: n - 1, Col: t.LineLen(n - 1)}})
	return text
}

func (d *LiveDocument) TextIn(s buffer.Span) (string, error) {
	return d.Translator().Text(s)
}

func (d *LiveDocument) InsertRange(start int, lines []string) (buffer.AppliedEdit, error) {
	return insertRange(d, start, lines)
}

func (d *LiveDocument) RemoveRange(start, count int) (buffer.AppliedEdit, error) {
	return replaceRange(d, start, count, "")
}

func (d *LiveDocument) ReplaceRange(start, count int, text string) (buffer.AppliedEdit, error) {
	return replaceRange(d, start, count, text)
}

func (d *LiveDocument) Selection() (buffer.Span, bool) {
	if s, ok := d.host.(selecter); ok {
		return s.Selection()
	}
	return buffer.Span{}, false
}

// Commit flushes hosts that buffer writes. Edits are already visible.
func (d *LiveDocument) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f, ok := d.host.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (d *LiveDocument) insertChars(off int, text string) error {
	return d.host.InsertChars(off, text)
}

func (d *LiveDocument) deleteChars(off, count int) error {
	return d.host.DeleteChars(off, count)
}

func (d *LiveDocument) replaceChars(off, count int, text string) (bool, error) {
	r, ok := d.host.(charReplacer)
	if !ok {
		return false, nil
	}
	return true, r.ReplaceChars(off, count, text)
}
