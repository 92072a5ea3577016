package document

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/spf13/afero"

	"github.com/LiXizhi/nplmerge/buffer"
)

// FileDocument stages edits to a file that no editor has open. The file is
// rewritten only by a successful Commit, and then atomically.
type FileDocument struct {
	fs   afero.Fs
	path string
	mode os.FileMode

	original    []byte
	hash        string
	staged      *buffer.Buffer
	baseVersion uint64

	stale atomic.Bool
}

var _ Adapter = (*FileDocument)(nil)

// OpenFile loads path from fs. With buffer.LineEndingAuto the ending is
// detected from the content; any other value rewrites every line break in
// that ending on Commit.
func OpenFile(fs afero.Fs, path string, ending buffer.LineEnding) (*FileDocument, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	staged := buffer.New(string(data), buffer.Options{LineEnding: ending, HistoryLimit: -1})
	return &FileDocument{
		fs:          fs,
		path:        path,
		mode:        info.Mode().Perm(),
		original:    data,
		hash:        contentHash(data),
		staged:      staged,
		baseVersion: staged.Version(),
	}, nil
}

func (d *FileDocument) adapter() {}

func (d *FileDocument) Path() string { return d.path }
func (d *FileDocument) Kind() Kind { return KindStaged }
func (d *FileDocument) Ending() buffer.LineEnding { return d.staged.LineEnding() }

func (d *FileDocument) Translator() buffer.Translator { return d.staged.Translator() }

func (d *FileDocument) LineCount() int { return d.staged.LineCount() }

func (d *FileDocument) Line(i int) (string, error) {
	return lineAt(d.Translator(), d.staged, i)
}

// Text returns the staged content.
func (d *FileDocument) Text() string { return d.staged.Text() }

// Original returns the content the file had when it was loaded.
func (d *FileDocument) Original() string { return string(d.original) }

func (d *FileDocument) TextIn(s buffer.Span) (string, error) {
	return d.staged.TextIn(s)
}

func (d *FileDocument) InsertRange(start int, lines []string) (buffer.AppliedEdit, error) {
	return insertRange(d, start, lines)
}

func (d *FileDocument) RemoveRange(start, count int) (buffer.AppliedEdit, error) {
	return replaceRange(d, start, count, "")
}

func (d *FileDocument) ReplaceRange(start, count int, text string) (buffer.AppliedEdit, error) {
	return replaceRange(d, start, count, text)
}

// Selection is always empty: closed files have no selection.
func (d *FileDocument) Selection() (buffer.Span, bool) { return buffer.Span{}, false }

// Dirty reports whether any edit has been staged since the last load or
// commit.
func (d *FileDocument) Dirty() bool { return d.staged.Version() != d.baseVersion }

// MarkStale records that the file changed on disk behind the document's
// back. A stale document refuses to commit. Safe for concurrent use.
func (d *FileDocument) MarkStale() { d.stale.Store(true) }

func (d *FileDocument) Stale() bool { return d.stale.Load() }

// Commit writes the staged content if anything was staged. The on-disk file
// must still hash to what was loaded; the write goes through a temp file in
// the same directory and a rename, so readers see either the old or the new
// content. On failure the file is left as it was.
func (d *FileDocument) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !d.Dirty() {
		return nil
	}
	if d.Stale() {
		return fmt.Errorf("%s: %w", d.path, ErrConcurrentModification)
	}

	content := []byte(d.staged.Text())
	if string(content) == string(d.original) {
		d.baseVersion = d.staged.Version()
		return nil
	}
	if err := verifyAndWrite(d.fs, d.path, d.hash, content, d.mode); err != nil {
		return err
	}

	d.original = content
	d.hash = contentHash(content)
	d.baseVersion = d.staged.Version()
	return nil
}

func (d *FileDocument) insertChars(off int, text string) error {
	return d.staged.InsertChars(off, text)
}

func (d *FileDocument) deleteChars(off, count int) error {
	return d.staged.DeleteChars(off, count)
}

func (d *FileDocument) replaceChars(off, count int, text string) (bool, error) {
	return true, d.staged.ReplaceChars(off, count, text)
}

func contentHash(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}
