package merge

import (
	"errors"
	"fmt"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/document"
)

var (
	ErrOutOfRange      = buffer.ErrOutOfRange
	ErrInvalidSpan     = buffer.ErrInvalidSpan
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNoSelection     = errors.New("no selection")
	ErrSessionClosed   = errors.New("session closed")
	// ErrNoLocator is returned by RenameFunction on sessions built without a
	// DeclarationLocator.
	ErrNoLocator = fmt.Errorf("%w: no declaration locator", ErrInvalidArgument)
)

// CommitError reports a failed Commit. For document.KindImmediate sessions
// the edits applied before Commit remain in the host document.
type CommitError struct {
	Path string
	Kind document.Kind
	Err  error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit %s (%s): %v", e.Path, e.Kind, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }
