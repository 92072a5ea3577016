package merge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/document"
)

// State is the lifecycle position of a Session.
type State uint8

const (
	StateOpen State = iota
	StateCommitted
	StateFailed
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateFailed:
		return "failed"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// EditKind names an edit operation.
type EditKind string

const (
	EditInsertRange      EditKind = "insert_range"
	EditRemoveRange      EditKind = "remove_range"
	EditReplace          EditKind = "replace"
	EditReplaceSelection EditKind = "replace_selection"
	EditRenameFunction   EditKind = "rename_function"
	EditSetText          EditKind = "set_text"
)

// PendingEdit is one journaled operation.
type PendingEdit struct {
	Seq     int
	Kind    EditKind
	Span    buffer.Span
	Applied buffer.AppliedEdit
}

// Option configures a Session.
type Option func(*Session)

// WithLocator enables RenameFunction.
func WithLocator(l DeclarationLocator) Option {
	return func(s *Session) { s.locator = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOnClose registers fn to run once when the session leaves StateOpen.
func WithOnClose(fn func(*Session)) Option {
	return func(s *Session) { s.onClose = fn }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session applies edits to one document and commits them once.
// A Session is not safe for concurrent use.
type Session struct {
	id      uuid.UUID
	doc     document.Adapter
	locator DeclarationLocator
	logger  *slog.Logger
	onClose func(*Session)
	now     func() time.Time

	state   State
	opened  time.Time
	err     error
	seq     int
	journal []PendingEdit
	anchors []*Anchor
}

// NewSession opens a session on doc.
func NewSession(doc document.Adapter, opts ...Option) (*Session, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidArgument)
	}
	s := &Session{
		id:     uuid.New(),
		doc:    doc,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(
		slog.String("component", "merge.Session"),
		slog.String("session_id", s.id.String()),
		slog.String("path", doc.Path()),
		slog.String("kind", doc.Kind().String()),
	)
	s.opened = s.now()
	s.logger.Debug("session opened", slog.Int("lines", doc.LineCount()))
	return s, nil
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Path() string { return s.doc.Path() }
func (s *Session) State() State { return s.state }
func (s *Session) Kind() document.Kind { return s.doc.Kind() }

// Document exposes the adapter for reads. Mutating it directly bypasses the
// journal and anchors.
func (s *Session) Document() document.Adapter { return s.doc }

// Err returns why the most recent operation returned false, or nil after a
// successful one.
func (s *Session) Err() error { return s.err }

// Pending returns a copy of the journal in application order.
func (s *Session) Pending() []PendingEdit {
	return append([]PendingEdit(nil), s.journal...)
}

// Track returns an anchor that follows span through later edits.
func (s *Session) Track(span buffer.Span) *Anchor {
	a := &Anchor{span: span}
	s.anchors = append(s.anchors, a)
	return a
}

// Inverse returns the edits that undo the journal, newest first, ready for
// buffer.Buffer.Apply on a live host.
func (s *Session) Inverse() []buffer.TextEdit {
	out := make([]buffer.TextEdit, 0, len(s.journal))
	for i := len(s.journal) - 1; i >= 0; i-- {
		out = append(out, s.journal[i].Applied.Inverse())
	}
	return out
}

// Commit finalizes the session. A session with no edits commits without
// touching the document. On failure the state becomes StateFailed and the
// error is a *CommitError. Edits on a document.KindImmediate document stay
// applied either way.
func (s *Session) Commit(ctx context.Context) error {
	if s.state != StateOpen {
		return fmt.Errorf("commit in state %s: %w", s.state, ErrSessionClosed)
	}

	ctx, span := startCommitSpan(ctx, s)
	edits := len(s.journal)
	err := s.doc.Commit(ctx)
	endCommitSpan(span, err)
	recordCommit(ctx, s.doc.Kind(), s.now().Sub(s.opened), edits, err == nil)

	if err != nil {
		s.state = StateFailed
		s.logger.Warn("commit failed", slog.Int("edits", edits), slog.String("error", err.Error()))
		s.close()
		return &CommitError{Path: s.doc.Path(), Kind: s.doc.Kind(), Err: err}
	}

	s.state = StateCommitted
	s.logger.Info("session committed", slog.Int("edits", edits))
	s.close()
	return nil
}

// Abandon closes the session without committing. Staged edits are dropped;
// immediate edits stay in the host document.
func (s *Session) Abandon() {
	if s.state != StateOpen {
		return
	}
	s.state = StateAbandoned
	recordAbandon(context.Background(), s.doc.Kind(), len(s.journal))
	s.logger.Info("session abandoned", slog.Int("edits", len(s.journal)))
	s.close()
}

func (s *Session) close() {
	s.journal = nil
	s.anchors = nil
	if fn := s.onClose; fn != nil {
		s.onClose = nil
		fn(s)
	}
}

func (s *Session) begin(kind EditKind) bool {
	if s.state == StateOpen {
		return true
	}
	s.fail(kind, fmt.Errorf("%s in state %s: %w", kind, s.state, ErrSessionClosed))
	return false
}

func (s *Session) fail(kind EditKind, err error) bool {
	s.err = err
	recordOperation(context.Background(), kind, false)
	s.logger.Debug("edit rejected", slog.String("op", string(kind)), slog.String("error", err.Error()))
	return false
}

func (s *Session) record(kind EditKind, span buffer.Span, applied buffer.AppliedEdit) bool {
	s.err = nil
	s.seq++
	s.journal = append(s.journal, PendingEdit{Seq: s.seq, Kind: kind, Span: span, Applied: applied})
	for _, a := range s.anchors {
		a.remap(applied)
	}
	recordOperation(context.Background(), kind, true)
	return true
}
