package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/merge"
)

// ErrSkipped marks edits not attempted because an earlier one failed and
// the script has stop_on_error set.
var ErrSkipped = errors.New("skipped after earlier failure")

type Outcome struct {
	Index int
	Op    Op
	OK    bool
	Err   error
}

type Report struct {
	Outcomes []Outcome
}

// Failed returns the outcomes that did not apply, skipped ones included.
func (r Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK {
			out = append(out, o)
		}
	}
	return out
}

func (r Report) OK() bool { return len(r.Failed()) == 0 }

// Run applies the edits in order. Positions in each edit refer to the
// document as left by the edits before it. Replace and rename without a
// span search the whole document.
func (s *Script) Run(ctx context.Context, sess *merge.Session) Report {
	rep := Report{Outcomes: make([]Outcome, 0, len(s.Edits))}
	stopped := false
	for i, e := range s.Edits {
		o := Outcome{Index: i, Op: e.Op}
		switch {
		case stopped:
			o.Err = ErrSkipped
		case ctx.Err() != nil:
			o.Err = ctx.Err()
		default:
			if err := e.validate(); err != nil {
				o.Err = fmt.Errorf("%w: %v", ErrInvalidScript, err)
				break
			}
			o.OK = apply(ctx, sess, e)
			if !o.OK {
				o.Err = sess.Err()
			}
		}
		if !o.OK && s.StopOnError {
			stopped = true
		}
		rep.Outcomes = append(rep.Outcomes, o)
	}
	return rep
}

func apply(ctx context.Context, sess *merge.Session, e Edit) bool {
	switch e.Op {
	case OpInsert:
		return sess.InsertRange(e.Line, e.Lines)
	case OpRemove:
		return sess.RemoveRange(e.Offset, e.Count)
	case OpReplace:
		return sess.Replace(spanOrAll(sess, e.Span), e.Old, e.New)
	case OpReplaceSelection:
		return sess.ReplaceSelection(e.Old, e.New)
	case OpRename:
		return sess.RenameFunction(ctx, spanOrAll(sess, e.Span), e.Old, e.New)
	case OpSetText:
		var span buffer.Span
		if e.Span != nil {
			span = buffer.Span(*e.Span)
		}
		return sess.SetText(span, e.Text)
	}
	return false
}

func spanOrAll(sess *merge.Session, s *Span) buffer.Span {
	if s != nil {
		return buffer.Span(*s)
	}
	t := sess.Document().Translator()
	last := t.LineCount() - 1
	return buffer.Span{End: buffer.Pos{Line: last, Col: t.LineLen(last)}}
}
