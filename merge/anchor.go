package merge

import "github.com/LiXizhi/nplmerge/buffer"

// Anchor follows a span through the edits applied after it was tracked.
type Anchor struct {
	span   buffer.Span
	status buffer.RemapStatus
}

// Span returns the current location. ok is false once the tracked text was
// deleted.
func (a *Anchor) Span() (s buffer.Span, ok bool) {
	return a.span, a.status != buffer.RemapInvalidated
}

// Status is the strongest remap outcome seen so far.
func (a *Anchor) Status() buffer.RemapStatus { return a.status }

func (a *Anchor) remap(e buffer.AppliedEdit) {
	if a.status == buffer.RemapInvalidated {
		return
	}
	next, status := buffer.RemapSpan(a.span, e)
	a.span = next
	if status > a.status {
		a.status = status
	}
}
