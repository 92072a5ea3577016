package buffer

// Apply applies a sequence of text edits in order. Each edit's span is
// interpreted against the buffer state at the time that edit is applied.
//
// Semantics:
// - Edit spans are clamped into current document bounds.
// - Empty span + non-empty text inserts.
// - Selection is cleared if any edit applies.
// - All effective edits form one undo step.
//
// Apply returns the effective edits in application order.
func (b *Buffer) Apply(edits ...TextEdit) []AppliedEdit {
	if len(edits) == 0 {
		return nil
	}

	change := b.beginChange(ChangeSourceLocal)
	sel := b.sel

	var out []AppliedEdit
	for _, e := range edits {
		applied, changed := b.replaceSpan(e.Span, e.Text)
		if !changed {
			continue
		}
		out = append(out, applied)
		change.addAppliedEdit(applied)
	}

	if len(out) == 0 {
		return nil
	}

	b.sel = selectionState{}
	b.version++
	b.pushUndo(undoStep{edits: append([]AppliedEdit(nil), out...), sel: sel})
	b.commitChange(change)
	return out
}
