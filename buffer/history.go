package buffer

// undoStep is one undoable mutation: the edits it made, in order, and the
// selection in place before it.
type undoStep struct {
	edits []AppliedEdit
	sel   selectionState
}

type historyState struct {
	undo []undoStep
	redo []undoStep
}

func (b *Buffer) historyEnabled() bool { return b.opt.HistoryLimit > 0 }

// pushUndo records a fresh local mutation and drops the redo stack.
func (b *Buffer) pushUndo(step undoStep) {
	if !b.historyEnabled() {
		return
	}
	b.hist.undo = b.appendBounded(b.hist.undo, step)
	b.hist.redo = nil
}

func (b *Buffer) appendBounded(stack []undoStep, step undoStep) []undoStep {
	stack = append(stack, step)
	if limit := b.opt.HistoryLimit; len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	return stack
}

func (b *Buffer) CanUndo() bool { return len(b.hist.undo) > 0 }

func (b *Buffer) CanRedo() bool { return len(b.hist.redo) > 0 }

// Undo reverts the most recent mutation. One Replace or Apply call is one
// step.
func (b *Buffer) Undo() bool {
	n := len(b.hist.undo)
	if n == 0 {
		return false
	}
	step := b.hist.undo[n-1]
	b.hist.undo = b.hist.undo[:n-1]
	b.hist.redo = append(b.hist.redo, b.revert(step))
	return true
}

func (b *Buffer) Redo() bool {
	n := len(b.hist.redo)
	if n == 0 {
		return false
	}
	step := b.hist.redo[n-1]
	b.hist.redo = b.hist.redo[:n-1]
	b.hist.undo = b.appendBounded(b.hist.undo, b.revert(step))
	return true
}

// revert applies the inverses of step's edits, newest first, restores its
// selection and returns the step that reverts the revert.
func (b *Buffer) revert(step undoStep) undoStep {
	change := b.beginChange(ChangeSourceHistory)
	back := undoStep{sel: b.sel}
	for i := len(step.edits) - 1; i >= 0; i-- {
		inv := step.edits[i].Inverse()
		applied, changed := b.replaceSpan(inv.Span, inv.Text)
		if !changed {
			continue
		}
		back.edits = append(back.edits, applied)
		change.addAppliedEdit(applied)
	}
	b.restoreSelection(step.sel)
	b.version++
	b.commitChange(change)
	return back
}

func (b *Buffer) restoreSelection(sel selectionState) {
	if !sel.active {
		b.sel = selectionState{}
		return
	}
	anchor := ClampPos(sel.anchor, len(b.lines), b.LineLen)
	end := ClampPos(sel.end, len(b.lines), b.LineLen)
	if anchor == end {
		b.sel = selectionState{}
		return
	}
	b.sel = selectionState{active: true, anchor: anchor, end: end}
}
