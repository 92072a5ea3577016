package merge

import (
	"context"
	"fmt"
	"regexp"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/internal/grapheme"
)

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// InsertRange inserts lines as whole lines before line start. start equal to
// the line count appends.
func (s *Session) InsertRange(start int, lines []string) bool {
	if !s.begin(EditInsertRange) {
		return false
	}
	if len(lines) == 0 {
		return s.fail(EditInsertRange, fmt.Errorf("%w: no lines to insert", ErrInvalidArgument))
	}
	applied, err := s.doc.InsertRange(start, lines)
	if err != nil {
		return s.fail(EditInsertRange, err)
	}
	return s.record(EditInsertRange, applied.Before, applied)
}

// RemoveRange deletes count characters at linear offset start.
func (s *Session) RemoveRange(start, count int) bool {
	if !s.begin(EditRemoveRange) {
		return false
	}
	applied, err := s.doc.RemoveRange(start, count)
	if err != nil {
		return s.fail(EditRemoveRange, err)
	}
	if count == 0 {
		s.err = nil
		return true
	}
	return s.record(EditRemoveRange, applied.Before, applied)
}

// Replace substitutes the first occurrence of oldText inside span with
// newText.
func (s *Session) Replace(span buffer.Span, oldText, newText string) bool {
	if !s.begin(EditReplace) {
		return false
	}
	return s.replaceIn(EditReplace, span, oldText, newText)
}

// ReplaceSelection is Replace over the host selection.
func (s *Session) ReplaceSelection(oldText, newText string) bool {
	if !s.begin(EditReplaceSelection) {
		return false
	}
	sel, ok := s.doc.Selection()
	if !ok {
		return s.fail(EditReplaceSelection, ErrNoSelection)
	}
	return s.replaceIn(EditReplaceSelection, sel, oldText, newText)
}

// SetText overwrites the contents of span with text.
func (s *Session) SetText(span buffer.Span, text string) bool {
	if !s.begin(EditSetText) {
		return false
	}
	start, count, err := s.doc.Translator().Range(span)
	if err != nil {
		return s.fail(EditSetText, err)
	}
	applied, err := s.doc.ReplaceRange(start, count, text)
	if err != nil {
		return s.fail(EditSetText, err)
	}
	return s.record(EditSetText, span, applied)
}

// RenameFunction renames the function declared as oldName whose name lies
// inside span. Only the declared identifier token changes; calls and
// same-named identifiers elsewhere are left alone. oldName may be the bare
// name ("bar") or the qualified one ("M.bar", "M:bar"); newName must be a
// bare identifier.
func (s *Session) RenameFunction(ctx context.Context, span buffer.Span, oldName, newName string) bool {
	if !s.begin(EditRenameFunction) {
		return false
	}
	if s.locator == nil {
		return s.fail(EditRenameFunction, ErrNoLocator)
	}
	if oldName == "" {
		return s.fail(EditRenameFunction, fmt.Errorf("%w: empty function name", ErrInvalidArgument))
	}
	if !identifierRE.MatchString(newName) {
		return s.fail(EditRenameFunction, fmt.Errorf("%w: %q is not an identifier", ErrInvalidArgument, newName))
	}
	t := s.doc.Translator()
	if err := t.CheckSpan(span); err != nil {
		return s.fail(EditRenameFunction, err)
	}

	decls, err := s.locator.FunctionDeclarations(ctx, []byte(s.doc.Text()))
	if err != nil {
		return s.fail(EditRenameFunction, fmt.Errorf("locating declarations: %w", err))
	}
	for _, d := range decls {
		if d.Name != oldName && d.QualifiedName != oldName {
			continue
		}
		if !span.Contains(d.NameSpan) {
			continue
		}
		start, count, err := t.Range(d.NameSpan)
		if err != nil {
			return s.fail(EditRenameFunction, fmt.Errorf("declaration %s: %w", d.QualifiedName, err))
		}
		applied, err := s.doc.ReplaceRange(start, count, newName)
		if err != nil {
			return s.fail(EditRenameFunction, err)
		}
		return s.record(EditRenameFunction, d.NameSpan, applied)
	}
	return s.fail(EditRenameFunction, fmt.Errorf("function %q in %v: %w", oldName, span, ErrNotFound))
}

func (s *Session) replaceIn(kind EditKind, span buffer.Span, oldText, newText string) bool {
	if oldText == "" {
		return s.fail(kind, fmt.Errorf("%w: empty search text", ErrInvalidArgument))
	}
	t := s.doc.Translator()
	text, err := t.Text(span)
	if err != nil {
		return s.fail(kind, err)
	}
	oldText = t.Ending().Normalize(oldText)
	i := grapheme.IndexAligned(text, oldText)
	if i < 0 {
		return s.fail(kind, fmt.Errorf("%q in %v: %w", oldText, span, ErrNotFound))
	}

	base, err := t.Offset(span.Start)
	if err != nil {
		return s.fail(kind, err)
	}
	start := base + buffer.CharLen(text[:i], t.Ending())
	applied, err := s.doc.ReplaceRange(start, buffer.CharLen(oldText, t.Ending()), newText)
	if err != nil {
		return s.fail(kind, err)
	}
	return s.record(kind, applied.Before, applied)
}
