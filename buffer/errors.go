package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange reports a position, offset or span outside the document.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidSpan reports a span whose start lies after its end or that
	// references a missing line or column.
	ErrInvalidSpan = fmt.Errorf("invalid span: %w", ErrOutOfRange)
)
