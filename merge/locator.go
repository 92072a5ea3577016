package merge

import (
	"context"

	"github.com/LiXizhi/nplmerge/buffer"
)

// Declaration is a function declaration found by a DeclarationLocator.
type Declaration struct {
	// Name is the declared identifier, e.g. "bar" for "function a.b:bar()".
	Name string
	// QualifiedName is the full declared name, e.g. "a.b:bar".
	QualifiedName string
	// Span covers the whole declaration.
	Span buffer.Span
	// NameSpan covers only the identifier token that carries Name.
	NameSpan buffer.Span
}

// DeclarationLocator finds function declarations in source text. Positions
// use grapheme columns, like buffer.Pos.
type DeclarationLocator interface {
	FunctionDeclarations(ctx context.Context, src []byte) ([]Declaration, error)
}
