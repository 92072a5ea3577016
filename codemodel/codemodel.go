// Package codemodel extracts function declarations from Lua and NPL sources
// with tree-sitter. It is the declaration locator behind
// merge.Session.RenameFunction and the outline command.
package codemodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/lua"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/internal/grapheme"
	"github.com/LiXizhi/nplmerge/merge"
)

const (
	// DefaultMaxFileSize is the largest source Parse accepts (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

var (
	ErrFileTooLarge   = errors.New("file too large")
	ErrInvalidContent = errors.New("invalid content")
)

// ElementKind classifies a declaration.
type ElementKind uint8

const (
	KindFunction ElementKind = iota + 1
	KindLocalFunction
	KindMethod
)

func (k ElementKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindLocalFunction:
		return "local function"
	case KindMethod:
		return "method"
	default:
		return fmt.Sprintf("ElementKind(%d)", uint8(k))
	}
}

// Element is one function declaration.
type Element struct {
	Kind          ElementKind
	Name          string
	QualifiedName string
	Span          buffer.Span
	NameSpan      buffer.Span
}

// Extensions lists the file extensions the parser understands.
func Extensions() []string { return []string{".lua", ".npl"} }

// Option configures a Parser.
type Option func(*Parser)

// WithMaxFileSize sets the maximum source size in bytes.
func WithMaxFileSize(bytes int64) Option {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// Parser finds declarations. A new tree-sitter parser is created per call,
// so a Parser is safe for concurrent use.
type Parser struct {
	maxFileSize int64
	logger      *slog.Logger
}

var _ merge.DeclarationLocator = (*Parser)(nil)

func NewParser(opts ...Option) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize, logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "codemodel.Parser"))
	return p
}

// Parse returns the function declarations in src in document order.
// Line breaks may be LF, CRLF or CR; positions are in document lines and
// grapheme columns.
func (p *Parser) Parse(ctx context.Context, src []byte) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(src)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(src), p.maxFileSize)
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%w: content is not valid UTF-8", ErrInvalidContent)
	}

	content := []byte(buffer.LineEndingLF.Normalize(string(src)))

	parser := sitter.NewParser()
	parser.SetLanguage(lua.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, nil
	}
	if root.HasError() {
		p.logger.Debug("source contains syntax errors", slog.Int("size_bytes", len(src)))
	}

	c := collector{src: content, lines: lineStarts(content), seen: make(map[buffer.Pos]bool)}
	c.walk(root)
	return c.out, nil
}

// FunctionDeclarations implements merge.DeclarationLocator.
func (p *Parser) FunctionDeclarations(ctx context.Context, src []byte) ([]merge.Declaration, error) {
	elems, err := p.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	out := make([]merge.Declaration, 0, len(elems))
	for _, e := range elems {
		out = append(out, merge.Declaration{
			Name:          e.Name,
			QualifiedName: e.QualifiedName,
			Span:          e.Span,
			NameSpan:      e.NameSpan,
		})
	}
	return out, nil
}

// Node types that declare a named function across the Lua grammars
// tree-sitter has shipped.
var declarationTypes = map[string]bool{
	"function_declaration":                true,
	"local_function_declaration":          true,
	"function_statement":                  true,
	"local_function":                      true,
	"local_function_statement":            true,
	"function_definition_statement":       true,
	"local_function_definition_statement": true,
	"function":                            true,
}

var nameTypes = map[string]bool{
	"identifier":              true,
	"function_name":           true,
	"dot_index_expression":    true,
	"method_index_expression": true,
}

type collector struct {
	src   []byte
	lines []int
	seen  map[buffer.Pos]bool
	out   []Element
}

func (c *collector) walk(n *sitter.Node) {
	if n.IsNamed() && declarationTypes[n.Type()] {
		c.declaration(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c.walk(n.NamedChild(i))
	}
}

func (c *collector) declaration(n *sitter.Node) {
	name := n.ChildByFieldName("name")
	if name == nil {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if ch := n.NamedChild(i); nameTypes[ch.Type()] {
				name = ch
				break
			}
		}
	}
	if name == nil {
		return
	}
	token := lastLeaf(name)
	nameSpan := c.span(token)
	if c.seen[nameSpan.Start] {
		return
	}
	c.seen[nameSpan.Start] = true

	qualified := strings.Join(strings.Fields(name.Content(c.src)), "")
	kind := KindFunction
	switch {
	case strings.HasPrefix(n.Type(), "local") || strings.HasPrefix(n.Content(c.src), "local"):
		kind = KindLocalFunction
	case strings.Contains(qualified, ":"):
		kind = KindMethod
	}

	c.out = append(c.out, Element{
		Kind:          kind,
		Name:          token.Content(c.src),
		QualifiedName: qualified,
		Span:          c.span(n),
		NameSpan:      nameSpan,
	})
}

func lastLeaf(n *sitter.Node) *sitter.Node {
	for n.NamedChildCount() > 0 {
		n = n.NamedChild(int(n.NamedChildCount()) - 1)
	}
	return n
}

func (c *collector) span(n *sitter.Node) buffer.Span {
	return buffer.Span{Start: c.pos(n.StartPoint()), End: c.pos(n.EndPoint())}
}

// pos converts a tree-sitter point (row, byte column) to a grapheme position.
func (c *collector) pos(pt sitter.Point) buffer.Pos {
	row := int(pt.Row)
	if row >= len(c.lines) {
		row = len(c.lines) - 1
	}
	start := c.lines[row]
	end := start + int(pt.Column)
	if end > len(c.src) {
		end = len(c.src)
	}
	return buffer.Pos{Line: row, Col: grapheme.Count(string(c.src[start:end]))}
}

func lineStarts(src []byte) []int {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
