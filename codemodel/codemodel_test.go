package codemodel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/document"
	"github.com/LiXizhi/nplmerge/merge"
)

func parse(t *testing.T, src string) []Element {
	t.Helper()
	elems, err := NewParser().Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return elems
}

func TestParse_GlobalFunction(t *testing.T) {
	elems := parse(t, "function foo()\n  return 1\nend\n")
	require.Len(t, elems, 1)

	e := elems[0]
	assert.Equal(t, KindFunction, e.Kind)
	assert.Equal(t, "foo", e.Name)
	assert.Equal(t, "foo", e.QualifiedName)
	assert.Equal(t, buffer.SpanAt(0, 9, 3), e.NameSpan)
	assert.Equal(t, buffer.Pos{Line: 0, Col: 0}, e.Span.Start)
	assert.Equal(t, 2, e.Span.End.Line)
}

func TestParse_LocalFunction(t *testing.T) {
	elems := parse(t, "local function helper() end")
	require.Len(t, elems, 1)
	assert.Equal(t, KindLocalFunction, elems[0].Kind)
	assert.Equal(t, "helper", elems[0].Name)
	assert.Equal(t, buffer.SpanAt(0, 15, 6), elems[0].NameSpan)
}

func TestParse_QualifiedNames(t *testing.T) {
	src := strings.Join([]string{
		"function a.b.c()",
		"end",
		"function M:go(x)",
		"end",
	}, "\n")
	elems := parse(t, src)
	require.Len(t, elems, 2)

	assert.Equal(t, "c", elems[0].Name)
	assert.Equal(t, "a.b.c", elems[0].QualifiedName)
	assert.Equal(t, KindFunction, elems[0].Kind)
	assert.Equal(t, buffer.SpanAt(0, 13, 1), elems[0].NameSpan)

	assert.Equal(t, "go", elems[1].Name)
	assert.Equal(t, "M:go", elems[1].QualifiedName)
	assert.Equal(t, KindMethod, elems[1].Kind)
	assert.Equal(t, buffer.SpanAt(2, 11, 2), elems[1].NameSpan)
}

func TestParse_SkipsCallsAndAnonymousFunctions(t *testing.T) {
	elems := parse(t, "foo()\nlocal f = function() end\nbar(function() end)\n")
	assert.Empty(t, elems)
}

func TestParse_NestedDeclarations(t *testing.T) {
	src := "function outer()\n  local function inner() end\nend\n"
	elems := parse(t, src)
	require.Len(t, elems, 2)
	assert.Equal(t, "outer", elems[0].Name)
	assert.Equal(t, "inner", elems[1].Name)
	assert.Equal(t, buffer.SpanAt(1, 17, 5), elems[1].NameSpan)
}

func TestParse_GraphemeColumns(t *testing.T) {
	elems := parse(t, `local s = "日本"; function foo() end`)
	require.Len(t, elems, 1)
	assert.Equal(t, buffer.SpanAt(0, 25, 3), elems[0].NameSpan)
}

func TestParse_CRLF(t *testing.T) {
	elems := parse(t, "function a()\r\nend\r\nfunction b()\r\nend\r\n")
	require.Len(t, elems, 2)
	assert.Equal(t, buffer.SpanAt(2, 9, 1), elems[1].NameSpan)
}

func TestParse_Rejections(t *testing.T) {
	_, err := NewParser(WithMaxFileSize(4)).Parse(context.Background(), []byte("function f() end"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = NewParser().Parse(context.Background(), []byte("function \xff() end"))
	assert.ErrorIs(t, err, ErrInvalidContent)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewParser().Parse(ctx, []byte("function f() end"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFunctionDeclarations_MatchesParse(t *testing.T) {
	src := []byte("function M.run()\nend\n")
	decls, err := NewParser().FunctionDeclarations(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "run", decls[0].Name)
	assert.Equal(t, "M.run", decls[0].QualifiedName)
	assert.Equal(t, buffer.SpanAt(0, 11, 3), decls[0].NameSpan)
}

func TestRenameFunction_ThroughSession(t *testing.T) {
	host := buffer.New("function foo()\n  return foo()\nend\n", buffer.Options{})
	doc := document.NewLive("buf://rename.lua", host, buffer.LineEndingAuto)
	s, err := merge.NewSession(doc, merge.WithLocator(NewParser()))
	require.NoError(t, err)

	whole := buffer.Span{End: buffer.Pos{Line: 3}}
	require.True(t, s.RenameFunction(context.Background(), whole, "foo", "bar"), "err: %v", s.Err())
	assert.Equal(t, "function bar()\n  return foo()\nend\n", host.Text())

	assert.False(t, s.RenameFunction(context.Background(), whole, "missing", "x"))
	assert.ErrorIs(t, s.Err(), merge.ErrNotFound)
	require.NoError(t, s.Commit(context.Background()))
}

func TestElementKind_String(t *testing.T) {
	assert.Equal(t, "function", KindFunction.String())
	assert.Equal(t, "local function", KindLocalFunction.String())
	assert.Equal(t, "method", KindMethod.String())
	assert.Equal(t, "ElementKind(9)", ElementKind(9).String())
	assert.Equal(t, []string{".lua", ".npl"}, Extensions())
}
