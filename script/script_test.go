package script

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/codemodel"
	"github.com/LiXizhi/nplmerge/document"
	"github.com/LiXizhi/nplmerge/merge"
)

const example = `
target: path/to/file.lua
edits:
  - op: insert
    line: 1
    lines: ["x"]
  - op: remove
    offset: 2
    count: 2
  - op: replace
    span: "0:0-0:11"
    old: y
    new: z
`

func liveSession(t *testing.T, text string) (*merge.Session, *buffer.Buffer) {
	t.Helper()
	host := buffer.New(text, buffer.Options{})
	s, err := merge.NewSession(document.NewLive("buf://script.lua", host, buffer.LineEndingAuto),
		merge.WithLocator(codemodel.NewParser()))
	require.NoError(t, err)
	return s, host
}

func TestParse_Example(t *testing.T) {
	s, err := Parse([]byte(example))
	require.NoError(t, err)

	assert.Equal(t, "path/to/file.lua", s.Target)
	assert.False(t, s.StopOnError)
	require.Len(t, s.Edits, 3)

	assert.Equal(t, Edit{Op: OpInsert, Line: 1, Lines: []string{"x"}}, s.Edits[0])
	assert.Equal(t, Edit{Op: OpRemove, Offset: 2, Count: 2}, s.Edits[1])

	require.NotNil(t, s.Edits[2].Span)
	assert.Equal(t, buffer.SpanAt(0, 0, 11), buffer.Span(*s.Edits[2].Span))
	assert.Equal(t, "y", s.Edits[2].Old)
	assert.Equal(t, "z", s.Edits[2].New)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "empty document"},
		{"unknown key", "edits:\n  - op: insert\n    lines: [a]\n    colour: red\n", "colour"},
		{"unknown op", "edits:\n  - op: explode\n", `unknown op "explode"`},
		{"missing op", "edits:\n  - line: 1\n", "op is required"},
		{"insert without lines", "edits:\n  - op: insert\n    line: 0\n", "lines is required"},
		{"negative count", "edits:\n  - op: remove\n    count: -1\n", "must not be negative"},
		{"replace without old", "edits:\n  - op: replace\n    new: z\n", "old is required"},
		{"rename without new", "edits:\n  - op: rename\n    old: f\n", "old and new are required"},
		{"settext without span", "edits:\n  - op: settext\n    text: t\n", "span is required"},
		{"bad span", "edits:\n  - op: settext\n    span: \"0:0\"\n", "invalid span"},
		{"span not a string", "edits:\n  - op: settext\n    span: [1, 2]\n", "span must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidScript)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSpan_MarshalRoundTrip(t *testing.T) {
	sp := Span(buffer.SpanAt(2, 3, 4))
	out, err := yaml.Marshal(Edit{Op: OpSetText, Span: &sp, Text: "t"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "2:3-2:7")

	var back Edit
	require.NoError(t, yaml.Unmarshal(out, &back))
	require.NotNil(t, back.Span)
	assert.Equal(t, sp, *back.Span)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/edits.yaml", []byte(example), 0o644))

	s, err := Load(fs, "/edits.yaml")
	require.NoError(t, err)
	assert.Len(t, s.Edits, 3)

	_, err = Load(fs, "/missing.yaml")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bad.yaml", []byte("edits:\n  - op: nope\n"), 0o644))
	_, err = Load(fs, "/bad.yaml")
	assert.ErrorIs(t, err, ErrInvalidScript)
	assert.Contains(t, err.Error(), "/bad.yaml")
}

func TestRun_AppliesInOrder(t *testing.T) {
	sess, host := liveSession(t, "function foo()\nend")
	s, err := Parse([]byte(`
edits:
  - op: insert
    line: 0
    lines: ["-- header"]
  - op: rename
    old: foo
    new: bar
  - op: replace
    old: "end"
    new: "end -- bar"
  - op: settext
    span: "0:3-0:9"
    text: "HEADER"
`))
	require.NoError(t, err)

	rep := s.Run(context.Background(), sess)
	require.True(t, rep.OK(), "failed: %+v", rep.Failed())
	assert.Len(t, rep.Outcomes, 4)
	assert.Equal(t, "-- HEADER\nfunction bar()\nend -- bar", host.Text())
	assert.Len(t, sess.Pending(), 4)
}

func TestRun_ReportsFailuresAndContinues(t *testing.T) {
	sess, host := liveSession(t, "a\nb")
	s := &Script{Edits: []Edit{
		{Op: OpReplace, Old: "zzz", New: "y"},
		{Op: OpInsert, Line: 9, Lines: []string{"x"}},
		{Op: OpInsert, Line: 2, Lines: []string{"c"}},
		{Op: "bogus"},
	}}

	rep := s.Run(context.Background(), sess)
	failed := rep.Failed()
	require.Len(t, failed, 3)
	assert.ErrorIs(t, failed[0].Err, merge.ErrNotFound)
	assert.ErrorIs(t, failed[1].Err, merge.ErrOutOfRange)
	assert.ErrorIs(t, failed[2].Err, ErrInvalidScript)
	assert.Equal(t, 3, failed[2].Index)
	assert.True(t, rep.Outcomes[2].OK)
	assert.Equal(t, "a\nb\nc", host.Text())
}

func TestRun_StopOnError(t *testing.T) {
	sess, host := liveSession(t, "a")
	s := &Script{StopOnError: true, Edits: []Edit{
		{Op: OpInsert, Line: 0, Lines: []string{"x"}},
		{Op: OpReplaceSelection, Old: "a", New: "b"},
		{Op: OpInsert, Line: 0, Lines: []string{"y"}},
	}}

	rep := s.Run(context.Background(), sess)
	require.Len(t, rep.Outcomes, 3)
	assert.True(t, rep.Outcomes[0].OK)
	assert.ErrorIs(t, rep.Outcomes[1].Err, merge.ErrNoSelection)
	assert.ErrorIs(t, rep.Outcomes[2].Err, ErrSkipped)
	assert.False(t, rep.OK())
	assert.Equal(t, "x\na", host.Text())
}

func TestRun_CanceledContext(t *testing.T) {
	sess, host := liveSession(t, "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Script{Edits: []Edit{{Op: OpInsert, Lines: []string{"x"}}}}
	rep := s.Run(ctx, sess)
	assert.ErrorIs(t, rep.Outcomes[0].Err, context.Canceled)
	assert.Equal(t, "a", host.Text())
}
