// Package script reads YAML edit scripts and runs them against a merge
// session:
//
//	target: path/to/file.lua
//	stop_on_error: true
//	edits:
//	  - op: insert
//	    line: 1
//	    lines: ["x"]
//	  - op: replace
//	    span: "0:0-0:11"
//	    old: y
//	    new: z
package script

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/LiXizhi/nplmerge/buffer"
)

var ErrInvalidScript = errors.New("invalid edit script")

// Op is an edit script operation.
type Op string

const (
	OpInsert           Op = "insert"
	OpRemove           Op = "remove"
	OpReplace          Op = "replace"
	OpReplaceSelection Op = "replace_selection"
	OpRename           Op = "rename"
	OpSetText          Op = "settext"
)

// Span is a buffer.Span written as "line:col-line:col".
type Span buffer.Span

func (s *Span) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: span must be a string: %w", node.Line, err)
	}
	parsed, err := buffer.ParseSpan(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = Span(parsed)
	return nil
}

func (s Span) MarshalYAML() (any, error) { return buffer.Span(s).String(), nil }

// Edit is one operation. Which fields apply depends on Op.
type Edit struct {
	Op     Op       `yaml:"op"`
	Line   int      `yaml:"line,omitempty"`
	Lines  []string `yaml:"lines,omitempty"`
	Offset int      `yaml:"offset,omitempty"`
	Count  int      `yaml:"count,omitempty"`
	Span   *Span    `yaml:"span,omitempty"`
	Old    string   `yaml:"old,omitempty"`
	New    string   `yaml:"new,omitempty"`
	Text   string   `yaml:"text,omitempty"`
}

type Script struct {
	Target      string `yaml:"target,omitempty"`
	StopOnError bool   `yaml:"stop_on_error,omitempty"`
	Edits       []Edit `yaml:"edits"`
}

// Parse decodes and validates a script. Unknown keys are rejected.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScript)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScript, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads and parses the script at path.
func Load(fs afero.Fs, path string) (*Script, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks that each edit carries the fields its op needs.
func (s *Script) Validate() error {
	for i, e := range s.Edits {
		if err := e.validate(); err != nil {
			return fmt.Errorf("%w: edit %d (%s): %v", ErrInvalidScript, i, e.Op, err)
		}
	}
	return nil
}

func (e Edit) validate() error {
	switch e.Op {
	case OpInsert:
		if len(e.Lines) == 0 {
			return errors.New("lines is required")
		}
		if e.Line < 0 {
			return errors.New("line must not be negative")
		}
	case OpRemove:
		if e.Offset < 0 || e.Count < 0 {
			return errors.New("offset and count must not be negative")
		}
	case OpReplace, OpReplaceSelection:
		if e.Old == "" {
			return errors.New("old is required")
		}
	case OpRename:
		if e.Old == "" || e.New == "" {
			return errors.New("old and new are required")
		}
	case OpSetText:
		if e.Span == nil {
			return errors.New("span is required")
		}
	case "":
		return errors.New("op is required")
	default:
		return fmt.Errorf("unknown op %q", e.Op)
	}
	return nil
}
