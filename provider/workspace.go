package provider

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/LiXizhi/nplmerge/document"
)

// Workspace reports the documents a host editor has open.
type Workspace interface {
	LiveDocument(path string) (document.TextDocument, bool)
}

// Documents is an in-memory Workspace keyed by cleaned path.
type Documents struct {
	mu   sync.RWMutex
	docs map[string]document.TextDocument
}

func NewDocuments() *Documents {
	return &Documents{docs: make(map[string]document.TextDocument)}
}

// Open registers doc as the live document for path, replacing any previous one.
func (d *Documents) Open(path string, doc document.TextDocument) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[filepath.Clean(path)] = doc
}

func (d *Documents) Close(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.docs, filepath.Clean(path))
}

func (d *Documents) LiveDocument(path string) (document.TextDocument, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.docs[filepath.Clean(path)]
	return doc, ok
}

// Paths returns the open paths, sorted.
func (d *Documents) Paths() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.docs))
	for p := range d.docs {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
