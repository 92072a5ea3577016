package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/LiXizhi/nplmerge/merge"
)

// Registry tracks the open session for each path. Entries are released when
// the session commits, fails or is abandoned.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*merge.Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*merge.Session)}
}

func (r *Registry) add(path string, s *merge.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[path]; ok {
		return fmt.Errorf("%s (session %s): %w", path, cur.ID(), ErrSessionActive)
	}
	r.sessions[path] = s
	return nil
}

// release drops path only while it still belongs to s.
func (r *Registry) release(path string, s *merge.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[path] == s {
		delete(r.sessions, path)
	}
}

func (r *Registry) Lookup(path string) (*merge.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[path]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Paths returns the paths with an open session, sorted.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sessions))
	for p := range r.sessions {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
