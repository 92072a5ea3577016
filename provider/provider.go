package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/LiXizhi/nplmerge/buffer"
	"github.com/LiXizhi/nplmerge/document"
	"github.com/LiXizhi/nplmerge/merge"
)

var (
	ErrInvalidArgument = merge.ErrInvalidArgument
	ErrSessionActive   = errors.New("session already active for path")
)

// Option configures a Provider.
type Option func(*Provider)

// WithFs sets the filesystem for staged documents. Default is the OS.
func WithFs(fs afero.Fs) Option {
	return func(p *Provider) {
		if fs != nil {
			p.fs = fs
		}
	}
}

func WithWorkspace(ws Workspace) Option {
	return func(p *Provider) { p.ws = ws }
}

func WithLocator(l merge.DeclarationLocator) Option {
	return func(p *Provider) { p.locator = l }
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLineEnding forces the line ending of every document. LineEndingAuto
// (the default) detects it per document.
func WithLineEnding(e buffer.LineEnding) Option {
	return func(p *Provider) { p.ending = e }
}

// WithWatcher marks staged documents stale on external writes.
func WithWatcher(w *Watcher) Option {
	return func(p *Provider) { p.watcher = w }
}

// Provider opens merge sessions.
type Provider struct {
	fs       afero.Fs
	ws       Workspace
	locator  merge.DeclarationLocator
	logger   *slog.Logger
	ending   buffer.LineEnding
	watcher  *Watcher
	registry *Registry
}

func New(opts ...Option) *Provider {
	p := &Provider{
		fs:       afero.NewOsFs(),
		logger:   slog.Default(),
		registry: NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Registry() *Registry { return p.registry }

// Open starts a session on path. The live host document is used when the
// workspace has path open; otherwise the file is staged from disk. The
// choice is fixed for the life of the session.
func (p *Provider) Open(ctx context.Context, path string) (*merge.Session, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := filepath.Clean(path)
	if cur, ok := p.registry.Lookup(key); ok {
		return nil, fmt.Errorf("%s (session %s): %w", key, cur.ID(), ErrSessionActive)
	}

	var (
		doc  document.Adapter
		file *document.FileDocument
	)
	if host, ok := p.liveDocument(key); ok {
		doc = document.NewLive(key, host, p.ending)
	} else {
		f, err := document.OpenFile(p.fs, key, p.ending)
		if err != nil {
			return nil, err
		}
		doc, file = f, f
	}

	watched := false
	s, err := merge.NewSession(doc,
		merge.WithLocator(p.locator),
		merge.WithLogger(p.logger),
		merge.WithOnClose(func(s *merge.Session) {
			p.registry.release(key, s)
			if watched {
				p.watcher.Unwatch(key)
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := p.registry.add(key, s); err != nil {
		return nil, err
	}

	if file != nil && p.watcher != nil {
		if err := p.watcher.Watch(key, file); err != nil {
			p.logger.Warn("external changes will only be caught at commit",
				slog.String("path", key),
				slog.String("error", err.Error()),
			)
		} else {
			watched = true
		}
	}
	return s, nil
}

func (p *Provider) liveDocument(path string) (document.TextDocument, bool) {
	if p.ws == nil {
		return nil, false
	}
	host, ok := p.ws.LiveDocument(path)
	if !ok || host == nil {
		return nil, false
	}
	return host, true
}
