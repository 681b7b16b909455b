package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Reloader watches the taxonomy overlay file for changes and triggers
// hot-reload on the server.
type Reloader struct {
	watcher *fsnotify.Watcher
	server  *Server
	log     *zap.Logger
	paths   []string
}

// NewReloader creates a file watcher for the given paths. Paths that do not
// exist yet are skipped; a deployment running on the built-in taxonomy has
// nothing to watch.
func NewReloader(server *Server, logger *zap.Logger, paths []string) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var watched []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := watcher.Add(p); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %q: %w", p, err)
		}
		watched = append(watched, p)
	}

	return &Reloader{
		watcher: watcher,
		server:  server,
		log:     logger,
		paths:   watched,
	}, nil
}

// Watched returns the paths under watch.
func (r *Reloader) Watched() []string {
	return r.paths
}

// Run watches for file changes and reloads the taxonomy. Blocks until ctx
// is cancelled. A failed reload keeps the previous taxonomy in service.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	// Debounce: wait 500ms after last write before reloading
	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(500*time.Millisecond, func() {
					if err := r.server.ReloadTaxonomy(); err != nil {
						r.log.Error("hot-reload failed, previous taxonomy stays active", zap.Error(err))
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Error("file watcher error", zap.Error(err))
		}
	}
}
