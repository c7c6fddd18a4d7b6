package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/reoring/skema"
	js "github.com/reoring/skema/jsonschema"
)

// schemaHolder serves the current schema to concurrent requests and swaps it
// when the schema file changes. A failed reload keeps the previous schema.
type schemaHolder struct {
	mu     sync.RWMutex
	schema skema.AnyType

	path     string
	load     func() (skema.AnyType, error)
	log      zerolog.Logger
	onReload func(err error)
}

func newSchemaHolder(path string, load func() (skema.AnyType, error), log zerolog.Logger) (*schemaHolder, error) {
	t, err := load()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	return &schemaHolder{schema: t, path: abs, load: load, log: log}, nil
}

// Get returns the schema in effect.
func (h *schemaHolder) Get() skema.AnyType {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.schema
}

// Parse implements skema.Parser[any] against the current schema.
func (h *schemaHolder) Parse(ctx context.Context, v any) (any, error) {
	return h.Get().ParseAny(ctx, v)
}

func (h *schemaHolder) JSONSchema() (*js.Schema, error) { return h.Get().JSONSchema() }

// Reload rebuilds the schema from disk.
func (h *schemaHolder) Reload() error {
	t, err := h.load()
	if h.onReload != nil {
		h.onReload(err)
	}
	if err != nil {
		h.log.Error().Err(err).Str("schema", h.path).Msg("schema reload failed, keeping previous schema")
		return err
	}
	h.mu.Lock()
	h.schema = t
	h.mu.Unlock()
	h.log.Info().Str("schema", h.path).Msg("schema reloaded")
	return nil
}

// Watch reloads the schema whenever its file is written or re-created until
// ctx is done. The directory is watched so that atomic saves are seen.
func (h *schemaHolder) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	h.log.Info().Str("schema", h.path).Msg("watching schema for changes")
	go func() {
		defer w.Close()
		name := filepath.Base(h.path)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != name || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				h.log.Debug().Str("event", ev.Op.String()).Str("file", ev.Name).Msg("schema file changed")
				_ = h.Reload()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				h.log.Error().Err(err).Msg("schema watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
