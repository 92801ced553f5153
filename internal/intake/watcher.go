// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intake

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// INBOX WATCHER
// =============================================================================

// DroppedFile is delivered when a PDF lands in the inbox directory.
type DroppedFile struct {
	Path string
	Data []byte
}

// InboxWatcher watches a drop directory and delivers PDFs placed there.
// It is the terminal analog of a drag-and-drop surface: copy a file into
// the inbox and it arrives on Files().
type InboxWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	files    chan DroppedFile

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewInboxWatcher creates a watcher for the given drop directory, creating
// the directory if needed.
func NewInboxWatcher(dir string, debounce time.Duration) (*InboxWatcher, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &InboxWatcher{
		dir:      dir,
		watcher:  watcher,
		debounce: debounce,
		files:    make(chan DroppedFile, 4),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Files returns the channel of delivered drops.
func (w *InboxWatcher) Files() <-chan DroppedFile {
	return w.files
}

// Watch starts watching the inbox directory.
func (w *InboxWatcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}

	go w.processEvents()
	go w.processPending()

	return nil
}

// processEvents records write/create events for PDF files. Delivery is
// debounced so a file still being copied is read only once complete.
func (w *InboxWatcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".pdf") {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Non-fatal; keep watching
		}
	}
}

// processPending delivers files whose last event is older than the debounce.
func (w *InboxWatcher) processPending() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			w.mu.Lock()
			var ready []string
			for path, at := range w.pending {
				if now.Sub(at) >= w.debounce {
					ready = append(ready, path)
					delete(w.pending, path)
				}
			}
			w.mu.Unlock()

			for _, path := range ready {
				w.deliver(path)
			}
		}
	}
}

// deliver reads a settled file and sends it, dropping it if the channel is
// full (a load is already in flight; first file wins).
func (w *InboxWatcher) deliver(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	select {
	case w.files <- DroppedFile{Path: path, Data: data}:
	default:
	}
}

// Close stops watching and releases resources.
func (w *InboxWatcher) Close() error {
	w.cancel()
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
