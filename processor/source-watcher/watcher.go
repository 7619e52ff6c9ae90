// Package sourcewatcher watches the record source directory and reports
// debounced batches of changed JSON files, so watch mode can recompile
// once per burst of edits.
package sourcewatcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when Config.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Config configures the watcher
type Config struct {
	// Dir is the directory to watch, recursively
	Dir string

	// Debounce is how long the directory must be quiet before a batch is
	// emitted
	Debounce time.Duration

	// Extensions limits the files reported. Defaults to ".json".
	Extensions []string

	// Logger for logging events
	Logger *slog.Logger
}

// Operation indicates the type of file change
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Change is one changed file. Path is relative to the watched directory
// and uses forward slashes.
type Change struct {
	Path      string
	Operation Operation
}

// Batch is the set of changes collected during one quiet period, sorted
// by path.
type Batch struct {
	Changes []Change
}

// Paths returns the changed paths.
func (b Batch) Paths() []string {
	out := make([]string, len(b.Changes))
	for i, c := range b.Changes {
		out[i] = c.Path
	}
	return out
}

// Watcher reports changes under a source directory
type Watcher struct {
	config  Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	// Debouncing: collect changes before emitting
	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op // absolute path → accumulated ops

	// Content hashes, so a save that changes nothing is not reported
	hashMu sync.RWMutex
	hashes map[string]string // relative path → sha256

	batches chan Batch
}

// NewWatcher creates a watcher. Start must be called to begin watching.
func NewWatcher(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".json"}
	}

	return &Watcher{
		config:  config,
		watcher: fsw,
		logger:  config.Logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		batches: make(chan Batch, 1),
	}, nil
}

// Batches returns the channel of debounced change batches. It is closed
// when the watcher stops.
func (w *Watcher) Batches() <-chan Batch {
	return w.batches
}

// Start records the current content of every watched file and begins
// watching. Watching stops when ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Dir); err != nil {
		return err
	}
	w.prime()

	go w.processEvents(ctx)

	w.logger.Info("Source watcher started",
		"dir", w.config.Dir,
		"debounce", w.config.Debounce)

	return nil
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func skipDir(path, root string) bool {
	if path == root {
		return false
	}
	return strings.HasPrefix(filepath.Base(path), ".")
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if skipDir(path, root) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

// prime hashes the files present at start.
func (w *Watcher) prime() {
	_ = filepath.WalkDir(w.config.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if skipDir(path, w.config.Dir) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.relevant(path) {
			return nil
		}
		if hash, err := hashFile(path); err == nil {
			w.setHash(w.rel(path), hash)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.batches)

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.handleFSEvent(event) {
				timer.Reset(w.config.Debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-timer.C:
			if !w.flushPending(ctx) {
				// Consumer still busy with the previous batch.
				timer.Reset(w.config.Debounce)
			}
		}
	}
}

// handleFSEvent records a relevant event and reports whether it did.
func (w *Watcher) handleFSEvent(event fsnotify.Event) bool {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.handleNewDirectory(path)
			return false
		}
	}
	if !w.relevant(path) {
		return false
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Source change detected",
		"path", w.rel(path),
		"op", event.Op.String())
	return true
}

func (w *Watcher) handleNewDirectory(path string) {
	if skipDir(path, w.config.Dir) {
		return
	}
	if err := w.addWatchesRecursive(path); err != nil {
		w.logger.Warn("Failed to watch new directory",
			"path", path,
			"error", err)
	}
}

// flushPending turns the pending events into a batch. It returns false
// when the batch could not be delivered; the events then stay pending.
func (w *Watcher) flushPending(ctx context.Context) bool {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return true
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	var batch Batch
	for path, op := range toProcess {
		if ctx.Err() != nil {
			return true
		}
		if change, ok := w.classify(path, op); ok {
			batch.Changes = append(batch.Changes, change)
		}
	}
	if len(batch.Changes) == 0 {
		return true
	}
	sort.Slice(batch.Changes, func(i, j int) bool {
		return batch.Changes[i].Path < batch.Changes[j].Path
	})

	select {
	case w.batches <- batch:
		w.logger.Debug("Sent change batch", "files", len(batch.Changes))
		return true
	default:
		w.pendingMu.Lock()
		for path, op := range toProcess {
			w.pending[path] |= op
		}
		w.pendingMu.Unlock()
		return false
	}
}

// classify decides what happened to path, dropping saves that left the
// content unchanged.
func (w *Watcher) classify(path string, op fsnotify.Op) (Change, bool) {
	rel := w.rel(path)
	change := Change{Path: rel}

	hash, err := hashFile(path)
	if err != nil {
		// Removed, renamed away or unreadable.
		_, known := w.getHash(rel)
		w.deleteHash(rel)
		if !known && !op.Has(fsnotify.Remove) && !op.Has(fsnotify.Rename) {
			return Change{}, false
		}
		change.Operation = OpDelete
		return change, true
	}

	old, known := w.getHash(rel)
	if known && old == hash {
		return Change{}, false
	}
	w.setHash(rel, hash)

	if known {
		change.Operation = OpModify
	} else {
		change.Operation = OpCreate
	}
	return change, true
}

func (w *Watcher) relevant(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range w.config.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.config.Dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (w *Watcher) setHash(path, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[path] = hash
}

func (w *Watcher) getHash(path string) (string, bool) {
	w.hashMu.RLock()
	defer w.hashMu.RUnlock()
	hash, ok := w.hashes[path]
	return hash, ok
}

func (w *Watcher) deleteHash(path string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	delete(w.hashes, path)
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
