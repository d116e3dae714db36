package category

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce coalesces the burst of events editors produce for one save.
const debounce = 100 * time.Millisecond

// Reload reports the outcome of re-reading the rule file. On error the
// Source keeps its previous Categorizer.
type Reload struct {
	Categorizer *Categorizer
	Err         error
}

// Watcher re-reads a rule file whenever it changes and stores the result in
// a Source. The file's directory is watched rather than the file itself so
// that editors which save by rename are still observed.
type Watcher struct {
	Path    string
	Reloads <-chan Reload // Read-only external channel

	reloads chan Reload
	src     *Source
	done    chan struct{}
	watcher *fsnotify.Watcher
	logger  *zap.Logger

	stopOnce sync.Once
}

// NewWatcher creates a watcher for the rule file at path feeding src.
func NewWatcher(path string, src *Source, logger *zap.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving rules path %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating rules watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ch := make(chan Reload, 16)
	return &Watcher{
		Path:    abs,
		Reloads: ch,
		reloads: ch,
		src:     src,
		done:    make(chan struct{}),
		watcher: fw,
		logger:  logger,
	}, nil
}

// Start begins watching the rule file's directory.
// If it fails the watcher is released, Reloads is closed and Stop becomes
// a no-op.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		w.stopOnce.Do(func() {
			w.watcher.Close()
			close(w.done)
			close(w.reloads)
		})
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.Path), err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Reloads channel. It is safe to call more
// than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		<-w.done
		close(w.reloads)
	})
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		pending bool
		last    time.Time
	)
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if pending {
					w.apply()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending = true
				last = time.Now()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("rules watcher error", zap.Error(err))

		case <-ticker.C:
			if pending && time.Since(last) >= debounce {
				pending = false
				w.apply()
			}
		}
	}
}

func (w *Watcher) apply() {
	c, err := LoadRules(w.Path)
	if err != nil {
		w.logger.Warn("rules reload failed, keeping previous rules",
			zap.String("path", w.Path), zap.Error(err))
	} else {
		w.src.Store(c)
		w.logger.Debug("rules reloaded",
			zap.String("path", w.Path), zap.Int("rules", len(c.rules)))
	}

	select {
	case w.reloads <- Reload{Categorizer: c, Err: err}:
	default:
		// Source already holds the result; only the notification is dropped.
	}
}
