package replaywatch

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"

	"launcher/internal/logging"
)

const (
	eventBuffer = 64
	// syntheticTTL bounds how long a path reported from a directory walk
	// suppresses a late notifier event for the same path.
	syntheticTTL = 5 * time.Second
)

// Subscription delivers creation events from a directory tree, in the order
// the notifier reports them. fsnotify is not recursive, so every existing
// subdirectory is registered up front and new ones as they appear. Files
// already inside a new directory when it is registered are reported from
// the walk, since the notifier never saw them.
type Subscription struct {
	root    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	events  chan Event
	// synthetic holds paths reported from a walk; only the pump touches it.
	synthetic map[string]time.Time

	done      chan struct{}
	closeOnce sync.Once
	pumpDone  chan struct{}
}

// Subscribe starts watching root recursively. It fails if root is not an
// accessible directory or the notifier cannot be created.
func Subscribe(root string, logger *slog.Logger) (*Subscription, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve watch root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	s := &Subscription{
		root:      abs,
		logger:    logging.NewComponentLogger(logger, "replay-subscription"),
		watcher:   watcher,
		events:    make(chan Event, eventBuffer),
		synthetic: make(map[string]time.Time),
		done:      make(chan struct{}),
		pumpDone:  make(chan struct{}),
	}
	if err := watcher.Add(abs); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", abs, err)
	}
	s.addTree(abs, false)

	go s.pump()
	return s, nil
}

// Events returns the channel of creation events. It is closed after Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Root returns the absolute watched directory.
func (s *Subscription) Root() string {
	return s.root
}

// Close stops the notifier and waits for the event pump to exit.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		<-s.pumpDone
	})
	return err
}

func (s *Subscription) pump() {
	defer close(s.pumpDone)
	defer close(s.events)

	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) {
				continue
			}
			if s.alreadyReported(ev.Name) {
				continue
			}
			var found []string
			if info, err := os.Lstat(ev.Name); err == nil && info.IsDir() {
				found = s.addTree(ev.Name, true)
			}
			if !s.emit(ev.Name) {
				return
			}
			for _, path := range found {
				s.synthetic[path] = time.Now()
				if !s.emit(path) {
					return
				}
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			logging.WarnWithContext(s.logger, "replay watcher error", "replay_watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the replay directory is still accessible"),
				logging.String(logging.FieldImpact, "some replay events may have been missed"),
			)
		}
	}
}

func (s *Subscription) emit(path string) bool {
	select {
	case s.events <- Event{Path: path, Time: time.Now()}:
		return true
	case <-s.done:
		return false
	}
}

// alreadyReported consumes a walk-reported entry for path and expires stale
// ones.
func (s *Subscription) alreadyReported(path string) bool {
	now := time.Now()
	for p, at := range s.synthetic {
		if now.Sub(at) > syntheticTTL {
			delete(s.synthetic, p)
		}
	}
	if _, ok := s.synthetic[path]; ok {
		delete(s.synthetic, path)
		return true
	}
	return false
}

// addTree registers every directory below root, and root itself when
// includeRoot is set. With includeRoot it also returns the entries found
// below root, sorted, so the caller can report them.
func (s *Subscription) addTree(root string, includeRoot bool) []string {
	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			s.logger.Debug("skip unreadable directory", logging.String("path", path), logging.Error(err))
			return nil
		}
		if path == root {
			if includeRoot {
				if err := s.watcher.Add(path); err != nil {
					s.logger.Debug("watch subdirectory failed", logging.String("path", path), logging.Error(err))
				}
			}
			return nil
		}
		if includeRoot {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		}
		if !d.IsDir() {
			return nil
		}
		if err := s.watcher.Add(path); err != nil {
			s.logger.Debug("watch subdirectory failed", logging.String("path", path), logging.Error(err))
		}
		return nil
	})
	if err != nil {
		s.logger.Debug("walk watch tree failed", logging.String("root", root), logging.Error(err))
	}
	slices.Sort(found)
	return found
}
