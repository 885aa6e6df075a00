// Package watcher watches a repository's working tree and git directory and
// publishes debounced change notifications.
package watcher

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/lineage/internal/log"
	"github.com/zjrosen/lineage/internal/pubsub"
)

// Watcher monitors one repository. Events are published on the configured
// publisher with the repository root as payload.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	gitDir    string
	debounce  time.Duration
	maxDirs   int
	pub       pubsub.Publisher[string]
	dirs      int
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Root        string
	DebounceDur time.Duration
	// MaxDirs caps how many directories get a kernel watch.
	MaxDirs int
}

// DefaultConfig returns the defaults for watching root.
func DefaultConfig(root string) Config {
	return Config{
		Root:        root,
		DebounceDur: 300 * time.Millisecond,
		MaxDirs:     4096,
	}
}

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
}

// New creates a watcher for cfg.Root.
func New(cfg Config, pub pubsub.Publisher[string]) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if cfg.MaxDirs <= 0 {
		cfg.MaxDirs = DefaultConfig(cfg.Root).MaxDirs
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      filepath.Clean(cfg.Root),
		gitDir:    filepath.Join(filepath.Clean(cfg.Root), ".git"),
		debounce:  cfg.DebounceDur,
		maxDirs:   cfg.MaxDirs,
		pub:       pub,
		done:      make(chan struct{}),
	}, nil
}

// Start adds watches for the tree and begins delivering events.
func (w *Watcher) Start() error {
	if err := w.addTree(w.root); err != nil {
		return fmt.Errorf("watching directory %s: %w", w.root, err)
	}
	for _, dir := range []string{w.gitDir, filepath.Join(w.gitDir, "refs", "heads")} {
		if err := w.add(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn(log.CatWatcher, "cannot watch git directory", "dir", dir, "error", err)
		}
	}

	log.Debug(log.CatWatcher, "watching repository", "root", w.root, "dirs", w.dirs)

	go w.loop()
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

func (w *Watcher) add(dir string) error {
	if w.dirs >= w.maxDirs {
		return nil
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return err
	}
	w.dirs++
	if w.dirs == w.maxDirs {
		log.Warn(log.CatWatcher, "directory watch limit reached", "root", w.root, "limit", w.maxDirs)
	}
	return nil
}

// addTree watches dir and every directory below it, skipping git
// internals and dependency directories.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && (d.Name() == ".git" || skipDirs[d.Name()]) {
			return filepath.SkipDir
		}
		if err := w.add(path); err != nil {
			return err
		}
		if w.dirs >= w.maxDirs {
			return filepath.SkipAll
		}
		return nil
	})
}

// loop processes file system events with debouncing. Work-tree and HEAD
// changes are tracked separately so one burst yields at most one event of
// each type.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = map[pubsub.EventType]bool{}
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			kind, relevant := w.classify(event)
			if !relevant {
				continue
			}
			if kind == pubsub.WorkTreeChangedEvent && event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Debug(log.CatWatcher, "cannot watch new directory", "dir", event.Name, "error", err)
					}
				}
			}
			pending[kind] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			for _, kind := range []pubsub.EventType{pubsub.HeadChangedEvent, pubsub.WorkTreeChangedEvent} {
				if pending[kind] {
					w.pub.Publish(kind, w.root)
					delete(pending, kind)
				}
			}
			timer = nil

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err, "root", w.root)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// classify maps a raw event to the notification it should trigger.
func (w *Watcher) classify(event fsnotify.Event) (pubsub.EventType, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	base := filepath.Base(event.Name)
	if strings.HasSuffix(base, ".lock") {
		return "", false
	}

	rel, err := filepath.Rel(w.gitDir, event.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return pubsub.WorkTreeChangedEvent, true
	}
	switch {
	case rel == "HEAD", strings.HasPrefix(rel, "refs"):
		return pubsub.HeadChangedEvent, true
	case rel == "index":
		// Staging changes what the working diff compares against.
		return pubsub.WorkTreeChangedEvent, true
	}
	return "", false
}
