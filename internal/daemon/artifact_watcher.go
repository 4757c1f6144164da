package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/backupstate/internal/logfields"
)

// DefaultWatchDebounce collapses bursts of filesystem events into one run.
const DefaultWatchDebounce = 500 * time.Millisecond

// ArtifactWatcher triggers verification when a configuration artifact is
// removed or renamed away.
type ArtifactWatcher struct {
	artifacts    map[string]string // absolute path -> identifier
	watcher      *fsnotify.Watcher
	onChange     func()
	logger       *slog.Logger
	mu           sync.Mutex
	stopChan     chan struct{}
	stopped      bool
	pending      chan struct{}
	debounceTime time.Duration
}

// NewArtifactWatcher creates a watcher for the given artifact paths. Relative
// paths are resolved against root.
func NewArtifactWatcher(root string, artifacts []string, onChange func(), logger *slog.Logger) (*ArtifactWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tracked := make(map[string]string, len(artifacts))
	for _, a := range artifacts {
		p := a
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve artifact path %s: %w", a, err)
		}
		tracked[filepath.Clean(abs)] = a
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &ArtifactWatcher{
		artifacts:    tracked,
		watcher:      watcher,
		onChange:     onChange,
		logger:       logger,
		stopChan:     make(chan struct{}),
		pending:      make(chan struct{}, 1),
		debounceTime: DefaultWatchDebounce,
	}, nil
}

// SetDebounce overrides the debounce window. Call before Start.
func (aw *ArtifactWatcher) SetDebounce(d time.Duration) { aw.debounceTime = d }

// Dirs returns the directories that are watched, sorted.
func (aw *ArtifactWatcher) Dirs() []string {
	seen := map[string]struct{}{}
	for p := range aw.artifacts {
		seen[filepath.Dir(p)] = struct{}{}
	}
	dirs := make([]string, 0, len(seen))
	for d := range seen {
		dirs = append(dirs, d)
	}
	slices.Sort(dirs)
	return dirs
}

// Start begins monitoring the artifact directories.
func (aw *ArtifactWatcher) Start(ctx context.Context) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	// Watch directories rather than files so removal and re-creation are both seen.
	for _, dir := range aw.Dirs() {
		if err := aw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch artifact directory %s: %w", dir, err)
		}
	}

	aw.logger.Info("Starting artifact watcher", slog.Int("artifacts", len(aw.artifacts)))

	go aw.watchLoop(ctx)
	go aw.debounceLoop(ctx)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (aw *ArtifactWatcher) Stop() error {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if aw.stopped {
		return nil
	}
	aw.stopped = true

	aw.logger.Info("Stopping artifact watcher")
	close(aw.stopChan)
	return aw.watcher.Close()
}

func (aw *ArtifactWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-aw.stopChan:
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			id, tracked := aw.artifacts[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}
			switch {
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				aw.logger.Warn("Configuration artifact removed", logfields.Artifact(id))
				aw.schedule()
			case event.Has(fsnotify.Create):
				aw.logger.Debug("Configuration artifact created", logfields.Artifact(id))
			}
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			aw.logger.Error("Artifact watcher error", logfields.Error(err))
		}
	}
}

// debounceLoop coalesces pending triggers.
func (aw *ArtifactWatcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-aw.stopChan:
			stop()
			return
		case <-aw.pending:
			stop()
			timer = time.AfterFunc(aw.debounceTime, aw.onChange)
		}
	}
}

func (aw *ArtifactWatcher) schedule() {
	select {
	case aw.pending <- struct{}{}:
	default:
	}
}
