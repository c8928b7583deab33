package app

import (
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// Watcher polls a set of files and triggers a callback when any of them
// has a newer modification time than its baseline. The viewer uses it to
// re-run the layout when the diagram or library is edited.
type Watcher struct {
	mu            sync.Mutex
	paths         []string
	baseline      map[string]time.Time
	checkInterval time.Duration
	stopCh        chan struct{}
	stopOnce      *sync.Once
	onChange      func(changed []string)
}

// NewWatcher creates a watcher over paths. Files that do not exist yet get
// a zero baseline, so their creation counts as a change.
func NewWatcher(checkInterval time.Duration, paths ...string) *Watcher {
	w := &Watcher{
		paths:         append([]string(nil), paths...),
		baseline:      make(map[string]time.Time, len(paths)),
		checkInterval: checkInterval,
	}
	w.ResetBaseline()
	return w
}

// NewExecutableWatcher watches the running binary, resolving symlinks so a
// rebuilt file is seen. Returns nil if the executable cannot be found.
func NewExecutableWatcher(checkInterval time.Duration) *Watcher {
	execPath, err := os.Executable()
	if err != nil {
		return nil
	}
	if real, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = real
	}
	if _, err := os.Stat(execPath); err != nil {
		return nil
	}
	return NewWatcher(checkInterval, execPath)
}

// OnChange sets the callback. It is called from a background goroutine;
// UI updates need the toolkit's own synchronization.
func (w *Watcher) OnChange(callback func(changed []string)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// Paths returns the watched files.
func (w *Watcher) Paths() []string {
	return append([]string(nil), w.paths...)
}

// Start begins polling in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	w.stopCh = make(chan struct{})
	w.stopOnce = new(sync.Once)
	stopCh := w.stopCh
	w.mu.Unlock()
	go w.watchLoop(stopCh)
}

// Stop stops the polling goroutine. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stopCh, once := w.stopCh, w.stopOnce
	w.mu.Unlock()
	if once != nil {
		once.Do(func() { close(stopCh) })
	}
}

func (w *Watcher) watchLoop(stopCh chan struct{}) {
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			changed := w.Check()
			if len(changed) == 0 {
				continue
			}
			w.mu.Lock()
			cb := w.onChange
			w.mu.Unlock()
			if cb != nil {
				cb(changed)
			}
		}
	}
}

// Check returns the files modified since the last check and moves their
// baselines forward. Files that disappear are not reported.
func (w *Watcher) Check() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for _, path := range w.paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().After(w.baseline[path]) {
			w.baseline[path] = info.ModTime()
			changed = append(changed, path)
		}
	}
	return changed
}

// ResetBaseline records the current modification times of all files.
func (w *Watcher) ResetBaseline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, path := range w.paths {
		if info, err := os.Stat(path); err == nil {
			w.baseline[path] = info.ModTime()
		} else {
			w.baseline[path] = time.Time{}
		}
	}
}

// RestartProcess replaces the current process with a new instance of the
// specified executable, preserving command line arguments and environment.
// This function does not return on success.
func RestartProcess(execPath string) error {
	return syscall.Exec(execPath, os.Args, os.Environ())
}
