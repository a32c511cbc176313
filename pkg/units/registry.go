package units

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"gopkg.in/fsnotify.v1"
)

// Registry publishes the current table snapshot. User tables found in a
// directory are overlaid onto a base table; every rebuild produces a new
// immutable *Table that is swapped in atomically, so conversions that already
// hold a snapshot are never affected by a reload.
type Registry struct {
	mu        sync.Mutex
	base      TableSpec
	dir       string
	current   atomic.Pointer[Table]
	validate  func(*Table) error
	onChange  func(*Table, error)
	watcher   *fsnotify.Watcher
	stopChan  chan struct{}
	watchDone chan struct{}
	logger    *slog.Logger
}

// NewRegistry creates a registry whose first snapshot is base.
func NewRegistry(base *Table, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	registry := &Registry{
		base:   base.Spec(),
		logger: logger,
	}
	registry.current.Store(base)
	return registry
}

// Snapshot returns the current table.
func (r *Registry) Snapshot() *Table {
	return r.current.Load()
}

// SetValidator installs a check that a rebuilt table must pass before it is
// published.
func (r *Registry) SetValidator(validate func(*Table) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validate = validate
}

// SetOnChange sets a callback invoked after every rebuild attempt triggered
// by the watcher. err is non-nil when the rebuild was rejected.
func (r *Registry) SetOnChange(fn func(table *Table, err error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// LoadDirectory overlays every YAML table in dir onto the base table, in
// file name order, and publishes the result.
func (r *Registry) LoadDirectory(dir string) error {
	r.mu.Lock()
	r.dir = dir
	r.mu.Unlock()

	return r.Reload()
}

// Reload rebuilds the snapshot from the base table and the configured
// directory. On failure the previous snapshot stays current.
func (r *Registry) Reload() error {
	r.mu.Lock()
	dir := r.dir
	validate := r.validate
	r.mu.Unlock()

	specs := []TableSpec{r.base}
	if dir != "" {
		dirSpecs, err := loadDirectorySpecs(dir)
		if err != nil {
			return err
		}
		specs = append(specs, dirSpecs...)
	}

	table, err := Build(specs...)
	if err != nil {
		return fmt.Errorf("building table: %w", err)
	}
	if validate != nil {
		if err := validate(table); err != nil {
			return fmt.Errorf("validating table: %w", err)
		}
	}

	r.current.Store(table)
	r.logger.Debug("Published unit table", slog.String("dir", dir), slog.Int("units", table.Len()))
	return nil
}

func loadDirectorySpecs(dir string) ([]TableSpec, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isTableFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	specs := make([]TableSpec, 0, len(names))
	var loadErrors []string
	for _, name := range names {
		spec, err := LoadSpecFile(filepath.Join(dir, name))
		if err != nil {
			loadErrors = append(loadErrors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		specs = append(specs, spec)
	}

	if len(loadErrors) > 0 {
		return nil, fmt.Errorf("errors loading tables: %s", strings.Join(loadErrors, "; "))
	}
	return specs, nil
}

func isTableFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Watch starts rebuilding the snapshot whenever a YAML file in the
// configured directory changes.
func (r *Registry) Watch() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dir == "" {
		return fmt.Errorf("no directory configured for watching")
	}
	if r.watcher != nil {
		return fmt.Errorf("already watching %s", r.dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(r.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching directory %s: %w", r.dir, err)
	}

	r.watcher = watcher
	r.stopChan = make(chan struct{})
	r.watchDone = make(chan struct{})
	go r.watchLoop(watcher, r.stopChan, r.watchDone)

	return nil
}

func (r *Registry) watchLoop(watcher *fsnotify.Watcher, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-stop:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !isTableFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.handleChange(event.Name, event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("Unit table watcher error", slog.String("error", err.Error()))
		}
	}
}

func (r *Registry) handleChange(path, op string) {
	err := r.Reload()
	if err != nil {
		r.logger.Warn("Rejected unit table change",
			slog.String("path", path),
			slog.String("op", op),
			slog.String("error", err.Error()))
	} else {
		r.logger.Info("Reloaded unit table", slog.String("path", path), slog.String("op", op))
	}

	r.mu.Lock()
	onChange := r.onChange
	r.mu.Unlock()
	if onChange != nil {
		onChange(r.Snapshot(), err)
	}
}

// StopWatch stops watching the directory and waits for the watch loop to exit.
func (r *Registry) StopWatch() {
	r.mu.Lock()
	watcher := r.watcher
	stop := r.stopChan
	done := r.watchDone
	r.watcher = nil
	r.stopChan = nil
	r.watchDone = nil
	r.mu.Unlock()

	if watcher == nil {
		return
	}
	close(stop)
	watcher.Close()
	<-done
}
