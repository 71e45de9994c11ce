// Package watch turns filesystem changes in the package registry into
// "companion package updated" signals.
//
// A Watcher observes the registry directory and the companion's package
// directory. Creating the package directory, or creating, writing or
// renaming its manifest, schedules an Event. Bursts of changes inside the
// debounce window collapse into a single Event.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/paklaunch/paklaunch/internal/logging"
	"github.com/paklaunch/paklaunch/internal/registry"
)

// DefaultDebounce is used when no debounce window is configured.
const DefaultDebounce = 500 * time.Millisecond

// ErrStarted is returned by Start on a watcher that is already running.
var ErrStarted = errors.New("watcher already started")

// Event reports that the companion package was installed or replaced.
type Event struct {
	Package string
	// Path is the last file that changed before the event fired.
	Path string
	Op   fsnotify.Op
	Time time.Time
}

// Watcher emits Events for one companion package.
type Watcher struct {
	root     string
	pkg      string
	pkgDir   string
	manifest string
	debounce time.Duration
	log      logging.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	started bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window. Zero or negative keeps the default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(w *Watcher) {
		w.log = logging.OrNop(l)
	}
}

// New creates a watcher for packageName under the registry root.
func New(root, packageName string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	pkgDir := filepath.Join(root, packageName)
	w := &Watcher{
		root:     root,
		pkg:      packageName,
		pkgDir:   pkgDir,
		manifest: filepath.Join(pkgDir, registry.ManifestName),
		debounce: DefaultDebounce,
		log:      logging.Nop(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching and returns the event channel. The channel is closed
// and the underlying watcher released once ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil, ErrStarted
	}

	if err := os.MkdirAll(w.root, 0o750); err != nil {
		w.fsw.Close()
		return nil, fmt.Errorf("create registry directory: %w", err)
	}
	if err := w.fsw.Add(w.root); err != nil {
		w.fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.watchPackageDir()

	w.started = true
	out := make(chan Event)
	go w.run(ctx, out)

	w.log.Info("watching for companion updates", "package", w.pkg, "registry", w.root)
	return out, nil
}

// watchPackageDir adds the package directory if it exists. fsnotify drops
// the watch on removal, so this runs again whenever the directory reappears.
func (w *Watcher) watchPackageDir() {
	info, err := os.Stat(w.pkgDir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(w.pkgDir); err != nil {
		w.log.Warn("failed to watch package directory", "path", w.pkgDir, "error", err)
	}
}

func (w *Watcher) run(ctx context.Context, out chan<- Event) {
	defer close(out)
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending *Event
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if ev.Name == w.pkgDir {
				w.watchPackageDir()
			}
			w.log.Debug("registry change", "path", ev.Name, "op", ev.Op.String())
			pending = &Event{Package: w.pkg, Path: ev.Name, Op: ev.Op, Time: time.Now()}
			timer.Reset(w.debounce)
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", "error", err)

		case <-fire:
			fire = nil
			if pending == nil {
				continue
			}
			select {
			case out <- *pending:
			case <-ctx.Done():
				return
			}
			pending = nil
		}
	}
}

// relevant reports whether ev signals a new or replaced companion package.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	switch ev.Name {
	case w.pkgDir:
		return ev.Has(fsnotify.Create)
	case w.manifest:
		return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename)
	default:
		return false
	}
}
