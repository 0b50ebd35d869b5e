// Package icon maps icon names from configuration to concrete files on
// disk. Resolutions (including misses) are memoized for the process
// lifetime; concurrent lookups for the same unresolved name collapse into
// a single filesystem search.
package icon

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var searchExts = []string{"", ".png", ".svg", ".xpm"}

// Snapshot is the optional disk persistence behind the in-memory cache.
// *store.IconStore satisfies it.
type Snapshot interface {
	Get(ctx context.Context, name string) (path string, found bool, ok bool, err error)
	Put(ctx context.Context, name, path string, found bool) error
	Clear(ctx context.Context) error
}

type resolution struct {
	path  string
	found bool
}

// Resolver resolves icon names against an ordered list of directories.
type Resolver struct {
	dirs     []string
	snapshot Snapshot
	log      *zap.Logger

	mu    sync.RWMutex
	cache map[string]resolution

	group singleflight.Group

	// searchFn is swapped in tests to count underlying searches.
	searchFn func(name string) (string, bool)
}

// NewResolver builds a resolver over dirs, first match winning. snapshot
// may be nil to disable persistence.
func NewResolver(dirs []string, snapshot Snapshot, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		dirs:     dirs,
		snapshot: snapshot,
		log:      log,
		cache:    make(map[string]resolution),
	}
	r.searchFn = r.searchDirs
	return r
}

// DefaultDirs returns the XDG icon search path: icons/ and pixmaps/ under
// every data directory, data home last so user icons win only when system
// dirs miss (matching the configured order semantics, not theme inheritance).
func DefaultDirs() []string {
	dataDirs := os.Getenv("XDG_DATA_DIRS")
	if dataDirs == "" {
		dataDirs = "/usr/local/share:/usr/share"
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	var out []string
	for _, d := range append(filepath.SplitList(dataDirs), dataHome) {
		if d == "" {
			continue
		}
		out = append(out, filepath.Join(d, "icons"), filepath.Join(d, "pixmaps"))
	}
	return out
}

// Resolve maps an icon name or path to a file. An absolute path that exists
// passes straight through. Every outcome, including "not found", is cached
// under the original input string.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	if name == "" {
		return "", false
	}
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, true
		}
		return "", false
	}

	r.mu.RLock()
	res, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return res.path, res.found
	}

	// Collapse concurrent lookups for the same key; every waiter gets the
	// one result, which is already cached by the time Do returns.
	v, _, _ := r.group.Do(name, func() (any, error) {
		// Re-check under the flight: a caller that lost the race after a
		// completed flight must not trigger a second search.
		r.mu.RLock()
		res, ok := r.cache[name]
		r.mu.RUnlock()
		if ok {
			return res, nil
		}
		if res, ok := r.fromSnapshot(ctx, name); ok {
			r.remember(ctx, name, res, false)
			return res, nil
		}
		path, found := r.searchFn(name)
		res = resolution{path: path, found: found}
		r.remember(ctx, name, res, true)
		return res, nil
	})
	res = v.(resolution)
	return res.path, res.found
}

func (r *Resolver) fromSnapshot(ctx context.Context, name string) (resolution, bool) {
	if r.snapshot == nil {
		return resolution{}, false
	}
	path, found, ok, err := r.snapshot.Get(ctx, name)
	if err != nil {
		r.log.Warn("icon snapshot read failed", zap.String("name", name), zap.Error(err))
		return resolution{}, false
	}
	if !ok {
		return resolution{}, false
	}
	// A stale positive snapshot pointing at a removed file falls back to a
	// fresh search.
	if found {
		if _, err := os.Stat(path); err != nil {
			return resolution{}, false
		}
	}
	return resolution{path: path, found: found}, true
}

func (r *Resolver) remember(ctx context.Context, name string, res resolution, persist bool) {
	r.mu.Lock()
	r.cache[name] = res
	r.mu.Unlock()
	if persist && r.snapshot != nil {
		if err := r.snapshot.Put(ctx, name, res.path, res.found); err != nil {
			r.log.Warn("icon snapshot write failed", zap.String("name", name), zap.Error(err))
		}
	}
}

// Refresh drops the whole cache (memory and snapshot). Resolution is not
// re-triggered eagerly; later lookups repopulate lazily.
func (r *Resolver) Refresh(ctx context.Context) {
	r.mu.Lock()
	r.cache = make(map[string]resolution)
	r.mu.Unlock()
	if r.snapshot != nil {
		if err := r.snapshot.Clear(ctx); err != nil {
			r.log.Warn("icon snapshot clear failed", zap.Error(err))
		}
	}
}

// searchDirs walks the configured directories in order; the first directory
// containing any match for the name decides, preferring larger renditions
// within that directory.
func (r *Resolver) searchDirs(name string) (string, bool) {
	for _, dir := range r.dirs {
		if path, ok := searchDir(dir, name); ok {
			return path, true
		}
	}
	return "", false
}

func searchDir(dir, name string) (string, bool) {
	best := ""
	bestSize := -1
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		base := d.Name()
		match := false
		for _, ext := range searchExts {
			if base == name+ext {
				match = true
				break
			}
		}
		if !match {
			return nil
		}
		if size := renditionSize(path); size > bestSize {
			best, bestSize = path, size
		}
		return nil
	})
	return best, best != ""
}

// renditionSize extracts the pixel size from a theme path component like
// "48x48"; "scalable" renditions count as large.
func renditionSize(path string) int {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == "scalable" {
			return 512
		}
		if w, _, ok := strings.Cut(part, "x"); ok {
			if n, err := strconv.Atoi(w); err == nil {
				return n
			}
		}
	}
	return 0
}
