package cache

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"xattrsync/internal/common"
	"xattrsync/internal/reconcile"
)

// Dirs maps absolute directory paths to reconciled directories.
//
// Not safe for concurrent use: callers sharing a Dirs between goroutines
// must serialize access themselves.
type Dirs struct {
	opts     reconcile.Options
	entries  map[string]*reconcile.Directory
	disabled bool
	hits     int
	misses   int
}

// NewDirs creates an empty cache whose directories are opened with opts.
func NewDirs(opts reconcile.Options) *Dirs {
	return &Dirs{
		opts:     opts,
		entries:  make(map[string]*reconcile.Directory, 16),
		disabled: Disabled,
	}
}

// Directory returns the reconciled directory for dir, opening it on first use.
func (c *Dirs) Directory(dir string) (*reconcile.Directory, error) {
	abs, err := common.AbsDir(dir)
	if err != nil {
		return nil, err
	}

	if d, ok := c.Lookup(abs); ok {
		c.hits++
		log.Tracef("[Cache] hit %s", abs)
		return d, nil
	}

	c.misses++
	log.Debugf("[Cache] miss %s, reconciling", abs)
	d, err := reconcile.Open(abs, c.opts)
	if err != nil {
		return nil, err
	}
	c.Insert(d)
	return d, nil
}

// File returns a view of the entry at path, opening its directory if needed.
func (c *Dirs) File(path string) (*reconcile.FileView, error) {
	dir, name, err := common.SplitEntry(path)
	if err != nil {
		return nil, err
	}
	d, err := c.Directory(dir)
	if err != nil {
		return nil, err
	}
	return d.File(name)
}

// Lookup returns the cached directory for dir without opening it.
// Always misses when caching is disabled.
func (c *Dirs) Lookup(dir string) (*reconcile.Directory, bool) {
	if c.disabled {
		return nil, false
	}
	abs, err := common.AbsDir(dir)
	if err != nil {
		return nil, false
	}
	d, ok := c.entries[abs]
	return d, ok
}

// Insert stores d under its own path, replacing any previous entry.
// No-op if caching is disabled.
func (c *Dirs) Insert(d *reconcile.Directory) {
	if c.disabled {
		return
	}
	c.entries[d.Path()] = d
}

// Drop removes dir so that the next access reconciles it again.
func (c *Dirs) Drop(dir string) {
	abs, err := common.AbsDir(dir)
	if err != nil {
		return
	}
	delete(c.entries, abs)
}

// DropPrefix removes dir and every cached directory below it.
func (c *Dirs) DropPrefix(dir string) {
	abs, err := common.AbsDir(dir)
	if err != nil {
		return
	}

	prefix := abs
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	for path := range c.entries {
		if path == abs || strings.HasPrefix(path, prefix) {
			delete(c.entries, path)
		}
	}
}

// Invalidate clears all entries from the cache.
func (c *Dirs) Invalidate() {
	if len(c.entries) > 0 {
		c.entries = make(map[string]*reconcile.Directory, 16)
	}
}

// Len returns the current number of cached directories.
func (c *Dirs) Len() int {
	return len(c.entries)
}

// DirsStats reports cache usage.
type DirsStats struct {
	Size   int
	Hits   int
	Misses int
}

// Stats returns current cache statistics.
func (c *Dirs) Stats() DirsStats {
	return DirsStats{
		Size:   len(c.entries),
		Hits:   c.hits,
		Misses: c.misses,
	}
}
