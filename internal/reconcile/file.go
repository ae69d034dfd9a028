package reconcile

import (
	"fmt"

	"xattrsync/internal/common"
	"xattrsync/internal/meta"
)

// FileView is a handle on one entry of a Directory. It holds no state of
// its own: every accessor reads the Directory's current in-memory record.
type FileView struct {
	dir  *Directory
	name string
}

// Name returns the entry name within its directory
func (f *FileView) Name() string {
	return f.name
}

// Path returns the entry's absolute path
func (f *FileView) Path() string {
	return f.dir.entryPath(f.name)
}

// Directory returns the owning directory
func (f *FileView) Directory() *Directory {
	return f.dir
}

// current is the live set; callers must not retain or mutate it.
func (f *FileView) current() meta.AttributeSet {
	return f.dir.record[f.name]
}

// Lookup returns the value for key and whether it is set
func (f *FileView) Lookup(key string) (string, bool) {
	v, ok := f.current()[key]
	return v, ok
}

// Get returns the value for key. When key is absent, def is returned if it
// holds a value, otherwise the error wraps common.ErrKeyNotFound.
func (f *FileView) Get(key string, def common.Optional[string]) (string, error) {
	if v, ok := f.Lookup(key); ok {
		return v, nil
	}
	if v, ok := def.Get(); ok {
		return v, nil
	}
	return "", fmt.Errorf("%w: %q on %s", common.ErrKeyNotFound, key, f.Path())
}

// Set stores key=value
func (f *FileView) Set(key, value string) error {
	return f.dir.Set(f.name, key, value)
}

// Remove deletes key
func (f *FileView) Remove(key string) error {
	return f.dir.Remove(f.name, key)
}

// Len returns the number of attributes
func (f *FileView) Len() int {
	return len(f.current())
}

// Keys returns the attribute keys in sorted order
func (f *FileView) Keys() []string {
	return f.current().Keys()
}

// Values returns the attribute values ordered by key
func (f *FileView) Values() []string {
	pairs := f.Items()
	values := make([]string, len(pairs))
	for i, p := range pairs {
		values[i] = p.Value
	}
	return values
}

// Items returns the key/value pairs sorted by key
func (f *FileView) Items() []meta.Pair {
	return f.current().Pairs()
}

// Copy returns a snapshot that is unaffected by later changes, and whose
// mutation does not affect stored state.
func (f *FileView) Copy() meta.AttributeSet {
	return f.current().Clone()
}
