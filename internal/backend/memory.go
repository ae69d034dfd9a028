package backend

import (
	"fmt"
	"os"

	"xattrsync/internal/meta"
)

// Memory keeps attributes in a map keyed by path. Existence and symlink
// checks still go to the host filesystem through the os package, so paths
// must exist on disk: pairing Memory with an in-memory billy filesystem in
// reconcile.Options fails with os.ErrNotExist.
// Not safe for concurrent use.
type Memory struct {
	attrs map[string]meta.AttributeSet
	// Writes counts successful Set and Remove calls.
	Writes int
}

// NewMemory returns an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{attrs: make(map[string]meta.AttributeSet)}
}

// GetAll returns a copy of the attributes stored for path.
func (m *Memory) GetAll(path string) (meta.AttributeSet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return m.attrs[path].Clone(), nil
}

// Set writes key=value for path.
func (m *Memory) Set(path, key, value string) error {
	if err := refuseSymlink(path); err != nil {
		return err
	}
	if m.attrs[path] == nil {
		m.attrs[path] = make(meta.AttributeSet)
	}
	m.attrs[path][key] = value
	m.Writes++
	return nil
}

// Remove deletes key for path.
func (m *Memory) Remove(path, key string) error {
	if err := refuseSymlink(path); err != nil {
		return err
	}
	if _, ok := m.attrs[path][key]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrNoAttribute, key, path)
	}
	delete(m.attrs[path], key)
	if len(m.attrs[path]) == 0 {
		delete(m.attrs, path)
	}
	m.Writes++
	return nil
}

// Peek returns the stored attributes without touching the filesystem or the write counter.
func (m *Memory) Peek(path string) meta.AttributeSet {
	return m.attrs[path].Clone()
}
