// Package backend provides extended attribute access for a single namespace.
//
// Currently provides:
// - OS: real extended attributes through github.com/pkg/xattr
// - Memory: an in-process map, for tests and dry runs
//
// Neither implementation may be used on a symlink for writes; both fail with
// ErrSymlink so callers can keep symlink metadata elsewhere.
package backend

import (
	"errors"

	"xattrsync/internal/meta"
)

// DefaultNamespace is the xattr namespace reserved for stored metadata.
const DefaultNamespace = "user"

var (
	// ErrNoAttribute is returned by Remove when the key is not set on the path.
	ErrNoAttribute = errors.New("no such attribute")
	// ErrSymlink is returned by Set and Remove when the path is a symbolic link.
	ErrSymlink = errors.New("extended attributes not supported on symlinks")
)

// Backend reads and writes the attributes of one namespace on a filesystem path.
type Backend interface {
	// GetAll returns every attribute of the namespace, with the namespace prefix stripped.
	GetAll(path string) (meta.AttributeSet, error)
	// Set writes key=value.
	Set(path, key, value string) error
	// Remove deletes key, failing with ErrNoAttribute when it is absent.
	Remove(path, key string) error
}
