// Copyright 2024 xattrsync Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package reconcile keeps a directory's sidecar record and the extended
// attributes of its entries in agreement.
//
// A Directory is opened once per directory path. Opening runs a single full
// reconciliation pass:
//  1. Symlinks cannot carry extended attributes, so their sidecar entries are
//     copied through untouched and the backend is never consulted for them.
//  2. For every other entry, values recovered from the sidecar are forced back
//     into the backend where they differ (the sidecar wins), then the complete
//     backend set is read back and becomes the entry's record.
//  3. Sidecar entries for names no longer in the directory are dropped.
//
// Only UTF-8 text can round-trip through the sidecar. Backend values, keys and
// entry names that are not valid UTF-8 are left alone in the backend and kept
// out of the record, with a warning.
//
// After that, Set and Remove update both stores on every call. Changes made
// by other processes after Open are not observed.
//
// A Directory is not safe for concurrent use.
package reconcile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	log "github.com/sirupsen/logrus"

	"xattrsync/internal/backend"
	"xattrsync/internal/common"
	"xattrsync/internal/meta"
	"xattrsync/internal/sidecar"
)

// Options selects the collaborators a Directory works with.
type Options struct {
	// FS is used for listings, symlink checks and sidecar I/O. Defaults to the host filesystem.
	FS billy.Filesystem
	// Backend stores attributes of non-symlink entries. Defaults to OS xattrs in the user namespace.
	Backend backend.Backend
	// SidecarName overrides the sidecar filename.
	SidecarName string
}

func (o Options) withDefaults() Options {
	if o.FS == nil {
		o.FS = osfs.New("/")
	}
	if o.Backend == nil {
		o.Backend = backend.NewOS(backend.DefaultNamespace)
	}
	if o.SidecarName == "" {
		o.SidecarName = sidecar.DefaultName
	}
	return o
}

// Directory owns the reconciled attribute record of one directory.
type Directory struct {
	path    string
	fs      billy.Filesystem
	backend backend.Backend
	store   *sidecar.Store
	record  meta.Record
}

// Open loads the sidecar of dir and reconciles it against the backend.
func Open(dir string, opts Options) (*Directory, error) {
	opts = opts.withDefaults()

	abs, err := common.AbsDir(dir)
	if err != nil {
		return nil, err
	}
	if err := checkDir(opts.FS, abs); err != nil {
		return nil, err
	}

	d := &Directory{
		path:    abs,
		fs:      opts.FS,
		backend: opts.Backend,
		store:   sidecar.NewStore(opts.FS, opts.SidecarName),
	}
	d.record, err = d.store.Load(abs)
	if err != nil {
		return nil, err
	}
	if err := d.reconcile(); err != nil {
		return nil, fmt.Errorf("failed to reconcile %s: %w", abs, err)
	}
	return d, nil
}

func checkDir(fs billy.Filesystem, dir string) error {
	info, err := fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", common.ErrNotFound, dir)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", common.ErrNotDir, dir)
	}
	return nil
}

func (d *Directory) String() string {
	return "<Directory " + d.path + ">"
}

// Path returns the absolute directory path
func (d *Directory) Path() string {
	return d.path
}

// SidecarPath returns the path of the directory's sidecar file
func (d *Directory) SidecarPath() string {
	return d.store.Path(d.path)
}

// Record returns a copy of the current in-memory record
func (d *Directory) Record() meta.Record {
	return d.record.Clone()
}

// Attributes returns a copy of the attributes recorded for filename
func (d *Directory) Attributes(filename string) meta.AttributeSet {
	return d.record[filename].Clone()
}

func (d *Directory) entryPath(filename string) string {
	return common.JoinEntry(d.path, filename)
}

// storable drops the pairs of attrs that the sidecar cannot hold unchanged.
func (d *Directory) storable(path string, attrs meta.AttributeSet) meta.AttributeSet {
	for key, value := range attrs {
		if err := common.ValidateKey(key); err != nil {
			log.Warnf("[Reconcile] %s: not recording xattr: %v", path, err)
			delete(attrs, key)
			continue
		}
		if err := common.ValidateValue(value); err != nil {
			log.Warnf("[Reconcile] %s: not recording xattr %q: %v", path, key, err)
			delete(attrs, key)
		}
	}
	return attrs
}

// reconcile runs the full pass described in the package doc.
func (d *Directory) reconcile() error {
	log.Debugf("[Reconcile] %s: fixing records", d.path)

	infos, err := d.fs.ReadDir(d.path)
	if err != nil {
		return fmt.Errorf("failed to list directory: %w", err)
	}

	prev := d.record
	next := make(meta.Record, len(prev))
	listed := meta.NewStringSet()

	for _, info := range infos {
		name := info.Name()
		if d.store.IsSidecarEntry(name) {
			continue
		}
		if !utf8.ValidString(name) {
			log.Warnf("[Reconcile] %s: skipping entry %q, name is not valid UTF-8", d.path, name)
			continue
		}
		listed.Add(name)

		if info.Mode()&os.ModeSymlink != 0 {
			if attrs, ok := prev[name]; ok {
				next[name] = attrs.Clone()
			}
			continue
		}

		path := d.entryPath(name)
		if recovered, ok := prev[name]; ok {
			if err := d.restore(path, recovered); err != nil {
				return err
			}
		}
		attrs, err := d.backend.GetAll(path)
		if err != nil {
			return err
		}
		log.Tracef("[Reconcile] %s: backend attrs %v", path, attrs)
		next.Put(name, d.storable(path, attrs))
	}

	for _, name := range prev.Names() {
		if !listed.Has(name) {
			log.Debugf("[Reconcile] Dropping metadata for missing file %s: %v", d.entryPath(name), prev[name])
		}
	}

	if !next.Equal(prev) {
		log.Debugf("[Reconcile] Saving new metadata to %s: %v", d.SidecarPath(), next)
		if err := d.store.Save(d.path, next); err != nil {
			return err
		}
	}
	d.record = next
	return nil
}

// restore writes every recovered value that the backend lacks or disagrees with.
func (d *Directory) restore(path string, recovered meta.AttributeSet) error {
	live, err := d.backend.GetAll(path)
	if err != nil {
		return err
	}
	for _, key := range recovered.Keys() {
		want := recovered[key]
		got, ok := live[key]
		if ok && got == want {
			continue
		}
		if ok {
			log.Infof("File %s has xattr %q=%s, but serialized data has %s - using serialized data", path, key, got, want)
		} else {
			log.Infof("File %s is missing xattr %q, restoring serialized value %s", path, key, want)
		}
		if err := d.backend.Set(path, key, want); err != nil {
			return err
		}
	}
	return nil
}

// lstat resolves filename within the directory without following links.
func (d *Directory) lstat(filename string) (os.FileInfo, error) {
	if filename == "" || strings.ContainsRune(filename, filepath.Separator) {
		return nil, fmt.Errorf("%w: %q is not a directory entry", common.ErrInvalidPath, filename)
	}
	if d.store.IsSidecarEntry(filename) {
		return nil, fmt.Errorf("%w: %q is reserved", common.ErrInvalidPath, filename)
	}
	if !utf8.ValidString(filename) {
		return nil, fmt.Errorf("%w: %q is not valid UTF-8", common.ErrInvalidPath, filename)
	}
	info, err := d.fs.Lstat(d.entryPath(filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrNotFound, d.entryPath(filename))
		}
		return nil, err
	}
	return info, nil
}

func (d *Directory) isSymlink(filename string) (bool, error) {
	info, err := d.lstat(filename)
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeSymlink != 0, nil
}

// resync replaces filename's record with the complete backend set.
func (d *Directory) resync(filename string) error {
	path := d.entryPath(filename)
	attrs, err := d.backend.GetAll(path)
	if err != nil {
		return err
	}
	d.record.Put(filename, d.storable(path, attrs))
	return nil
}

// Set stores key=value for filename and persists the record.
func (d *Directory) Set(filename, key, value string) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}
	if err := common.ValidateValue(value); err != nil {
		return err
	}
	link, err := d.isSymlink(filename)
	if err != nil {
		return err
	}

	path := d.entryPath(filename)
	log.Infof("Setting %s=%s (%s)", key, value, path)
	if link {
		attrs := d.record[filename]
		if attrs == nil {
			attrs = make(meta.AttributeSet)
			d.record[filename] = attrs
		}
		attrs[key] = value
	} else {
		log.Debugf("[Reconcile] Setting xattr %s=%s (%s)", key, value, path)
		if err := d.backend.Set(path, key, value); err != nil {
			return err
		}
		if err := d.resync(filename); err != nil {
			return err
		}
	}
	return d.save()
}

// Remove deletes key from filename and persists the record. A missing key
// fails with common.ErrKeyNotFound whichever store holds the entry.
func (d *Directory) Remove(filename, key string) error {
	if err := common.ValidateKey(key); err != nil {
		return err
	}
	link, err := d.isSymlink(filename)
	if err != nil {
		return err
	}

	path := d.entryPath(filename)
	log.Infof("Removing %s (%s)", key, path)
	if link {
		attrs := d.record[filename]
		if _, ok := attrs[key]; !ok {
			return fmt.Errorf("%w: %q on %s", common.ErrKeyNotFound, key, path)
		}
		delete(attrs, key)
		if len(attrs) == 0 {
			delete(d.record, filename)
		}
	} else {
		if err := d.backend.Remove(path, key); err != nil {
			if errors.Is(err, backend.ErrNoAttribute) {
				return fmt.Errorf("%w: %q on %s", common.ErrKeyNotFound, key, path)
			}
			return err
		}
		if err := d.resync(filename); err != nil {
			return err
		}
	}
	return d.save()
}

func (d *Directory) save() error {
	if err := d.store.Save(d.path, d.record); err != nil {
		return err
	}
	log.Debugf("[Reconcile] Saved serialized xattrs for %s", d.path)
	return nil
}

// File returns a view of filename's attributes. The entry must exist.
func (d *Directory) File(filename string) (*FileView, error) {
	if _, err := d.lstat(filename); err != nil {
		return nil, err
	}
	return &FileView{dir: d, name: filename}, nil
}
