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

// Package sidecar persists one attribute Record per directory as an indented
// JSON file stored alongside the entries it describes.
package sidecar

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"xattrsync/internal/common"
	"xattrsync/internal/meta"
)

// DefaultName is the reserved sidecar filename.
const DefaultName = ".xattr.json"

const tempSuffix = ".tmp"

// Store loads and saves sidecar records on a filesystem.
type Store struct {
	fs   billy.Filesystem
	name string
}

// NewStore creates a store writing sidecars called name (DefaultName if empty).
// A nil fs selects the host filesystem; paths passed to the store must then be absolute.
func NewStore(fs billy.Filesystem, name string) *Store {
	if fs == nil {
		fs = osfs.New("/")
	}
	if name == "" {
		name = DefaultName
	}
	return &Store{fs: fs, name: name}
}

// Name returns the sidecar filename
func (s *Store) Name() string {
	return s.name
}

// Path returns the sidecar path for dir
func (s *Store) Path(dir string) string {
	return filepath.Join(dir, s.name)
}

// IsSidecarEntry reports whether a directory entry is the sidecar file
// or one of its in-flight temporaries.
func (s *Store) IsSidecarEntry(entry string) bool {
	if entry == s.name {
		return true
	}
	return strings.HasPrefix(entry, s.name+".") && strings.HasSuffix(entry, tempSuffix)
}

// Exists reports whether dir currently has a sidecar file
func (s *Store) Exists(dir string) (bool, error) {
	_, err := s.fs.Stat(s.Path(dir))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Load reads the record stored for dir. A missing sidecar yields an empty
// record; unparseable content is an error wrapping common.ErrMalformedSidecar.
func (s *Store) Load(dir string) (meta.Record, error) {
	path := s.Path(dir)
	f, err := s.fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return meta.Record{}, nil
		}
		return nil, fmt.Errorf("failed to open sidecar: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read sidecar %s: %w", path, err)
	}

	log.Debugf("[Sidecar] Load: %s (%d bytes)", path, len(data))
	var rec meta.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrMalformedSidecar, path, err)
	}
	if rec == nil {
		rec = meta.Record{}
	}
	for name, attrs := range rec {
		if len(attrs) == 0 {
			log.Debugf("[Sidecar] Load: ignoring empty entry %q in %s", name, path)
			delete(rec, name)
		}
	}
	return rec, nil
}

// Save writes rec as the sidecar for dir, or removes the sidecar when rec is empty.
// The content is written to a temporary file and renamed into place.
func (s *Store) Save(dir string, rec meta.Record) error {
	path := s.Path(dir)
	if len(rec) == 0 {
		exists, err := s.Exists(dir)
		if err != nil || !exists {
			return err
		}
		if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove sidecar: %w", err)
		}
		log.Debugf("[Sidecar] Save: removed %s (no tracked entries)", path)
		return nil
	}

	if err := checkLossless(rec); err != nil {
		return fmt.Errorf("refusing to write sidecar %s: %w", path, err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sidecar: %w", err)
	}
	data = append(data, '\n')

	tmpPath := path + "." + uuid.New().String() + tempSuffix
	f, err := s.fs.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create sidecar: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := f.Close(); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to write sidecar: %w", err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		s.fs.Remove(tmpPath)
		return fmt.Errorf("failed to replace sidecar: %w", err)
	}

	log.Debugf("[Sidecar] Save: wrote %d entries to %s", len(rec), path)
	return nil
}

// checkLossless rejects records that encoding/json would alter on write.
func checkLossless(rec meta.Record) error {
	for name, attrs := range rec {
		if !utf8.ValidString(name) {
			return fmt.Errorf("%w: entry name %q is not valid UTF-8", common.ErrInvalidPath, name)
		}
		for key, value := range attrs {
			if err := common.ValidateKey(key); err != nil {
				return err
			}
			if err := common.ValidateValue(value); err != nil {
				return err
			}
		}
	}
	return nil
}
