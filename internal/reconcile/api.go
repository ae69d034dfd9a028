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

package reconcile

import (
	"xattrsync/internal/common"
	"xattrsync/internal/meta"
	"xattrsync/internal/sidecar"
)

// The functions below open a fresh Directory on every call, so each one
// runs a full reconciliation pass. Use cache.Dirs to amortize that cost.

// Fix reconciles dir.
func Fix(dir string, opts Options) error {
	_, err := Open(dir, opts)
	return err
}

// Load returns a view of the entry at path after reconciling its directory.
func Load(path string, opts Options) (*FileView, error) {
	dir, name, err := common.SplitEntry(path)
	if err != nil {
		return nil, err
	}
	d, err := Open(dir, opts)
	if err != nil {
		return nil, err
	}
	return d.File(name)
}

// SetAttr sets key=value on path
func SetAttr(path, key, value string, opts Options) error {
	f, err := Load(path, opts)
	if err != nil {
		return err
	}
	return f.Set(key, value)
}

// GetAttr returns the value of key on path, or def when absent
func GetAttr(path, key string, def common.Optional[string], opts Options) (string, error) {
	f, err := Load(path, opts)
	if err != nil {
		return "", err
	}
	return f.Get(key, def)
}

// RemoveAttr deletes key from path
func RemoveAttr(path, key string, opts Options) error {
	f, err := Load(path, opts)
	if err != nil {
		return err
	}
	return f.Remove(key)
}

// GetAll returns a copy of every attribute of path
func GetAll(path string, opts Options) (meta.AttributeSet, error) {
	f, err := Load(path, opts)
	if err != nil {
		return nil, err
	}
	return f.Copy(), nil
}

// StoredView returns the record persisted for dir without reconciling it or
// touching the backend. A directory without a sidecar yields an empty record.
// Changes to the result have no effect.
func StoredView(dir string, opts Options) (meta.Record, error) {
	opts = opts.withDefaults()
	abs, err := common.AbsDir(dir)
	if err != nil {
		return nil, err
	}
	if err := checkDir(opts.FS, abs); err != nil {
		return nil, err
	}
	return sidecar.NewStore(opts.FS, opts.SidecarName).Load(abs)
}
