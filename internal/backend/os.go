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

package backend

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/xattr"

	"xattrsync/internal/meta"
)

// OS stores attributes as real extended attributes.
type OS struct {
	namespace string
}

// NewOS returns a backend for the given namespace (e.g. "user").
// An empty namespace selects DefaultNamespace.
func NewOS(namespace string) *OS {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &OS{namespace: strings.TrimSuffix(namespace, ".")}
}

// Namespace returns the namespace without trailing dot
func (b *OS) Namespace() string {
	return b.namespace
}

func (b *OS) attrName(key string) string {
	return b.namespace + "." + key
}

// GetAll lists the namespace on path and reads each value.
func (b *OS) GetAll(path string) (meta.AttributeSet, error) {
	names, err := xattr.List(path)
	if err != nil {
		return nil, fmt.Errorf("list xattrs of %s: %w", path, err)
	}

	prefix := b.namespace + "."
	attrs := make(meta.AttributeSet, len(names))
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		value, err := xattr.Get(path, name)
		if err != nil {
			// Removed between list and get
			if errors.Is(err, xattr.ENOATTR) {
				continue
			}
			return nil, fmt.Errorf("get xattr %s of %s: %w", name, path, err)
		}
		attrs[strings.TrimPrefix(name, prefix)] = string(value)
	}
	return attrs, nil
}

// Set writes key=value on path.
func (b *OS) Set(path, key, value string) error {
	if err := refuseSymlink(path); err != nil {
		return err
	}
	if err := xattr.Set(path, b.attrName(key), []byte(value)); err != nil {
		return fmt.Errorf("set xattr %s of %s: %w", key, path, err)
	}
	return nil
}

// Remove deletes key from path.
func (b *OS) Remove(path, key string) error {
	if err := refuseSymlink(path); err != nil {
		return err
	}
	if err := xattr.Remove(path, b.attrName(key)); err != nil {
		if errors.Is(err, xattr.ENOATTR) {
			return fmt.Errorf("%w: %s on %s", ErrNoAttribute, key, path)
		}
		return fmt.Errorf("remove xattr %s of %s: %w", key, path, err)
	}
	return nil
}

// refuseSymlink keeps writes from silently following a link to its target.
func refuseSymlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("%w: %s", ErrSymlink, path)
	}
	return nil
}
