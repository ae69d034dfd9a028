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

package common

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// AbsDir returns the cleaned absolute form of a directory path
func AbsDir(dir string) (string, error) {
	if dir == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, dir, err)
	}
	return abs, nil
}

// SplitEntry splits a path into its absolute parent directory and the entry name
// within it. The filesystem root and paths ending in "." or ".." have no
// parent entry and are rejected.
func SplitEntry(path string) (dir, name string, err error) {
	abs, err := AbsDir(path)
	if err != nil {
		return "", "", err
	}
	dir, name = filepath.Split(abs)
	if name == "" || name == "." || name == ".." {
		return "", "", fmt.Errorf("%w: %s has no parent entry", ErrInvalidPath, path)
	}
	return filepath.Clean(dir), name, nil
}

// JoinEntry joins a directory and an entry name
func JoinEntry(dir, name string) string {
	return filepath.Join(dir, name)
}

// ValidateKey rejects attribute keys that cannot be stored as an extended attribute name
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: %q contains NUL", ErrInvalidKey, key)
	}
	if !utf8.ValidString(key) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidKey, key)
	}
	return nil
}

// ValidateValue rejects values the sidecar cannot store without loss.
// JSON strings are UTF-8, so any other byte sequence would be rewritten.
func ValidateValue(value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidValue, value)
	}
	return nil
}
