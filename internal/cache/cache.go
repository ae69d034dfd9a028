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

// Package cache keeps reconciled directories alive across lookups.
//
// Design Principles:
// 1. Caller ownership - a cache is an explicit value, there is no process-wide instance
// 2. Reconcile once - a directory is reconciled on first access and reused afterwards
//
// The trade-off: changes made by another process (or directly to the xattrs)
// after a directory was first loaded are invisible until its entry is dropped.
package cache

import "os"

// Disabled controls whether cached directories are reused.
// Set via XATTRSYNC_CACHE=0 environment variable.
// When true, every lookup reconciles the directory again and nothing is stored.
//
// This is useful for debugging to rule out stale state.
var Disabled = os.Getenv("XATTRSYNC_CACHE") == "0"

