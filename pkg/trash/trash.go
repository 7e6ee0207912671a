// Copyright 2025 walteh LLC
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

// Package trash moves files to and from the desktop trash.
//
// On unix systems other than macOS the freedesktop.org layout is used: a
// files/ directory holding trashed entries and an info/ directory holding one
// .trashinfo record per entry. Files on other devices go to the trash
// directory at the top of their mount. macOS supports everything but Restore,
// and other systems report ErrUnsupported.
package trash

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnsupported = errors.Base("trash operation unsupported on this platform")
	ErrCollision   = errors.Base("restore destination already exists")
	ErrNotFound    = errors.Base("no trashed item for path")
)

// 🗑️ Item is one trashed entry
type Item struct {
	// Name is the entry name inside the trash's files directory
	Name string
	// OriginalPath is where the entry lived before it was trashed, empty when unknown
	OriginalPath string
	DeletedAt    time.Time
	// Root is the trash directory holding the item
	Root string
}

// Trash is a handle on the home trash and, optionally, the per-device
// trashes at the top of other mounts
type Trash struct {
	home    string
	devices bool
}

// New returns a trash rooted at home. With devices set, files on other
// devices go to the trash of their mount and List covers those trashes too.
func New(home string, devices bool) *Trash {
	return &Trash{home: home, devices: devices}
}

// Default returns the current user's platform trash
func Default() *Trash {
	return New(defaultHome(), true)
}

// Home returns the home trash directory
func (t *Trash) Home() string {
	return t.home
}

// Find returns the most recently trashed item for each of paths
func (t *Trash) Find(paths []string) ([]Item, error) {
	items, err := t.List()
	if err != nil {
		return nil, err
	}

	latest := map[string]Item{}
	for _, item := range items {
		if prev, ok := latest[item.OriginalPath]; !ok || item.DeletedAt.After(prev.DeletedAt) {
			latest[item.OriginalPath] = item
		}
	}

	found := make([]Item, 0, len(paths))
	for _, path := range paths {
		item, ok := latest[path]
		if !ok {
			return nil, errors.Errorf("%s: %w", path, ErrNotFound)
		}
		found = append(found, item)
	}
	return found, nil
}
