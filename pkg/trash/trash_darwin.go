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

//go:build darwin

package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/adrg/xdg"
	"gitlab.com/tozd/go/errors"
)

func defaultHome() string {
	return filepath.Join(xdg.Home, ".Trash")
}

// Delete moves path into the trash under a free name
func (t *Trash) Delete(path string) (Item, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return Item{}, errors.Errorf("resolving %s: %w", path, err)
	}
	if err := os.MkdirAll(t.home, 0o700); err != nil {
		return Item{}, errors.Errorf("creating trash directory: %w", err)
	}

	base := filepath.Base(path)
	name := base
	for n := 2; ; n++ {
		if _, err := os.Lstat(filepath.Join(t.home, name)); err != nil {
			break
		}
		name = fmt.Sprintf("%s %d", base, n)
	}

	if _, err := os.Lstat(path); err != nil {
		return Item{}, errors.Errorf("trashing %s: %w", path, err)
	}
	if err := os.Rename(path, filepath.Join(t.home, name)); err != nil {
		return Item{}, errors.Errorf("moving %s to trash: %w", path, err)
	}
	return Item{Name: name, OriginalPath: path, DeletedAt: time.Now(), Root: t.home}, nil
}

// List returns the trash entries. Original paths are not recorded.
func (t *Trash) List() ([]Item, error) {
	entries, err := os.ReadDir(t.home)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Errorf("listing trash: %w", err)
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if entry.Name() == ".DS_Store" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, errors.Errorf("reading metadata of %s: %w", entry.Name(), err)
		}
		items = append(items, Item{Name: entry.Name(), DeletedAt: info.ModTime(), Root: t.home})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DeletedAt.Before(items[j].DeletedAt)
	})
	return items, nil
}

// Restore is not available, the trash keeps no record of original paths
func (t *Trash) Restore(item Item) (string, error) {
	return "", errors.Errorf("restoring %s: %w", item.Name, ErrUnsupported)
}

// Purge permanently removes item from the trash
func (t *Trash) Purge(item Item) error {
	if err := os.RemoveAll(filepath.Join(item.Root, item.Name)); err != nil {
		return errors.Errorf("purging %s: %w", item.Name, err)
	}
	return nil
}
