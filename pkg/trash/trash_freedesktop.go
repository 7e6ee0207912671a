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

//go:build unix && !darwin

package trash

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/shirou/gopsutil/v3/disk"
	"gitlab.com/tozd/go/errors"
)

func defaultHome() string {
	return filepath.Join(xdg.DataHome, "Trash")
}

// Delete moves path into the trash of its device and records where it came from
func (t *Trash) Delete(path string) (Item, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return Item{}, errors.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Lstat(path); err != nil {
		return Item{}, errors.Errorf("trashing %s: %w", path, err)
	}

	root, top, err := t.rootFor(path)
	if err != nil {
		return Item{}, err
	}
	if err := ensureRoot(root); err != nil {
		return Item{}, err
	}

	// paths in per-device trashes are stored relative to the mount
	recorded := path
	if top != "" {
		if rel, err := filepath.Rel(top, path); err == nil {
			recorded = rel
		}
	}

	now := time.Now().Truncate(time.Second)
	name, err := reserve(root, filepath.Base(path), info{path: recorded, deletedAt: now})
	if err != nil {
		return Item{}, err
	}

	if err := os.Rename(path, filepath.Join(root, "files", name)); err != nil {
		_ = os.Remove(infoPath(root, name))
		return Item{}, errors.Errorf("moving %s to trash: %w", path, err)
	}

	return Item{Name: name, OriginalPath: path, DeletedAt: now, Root: root}, nil
}

// List returns the items of the home trash and every per-device trash
func (t *Trash) List() ([]Item, error) {
	var items []Item
	for _, root := range t.roots() {
		found, err := listRoot(root)
		if err != nil {
			return nil, err
		}
		items = append(items, found...)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].DeletedAt.Before(items[j].DeletedAt)
	})
	return items, nil
}

// Restore moves item back to its original path, never overwriting
func (t *Trash) Restore(item Item) (string, error) {
	if item.OriginalPath == "" {
		return "", errors.Errorf("%s: original path unknown", item.Name)
	}
	if _, err := os.Lstat(item.OriginalPath); err == nil {
		return "", errors.Errorf("%s: %w", item.OriginalPath, ErrCollision)
	}
	if err := os.MkdirAll(filepath.Dir(item.OriginalPath), 0o755); err != nil {
		return "", errors.Errorf("recreating parent of %s: %w", item.OriginalPath, err)
	}
	if err := os.Rename(filepath.Join(item.Root, "files", item.Name), item.OriginalPath); err != nil {
		return "", errors.Errorf("restoring %s: %w", item.OriginalPath, err)
	}
	if err := os.Remove(infoPath(item.Root, item.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", errors.Errorf("removing trash info of %s: %w", item.Name, err)
	}
	return item.OriginalPath, nil
}

// Purge permanently removes item from the trash
func (t *Trash) Purge(item Item) error {
	if err := os.RemoveAll(filepath.Join(item.Root, "files", item.Name)); err != nil {
		return errors.Errorf("purging %s: %w", item.Name, err)
	}
	if err := os.Remove(infoPath(item.Root, item.Name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Errorf("removing trash info of %s: %w", item.Name, err)
	}
	return nil
}

func infoPath(root, name string) string {
	return filepath.Join(root, "info", name+infoExt)
}

func ensureRoot(root string) error {
	for _, dir := range []string{"files", "info"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o700); err != nil {
			return errors.Errorf("creating trash directory: %w", err)
		}
	}
	return nil
}

// reserve claims a free entry name by creating its info file exclusively
func reserve(root, base string, record info) (string, error) {
	for n := 1; ; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s.%d", base, n)
		}
		f, err := os.OpenFile(infoPath(root, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", errors.Errorf("creating trash info: %w", err)
		}
		if _, err := f.WriteString(record.encode()); err != nil {
			f.Close()
			_ = os.Remove(f.Name())
			return "", errors.Errorf("writing trash info: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", errors.Errorf("closing trash info: %w", err)
		}
		return name, nil
	}
}

func listRoot(root string) ([]Item, error) {
	entries, err := os.ReadDir(filepath.Join(root, "info"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Errorf("listing trash %s: %w", root, err)
	}

	top := topOf(root)
	var items []Item
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), infoExt)
		if !ok || entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(root, "info", entry.Name()))
		if err != nil {
			return nil, errors.Errorf("opening trash info: %w", err)
		}
		record, err := parseInfo(f)
		f.Close()
		if err != nil {
			return nil, errors.Errorf("%s: %w", entry.Name(), err)
		}

		original := record.path
		if !filepath.IsAbs(original) && top != "" {
			original = filepath.Join(top, original)
		}
		items = append(items, Item{Name: name, OriginalPath: original, DeletedAt: record.deletedAt, Root: root})
	}
	return items, nil
}

// rootFor picks the trash for path: the home trash on the same device,
// otherwise the per-device trash at the top of path's mount.
func (t *Trash) rootFor(path string) (root, top string, err error) {
	if !t.devices {
		return t.home, "", nil
	}
	pathDev, err := device(filepath.Dir(path))
	if err != nil {
		return "", "", err
	}
	homeDev, err := device(existingAncestor(t.home))
	if err != nil {
		return "", "", err
	}
	if pathDev == homeDev {
		return t.home, "", nil
	}

	top, err = mountOf(path)
	if err != nil {
		return "", "", err
	}
	uid := strconv.Itoa(os.Getuid())

	// an administrator created $topdir/.Trash must be a sticky directory
	shared := filepath.Join(top, ".Trash")
	if info, err := os.Lstat(shared); err == nil && info.IsDir() && info.Mode()&os.ModeSticky != 0 {
		return filepath.Join(shared, uid), top, nil
	}
	return filepath.Join(top, ".Trash-"+uid), top, nil
}

// roots lists the home trash and every existing per-device trash
func (t *Trash) roots() []string {
	roots := []string{t.home}
	if !t.devices {
		return roots
	}
	partitions, err := disk.Partitions(false)
	if err != nil {
		return roots
	}
	uid := strconv.Itoa(os.Getuid())
	for _, p := range partitions {
		for _, candidate := range []string{
			filepath.Join(p.Mountpoint, ".Trash", uid),
			filepath.Join(p.Mountpoint, ".Trash-"+uid),
		} {
			if candidate == t.home {
				continue
			}
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				roots = append(roots, candidate)
			}
		}
	}
	return roots
}

// topOf returns the mount directory of a per-device trash root, empty for others
func topOf(root string) string {
	base := filepath.Base(root)
	if strings.HasPrefix(base, ".Trash-") {
		return filepath.Dir(root)
	}
	if filepath.Base(filepath.Dir(root)) == ".Trash" {
		return filepath.Dir(filepath.Dir(root))
	}
	return ""
}

func mountOf(path string) (string, error) {
	partitions, err := disk.Partitions(true)
	if err != nil {
		return "", errors.Errorf("listing mounts: %w", err)
	}
	best := ""
	for _, p := range partitions {
		mp := p.Mountpoint
		if (path == mp || strings.HasPrefix(path, strings.TrimSuffix(mp, "/")+"/")) && len(mp) > len(best) {
			best = mp
		}
	}
	if best == "" {
		return "", errors.Errorf("no mount found for %s", path)
	}
	return best, nil
}

func device(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Errorf("reading metadata of %s: %w", path, err)
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, errors.Errorf("%s: no device information", path)
	}
	return uint64(st.Dev), nil
}

func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
