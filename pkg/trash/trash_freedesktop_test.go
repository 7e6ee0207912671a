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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func homeItems(t *testing.T, tr *Trash) []Item {
	t.Helper()
	items, err := tr.List()
	require.NoError(t, err)
	var own []Item
	for _, item := range items {
		if item.Root == tr.Home() {
			own = append(own, item)
		}
	}
	return own
}

func TestDeleteRestore(t *testing.T) {
	root := t.TempDir()
	tr := New(filepath.Join(root, "Trash"), false)
	path := filepath.Join(root, "docs", "report.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("q3"), 0o644))

	item, err := tr.Delete(path)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", item.Name)
	assert.Equal(t, path, item.OriginalPath)
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(tr.Home(), "files", "report.txt"))
	assert.FileExists(t, filepath.Join(tr.Home(), "info", "report.txt.trashinfo"))

	items := homeItems(t, tr)
	require.Len(t, items, 1)
	assert.Equal(t, path, items[0].OriginalPath)

	require.NoError(t, os.RemoveAll(filepath.Dir(path)))
	restored, err := tr.Restore(items[0])
	require.NoError(t, err)
	assert.Equal(t, path, restored)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "q3", string(data))
	assert.Empty(t, homeItems(t, tr))
}

func TestDeleteNameCollision(t *testing.T) {
	root := t.TempDir()
	tr := New(filepath.Join(root, "Trash"), false)

	var names []string
	for i := 0; i < 3; i++ {
		path := filepath.Join(root, "notes.md")
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		item, err := tr.Delete(path)
		require.NoError(t, err)
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"notes.md", "notes.md.2", "notes.md.3"}, names)
}

func TestRestoreCollision(t *testing.T) {
	root := t.TempDir()
	tr := New(filepath.Join(root, "Trash"), false)
	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	item, err := tr.Delete(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("new"), 0o644))

	_, err = tr.Restore(item)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCollision))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestFindAndPurge(t *testing.T) {
	root := t.TempDir()
	tr := New(filepath.Join(root, "Trash"), false)
	dir := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "out"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out", "bin"), []byte("elf"), 0o755))

	_, err := tr.Delete(dir)
	require.NoError(t, err)

	found, err := tr.Find([]string{dir})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "build", found[0].Name)

	_, err = tr.Find([]string{filepath.Join(root, "never-trashed")})
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, tr.Purge(found[0]))
	assert.NoDirExists(t, filepath.Join(tr.Home(), "files", "build"))
	assert.Empty(t, homeItems(t, tr))
}

func TestTopOf(t *testing.T) {
	tests := []struct {
		root string
		want string
	}{
		{root: "/mnt/usb/.Trash-1000", want: "/mnt/usb"},
		{root: "/mnt/usb/.Trash/1000", want: "/mnt/usb"},
		{root: "/home/me/.local/share/Trash", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, topOf(tt.root), tt.root)
	}
}
