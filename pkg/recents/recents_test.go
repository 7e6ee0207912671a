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

package recents

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXBEL = `<?xml version="1.0" encoding="UTF-8"?>
<xbel version="1.0" xmlns:bookmark="http://www.freedesktop.org/standards/desktop-bookmarks" xmlns:mime="http://www.freedesktop.org/standards/shared-mime-info">
  <bookmark href="file:///home/me/notes.txt" added="2024-01-01T10:00:00Z" modified="2024-01-02T10:00:00Z" visited="2024-01-02T10:00:00Z">
    <info><metadata owner="http://freedesktop.org"><mime:mime-type type="text/plain"/></metadata></info>
  </bookmark>
  <bookmark href="file:///home/me/My%20Photos/cat.png" added="2024-01-01T10:00:00Z" modified="2024-01-03T10:00:00Z" visited="2024-01-03T10:00:00Z"/>
  <bookmark href="https://example.com/remote.txt" added="2024-01-01T10:00:00Z" modified="2024-01-01T10:00:00Z" visited="2024-01-01T10:00:00Z"/>
</xbel>
`

func writeStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recently-used.xbel")
	require.NoError(t, os.WriteFile(path, []byte(sampleXBEL), 0o600))
	return New(path)
}

func TestList(t *testing.T) {
	store := writeStore(t)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2, "remote bookmarks are not local files")
	assert.Equal(t, "/home/me/notes.txt", entries[0].Path)
	assert.Equal(t, "/home/me/My Photos/cat.png", entries[1].Path)
	assert.Equal(t, 2024, entries[1].Modified.Year())
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name        string
		paths       []string
		wantRemoved int
		wantLeft    []string
	}{
		{
			name:        "escaped_path",
			paths:       []string{"/home/me/My Photos/cat.png"},
			wantRemoved: 1,
			wantLeft:    []string{"/home/me/notes.txt"},
		},
		{
			name:        "all_local",
			paths:       []string{"/home/me/notes.txt", "/home/me/My Photos/cat.png"},
			wantRemoved: 2,
			wantLeft:    nil,
		},
		{
			name:        "unknown_path",
			paths:       []string{"/tmp/other"},
			wantRemoved: 0,
			wantLeft:    []string{"/home/me/notes.txt", "/home/me/My Photos/cat.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := writeStore(t)

			removed, err := store.Remove(tt.paths)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRemoved, removed)

			entries, err := store.List()
			require.NoError(t, err)
			var left []string
			for _, e := range entries {
				left = append(left, e.Path)
			}
			assert.Equal(t, tt.wantLeft, left)

			info, err := os.Stat(store.Path())
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		})
	}
}

func TestRemoveKeepsRemoteBookmarks(t *testing.T) {
	store := writeStore(t)
	_, err := store.Remove([]string{"/home/me/notes.txt"})
	require.NoError(t, err)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "https://example.com/remote.txt")
	assert.NotContains(t, string(data), "notes.txt")
}

func TestMissingStore(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing.xbel"))

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	removed, err := store.Remove([]string{"/a"})
	require.NoError(t, err)
	assert.Zero(t, removed)
}
