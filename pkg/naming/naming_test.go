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

package naming

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitExt(t *testing.T) {
	tests := []struct {
		name     string
		isDir    bool
		wantStem string
		wantExt  string
	}{
		{name: "foo.txt", wantStem: "foo", wantExt: ".txt"},
		{name: "archive.tar.gz", wantStem: "archive", wantExt: ".tar.gz"},
		{name: "ARCHIVE.TAR.XZ", wantStem: "ARCHIVE", wantExt: ".TAR.XZ"},
		{name: "photo.backup.jpg", wantStem: "photo.backup", wantExt: ".jpg"},
		{name: ".bashrc", wantStem: ".bashrc", wantExt: ""},
		{name: "Makefile", wantStem: "Makefile", wantExt: ""},
		{name: "my.folder", isDir: true, wantStem: "my.folder", wantExt: ""},
		{name: ".tar.gz", wantStem: ".tar", wantExt: ".gz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem, ext := SplitExt(tt.name, tt.isDir)
			assert.Equal(t, tt.wantStem, stem, "stem should match")
			assert.Equal(t, tt.wantExt, ext, "ext should match")
		})
	}
}

func TestCopyUniquePathSequence(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "foo.txt")
	require.NoError(t, os.WriteFile(src, []byte("foo"), 0o644))

	seen := map[string]bool{src: true}
	want := []string{"foo (Copy 1).txt", "foo (Copy 2).txt", "foo (Copy 3).txt"}
	for _, w := range want {
		got := CopyUniquePath(src, dir, "")
		assert.Equal(t, filepath.Join(dir, w), got)
		assert.False(t, seen[got], "path %s handed out twice", got)
		seen[got] = true
		require.NoError(t, os.WriteFile(got, nil, 0o644))
	}
}

func TestCopyUniquePathCompoundExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "archive.tar.gz")
	require.NoError(t, os.WriteFile(src, nil, 0o644))

	got := CopyUniquePath(src, dir, DefaultCopyWord)
	assert.Equal(t, filepath.Join(dir, "archive (Copy 1).tar.gz"), got)
}

func TestCopyUniquePathDirectory(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photos.2024")
	require.NoError(t, os.Mkdir(src, 0o755))

	got := CopyUniquePath(src, dir, "Kopie")
	assert.Equal(t, filepath.Join(dir, "photos.2024 (Kopie 1)"), got)
}

func TestCopyUniquePathFree(t *testing.T) {
	from := filepath.Join(t.TempDir(), "a.txt")
	toDir := t.TempDir()
	assert.Equal(t, filepath.Join(toDir, "a.txt"), CopyUniquePath(from, toDir, ""))
}

func TestStripArchiveSuffix(t *testing.T) {
	tests := map[string]string{
		"bundle.zip":     "bundle",
		"src.tar.gz":     "src",
		"src.TGZ":        "src",
		"logs.tar.zst":   "logs",
		"data.tar":       "data",
		"notes.txt":      "notes.txt",
		".zip":           ".zip",
		"release.tar.xz": "release",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripArchiveSuffix(in), "strip %q", in)
	}
}
