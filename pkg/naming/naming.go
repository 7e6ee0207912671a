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

// Package naming derives destination names: numbered duplicates that never
// collide, compound archive extensions and extraction directory names.
package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultCopyWord is inserted into duplicate names, as in "report (Copy 1).txt"
const DefaultCopyWord = "Copy"

// compoundExts keep their full suffix when a duplicate marker is inserted
var compoundExts = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tar.zst",
}

// archiveSuffixes are stripped to name the directory an archive extracts into
var archiveSuffixes = []string{
	".tar.gz",
	".tar.bz2",
	".tar.xz",
	".tar.zst",
	".tgz",
	".tbz2",
	".txz",
	".tzst",
	".tar",
	".zip",
}

// SplitExt splits name into stem and extension. Directories keep their full
// name as stem and dotfiles such as ".bashrc" have no extension.
func SplitExt(name string, isDir bool) (stem, ext string) {
	if isDir {
		return name, ""
	}
	lower := strings.ToLower(name)
	for _, compound := range compoundExts {
		if strings.HasSuffix(lower, compound) && len(name) > len(compound) {
			cut := len(name) - len(compound)
			return name[:cut], name[cut:]
		}
	}
	ext = filepath.Ext(name)
	if ext == name {
		return name, ""
	}
	return strings.TrimSuffix(name, ext), ext
}

// CopyUniquePath returns toDir joined with the base name of from, or, when
// that path is taken, the first free "stem (Copy N)ext" with N counting from 1.
func CopyUniquePath(from, toDir, copyWord string) string {
	if copyWord == "" {
		copyWord = DefaultCopyWord
	}
	name := filepath.Base(from)
	to := filepath.Join(toDir, name)
	if !exists(to) {
		return to
	}

	isDir := false
	if info, err := os.Stat(from); err == nil {
		isDir = info.IsDir()
	}
	stem, ext := SplitExt(name, isDir)

	for n := 1; ; n++ {
		candidate := filepath.Join(toDir, fmt.Sprintf("%s (%s %d)%s", stem, copyWord, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// StripArchiveSuffix removes a known archive suffix from name. Names without
// one are returned unchanged.
func StripArchiveSuffix(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) && len(name) > len(suffix) {
			return name[:len(name)-len(suffix)]
		}
	}
	return name
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
