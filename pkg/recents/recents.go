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

// Package recents edits the desktop's recently used file list, the
// freedesktop.org recently-used.xbel bookmark file.
package recents

import (
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/beevik/etree"
	"gitlab.com/tozd/go/errors"
)

// Entry is one recently used file
type Entry struct {
	Path     string
	Modified time.Time
}

// Store reads and rewrites one xbel file
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Default returns the current user's store
func Default() *Store {
	return New(filepath.Join(xdg.DataHome, "recently-used.xbel"))
}

func (s *Store) Path() string {
	return s.path
}

// List returns the local files in the store. A missing file is an empty store.
func (s *Store) List() ([]Entry, error) {
	doc, err := s.load()
	if err != nil || doc == nil {
		return nil, err
	}

	var entries []Entry
	for _, bookmark := range bookmarks(doc) {
		path, ok := localPath(bookmark.SelectAttrValue("href", ""))
		if !ok {
			continue
		}
		modified, _ := time.Parse(time.RFC3339, bookmark.SelectAttrValue("modified", ""))
		entries = append(entries, Entry{Path: path, Modified: modified})
	}
	return entries, nil
}

// 🧹 Remove drops the bookmarks of paths and returns how many were removed.
// The file is only rewritten when something changed.
func (s *Store) Remove(paths []string) (int, error) {
	doc, err := s.load()
	if err != nil || doc == nil {
		return 0, err
	}

	drop := make(map[string]bool, len(paths))
	for _, path := range paths {
		drop[filepath.Clean(path)] = true
	}

	removed := 0
	for _, bookmark := range bookmarks(doc) {
		path, ok := localPath(bookmark.SelectAttrValue("href", ""))
		if ok && drop[path] {
			bookmark.Parent().RemoveChild(bookmark)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(doc)
}

func (s *Store) load() (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Errorf("reading %s: %w", s.path, err)
	}
	if doc.Root() == nil || doc.Root().Tag != "xbel" {
		return nil, errors.Errorf("%s is not an xbel document", s.path)
	}
	return doc, nil
}

// save replaces the store through a temporary file in the same directory
func (s *Store) save(doc *etree.Document) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".recently-used-*.xbel")
	if err != nil {
		return errors.Errorf("creating temporary store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		return errors.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing store: %w", err)
	}
	if info, err := os.Stat(s.path); err == nil {
		_ = os.Chmod(tmp.Name(), info.Mode().Perm())
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

func bookmarks(doc *etree.Document) []*etree.Element {
	return doc.Root().SelectElements("bookmark")
}

func localPath(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	return filepath.Clean(filepath.FromSlash(u.Path)), true
}
