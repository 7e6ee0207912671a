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

package archive

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog"
	"github.com/yeka/zip"
	"gitlab.com/tozd/go/errors"
)

type entry struct {
	path string
	// name is relative to the common parent, slash separated
	name string
	info fs.FileInfo
}

// 🗜️ Compress writes paths, directories expanded, into a new archive at to.
// Entry names are relative to the common parent of paths. A partially
// written archive is removed when compressing fails.
func Compress(ctx context.Context, opts Options, paths []string, to string, format Format) (err error) {
	if len(paths) == 0 {
		return errors.New("nothing to compress")
	}
	if format != FormatTarGz && format != FormatZip {
		return errors.Errorf("writing %s archives is not supported", format)
	}

	entries, err := listEntries(ctx, paths, opts.Exclude)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("archive", to).
		Stringer("format", format).
		Int("entries", len(entries)).
		Msg("compressing")

	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Errorf("creating archive: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			if rerr := os.Remove(to); rerr != nil {
				zerolog.Ctx(ctx).Warn().Err(rerr).Str("archive", to).Msg("removing partial archive")
			}
		}
	}()

	if format == FormatZip {
		err = writeZip(ctx, opts, out, entries)
	} else {
		err = writeTarGz(ctx, opts, out, entries)
	}
	if err != nil {
		return err
	}

	if err := out.Sync(); err != nil {
		return errors.Errorf("syncing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return errors.Errorf("closing archive: %w", err)
	}
	opts.Controller.SetProgress(1)
	return nil
}

// listEntries expands paths into a sorted entry list, dropping excluded names
func listEntries(ctx context.Context, paths []string, exclude []string) ([]entry, error) {
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	parent := commonParent(paths)
	excluded := func(name string) bool {
		for _, pattern := range exclude {
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		}
		return false
	}

	var (
		mu      sync.Mutex
		entries []entry
	)
	add := func(path string, info fs.FileInfo) (bool, error) {
		rel, err := filepath.Rel(parent, path)
		if err != nil {
			return false, errors.Errorf("relative path of %s: %w", path, err)
		}
		name := filepath.ToSlash(rel)
		if excluded(name) {
			return false, nil
		}
		mu.Lock()
		entries = append(entries, entry{path: path, name: name, info: info})
		mu.Unlock()
		return true, nil
	}

	for _, root := range paths {
		root = filepath.Clean(root)
		info, err := os.Lstat(root)
		if err != nil {
			return nil, errors.Errorf("reading metadata of %s: %w", root, err)
		}
		added, err := add(root, info)
		if err != nil {
			return nil, err
		}
		if !added || !info.IsDir() {
			continue
		}

		err = fastwalk.Walk(&fastwalk.Config{}, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return errors.Errorf("walking %s: %w", path, err)
			}
			if path == root {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := d.Info()
			if err != nil {
				return errors.Errorf("reading metadata of %s: %w", path, err)
			}
			added, err := add(path, info)
			if err != nil {
				return err
			}
			if !added && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].name < entries[j].name
	})
	return entries, nil
}

func commonParent(paths []string) string {
	parent := filepath.Dir(filepath.Clean(paths[0]))
	for _, path := range paths[1:] {
		path = filepath.Clean(path)
		for parent != filepath.Dir(parent) && !strings.HasPrefix(path, parent+string(filepath.Separator)) {
			parent = filepath.Dir(parent)
		}
	}
	return parent
}

func writeTarGz(ctx context.Context, opts Options, out io.Writer, entries []entry) error {
	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)
	buf := opts.buffer()
	ctrl := opts.Controller
	total := float32(len(entries))

	for i, e := range entries {
		if err := ctrl.Check(ctx); err != nil {
			return err
		}

		link := ""
		if e.info.Mode()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(e.path)
			if err != nil {
				return errors.Errorf("reading link %s: %w", e.path, err)
			}
			link = target
		}

		hdr, err := tar.FileInfoHeader(e.info, link)
		if err != nil {
			return errors.Errorf("building header for %s: %w", e.path, err)
		}
		hdr.Name = e.name
		if e.info.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return errors.Errorf("writing header for %s: %w", e.name, err)
		}

		if e.info.Mode().IsRegular() {
			progress := func(fraction float32) {
				ctrl.SetProgress((float32(i) + fraction) / total)
			}
			if err := copyFileInto(ctx, opts, tw, e, buf, progress); err != nil {
				return err
			}
		}
		ctrl.SetProgress(float32(i+1) / total)
	}

	if err := tw.Close(); err != nil {
		return errors.Errorf("closing tar stream: %w", err)
	}
	if err := gw.Close(); err != nil {
		return errors.Errorf("closing gzip stream: %w", err)
	}
	return nil
}

// zipHeader builds the entry header with mode bits and sizes taken from the
// file info, so entries past 4GiB get zip64 sizes, and encrypts regular files
// with AES-256 when password is set.
func zipHeader(e entry, password string) (*zip.FileHeader, error) {
	mode := e.info.Mode()
	fh, err := zip.FileInfoHeader(e.info)
	if err != nil {
		return nil, errors.Errorf("building header for %s: %w", e.path, err)
	}
	fh.Name = e.name
	if mode.IsDir() {
		fh.Name += "/"
		fh.Method = zip.Store
		return fh, nil
	}
	fh.Method = zip.Deflate
	if !mode.IsRegular() {
		return fh, nil
	}
	if password != "" {
		fh.SetPassword(password)
		fh.SetEncryptionMethod(zip.AES256Encryption)
	}
	return fh, nil
}

func writeZip(ctx context.Context, opts Options, out io.Writer, entries []entry) error {
	zw := zip.NewWriter(out)
	buf := opts.buffer()
	ctrl := opts.Controller
	total := float32(len(entries))

	for i, e := range entries {
		if err := ctrl.Check(ctx); err != nil {
			return err
		}

		mode := e.info.Mode()
		switch {
		case mode.IsRegular(), mode.IsDir(), mode&fs.ModeSymlink != 0:
			fh, err := zipHeader(e, opts.Password)
			if err != nil {
				return err
			}
			w, err := zw.CreateHeader(fh)
			if err != nil {
				return errors.Errorf("adding %s: %w", e.name, err)
			}

			switch {
			case mode.IsRegular():
				progress := func(fraction float32) {
					ctrl.SetProgress((float32(i) + fraction) / total)
				}
				if err := copyFileInto(ctx, opts, w, e, buf, progress); err != nil {
					return err
				}
			case mode&fs.ModeSymlink != 0:
				target, err := os.Readlink(e.path)
				if err != nil {
					return errors.Errorf("reading link %s: %w", e.path, err)
				}
				if _, err := io.WriteString(w, target); err != nil {
					return errors.Errorf("writing link %s: %w", e.name, err)
				}
			}

		default:
			zerolog.Ctx(ctx).Debug().Str("path", e.path).Stringer("mode", mode).Msg("skipping special file")
		}

		ctrl.SetProgress(float32(i+1) / total)
	}

	if err := zw.Close(); err != nil {
		return errors.Errorf("closing zip: %w", err)
	}
	return nil
}

func copyFileInto(ctx context.Context, opts Options, w io.Writer, e entry, buf []byte, progress func(float32)) error {
	f, err := os.Open(e.path)
	if err != nil {
		return errors.Errorf("opening %s: %w", e.path, err)
	}
	defer f.Close()

	if err := copyChunks(ctx, opts.Controller, w, f, e.info.Size(), buf, progress); err != nil {
		return errors.Errorf("adding %s: %w", e.name, err)
	}
	return nil
}
