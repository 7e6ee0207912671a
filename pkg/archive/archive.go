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
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/walteh/fileops/pkg/controller"
	"gitlab.com/tozd/go/errors"
)

const defaultBufferSize = 4 * 1024 * 1024

// Options configures one extract or compress run
type Options struct {
	Controller *controller.Controller
	// Password decrypts zip entries on extract and encrypts them with AES-256 on compress
	Password string
	// CopyWord names duplicate extraction directories
	CopyWord string
	// Exclude holds doublestar patterns matched against archive relative names on compress
	Exclude    []string
	BufferSize int
}

func (o Options) buffer() []byte {
	if o.BufferSize <= 0 {
		return make([]byte, defaultBufferSize)
	}
	return make([]byte, o.BufferSize)
}

// copyChunks streams src into dst one buffer at a time, checking the
// controller before every chunk and reporting the fraction of size written.
func copyChunks(ctx context.Context, ctrl *controller.Controller, dst io.Writer, src io.Reader, size int64, buf []byte, progress func(float32)) error {
	var written int64
	for {
		if err := ctrl.Check(ctx); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return errors.Errorf("writing: %w", err)
			}
			written += int64(n)
			if size > 0 {
				progress(min(float32(written)/float32(size), 1))
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// safeJoin resolves an archive entry name below root
func safeJoin(root, name string) (string, error) {
	clean := filepath.FromSlash(name)
	if filepath.IsAbs(clean) || strings.HasPrefix(name, "/") {
		return "", errors.Errorf("%s: %w", name, ErrUnsafePath)
	}
	target := filepath.Join(root, clean)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", errors.Errorf("%s: %w", name, ErrUnsafePath)
	}
	if err := rejectSymlinkedPath(root, target); err != nil {
		return "", errors.Errorf("%s: %w", name, err)
	}
	return target, nil
}

// rejectSymlinkedPath fails when any existing component of target below root
// is a symlink, since writing through it could land outside root.
func rejectSymlinkedPath(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return errors.Errorf("relating %s to %s: %w", target, root, err)
	}
	if rel == "." {
		return nil
	}
	current := root
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return errors.Errorf("reading metadata of %s: %w", current, err)
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return errors.Errorf("symlink at %s: %w", current, ErrUnsafePath)
		}
	}
	return nil
}

type permission struct {
	path string
	mode os.FileMode
}

// applyPermissions sets recorded modes deepest path first, so a parent made
// read only never blocks its children.
func applyPermissions(perms []permission) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	sort.Slice(perms, func(i, j int) bool {
		return perms[i].path > perms[j].path
	})
	for _, p := range perms {
		if err := os.Chmod(p.path, p.mode); err != nil {
			return errors.Errorf("setting permissions of %s: %w", p.path, err)
		}
	}
	return nil
}

// ensureDir creates dir and keeps it owner writable until permissions are applied
func ensureDir(dir string, mode os.FileMode) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Errorf("creating directory %s: %w", dir, err)
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	if err := os.Chmod(dir, mode.Perm()|0o700); err != nil {
		return errors.Errorf("setting permissions of %s: %w", dir, err)
	}
	return nil
}

func ensureParent(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating parent of %s: %w", path, err)
	}
	return nil
}
