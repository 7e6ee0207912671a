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
	"compress/flate"
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/yeka/zip"
	"gitlab.com/tozd/go/errors"
)

func extractZip(ctx context.Context, opts Options, path, dest string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	src, err := controller.NewReader(ctx, opts.Controller, file)
	if err != nil {
		return err
	}

	zr, err := zip.NewReader(src, src.Total())
	if err != nil {
		return errors.Errorf("reading zip directory: %w", err)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Errorf("creating extraction directory: %w", err)
	}

	var (
		ctrl    = opts.Controller
		buf     = opts.buffer()
		total   = float32(len(zr.File))
		pending []permission
		perms   []permission
	)

	// directories are created just before the first entry that needs them
	flush := func() error {
		for _, dir := range pending {
			if err := ensureDir(dir.path, dir.mode); err != nil {
				return err
			}
		}
		pending = pending[:0]
		return nil
	}

	for i, entry := range zr.File {
		if err := ctrl.Check(ctx); err != nil {
			return err
		}

		target, err := safeJoin(dest, entry.Name)
		if err != nil {
			return err
		}
		mode := entry.Mode()

		switch {
		case mode.IsDir() || strings.HasSuffix(entry.Name, "/"):
			perm := mode.Perm()
			if perm == 0 {
				perm = 0o755
			}
			pending = append(pending, permission{path: target, mode: perm})
			perms = append(perms, permission{path: target, mode: perm})

		case mode&fs.ModeSymlink != 0:
			if err := flush(); err != nil {
				return err
			}
			if err := ensureParent(target); err != nil {
				return err
			}
			link, err := readEntry(entry, opts.Password)
			if err != nil {
				return err
			}
			if err := os.Symlink(string(link), target); err != nil {
				return errors.Errorf("creating symlink %s: %w", target, err)
			}

		default:
			if err := flush(); err != nil {
				return err
			}
			if err := ensureParent(target); err != nil {
				return err
			}
			progress := func(fraction float32) {
				ctrl.SetProgress((float32(i) + fraction) / total)
			}
			if err := extractEntry(ctx, ctrl, entry, opts.Password, target, buf, progress); err != nil {
				return err
			}
			if perm := mode.Perm(); perm != 0 {
				perms = append(perms, permission{path: target, mode: perm})
			}
		}

		ctrl.SetProgress(float32(i+1) / total)
	}

	if err := flush(); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().Int("entries", len(zr.File)).Int("permissions", len(perms)).Msg("extracted zip")

	return applyPermissions(perms)
}

func extractEntry(ctx context.Context, ctrl *controller.Controller, entry *zip.File, password, target string, buf []byte, progress func(float32)) error {
	rc, err := openEntry(entry, password)
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Errorf("creating %s: %w", target, err)
	}
	defer f.Close()

	if err := copyChunks(ctx, ctrl, f, rc, int64(entry.UncompressedSize64), buf, progress); err != nil {
		return entryError(entry, err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", target, err)
	}
	return nil
}

func readEntry(entry *zip.File, password string) ([]byte, error) {
	rc, err := openEntry(entry, password)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, entryError(entry, err)
	}
	return data, nil
}

// openEntry opens an entry, decrypting it with password when it is encrypted
func openEntry(entry *zip.File, password string) (io.ReadCloser, error) {
	if entry.IsEncrypted() {
		if password == "" {
			return nil, errors.Errorf("%s: %w", entry.Name, ErrPasswordRequired)
		}
		entry.SetPassword(password)
	}
	rc, err := entry.Open()
	if err != nil {
		return nil, entryError(entry, err)
	}
	return rc, nil
}

// entryError reports decoder failures of encrypted entries as a wrong password
func entryError(entry *zip.File, err error) error {
	if errors.Is(err, controller.ErrCancelled) || errors.Is(err, controller.ErrFailed) {
		return err
	}
	if entry.IsEncrypted() {
		var corrupt flate.CorruptInputError
		if errors.Is(err, zip.ErrPassword) ||
			errors.Is(err, zip.ErrAuthentication) ||
			errors.Is(err, zip.ErrDecryption) ||
			errors.Is(err, zip.ErrChecksum) ||
			errors.As(err, &corrupt) {
			return errors.Errorf("%s: %w", entry.Name, ErrPasswordRequired)
		}
	}
	return errors.Errorf("reading %s: %w", entry.Name, err)
}
