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
	"compress/bzip2"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 📂 Extract unpacks every archive in paths into its own directory under
// toDir and returns the directories created. The directory is named after
// the archive without its suffix and made unique when already taken.
func Extract(ctx context.Context, opts Options, paths []string, toDir string) ([]string, error) {
	var created []string
	for _, path := range paths {
		if err := opts.Controller.Check(ctx); err != nil {
			return created, err
		}

		dest := filepath.Join(toDir, naming.StripArchiveSuffix(filepath.Base(path)))
		if _, err := os.Lstat(dest); err == nil {
			dest = naming.CopyUniquePath(dest, toDir, opts.CopyWord)
		}

		format, err := Sniff(path)
		if err != nil {
			return created, err
		}

		zerolog.Ctx(ctx).Debug().
			Str("archive", path).
			Str("dest", dest).
			Stringer("format", format).
			Msg("extracting archive")

		if format == FormatZip {
			err = extractZip(ctx, opts, path, dest)
		} else {
			err = extractTar(ctx, opts, path, format, dest)
		}
		if err != nil {
			return created, errors.Errorf("extracting %s: %w", path, err)
		}
		created = append(created, dest)
	}
	return created, nil
}

// decoder stacks the decompressor for format on top of r
func decoder(format Format, r io.Reader) (io.ReadCloser, error) {
	switch format {
	case FormatTar:
		return io.NopCloser(r), nil
	case FormatTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Errorf("opening gzip stream: %w", err)
		}
		return gz, nil
	case FormatTarBz2:
		return io.NopCloser(bzip2.NewReader(r)), nil
	case FormatTarXz:
		x, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Errorf("opening xz stream: %w", err)
		}
		return io.NopCloser(x), nil
	case FormatTarZst:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Errorf("opening zstd stream: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, errors.Errorf("%s: %w", format, ErrUnknownFormat)
	}
}

func extractTar(ctx context.Context, opts Options, path string, format Format, dest string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	src, err := controller.NewReader(ctx, opts.Controller, file)
	if err != nil {
		return err
	}

	dec, err := decoder(format, src)
	if err != nil {
		return err
	}
	defer dec.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return errors.Errorf("creating extraction directory: %w", err)
	}

	var (
		tr    = tar.NewReader(dec)
		buf   = opts.buffer()
		perms []permission
	)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}
		mode := hdr.FileInfo().Mode()

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := ensureDir(target, mode); err != nil {
				return err
			}
			perms = append(perms, permission{path: target, mode: mode.Perm()})
		case tar.TypeReg:
			if err := ensureParent(target); err != nil {
				return err
			}
			if err := writeFile(target, tr, buf); err != nil {
				return err
			}
			perms = append(perms, permission{path: target, mode: mode.Perm()})
		case tar.TypeSymlink:
			if err := ensureParent(target); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Errorf("creating symlink %s: %w", target, err)
			}
		case tar.TypeLink:
			old, err := safeJoin(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.Link(old, target); err != nil {
				return errors.Errorf("creating hard link %s: %w", target, err)
			}
		default:
			zerolog.Ctx(ctx).Debug().
				Str("entry", hdr.Name).
				Str("type", string(hdr.Typeflag)).
				Msg("skipping unsupported tar entry")
		}
	}

	return applyPermissions(perms)
}

// writeFile copies r into a new file at path. Cancellation happens in the
// controller reader underneath the decoder.
func writeFile(path string, r io.Reader, buf []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return errors.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.CopyBuffer(f, r, buf); err != nil {
		f.Close()
		return errors.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", path, err)
	}
	return nil
}
