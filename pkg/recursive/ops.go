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

package recursive

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

type status int

const (
	statusDone status = iota
	statusSkipped
	statusCancelled
)

type result struct {
	status status
	// to is where the op actually wrote, which differs from Op.To after keep-both
	to string
}

func done(to string) (result, error) {
	return result{status: statusDone, to: to}, nil
}

func (c *Context) run(ctx context.Context, op Op, progress func(float32)) (result, error) {
	switch op.Kind {
	case OpCopy:
		return c.copyFile(ctx, op.From, op.To, progress)
	case OpMove:
		return c.moveFile(ctx, op.From, op.To, progress)
	case OpMkdir:
		if err := os.MkdirAll(op.To, 0o755); err != nil {
			return result{}, errors.Errorf("creating directory: %w", err)
		}
		return done(op.To)
	case OpRemove:
		if c.skipped[op.From] {
			return result{status: statusSkipped}, nil
		}
		if err := os.Remove(op.From); err != nil {
			return result{}, errors.Errorf("removing file: %w", err)
		}
		return done(op.From)
	case OpRmdir:
		if c.keepsSkipped(op.From) {
			return result{status: statusSkipped}, nil
		}
		if err := os.Remove(op.From); err != nil {
			return result{}, errors.Errorf("removing directory: %w", err)
		}
		return done(op.From)
	case OpSymlink:
		return c.symlink(ctx, op, progress)
	default:
		return result{}, errors.Errorf("unknown op kind %d", op.Kind)
	}
}

// 📄 copyFile streams from to to, checking the controller between buffers
func (c *Context) copyFile(ctx context.Context, from, to string, progress func(float32)) (result, error) {
	src, err := os.Open(from)
	if err != nil {
		return result{}, errors.Errorf("opening source: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return result{}, errors.Errorf("reading source metadata: %w", err)
	}

	to, st, err := c.resolve(ctx, from, to, info)
	if err != nil || st != statusDone {
		return result{status: st}, err
	}

	// O_EXCL: anything that appeared since the conflict check is not clobbered
	dst, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return result{}, errors.Errorf("creating destination: %w", err)
	}
	defer dst.Close()

	if err := dst.Chmod(info.Mode().Perm()); err != nil {
		return result{}, errors.Errorf("setting permissions: %w", err)
	}

	cloned := false
	if c.Reflink {
		if err := reflink(dst, src); err == nil {
			cloned = true
			progress(1)
		}
	}

	var sum uint64
	if !cloned {
		sum, err = c.stream(ctx, src, dst, info.Size(), progress)
		if err != nil {
			return result{}, err
		}
	}

	if err := dst.Sync(); err != nil {
		return result{}, errors.Errorf("syncing destination: %w", err)
	}
	if err := dst.Close(); err != nil {
		return result{}, errors.Errorf("closing destination: %w", err)
	}

	if c.Verify && !cloned {
		if err := verify(to, sum, c.buffer()); err != nil {
			return result{}, err
		}
	}

	return done(to)
}

func (c *Context) stream(ctx context.Context, src io.Reader, dst io.Writer, total int64, progress func(float32)) (uint64, error) {
	var (
		buf     = c.buffer()
		digest  *xxhash.Digest
		w       = dst
		current int64
	)
	if c.Verify {
		digest = xxhash.New()
		w = io.MultiWriter(dst, digest)
	}

	for {
		if err := c.Controller.Check(ctx); err != nil {
			return 0, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return 0, errors.Errorf("writing destination: %w", err)
			}
			current += int64(n)
			if total > 0 {
				progress(float32(current) / float32(total))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return 0, errors.Errorf("reading source: %w", rerr)
		}
	}

	if digest == nil {
		return 0, nil
	}
	return digest.Sum64(), nil
}

func verify(path string, want uint64, buf []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Errorf("opening copy for verification: %w", err)
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return errors.Errorf("reading copy for verification: %w", err)
	}
	if got := digest.Sum64(); got != want {
		return errors.Errorf("verification failed for %s: checksum %x, want %x", path, got, want)
	}
	return nil
}

// 🔗 moveFile hard links from to to. Sources on another device are copied
// instead, and the cleanup pass removes them afterwards.
func (c *Context) moveFile(ctx context.Context, from, to string, progress func(float32)) (result, error) {
	if c.method.crossDeviceCopy {
		return c.copyFile(ctx, from, to, progress)
	}

	info, err := os.Lstat(from)
	if err != nil {
		return result{}, errors.Errorf("reading source metadata: %w", err)
	}

	to, st, err := c.resolve(ctx, from, to, info)
	if err != nil || st != statusDone {
		return result{status: st}, err
	}

	link := c.Link
	if link == nil {
		link = os.Link
	}

	err = link(from, to)
	if err == nil {
		progress(1)
		return done(to)
	}
	if errors.Is(err, syscall.EXDEV) {
		zerolog.Ctx(ctx).Debug().Str("from", from).Str("to", to).Msg("cross device move, copying instead")
		return c.copyFile(ctx, from, to, progress)
	}
	return result{}, errors.Errorf("linking: %w", err)
}

func (c *Context) symlink(ctx context.Context, op Op, progress func(float32)) (result, error) {
	info, err := os.Lstat(op.From)
	if err != nil {
		return result{}, errors.Errorf("reading link metadata: %w", err)
	}

	to, st, err := c.resolve(ctx, op.From, op.To, info)
	if err != nil || st != statusDone {
		return result{status: st}, err
	}

	if err := os.Symlink(op.Target, to); err != nil {
		return result{}, errors.Errorf("creating symlink: %w", err)
	}
	progress(1)
	return done(to)
}

// ⚖️ resolve settles an existing destination and returns the path to write
func (c *Context) resolve(ctx context.Context, from, to string, fromInfo fs.FileInfo) (string, status, error) {
	toInfo, err := os.Lstat(to)
	if errors.Is(err, fs.ErrNotExist) {
		return to, statusDone, nil
	}
	if err != nil {
		return "", statusDone, errors.Errorf("reading destination metadata: %w", err)
	}
	if toInfo.IsDir() {
		return "", statusDone, errors.Errorf("destination %s is a directory", to)
	}

	res, err := c.replace(ctx, Conflict{
		From:     from,
		To:       to,
		FromInfo: fromInfo,
		ToInfo:   toInfo,
		Multiple: c.multiple,
	})
	if err != nil {
		return "", statusDone, errors.Errorf("resolving conflict: %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("from", from).
		Str("to", to).
		Stringer("action", res.Action).
		Bool("apply_to_all", res.ApplyToAll).
		Msg("resolved conflict")

	switch res.Action {
	case ActionReplace:
		if err := os.Remove(to); err != nil {
			return "", statusDone, errors.Errorf("removing replaced destination: %w", err)
		}
		return to, statusDone, nil
	case ActionKeepBoth:
		return naming.CopyUniquePath(to, filepath.Dir(to), c.CopyWord), statusDone, nil
	case ActionSkip:
		c.skipped[from] = true
		return "", statusSkipped, nil
	default:
		return "", statusCancelled, nil
	}
}

func (c *Context) replace(ctx context.Context, conflict Conflict) (ReplaceResult, error) {
	if c.replaceResult != nil {
		return *c.replaceResult, nil
	}
	if c.OnReplace == nil {
		return c.DefaultReplace, nil
	}

	res, err := c.OnReplace(ctx, conflict)
	if err != nil {
		return ReplaceResult{}, err
	}
	if res.sticky() {
		c.replaceResult = &res
	}
	return res, nil
}

// keepsSkipped reports whether dir holds an entry a conflict skipped
func (c *Context) keepsSkipped(dir string) bool {
	prefix := dir + string(filepath.Separator)
	for path := range c.skipped {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
