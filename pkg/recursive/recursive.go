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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// DefaultBufferSize bounds how much is copied between two controller checks
const DefaultBufferSize = 4 * 1024 * 1024

// 🔧 Context carries everything one recursive copy or move needs. A Context
// belongs to a single operation and is not safe for concurrent use.
type Context struct {
	Controller *controller.Controller
	// OnReplace is asked when a destination exists. When nil, DefaultReplace applies.
	OnReplace      ReplaceFunc
	DefaultReplace ReplaceResult
	// OnProgress, when set, observes every progress update
	OnProgress func(op Op, progress float32)

	BufferSize     int
	CopyWord       string
	Verify         bool
	Reflink        bool
	CheckFreeSpace bool

	// Link creates hard links for moves, os.Link when nil
	Link func(oldname, newname string) error

	method        Method
	multiple      bool
	replaceResult *ReplaceResult
	skipped       map[string]bool
	buf           []byte
}

// 🏭 NewContext returns a Context with default settings
func NewContext(ctrl *controller.Controller) *Context {
	return &Context{
		Controller:     ctrl,
		DefaultReplace: Skip(false),
		BufferSize:     DefaultBufferSize,
		CopyWord:       naming.DefaultCopyWord,
		Reflink:        true,
	}
}

// 🚚 CopyOrMove plans every pair, then executes the plan in order.
//
// completed is false when the user cancelled from a conflict prompt; the
// filesystem may then be partially updated. Errors from the controller are
// returned as is so callers can tell cancellation from failure.
func (c *Context) CopyOrMove(ctx context.Context, pairs []Pair, method Method) (completed bool, sel Selection, err error) {
	c.method = method
	c.replaceResult = nil
	c.skipped = map[string]bool{}

	ops, sel, err := c.plan(ctx, pairs, method)
	if err != nil {
		return false, sel, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("pairs", len(pairs)).
		Int("ops", len(ops)).
		Bool("move", method.IsMove()).
		Msg("planned recursive operation")

	if c.CheckFreeSpace && !method.IsMove() {
		if err := checkFreeSpace(ops); err != nil {
			return false, sel, err
		}
	}

	return c.execute(ctx, ops, sel)
}

func (c *Context) plan(ctx context.Context, pairs []Pair, method Method) ([]Op, Selection, error) {
	var (
		ops     []Op
		cleanup []Op
		sel     Selection
	)

	for _, pair := range pairs {
		if pair.From == pair.To {
			zerolog.Ctx(ctx).Debug().Str("path", pair.From).Msg("skipping pair onto itself")
			continue
		}
		if strings.HasPrefix(pair.To, pair.From+string(filepath.Separator)) {
			return nil, sel, errors.Errorf("cannot %s %s into itself", verb(method), pair.From)
		}

		err := filepath.WalkDir(pair.From, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return errors.Errorf("walking %s: %w", path, err)
			}
			if err := c.Controller.Check(ctx); err != nil {
				return err
			}

			to := pair.To
			if path != pair.From {
				rel, err := filepath.Rel(pair.From, path)
				if err != nil {
					return errors.Errorf("relative path of %s: %w", path, err)
				}
				to = filepath.Join(pair.To, rel)
			}

			op := Op{From: path, To: to, root: path == pair.From}
			switch typ := d.Type(); {
			case d.IsDir():
				op.Kind = OpMkdir
			case typ.IsRegular():
				op.Kind = OpCopy
				if method.IsMove() {
					op.Kind = OpMove
				}
				info, err := d.Info()
				if err != nil {
					return errors.Errorf("reading metadata of %s: %w", path, err)
				}
				op.size = info.Size()
			case typ&fs.ModeSymlink != 0:
				target, err := os.Readlink(path)
				if err != nil {
					return errors.Errorf("reading link %s: %w", path, err)
				}
				op.Kind = OpSymlink
				op.Target = target
			default:
				return errors.Errorf("%s: unsupported file type %s", path, typ)
			}

			ops = append(ops, op)
			if method.IsMove() {
				if clean, ok := op.cleanup(); ok {
					cleanup = append(cleanup, clean)
				}
			}
			return nil
		})
		if err != nil {
			return nil, sel, err
		}

		if method.IsMove() {
			sel.Ignored = append(sel.Ignored, pair.From)
		}
	}

	// children are removed before their parents
	for i := len(cleanup) - 1; i >= 0; i-- {
		ops = append(ops, cleanup[i])
	}

	return ops, sel, nil
}

func (c *Context) execute(ctx context.Context, ops []Op, sel Selection) (bool, Selection, error) {
	total := len(ops)
	if total == 0 {
		c.Controller.SetProgress(1)
		return true, sel, nil
	}

	files := 0
	for _, op := range ops {
		if op.Kind == OpCopy || op.Kind == OpMove || op.Kind == OpSymlink {
			files++
		}
	}
	c.multiple = files > 1

	for i, op := range ops {
		if err := c.Controller.Check(ctx); err != nil {
			return false, sel, err
		}

		progress := func(fraction float32) {
			p := (float32(i) + fraction) / float32(total)
			c.Controller.SetProgress(p)
			if c.OnProgress != nil {
				c.OnProgress(op, p)
			}
		}
		progress(0)

		zerolog.Ctx(ctx).Trace().Stringer("op", op).Msg("running op")

		res, err := c.run(ctx, op, progress)
		if err != nil {
			return false, sel, errors.Errorf("%s: %w", op, err)
		}

		switch res.status {
		case statusCancelled:
			zerolog.Ctx(ctx).Debug().Stringer("op", op).Msg("cancelled from conflict prompt")
			return false, sel, nil
		case statusDone:
			if op.root {
				sel.Selected = append(sel.Selected, res.to)
			}
		}
	}

	c.Controller.SetProgress(1)
	return true, sel, nil
}

func (c *Context) bufferSize() int {
	if c.BufferSize <= 0 {
		return DefaultBufferSize
	}
	return c.BufferSize
}

func (c *Context) buffer() []byte {
	if len(c.buf) != c.bufferSize() {
		c.buf = make([]byte, c.bufferSize())
	}
	return c.buf
}

func verb(method Method) string {
	if method.IsMove() {
		return "move"
	}
	return "copy"
}
