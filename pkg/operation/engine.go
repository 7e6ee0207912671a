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

package operation

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/archive"
	"github.com/walteh/fileops/pkg/config"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/naming"
	"github.com/walteh/fileops/pkg/recents"
	"github.com/walteh/fileops/pkg/recursive"
	"github.com/walteh/fileops/pkg/trash"
	"gitlab.com/tozd/go/errors"
)

// LaunchFunc starts the program at path
type LaunchFunc func(ctx context.Context, path string) error

// 🔧 Options contains the collaborators of an Engine. Zero fields get the
// platform defaults.
type Options struct {
	Config  *config.Config
	Trash   *trash.Trash
	Recents *recents.Store
	Launch  LaunchFunc
}

// ⚙️ Engine performs operations
type Engine struct {
	config  *config.Config
	trash   *trash.Trash
	recents *recents.Store
	launch  LaunchFunc
}

// 🏭 New creates an engine with the given options
func New(opts Options) (*Engine, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	} else if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	e := &Engine{
		config:  cfg,
		trash:   opts.Trash,
		recents: opts.Recents,
		launch:  opts.Launch,
	}
	if e.trash == nil {
		if cfg.TrashDir != "" {
			e.trash = trash.New(cfg.TrashDir, true)
		} else {
			e.trash = trash.Default()
		}
	}
	if e.recents == nil {
		if cfg.RecentsFile != "" {
			e.recents = recents.New(cfg.RecentsFile)
		} else {
			e.recents = recents.Default()
		}
	}
	if e.launch == nil {
		e.launch = launchProcess
	}
	return e, nil
}

// Config returns the validated configuration in use
func (e *Engine) Config() *config.Config {
	return e.config
}

// run carries one Perform call's state into the variants
type run struct {
	engine   *Engine
	ctrl     *controller.Controller
	requests chan<- ReplaceRequest
}

// 🏃 Perform runs op to completion under ctrl. Destination conflicts are sent
// to requests when the conflict policy is ask; a nil channel resolves them
// by skipping.
//
// Progress reads 1 once Perform returns, whatever the outcome. Errors are
// ErrCancelled for caller cancellation and *Error otherwise, including
// panics raised while performing.
func (e *Engine) Perform(ctx context.Context, op Operation, requests chan<- ReplaceRequest, ctrl *controller.Controller) (sel Selection, err error) {
	logger := zerolog.Ctx(ctx).With().Str("operation", string(op.Kind())).Logger()
	ctx = logger.WithContext(ctx)

	defer ctrl.SetProgress(1)
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("operation panicked")
			sel, err = Selection{}, &Error{Kind: KindGeneric, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	logger.Debug().Msg("performing operation")

	sel, err = op.perform(ctx, &run{engine: e, ctrl: ctrl, requests: requests})
	if err != nil {
		err = normalize(err)
		logger.Debug().Err(err).Msg("operation stopped")
		return sel, err
	}

	logger.Debug().
		Strs("selected", sel.Selected).
		Strs("ignored", sel.Ignored).
		Msg("operation completed")
	return sel, nil
}

// recursive builds an engine context configured for this run
func (r *run) recursive() *recursive.Context {
	cfg := r.engine.config
	rc := recursive.NewContext(r.ctrl)
	rc.BufferSize = cfg.BufferSize
	rc.CopyWord = cfg.CopyWord
	rc.Verify = cfg.Verify
	rc.CheckFreeSpace = cfg.CheckFreeSpace

	res, fixed := policy(cfg.Conflict)
	rc.DefaultReplace = res
	if !fixed && r.requests != nil {
		rc.OnReplace = ask(r.requests)
	}
	return rc
}

func (r *run) archiveOptions(password string) archive.Options {
	cfg := r.engine.config
	return archive.Options{
		Controller: r.ctrl,
		Password:   password,
		CopyWord:   cfg.CopyWord,
		Exclude:    cfg.Exclude,
		BufferSize: cfg.BufferSize,
	}
}

// each runs fn for every element with a controller check and progress in between
func each[T any](ctx context.Context, ctrl *controller.Controller, list []T, fn func(T) error) error {
	for i, v := range list {
		if err := ctrl.Check(ctx); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		ctrl.SetProgress(float32(i+1) / float32(len(list)))
	}
	return nil
}

func copyOrMove(ctx context.Context, rc *recursive.Context, pairs []recursive.Pair, method recursive.Method) (Selection, error) {
	completed, sel, err := rc.CopyOrMove(ctx, pairs, method)
	if err != nil {
		return sel, err
	}
	if !completed {
		return sel, errors.WithStack(ErrCancelled)
	}
	return sel, nil
}

func (o Copy) perform(ctx context.Context, r *run) (Selection, error) {
	pairs := make([]recursive.Pair, 0, len(o.Paths))
	for _, from := range o.Paths {
		from = filepath.Clean(from)
		to := filepath.Join(o.To, filepath.Base(from))
		if to == from {
			to = naming.CopyUniquePath(from, o.To, r.engine.config.CopyWord)
		}
		pairs = append(pairs, recursive.Pair{From: from, To: to})
	}
	return copyOrMove(ctx, r.recursive(), pairs, recursive.MethodCopy)
}

func (o Move) perform(ctx context.Context, r *run) (Selection, error) {
	var (
		sel   Selection
		pairs []recursive.Pair
	)
	for _, from := range o.Paths {
		if err := r.ctrl.Check(ctx); err != nil {
			return sel, err
		}
		from = filepath.Clean(from)
		to := filepath.Join(o.To, filepath.Base(from))
		if to == from {
			continue
		}

		// a plain rename covers the common same-device case without walking
		if !o.CrossDeviceCopy {
			if _, err := os.Lstat(to); errors.Is(err, fs.ErrNotExist) {
				err := os.Rename(from, to)
				if err == nil {
					sel.Ignored = append(sel.Ignored, from)
					sel.Selected = append(sel.Selected, to)
					continue
				}
				zerolog.Ctx(ctx).Debug().Err(err).Str("from", from).Msg("rename failed, moving recursively")
			}
		}
		pairs = append(pairs, recursive.Pair{From: from, To: to})
	}

	if len(pairs) == 0 {
		return sel, nil
	}
	moved, err := copyOrMove(ctx, r.recursive(), pairs, recursive.MethodMove(o.CrossDeviceCopy))
	sel.Merge(moved)
	return sel, err
}

func (o Delete) perform(ctx context.Context, r *run) (Selection, error) {
	var sel Selection
	err := each(ctx, r.ctrl, o.Paths, func(path string) error {
		if _, err := r.engine.trash.Delete(path); err != nil {
			return err
		}
		sel.Ignored = append(sel.Ignored, path)
		return nil
	})
	return sel, err
}

func (o DeleteTrash) perform(ctx context.Context, r *run) (Selection, error) {
	return Selection{}, each(ctx, r.ctrl, o.Items, r.engine.trash.Purge)
}

func (o EmptyTrash) perform(ctx context.Context, r *run) (Selection, error) {
	items, err := r.engine.trash.List()
	if err != nil {
		return Selection{}, err
	}
	zerolog.Ctx(ctx).Debug().Int("items", len(items)).Msg("emptying trash")
	return Selection{}, each(ctx, r.ctrl, items, r.engine.trash.Purge)
}

func (o Extract) perform(ctx context.Context, r *run) (Selection, error) {
	created, err := archive.Extract(ctx, r.archiveOptions(o.Password), o.Paths, o.To)
	return Selection{Selected: created}, err
}

func (o Compress) perform(ctx context.Context, r *run) (Selection, error) {
	to := o.To
	if _, err := os.Lstat(to); err == nil {
		to = naming.CopyUniquePath(to, filepath.Dir(to), r.engine.config.CopyWord)
	}
	if err := archive.Compress(ctx, r.archiveOptions(o.Password), o.Paths, to, o.Format); err != nil {
		return Selection{}, err
	}
	return Selection{Selected: []string{to}}, nil
}

func (o NewFile) perform(ctx context.Context, r *run) (Selection, error) {
	f, err := os.OpenFile(o.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Selection{}, errors.Errorf("creating file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Selection{}, errors.Errorf("closing file: %w", err)
	}
	return Selection{Selected: []string{o.Path}}, nil
}

func (o NewFolder) perform(ctx context.Context, r *run) (Selection, error) {
	if err := os.Mkdir(o.Path, 0o755); err != nil {
		return Selection{}, errors.Errorf("creating folder: %w", err)
	}
	return Selection{Selected: []string{o.Path}}, nil
}

func (o PermanentlyDelete) perform(ctx context.Context, r *run) (Selection, error) {
	var sel Selection
	err := each(ctx, r.ctrl, o.Paths, func(path string) error {
		if err := os.RemoveAll(path); err != nil {
			return errors.Errorf("deleting %s: %w", path, err)
		}
		sel.Ignored = append(sel.Ignored, path)
		return nil
	})
	return sel, err
}

func (o RemoveFromRecents) perform(ctx context.Context, r *run) (Selection, error) {
	removed, err := r.engine.recents.Remove(o.Paths)
	if err != nil {
		return Selection{}, err
	}
	zerolog.Ctx(ctx).Debug().Int("removed", removed).Msg("removed from recents")
	return Selection{}, nil
}

func (o Rename) perform(ctx context.Context, r *run) (Selection, error) {
	if _, err := os.Lstat(o.To); err == nil {
		return Selection{}, errors.Errorf("renaming %s: %s already exists", o.From, o.To)
	}
	if err := os.Rename(o.From, o.To); err != nil {
		return Selection{}, errors.Errorf("renaming: %w", err)
	}
	return Selection{Ignored: []string{o.From}, Selected: []string{o.To}}, nil
}

func (o Restore) perform(ctx context.Context, r *run) (Selection, error) {
	list := o.Items
	if len(o.Paths) > 0 {
		found, err := r.engine.trash.Find(o.Paths)
		if err != nil {
			return Selection{}, err
		}
		list = append(append([]trash.Item(nil), list...), found...)
	}

	var sel Selection
	err := each(ctx, r.ctrl, list, func(item trash.Item) error {
		restored, err := r.engine.trash.Restore(item)
		if err != nil {
			return err
		}
		sel.Selected = append(sel.Selected, restored)
		return nil
	})
	return sel, err
}

func (o SetExecutableAndLaunch) perform(ctx context.Context, r *run) (Selection, error) {
	info, err := os.Stat(o.Path)
	if err != nil {
		return Selection{}, errors.Errorf("reading metadata: %w", err)
	}
	if err := os.Chmod(o.Path, info.Mode().Perm()|0o111); err != nil {
		return Selection{}, errors.Errorf("setting executable: %w", err)
	}
	if err := r.engine.launch(ctx, o.Path); err != nil {
		return Selection{}, errors.Errorf("launching %s: %w", o.Path, err)
	}
	return Selection{}, nil
}

func (o SetPermissions) perform(ctx context.Context, r *run) (Selection, error) {
	if err := os.Chmod(o.Path, o.Mode.Perm()); err != nil {
		return Selection{}, errors.Errorf("setting permissions: %w", err)
	}
	return Selection{}, nil
}

// launchProcess starts path in its own directory without waiting for it
func launchProcess(ctx context.Context, path string) error {
	cmd := exec.Command(path)
	cmd.Dir = filepath.Dir(path)
	if err := cmd.Start(); err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Int("pid", cmd.Process.Pid).Str("path", path).Msg("launched")
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
