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
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

// 🧪 newTestContext returns a logger-carrying context and an engine context
func newTestContext(t *testing.T) (context.Context, *Context) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx := logger.WithContext(context.Background())
	c := NewContext(controller.New())
	c.Reflink = false
	return ctx, c
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopySingleFile(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeTree(t, src, map[string]string{"a.txt": "0123456789"})
	require.NoError(t, os.Mkdir(dst, 0o755))

	completed, sel, err := c.CopyOrMove(ctx, []Pair{{
		From: filepath.Join(src, "a.txt"),
		To:   filepath.Join(dst, "a.txt"),
	}}, MethodCopy)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Empty(t, sel.Ignored, "copy should not ignore sources")
	assert.Equal(t, []string{filepath.Join(dst, "a.txt")}, sel.Selected)
	assert.Equal(t, "0123456789", readFile(t, filepath.Join(dst, "a.txt")))
	assert.Equal(t, "0123456789", readFile(t, filepath.Join(src, "a.txt")))
	assert.InDelta(t, 1.0, c.Controller.Progress(), 0.0001)
}

func TestCopyDirectoryIntoOwnParent(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "docs")
	writeTree(t, src, map[string]string{
		"one.txt":        "one",
		"nested/two.txt": "two",
	})
	require.NoError(t, os.Symlink("one.txt", filepath.Join(src, "link")))

	to := naming.CopyUniquePath(src, root, "")
	require.Equal(t, filepath.Join(root, "docs (Copy 1)"), to)

	completed, sel, err := c.CopyOrMove(ctx, []Pair{{From: src, To: to}}, MethodCopy)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []string{to}, sel.Selected)

	assert.Equal(t, "one", readFile(t, filepath.Join(to, "one.txt")))
	assert.Equal(t, "two", readFile(t, filepath.Join(to, "nested", "two.txt")))
	target, err := os.Readlink(filepath.Join(to, "link"))
	require.NoError(t, err)
	assert.Equal(t, "one.txt", target)

	assert.Equal(t, "one", readFile(t, filepath.Join(src, "one.txt")), "original should be untouched")
}

func TestCopyIntoItself(t *testing.T) {
	ctx, c := newTestContext(t)
	src := filepath.Join(t.TempDir(), "dir")
	writeTree(t, src, map[string]string{"a": "a"})

	_, _, err := c.CopyOrMove(ctx, []Pair{{From: src, To: filepath.Join(src, "sub")}}, MethodCopy)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "into itself")
}

func TestPairOntoItselfIsNoop(t *testing.T) {
	ctx, c := newTestContext(t)
	path := filepath.Join(t.TempDir(), "a.txt")
	writeTree(t, filepath.Dir(path), map[string]string{"a.txt": "a"})

	completed, sel, err := c.CopyOrMove(ctx, []Pair{{From: path, To: path}}, MethodCopy)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Empty(t, sel.Selected)
	assert.InDelta(t, 1.0, c.Controller.Progress(), 0.0001, "an empty plan is complete")
}

func TestMoveRemovesChildrenBeforeParents(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "tree")
	dst := filepath.Join(root, "out", "tree")
	writeTree(t, src, map[string]string{
		"a.txt":         "a",
		"b/b.txt":       "b",
		"b/c/c.txt":     "c",
		"b/c/d/deep.md": "deep",
	})
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))

	var removed []string
	c.OnProgress = func(op Op, _ float32) {
		if op.Kind == OpRemove || op.Kind == OpRmdir {
			if len(removed) == 0 || removed[len(removed)-1] != op.From {
				removed = append(removed, op.From)
			}
		}
	}

	completed, sel, err := c.CopyOrMove(ctx, []Pair{{From: src, To: dst}}, MethodMove(false))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, []string{src}, sel.Ignored)
	assert.Equal(t, []string{dst}, sel.Selected)

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source tree should be gone")
	assert.Equal(t, "deep", readFile(t, filepath.Join(dst, "b", "c", "d", "deep.md")))

	index := map[string]int{}
	for i, p := range removed {
		index[p] = i
	}
	for _, p := range removed {
		parent := filepath.Dir(p)
		if pi, ok := index[parent]; ok {
			assert.Less(t, index[p], pi, "%s should be removed before %s", p, parent)
		}
	}
	assert.Equal(t, src, removed[len(removed)-1], "root should be removed last")
}

func TestMoveCrossDeviceFallsBackToCopy(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	content := strings.Repeat("cross device ", 1000)
	writeTree(t, src, map[string]string{"big.bin": content, "sub/small.bin": "small"})

	links := 0
	c.Link = func(oldname, newname string) error {
		links++
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EXDEV}
	}
	c.BufferSize = 512

	completed, _, err := c.CopyOrMove(ctx, []Pair{{From: src, To: dst}}, MethodMove(false))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, 2, links, "every file should try a link first")

	assert.Equal(t, content, readFile(t, filepath.Join(dst, "big.bin")))
	assert.Equal(t, "small", readFile(t, filepath.Join(dst, "sub", "small.bin")))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be removed after fallback")
}

func TestMoveCrossDeviceCopySkipsLink(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	writeTree(t, root, map[string]string{"a.txt": "a"})

	c.Link = func(oldname, newname string) error {
		t.Fatal("link should not be attempted")
		return nil
	}

	completed, _, err := c.CopyOrMove(ctx, []Pair{{From: src, To: filepath.Join(root, "b.txt")}}, MethodMove(true))
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, "a", readFile(t, filepath.Join(root, "b.txt")))
	assert.NoFileExists(t, src)
}

func TestMoveLinkErrorIsReturned(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})
	c.Link = func(oldname, newname string) error {
		return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: syscall.EPERM}
	}

	completed, _, err := c.CopyOrMove(ctx, []Pair{{
		From: filepath.Join(root, "a.txt"),
		To:   filepath.Join(root, "b.txt"),
	}}, MethodMove(false))
	require.Error(t, err)
	assert.False(t, completed)
	assert.FileExists(t, filepath.Join(root, "a.txt"), "source must survive a failed move")
}

func TestCancelStopsCopyWithinOneBuffer(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"big.bin": strings.Repeat("x", 10*1024)})
	c.BufferSize = 1024
	c.OnProgress = func(op Op, p float32) {
		if op.Kind == OpCopy && p > 0 {
			c.Controller.Cancel()
		}
	}

	dst := filepath.Join(root, "copy.bin")
	completed, _, err := c.CopyOrMove(ctx, []Pair{{From: filepath.Join(root, "big.bin"), To: dst}}, MethodCopy)
	require.Error(t, err)
	assert.True(t, errors.Is(err, controller.ErrCancelled))
	assert.False(t, completed)

	info, err := os.Stat(dst)
	require.NoError(t, err, "partial destination should remain")
	assert.Equal(t, int64(1024), info.Size())
}

func TestReplaceStickyDecision(t *testing.T) {
	tests := []struct {
		name    string
		answer  ReplaceResult
		want    string
		prompts int
	}{
		{name: "replace_all", answer: Replace(true), want: "new", prompts: 1},
		{name: "skip_all", answer: Skip(true), want: "old", prompts: 1},
		{name: "replace_once", answer: Replace(false), want: "new", prompts: 3},
		{name: "skip_once", answer: Skip(false), want: "old", prompts: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, c := newTestContext(t)
			root := t.TempDir()
			src := filepath.Join(root, "src")
			dst := filepath.Join(root, "dst")
			files := map[string]string{"a.txt": "new", "b.txt": "new", "c.txt": "new"}
			writeTree(t, src, files)
			writeTree(t, dst, map[string]string{"a.txt": "old", "b.txt": "old", "c.txt": "old"})

			prompts := 0
			c.OnReplace = func(ctx context.Context, conflict Conflict) (ReplaceResult, error) {
				prompts++
				assert.True(t, conflict.Multiple, "several files may conflict")
				return tt.answer, nil
			}

			completed, _, err := c.CopyOrMove(ctx, []Pair{{From: src, To: dst}}, MethodCopy)
			require.NoError(t, err)
			assert.True(t, completed)
			assert.Equal(t, tt.prompts, prompts)
			for name := range files {
				assert.Equal(t, tt.want, readFile(t, filepath.Join(dst, name)), name)
			}
		})
	}
}

func TestReplaceKeepBoth(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeTree(t, src, map[string]string{"a.txt": "new"})
	writeTree(t, dst, map[string]string{"a.txt": "old"})

	c.OnReplace = func(ctx context.Context, conflict Conflict) (ReplaceResult, error) {
		return KeepBoth(), nil
	}

	completed, sel, err := c.CopyOrMove(ctx, []Pair{{
		From: filepath.Join(src, "a.txt"),
		To:   filepath.Join(dst, "a.txt"),
	}}, MethodCopy)
	require.NoError(t, err)
	assert.True(t, completed)

	kept := filepath.Join(dst, "a (Copy 1).txt")
	assert.Equal(t, []string{kept}, sel.Selected)
	assert.Equal(t, "old", readFile(t, filepath.Join(dst, "a.txt")))
	assert.Equal(t, "new", readFile(t, kept))
}

func TestReplaceCancelIsSoft(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	writeTree(t, filepath.Join(root, "src"), map[string]string{"a.txt": "new"})
	writeTree(t, filepath.Join(root, "dst"), map[string]string{"a.txt": "old"})

	c.OnReplace = func(ctx context.Context, conflict Conflict) (ReplaceResult, error) {
		return Cancel(), nil
	}

	completed, _, err := c.CopyOrMove(ctx, []Pair{{
		From: filepath.Join(root, "src", "a.txt"),
		To:   filepath.Join(root, "dst", "a.txt"),
	}}, MethodCopy)
	require.NoError(t, err, "cancelling a prompt is not an error")
	assert.False(t, completed)
	assert.Equal(t, "old", readFile(t, filepath.Join(root, "dst", "a.txt")))
}

func TestMoveSkipKeepsSource(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dst := filepath.Join(root, "dst")
	writeTree(t, src, map[string]string{"keep.txt": "new", "go.txt": "go"})
	writeTree(t, dst, map[string]string{"keep.txt": "old"})
	c.DefaultReplace = Skip(false)

	completed, _, err := c.CopyOrMove(ctx, []Pair{{From: src, To: dst}}, MethodMove(false))
	require.NoError(t, err)
	assert.True(t, completed)

	assert.Equal(t, "new", readFile(t, filepath.Join(src, "keep.txt")), "skipped source stays")
	assert.NoFileExists(t, filepath.Join(src, "go.txt"))
	assert.Equal(t, "go", readFile(t, filepath.Join(dst, "go.txt")))
	assert.Equal(t, "old", readFile(t, filepath.Join(dst, "keep.txt")))
}

func TestVerifyCopy(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.bin": strings.Repeat("verify", 4096)})
	c.Verify = true
	c.BufferSize = 4096

	completed, _, err := c.CopyOrMove(ctx, []Pair{{
		From: filepath.Join(root, "a.bin"),
		To:   filepath.Join(root, "b.bin"),
	}}, MethodCopy)
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Equal(t, readFile(t, filepath.Join(root, "a.bin")), readFile(t, filepath.Join(root, "b.bin")))
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	err := checkFreeSpace([]Op{{Kind: OpCopy, To: filepath.Join(dir, "missing", "huge.bin"), size: 1 << 62}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough free space")

	require.NoError(t, checkFreeSpace([]Op{{Kind: OpCopy, To: filepath.Join(dir, "small.bin"), size: 1}}))
}

func TestPlanCleanupOrder(t *testing.T) {
	ctx, c := newTestContext(t)
	root := t.TempDir()
	src := filepath.Join(root, "a")
	writeTree(t, src, map[string]string{"b/c.txt": "c"})

	ops, _, err := c.plan(ctx, []Pair{{From: src, To: filepath.Join(root, "z")}}, MethodMove(false))
	require.NoError(t, err)

	kinds := make([]OpKind, len(ops))
	for i, op := range ops {
		kinds[i] = op.Kind
	}
	assert.Equal(t, []OpKind{OpMkdir, OpMkdir, OpMove, OpRemove, OpRmdir, OpRmdir}, kinds)
	assert.Equal(t, filepath.Join(src, "b", "c.txt"), ops[3].From)
	assert.Equal(t, filepath.Join(src, "b"), ops[4].From)
	assert.Equal(t, src, ops[5].From)
	assert.Equal(t, filepath.Join(root, "z", "b", "c.txt"), ops[2].To)
}
