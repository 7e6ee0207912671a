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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/fileops/pkg/archive"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/trash"
)

func TestCompletedText(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want string
	}{
		{
			name: "copy one",
			op:   Copy{Paths: []string{"/home/me/Documents/report.pdf"}, To: "/home/me/Desktop"},
			want: "Copied “report.pdf” from “Documents” to “Desktop”",
		},
		{
			name: "move several",
			op:   Move{Paths: []string{"/src/a", "/src/b", "/src/c"}, To: "/dst"},
			want: "Moved 3 items from “src” to “dst”",
		},
		{
			name: "compress",
			op:   Compress{Paths: []string{"/p/photos"}, To: "/p/photos.zip", Format: archive.FormatZip},
			want: "Compressed “photos” from “p” to “photos.zip”",
		},
		{
			name: "delete",
			op:   Delete{Paths: []string{"/tmp/x.txt"}},
			want: "Moved “x.txt” from “tmp” to trash",
		},
		{
			name: "delete from trash",
			op:   DeleteTrash{Items: []trash.Item{{Name: "x.txt"}}},
			want: "Permanently deleted “x.txt” from trash",
		},
		{name: "empty trash", op: EmptyTrash{}, want: "Emptied trash"},
		{name: "new folder", op: NewFolder{Path: "/home/me/new"}, want: "Created “new” in “me”"},
		{name: "rename", op: Rename{From: "/a/old.txt", To: "/a/new.txt"}, want: "Renamed “old.txt” to “new.txt”"},
		{
			name: "restore mixed",
			op:   Restore{Paths: []string{"/a"}, Items: []trash.Item{{Name: "b"}}},
			want: "Restored 2 items from trash",
		},
		{name: "permissions", op: SetPermissions{Path: "/bin/tool", Mode: 0o755}, want: "Set permissions of “tool” to 0755"},
		{name: "launch", op: SetExecutableAndLaunch{Path: "/bin/tool"}, want: "Set “tool” as executable and launched"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.CompletedText())
		})
	}
}

func TestPendingText(t *testing.T) {
	op := Rename{From: "/a/old.txt", To: "/a/new.txt"}

	tests := []struct {
		name  string
		ratio float32
		state controller.State
		want  string
	}{
		{name: "running", ratio: 0.25, state: controller.Running, want: "Renaming “old.txt” to “new.txt” (25%)"},
		{name: "paused", ratio: 0.5, state: controller.Paused, want: "Renaming “old.txt” to “new.txt” (50%, paused)"},
		{name: "cancelled", ratio: 1, state: controller.Cancelled, want: "Renaming “old.txt” to “new.txt” (100%, cancelled)"},
		{name: "failed", ratio: 0, state: controller.Failed, want: "Renaming “old.txt” to “new.txt” (0%, failed)"},
		{name: "clamped", ratio: 7, state: controller.Running, want: "Renaming “old.txt” to “new.txt” (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, op.PendingText(tt.ratio, tt.state))
		})
	}
}

func TestTranslateIsReplaceable(t *testing.T) {
	prev := Translate
	t.Cleanup(func() { Translate = prev })

	Translate = func(id string, args Args) string {
		if id == "renamed" {
			return "Umbenannt: " + args["from"].(string)
		}
		return English(id, args)
	}
	assert.Equal(t, "Umbenannt: “a.txt”", Rename{From: "/a.txt", To: "/b.txt"}.CompletedText())
}

func TestEnglishUnknownID(t *testing.T) {
	assert.Equal(t, "no-such-message", English("no-such-message", Args{"x": 1}))
}

func TestReverse(t *testing.T) {
	rename := Rename{From: "/a", To: "/b"}
	back, ok := rename.Reverse()
	require.True(t, ok)
	assert.Equal(t, Rename{From: "/b", To: "/a"}, back)
	again, ok := back.Reverse()
	require.True(t, ok)
	assert.Equal(t, rename, again)

	del := Delete{Paths: []string{"/x", "/y"}}
	undo, ok := del.Reverse()
	require.True(t, ok)
	assert.Equal(t, Restore{Paths: []string{"/x", "/y"}}, undo)
	redo, ok := undo.Reverse()
	require.True(t, ok)
	assert.Equal(t, del, redo)

	restore := Restore{Items: []trash.Item{{Name: "z", OriginalPath: "/z", DeletedAt: time.Now()}}}
	redo, ok = restore.Reverse()
	require.True(t, ok)
	assert.Equal(t, Delete{Paths: []string{"/z"}}, redo)

	for _, op := range []Operation{
		Copy{}, Move{}, Compress{}, Extract{}, NewFile{}, NewFolder{},
		PermanentlyDelete{}, DeleteTrash{}, EmptyTrash{}, RemoveFromRecents{},
		SetPermissions{}, SetExecutableAndLaunch{},
	} {
		_, ok := op.Reverse()
		assert.False(t, ok, "%s has no reverse", op.Kind())
	}
}

func TestShowProgressNotification(t *testing.T) {
	long := []Operation{Compress{}, Copy{}, Delete{}, DeleteTrash{}, EmptyTrash{}, Extract{}, Move{}, PermanentlyDelete{}, Restore{}}
	short := []Operation{NewFile{}, NewFolder{}, RemoveFromRecents{}, Rename{}, SetExecutableAndLaunch{}, SetPermissions{}}

	for _, op := range long {
		assert.True(t, op.ShowProgressNotification(), op.Kind())
	}
	for _, op := range short {
		assert.False(t, op.ShowProgressNotification(), op.Kind())
	}
}
