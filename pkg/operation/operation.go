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
	"path/filepath"

	"github.com/walteh/fileops/pkg/archive"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/recursive"
	"github.com/walteh/fileops/pkg/trash"
)

// Selection lists the paths a caller should deselect (Ignored) and select
// (Selected) once an operation is done
type Selection = recursive.Selection

// 🏷️ Kind names an operation variant
type Kind string

const (
	KindCompress               Kind = "compress"
	KindCopy                   Kind = "copy"
	KindDelete                 Kind = "delete"
	KindDeleteTrash            Kind = "delete-trash"
	KindEmptyTrash             Kind = "empty-trash"
	KindExtract                Kind = "extract"
	KindMove                   Kind = "move"
	KindNewFile                Kind = "new-file"
	KindNewFolder              Kind = "new-folder"
	KindPermanentlyDelete      Kind = "permanently-delete"
	KindRemoveFromRecents      Kind = "remove-from-recents"
	KindRename                 Kind = "rename"
	KindRestore                Kind = "restore"
	KindSetExecutableAndLaunch Kind = "set-executable-and-launch"
	KindSetPermissions         Kind = "set-permissions"
)

// 🎯 Operation is one file operation request. The set of variants is closed;
// every variant is a plain value constructed by the caller and handed to
// Engine.Perform once.
type Operation interface {
	Kind() Kind
	// PendingText describes the operation while it runs
	PendingText(ratio float32, state controller.State) string
	// CompletedText describes the operation once it succeeded
	CompletedText() string
	// ShowProgressNotification reports whether the operation is long enough
	// to deserve a persistent progress display
	ShowProgressNotification() bool
	// Reverse returns the operation undoing this one, if there is one
	Reverse() (Operation, bool)

	perform(ctx context.Context, r *run) (Selection, error)
}

// 🗜️ Compress writes Paths into a new archive at To
type Compress struct {
	Paths    []string
	To       string
	Format   archive.Format
	Password string
}

// 📋 Copy copies Paths into the directory To
type Copy struct {
	Paths []string
	To    string
}

// 🗑️ Delete moves Paths to the trash
type Delete struct {
	Paths []string
}

// DeleteTrash permanently removes items from the trash
type DeleteTrash struct {
	Items []trash.Item
}

// EmptyTrash permanently removes everything in the trash
type EmptyTrash struct{}

// 📂 Extract unpacks every archive in Paths into its own directory under To
type Extract struct {
	Paths    []string
	To       string
	Password string
}

// 🚚 Move moves Paths into the directory To. CrossDeviceCopy skips the
// rename and link attempts and copies straight away.
type Move struct {
	Paths           []string
	To              string
	CrossDeviceCopy bool
}

// NewFile creates an empty file
type NewFile struct {
	Path string
}

// NewFolder creates an empty directory
type NewFolder struct {
	Path string
}

// PermanentlyDelete removes Paths without going through the trash
type PermanentlyDelete struct {
	Paths []string
}

// RemoveFromRecents forgets Paths in the recently used list
type RemoveFromRecents struct {
	Paths []string
}

// ✏️ Rename renames From to To, never replacing an existing To
type Rename struct {
	From string
	To   string
}

// ♻️ Restore puts trashed entries back. Paths are original paths resolved
// against the trash when the operation runs, Items are restored as given.
type Restore struct {
	Paths []string
	Items []trash.Item
}

// SetExecutableAndLaunch marks Path executable and starts it
type SetExecutableAndLaunch struct {
	Path string
}

// SetPermissions sets the permission bits of Path to Mode
type SetPermissions struct {
	Path string
	Mode fs.FileMode
}

func (Compress) Kind() Kind               { return KindCompress }
func (Copy) Kind() Kind                   { return KindCopy }
func (Delete) Kind() Kind                 { return KindDelete }
func (DeleteTrash) Kind() Kind            { return KindDeleteTrash }
func (EmptyTrash) Kind() Kind             { return KindEmptyTrash }
func (Extract) Kind() Kind                { return KindExtract }
func (Move) Kind() Kind                   { return KindMove }
func (NewFile) Kind() Kind                { return KindNewFile }
func (NewFolder) Kind() Kind              { return KindNewFolder }
func (PermanentlyDelete) Kind() Kind      { return KindPermanentlyDelete }
func (RemoveFromRecents) Kind() Kind      { return KindRemoveFromRecents }
func (Rename) Kind() Kind                 { return KindRename }
func (Restore) Kind() Kind                { return KindRestore }
func (SetExecutableAndLaunch) Kind() Kind { return KindSetExecutableAndLaunch }
func (SetPermissions) Kind() Kind         { return KindSetPermissions }

func (Compress) ShowProgressNotification() bool               { return true }
func (Copy) ShowProgressNotification() bool                   { return true }
func (Delete) ShowProgressNotification() bool                 { return true }
func (DeleteTrash) ShowProgressNotification() bool            { return true }
func (EmptyTrash) ShowProgressNotification() bool             { return true }
func (Extract) ShowProgressNotification() bool                { return true }
func (Move) ShowProgressNotification() bool                   { return true }
func (NewFile) ShowProgressNotification() bool                { return false }
func (NewFolder) ShowProgressNotification() bool              { return false }
func (PermanentlyDelete) ShowProgressNotification() bool      { return true }
func (RemoveFromRecents) ShowProgressNotification() bool      { return false }
func (Rename) ShowProgressNotification() bool                 { return false }
func (Restore) ShowProgressNotification() bool                { return true }
func (SetExecutableAndLaunch) ShowProgressNotification() bool { return false }
func (SetPermissions) ShowProgressNotification() bool         { return false }

// Reverse swaps the names back
func (o Rename) Reverse() (Operation, bool) {
	return Rename{From: o.To, To: o.From}, true
}

// Reverse restores the trashed paths
func (o Delete) Reverse() (Operation, bool) {
	return Restore{Paths: o.Paths}, true
}

// Reverse trashes the restored paths again
func (o Restore) Reverse() (Operation, bool) {
	paths := append([]string(nil), o.Paths...)
	for _, item := range o.Items {
		if item.OriginalPath != "" {
			paths = append(paths, item.OriginalPath)
		}
	}
	return Delete{Paths: paths}, true
}

func (Compress) Reverse() (Operation, bool)               { return nil, false }
func (Copy) Reverse() (Operation, bool)                   { return nil, false }
func (DeleteTrash) Reverse() (Operation, bool)            { return nil, false }
func (EmptyTrash) Reverse() (Operation, bool)             { return nil, false }
func (Extract) Reverse() (Operation, bool)                { return nil, false }
func (Move) Reverse() (Operation, bool)                   { return nil, false }
func (NewFile) Reverse() (Operation, bool)                { return nil, false }
func (NewFolder) Reverse() (Operation, bool)              { return nil, false }
func (PermanentlyDelete) Reverse() (Operation, bool)      { return nil, false }
func (RemoveFromRecents) Reverse() (Operation, bool)      { return nil, false }
func (SetExecutableAndLaunch) Reverse() (Operation, bool) { return nil, false }
func (SetPermissions) Reverse() (Operation, bool)         { return nil, false }

// text arguments shared by the pending and completed messages

func (o Compress) args() Args {
	return Args{"items": items(o.Paths), "from": parentName(o.Paths), "to": quote(filepath.Base(o.To))}
}

func (o Copy) args() Args {
	return Args{"items": items(o.Paths), "from": parentName(o.Paths), "to": quote(filepath.Base(o.To))}
}

func (o Delete) args() Args {
	return Args{"items": items(o.Paths), "from": parentName(o.Paths)}
}

func (o DeleteTrash) args() Args {
	return Args{"items": itemNames(o.Items)}
}

func (o Extract) args() Args {
	return Args{"items": items(o.Paths), "from": parentName(o.Paths), "to": quote(filepath.Base(o.To))}
}

func (o Move) args() Args {
	return Args{"items": items(o.Paths), "from": parentName(o.Paths), "to": quote(filepath.Base(o.To))}
}

func (o NewFile) args() Args {
	return Args{"name": quote(filepath.Base(o.Path)), "parent": quote(filepath.Base(filepath.Dir(o.Path)))}
}

func (o NewFolder) args() Args {
	return Args{"name": quote(filepath.Base(o.Path)), "parent": quote(filepath.Base(filepath.Dir(o.Path)))}
}

func (o PermanentlyDelete) args() Args {
	return Args{"items": items(o.Paths)}
}

func (o RemoveFromRecents) args() Args {
	return Args{"items": items(o.Paths)}
}

func (o Rename) args() Args {
	return Args{"from": quote(filepath.Base(o.From)), "to": quote(filepath.Base(o.To))}
}

func (o Restore) args() Args {
	names := items(o.Paths)
	if len(o.Paths) == 0 {
		names = itemNames(o.Items)
	} else if len(o.Items) > 0 {
		names = Translate("items", Args{"count": len(o.Paths) + len(o.Items)})
	}
	return Args{"items": names}
}

func (o SetExecutableAndLaunch) args() Args {
	return Args{"name": quote(filepath.Base(o.Path))}
}

func (o SetPermissions) args() Args {
	return Args{"name": quote(filepath.Base(o.Path)), "mode": fmt.Sprintf("%#o", o.Mode.Perm())}
}

func (o Compress) PendingText(ratio float32, state controller.State) string {
	return pending("compressing", o.args(), ratio, state)
}

func (o Copy) PendingText(ratio float32, state controller.State) string {
	return pending("copying", o.args(), ratio, state)
}

func (o Delete) PendingText(ratio float32, state controller.State) string {
	return pending("deleting", o.args(), ratio, state)
}

func (o DeleteTrash) PendingText(ratio float32, state controller.State) string {
	return pending("deleting-from-trash", o.args(), ratio, state)
}

func (o EmptyTrash) PendingText(ratio float32, state controller.State) string {
	return pending("emptying-trash", nil, ratio, state)
}

func (o Extract) PendingText(ratio float32, state controller.State) string {
	return pending("extracting", o.args(), ratio, state)
}

func (o Move) PendingText(ratio float32, state controller.State) string {
	return pending("moving", o.args(), ratio, state)
}

func (o NewFile) PendingText(ratio float32, state controller.State) string {
	return pending("creating", o.args(), ratio, state)
}

func (o NewFolder) PendingText(ratio float32, state controller.State) string {
	return pending("creating", o.args(), ratio, state)
}

func (o PermanentlyDelete) PendingText(ratio float32, state controller.State) string {
	return pending("permanently-deleting", o.args(), ratio, state)
}

func (o RemoveFromRecents) PendingText(ratio float32, state controller.State) string {
	return pending("removing-from-recents", o.args(), ratio, state)
}

func (o Rename) PendingText(ratio float32, state controller.State) string {
	return pending("renaming", o.args(), ratio, state)
}

func (o Restore) PendingText(ratio float32, state controller.State) string {
	return pending("restoring", o.args(), ratio, state)
}

func (o SetExecutableAndLaunch) PendingText(ratio float32, state controller.State) string {
	return pending("setting-executable-and-launching", o.args(), ratio, state)
}

func (o SetPermissions) PendingText(ratio float32, state controller.State) string {
	return pending("setting-permissions", o.args(), ratio, state)
}

func (o Compress) CompletedText() string          { return Translate("compressed", o.args()) }
func (o Copy) CompletedText() string              { return Translate("copied", o.args()) }
func (o Delete) CompletedText() string            { return Translate("deleted", o.args()) }
func (o DeleteTrash) CompletedText() string       { return Translate("deleted-from-trash", o.args()) }
func (o EmptyTrash) CompletedText() string        { return Translate("emptied-trash", nil) }
func (o Extract) CompletedText() string           { return Translate("extracted", o.args()) }
func (o Move) CompletedText() string              { return Translate("moved", o.args()) }
func (o NewFile) CompletedText() string           { return Translate("created", o.args()) }
func (o NewFolder) CompletedText() string         { return Translate("created", o.args()) }
func (o PermanentlyDelete) CompletedText() string { return Translate("permanently-deleted", o.args()) }
func (o RemoveFromRecents) CompletedText() string { return Translate("removed-from-recents", o.args()) }
func (o Rename) CompletedText() string            { return Translate("renamed", o.args()) }
func (o Restore) CompletedText() string           { return Translate("restored", o.args()) }
func (o SetExecutableAndLaunch) CompletedText() string {
	return Translate("set-executable-and-launched", o.args())
}
func (o SetPermissions) CompletedText() string { return Translate("set-permissions", o.args()) }
