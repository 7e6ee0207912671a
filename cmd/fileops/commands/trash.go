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

package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// 🗑️ NewTrashCmd creates the trash command and its subcommands
func NewTrashCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and manage the trash",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List trashed items, oldest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				items, err := ro.Trash.List()
				if err != nil {
					return errors.Errorf("listing trash: %w", err)
				}
				if len(items) == 0 {
					pterm.Info.Println("trash is empty")
					return nil
				}
				data := pterm.TableData{{"Name", "Original path", "Deleted"}}
				for _, item := range items {
					data = append(data, []string{item.Name, item.OriginalPath, item.DeletedAt.Format(time.DateTime)})
				}
				return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
			},
		},
		&cobra.Command{
			Use:   "restore PATH...",
			Short: "Restore the latest trashed item of each original path",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				return run(cmd.Context(), ro, operation.Restore{Paths: paths})
			},
		},
		&cobra.Command{
			Use:   "purge PATH...",
			Short: "Permanently delete the latest trashed item of each original path",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				items, err := ro.Trash.Find(paths)
				if err != nil {
					return errors.Errorf("finding trashed items: %w", err)
				}
				return run(cmd.Context(), ro, operation.DeleteTrash{Items: items})
			},
		},
		&cobra.Command{
			Use:   "empty",
			Short: "Permanently delete everything in the trash",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd.Context(), ro, operation.EmptyTrash{})
			},
		},
	)

	return cmd
}

// NewRecentsCmd creates the recents command and its subcommands
func NewRecentsCmd(ro *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recents",
		Short: "Inspect and edit the recently used files list",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recently used local files",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := ro.Recents.List()
				if err != nil {
					return errors.Errorf("listing recents: %w", err)
				}
				data := pterm.TableData{{"Path", "Modified"}}
				for _, entry := range entries {
					data = append(data, []string{entry.Path, entry.Modified.Local().Format(time.DateTime)})
				}
				return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
			},
		},
		&cobra.Command{
			Use:   "forget PATH...",
			Short: "Remove paths from the recently used files list",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				paths, err := absPaths(args)
				if err != nil {
					return err
				}
				return run(cmd.Context(), ro, operation.RemoveFromRecents{Paths: paths})
			},
		},
	)

	return cmd
}
