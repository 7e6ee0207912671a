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
	"github.com/spf13/cobra"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/operation"
)

// NewCopyCmd creates the copy command
func NewCopyCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "copy SOURCE... DIRECTORY",
		Short: "Copy files and directories into a directory",
		Long: `Copy copies every source, recursively, into DIRECTORY.
A source copied into its own directory gets a "(Copy N)" name.
Existing destinations are resolved with the conflict policy.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			last := len(paths) - 1
			return run(cmd.Context(), ro, operation.Copy{Paths: paths[:last], To: paths[last]})
		},
	}
}

// NewMoveCmd creates the move command
func NewMoveCmd(ro *opts.RootOpts) *cobra.Command {
	var crossDeviceCopy bool

	cmd := &cobra.Command{
		Use:   "move SOURCE... DIRECTORY",
		Short: "Move files and directories into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			last := len(paths) - 1
			return run(cmd.Context(), ro, operation.Move{Paths: paths[:last], To: paths[last], CrossDeviceCopy: crossDeviceCopy})
		},
	}

	cmd.Flags().BoolVar(&crossDeviceCopy, "cross-device-copy", false, "copy then delete without trying rename or hard links")
	return cmd
}

// NewDeleteCmd creates the delete command
func NewDeleteCmd(ro *opts.RootOpts) *cobra.Command {
	var permanent bool

	cmd := &cobra.Command{
		Use:   "delete PATH...",
		Short: "Move paths to the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			if permanent {
				return run(cmd.Context(), ro, operation.PermanentlyDelete{Paths: paths})
			}
			return run(cmd.Context(), ro, operation.Delete{Paths: paths})
		},
	}

	cmd.Flags().BoolVarP(&permanent, "permanent", "p", false, "delete without going through the trash")
	return cmd
}
