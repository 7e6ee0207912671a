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
	"io/fs"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// NewRenameCmd creates the rename command
func NewRenameCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "rename FROM TO",
		Short: "Rename a file or directory, never replacing TO",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), ro, operation.Rename{From: paths[0], To: paths[1]})
		},
	}
}

// NewChmodCmd creates the chmod command
func NewChmodCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "chmod MODE PATH...",
		Short: "Set permission bits, MODE is octal",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := strconv.ParseUint(args[0], 8, 32)
			if err != nil || mode > 0o777 {
				return errors.Errorf("invalid mode %q", args[0])
			}
			paths, err := absPaths(args[1:])
			if err != nil {
				return err
			}
			ops := make([]operation.Operation, 0, len(paths))
			for _, path := range paths {
				ops = append(ops, operation.SetPermissions{Path: path, Mode: fs.FileMode(mode)})
			}
			return run(cmd.Context(), ro, ops...)
		},
	}
}

// NewLaunchCmd creates the launch command
func NewLaunchCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "launch PATH",
		Short: "Mark a file executable and start it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), ro, operation.SetExecutableAndLaunch{Path: paths[0]})
		},
	}
}

// NewNewFileCmd creates the new-file command
func NewNewFileCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "new-file PATH",
		Short: "Create an empty file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), ro, operation.NewFile{Path: paths[0]})
		},
	}
}

// NewNewFolderCmd creates the new-folder command
func NewNewFolderCmd(ro *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "new-folder PATH",
		Short: "Create an empty directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), ro, operation.NewFolder{Path: paths[0]})
		},
	}
}
