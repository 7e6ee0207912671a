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

package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/walteh/fileops/cmd/fileops/commands"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/config"
)

// newRootCmd builds the command tree writing operation lines to console
func newRootCmd(console io.Writer) *cobra.Command {
	var flags opts.Flags
	ro := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "fileops",
		Short: "Copy, move, trash and archive files",
		Long: `fileops performs file manager operations from the command line:
recursive copy and move with conflict prompts, trash and restore,
archive extraction and compression, and recently used list edits.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := ro.Init(cmd.Context(), flags, console)
			if err != nil {
				return err
			}
			ro.Interactive = ro.Config.Conflict == config.ConflictAsk && isTerminal()
			cmd.SetContext(ctx)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "config file path, searched in the XDG config dirs when empty")
	rootCmd.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.Conflict, "on-conflict", "", "override the conflict policy: ask, replace, skip, keep_both or cancel")

	rootCmd.AddCommand(
		commands.NewCopyCmd(ro),
		commands.NewMoveCmd(ro),
		commands.NewDeleteCmd(ro),
		commands.NewExtractCmd(ro),
		commands.NewCompressCmd(ro),
		commands.NewRenameCmd(ro),
		commands.NewChmodCmd(ro),
		commands.NewLaunchCmd(ro),
		commands.NewNewFileCmd(ro),
		commands.NewNewFolderCmd(ro),
		commands.NewTrashCmd(ro),
		commands.NewRecentsCmd(ro),
	)

	return rootCmd
}

// isTerminal reports whether stdin is attached to a terminal
func isTerminal() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
