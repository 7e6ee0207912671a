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
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/archive"
	"github.com/walteh/fileops/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// AskPassword reads an archive password. Replaced in tests.
var AskPassword = func(archive string) (string, error) {
	return pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password for " + filepath.Base(archive))
}

// NewExtractCmd creates the extract command
func NewExtractCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		to       string
		password string
	)

	cmd := &cobra.Command{
		Use:   "extract ARCHIVE...",
		Short: "Extract archives, each into its own directory",
		Long: `Extract unpacks tar, tar.gz, tar.bz2, tar.xz, tar.zst and zip archives.
Every archive gets a new directory named after it inside --to.
Encrypted zip archives ask for a password when none is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			dir, err := filepath.Abs(to)
			if err != nil {
				return errors.Errorf("resolving --to: %w", err)
			}

			err = run(cmd.Context(), ro, operation.Extract{Paths: paths, To: dir, Password: password})
			if password != "" || !ro.Interactive || !errors.Is(err, operation.ErrPasswordRequired) {
				return err
			}

			// partial output of the first attempt stays; the retry gets a unique name
			password, err = AskPassword(paths[0])
			if err != nil {
				return errors.Errorf("reading password: %w", err)
			}
			return run(cmd.Context(), ro, operation.Extract{Paths: paths, To: dir, Password: password})
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", ".", "directory to extract into")
	cmd.Flags().StringVar(&password, "password", "", "password of encrypted zip archives")
	return cmd
}

// NewCompressCmd creates the compress command
func NewCompressCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		output   string
		format   string
		password string
	)

	cmd := &cobra.Command{
		Use:   "compress PATH...",
		Short: "Compress paths into a new archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}

			var f archive.Format
			switch strings.ToLower(format) {
			case "zip":
				f = archive.FormatZip
			case "tgz", "tar.gz":
				f = archive.FormatTarGz
			default:
				return errors.Errorf("unsupported format %q, want zip or tar.gz", format)
			}
			if password != "" && f != archive.FormatZip {
				return errors.New("only zip archives can be encrypted")
			}

			if output == "" {
				output = filepath.Join(filepath.Dir(paths[0]), filepath.Base(paths[0])+f.Extension())
				if len(paths) > 1 {
					output = filepath.Join(filepath.Dir(paths[0]), "Archive"+f.Extension())
				}
			}
			out, err := filepath.Abs(output)
			if err != nil {
				return errors.Errorf("resolving --output: %w", err)
			}

			return run(cmd.Context(), ro, operation.Compress{Paths: paths, To: out, Format: f, Password: password})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path, named after the first path when empty")
	cmd.Flags().StringVarP(&format, "format", "f", "zip", "archive format: zip or tar.gz")
	cmd.Flags().StringVar(&password, "password", "", "encrypt zip entries with AES-256")
	return cmd
}
