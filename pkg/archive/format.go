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

// Package archive extracts and creates archives under a controller, so every
// codec honours pause, cancellation and progress the same way.
package archive

import (
	"github.com/gabriel-vasile/mimetype"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrUnknownFormat    = errors.Base("unknown archive format")
	ErrPasswordRequired = errors.Base("password required")
	ErrUnsafePath       = errors.Base("entry escapes extraction directory")
)

// 📦 Format is the closed set of archive formats the engine reads.
// Only TarGz and Zip can be written.
type Format int

const (
	FormatTarGz Format = iota
	FormatTar
	FormatTarBz2
	FormatTarXz
	FormatTarZst
	FormatZip
)

func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return "tar.gz"
	case FormatTar:
		return "tar"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatTarXz:
		return "tar.xz"
	case FormatTarZst:
		return "tar.zst"
	case FormatZip:
		return "zip"
	default:
		return "unknown"
	}
}

// Extension is the file suffix written archives get
func (f Format) Extension() string {
	return "." + f.String()
}

// mimeFormats maps sniffed mime types onto formats. Compressed streams are
// always treated as compressed tarballs.
var mimeFormats = map[string]Format{
	"application/zip":     FormatZip,
	"application/gzip":    FormatTarGz,
	"application/x-tar":   FormatTar,
	"application/x-bzip2": FormatTarBz2,
	"application/x-xz":    FormatTarXz,
	"application/zstd":    FormatTarZst,
}

// 🔍 Sniff detects the format of the archive at path from its content.
// Formats derived from zip, such as jar or docx, sniff as zip.
func Sniff(path string) (Format, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return 0, errors.Errorf("detecting format of %s: %w", path, err)
	}
	for m := mime; m != nil; m = m.Parent() {
		for name, format := range mimeFormats {
			if m.Is(name) {
				return format, nil
			}
		}
	}
	return 0, errors.Errorf("%s (%s): %w", path, mime.String(), ErrUnknownFormat)
}
