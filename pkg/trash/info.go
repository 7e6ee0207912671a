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

package trash

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

const (
	infoHeader = "[Trash Info]"
	infoExt    = ".trashinfo"
	infoTime   = "2006-01-02T15:04:05"
)

type info struct {
	path      string
	deletedAt time.Time
}

func (i info) encode() string {
	escaped := (&url.URL{Path: i.path}).EscapedPath()
	return fmt.Sprintf("%s\nPath=%s\nDeletionDate=%s\n", infoHeader, escaped, i.deletedAt.Format(infoTime))
}

func parseInfo(r io.Reader) (info, error) {
	var (
		out     info
		inGroup bool
		hasPath bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inGroup = line == infoHeader
			continue
		}
		if !inGroup {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Path":
			path, err := url.PathUnescape(strings.TrimSpace(value))
			if err != nil {
				return info{}, errors.Errorf("unescaping path %q: %w", value, err)
			}
			out.path = path
			hasPath = true
		case "DeletionDate":
			at, err := time.ParseInLocation(infoTime, strings.TrimSpace(value), time.Local)
			if err != nil {
				return info{}, errors.Errorf("parsing deletion date %q: %w", value, err)
			}
			out.deletedAt = at
		}
	}
	if err := scanner.Err(); err != nil {
		return info{}, errors.Errorf("reading trash info: %w", err)
	}
	if !hasPath {
		return info{}, errors.New("trash info has no path")
	}
	return out, nil
}
