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
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
	"gitlab.com/tozd/go/errors"
)

// checkFreeSpace fails when the bytes a plan copies exceed what its
// destination filesystems have free
func checkFreeSpace(ops []Op) error {
	need := map[string]uint64{}
	for _, op := range ops {
		if op.Kind != OpCopy && op.Kind != OpMove {
			continue
		}
		need[existingAncestor(filepath.Dir(op.To))] += uint64(op.size)
	}

	for dir, bytes := range need {
		usage, err := disk.Usage(dir)
		if err != nil {
			return errors.Errorf("reading free space of %s: %w", dir, err)
		}
		if bytes > usage.Free {
			return errors.Errorf("not enough free space in %s: need %d bytes, have %d", dir, bytes, usage.Free)
		}
	}
	return nil
}

func existingAncestor(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
