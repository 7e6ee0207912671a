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

//go:build !unix

package trash

import (
	"gitlab.com/tozd/go/errors"
)

func defaultHome() string {
	return ""
}

func (t *Trash) Delete(path string) (Item, error) {
	return Item{}, errors.Errorf("trashing %s: %w", path, ErrUnsupported)
}

func (t *Trash) List() ([]Item, error) {
	return nil, errors.WithStack(ErrUnsupported)
}

func (t *Trash) Restore(item Item) (string, error) {
	return "", errors.Errorf("restoring %s: %w", item.Name, ErrUnsupported)
}

func (t *Trash) Purge(item Item) error {
	return errors.Errorf("purging %s: %w", item.Name, ErrUnsupported)
}
