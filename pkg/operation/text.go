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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/trash"
)

// Args are the named parameters of a status message
type Args map[string]any

// 🌐 Translate renders the message id with args. Replace it to localise
// status text; the default renders English.
var Translate = English

var english = map[string]string{
	"compressing":                      "Compressing {items} from {from} to {to}",
	"compressed":                       "Compressed {items} from {from} to {to}",
	"copying":                          "Copying {items} from {from} to {to}",
	"copied":                           "Copied {items} from {from} to {to}",
	"deleting":                         "Moving {items} from {from} to trash",
	"deleted":                          "Moved {items} from {from} to trash",
	"deleting-from-trash":              "Permanently deleting {items} from trash",
	"deleted-from-trash":               "Permanently deleted {items} from trash",
	"emptying-trash":                   "Emptying trash",
	"emptied-trash":                    "Emptied trash",
	"extracting":                       "Extracting {items} from {from} to {to}",
	"extracted":                        "Extracted {items} from {from} to {to}",
	"moving":                           "Moving {items} from {from} to {to}",
	"moved":                            "Moved {items} from {from} to {to}",
	"creating":                         "Creating {name} in {parent}",
	"created":                          "Created {name} in {parent}",
	"permanently-deleting":             "Permanently deleting {items}",
	"permanently-deleted":              "Permanently deleted {items}",
	"removing-from-recents":            "Removing {items} from recents",
	"removed-from-recents":             "Removed {items} from recents",
	"renaming":                         "Renaming {from} to {to}",
	"renamed":                          "Renamed {from} to {to}",
	"restoring":                        "Restoring {items} from trash",
	"restored":                         "Restored {items} from trash",
	"setting-executable-and-launching": "Setting {name} as executable and launching",
	"set-executable-and-launched":      "Set {name} as executable and launched",
	"setting-permissions":              "Setting permissions of {name} to {mode}",
	"set-permissions":                  "Set permissions of {name} to {mode}",
	"items":                            "{count} items",
	"progress":                         "{text} ({percent}%)",
	"progress-paused":                  "{text} ({percent}%, paused)",
	"progress-cancelled":               "{text} ({percent}%, cancelled)",
	"progress-failed":                  "{text} ({percent}%, failed)",
}

// English renders id from the built in English messages. Unknown ids are
// rendered as the id itself.
func English(id string, args Args) string {
	tmpl, ok := english[id]
	if !ok {
		tmpl = id
	}
	if len(args) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(args)*2)
	for k, v := range args {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func pending(id string, args Args, ratio float32, state controller.State) string {
	progress := "progress"
	switch state {
	case controller.Paused:
		progress = "progress-paused"
	case controller.Cancelled:
		progress = "progress-cancelled"
	case controller.Failed:
		progress = "progress-failed"
	}
	percent := int(min(max(ratio, 0), 1) * 100)
	return Translate(progress, Args{"text": Translate(id, args), "percent": percent})
}

// items names a single path or counts several
func items(paths []string) string {
	if len(paths) == 1 {
		return quote(filepath.Base(paths[0]))
	}
	return Translate("items", Args{"count": len(paths)})
}

func itemNames(list []trash.Item) string {
	if len(list) == 1 {
		return quote(list[0].Name)
	}
	return Translate("items", Args{"count": len(list)})
}

// parentName names the directory the paths come from
func parentName(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return quote(filepath.Base(filepath.Dir(paths[0])))
}

func quote(name string) string {
	return "“" + name + "”"
}
