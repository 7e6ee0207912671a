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

// Package config loads the engine settings for fileops.
//
//	            +-------------+
//	            |   Config    |
//	            | (Settings)  |
//	            +------+------+
//	                   |
//	      +------------+------------+
//	      |            |            |
//	+-----+----+ +-----+----+ +-----+----+
//	|   YAML   | |   JSON   | |   HCL    |
//	|  Parser  | |  Parser  | |  Parser  |
//	+----------+ +----------+ +----------+
//
// 🎯 Purpose:
// - Reads settings from a file in any registered format
// - Fills defaults and rejects values the engine cannot run with
//
// 🔄 Flow:
// 1. GetParser picks a parser from the file name
// 2. The parser decodes into Config, unknown keys are errors
// 3. Validate fills defaults and normalises paths
//
// ⚙️ Keys:
//
//	buffer_size        bytes per copy buffer, default 4 MiB, at least 4 KiB
//	copy_word          word used in duplicate names, default "Copy"
//	conflict           ask | replace | skip | keep_both | cancel, default ask
//	verify             re-read copies and compare checksums
//	check_free_space   refuse copies that do not fit the destination
//	progress_interval  how often progress is reported, default 100ms
//	trash_dir          home trash directory, platform default when empty
//	recents_file       recently-used.xbel location, platform default when empty
//	log_file           rolling debug log, disabled when empty
//	exclude            doublestar patterns skipped when compressing
//
// HCL files can reference ${env.NAME} and ${home}:
//
//	trash_dir = "${home}/.local/share/Trash"
//	exclude   = ["**/.git", "**/*.tmp"]
//
// 🔍 Example:
//
//	cfg, err := config.Load(ctx, "fileops.yaml")
//	if err != nil {
//		return err
//	}
//	fmt.Println(cfg.Interval())
package config
