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

package config

import (
	"context"
	"os"
	"strings"

	"github.com/adrg/xdg"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Define HCL schema
	type hclConfig struct {
		BufferSize       int      `hcl:"buffer_size,optional"`
		CopyWord         string   `hcl:"copy_word,optional"`
		Conflict         string   `hcl:"conflict,optional"`
		Verify           bool     `hcl:"verify,optional"`
		CheckFreeSpace   bool     `hcl:"check_free_space,optional"`
		ProgressInterval string   `hcl:"progress_interval,optional"`
		TrashDir         string   `hcl:"trash_dir,optional"`
		RecentsFile      string   `hcl:"recents_file,optional"`
		LogFile          string   `hcl:"log_file,optional"`
		Exclude          []string `hcl:"exclude,optional"`
	}

	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	return &Config{
		BufferSize:       hclCfg.BufferSize,
		CopyWord:         hclCfg.CopyWord,
		Conflict:         Conflict(hclCfg.Conflict),
		Verify:           hclCfg.Verify,
		CheckFreeSpace:   hclCfg.CheckFreeSpace,
		ProgressInterval: hclCfg.ProgressInterval,
		TrashDir:         hclCfg.TrashDir,
		RecentsFile:      hclCfg.RecentsFile,
		LogFile:          hclCfg.LogFile,
		Exclude:          hclCfg.Exclude,
	}, nil
}

// evalContext exposes the environment as env.NAME and the home directory as home
func evalContext() *hcl.EvalContext {
	env := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !hclIdentifier(name) {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	envVal := cty.EmptyObjectVal
	if len(env) > 0 {
		envVal = cty.ObjectVal(env)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  envVal,
			"home": cty.StringVal(xdg.Home),
		},
	}
}

func hclIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '-' || r >= '0' && r <= '9'):
		default:
			return false
		}
	}
	return true
}
