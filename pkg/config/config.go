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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

const (
	DefaultBufferSize       = 4 * 1024 * 1024
	MinBufferSize           = 4 * 1024
	DefaultCopyWord         = "Copy"
	DefaultProgressInterval = 100 * time.Millisecond
)

// 🤝 Conflict is the policy for a destination that already exists
type Conflict string

const (
	ConflictAsk      Conflict = "ask"
	ConflictReplace  Conflict = "replace"
	ConflictSkip     Conflict = "skip"
	ConflictKeepBoth Conflict = "keep_both"
	ConflictCancel   Conflict = "cancel"
)

func (c Conflict) valid() bool {
	switch c {
	case ConflictAsk, ConflictReplace, ConflictSkip, ConflictKeepBoth, ConflictCancel:
		return true
	default:
		return false
	}
}

// 📚 Config represents the complete configuration
type Config struct {
	BufferSize       int      `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
	CopyWord         string   `json:"copy_word,omitempty" yaml:"copy_word,omitempty"`
	Conflict         Conflict `json:"conflict,omitempty" yaml:"conflict,omitempty"`
	Verify           bool     `json:"verify,omitempty" yaml:"verify,omitempty"`
	CheckFreeSpace   bool     `json:"check_free_space,omitempty" yaml:"check_free_space,omitempty"`
	ProgressInterval string   `json:"progress_interval,omitempty" yaml:"progress_interval,omitempty"`
	TrashDir         string   `json:"trash_dir,omitempty" yaml:"trash_dir,omitempty"`
	RecentsFile      string   `json:"recents_file,omitempty" yaml:"recents_file,omitempty"`
	LogFile          string   `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	Exclude          []string `json:"exclude,omitempty" yaml:"exclude,omitempty"`

	interval time.Duration
}

// 🏭 Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	// the zero config always validates
	_ = cfg.Validate()
	return cfg
}

// 🎯 Load loads the configuration from a file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🔎 Find returns the first config file in the user's config directories,
// or an empty path when there is none
func Find() string {
	for _, name := range []string{"config.yaml", "config.yml", "config.json", "config.hcl"} {
		if path, err := xdg.SearchConfigFile(filepath.Join("fileops", name)); err == nil {
			return path
		}
	}
	return ""
}

// 🔍 Validate fills defaults and checks that the configuration is usable
func (cfg *Config) Validate() error {
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.BufferSize < MinBufferSize {
		return errors.Errorf("buffer_size must be at least %d bytes, got %d", MinBufferSize, cfg.BufferSize)
	}

	if cfg.CopyWord == "" {
		cfg.CopyWord = DefaultCopyWord
	}

	if cfg.Conflict == "" {
		cfg.Conflict = ConflictAsk
	}
	cfg.Conflict = Conflict(strings.ToLower(string(cfg.Conflict)))
	if !cfg.Conflict.valid() {
		return errors.Errorf("conflict must be one of ask, replace, skip, keep_both, cancel, got %q", cfg.Conflict)
	}

	if cfg.ProgressInterval == "" {
		cfg.ProgressInterval = DefaultProgressInterval.String()
	}
	interval, err := time.ParseDuration(cfg.ProgressInterval)
	if err != nil {
		return errors.Errorf("parsing progress_interval: %w", err)
	}
	if interval <= 0 {
		return errors.Errorf("progress_interval must be positive, got %s", interval)
	}
	cfg.interval = interval

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	cfg.TrashDir = expandPath(cfg.TrashDir)
	cfg.RecentsFile = expandPath(cfg.RecentsFile)
	cfg.LogFile = expandPath(cfg.LogFile)

	return nil
}

// ⏱️ Interval returns the parsed progress interval
func (cfg *Config) Interval() time.Duration {
	if cfg.interval <= 0 {
		return DefaultProgressInterval
	}
	return cfg.interval
}

func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		return xdg.Home
	}
	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(xdg.Home, path[2:])
	}
	return filepath.Clean(path)
}

// 🔧 YAMLParser implements the Parser interface for YAML files
type YAMLParser struct{}

func init() {
	Register(&YAMLParser{})
}

func (p *YAMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")
}

func (p *YAMLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Errorf("parsing YAML: %w", err)
	}
	return &cfg, nil
}
