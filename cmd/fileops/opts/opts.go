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

package opts

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/config"
	"github.com/walteh/fileops/pkg/log"
	"github.com/walteh/fileops/pkg/operation"
	"github.com/walteh/fileops/pkg/recents"
	"github.com/walteh/fileops/pkg/trash"
	"gitlab.com/tozd/go/errors"
)

// 🔧 RootOpts holds everything commands share. It is filled once the root
// command has parsed its flags.
type RootOpts struct {
	Config  *config.Config
	Engine  *operation.Engine
	Trash   *trash.Trash
	Recents *recents.Store
	Console *log.Logger
	// Interactive enables prompts for conflicts and passwords
	Interactive bool
}

// Flags are the persistent flags of the root command
type Flags struct {
	ConfigFile string
	Debug      bool
	Conflict   string
}

// 🏗️ Init loads the configuration and builds the engine. It returns the
// context commands should run with.
func (o *RootOpts) Init(ctx context.Context, flags Flags, console io.Writer) (context.Context, error) {
	level := zerolog.InfoLevel
	if flags.Debug {
		level = zerolog.DebugLevel
	}
	logger := log.Setup(level, "")
	ctx = logger.WithContext(ctx)

	path := flags.ConfigFile
	if path == "" {
		path = config.Find()
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(ctx, path)
		if err != nil {
			return ctx, errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if flags.Conflict != "" {
		cfg.Conflict = config.Conflict(flags.Conflict)
		if err := cfg.Validate(); err != nil {
			return ctx, errors.Errorf("validating --on-conflict: %w", err)
		}
	}

	if cfg.LogFile != "" {
		logger = log.Setup(level, cfg.LogFile)
		ctx = logger.WithContext(ctx)
	}

	o.Config = cfg
	o.Trash = trash.Default()
	if cfg.TrashDir != "" {
		o.Trash = trash.New(cfg.TrashDir, true)
	}
	o.Recents = recents.Default()
	if cfg.RecentsFile != "" {
		o.Recents = recents.New(cfg.RecentsFile)
	}

	engine, err := operation.New(operation.Options{Config: cfg, Trash: o.Trash, Recents: o.Recents})
	if err != nil {
		return ctx, errors.Errorf("creating engine: %w", err)
	}
	o.Engine = engine
	o.Console = log.New(console, logger)

	return log.NewContext(ctx, o.Console), nil
}
