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
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/walteh/fileops/cmd/fileops/opts"
	"github.com/walteh/fileops/pkg/controller"
	"github.com/walteh/fileops/pkg/log"
	"github.com/walteh/fileops/pkg/operation"
	"github.com/walteh/fileops/pkg/recursive"
	"gitlab.com/tozd/go/errors"
)

// 🤝 Prompt answers a destination conflict. Replaced in tests.
var Prompt = promptReplace

const (
	answerReplace    = "Replace"
	answerReplaceAll = "Replace all"
	answerKeepBoth   = "Keep both"
	answerSkip       = "Skip"
	answerSkipAll    = "Skip all"
	answerCancel     = "Cancel"
)

func promptReplace(conflict recursive.Conflict) (recursive.ReplaceResult, error) {
	options := []string{answerReplace, answerKeepBoth, answerSkip, answerCancel}
	if conflict.Multiple {
		options = []string{answerReplace, answerReplaceAll, answerKeepBoth, answerSkip, answerSkipAll, answerCancel}
	}

	answer, err := pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithDefaultOption(answerSkip).
		Show(fmt.Sprintf("%s already exists", conflict.To))
	if err != nil {
		return recursive.Cancel(), errors.Errorf("prompting: %w", err)
	}
	return answerResult(answer), nil
}

func answerResult(answer string) recursive.ReplaceResult {
	switch answer {
	case answerReplace:
		return recursive.Replace(false)
	case answerReplaceAll:
		return recursive.Replace(true)
	case answerKeepBoth:
		return recursive.KeepBoth()
	case answerSkip:
		return recursive.Skip(false)
	case answerSkipAll:
		return recursive.Skip(true)
	default:
		return recursive.Cancel()
	}
}

// progress renders one operation's progress bar
type progress struct {
	bar *pterm.ProgressbarPrinter
}

func startProgress(op operation.Operation) *progress {
	if !op.ShowProgressNotification() {
		return nil
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(op.PendingText(0, controller.Running)).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return nil
	}
	return &progress{bar: bar}
}

func (p *progress) update(msg operation.Progress) {
	if p == nil {
		return
	}
	p.bar.UpdateTitle(msg.Text)
	if step := int(msg.Ratio*100) - p.bar.Current; step > 0 {
		p.bar.Add(step)
	}
}

func (p *progress) stop() {
	if p == nil {
		return
	}
	_, _ = p.bar.Stop()
}

// 🏃 run performs ops concurrently and reports each as it ends. The error
// joins every failure; cancelled operations are not failures.
func run(ctx context.Context, ro *opts.RootOpts, ops ...operation.Operation) error {
	console := log.FromContext(ctx)
	runner := operation.NewRunner(ro.Engine)

	bars := map[uuid.UUID]*progress{}
	for _, op := range ops {
		id := runner.Submit(ctx, op)
		console.LogOperation(ctx, log.OperationEvent{
			ID:     id.String(),
			Kind:   string(op.Kind()),
			Text:   op.PendingText(0, controller.Running),
			Status: log.StatusStarted,
		})
		if len(ops) == 1 {
			bars[id] = startProgress(op)
		}
	}

	var failures []error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range runner.Events() {
			failures = append(failures, handle(ctx, ro, runner, bars, ev)...)
		}
	}()

	if err := runner.Wait(); err != nil {
		return errors.Errorf("waiting for operations: %w", err)
	}
	<-done

	if len(ops) > 1 {
		console.Summary()
	}
	return errors.Join(failures...)
}

func handle(ctx context.Context, ro *opts.RootOpts, runner *operation.Runner, bars map[uuid.UUID]*progress, ev operation.Event) []error {
	console := log.FromContext(ctx)
	logged := log.OperationEvent{ID: ev.ID.String(), Kind: string(ev.Op.Kind())}

	switch msg := ev.Message.(type) {
	case operation.ReplaceRequest:
		if !ro.Interactive {
			zerolog.Ctx(ctx).Debug().Str("to", msg.Conflict.To).Msg("not interactive, skipping conflict")
			msg.Reply(recursive.Skip(false))
			return nil
		}
		res, err := Prompt(msg.Conflict)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("replace prompt failed")
			runner.Cancel(ev.ID)
			return nil
		}
		msg.Reply(res)
	case operation.Progress:
		bars[ev.ID].update(msg)
	case operation.Completed:
		bars[ev.ID].stop()
		logged.Status, logged.Text = log.StatusCompleted, msg.Text
		console.LogOperation(ctx, logged)
		for _, path := range msg.Selection.Selected {
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("selected")
		}
	case operation.Cancelled:
		bars[ev.ID].stop()
		logged.Status, logged.Text = log.StatusCancelled, ev.Op.PendingText(1, controller.Cancelled)
		console.LogOperation(ctx, logged)
	case operation.Failed:
		bars[ev.ID].stop()
		logged.Status, logged.Text, logged.Err = log.StatusFailed, ev.Op.PendingText(1, controller.Failed), msg.Err
		console.LogOperation(ctx, logged)
		return []error{errors.Errorf("%s: %w", ev.Op.Kind(), msg.Err)}
	}
	return nil
}

// absPaths resolves every argument against the working directory
func absPaths(args []string) ([]string, error) {
	paths := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return nil, errors.Errorf("resolving %s: %w", arg, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
