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
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/fileops/pkg/controller"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 📨 Message is the payload of an Event: one of ReplaceRequest, Progress,
// Completed, Failed or Cancelled
type Message interface {
	isMessage()
}

// Progress reports a running operation's ratio at each tick
type Progress struct {
	Ratio float32
	State controller.State
	Text  string
}

// Completed is the last event of a successful operation
type Completed struct {
	Selection Selection
	Text      string
}

// Failed is the last event of a failed operation. Err is an *Error.
type Failed struct {
	Err error
}

// Cancelled is the last event of a cancelled operation
type Cancelled struct{}

func (ReplaceRequest) isMessage() {}
func (Progress) isMessage()       {}
func (Completed) isMessage()      {}
func (Failed) isMessage()         {}
func (Cancelled) isMessage()      {}

// Event is a message about one submitted operation
type Event struct {
	ID      uuid.UUID
	Op      Operation
	Message Message
}

type job struct {
	ctrl   *controller.Controller
	cancel context.CancelFunc
}

// 🏃 Runner performs submitted operations concurrently, each on its own
// goroutine, and reports on them through Events. Events must be drained
// for operations to finish.
type Runner struct {
	engine   *Engine
	interval time.Duration
	group    errgroup.Group
	events   chan Event

	mu   sync.Mutex
	jobs map[uuid.UUID]*job
}

// 🏗️ NewRunner creates a runner performing operations with engine
func NewRunner(engine *Engine) *Runner {
	return &Runner{
		engine:   engine,
		interval: engine.Config().Interval(),
		events:   make(chan Event, 16),
		jobs:     map[uuid.UUID]*job{},
	}
}

// Events streams every operation's messages. It closes after Wait returns.
func (r *Runner) Events() <-chan Event {
	return r.events
}

// ➕ Submit starts op and returns its id. The operation is cancelled when
// ctx is done.
func (r *Runner) Submit(ctx context.Context, op Operation) uuid.UUID {
	id := uuid.New()
	ctx, cancel := context.WithCancel(ctx)
	ctrl := controller.New()
	stop := ctrl.CancelOnDone(ctx)

	r.mu.Lock()
	r.jobs[id] = &job{ctrl: ctrl.Clone(), cancel: cancel}
	r.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().Str("id", id.String()).Logger()
	ctx = logger.WithContext(ctx)
	logger.Debug().Str("kind", string(op.Kind())).Msg("operation submitted")

	r.group.Go(func() error {
		defer func() {
			stop()
			cancel()
			ctrl.Release()
			r.mu.Lock()
			delete(r.jobs, id)
			r.mu.Unlock()
		}()

		requests := make(chan ReplaceRequest)
		done := make(chan struct{})
		forwarded := make(chan struct{})
		go func() {
			defer close(forwarded)
			r.forward(ctx, id, op, ctrl.Clone(), requests, done)
		}()

		sel, err := r.engine.Perform(ctx, op, requests, ctrl.Clone())
		close(done)
		<-forwarded

		var msg Message
		switch {
		case err == nil:
			msg = Completed{Selection: sel, Text: op.CompletedText()}
		case errors.Is(err, ErrCancelled):
			msg = Cancelled{}
		default:
			ctrl.Fail()
			msg = Failed{Err: err}
		}
		r.events <- Event{ID: id, Op: op, Message: msg}
		return nil
	})
	return id
}

// forward relays replace requests and ticks progress until done closes
func (r *Runner) forward(ctx context.Context, id uuid.UUID, op Operation, ctrl *controller.Controller, requests <-chan ReplaceRequest, done <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case req := <-requests:
			select {
			case r.events <- Event{ID: id, Op: op, Message: req}:
			case <-ctx.Done():
			}
		case <-ticker.C:
			ratio, state := ctrl.Progress(), ctrl.State()
			ev := Event{ID: id, Op: op, Message: Progress{Ratio: ratio, State: state, Text: op.PendingText(ratio, state)}}
			// a slow consumer only misses ticks
			select {
			case r.events <- ev:
			default:
			}
		}
	}
}

func (r *Runner) lookup(id uuid.UUID) (*job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	return j, ok
}

// Pause pauses the operation at its next check. It reports whether id is running.
func (r *Runner) Pause(id uuid.UUID) bool {
	j, ok := r.lookup(id)
	if ok {
		j.ctrl.Pause()
	}
	return ok
}

// Resume continues a paused operation
func (r *Runner) Resume(id uuid.UUID) bool {
	j, ok := r.lookup(id)
	if ok {
		j.ctrl.Unpause()
	}
	return ok
}

// ❌ Cancel cancels the operation, including any replace prompt it waits on
func (r *Runner) Cancel(id uuid.UUID) bool {
	j, ok := r.lookup(id)
	if ok {
		j.ctrl.Cancel()
		j.cancel()
	}
	return ok
}

// ⏳ Wait blocks until every submitted operation finished, then closes Events.
// No operation may be submitted once Wait is called.
func (r *Runner) Wait() error {
	err := r.group.Wait()
	close(r.events)
	return err
}
