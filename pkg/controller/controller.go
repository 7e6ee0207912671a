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

package controller

import (
	"context"
	"sync"
	"sync/atomic"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrCancelled is returned by Check once the operation has been cancelled
	ErrCancelled = errors.Base("operation cancelled")
	// ErrFailed is returned by Check once the operation has been marked failed
	ErrFailed = errors.Base("operation failed")
)

// 🚦 State is the run state shared by every handle of a Controller
type State int

const (
	Running State = iota
	Paused
	Cancelled
	Failed
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type inner struct {
	mu       sync.Mutex
	state    State
	progress float32
	// closed and replaced on every state transition
	wake chan struct{}
}

// 🎮 Controller gates one logical operation: pause, cancel and progress.
//
// Handles returned by Clone share the same state. Exactly one handle, the one
// returned by New, is primary: releasing it cancels the operation unless the
// operation already failed.
type Controller struct {
	inner    *inner
	primary  bool
	released atomic.Bool
}

// 🏭 New creates a running controller and returns its primary handle
func New() *Controller {
	return &Controller{
		inner: &inner{
			state: Running,
			wake:  make(chan struct{}),
		},
		primary: true,
	}
}

// Clone returns a non-primary handle sharing this controller's state
func (c *Controller) Clone() *Controller {
	return &Controller{inner: c.inner}
}

// IsPrimary reports whether this handle owns the operation
func (c *Controller) IsPrimary() bool {
	return c.primary
}

// 🧹 Release drops the handle. Releasing the primary handle cancels the
// operation unless it has failed. Releasing a clone does nothing.
func (c *Controller) Release() {
	if !c.primary || !c.released.CompareAndSwap(false, true) {
		return
	}
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	if c.inner.state != Failed {
		c.setStateLocked(Cancelled)
	}
}

// CancelOnDone cancels the controller when ctx is done. The returned func
// detaches the binding.
func (c *Controller) CancelOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, c.Cancel)
}

// ✅ Check returns nil while running, blocks while paused and returns an
// error once cancelled or failed. Call it before every discrete unit of work.
func (c *Controller) Check(ctx context.Context) error {
	for {
		c.inner.mu.Lock()
		state := c.inner.state
		wake := c.inner.wake
		c.inner.mu.Unlock()

		switch state {
		case Running:
			return nil
		case Cancelled:
			return errors.WithStack(ErrCancelled)
		case Failed:
			return errors.WithStack(ErrFailed)
		}

		select {
		case <-wake:
		case <-ctx.Done():
			return errors.Errorf("waiting while paused: %w", ctx.Err())
		}
	}
}

// State returns the current state
func (c *Controller) State() State {
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	return c.inner.state
}

// SetState moves the controller to state and wakes blocked checks
func (c *Controller) SetState(state State) {
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	c.setStateLocked(state)
}

func (c *Controller) setStateLocked(state State) {
	c.inner.state = state
	close(c.inner.wake)
	c.inner.wake = make(chan struct{})
}

// Cancel marks the operation cancelled
func (c *Controller) Cancel() {
	c.SetState(Cancelled)
}

// Pause suspends every subsequent Check until unpaused
func (c *Controller) Pause() {
	c.SetState(Paused)
}

// Unpause resumes a paused operation. It never revives a cancelled or
// failed one.
func (c *Controller) Unpause() {
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	if c.inner.state == Cancelled || c.inner.state == Failed {
		return
	}
	c.setStateLocked(Running)
}

// Fail marks the operation failed
func (c *Controller) Fail() {
	c.SetState(Failed)
}

func (c *Controller) IsCancelled() bool { return c.State() == Cancelled }

func (c *Controller) IsFailed() bool { return c.State() == Failed }

func (c *Controller) IsPaused() bool { return c.State() == Paused }

// Progress returns the last progress written, in [0, 1]
func (c *Controller) Progress() float32 {
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	return c.inner.progress
}

// SetProgress stores progress. Last write wins.
func (c *Controller) SetProgress(progress float32) {
	c.inner.mu.Lock()
	defer c.inner.mu.Unlock()
	c.inner.progress = progress
}
