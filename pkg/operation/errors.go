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

	"github.com/walteh/fileops/pkg/archive"
	"github.com/walteh/fileops/pkg/controller"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrCancelled is returned by Perform when the operation was cancelled
	// by the caller, either through the controller or a conflict prompt
	ErrCancelled = errors.Base("operation cancelled")
	// ErrPasswordRequired matches an *Error of KindPasswordRequired
	ErrPasswordRequired = errors.Base("password required")
)

// ErrorKind is the flat error taxonomy callers branch on
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindPasswordRequired
)

func (k ErrorKind) String() string {
	if k == KindPasswordRequired {
		return "password required"
	}
	return "generic"
}

// ❌ Error is the failure of an operation. Callers re-prompt for a password
// on KindPasswordRequired and report everything else.
type Error struct {
	Kind    ErrorKind
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Is makes errors.Is(err, ErrPasswordRequired) work on password errors
func (e *Error) Is(target error) bool {
	return target == ErrPasswordRequired && e.Kind == KindPasswordRequired
}

// normalize maps any failure onto ErrCancelled or an *Error
func normalize(err error) error {
	if err == nil {
		return nil
	}
	var opErr *Error
	switch {
	case errors.As(err, &opErr):
		return opErr
	case errors.Is(err, ErrCancelled),
		errors.Is(err, controller.ErrCancelled),
		errors.Is(err, context.Canceled):
		return errors.WithStack(ErrCancelled)
	case errors.Is(err, archive.ErrPasswordRequired):
		return &Error{Kind: KindPasswordRequired, Message: err.Error(), err: err}
	default:
		return &Error{Kind: KindGeneric, Message: err.Error(), err: err}
	}
}
