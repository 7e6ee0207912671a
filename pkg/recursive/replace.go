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

package recursive

import (
	"context"
	"io/fs"
)

// ReplaceAction is the decision taken for a destination that already exists
type ReplaceAction int

const (
	ActionReplace ReplaceAction = iota
	ActionKeepBoth
	ActionSkip
	ActionCancel
)

// String returns a string representation of ReplaceAction
func (a ReplaceAction) String() string {
	switch a {
	case ActionReplace:
		return "replace"
	case ActionKeepBoth:
		return "keep_both"
	case ActionSkip:
		return "skip"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// 🤝 ReplaceResult answers a Conflict. ApplyToAll on Replace or Skip makes
// the answer stick for the rest of the operation.
type ReplaceResult struct {
	Action     ReplaceAction
	ApplyToAll bool
}

func Replace(applyToAll bool) ReplaceResult {
	return ReplaceResult{Action: ActionReplace, ApplyToAll: applyToAll}
}

func KeepBoth() ReplaceResult {
	return ReplaceResult{Action: ActionKeepBoth}
}

func Skip(applyToAll bool) ReplaceResult {
	return ReplaceResult{Action: ActionSkip, ApplyToAll: applyToAll}
}

func Cancel() ReplaceResult {
	return ReplaceResult{Action: ActionCancel}
}

func (r ReplaceResult) sticky() bool {
	return r.ApplyToAll && (r.Action == ActionReplace || r.Action == ActionSkip)
}

// ⚠️ Conflict describes a destination that already exists
type Conflict struct {
	From     string
	To       string
	FromInfo fs.FileInfo
	ToInfo   fs.FileInfo
	// Multiple is set when more entries may conflict after this one
	Multiple bool
}

// ReplaceFunc resolves a Conflict, typically by asking the user. It blocks
// until an answer is available.
type ReplaceFunc func(ctx context.Context, conflict Conflict) (ReplaceResult, error)
