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

	"github.com/walteh/fileops/pkg/config"
	"github.com/walteh/fileops/pkg/recursive"
)

// 🤝 ReplaceRequest asks the caller how to resolve a destination conflict.
// The engine blocks until Reply is called or the operation's context ends.
type ReplaceRequest struct {
	Conflict recursive.Conflict
	reply    chan recursive.ReplaceResult
}

// Reply answers the request. Only the first reply counts.
func (r ReplaceRequest) Reply(res recursive.ReplaceResult) {
	select {
	case r.reply <- res:
	default:
	}
}

// policy returns the fixed answer for a conflict policy, false for ask
func policy(c config.Conflict) (recursive.ReplaceResult, bool) {
	switch c {
	case config.ConflictReplace:
		return recursive.Replace(true), true
	case config.ConflictSkip:
		return recursive.Skip(true), true
	case config.ConflictKeepBoth:
		return recursive.KeepBoth(), true
	case config.ConflictCancel:
		return recursive.Cancel(), true
	default:
		return recursive.Skip(true), false
	}
}

// ask forwards conflicts to requests and waits for the answer
func ask(requests chan<- ReplaceRequest) recursive.ReplaceFunc {
	return func(ctx context.Context, conflict recursive.Conflict) (recursive.ReplaceResult, error) {
		req := ReplaceRequest{Conflict: conflict, reply: make(chan recursive.ReplaceResult, 1)}
		select {
		case requests <- req:
		case <-ctx.Done():
			return recursive.Cancel(), ctx.Err()
		}
		select {
		case res := <-req.reply:
			return res, nil
		case <-ctx.Done():
			return recursive.Cancel(), ctx.Err()
		}
	}
}
