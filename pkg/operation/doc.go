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

/*
Package operation performs file operations requested by a file manager.

🎯 Purpose:
- Defines every operation as a plain value (Copy, Move, Delete, Extract, ...)
- Dispatches each to the recursive engine, the archive codecs, the trash or
  the recents store
- Turns every failure into either ErrCancelled or an *Error

🔄 Flow:

	caller ──Operation──▶ Engine.Perform ──▶ recursive / archive / trash / recents
	   ▲                        │
	   │                        ├── ReplaceRequest (conflict policy "ask")
	   └──── Reply ◀────────────┘

	Runner.Submit ──▶ goroutine(Perform) ──▶ Events: Progress… then
	                                          Completed | Failed | Cancelled

⚡ Guarantees:
- Progress reads 1 once Perform returns
- A panic while performing becomes a generic *Error
- Cancelling from a replace prompt is ErrCancelled, never a failure

🔍 Example:

	engine, err := operation.New(operation.Options{Config: cfg})
	if err != nil {
		return err
	}
	ctrl := controller.New()
	defer ctrl.Release()
	sel, err := engine.Perform(ctx, operation.Copy{Paths: paths, To: dir}, nil, ctrl.Clone())
*/
package operation
