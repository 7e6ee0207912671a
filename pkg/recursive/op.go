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
	"fmt"
)

// OpKind is the primitive filesystem action an Op performs
type OpKind int

const (
	OpCopy OpKind = iota
	OpMove
	OpMkdir
	OpRemove
	OpRmdir
	OpSymlink
)

// String returns a string representation of OpKind
func (k OpKind) String() string {
	switch k {
	case OpCopy:
		return "copy"
	case OpMove:
		return "move"
	case OpMkdir:
		return "mkdir"
	case OpRemove:
		return "remove"
	case OpRmdir:
		return "rmdir"
	case OpSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// 📦 Op is one step of a flattened execution plan
type Op struct {
	Kind OpKind
	From string
	To   string
	// Target is the link target of an OpSymlink
	Target string

	root bool
	size int64
}

// String returns a string representation of Op
func (op Op) String() string {
	switch op.Kind {
	case OpRemove, OpRmdir:
		return fmt.Sprintf("%s %s", op.Kind, op.From)
	case OpSymlink:
		return fmt.Sprintf("%s %s -> %s (%s)", op.Kind, op.From, op.To, op.Target)
	default:
		return fmt.Sprintf("%s %s -> %s", op.Kind, op.From, op.To)
	}
}

// cleanup returns the op that removes op's source once a move has run
func (op Op) cleanup() (Op, bool) {
	switch op.Kind {
	case OpCopy, OpMove, OpSymlink:
		return Op{Kind: OpRemove, From: op.From}, true
	case OpMkdir:
		return Op{Kind: OpRmdir, From: op.From}, true
	default:
		return Op{}, false
	}
}

// 🔀 Method selects between copying and moving
type Method struct {
	move            bool
	crossDeviceCopy bool
}

// MethodCopy copies sources and leaves them in place
var MethodCopy = Method{}

// MethodMove moves sources. With crossDeviceCopy set, files are copied
// without first attempting a hard link.
func MethodMove(crossDeviceCopy bool) Method {
	return Method{move: true, crossDeviceCopy: crossDeviceCopy}
}

// IsMove reports whether sources are consumed
func (m Method) IsMove() bool {
	return m.move
}

// Pair is one source and the full path it is copied or moved to
type Pair struct {
	From string
	To   string
}

// 🎯 Selection lists paths a caller should select, and paths it should no
// longer consider, once an operation completes
type Selection struct {
	Ignored  []string
	Selected []string
}

// Merge appends other onto s
func (s *Selection) Merge(other Selection) {
	s.Ignored = append(s.Ignored, other.Ignored...)
	s.Selected = append(s.Selected, other.Selected...)
}
