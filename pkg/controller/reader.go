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
	"os"

	"gitlab.com/tozd/go/errors"
)

// 📖 Reader is a cancellation and progress aware reader over an open file.
//
// Every Read consults the controller first, so decoders stacked on top of it
// stop at the next read once the operation is cancelled.
type Reader struct {
	ctx     context.Context
	ctrl    *Controller
	file    *os.File
	current int64
	total   int64
}

// 🏭 NewReader wraps file, sizing progress from its metadata
func NewReader(ctx context.Context, ctrl *Controller, file *os.File) (*Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, errors.Errorf("reading metadata of %s: %w", file.Name(), err)
	}
	return &Reader{
		ctx:   ctx,
		ctrl:  ctrl,
		file:  file,
		total: info.Size(),
	}, nil
}

// Read implements io.Reader
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctrl.Check(r.ctx); err != nil {
		return 0, err
	}
	n, err := r.file.Read(p)
	r.current += int64(n)
	if r.total > 0 {
		r.ctrl.SetProgress(float32(r.current) / float32(r.total))
	}
	return n, err
}

// ReadAt implements io.ReaderAt for random access decoders such as zip. It
// checks the controller but leaves progress to the caller.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if err := r.ctrl.Check(r.ctx); err != nil {
		return 0, err
	}
	return r.file.ReadAt(p, off)
}

// Current returns the number of bytes read so far
func (r *Reader) Current() int64 {
	return r.current
}

// Total returns the size the reader was created with
func (r *Reader) Total() int64 {
	return r.total
}
