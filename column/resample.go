/*
	Copyright 2023 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

package column

import (
	"fmt"

	"github.com/ilhamster/tracechart/aggregate"
	"github.com/ilhamster/tracechart/sequence"
)

// Resample returns a lazily computed column holding, for each group in b,
// the aggregate of the receiver's rows in that group.  In append mode the
// last group is omitted, since rows may still be appended to it.
func (c *Column) Resample(kind aggregate.Kind, b Boundaries, appendMode bool) (*Column, error) {
	fn, err := aggregate.New(c.Kind(), kind)
	if err != nil {
		return nil, fmt.Errorf("failed to resample column: %w", err)
	}
	return New(&resampled{
		src:        c.seq,
		fn:         fn,
		b:          b,
		appendMode: appendMode,
		kind:       aggregate.ResultKind(c.Kind(), kind),
		last:       -1,
	}), nil
}

type resampled struct {
	src        sequence.Sequence
	fn         aggregate.Function
	b          Boundaries
	appendMode bool
	kind       sequence.Kind
	// last is the group fn currently holds.  Revisiting it only folds in
	// rows appended since.
	last int
}

func (r *resampled) Size() int {
	n := r.b.Len() - 1
	if r.appendMode && n > 0 {
		n--
	}
	return n
}

func (r *resampled) Float(i int) float64 {
	r.b.Len()
	from := r.b.At(i)
	length := r.b.At(i+1) - from
	if i != r.last || length < r.fn.Count() {
		r.fn.Reset()
		r.last = i
	}
	if n := r.fn.Count(); length > n {
		r.fn.Add(r.src, from+n, length-n)
	}
	v, err := r.fn.Value()
	if err != nil {
		// Boundaries are strictly increasing, so no group is empty.
		panic(fmt.Sprintf("resampling group %d [%d, %d): %v", i, from, from+length, err))
	}
	return v
}

func (r *resampled) Kind() sequence.Kind {
	return r.kind
}
