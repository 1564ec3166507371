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

// Package column provides views over numeric sequences, together with the
// primitives used to decimate them: bisection, sort permutations, grouping
// into boundaries, and resampling each group through an aggregate.Function.
//
// Views, orderings, concatenations and resamplings are lazy: they read
// through to their source sequence and so observe rows appended to it.
// Slice is the only operation that copies.
//
// A Column is not safe for concurrent use.
package column

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ilhamster/tracechart/sequence"
)

// Column is a view over a sequence.
type Column struct {
	base  sequence.Sequence
	seq   sequence.Sequence // base, or a caching wrapper around it
	cache *cachingSequence
	stats statsAccumulator
}

// New returns a new Column over seq.
func New(seq sequence.Sequence) *Column {
	return &Column{
		base: seq,
		seq:  seq,
	}
}

// Sequence returns the receiver's values as a Sequence.
func (c *Column) Sequence() sequence.Sequence {
	return c.seq
}

// Size returns the number of rows currently in the receiver.
func (c *Column) Size() int {
	return c.seq.Size()
}

// Value returns the value at row i.
func (c *Column) Value(i int) float64 {
	return c.seq.Float(i)
}

// Kind returns the receiver's element kind.
func (c *Column) Kind() sequence.Kind {
	return c.seq.Kind()
}

// Regular returns the receiver's regular descriptor, and false if the
// receiver is not regular.
func (c *Column) Regular() (*sequence.Regular, bool) {
	r, ok := c.base.(*sequence.Regular)
	return r, ok
}

// IsRegular returns true if the receiver's rows are evenly spaced.
func (c *Column) IsRegular() bool {
	_, ok := c.Regular()
	return ok
}

func (c *Column) checkRun(from, length int) {
	if from < 0 || length < 0 || from+length > c.Size() {
		panic(fmt.Sprintf("column run [%d, %d) out of range [0, %d)", from, from+length, c.Size()))
	}
}

// View returns a non-copying window of length rows starting at row from.
func (c *Column) View(from, length int) *Column {
	c.checkRun(from, length)
	if r, ok := c.Regular(); ok {
		return New(sequence.NewRegular(r.Float(from), r.Step(), length))
	}
	return New(&view{src: c.seq, from: from, length: length})
}

// ViewFrom returns a non-copying window starting at row from and following
// the growth of the receiver.
func (c *Column) ViewFrom(from int) *Column {
	c.checkRun(from, 0)
	if r, ok := c.Regular(); ok {
		return New(sequence.NewRegularFunc(r.Float(from), r.Step(), func() int {
			return max(0, r.Size()-from)
		}))
	}
	return New(&view{src: c.seq, from: from, length: -1})
}

// ViewOrder returns a non-copying view whose row i is the receiver's row
// order[i].
func (c *Column) ViewOrder(order []int) *Column {
	return New(&ordered{src: c.seq, order: order})
}

// Slice returns a copy of length rows starting at row from.
func (c *Column) Slice(from, length int) *Column {
	c.checkRun(from, length)
	if r, ok := c.Regular(); ok {
		return New(sequence.NewRegular(r.Float(from), r.Step(), length))
	}
	var seq sequence.Sequence
	switch c.Kind() {
	case sequence.Int16:
		seq = materialize[int16](c.seq, from, length)
	case sequence.Int32:
		seq = materialize[int32](c.seq, from, length)
	case sequence.Int64:
		seq = materialize[int64](c.seq, from, length)
	case sequence.Float32:
		seq = materialize[float32](c.seq, from, length)
	default:
		seq = materialize[float64](c.seq, from, length)
	}
	return New(seq)
}

func materialize[T sequence.Number](src sequence.Sequence, from, length int) *sequence.Slice[T] {
	out := make([]T, length)
	if ts, ok := src.(sequence.Typed[T]); ok {
		for i := range out {
			out[i] = ts.At(from + i)
		}
	} else {
		for i := range out {
			out[i] = T(src.Float(from + i))
		}
	}
	return sequence.NewSlice(out...)
}

// Concat returns the first aLength rows of a followed by all rows of b.  Two
// regular columns with equal steps, where b continues exactly where the
// first aLength rows of a end, collapse into a single regular column.
func Concat(a *Column, aLength int, b *Column) *Column {
	a.checkRun(0, aLength)
	ra, aok := a.Regular()
	rb, bok := b.Regular()
	if aok && bok && ra.Step() == rb.Step() && rb.Start() == ra.Float(aLength) {
		return New(sequence.NewRegularFunc(ra.Start(), ra.Step(), func() int {
			return aLength + rb.Size()
		}))
	}
	return New(&concatenated{a: a.seq, aLength: aLength, b: b.seq})
}

// Bisect returns the lower bound of value within the increasing rows
// [from, from+length): the index i such that row i-1 < value <= row i.  It
// returns from+length if every row is less than value.
func (c *Column) Bisect(value float64, from, length int) int {
	c.checkRun(from, length)
	lo, hi := from, from+length
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if c.seq.Float(mid) < value {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// BisectOrder is like Bisect over all rows, but visits rows in the order
// given by order, which must sort the receiver.  It returns a position in
// order, not a row.
func (c *Column) BisectOrder(value float64, order []int) int {
	lo, hi := 0, len(order)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if c.seq.Float(order[mid]) < value {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Sort returns the rows [from, from+length) ordered by increasing value.
// Equal values keep their row order.
func (c *Column) Sort(from, length int) []int {
	c.checkRun(from, length)
	order := make([]int, length)
	for i := range order {
		order[i] = from + i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(c.seq.Float(a), c.seq.Float(b))
	})
	return order
}

type view struct {
	src    sequence.Sequence
	from   int
	length int // negative if the view follows src's growth
}

func (v *view) Size() int {
	if v.length < 0 {
		return max(0, v.src.Size()-v.from)
	}
	return v.length
}

func (v *view) Float(i int) float64 {
	return v.src.Float(v.from + i)
}

func (v *view) Kind() sequence.Kind {
	return v.src.Kind()
}

func (v *view) Bounds(from, length int) (min, max float64) {
	if b, ok := v.src.(sequence.Bounder); ok {
		return b.Bounds(v.from+from, length)
	}
	return boundsOf(v, from, length)
}

type ordered struct {
	src   sequence.Sequence
	order []int
}

func (o *ordered) Size() int {
	return len(o.order)
}

func (o *ordered) Float(i int) float64 {
	return o.src.Float(o.order[i])
}

func (o *ordered) Kind() sequence.Kind {
	return o.src.Kind()
}

type concatenated struct {
	a       sequence.Sequence
	aLength int
	b       sequence.Sequence
}

func (c *concatenated) Size() int {
	return c.aLength + c.b.Size()
}

func (c *concatenated) Float(i int) float64 {
	if i < c.aLength {
		return c.a.Float(i)
	}
	return c.b.Float(i - c.aLength)
}

func (c *concatenated) Kind() sequence.Kind {
	if ak, bk := c.a.Kind(), c.b.Kind(); ak == bk {
		return ak
	}
	return sequence.Float64
}
