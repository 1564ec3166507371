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

// Package aggregate provides resettable reducers that fold contiguous runs
// of a sequence into a single value.  Functions are looked up by element
// kind and aggregation kind through a closed factory table.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/ilhamster/tracechart/sequence"
	"github.com/sgostarter/i/commerr"
)

// ErrEmptyGroup is returned by Function.Value when nothing was added since
// the last Reset.
var ErrEmptyGroup = errors.New("no values added to group")

// Kind is an aggregation kind.
type Kind int

// Supported aggregation kinds.
const (
	First Kind = iota
	Last
	Min
	Max
	Average
	Sum
)

func (k Kind) String() string {
	switch k {
	case First:
		return "first"
	case Last:
		return "last"
	case Min:
		return "min"
	case Max:
		return "max"
	case Average:
		return "average"
	case Sum:
		return "sum"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Function folds runs of a sequence into a single value.
type Function interface {
	// Reset discards all added values.
	Reset()
	// Add folds seq[from, from+length) into the function and returns the
	// number of values added since the last Reset.
	Add(seq sequence.Sequence, from, length int) int
	// Value returns the aggregate of everything added since the last Reset,
	// or ErrEmptyGroup if nothing was.
	Value() (float64, error)
	// Count returns the number of values added since the last Reset.
	Count() int
}

type key struct {
	elem sequence.Kind
	kind Kind
}

var factories = map[key]func() Function{}

func init() {
	register[int16, int64](sequence.Int16)
	register[int32, int64](sequence.Int32)
	register[int64, int64](sequence.Int64)
	register[float32, float64](sequence.Float32)
	register[float64, float64](sequence.Float64)
}

// register populates the factory table for element type T, whose sums
// accumulate in A.
func register[T sequence.Number, A int64 | float64](elem sequence.Kind) {
	factories[key{elem, First}] = func() Function { return &first[T]{} }
	factories[key{elem, Last}] = func() Function { return &last[T]{} }
	factories[key{elem, Min}] = func() Function { return &extremum[T]{max: false} }
	factories[key{elem, Max}] = func() Function { return &extremum[T]{max: true} }
	factories[key{elem, Sum}] = func() Function { return &sum[T, A]{} }
	factories[key{elem, Average}] = func() Function { return &sum[T, A]{average: true} }
}

// New returns a new Function of the requested kind over elements of the
// requested kind.
func New(elem sequence.Kind, kind Kind) (Function, error) {
	f, ok := factories[key{elem, kind}]
	if !ok {
		return nil, fmt.Errorf("%w: no %s aggregate for %s elements", commerr.ErrInvalidArgument, kind, elem)
	}
	return f(), nil
}

// ResultKind returns the element kind of values produced by a Function of
// the provided kind over elements of the provided kind.
func ResultKind(elem sequence.Kind, kind Kind) sequence.Kind {
	switch kind {
	case Average:
		return sequence.Float64
	case Sum:
		if elem.IsInteger() {
			return sequence.Int64
		}
		return sequence.Float64
	default:
		return elem
	}
}

func accessor[T sequence.Number](seq sequence.Sequence) func(int) T {
	if ts, ok := seq.(sequence.Typed[T]); ok {
		return ts.At
	}
	return func(i int) T {
		return T(seq.Float(i))
	}
}

type first[T sequence.Number] struct {
	value T
	count int
}

func (f *first[T]) Reset() {
	f.count = 0
}

func (f *first[T]) Add(seq sequence.Sequence, from, length int) int {
	if length <= 0 {
		return f.count
	}
	if f.count == 0 {
		f.value = accessor[T](seq)(from)
	}
	f.count += length
	return f.count
}

func (f *first[T]) Value() (float64, error) {
	if f.count == 0 {
		return 0, ErrEmptyGroup
	}
	return float64(f.value), nil
}

func (f *first[T]) Count() int {
	return f.count
}

type last[T sequence.Number] struct {
	value T
	count int
}

func (l *last[T]) Reset() {
	l.count = 0
}

func (l *last[T]) Add(seq sequence.Sequence, from, length int) int {
	if length <= 0 {
		return l.count
	}
	l.value = accessor[T](seq)(from + length - 1)
	l.count += length
	return l.count
}

func (l *last[T]) Value() (float64, error) {
	if l.count == 0 {
		return 0, ErrEmptyGroup
	}
	return float64(l.value), nil
}

func (l *last[T]) Count() int {
	return l.count
}

// extremum tracks a running minimum, or a running maximum if max is set.
type extremum[T sequence.Number] struct {
	max   bool
	value T
	count int
}

func (e *extremum[T]) Reset() {
	e.count = 0
}

func (e *extremum[T]) Add(seq sequence.Sequence, from, length int) int {
	if length <= 0 {
		return e.count
	}
	get := accessor[T](seq)
	start := from
	if e.count == 0 {
		e.value = get(from)
		start++
	}
	if e.max {
		for i := start; i < from+length; i++ {
			if v := get(i); v > e.value {
				e.value = v
			}
		}
	} else {
		for i := start; i < from+length; i++ {
			if v := get(i); v < e.value {
				e.value = v
			}
		}
	}
	e.count += length
	return e.count
}

func (e *extremum[T]) Value() (float64, error) {
	if e.count == 0 {
		return 0, ErrEmptyGroup
	}
	return float64(e.value), nil
}

func (e *extremum[T]) Count() int {
	return e.count
}

// sum keeps a running total in A; with average set, Value divides it by the
// count.
type sum[T sequence.Number, A int64 | float64] struct {
	average bool
	total   A
	count   int
}

func (s *sum[T, A]) Reset() {
	s.total = 0
	s.count = 0
}

func (s *sum[T, A]) Add(seq sequence.Sequence, from, length int) int {
	if length <= 0 {
		return s.count
	}
	get := accessor[T](seq)
	for i := from; i < from+length; i++ {
		s.total += A(get(i))
	}
	s.count += length
	return s.count
}

func (s *sum[T, A]) Value() (float64, error) {
	if s.count == 0 {
		return 0, ErrEmptyGroup
	}
	if s.average {
		return float64(s.total) / float64(s.count), nil
	}
	return float64(s.total), nil
}

func (s *sum[T, A]) Count() int {
	return s.count
}
