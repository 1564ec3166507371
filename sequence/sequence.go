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

// Package sequence provides the indexed numeric sequences that trace data is
// built from.  A Sequence is read-only and random-access; its size may grow
// over time, but rows are never removed or rewritten.
package sequence

import (
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"
)

// Kind is the element kind of a Sequence.
type Kind int

// Supported element kinds.
const (
	Int16 Kind = iota
	Int32
	Int64
	Float32
	Float64
)

func (k Kind) String() string {
	switch k {
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Int64:
		return "int64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsInteger returns true if the kind holds integer values.
func (k Kind) IsInteger() bool {
	return k == Int16 || k == Int32 || k == Int64
}

// SmallestPositive returns the smallest positive value representable by the
// kind.
func (k Kind) SmallestPositive() float64 {
	switch k {
	case Int16, Int32, Int64:
		return 1
	case Float32:
		return math.SmallestNonzeroFloat32
	default:
		return math.SmallestNonzeroFloat64
	}
}

// Sequence is a read-only, random-access sequence of numbers.
type Sequence interface {
	// Size returns the current number of elements.  It never decreases.
	Size() int
	// Float returns the element at index i as a float64.
	Float(i int) float64
	// Kind returns the sequence's element kind.
	Kind() Kind
}

// Number is the set of native element types a Sequence may hold.
type Number interface {
	~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Typed is implemented by sequences that can return elements in their
// native type, letting aggregation skip the float64 conversion.
type Typed[T Number] interface {
	Sequence
	At(i int) T
}

// KindOf returns the Kind corresponding to T.
func KindOf[T Number]() Kind {
	var zero T
	switch any(zero).(type) {
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case float32:
		return Float32
	default:
		return Float64
	}
}

// Bounder is implemented by sequences that can compute the bounds of a run
// of elements faster than element-by-element access.
type Bounder interface {
	Bounds(from, length int) (min, max float64)
}

// Slice is a growable, slice-backed Sequence.
type Slice[T Number] struct {
	data []T
	kind Kind
}

// NewSlice returns a new Slice holding the provided values.
func NewSlice[T Number](values ...T) *Slice[T] {
	return &Slice[T]{
		data: append([]T(nil), values...),
		kind: KindOf[T](),
	}
}

// Append appends values to the receiver.
func (s *Slice[T]) Append(values ...T) {
	s.data = append(s.data, values...)
}

// Size implements Sequence.
func (s *Slice[T]) Size() int {
	return len(s.data)
}

// At implements Typed.
func (s *Slice[T]) At(i int) T {
	return s.data[i]
}

// Float implements Sequence.
func (s *Slice[T]) Float(i int) float64 {
	return float64(s.data[i])
}

// Kind implements Sequence.
func (s *Slice[T]) Kind() Kind {
	return s.kind
}

// Bounds implements Bounder.
func (s *Slice[T]) Bounds(from, length int) (min, max float64) {
	if length <= 0 {
		return math.NaN(), math.NaN()
	}
	if fs, ok := any(s.data).([]float64); ok {
		return stats.Bounds(fs[from : from+length])
	}
	min, max = float64(s.data[from]), float64(s.data[from])
	for _, v := range s.data[from+1 : from+length] {
		fv := float64(v)
		if fv < min {
			min = fv
		}
		if fv > max {
			max = fv
		}
	}
	return min, max
}

// Regular is a Sequence whose element i equals start + i*step.  Its size is
// either fixed or derived from a size function, which lets a regular X
// sequence follow the growth of a Y sequence.
type Regular struct {
	start, step float64
	size        func() int
}

// NewRegular returns a Regular sequence of the provided fixed size.
func NewRegular(start, step float64, size int) *Regular {
	return &Regular{
		start: start,
		step:  step,
		size:  func() int { return size },
	}
}

// NewRegularFunc returns a Regular sequence whose size is reported by size.
func NewRegularFunc(start, step float64, size func() int) *Regular {
	return &Regular{
		start: start,
		step:  step,
		size:  size,
	}
}

// NewRegularFollowing returns a Regular sequence that always has the same
// size as follow.
func NewRegularFollowing(start, step float64, follow Sequence) *Regular {
	return NewRegularFunc(start, step, follow.Size)
}

// Start returns the value of element 0.
func (r *Regular) Start() float64 {
	return r.start
}

// Step returns the distance between consecutive elements.
func (r *Regular) Step() float64 {
	return r.step
}

// Size implements Sequence.
func (r *Regular) Size() int {
	return r.size()
}

// Float implements Sequence.
func (r *Regular) Float(i int) float64 {
	return r.start + float64(i)*r.step
}

// Kind implements Sequence.  Regular sequences with integral start and step
// report Int64.
func (r *Regular) Kind() Kind {
	if r.start == math.Trunc(r.start) && r.step == math.Trunc(r.step) {
		return Int64
	}
	return Float64
}

// Bounds implements Bounder.
func (r *Regular) Bounds(from, length int) (min, max float64) {
	if length <= 0 {
		return math.NaN(), math.NaN()
	}
	first, last := r.Float(from), r.Float(from+length-1)
	if first > last {
		return last, first
	}
	return first, last
}
