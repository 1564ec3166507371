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

// Package valuerange provides closed numeric ranges.
package valuerange

import "fmt"

// Range is the closed interval [Min, Max].
type Range struct {
	Min, Max float64
}

// New returns the range spanning a and b, in either order.
func New(a, b float64) Range {
	if a > b {
		a, b = b, a
	}
	return Range{Min: a, Max: b}
}

// Length returns Max - Min.
func (r Range) Length() float64 {
	return r.Max - r.Min
}

// Contains returns true if v lies in the receiver.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Extend returns the smallest range containing both the receiver and v.
func (r Range) Extend(v float64) Range {
	if v < r.Min {
		r.Min = v
	}
	if v > r.Max {
		r.Max = v
	}
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("[%v, %v]", r.Min, r.Max)
}

// Intersect returns the intersection of a and b, and false if they do not
// overlap.
func Intersect(a, b Range) (Range, bool) {
	ret := Range{Min: max(a.Min, b.Min), Max: min(a.Max, b.Max)}
	if ret.Min > ret.Max {
		return Range{}, false
	}
	return ret, true
}

// Join returns the smallest range containing both a and b.
func Join(a, b Range) Range {
	return Range{Min: min(a.Min, b.Min), Max: max(a.Max, b.Max)}
}
