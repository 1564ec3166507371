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

// Package scale maps between a numeric data domain and a pixel range.
// Scales are values; the With* methods return modified copies.
package scale

import (
	"fmt"
	"math"

	mscale "github.com/aclements/go-moremath/scale"
	"github.com/sgostarter/i/commerr"
)

// Kind is a scale's mapping function.
type Kind int

const (
	// Linear maps the domain linearly onto the range.
	Linear Kind = iota
	// Log maps the base-10 logarithm of the domain linearly onto the range.
	Log
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "linear"
	case Log:
		return "log"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Scale maps the domain [min, max] onto the pixel range [start, end].
// start may exceed end, as for a Y axis growing upward.
type Scale struct {
	kind       Kind
	min, max   float64
	start, end float64
}

// NewLinear returns a new linear Scale.
func NewLinear(min, max, start, end float64) Scale {
	return Scale{
		kind:  Linear,
		min:   min,
		max:   max,
		start: start,
		end:   end,
	}
}

// NewLog returns a new logarithmic Scale.  The domain must not include 0.
func NewLog(min, max, start, end float64) (Scale, error) {
	if _, err := mscale.NewLog(min, max, 10); err != nil {
		return Scale{}, fmt.Errorf("%w: log domain [%v, %v]: %v", commerr.ErrInvalidArgument, min, max, err)
	}
	return Scale{
		kind:  Log,
		min:   min,
		max:   max,
		start: start,
		end:   end,
	}, nil
}

// Kind returns the receiver's kind.
func (s Scale) Kind() Kind {
	return s.kind
}

// Domain returns the receiver's domain.
func (s Scale) Domain() (min, max float64) {
	return s.min, s.max
}

// Range returns the receiver's pixel range.
func (s Scale) Range() (start, end float64) {
	return s.start, s.end
}

// WithDomain returns a copy of the receiver with the provided domain.
func (s Scale) WithDomain(min, max float64) Scale {
	s.min, s.max = min, max
	return s
}

// WithRange returns a copy of the receiver with the provided pixel range.
func (s Scale) WithRange(start, end float64) Scale {
	s.start, s.end = start, end
	return s
}

// Length returns the number of whole pixels spanned by the receiver's
// range.
func (s Scale) Length() int {
	return int(math.Abs(s.end - s.start))
}

// SameDomain returns true if other has the receiver's kind and domain.
func (s Scale) SameDomain(other Scale) bool {
	return s.kind == other.kind && s.min == other.min && s.max == other.max
}

type mapper interface {
	Map(x float64) float64
	Unmap(y float64) float64
}

func (s Scale) mapper() mapper {
	if s.kind == Log {
		if l, err := mscale.NewLog(s.min, s.max, 10); err == nil {
			return &l
		}
	}
	return &mscale.Linear{Min: s.min, Max: s.max}
}

// Scale maps a domain value to a pixel position.
func (s Scale) Scale(v float64) float64 {
	if s.min == s.max {
		return (s.start + s.end) / 2
	}
	return s.start + (s.end-s.start)*s.mapper().Map(v)
}

// Invert maps a pixel position to a domain value.
func (s Scale) Invert(px float64) float64 {
	if s.start == s.end {
		return s.min
	}
	return s.mapper().Unmap((px - s.start) / (s.end - s.start))
}

// Ticks returns at most max evenly spaced, round values in the receiver's
// domain.
func (s Scale) Ticks(max int) []float64 {
	if s.kind == Log {
		if l, err := mscale.NewLog(s.min, s.max, 10); err == nil {
			major, _ := l.Ticks(mscale.TickOptions{Max: max})
			return major
		}
	}
	l := mscale.Linear{Min: s.min, Max: s.max}
	major, _ := l.Ticks(mscale.TickOptions{Max: max})
	return major
}

// Nice returns a copy of the receiver whose domain is widened to round
// values, such that it holds at most maxTicks ticks.  Log scales are
// returned unchanged.
func (s Scale) Nice(maxTicks int) Scale {
	if s.kind != Linear || s.min == s.max {
		return s
	}
	l := mscale.Linear{Min: s.min, Max: s.max}
	l.Nice(mscale.TickOptions{Max: maxTicks})
	return s.WithDomain(l.Min, l.Max)
}

func (s Scale) String() string {
	return fmt.Sprintf("%s [%v, %v] -> [%v, %v]", s.kind, s.min, s.max, s.start, s.end)
}
