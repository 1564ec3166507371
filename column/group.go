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
	"math"

	"github.com/ilhamster/tracechart/sequence"
)

// epsilon is the float64 machine epsilon.
const epsilon = 0x1p-52

// Boundaries are the increasing start rows of consecutive groups, closed by
// a sentinel equal to the number of grouped rows.  Boundaries over a growing
// column are regenerated lazily as rows are appended.
type Boundaries interface {
	// Len returns the number of boundaries, including the closing sentinel,
	// bringing the receiver up to date with its column.
	Len() int
	// At returns boundary i.  It is valid for i < the most recent Len().
	At(i int) int
}

// GroupByPoints returns boundaries placing every n consecutive rows in a
// group.  The last group may hold fewer than n rows.
func (c *Column) GroupByPoints(n int) Boundaries {
	return &pointBoundaries{
		src: c.seq,
		n:   max(1, n),
	}
}

type pointBoundaries struct {
	src sequence.Sequence
	n   int
}

func (pb *pointBoundaries) Len() int {
	size := pb.src.Size()
	if size%pb.n == 0 {
		return size/pb.n + 1
	}
	return size/pb.n + 2
}

func (pb *pointBoundaries) At(i int) int {
	size := pb.src.Size()
	if start := i * pb.n; start < size {
		return start
	}
	return size
}

// GroupByInterval returns boundaries placing rows whose values share an
// interval-aligned bucket [k*interval, (k+1)*interval) in the same group.
// The receiver must be increasing.  Integer columns bucket with integer
// arithmetic, by the interval rounded to the nearest integer; intervals too
// small for the receiver's kind are clamped to the smallest positive
// interval of that kind.
func (c *Column) GroupByInterval(interval float64) Boundaries {
	var p intervalProvider
	switch {
	case c.Kind().IsInteger():
		p = intIntervals{interval: max(1, int64(math.Round(interval)))}
	case !(interval > epsilon):
		p = adjacentFloats{}
	default:
		p = floatIntervals{interval: interval}
	}
	return &intervalBoundaries{
		src: c.seq,
		p:   p,
	}
}

// intervalProvider locates the interval-aligned buckets values fall into.
type intervalProvider interface {
	// upperOf returns the exclusive upper edge of the bucket containing v.
	upperOf(v float64) float64
	// next returns the exclusive upper edge of the bucket following the one
	// whose upper edge is upper.
	next(upper float64) float64
}

type floatIntervals struct {
	interval float64
}

func (fi floatIntervals) upperOf(v float64) float64 {
	return math.Floor(v/fi.interval)*fi.interval + fi.interval
}

func (fi floatIntervals) next(upper float64) float64 {
	return upper + fi.interval
}

type intIntervals struct {
	interval int64
}

func (ii intIntervals) upperOf(v float64) float64 {
	iv := int64(v)
	q := iv / ii.interval
	if iv%ii.interval != 0 && iv < 0 {
		q--
	}
	return float64(q*ii.interval + ii.interval)
}

func (ii intIntervals) next(upper float64) float64 {
	return upper + float64(ii.interval)
}

// adjacentFloats puts every distinct float value in its own bucket.
type adjacentFloats struct{}

func (adjacentFloats) upperOf(v float64) float64 {
	return math.Nextafter(v, math.Inf(1))
}

func (adjacentFloats) next(upper float64) float64 {
	return math.Nextafter(upper, math.Inf(1))
}

type intervalBoundaries struct {
	src  sequence.Sequence
	p    intervalProvider
	list []int
}

// update rescans from the start of the last, possibly incomplete, group.
func (ib *intervalBoundaries) update() {
	size := ib.src.Size()
	if n := len(ib.list); n > 0 {
		if ib.list[n-1] == size {
			return
		}
		ib.list = ib.list[:n-1]
	}
	if len(ib.list) == 0 {
		ib.list = append(ib.list, 0)
		if size == 0 {
			return
		}
	}
	from := ib.list[len(ib.list)-1]
	upper := ib.p.upperOf(ib.src.Float(from))
	for i := from + 1; i < size; i++ {
		v := ib.src.Float(i)
		if v < upper {
			continue
		}
		ib.list = append(ib.list, i)
		upper = ib.p.next(upper)
		if v >= upper {
			upper = ib.p.upperOf(v)
		}
	}
	ib.list = append(ib.list, size)
}

func (ib *intervalBoundaries) Len() int {
	ib.update()
	return len(ib.list)
}

func (ib *intervalBoundaries) At(i int) int {
	return ib.list[i]
}
