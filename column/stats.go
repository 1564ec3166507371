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

// Stats summarizes a run of rows.
type Stats struct {
	Min, Max float64
	// Increasing is true if no row is less than its predecessor.
	Increasing bool
	// Decreasing is true if no row is greater than its predecessor.
	Decreasing bool
}

// statsAccumulator holds Stats over the first n rows of a column.
type statsAccumulator struct {
	Stats
	n int
}

// extend returns acc extended over rows [acc.n, to) of seq.
func (acc statsAccumulator) extend(seq sequence.Sequence, bounder sequence.Bounder, to int) statsAccumulator {
	if acc.n >= to {
		return acc
	}
	start := acc.n
	if acc.n == 0 {
		v := seq.Float(0)
		acc.Stats = Stats{Min: v, Max: v, Increasing: true, Decreasing: true}
		start = 1
	}
	if bounder != nil && start < to {
		min, max := bounder.Bounds(start, to-start)
		acc.Min, acc.Max = minf(acc.Min, min), maxf(acc.Max, max)
	}
	prev := seq.Float(start - 1)
	for i := start; i < to; i++ {
		v := seq.Float(i)
		if v < prev {
			acc.Increasing = false
		} else if v > prev {
			acc.Decreasing = false
		}
		if bounder == nil {
			acc.Min, acc.Max = minf(acc.Min, v), maxf(acc.Max, v)
		}
		prev = v
	}
	acc.n = to
	return acc
}

// Stats returns statistics over the first length rows.  The last
// nLastChangeable of those rows may still change, so only the rows before
// them are memoized; later calls extend the memoized statistics over new
// rows instead of rescanning.
func (c *Column) Stats(length, nLastChangeable int) (Stats, error) {
	if length <= 0 {
		return Stats{}, fmt.Errorf("column statistics over %d rows: %w", length, aggregate.ErrEmptyGroup)
	}
	c.checkRun(0, length)
	if r, ok := c.Regular(); ok {
		min, max := r.Bounds(0, length)
		return Stats{
			Min:        min,
			Max:        max,
			Increasing: r.Step() >= 0,
			Decreasing: r.Step() <= 0,
		}, nil
	}
	bounder, _ := c.base.(sequence.Bounder)
	stable := max(0, length-nLastChangeable)
	if stable < c.stats.n {
		return statsAccumulator{}.extend(c.seq, bounder, length).Stats, nil
	}
	c.stats = c.stats.extend(c.seq, bounder, stable)
	return c.stats.extend(c.seq, bounder, length).Stats, nil
}

func boundsOf(seq sequence.Sequence, from, length int) (min, max float64) {
	min, max = seq.Float(from), seq.Float(from)
	for i := from + 1; i < from+length; i++ {
		v := seq.Float(i)
		min, max = minf(min, v), maxf(max, v)
	}
	return min, max
}

func minf(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}

func maxf(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}
