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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/tracechart/aggregate"
	"github.com/ilhamster/tracechart/sequence"
)

func values(c *Column) []float64 {
	ret := make([]float64, c.Size())
	for i := range ret {
		ret[i] = c.Value(i)
	}
	return ret
}

func TestViews(t *testing.T) {
	irregular := sequence.NewSlice[int32](1, 3, 4, 8, 9)
	regular := sequence.NewRegular(0, 5, 6)
	for _, test := range []struct {
		description string
		col         *Column
		wantRegular bool
		want        []float64
	}{{
		description: "view",
		col:         New(irregular).View(1, 3),
		want:        []float64{3, 4, 8},
	}, {
		description: "empty view",
		col:         New(irregular).View(5, 0),
		want:        []float64{},
	}, {
		description: "view of regular stays regular",
		col:         New(regular).View(2, 3),
		wantRegular: true,
		want:        []float64{10, 15, 20},
	}, {
		description: "slice",
		col:         New(irregular).Slice(2, 3),
		want:        []float64{4, 8, 9},
	}, {
		description: "ordered",
		col:         New(irregular).ViewOrder([]int{4, 0, 2}),
		want:        []float64{9, 1, 4},
	}, {
		description: "concat of continuous regular columns collapses",
		col:         Concat(New(regular), 4, New(sequence.NewRegular(20, 5, 2))),
		wantRegular: true,
		want:        []float64{0, 5, 10, 15, 20, 25},
	}, {
		description: "concat of discontinuous regular columns",
		col:         Concat(New(regular), 2, New(sequence.NewRegular(20, 5, 2))),
		want:        []float64{0, 5, 20, 25},
	}, {
		description: "concat of regular and irregular",
		col:         Concat(New(regular), 1, New(irregular)),
		want:        []float64{0, 1, 3, 4, 8, 9},
	}} {
		t.Run(test.description, func(t *testing.T) {
			if got := test.col.IsRegular(); got != test.wantRegular {
				t.Errorf("IsRegular() = %t, want %t", got, test.wantRegular)
			}
			got := values(test.col)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got values %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestViewsFollowGrowth(t *testing.T) {
	seq := sequence.NewSlice(1.0, 2.0, 3.0)
	col := New(seq)
	fixed := col.View(1, 2)
	growing := col.ViewFrom(1)
	seq.Append(4, 5)
	if diff := cmp.Diff([]float64{2, 3}, values(fixed)); diff != "" {
		t.Errorf("fixed view diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{2, 3, 4, 5}, values(growing)); diff != "" {
		t.Errorf("growing view diff (-want +got):\n%s", diff)
	}
}

func TestBisect(t *testing.T) {
	col := New(sequence.NewSlice(10.0, 20.0, 20.0, 30.0))
	for _, test := range []struct {
		description  string
		value        float64
		from, length int
		want         int
	}{
		{"before all", 5, 0, 4, 0},
		{"exact first", 10, 0, 4, 0},
		{"between", 15, 0, 4, 1},
		{"lower bound of duplicates", 20, 0, 4, 1},
		{"after all", 31, 0, 4, 4},
		{"within subrange", 25, 1, 2, 3},
	} {
		t.Run(test.description, func(t *testing.T) {
			if got := col.Bisect(test.value, test.from, test.length); got != test.want {
				t.Errorf("Bisect(%v) = %d, want %d", test.value, got, test.want)
			}
		})
	}
}

func TestSortAndBisectOrder(t *testing.T) {
	col := New(sequence.NewSlice(30.0, 10.0, 20.0, 10.0))
	order := col.Sort(0, col.Size())
	if diff := cmp.Diff([]int{1, 3, 2, 0}, order); diff != "" {
		t.Fatalf("Sort() diff (-want +got):\n%s", diff)
	}
	for _, test := range []struct {
		value float64
		want  int
	}{
		{5, 0},
		{10, 0},
		{15, 2},
		{30, 3},
		{40, 4},
	} {
		if got := col.BisectOrder(test.value, order); got != test.want {
			t.Errorf("BisectOrder(%v) = %d, want %d", test.value, got, test.want)
		}
	}
}

func TestStats(t *testing.T) {
	for _, test := range []struct {
		description     string
		seq             sequence.Sequence
		length, nChange int
		want            Stats
	}{{
		description: "increasing",
		seq:         sequence.NewSlice(1.0, 2.0, 2.0, 5.0),
		length:      4,
		want:        Stats{Min: 1, Max: 5, Increasing: true},
	}, {
		description: "decreasing ints",
		seq:         sequence.NewSlice[int16](9, 7, 7, -3),
		length:      4,
		want:        Stats{Min: -3, Max: 9, Decreasing: true},
	}, {
		description: "neither",
		seq:         sequence.NewSlice(1.0, 3.0, 2.0),
		length:      3,
		nChange:     1,
		want:        Stats{Min: 1, Max: 3},
	}, {
		description: "constant",
		seq:         sequence.NewSlice(4.0, 4.0),
		length:      2,
		want:        Stats{Min: 4, Max: 4, Increasing: true, Decreasing: true},
	}, {
		description: "prefix",
		seq:         sequence.NewSlice(1.0, 3.0, 2.0),
		length:      2,
		want:        Stats{Min: 1, Max: 3, Increasing: true},
	}, {
		description: "regular",
		seq:         sequence.NewRegular(100, -10, 5),
		length:      5,
		want:        Stats{Min: 60, Max: 100, Decreasing: true},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got, err := New(test.seq).Stats(test.length, test.nChange)
			if err != nil {
				t.Fatalf("Stats() yielded unexpected error %v", err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got stats %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestStatsIncremental(t *testing.T) {
	seq := sequence.NewSlice(1.0, 2.0, 3.0)
	col := New(seq)
	if _, err := col.Stats(3, 0); err != nil {
		t.Fatalf("Stats() yielded unexpected error %v", err)
	}
	seq.Append(0.5, 7)
	got, err := col.Stats(5, 0)
	if err != nil {
		t.Fatalf("Stats() yielded unexpected error %v", err)
	}
	want := Stats{Min: 0.5, Max: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Got stats %v, diff (-want +got):\n%s", got, diff)
	}
	// A shorter request is answered without the memoized rows.
	got, err = col.Stats(2, 0)
	if err != nil {
		t.Fatalf("Stats() yielded unexpected error %v", err)
	}
	want = Stats{Min: 1, Max: 2, Increasing: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Got stats %v, diff (-want +got):\n%s", got, diff)
	}
}

func TestStatsOnEmptyRunFails(t *testing.T) {
	if _, err := New(sequence.NewSlice[float64]()).Stats(0, 0); !errors.Is(err, aggregate.ErrEmptyGroup) {
		t.Errorf("Stats(0) = %v, want %v", err, aggregate.ErrEmptyGroup)
	}
}

func boundaries(b Boundaries) []int {
	ret := make([]int, b.Len())
	for i := range ret {
		ret[i] = b.At(i)
	}
	return ret
}

func TestGroupByPoints(t *testing.T) {
	for _, test := range []struct {
		description string
		size, n     int
		want        []int
	}{
		{"even", 100, 10, []int{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
		{"remainder", 7, 3, []int{0, 3, 6, 7}},
		{"one per group", 3, 1, []int{0, 1, 2, 3}},
		{"empty", 0, 4, []int{0}},
	} {
		t.Run(test.description, func(t *testing.T) {
			got := boundaries(New(sequence.NewRegular(0, 1, test.size)).GroupByPoints(test.n))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got boundaries %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestGroupByInterval(t *testing.T) {
	for _, test := range []struct {
		description string
		seq         sequence.Sequence
		interval    float64
		want        []int
	}{{
		description: "floats",
		seq:         sequence.NewSlice(0.0, 0.5, 1.0, 1.9, 4.2, 4.3, 6.0),
		interval:    2,
		want:        []int{0, 4, 6, 7},
	}, {
		description: "negative floats",
		seq:         sequence.NewSlice(-3.0, -2.5, -1.0, 0.0),
		interval:    2,
		want:        []int{0, 2, 3, 4},
	}, {
		description: "ints",
		seq:         sequence.NewSlice[int64](-5, -4, -1, 0, 9, 10, 11),
		interval:    5,
		want:        []int{0, 3, 4, 5, 7},
	}, {
		description: "fractional interval on ints",
		seq:         sequence.NewSlice[int32](0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		interval:    2.7,
		want:        []int{0, 3, 6, 9, 10},
	}, {
		description: "fractional interval below two on ints",
		seq:         sequence.NewSlice[int32](0, 1, 2, 3, 4),
		interval:    1.6,
		want:        []int{0, 2, 4, 5},
	}, {
		description: "zero interval on ints",
		seq:         sequence.NewSlice[int32](1, 1, 2, 3),
		interval:    0,
		want:        []int{0, 2, 3, 4},
	}, {
		description: "zero interval on floats",
		seq:         sequence.NewSlice(0.5, 0.5, 0.75),
		interval:    0,
		want:        []int{0, 2, 3},
	}, {
		description: "empty",
		seq:         sequence.NewSlice[float64](),
		interval:    1,
		want:        []int{0},
	}} {
		t.Run(test.description, func(t *testing.T) {
			got := boundaries(New(test.seq).GroupByInterval(test.interval))
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Got boundaries %v, diff (-want +got):\n%s", got, diff)
			}
		})
	}
}

func TestGroupByIntervalFollowsGrowth(t *testing.T) {
	seq := sequence.NewSlice[float64]()
	b := New(seq).GroupByInterval(10)
	if diff := cmp.Diff([]int{0}, boundaries(b)); diff != "" {
		t.Errorf("empty boundaries diff (-want +got):\n%s", diff)
	}
	seq.Append(1, 5, 12)
	if diff := cmp.Diff([]int{0, 2, 3}, boundaries(b)); diff != "" {
		t.Errorf("boundaries diff (-want +got):\n%s", diff)
	}
	seq.Append(15, 19, 20, 45)
	if diff := cmp.Diff([]int{0, 2, 5, 6, 7}, boundaries(b)); diff != "" {
		t.Errorf("grown boundaries diff (-want +got):\n%s", diff)
	}
}

func TestResample(t *testing.T) {
	seq := sequence.NewSlice[int32](4, 1, 7, 2, 9, 3, 8)
	col := New(seq)
	for _, test := range []struct {
		description string
		kind        aggregate.Kind
		appendMode  bool
		wantKind    sequence.Kind
		want        []float64
	}{
		{"first", aggregate.First, false, sequence.Int32, []float64{4, 2, 8}},
		{"last", aggregate.Last, false, sequence.Int32, []float64{7, 3, 8}},
		{"min", aggregate.Min, false, sequence.Int32, []float64{1, 2, 8}},
		{"max", aggregate.Max, false, sequence.Int32, []float64{7, 9, 8}},
		{"sum", aggregate.Sum, false, sequence.Int64, []float64{12, 14, 8}},
		{"average", aggregate.Average, false, sequence.Float64, []float64{4, 14.0 / 3, 8}},
		{"append mode drops the open group", aggregate.Max, true, sequence.Int32, []float64{7, 9}},
	} {
		t.Run(test.description, func(t *testing.T) {
			got, err := col.Resample(test.kind, col.GroupByPoints(3), test.appendMode)
			if err != nil {
				t.Fatalf("Resample() yielded unexpected error %v", err)
			}
			if got.Kind() != test.wantKind {
				t.Errorf("Kind() = %s, want %s", got.Kind(), test.wantKind)
			}
			if diff := cmp.Diff(test.want, values(got)); diff != "" {
				t.Errorf("Resample() diff (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResampleLastGroupGrows(t *testing.T) {
	seq := sequence.NewSlice(1.0, 2.0, 3.0)
	col := New(seq)
	sums, err := col.Resample(aggregate.Sum, col.GroupByInterval(10), false)
	if err != nil {
		t.Fatalf("Resample() yielded unexpected error %v", err)
	}
	if diff := cmp.Diff([]float64{6}, values(sums)); diff != "" {
		t.Errorf("Resample() diff (-want +got):\n%s", diff)
	}
	seq.Append(4, 11, 12)
	if diff := cmp.Diff([]float64{10, 23}, values(sums)); diff != "" {
		t.Errorf("Resample() after append diff (-want +got):\n%s", diff)
	}
}

func TestRegroupMatchesGroupingRaw(t *testing.T) {
	raw := make([]float64, 120)
	for i := range raw {
		raw[i] = float64((i*37)%101) - 50
	}
	col := New(sequence.NewSlice(raw...))
	for _, kind := range []aggregate.Kind{aggregate.Min, aggregate.Max, aggregate.First, aggregate.Last, aggregate.Sum} {
		t.Run(kind.String(), func(t *testing.T) {
			by4, err := col.Resample(kind, col.GroupByPoints(4), false)
			if err != nil {
				t.Fatalf("Resample() yielded unexpected error %v", err)
			}
			regrouped, err := by4.Resample(kind, by4.GroupByPoints(3), false)
			if err != nil {
				t.Fatalf("Resample() yielded unexpected error %v", err)
			}
			direct, err := col.Resample(kind, col.GroupByPoints(12), false)
			if err != nil {
				t.Fatalf("Resample() yielded unexpected error %v", err)
			}
			if diff := cmp.Diff(values(direct), values(regrouped)); diff != "" {
				t.Errorf("regrouped diff (-direct +regrouped):\n%s", diff)
			}
		})
	}
}

func TestCache(t *testing.T) {
	seq := sequence.NewSlice(1.0, 2.0, 3.0, 4.0, 5.0)
	col := New(seq)
	maxes, err := col.Resample(aggregate.Max, col.GroupByPoints(2), false)
	if err != nil {
		t.Fatalf("Resample() yielded unexpected error %v", err)
	}
	maxes.Cache(1)
	if got := maxes.Value(1); got != 4 {
		t.Errorf("Value(1) = %v, want 4", got)
	}
	if got := maxes.Cached(); got != 2 {
		t.Errorf("Cached() = %d, want 2", got)
	}
	// The last group is read through, so it sees appended rows.
	seq.Append(9)
	if diff := cmp.Diff([]float64{2, 4, 9}, values(maxes)); diff != "" {
		t.Errorf("cached values diff (-want +got):\n%s", diff)
	}
	maxes.DisableCaching()
	if got := maxes.Cached(); got != 0 {
		t.Errorf("Cached() after DisableCaching = %d, want 0", got)
	}
	if diff := cmp.Diff([]float64{2, 4, 9}, values(maxes)); diff != "" {
		t.Errorf("uncached values diff (-want +got):\n%s", diff)
	}
}
