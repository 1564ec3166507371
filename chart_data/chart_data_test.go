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

package chartdata

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ilhamster/tracechart/sequence"
	valuerange "github.com/ilhamster/tracechart/value_range"
	"github.com/sgostarter/i/commerr"
)

type table struct {
	Names []string
	Rows  [][]float64
}

func tableOf(d *Data) table {
	ret := table{}
	for col := 0; col < d.ColumnCount(); col++ {
		ret.Names = append(ret.Names, d.ColumnName(col))
	}
	for row := 0; row < d.RowCount(); row++ {
		r := make([]float64, d.ColumnCount())
		for col := range r {
			r[col] = d.Value(row, col)
		}
		ret.Rows = append(ret.Rows, r)
	}
	return ret
}

// ramp returns n regular rows with y = (i*7) % 10.
func ramp(n int, approximation Approximation) *Data {
	y := make([]float64, n)
	for i := range y {
		y[i] = float64((i * 7) % 10)
	}
	ys := sequence.NewSlice(y...)
	return New("x", sequence.NewRegularFollowing(0, 1, ys)).WithColumn("y", ys, approximation)
}

func TestResampleByEqualPoints(t *testing.T) {
	d, err := ramp(100, Max).ResampleByEqualPoints(10)
	if err != nil {
		t.Fatalf("ResampleByEqualPoints() yielded unexpected error %v", err)
	}
	if got := d.RowCount(); got != 10 {
		t.Fatalf("RowCount() = %d, want 10", got)
	}
	// Group 0 holds y = 0 7 4 1 8 5 2 9 6 3.
	if got := d.X(0); got != 0 {
		t.Errorf("first X of group 0 = %v, want 0", got)
	}
	if got := d.Value(0, 1); got != 9 {
		t.Errorf("max Y of group 0 = %v, want 9", got)
	}
	if got := d.X(9); got != 90 {
		t.Errorf("first X of group 9 = %v, want 90", got)
	}
}

func TestResampleApproximations(t *testing.T) {
	ys := sequence.NewSlice(3.0, 1.0, 4.0, 1.0, 5.0, 9.0, 2.0)
	xs := sequence.NewSlice(0.0, 1.0, 2.0, 10.0, 11.0, 12.0, 20.0)
	for _, test := range []struct {
		description string
		data        *Data
		appendMode  bool
		want        table
	}{{
		description: "range",
		data:        New("t", xs).WithColumn("v", ys, Range),
		want: table{
			Names: []string{"t", "v_min", "v_max"},
			Rows:  [][]float64{{0, 1, 4}, {10, 1, 9}, {20, 2, 2}},
		},
	}, {
		description: "ohlc",
		data:        New("t", xs).WithColumn("v", ys, OHLC),
		want: table{
			Names: []string{"t", "v_open", "v_high", "v_low", "v_close"},
			Rows:  [][]float64{{0, 3, 4, 1, 4}, {10, 1, 9, 1, 9}, {20, 2, 2, 2, 2}},
		},
	}, {
		description: "several columns",
		data:        New("t", xs).WithColumn("avg", ys, Average).WithColumn("total", ys, Sum).WithColumn("last", ys, Close),
		want: table{
			Names: []string{"t", "avg", "total", "last"},
			Rows:  [][]float64{{0, 8.0 / 3, 8, 4}, {10, 5, 15, 9}, {20, 2, 2, 2}},
		},
	}, {
		description: "append mode omits the open group",
		data:        New("t", xs).WithColumn("v", ys, Max),
		appendMode:  true,
		want: table{
			Names: []string{"t", "v"},
			Rows:  [][]float64{{0, 4}, {10, 9}},
		},
	}} {
		t.Run(test.description, func(t *testing.T) {
			test.data.SetAppendMode(test.appendMode)
			got, err := test.data.ResampleByEqualInterval(10)
			if err != nil {
				t.Fatalf("ResampleByEqualInterval() yielded unexpected error %v", err)
			}
			if diff := cmp.Diff(test.want, tableOf(got)); diff != "" {
				t.Errorf("Got %v, diff (-want +got):\n%s", tableOf(got), diff)
			}
		})
	}
}

func TestColumnsOf(t *testing.T) {
	raw := New("t", sequence.NewRegular(0, 1, 4)).
		WithColumn("a", sequence.NewSlice(1.0, 2.0, 3.0, 4.0), OHLC).
		WithColumn("b", sequence.NewSlice(1.0, 2.0, 3.0, 4.0), Sum)
	d, err := raw.ResampleByEqualPoints(2)
	if err != nil {
		t.Fatalf("ResampleByEqualPoints() yielded unexpected error %v", err)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, d.ColumnsOf(1)); diff != "" {
		t.Errorf("ColumnsOf(1) diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{5}, d.ColumnsOf(2)); diff != "" {
		t.Errorf("ColumnsOf(2) diff (-want +got):\n%s", diff)
	}
	if got := d.ColumnApproximation(3); got != Min {
		t.Errorf("ColumnApproximation(3) = %s, want %s", got, Min)
	}
}

func TestAppendData(t *testing.T) {
	ys := sequence.NewSlice(1.0, 2.0)
	d := New("x", sequence.NewRegularFollowing(0, 1, ys)).WithColumn("y", ys, Open)
	ys.Append(3, 4)
	if got := d.RowCount(); got != 2 {
		t.Errorf("RowCount() before AppendData = %d, want 2", got)
	}
	d.AppendData()
	if got := d.RowCount(); got != 4 {
		t.Errorf("RowCount() after AppendData = %d, want 4", got)
	}
	r, ok := d.ColumnMinMax(1)
	if !ok {
		t.Fatalf("ColumnMinMax() yielded no range")
	}
	if diff := cmp.Diff(valuerange.Range{Min: 1, Max: 4}, r); diff != "" {
		t.Errorf("ColumnMinMax() diff (-want +got):\n%s", diff)
	}
}

func TestViewsAndConcat(t *testing.T) {
	d := ramp(10, Open)
	view := d.View(2, 3)
	want := table{
		Names: []string{"x", "y"},
		Rows:  [][]float64{{2, 4}, {3, 1}, {4, 8}},
	}
	if diff := cmp.Diff(want, tableOf(view)); diff != "" {
		t.Errorf("View() diff (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, tableOf(d.Slice(2, 3))); diff != "" {
		t.Errorf("Slice() diff (-want +got):\n%s", diff)
	}
	joined, err := Concat(d.View(0, 2), d.View(8, 2))
	if err != nil {
		t.Fatalf("Concat() yielded unexpected error %v", err)
	}
	want = table{
		Names: []string{"x", "y"},
		Rows:  [][]float64{{0, 0}, {1, 7}, {8, 6}, {9, 3}},
	}
	if diff := cmp.Diff(want, tableOf(joined)); diff != "" {
		t.Errorf("Concat() diff (-want +got):\n%s", diff)
	}
	if _, err := Concat(d, New("x", sequence.NewRegular(0, 1, 1))); !errors.Is(err, commerr.ErrInvalidArgument) {
		t.Errorf("Concat() of mismatched data = %v, want %v", err, commerr.ErrInvalidArgument)
	}
}

func TestIncreasingAndBisect(t *testing.T) {
	unsorted := New("x", sequence.NewSlice(5.0, 1.0, 3.0)).WithColumn("y", sequence.NewSlice(0.0, 0.0, 0.0), Open)
	if unsorted.IsIncreasing() {
		t.Errorf("IsIncreasing() = true for unsorted data")
	}
	order := unsorted.SortedRows()
	if diff := cmp.Diff([]int{1, 2, 0}, order); diff != "" {
		t.Errorf("SortedRows() diff (-want +got):\n%s", diff)
	}
	if got := unsorted.Bisect(4, order); got != 2 {
		t.Errorf("Bisect(4) = %d, want 2", got)
	}
	sorted := ramp(5, Open)
	if !sorted.IsIncreasing() {
		t.Errorf("IsIncreasing() = false for regular data")
	}
	if got := sorted.Bisect(2.5, nil); got != 3 {
		t.Errorf("Bisect(2.5) = %d, want 3", got)
	}
	if got := sorted.AverageStep(); got != 1 {
		t.Errorf("AverageStep() = %v, want 1", got)
	}
}

func TestCacheKeepsValues(t *testing.T) {
	d, err := ramp(30, Average).ResampleByEqualPoints(4)
	if err != nil {
		t.Fatalf("ResampleByEqualPoints() yielded unexpected error %v", err)
	}
	before := tableOf(d)
	d.Cache()
	if diff := cmp.Diff(before, tableOf(d)); diff != "" {
		t.Errorf("cached diff (-want +got):\n%s", diff)
	}
	d.DisableCaching()
	if diff := cmp.Diff(before, tableOf(d)); diff != "" {
		t.Errorf("uncached diff (-want +got):\n%s", diff)
	}
}
