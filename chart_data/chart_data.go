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

// Package chartdata provides the multi-column data backing a chart trace:
// an X column followed by one or more Y columns.  Each column carries an
// Approximation describing how its values combine when rows are grouped.
//
// The row count of a Data is a snapshot.  Rows appended to the underlying
// sequences become visible after AppendData.
package chartdata

import (
	"fmt"

	"github.com/ilhamster/tracechart/aggregate"
	"github.com/ilhamster/tracechart/column"
	"github.com/ilhamster/tracechart/sequence"
	valuerange "github.com/ilhamster/tracechart/value_range"
	"github.com/sgostarter/i/commerr"
)

// Approximation describes how a column's values are combined within a
// group.
type Approximation int

const (
	// Open keeps the first value.
	Open Approximation = iota
	// Close keeps the last value.
	Close
	// Min keeps the smallest value.
	Min
	// Max keeps the largest value.
	Max
	// Average keeps the mean.
	Average
	// Sum keeps the total.
	Sum
	// Range keeps the smallest and the largest values, as two columns.
	Range
	// OHLC keeps the first, largest, smallest and last values, as four
	// columns.
	OHLC
)

func (a Approximation) String() string {
	switch a {
	case Open:
		return "open"
	case Close:
		return "close"
	case Min:
		return "min"
	case Max:
		return "max"
	case Average:
		return "average"
	case Sum:
		return "sum"
	case Range:
		return "range"
	case OHLC:
		return "ohlc"
	default:
		return fmt.Sprintf("Approximation(%d)", int(a))
	}
}

type part struct {
	kind   aggregate.Kind
	suffix string
}

func (a Approximation) parts() []part {
	switch a {
	case Open:
		return []part{{aggregate.First, ""}}
	case Close:
		return []part{{aggregate.Last, ""}}
	case Min:
		return []part{{aggregate.Min, ""}}
	case Max:
		return []part{{aggregate.Max, ""}}
	case Average:
		return []part{{aggregate.Average, ""}}
	case Sum:
		return []part{{aggregate.Sum, ""}}
	case Range:
		return []part{{aggregate.Min, "min"}, {aggregate.Max, "max"}}
	case OHLC:
		return []part{{aggregate.First, "open"}, {aggregate.Max, "high"}, {aggregate.Min, "low"}, {aggregate.Last, "close"}}
	default:
		return nil
	}
}

func approximationOf(k aggregate.Kind) Approximation {
	switch k {
	case aggregate.Last:
		return Close
	case aggregate.Min:
		return Min
	case aggregate.Max:
		return Max
	case aggregate.Average:
		return Average
	case aggregate.Sum:
		return Sum
	default:
		return Open
	}
}

// Data is a set of equally long columns; column 0 is the X column.
type Data struct {
	columns        []*column.Column
	names          []string
	approximations []Approximation
	// origins[i] is the column of the originating raw data that column i
	// was derived from.
	origins         []int
	appendMode      bool
	nLastChangeable int
	rowCount        int
}

// New returns a new Data with the provided X column.
func New(xName string, x sequence.Sequence) *Data {
	d := &Data{}
	d.add(xName, column.New(x), Open, 0)
	d.rowCount = d.liveRowCount()
	return d
}

// WithColumn adds a Y column to the receiver, returning the receiver to
// facilitate chaining.
func (d *Data) WithColumn(name string, y sequence.Sequence, approximation Approximation) *Data {
	d.add(name, column.New(y), approximation, len(d.columns))
	d.rowCount = d.liveRowCount()
	return d
}

func (d *Data) add(name string, col *column.Column, approximation Approximation, origin int) {
	d.columns = append(d.columns, col)
	d.names = append(d.names, name)
	d.approximations = append(d.approximations, approximation)
	d.origins = append(d.origins, origin)
}

func (d *Data) derive(nLastChangeable int) *Data {
	return &Data{
		appendMode:      d.appendMode,
		nLastChangeable: nLastChangeable,
	}
}

func (d *Data) liveRowCount() int {
	if len(d.columns) == 0 {
		return 0
	}
	n := d.columns[0].Size()
	for _, col := range d.columns[1:] {
		n = min(n, col.Size())
	}
	return n
}

// SetAppendMode specifies whether rows are still being appended to the
// receiver's sequences.  Data resampled from append-mode data omits its
// last, still incomplete, group.
func (d *Data) SetAppendMode(appendMode bool) {
	d.appendMode = appendMode
}

// AppendMode returns true if the receiver is in append mode.
func (d *Data) AppendMode() bool {
	return d.appendMode
}

// AppendData makes rows appended to the receiver's sequences visible.
func (d *Data) AppendData() {
	d.rowCount = d.liveRowCount()
}

// RowCount returns the number of visible rows.
func (d *Data) RowCount() int {
	return d.rowCount
}

// ColumnCount returns the number of columns, including the X column.
func (d *Data) ColumnCount() int {
	return len(d.columns)
}

func (d *Data) checkColumn(col int) error {
	if col < 0 || col >= len(d.columns) {
		return fmt.Errorf("%w: column %d not in [0, %d)", commerr.ErrOutOfRange, col, len(d.columns))
	}
	return nil
}

// Column returns the requested column.
func (d *Data) Column(col int) (*column.Column, error) {
	if err := d.checkColumn(col); err != nil {
		return nil, err
	}
	return d.columns[col], nil
}

// ColumnName returns the requested column's name.
func (d *Data) ColumnName(col int) string {
	return d.names[col]
}

// ColumnApproximation returns the requested column's approximation.
func (d *Data) ColumnApproximation(col int) Approximation {
	return d.approximations[col]
}

// ColumnOrigin returns the column of the originating raw data that the
// requested column was derived from.
func (d *Data) ColumnOrigin(col int) int {
	return d.origins[col]
}

// ColumnsOf returns the columns derived from the originating raw column
// origin.
func (d *Data) ColumnsOf(origin int) []int {
	var ret []int
	for col, o := range d.origins {
		if o == origin {
			ret = append(ret, col)
		}
	}
	return ret
}

// Value returns the value at the requested row and column.
func (d *Data) Value(row, col int) float64 {
	return d.columns[col].Value(row)
}

// X returns the X value at the requested row.
func (d *Data) X(row int) float64 {
	return d.columns[0].Value(row)
}

// IsRegular returns true if the X column is regular.
func (d *Data) IsRegular() bool {
	return d.columns[0].IsRegular()
}

// IsIncreasing returns true if the X column is increasing over the visible
// rows.
func (d *Data) IsIncreasing() bool {
	if d.rowCount == 0 {
		return true
	}
	stats, err := d.columns[0].Stats(d.rowCount, d.nLastChangeable)
	return err == nil && stats.Increasing
}

// ColumnMinMax returns the range of the requested column's visible values,
// and false if there are none.
func (d *Data) ColumnMinMax(col int) (valuerange.Range, bool) {
	if d.checkColumn(col) != nil || d.rowCount == 0 {
		return valuerange.Range{}, false
	}
	stats, err := d.columns[col].Stats(d.rowCount, d.nLastChangeable)
	if err != nil {
		return valuerange.Range{}, false
	}
	return valuerange.Range{Min: stats.Min, Max: stats.Max}, true
}

// AverageStep returns the average distance between consecutive X values,
// or 0 if there are fewer than two rows.
func (d *Data) AverageStep() float64 {
	if d.rowCount < 2 {
		return 0
	}
	return (d.X(d.rowCount-1) - d.X(0)) / float64(d.rowCount-1)
}

// Bisect returns the lower bound of x among the visible X values.  If order
// is non-nil it must sort the X column, and the returned value is a
// position in order.
func (d *Data) Bisect(x float64, order []int) int {
	if order != nil {
		return d.columns[0].BisectOrder(x, order)
	}
	return d.columns[0].Bisect(x, 0, d.rowCount)
}

// SortedRows returns the visible rows ordered by increasing X.
func (d *Data) SortedRows() []int {
	return d.columns[0].Sort(0, d.rowCount)
}

// View returns a non-copying window of length rows starting at row from.
func (d *Data) View(from, length int) *Data {
	ret := d.derive(d.nLastChangeable)
	for i, col := range d.columns {
		ret.add(d.names[i], col.View(from, length), d.approximations[i], d.origins[i])
	}
	ret.rowCount = length
	return ret
}

// Slice returns a copy of length rows starting at row from.
func (d *Data) Slice(from, length int) *Data {
	ret := d.derive(0)
	for i, col := range d.columns {
		ret.add(d.names[i], col.Slice(from, length), d.approximations[i], d.origins[i])
	}
	ret.rowCount = length
	return ret
}

// Concat returns the visible rows of a followed by the rows of b.
func Concat(a, b *Data) (*Data, error) {
	if a.ColumnCount() != b.ColumnCount() {
		return nil, fmt.Errorf("%w: can't concatenate data with %d and %d columns", commerr.ErrInvalidArgument, a.ColumnCount(), b.ColumnCount())
	}
	ret := a.derive(0)
	ret.appendMode = b.appendMode
	for i, col := range a.columns {
		ret.add(a.names[i], column.Concat(col, a.rowCount, b.columns[i]), a.approximations[i], a.origins[i])
	}
	ret.rowCount = a.rowCount + b.rowCount
	return ret, nil
}

// ResampleByEqualPoints groups every points consecutive rows.
func (d *Data) ResampleByEqualPoints(points int) (*Data, error) {
	return d.resample(d.columns[0].GroupByPoints(points))
}

// ResampleByEqualInterval groups rows whose X values fall in the same
// interval-aligned bucket.
func (d *Data) ResampleByEqualInterval(interval float64) (*Data, error) {
	return d.resample(d.columns[0].GroupByInterval(interval))
}

func (d *Data) resample(b column.Boundaries) (*Data, error) {
	ret := d.derive(1)
	for i, col := range d.columns {
		parts := d.approximations[i].parts()
		if i == 0 {
			parts = []part{{aggregate.First, ""}}
		}
		for _, p := range parts {
			rc, err := col.Resample(p.kind, b, d.appendMode)
			if err != nil {
				return nil, fmt.Errorf("failed to resample column %q: %w", d.names[i], err)
			}
			name := d.names[i]
			if p.suffix != "" {
				name = name + "_" + p.suffix
			}
			ret.add(name, rc, approximationOf(p.kind), d.origins[i])
		}
	}
	ret.rowCount = ret.liveRowCount()
	return ret, nil
}

// Cache memoizes the receiver's computed values, computing every row that
// can no longer change now.
func (d *Data) Cache() {
	for _, col := range d.columns {
		col.Cache(d.nLastChangeable)
		if last := col.Size() - d.nLastChangeable - 1; last >= 0 {
			col.Value(last)
		}
	}
}

// DisableCaching releases memoized values.
func (d *Data) DisableCaching() {
	for _, col := range d.columns {
		col.DisableCaching()
	}
}
