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

// Package tracedatamanager reduces a trace's raw data to what can be drawn
// in a viewport.  Given a scale and a mark size, a Manager crops the raw
// data to the visible X range (plus a shoulder on either side) and groups
// rows that would share a mark, so the amount of data handed to a renderer
// is bounded by the viewport's width rather than by the trace's length.
//
// Grouped data is reused across small viewport changes, and whole-trace
// groupings are kept as snapshots from which coarser groupings are derived
// without revisiting the raw rows.
//
// A Manager is not safe for concurrent use.
package tracedatamanager

import (
	"fmt"
	"math"
	"slices"

	"github.com/hashicorp/golang-lru/simplelru"
	chartdata "github.com/ilhamster/tracechart/chart_data"
	processingconfig "github.com/ilhamster/tracechart/processing_config"
	"github.com/ilhamster/tracechart/scale"
	valuerange "github.com/ilhamster/tracechart/value_range"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cast"
)

// NoPoint is returned by Nearest when there are no rows.
const NoPoint = -1

type cacheState int

const (
	dirty cacheState = iota
	clean
)

// memoKey identifies the request processed data was computed for.
type memoKey struct {
	scale          scale.Scale
	pixelsPerPoint int
	rawRows        int
}

// processed is the data returned by the most recent GetData.
type processed struct {
	state cacheState
	key   memoKey
	data  *chartdata.Data
}

// validFor returns true if the receiver's data may be returned for a
// request with the provided key.  Data is reused while the pixel density
// and visible domain are unchanged, the drawable width has changed by no
// more than stabilityPercent, and any appended rows lie beyond the visible
// domain.
func (p processed) validFor(key memoKey, stabilityPercent int, raw *chartdata.Data) bool {
	if p.state != clean {
		return false
	}
	if p.key.pixelsPerPoint != key.pixelsPerPoint || !p.key.scale.SameDomain(key.scale) {
		return false
	}
	prevLength, length := p.key.scale.Length(), key.scale.Length()
	if length == 0 {
		return false
	}
	if diff := prevLength - length; max(diff, -diff)*100/length > stabilityPercent {
		return false
	}
	if key.rawRows != p.key.rawRows {
		if p.key.rawRows == 0 {
			return false
		}
		min, max := key.scale.Domain()
		if raw.X(p.key.rawRows-1) < math.Max(min, max) {
			return false
		}
	}
	return true
}

// Stats counts the work a Manager has done.
type Stats struct {
	// Requests counts GetData calls.
	Requests int
	// Bypassed counts requests answered with the raw data.
	Bypassed int
	// Processed counts requests that recomputed their data.
	Processed int
	// Grouped counts whole-trace snapshots grouped from the raw data.
	Grouped int
	// Regrouped counts whole-trace snapshots derived from other snapshots.
	Regrouped int
	// Reused counts requests served by an existing snapshot.
	Reused int
}

// Manager decides how much of a trace's raw data to draw, and how coarsely.
type Manager struct {
	logger      l.Wrapper
	raw         *chartdata.Data
	config      processingconfig.Config
	equalPoints bool
	processed   processed
	// snapshots maps palette indices, or snapshot sequence numbers if there
	// is no palette, to whole-trace grouped data.
	snapshots      *simplelru.LRU
	nextSnapshotID int
	sorter         []int
	sorterFor      *chartdata.Data
	sorterRows     int
	stats          Stats
}

// New returns a new Manager over the provided raw data.  If logger is nil,
// nothing is logged.
func New(raw *chartdata.Data, config processingconfig.Config, logger l.Wrapper) (*Manager, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}
	m := &Manager{
		logger: logger.WithFields(l.StringField(l.ClsKey, "tracedatamanager.Manager")),
		raw:    raw,
	}
	if err := m.SetConfig(config); err != nil {
		return nil, err
	}
	return m, nil
}

// SetConfig replaces the receiver's configuration, discarding all cached
// data.  Auto grouping resolves to equal points if the raw X column is
// regular, and to equal intervals otherwise.
func (m *Manager) SetConfig(config processingconfig.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	config = config.Clone()
	capacity := config.SnapshotCacheSize
	if config.HasIntervals() {
		capacity = len(config.GroupingIntervals)
	}
	snapshots, err := simplelru.NewLRU(capacity, func(_, value interface{}) {
		value.(*chartdata.Data).DisableCaching()
	})
	if err != nil {
		return fmt.Errorf("failed to create snapshot cache: %w", err)
	}
	if m.snapshots != nil {
		m.snapshots.Purge()
	}
	m.config = config
	switch config.GroupingMode {
	case processingconfig.EqualPoints:
		m.equalPoints = true
	case processingconfig.EqualInterval:
		m.equalPoints = false
	default:
		m.equalPoints = m.raw.IsRegular()
	}
	m.snapshots = snapshots
	m.processed = processed{}
	m.logger.WithFields(
		l.StringField("mode", config.GroupingMode.String()),
		l.StringField("equalPoints", cast.ToString(m.equalPoints)),
	).Debug("configured")
	return nil
}

// Config returns a copy of the receiver's configuration.
func (m *Manager) Config() processingconfig.Config {
	return m.config.Clone()
}

// Raw returns the receiver's raw data.
func (m *Manager) Raw() *chartdata.Data {
	return m.raw
}

// Current returns the data returned by the most recent GetData, or the raw
// data if that is stale.
func (m *Manager) Current() *chartdata.Data {
	if m.processed.state == clean {
		return m.processed.data
	}
	return m.raw
}

// Stats returns counts of the work the receiver has done.
func (m *Manager) Stats() Stats {
	return m.stats
}

// FullXMinMax returns the X range of the raw data, and false if it is
// empty.
func (m *Manager) FullXMinMax() (valuerange.Range, bool) {
	return m.raw.ColumnMinMax(0)
}

// AppendData makes rows appended to the raw data's sequences visible to the
// raw data and to every grouped snapshot.  Processed data is revalidated on
// the next GetData.
func (m *Manager) AppendData() {
	m.raw.AppendData()
	for _, key := range m.snapshots.Keys() {
		if v, ok := m.snapshots.Peek(key); ok {
			v.(*chartdata.Data).AppendData()
		}
	}
}

// BestExtent returns the X span over which the raw data, drawn width pixels
// wide with marks markSize pixels wide, would need no grouping.
func (m *Manager) BestExtent(width, markSize int) float64 {
	extent := m.raw.AverageStep() * float64(width) / float64(max(1, markSize))
	if m.config.GroupingForced && m.config.HasIntervals() {
		if points := intervalToPoints(m.raw, m.config.GroupingIntervals[0]); m.roundPoints(points) > 1 {
			extent *= points
		}
	}
	return extent
}

func (m *Manager) processingEnabled() bool {
	return m.config.ProcessingEnabled() && m.raw.RowCount() > 1 && m.raw.IsIncreasing()
}

// GetData returns the data to draw within the provided X scale with marks
// markSize pixels wide.  The raw data is returned as-is if cropping and
// grouping are disabled, if it has fewer than two rows, or if its X column
// is not increasing.  The returned data must not be retained past the next
// GetData or SetConfig.
func (m *Manager) GetData(s scale.Scale, markSize int) (*chartdata.Data, error) {
	m.stats.Requests++
	if !m.processingEnabled() {
		m.processed = processed{}
		m.stats.Bypassed++
		return m.raw, nil
	}
	key := memoKey{
		scale:          s,
		pixelsPerPoint: max(1, markSize),
		rawRows:        m.raw.RowCount(),
	}
	if m.processed.validFor(key, m.config.GroupingStability, m.raw) {
		return m.processed.data, nil
	}
	m.stats.Processed++
	data, err := m.processData(s, key.pixelsPerPoint)
	if err != nil {
		m.processed = processed{}
		return nil, err
	}
	m.processed = processed{
		state: clean,
		key:   key,
		data:  data,
	}
	return data, nil
}

func (m *Manager) processData(s scale.Scale, pixelsPerPoint int) (*chartdata.Data, error) {
	full, ok := m.raw.ColumnMinMax(0)
	if !ok {
		return m.raw.View(0, 0), nil
	}
	visible := valuerange.New(s.Domain())
	pixels := valuerange.New(s.Range())
	drawingWidth := 0.0
	if drawn, ok := valuerange.Intersect(pixels, valuerange.New(s.Scale(full.Min), s.Scale(full.Max))); ok {
		drawingWidth = drawn.Length()
	}
	minMax, ok := valuerange.Intersect(full, visible)
	if !ok || drawingWidth < 1 {
		return m.raw.View(0, 0), nil
	}

	groupInterval, pointsInGroup := 0.0, 1
	if m.config.GroupingEnabled {
		groupInterval, pointsInGroup = m.groupInterval(minMax.Length() * float64(pixelsPerPoint) / drawingWidth)
	}
	grouping := groupInterval > 0

	var err error
	data, grouped := m.raw, false
	shoulder := m.config.CropShoulder * pointsInGroup
	if grouping && m.config.GroupAll {
		if data, err = m.groupAll(groupInterval); err != nil {
			return nil, err
		}
		grouped = true
		shoulder = m.config.CropShoulder
	}
	if m.config.CropEnabled && (full.Min < visible.Min || full.Max > visible.Max) {
		rows := data.RowCount()
		if rows == 0 {
			return data, nil
		}
		minIndex, maxIndex := 0, rows-1
		if full.Min < visible.Min {
			minIndex = data.Bisect(minMax.Min, nil) - shoulder
		}
		if full.Max > visible.Max {
			maxIndex = data.Bisect(minMax.Max, nil) + shoulder
		}
		minIndex = min(max(minIndex, 0), rows-1)
		maxIndex = min(max(maxIndex, minIndex), rows-1)
		data = data.View(minIndex, maxIndex-minIndex+1)
		if grouping && !grouped {
			if data, err = m.group(data, groupInterval); err != nil {
				return nil, err
			}
			m.logger.WithFields(
				l.StringField("interval", cast.ToString(groupInterval)),
				l.IntField("from", minIndex),
				l.IntField("to", maxIndex),
			).Debug("cropped and grouped")
		}
		return data, nil
	}
	if grouping && !grouped {
		return m.groupAll(groupInterval)
	}
	return data, nil
}

// groupInterval returns the interval to group by given the ideal interval,
// and the number of raw rows that interval spans.  It returns a zero
// interval if no grouping should be done.
func (m *Manager) groupInterval(ideal float64) (float64, int) {
	interval := ideal
	points := m.roundPoints(intervalToPoints(m.raw, interval))
	switch {
	case m.config.HasIntervals() && points > 1:
		interval = m.snapInterval(interval)
		points = m.roundPoints(intervalToPoints(m.raw, interval))
	case m.config.HasIntervals() && m.config.GroupingForced:
		interval = m.config.GroupingIntervals[0]
		points = m.roundPoints(intervalToPoints(m.raw, interval))
		return interval, points
	case points > 1:
		interval = float64(points) * m.raw.AverageStep()
	}
	if points <= 1 {
		return 0, 1
	}
	return interval, points
}

// snapInterval returns the first palette interval that is within the
// configured precision of ideal, or larger than it.  If there is none, it
// returns the largest palette interval.
func (m *Manager) snapInterval(ideal float64) float64 {
	for _, iv := range m.config.GroupingIntervals {
		if math.Abs(ideal-iv) < m.config.IntervalPrecision*iv || ideal < iv {
			return iv
		}
	}
	return m.config.GroupingIntervals[len(m.config.GroupingIntervals)-1]
}

// roundPoints rounds a fractional number of points per group to an
// integer, rounding down when the fraction is no larger than the
// configured precision.
func (m *Manager) roundPoints(points float64) int {
	precision := m.config.RoundingPrecision
	if points < 1+precision {
		return 1
	}
	rounded := math.Ceil(points)
	if rounded-points > 1-precision {
		rounded--
	}
	return int(rounded)
}

// intervalToPoints returns the number of d's rows an interval spans on
// average.
func intervalToPoints(d *chartdata.Data, interval float64) float64 {
	step := d.AverageStep()
	if !(step > 0) {
		return 1
	}
	return interval / step
}

// group groups d by the provided interval.  In equal-points mode the
// interval is converted to a row count relative to d.
func (m *Manager) group(d *chartdata.Data, interval float64) (*chartdata.Data, error) {
	var grouped *chartdata.Data
	var err error
	if m.equalPoints {
		points := m.roundPoints(intervalToPoints(d, interval))
		if points <= 1 {
			return d, nil
		}
		grouped, err = d.ResampleByEqualPoints(points)
	} else {
		grouped, err = d.ResampleByEqualInterval(interval)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to group trace data: %w", err)
	}
	grouped.Cache()
	return grouped, nil
}

// groupAll returns the whole trace grouped by the provided interval.
func (m *Manager) groupAll(interval float64) (*chartdata.Data, error) {
	if m.config.HasIntervals() {
		return m.groupAllByPalette(interval)
	}
	return m.groupAllByStep(interval)
}

// groupAllByPalette returns the snapshot for the provided palette interval,
// first building any missing snapshots for smaller palette intervals.  In
// equal-points mode a snapshot whose row count is a multiple of its
// predecessor's is derived from the predecessor.
func (m *Manager) groupAllByPalette(interval float64) (*chartdata.Data, error) {
	intervals := m.config.GroupingIntervals
	index := max(0, slices.Index(intervals, interval))
	for i := 0; i <= index; i++ {
		if m.snapshots.Contains(i) {
			continue
		}
		var snapshot *chartdata.Data
		if m.equalPoints && i > 0 {
			prevIf, _ := m.snapshots.Peek(i - 1)
			prev := prevIf.(*chartdata.Data)
			points := m.roundPoints(intervalToPoints(m.raw, intervals[i]))
			prevPoints := m.roundPoints(intervalToPoints(m.raw, intervals[i-1]))
			if prevPoints > 1 && points%prevPoints == 0 {
				if ratio := points / prevPoints; ratio > 1 {
					regrouped, err := prev.ResampleByEqualPoints(ratio)
					if err != nil {
						return nil, fmt.Errorf("failed to regroup trace data: %w", err)
					}
					regrouped.Cache()
					snapshot = regrouped
					m.stats.Regrouped++
					m.logger.WithFields(l.IntField("index", i), l.IntField("ratio", ratio)).Debug("regrouped snapshot")
				} else {
					snapshot = prev
				}
			}
		}
		if snapshot == nil {
			grouped, err := m.group(m.raw, intervals[i])
			if err != nil {
				return nil, err
			}
			snapshot = grouped
			m.stats.Grouped++
			m.logger.WithFields(l.IntField("index", i), l.StringField("interval", cast.ToString(intervals[i]))).Debug("grouped snapshot")
		}
		m.snapshots.Add(i, snapshot)
	}
	v, _ := m.snapshots.Get(index)
	return v.(*chartdata.Data), nil
}

// groupAllByStep returns a whole-trace snapshot suitable for the provided
// interval.  A retained snapshot is reused when the interval spans fewer
// than RegroupingStep of its rows but at least 1/RegroupingStep of them.
// When the interval spans RegroupingStep or more rows of the newest
// snapshot, a coarser snapshot is derived from it; otherwise the raw data
// is grouped anew.
func (m *Manager) groupAllByStep(interval float64) (*chartdata.Data, error) {
	step := m.config.RegroupingStep
	keys := m.snapshots.Keys()
	for i := len(keys) - 1; i >= 0; i-- {
		v, _ := m.snapshots.Peek(keys[i])
		snapshot := v.(*chartdata.Data)
		points := intervalToPoints(snapshot, interval)
		if rounded := m.roundPoints(points); (rounded < step || rounded <= 1) && points >= 1/float64(step) {
			m.snapshots.Get(keys[i])
			m.stats.Reused++
			m.logger.WithFields(l.StringField("interval", cast.ToString(interval))).Debug("reused snapshot")
			return snapshot, nil
		}
	}
	if len(keys) > 0 {
		v, _ := m.snapshots.Peek(keys[len(keys)-1])
		newest := v.(*chartdata.Data)
		if rounded := m.roundPoints(intervalToPoints(newest, interval)); rounded >= step && rounded > 1 {
			var regrouped *chartdata.Data
			var err error
			if m.equalPoints {
				regrouped, err = newest.ResampleByEqualPoints(rounded)
			} else {
				regrouped, err = m.raw.ResampleByEqualInterval(float64(rounded) * newest.AverageStep())
			}
			if err != nil {
				return nil, fmt.Errorf("failed to regroup trace data: %w", err)
			}
			regrouped.Cache()
			m.addSnapshot(regrouped)
			m.stats.Regrouped++
			m.logger.WithFields(l.IntField("points", rounded)).Debug("regrouped snapshot")
			return regrouped, nil
		}
	}
	grouped, err := m.group(m.raw, interval)
	if err != nil {
		return nil, err
	}
	m.addSnapshot(grouped)
	m.stats.Grouped++
	m.logger.WithFields(l.StringField("interval", cast.ToString(interval))).Debug("grouped snapshot")
	return grouped, nil
}

func (m *Manager) addSnapshot(d *chartdata.Data) {
	m.snapshots.Add(m.nextSnapshotID, d)
	m.nextSnapshotID++
}

// Nearest returns the row of the current data whose X value is closest to
// x, preferring the earlier row on ties, or NoPoint if there are no rows.
func (m *Manager) Nearest(x float64) int {
	d := m.Current()
	rows := d.RowCount()
	if rows == 0 {
		return NoPoint
	}
	var order []int
	if !d.IsIncreasing() {
		if m.sorterFor != d || m.sorterRows != rows {
			m.sorter, m.sorterFor, m.sorterRows = d.SortedRows(), d, rows
		}
		order = m.sorter
	}
	pos := min(d.Bisect(x, order), rows-1)
	prevPos := max(pos-1, 0)
	row, prevRow := pos, prevPos
	if order != nil {
		row, prevRow = order[pos], order[prevPos]
	}
	prevDist, dist := math.Abs(d.X(prevRow)-x), math.Abs(d.X(row)-x)
	switch {
	case prevDist < dist:
		return prevRow
	case dist < prevDist:
		return row
	}
	return min(row, prevRow)
}
