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

// Package chart arranges traces of chart data against shared axes, and
// prepares, for each redraw, the reduced data each trace should draw.
// A new Chart may be created via
//
//	c, err := New(DefaultConfig(), logger)
//
// Its pixel geometry is set via
//
//	c.SetArea(Area{Width: 800, Height: 600})
//
// Traces are added to a stack of Y axes via
//
//	trace, err := c.AddTrace(data, TraceOptions{Stack: LastStack})
//
// Then, on every redraw,
//
//	frames, err := c.Prepare(ctx)
//
// resolves every axis' scale and returns one Frame per trace holding the
// data to draw.
//
// The layout of a chart is:
//
//	chart
//	  * two X axes (bottom, top), each spanning the area's width
//	  * repeated stacks, splitting the area's height by weight
//
//	stack
//	  * two Y axes (left, right)
//
//	trace
//	  * one X axis, one Y axis in one stack
//	  * raw data, reduced per redraw by a trace data manager
//
// A Chart is not safe for concurrent use.  Prepare processes traces
// concurrently, so no chartdata.Data may back more than one trace.
package chart

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/ilhamster/tracechart/axis"
	chartdata "github.com/ilhamster/tracechart/chart_data"
	processingconfig "github.com/ilhamster/tracechart/processing_config"
	"github.com/ilhamster/tracechart/scale"
	tracedatamanager "github.com/ilhamster/tracechart/trace_data_manager"
	valuerange "github.com/ilhamster/tracechart/value_range"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
	"golang.org/x/sync/errgroup"
)

// ErrIllegalState is returned when an operation conflicts with the chart's
// current contents.
var ErrIllegalState = errors.New("illegal state")

// LastStack selects the chart's last stack in TraceOptions.
const LastStack = -1

// Config configures a Chart.
type Config struct {
	// Processing configures every trace's data manager.
	Processing processingconfig.Config
	// XType is the type of both X axes.
	XType axis.Type
	// StackGap is the vertical gap between stacks, in pixels.
	StackGap int
	// DefaultStackWeight is the weight of stacks added implicitly.
	DefaultStackWeight int
	// YTicks bounds the number of ticks auto-scaled Y axes are rounded to.
	// If zero, auto-scaled Y axes span exactly their data.
	YTicks int
	// MarkSize is the default width, in pixels, of a trace's marks.
	MarkSize int
}

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return Config{
		Processing:         processingconfig.Default(),
		XType:              axis.Double,
		StackGap:           4,
		DefaultStackWeight: 4,
		YTicks:             10,
		MarkSize:           1,
	}
}

// Area is a pixel rectangle.
type Area struct {
	X, Y          int
	Width, Height int
}

// TraceOptions places a trace within a chart.
type TraceOptions struct {
	// Name is the trace's name.  If empty, the trace is named Trace<N>,
	// with N its number.
	Name string
	// Stack is the stack holding the trace's Y axis, or LastStack.
	Stack     int
	XPosition axis.XPosition
	YPosition axis.YPosition
	// MarkSize is the width, in pixels, of the trace's marks.  If zero, the
	// chart's default is used.
	MarkSize int
}

type trace struct {
	name     string
	manager  *tracedatamanager.Manager
	xIndex   int
	yIndex   int
	markSize int
}

type layoutState int

const (
	dirty layoutState = iota
	clean
)

// Chart is a set of traces drawn against shared axes.
type Chart struct {
	logger       l.Wrapper
	config       Config
	area         Area
	xAxes        []*axis.Axis
	yAxes        []*axis.Axis
	stackWeights []int
	traces       []*trace
	layout       layoutState
}

// New returns a new Chart with no stacks and no traces.  If logger is nil,
// nothing is logged.
func New(config Config, logger l.Wrapper) (*Chart, error) {
	if err := config.Processing.Validate(); err != nil {
		return nil, err
	}
	if config.DefaultStackWeight < 1 {
		return nil, fmt.Errorf("%w: default stack weight %d", commerr.ErrInvalidArgument, config.DefaultStackWeight)
	}
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}
	c := &Chart{
		logger: logger.WithFields(l.StringField(l.ClsKey, "chart.Chart")),
		config: config,
	}
	for range axis.XPositions {
		c.xAxes = append(c.xAxes, axis.New(config.XType, scale.NewLinear(0, 1, 0, 0)))
	}
	return c, nil
}

// SetArea sets the receiver's pixel geometry.
func (c *Chart) SetArea(area Area) {
	c.area = area
	c.layout = dirty
}

// Area returns the receiver's pixel geometry.
func (c *Chart) Area() Area {
	return c.area
}

// AddStack adds a stack with the provided weight below the existing ones.
func (c *Chart) AddStack(weight int) error {
	if weight < 1 {
		return fmt.Errorf("%w: stack weight %d", commerr.ErrInvalidArgument, weight)
	}
	c.yAxes = append(c.yAxes,
		axis.New(axis.Double, scale.NewLinear(0, 1, 0, 0)),
		axis.New(axis.Double, scale.NewLinear(0, 1, 0, 0)),
	)
	c.stackWeights = append(c.stackWeights, weight)
	c.layout = dirty
	return nil
}

// SetStackWeight changes the weight of the specified stack.
func (c *Chart) SetStackWeight(stack, weight int) error {
	if err := c.checkStack(stack); err != nil {
		return err
	}
	if weight < 1 {
		return fmt.Errorf("%w: stack weight %d", commerr.ErrInvalidArgument, weight)
	}
	c.stackWeights[stack] = weight
	c.layout = dirty
	return nil
}

// RemoveStack removes the specified stack.  It returns ErrIllegalState, and
// leaves the receiver unchanged, if any trace is drawn against that stack.
func (c *Chart) RemoveStack(stack int) error {
	if err := c.checkStack(stack); err != nil {
		return err
	}
	for i, t := range c.traces {
		if axis.YStack(t.yIndex) == stack {
			return fmt.Errorf("%w: stack %d is used by trace %d", ErrIllegalState, stack, i)
		}
	}
	left := axis.YIndex(stack, axis.Left)
	for _, t := range c.traces {
		if t.yIndex > left {
			t.yIndex -= 2
		}
	}
	c.yAxes = slices.Delete(c.yAxes, left, left+2)
	c.stackWeights = slices.Delete(c.stackWeights, stack, stack+1)
	c.layout = dirty
	return nil
}

// StackCount returns the number of stacks.
func (c *Chart) StackCount() int {
	return len(c.stackWeights)
}

func (c *Chart) checkStack(stack int) error {
	if stack < 0 || stack >= len(c.stackWeights) {
		return fmt.Errorf("%w: stack %d not in [0, %d)", commerr.ErrOutOfRange, stack, len(c.stackWeights))
	}
	return nil
}

func (c *Chart) checkTrace(trace int) error {
	if trace < 0 || trace >= len(c.traces) {
		return fmt.Errorf("%w: trace %d not in [0, %d)", commerr.ErrOutOfRange, trace, len(c.traces))
	}
	return nil
}

func checkXPosition(pos axis.XPosition) error {
	if pos.Index() < 0 || pos.Index() >= len(axis.XPositions) {
		return fmt.Errorf("%w: X position %s", commerr.ErrInvalidArgument, pos)
	}
	return nil
}

// AddTrace adds a trace drawing the provided data, which must hold an X
// column and at least one Y column, and returns the new trace's number.  If
// the receiver has no stacks, one is added.
func (c *Chart) AddTrace(data *chartdata.Data, opts TraceOptions) (int, error) {
	if data.ColumnCount() < 2 {
		return 0, fmt.Errorf("%w: trace data has %d columns, need an X and a Y column", commerr.ErrInvalidArgument, data.ColumnCount())
	}
	if err := checkXPosition(opts.XPosition); err != nil {
		return 0, err
	}
	if opts.YPosition != axis.Left && opts.YPosition != axis.Right {
		return 0, fmt.Errorf("%w: Y position %s", commerr.ErrInvalidArgument, opts.YPosition)
	}
	stack := opts.Stack
	if stack == LastStack {
		stack = max(0, c.StackCount()-1)
	}
	if c.StackCount() == 0 && stack == 0 {
		if err := c.AddStack(c.config.DefaultStackWeight); err != nil {
			return 0, err
		}
	}
	if err := c.checkStack(stack); err != nil {
		return 0, err
	}
	number := len(c.traces)
	manager, err := tracedatamanager.New(data, c.config.Processing, c.logger.WithFields(l.IntField("trace", number)))
	if err != nil {
		return 0, err
	}
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("Trace%d", number)
	}
	markSize := opts.MarkSize
	if markSize <= 0 {
		markSize = c.config.MarkSize
	}
	c.traces = append(c.traces, &trace{
		name:     name,
		manager:  manager,
		xIndex:   opts.XPosition.Index(),
		yIndex:   axis.YIndex(stack, opts.YPosition),
		markSize: markSize,
	})
	c.updateUsed()
	c.layout = dirty
	c.logger.WithFields(l.StringField("name", name), l.IntField("stack", stack)).Debug("added trace")
	return number, nil
}

// RemoveTrace removes the specified trace.  Later traces are renumbered.
func (c *Chart) RemoveTrace(trace int) error {
	if err := c.checkTrace(trace); err != nil {
		return err
	}
	c.traces = slices.Delete(c.traces, trace, trace+1)
	c.updateUsed()
	c.layout = dirty
	return nil
}

func (c *Chart) updateUsed() {
	for _, a := range c.xAxes {
		a.SetUsed(false)
	}
	for _, a := range c.yAxes {
		a.SetUsed(false)
	}
	for _, t := range c.traces {
		c.xAxes[t.xIndex].SetUsed(true)
		c.yAxes[t.yIndex].SetUsed(true)
	}
}

// TraceCount returns the number of traces.
func (c *Chart) TraceCount() int {
	return len(c.traces)
}

// TraceName returns the specified trace's name.
func (c *Chart) TraceName(trace int) (string, error) {
	if err := c.checkTrace(trace); err != nil {
		return "", err
	}
	return c.traces[trace].name, nil
}

// SetTraceName renames the specified trace.
func (c *Chart) SetTraceName(trace int, name string) error {
	if err := c.checkTrace(trace); err != nil {
		return err
	}
	c.traces[trace].name = name
	return nil
}

// TraceNumberByName returns the number of the first trace with the
// provided name.
func (c *Chart) TraceNumberByName(name string) (int, error) {
	for i, t := range c.traces {
		if t.name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no trace named '%s'", commerr.ErrNotFound, name)
}

// TraceStats returns counts of the work the specified trace's data manager
// has done.
func (c *Chart) TraceStats(trace int) (tracedatamanager.Stats, error) {
	if err := c.checkTrace(trace); err != nil {
		return tracedatamanager.Stats{}, err
	}
	return c.traces[trace].manager.Stats(), nil
}

// SetProcessingConfig reconfigures every trace's data manager.
func (c *Chart) SetProcessingConfig(config processingconfig.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	for _, t := range c.traces {
		if err := t.manager.SetConfig(config); err != nil {
			return err
		}
	}
	c.config.Processing = config.Clone()
	return nil
}

// XAxis returns the X axis at the provided position.
func (c *Chart) XAxis(pos axis.XPosition) (*axis.Axis, error) {
	if err := checkXPosition(pos); err != nil {
		return nil, err
	}
	return c.xAxes[pos.Index()], nil
}

// YAxis returns the Y axis at the provided position in the provided stack.
func (c *Chart) YAxis(stack int, pos axis.YPosition) (*axis.Axis, error) {
	if err := c.checkStack(stack); err != nil {
		return nil, err
	}
	if pos != axis.Left && pos != axis.Right {
		return nil, fmt.Errorf("%w: Y position %s", commerr.ErrInvalidArgument, pos)
	}
	return c.yAxes[axis.YIndex(stack, pos)], nil
}

// XScale returns the current scale of the X axis at the provided position.
func (c *Chart) XScale(pos axis.XPosition) (scale.Scale, error) {
	a, err := c.XAxis(pos)
	if err != nil {
		return scale.Scale{}, err
	}
	c.updateLayout()
	return a.Scale(), nil
}

// YScale returns the current scale of the specified Y axis.
func (c *Chart) YScale(stack int, pos axis.YPosition) (scale.Scale, error) {
	a, err := c.YAxis(stack, pos)
	if err != nil {
		return scale.Scale{}, err
	}
	c.updateLayout()
	return a.Scale(), nil
}

// SetXMinMax sets an explicit domain on the specified X axis.
func (c *Chart) SetXMinMax(pos axis.XPosition, min, max float64) error {
	a, err := c.XAxis(pos)
	if err != nil {
		return err
	}
	return a.SetMinMax(min, max)
}

// AutoScaleX makes the specified X axis span its traces' data again.
func (c *Chart) AutoScaleX(pos axis.XPosition) error {
	a, err := c.XAxis(pos)
	if err != nil {
		return err
	}
	a.AutoScale()
	return nil
}

// SetYMinMax sets an explicit domain on the specified Y axis.
func (c *Chart) SetYMinMax(stack int, pos axis.YPosition, min, max float64) error {
	a, err := c.YAxis(stack, pos)
	if err != nil {
		return err
	}
	return a.SetMinMax(min, max)
}

// AutoScaleY makes the specified Y axis span its traces' data again.
func (c *Chart) AutoScaleY(stack int, pos axis.YPosition) error {
	a, err := c.YAxis(stack, pos)
	if err != nil {
		return err
	}
	a.AutoScale()
	return nil
}

// ZoomX zooms the specified X axis by factor, keeping its minimum.
func (c *Chart) ZoomX(pos axis.XPosition, factor float64) error {
	a, err := c.XAxis(pos)
	if err != nil {
		return err
	}
	c.updateLayout()
	return a.Zoom(factor)
}

// ZoomY zooms the specified Y axis by factor, keeping its minimum.
func (c *Chart) ZoomY(stack int, pos axis.YPosition, factor float64) error {
	a, err := c.YAxis(stack, pos)
	if err != nil {
		return err
	}
	c.updateLayout()
	return a.Zoom(factor)
}

// TranslateX shifts the specified X axis by the provided number of pixels.
func (c *Chart) TranslateX(pos axis.XPosition, pixels float64) error {
	a, err := c.XAxis(pos)
	if err != nil {
		return err
	}
	c.updateLayout()
	return a.Translate(pixels)
}

// TranslateY shifts the specified Y axis by the provided number of pixels.
func (c *Chart) TranslateY(stack int, pos axis.YPosition, pixels float64) error {
	a, err := c.YAxis(stack, pos)
	if err != nil {
		return err
	}
	c.updateLayout()
	return a.Translate(pixels)
}

// AppendData makes rows appended to every trace's sequences visible.
func (c *Chart) AppendData() {
	for _, t := range c.traces {
		t.manager.AppendData()
	}
}

// BestExtent returns the smallest X span, among the traces drawn against
// the specified X axis, over which a trace's raw data needs no grouping
// across the chart's width.  It returns false if no trace has one.
func (c *Chart) BestExtent(pos axis.XPosition) (float64, bool) {
	extent, ok := 0.0, false
	for _, t := range c.traces {
		if t.xIndex != pos.Index() {
			continue
		}
		e := t.manager.BestExtent(c.area.Width, t.markSize)
		if !(e > 0) || math.IsInf(e, 0) {
			continue
		}
		if !ok || e < extent {
			extent, ok = e, true
		}
	}
	return extent, ok
}

// updateLayout assigns pixel ranges to every axis.  X axes span the area's
// width; stacks split its height by weight, top to bottom, with Y values
// growing upward.
func (c *Chart) updateLayout() {
	if c.layout == clean {
		return
	}
	for _, a := range c.xAxes {
		a.SetRange(float64(c.area.X), float64(c.area.X+c.area.Width))
	}
	weightSum := 0
	for _, w := range c.stackWeights {
		weightSum += w
	}
	if stacks := len(c.stackWeights); stacks > 0 {
		gap := max(c.config.StackGap, 0)
		height := c.area.Height - (stacks-1)*gap
		if height <= 0 {
			height, gap = c.area.Height, 0
		}
		top := float64(c.area.Y)
		for stack, w := range c.stackWeights {
			bottom := top + float64(height*w)/float64(weightSum)
			c.yAxes[axis.YIndex(stack, axis.Left)].SetRange(bottom, top)
			c.yAxes[axis.YIndex(stack, axis.Right)].SetRange(bottom, top)
			top = bottom + float64(gap)
		}
	}
	c.layout = clean
}

// Frame is the data one trace should draw in one redraw.
type Frame struct {
	Trace  int
	Name   string
	Data   *chartdata.Data
	XScale scale.Scale
	YScale scale.Scale
	// RawRows is the number of rows in the trace's raw data.
	RawRows int
	// Reused is true if the data returned for the previous redraw was
	// still valid.
	Reused bool
}

// Prepare resolves every axis' scale and returns the data each trace
// should draw.  Auto-scaled X axes span their traces' full data;
// auto-scaled Y axes span the Y values of the data prepared for them.
func (c *Chart) Prepare(ctx context.Context) ([]Frame, error) {
	c.updateLayout()
	xRanges := make([]*valuerange.Range, len(c.xAxes))
	for _, t := range c.traces {
		if r, ok := t.manager.FullXMinMax(); ok {
			xRanges[t.xIndex] = join(xRanges[t.xIndex], r)
		}
	}
	for i, a := range c.xAxes {
		if xRanges[i] != nil {
			a.FitTo(*xRanges[i], 0)
		}
	}

	frames := make([]Frame, len(c.traces))
	yRanges := make([]*valuerange.Range, len(c.traces))
	errg, ctx := errgroup.WithContext(ctx)
	for i, t := range c.traces {
		xScale := c.xAxes[t.xIndex].Scale()
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			before := t.manager.Stats()
			data, err := t.manager.GetData(xScale, t.markSize)
			if err != nil {
				return fmt.Errorf("failed to prepare trace '%s': %w", t.name, err)
			}
			after := t.manager.Stats()
			frames[i] = Frame{
				Trace:   i,
				Name:    t.name,
				Data:    data,
				XScale:  xScale,
				RawRows: t.manager.Raw().RowCount(),
				Reused:  after.Processed == before.Processed && after.Bypassed == before.Bypassed,
			}
			for col := 1; col < data.ColumnCount(); col++ {
				if r, ok := data.ColumnMinMax(col); ok {
					yRanges[i] = join(yRanges[i], r)
				}
			}
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}

	byAxis := make([]*valuerange.Range, len(c.yAxes))
	for i, t := range c.traces {
		if yRanges[i] != nil {
			byAxis[t.yIndex] = join(byAxis[t.yIndex], *yRanges[i])
		}
	}
	for i, a := range c.yAxes {
		if byAxis[i] != nil {
			a.FitTo(*byAxis[i], c.config.YTicks)
		}
	}
	for i, t := range c.traces {
		frames[i].YScale = c.yAxes[t.yIndex].Scale()
	}
	c.logger.WithFields(l.IntField("traces", len(frames))).Debug("prepared")
	return frames, nil
}

func join(acc *valuerange.Range, r valuerange.Range) *valuerange.Range {
	if acc != nil {
		r = valuerange.Join(*acc, r)
	}
	return &r
}

// Curve holds the values, at one row, of the columns derived from one raw Y
// column.  A column grouped by range, for instance, yields its minimum and
// its maximum.
type Curve struct {
	Name   string
	Values []float64
	Labels []string
}

// Tooltip describes the row of a trace's prepared data nearest to a point.
type Tooltip struct {
	Trace  int
	Row    int
	X      float64
	XLabel string
	Curves []Curve
}

// Nearest returns a tooltip for the row of the specified trace's most
// recently prepared data nearest to the provided X pixel.  It returns
// commerr.ErrNotFound if that data is empty.
func (c *Chart) Nearest(trace int, xPixel float64) (Tooltip, error) {
	if err := c.checkTrace(trace); err != nil {
		return Tooltip{}, err
	}
	c.updateLayout()
	t := c.traces[trace]
	xAxis, yAxis := c.xAxes[t.xIndex], c.yAxes[t.yIndex]
	row := t.manager.Nearest(xAxis.Scale().Invert(xPixel))
	if row == tracedatamanager.NoPoint {
		return Tooltip{}, fmt.Errorf("%w: trace '%s' has no data", commerr.ErrNotFound, t.name)
	}
	data, raw := t.manager.Current(), t.manager.Raw()
	x := data.X(row)
	ret := Tooltip{
		Trace:  trace,
		Row:    row,
		X:      x,
		XLabel: xAxis.FormatValue(x),
	}
	for origin := 1; origin < raw.ColumnCount(); origin++ {
		curve := Curve{Name: raw.ColumnName(origin)}
		for _, col := range data.ColumnsOf(origin) {
			v := data.Value(row, col)
			curve.Values = append(curve.Values, v)
			curve.Labels = append(curve.Labels, yAxis.FormatValue(v))
		}
		ret.Curves = append(ret.Curves, curve)
	}
	return ret, nil
}
