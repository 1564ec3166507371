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

// Package axis provides chart axes.  An axis has a type, which describes its
// domain and how values along it are formatted, an optional title, and a
// scale mapping its domain onto a pixel range.  An axis is either
// auto-scaled, taking its domain from the data drawn against it, or has an
// explicit domain set by the user, by zooming, or by translating.
package axis

import (
	"fmt"
	"math"
	"time"

	"github.com/ilhamster/tracechart/scale"
	valuerange "github.com/ilhamster/tracechart/value_range"
	"github.com/sgostarter/i/commerr"
	"github.com/spf13/cast"
)

// XPosition is the placement of an X axis.
type XPosition int

const (
	// Bottom places an X axis below the chart.
	Bottom XPosition = iota
	// Top places an X axis above the chart.
	Top
)

// XPositions lists every X position, in index order.
var XPositions = []XPosition{Bottom, Top}

// Index returns the receiver's index among a chart's X axes.
func (p XPosition) Index() int {
	return int(p)
}

func (p XPosition) String() string {
	switch p {
	case Bottom:
		return "bottom"
	case Top:
		return "top"
	default:
		return fmt.Sprintf("XPosition(%d)", int(p))
	}
}

// YPosition is the placement of a Y axis within its stack.
type YPosition int

const (
	// Left places a Y axis at the left of its stack.
	Left YPosition = iota
	// Right places a Y axis at the right of its stack.
	Right
)

func (p YPosition) String() string {
	switch p {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("YPosition(%d)", int(p))
	}
}

// YIndex returns the index among a chart's Y axes of the axis at the
// provided position in the provided stack.  Every stack has two Y axes:
// left at an even index and right at the following odd one.
func YIndex(stack int, pos YPosition) int {
	return 2*stack + int(pos)
}

// YStack returns the stack holding the Y axis at the provided index.
func YStack(index int) int {
	return index / 2
}

// Type describes an axis' domain.
type Type int

const (
	// Double axes hold plain numbers.
	Double Type = iota
	// Timestamp axes hold nanoseconds since the Unix epoch.
	Timestamp
	// Duration axes hold nanosecond durations.
	Duration
)

func (t Type) String() string {
	switch t {
	case Double:
		return "double"
	case Timestamp:
		return "timestamp"
	case Duration:
		return "duration"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Format renders a domain value of the receiving type.
func (t Type) Format(v float64) string {
	switch t {
	case Timestamp:
		return time.Unix(0, int64(v)).UTC().Format(time.RFC3339Nano)
	case Duration:
		return time.Duration(v).String()
	default:
		return cast.ToString(v)
	}
}

// Axis is a single chart axis.
type Axis struct {
	typ       Type
	title     string
	scale     scale.Scale
	used      bool
	autoScale bool
}

// New returns a new, auto-scaled Axis of the specified type over the
// provided scale.
func New(typ Type, s scale.Scale) *Axis {
	return &Axis{
		typ:       typ,
		scale:     s,
		autoScale: true,
	}
}

// Type returns the receiver's type.
func (a *Axis) Type() Type {
	return a.typ
}

// Title returns the receiver's title.
func (a *Axis) Title() string {
	return a.title
}

// SetTitle sets the receiver's title.
func (a *Axis) SetTitle(title string) {
	a.title = title
}

// Used returns true if some trace is drawn against the receiver.
func (a *Axis) Used() bool {
	return a.used
}

// SetUsed marks the receiver used or unused.
func (a *Axis) SetUsed(used bool) {
	a.used = used
}

// Scale returns the receiver's scale.
func (a *Axis) Scale() scale.Scale {
	return a.scale
}

// SetScale replaces the receiver's scale, keeping its pixel range.  The
// receiver is no longer auto-scaled.
func (a *Axis) SetScale(s scale.Scale) {
	start, end := a.scale.Range()
	a.scale = s.WithRange(start, end)
	a.autoScale = false
}

// MinMax returns the receiver's domain.
func (a *Axis) MinMax() valuerange.Range {
	return valuerange.New(a.scale.Domain())
}

// SetMinMax sets the receiver's domain.  The receiver is no longer
// auto-scaled.
func (a *Axis) SetMinMax(min, max float64) error {
	if math.IsNaN(min) || math.IsNaN(max) || min >= max {
		return fmt.Errorf("%w: axis domain [%v, %v]", commerr.ErrInvalidArgument, min, max)
	}
	if a.scale.Kind() == scale.Log && min <= 0 {
		return fmt.Errorf("%w: log axis domain [%v, %v] includes 0", commerr.ErrInvalidArgument, min, max)
	}
	a.scale = a.scale.WithDomain(min, max)
	a.autoScale = false
	return nil
}

// AutoScale makes the receiver take its domain from its data again.
func (a *Axis) AutoScale() {
	a.autoScale = true
}

// IsAutoScale returns true if the receiver takes its domain from its data.
func (a *Axis) IsAutoScale() bool {
	return a.autoScale
}

// SetRange sets the receiver's pixel range.
func (a *Axis) SetRange(start, end float64) {
	a.scale = a.scale.WithRange(start, end)
}

// Length returns the number of whole pixels the receiver spans.
func (a *Axis) Length() int {
	return a.scale.Length()
}

// FitTo sets an auto-scaled receiver's domain to the provided data range.
// An empty range is widened by one on either side.  If maxTicks is
// positive, the domain is further widened to round tick values.  Explicitly
// scaled axes are left unchanged.
func (a *Axis) FitTo(r valuerange.Range, maxTicks int) {
	if !a.autoScale {
		return
	}
	if r.Length() == 0 {
		r = valuerange.New(r.Min-1, r.Max+1)
	}
	if a.scale.Kind() == scale.Log && r.Min <= 0 {
		return
	}
	s := a.scale.WithDomain(r.Min, r.Max)
	if maxTicks > 0 {
		s = s.Nice(maxTicks)
	}
	a.scale = s
}

// Zoom stretches the receiver's scale by factor, keeping its minimum: a
// factor of 2 halves the visible domain.  The receiver is no longer
// auto-scaled.
func (a *Axis) Zoom(factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 1) {
		return fmt.Errorf("%w: zoom factor %v, expected > 0", commerr.ErrInvalidArgument, factor)
	}
	start, end := a.scale.Range()
	zoomed := a.scale.WithRange(start, start+(end-start)*factor)
	min, _ := a.scale.Domain()
	return a.SetMinMax(min, zoomed.Invert(end))
}

// Translate shifts the receiver's domain by the provided number of pixels.
// The receiver is no longer auto-scaled.
func (a *Axis) Translate(pixels float64) error {
	start, end := a.scale.Range()
	return a.SetMinMax(a.scale.Invert(start+pixels), a.scale.Invert(end+pixels))
}

// Ticks returns at most max round values within the receiver's domain.
func (a *Axis) Ticks(max int) []float64 {
	return a.scale.Ticks(max)
}

// FormatValue renders a domain value of the receiver.
func (a *Axis) FormatValue(v float64) string {
	return a.typ.Format(v)
}
