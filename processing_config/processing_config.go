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

// Package processingconfig defines how a trace's data is cropped and
// grouped before it is drawn.
package processingconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/sgostarter/i/commerr"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// GroupingMode selects how rows are grouped.
type GroupingMode int

const (
	// Auto groups by equal points if the X column is regular, and by equal
	// intervals otherwise.
	Auto GroupingMode = iota
	// EqualPoints places a fixed number of consecutive rows in each group.
	EqualPoints
	// EqualInterval places rows whose X values share an interval-aligned
	// bucket in each group.
	EqualInterval
)

var groupingModeNames = map[GroupingMode]string{
	Auto:          "auto",
	EqualPoints:   "equal_points",
	EqualInterval: "equal_interval",
}

func (gm GroupingMode) String() string {
	if name, ok := groupingModeNames[gm]; ok {
		return name
	}
	return fmt.Sprintf("GroupingMode(%d)", int(gm))
}

// MarshalText implements encoding.TextMarshaler.
func (gm GroupingMode) MarshalText() ([]byte, error) {
	name, ok := groupingModeNames[gm]
	if !ok {
		return nil, fmt.Errorf("%w: unknown grouping mode %d", commerr.ErrInvalidArgument, int(gm))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (gm *GroupingMode) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for mode, name := range groupingModeNames {
		if s == name {
			*gm = mode
			return nil
		}
	}
	return fmt.Errorf("%w: unknown grouping mode '%s'", commerr.ErrInvalidArgument, s)
}

// Config is a trace data processing configuration.  It is a value type:
// copies are independent, except for GroupingIntervals, which Clone copies.
type Config struct {
	// CropEnabled drops rows outside the visible range, keeping
	// CropShoulder groups on either side.
	CropEnabled  bool `yaml:"crop_enabled"`
	CropShoulder int  `yaml:"crop_shoulder"`
	// GroupingEnabled groups rows when several would share a mark.
	GroupingEnabled bool `yaml:"grouping_enabled"`
	// GroupingForced groups by at least the first GroupingIntervals entry,
	// even when marks would not overlap.
	GroupingForced bool `yaml:"grouping_forced"`
	// GroupAll groups all rows before cropping instead of grouping only
	// the cropped rows, as suits an overview of the whole trace.
	GroupAll     bool         `yaml:"group_all"`
	GroupingMode GroupingMode `yaml:"grouping_mode"`
	// GroupingIntervals, if set, is the increasing palette of allowed
	// group intervals.
	GroupingIntervals []float64 `yaml:"grouping_intervals"`
	// GroupingStability is the percentage by which the drawable width may
	// change before grouped data is recomputed.
	GroupingStability int `yaml:"grouping_stability"`
	// RegroupingStep is the ratio between group sizes at which grouped
	// data is regrouped rather than reused.
	RegroupingStep int `yaml:"regrouping_step"`
	// RoundingPrecision biases rounding of points-per-group downward: a
	// fraction above an integer no larger than this rounds down.
	RoundingPrecision float64 `yaml:"rounding_precision"`
	// IntervalPrecision is the relative tolerance within which an ideal
	// interval snaps to a smaller palette interval.
	IntervalPrecision float64 `yaml:"interval_precision"`
	// SnapshotCacheSize bounds the whole-trace grouped snapshots retained
	// when no palette is set.
	SnapshotCacheSize int `yaml:"snapshot_cache_size"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		CropEnabled:       true,
		CropShoulder:      2,
		GroupingEnabled:   true,
		GroupingMode:      Auto,
		GroupingStability: 20,
		RegroupingStep:    2,
		RoundingPrecision: 0.2,
		IntervalPrecision: 0.1,
		SnapshotCacheSize: 1,
	}
}

// Clone returns a deep copy of the receiver.
func (c Config) Clone() Config {
	c.GroupingIntervals = append([]float64(nil), c.GroupingIntervals...)
	if len(c.GroupingIntervals) == 0 {
		c.GroupingIntervals = nil
	}
	return c
}

// HasIntervals returns true if a grouping interval palette is set.
func (c Config) HasIntervals() bool {
	return len(c.GroupingIntervals) > 0
}

// ProcessingEnabled returns true if cropping or grouping is enabled.
func (c Config) ProcessingEnabled() bool {
	return c.CropEnabled || c.GroupingEnabled
}

// Validate returns an error if the receiver is not a usable configuration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", commerr.ErrInvalidArgument, fmt.Sprintf(format, args...))
	}
	switch {
	case c.CropShoulder < 0:
		return invalid("crop shoulder %d is negative", c.CropShoulder)
	case c.GroupingStability < 0 || c.GroupingStability > 100:
		return invalid("grouping stability %d%% not in [0, 100]", c.GroupingStability)
	case c.RegroupingStep < 1:
		return invalid("regrouping step %d is less than 1", c.RegroupingStep)
	case c.RoundingPrecision < 0 || c.RoundingPrecision >= 1:
		return invalid("rounding precision %v not in [0, 1)", c.RoundingPrecision)
	case c.IntervalPrecision < 0 || c.IntervalPrecision >= 1:
		return invalid("interval precision %v not in [0, 1)", c.IntervalPrecision)
	case c.SnapshotCacheSize < 1:
		return invalid("snapshot cache size %d is less than 1", c.SnapshotCacheSize)
	case c.GroupingForced && !c.HasIntervals():
		return invalid("forced grouping requires grouping intervals")
	}
	if _, ok := groupingModeNames[c.GroupingMode]; !ok {
		return invalid("unknown grouping mode %d", int(c.GroupingMode))
	}
	for i, iv := range c.GroupingIntervals {
		if !(iv > 0) {
			return invalid("grouping interval %v is not positive", iv)
		}
		if i > 0 && iv <= c.GroupingIntervals[i-1] {
			return invalid("grouping intervals are not increasing at %v", iv)
		}
	}
	return nil
}

// Parse decodes a YAML configuration.  Fields absent from data keep their
// default values.
func Parse(data []byte) (Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("failed to parse processing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Load reads and decodes a YAML configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read processing config: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the receiver as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// FromMap decodes a loosely typed configuration, such as one assembled from
// flags or decoded from JSON.  Keys match the YAML field names; absent keys
// keep their default values.
func FromMap(m map[string]any) (Config, error) {
	c := Default()
	for key, v := range m {
		var err error
		switch key {
		case "crop_enabled":
			c.CropEnabled, err = cast.ToBoolE(v)
		case "crop_shoulder":
			c.CropShoulder, err = cast.ToIntE(v)
		case "grouping_enabled":
			c.GroupingEnabled, err = cast.ToBoolE(v)
		case "grouping_forced":
			c.GroupingForced, err = cast.ToBoolE(v)
		case "group_all":
			c.GroupAll, err = cast.ToBoolE(v)
		case "grouping_mode":
			var s string
			if s, err = cast.ToStringE(v); err == nil {
				err = c.GroupingMode.UnmarshalText([]byte(s))
			}
		case "grouping_intervals":
			c.GroupingIntervals, err = toFloat64s(v)
		case "grouping_stability":
			c.GroupingStability, err = cast.ToIntE(v)
		case "regrouping_step":
			c.RegroupingStep, err = cast.ToIntE(v)
		case "rounding_precision":
			c.RoundingPrecision, err = cast.ToFloat64E(v)
		case "interval_precision":
			c.IntervalPrecision, err = cast.ToFloat64E(v)
		case "snapshot_cache_size":
			c.SnapshotCacheSize, err = cast.ToIntE(v)
		default:
			err = fmt.Errorf("%w: unknown key", commerr.ErrInvalidArgument)
		}
		if err != nil {
			return Config{}, fmt.Errorf("processing config '%s': %w", key, err)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// toFloat64s accepts a float slice, a generic slice, or a comma-separated
// string.
func toFloat64s(v any) ([]float64, error) {
	var items []any
	switch vs := v.(type) {
	case []float64:
		return append([]float64(nil), vs...), nil
	case string:
		for _, f := range strings.FieldsFunc(vs, func(r rune) bool { return r == ',' || r == ' ' }) {
			items = append(items, f)
		}
	default:
		var err error
		if items, err = cast.ToSliceE(v); err != nil {
			return nil, err
		}
	}
	ret := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := cast.ToFloat64E(item)
		if err != nil {
			return nil, err
		}
		ret = append(ret, f)
	}
	return ret, nil
}
