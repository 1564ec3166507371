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

package cmd

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/aclements/go-gg/table"
	"github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
	"github.com/ilhamster/tracechart/axis"
	"github.com/ilhamster/tracechart/chart"
	chartdata "github.com/ilhamster/tracechart/chart_data"
	processingconfig "github.com/ilhamster/tracechart/processing_config"
	"github.com/ilhamster/tracechart/sequence"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
	"github.com/spf13/cobra"
)

// phaseStep is the signal's phase advance per row.
const phaseStep = 0.01

type simulateOptions struct {
	configPath string
	points     int
	width      int
	markSize   int
	frames     int
	appendRows int
	verbose    bool
}

func (o simulateOptions) validate() error {
	switch {
	case o.points < 2:
		return fmt.Errorf("%w: --points %d, need at least 2", commerr.ErrInvalidArgument, o.points)
	case o.width < 1:
		return fmt.Errorf("%w: --width %d", commerr.ErrInvalidArgument, o.width)
	case o.markSize < 1:
		return fmt.Errorf("%w: --mark %d", commerr.ErrInvalidArgument, o.markSize)
	case o.frames < 2:
		return fmt.Errorf("%w: --frames %d, need at least 2", commerr.ErrInvalidArgument, o.frames)
	case o.appendRows < 0:
		return fmt.Errorf("%w: --append %d", commerr.ErrInvalidArgument, o.appendRows)
	}
	return nil
}

func newSimulateCmd() *cobra.Command {
	opts := simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a zoom and streaming session over a synthetic trace.",
		Long: "simulate builds a synthetic signal, zooms into it, pans, zooms back out " +
			"and appends rows, printing how much data each redraw would draw.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var logger l.Wrapper
			if opts.verbose {
				logger = l.NewConsoleLoggerWrapper()
			}
			return runSimulation(cmd.Context(), opts, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML processing configuration file")
	cmd.Flags().IntVar(&opts.points, "points", 1_000_000, "rows in the synthetic trace")
	cmd.Flags().IntVar(&opts.width, "width", 800, "chart width, in pixels")
	cmd.Flags().IntVar(&opts.markSize, "mark", 1, "mark width, in pixels")
	cmd.Flags().IntVar(&opts.frames, "frames", 6, "zoom steps in each direction")
	cmd.Flags().IntVar(&opts.appendRows, "append", 10_000, "rows appended at the end of the session")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log processing decisions")
	return cmd
}

// signal returns n samples of the synthetic signal, starting at row from.
func signal(from, n int) []float64 {
	if n == 0 {
		return nil
	}
	var phases []float64
	if n == 1 {
		phases = []float64{float64(from) * phaseStep}
	} else {
		phases = vec.Linspace(float64(from)*phaseStep, float64(from+n-1)*phaseStep, n)
	}
	return vec.Map(func(p float64) float64 {
		return math.Sin(p) + 0.3*math.Sin(17.3*p)
	}, phases)
}

// session accumulates one report row per redraw.
type session struct {
	steps   []int
	actions []string
	mins    []float64
	maxes   []float64
	raw     []int
	drawn   []int
	reused  []bool
}

func (s *session) record(action string, f chart.Frame) {
	min, max := f.XScale.Domain()
	s.steps = append(s.steps, len(s.steps))
	s.actions = append(s.actions, action)
	s.mins = append(s.mins, min)
	s.maxes = append(s.maxes, max)
	s.raw = append(s.raw, f.RawRows)
	s.drawn = append(s.drawn, f.Data.RowCount())
	s.reused = append(s.reused, f.Reused)
}

func (s *session) report() table.Grouping {
	return new(table.Builder).
		Add("step", s.steps).
		Add("action", s.actions).
		Add("x min", s.mins).
		Add("x max", s.maxes).
		Add("raw rows", s.raw).
		Add("drawn rows", s.drawn).
		Add("reused", s.reused).
		Done()
}

func runSimulation(ctx context.Context, opts simulateOptions, w io.Writer, logger l.Wrapper) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}
	config := chart.DefaultConfig()
	config.MarkSize = opts.markSize
	if opts.configPath != "" {
		processing, err := processingconfig.Load(opts.configPath)
		if err != nil {
			return err
		}
		config.Processing = processing
	}
	c, err := chart.New(config, logger)
	if err != nil {
		return err
	}
	c.SetArea(chart.Area{Width: opts.width, Height: max(1, opts.width/2)})

	y := sequence.NewSlice(signal(0, opts.points)...)
	data := chartdata.New("x", sequence.NewRegularFollowing(0, 1, y)).
		WithColumn("y", y, chartdata.Range)
	trace, err := c.AddTrace(data, chart.TraceOptions{Name: "signal"})
	if err != nil {
		return err
	}

	s := &session{}
	redraw := func(action string) error {
		frames, err := c.Prepare(ctx)
		if err != nil {
			return err
		}
		s.record(action, frames[trace])
		return nil
	}
	if err := redraw("full"); err != nil {
		return err
	}
	zooms := vec.Linspace(1.5, 3, opts.frames)
	for _, factor := range zooms {
		if err := c.ZoomX(axis.Bottom, factor); err != nil {
			return err
		}
		if err := redraw(fmt.Sprintf("zoom x%.2f", factor)); err != nil {
			return err
		}
	}
	for _, pixels := range []float64{float64(opts.width) / 4, float64(opts.width) / 100} {
		if err := c.TranslateX(axis.Bottom, pixels); err != nil {
			return err
		}
		if err := redraw(fmt.Sprintf("pan %.0fpx", pixels)); err != nil {
			return err
		}
	}
	for i := len(zooms) - 1; i >= 0; i-- {
		if err := c.ZoomX(axis.Bottom, 1/zooms[i]); err != nil {
			return err
		}
		if err := redraw(fmt.Sprintf("zoom x%.2f", 1/zooms[i])); err != nil {
			return err
		}
	}
	if err := c.AutoScaleX(axis.Bottom); err != nil {
		return err
	}
	if err := redraw("autoscale"); err != nil {
		return err
	}
	if opts.appendRows > 0 {
		y.Append(signal(opts.points, opts.appendRows)...)
		c.AppendData()
		if err := redraw(fmt.Sprintf("append %d", opts.appendRows)); err != nil {
			return err
		}
	}

	table.Fprint(w, s.report())
	drawn := make([]float64, len(s.drawn))
	for i, n := range s.drawn {
		drawn[i] = float64(n)
	}
	lo, hi := stats.Bounds(drawn)
	st, err := c.TraceStats(trace)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\ndrawn rows per redraw: mean %.1f, min %.0f, max %.0f\n", stats.Mean(drawn), lo, hi)
	fmt.Fprintf(w, "redraws: %d, processed: %d, snapshots grouped: %d, regrouped: %d, reused: %d\n",
		st.Requests, st.Processed, st.Grouped, st.Regrouped, st.Reused)
	if extent, ok := c.BestExtent(axis.Bottom); ok {
		fmt.Fprintf(w, "best extent: %s\n", axis.Double.Format(extent))
	}
	return nil
}
