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
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sgostarter/i/commerr"
	"github.com/stretchr/testify/assert"
)

func smallSession() simulateOptions {
	return simulateOptions{
		points:     5000,
		width:      200,
		markSize:   1,
		frames:     3,
		appendRows: 500,
	}
}

func TestRunSimulation(t *testing.T) {
	var out bytes.Buffer
	assert.Nil(t, runSimulation(context.Background(), smallSession(), &out, nil))
	got := out.String()
	for _, want := range []string{
		"drawn rows",
		"full",
		"zoom x1.50",
		"zoom x0.33",
		"pan 50px",
		"autoscale",
		"append 500",
		"redraws: 11,",
		"best extent: 200",
	} {
		assert.Contains(t, got, want)
	}
}

func TestRunSimulationWithConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processing.yaml")
	assert.Nil(t, os.WriteFile(path, []byte("crop_enabled: false\ngrouping_enabled: false\n"), 0o600))
	opts := smallSession()
	opts.configPath = path
	opts.appendRows = 0
	var out bytes.Buffer
	assert.Nil(t, runSimulation(context.Background(), opts, &out, nil))
	assert.Contains(t, out.String(), "drawn rows per redraw: mean 5000.0, min 5000, max 5000")

	opts.configPath = filepath.Join(t.TempDir(), "missing.yaml")
	assert.NotNil(t, runSimulation(context.Background(), opts, &out, nil))
}

func TestRunSimulationRejects(t *testing.T) {
	for _, test := range []struct {
		description string
		modify      func(o *simulateOptions)
	}{
		{"one point", func(o *simulateOptions) { o.points = 1 }},
		{"zero width", func(o *simulateOptions) { o.width = 0 }},
		{"zero mark", func(o *simulateOptions) { o.markSize = 0 }},
		{"one frame", func(o *simulateOptions) { o.frames = 1 }},
		{"negative append", func(o *simulateOptions) { o.appendRows = -1 }},
	} {
		t.Run(test.description, func(t *testing.T) {
			opts := smallSession()
			test.modify(&opts)
			var out bytes.Buffer
			assert.ErrorIs(t, runSimulation(context.Background(), opts, &out, nil), commerr.ErrInvalidArgument)
			assert.Empty(t, out.String())
		})
	}
}

func TestSimulateCommand(t *testing.T) {
	root := newRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"simulate", "--points", "1000", "--width", "100", "--frames", "2", "--append", "0"})
	assert.Nil(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "redraws: 8,")
	assert.NotContains(t, out.String(), "append")
}
