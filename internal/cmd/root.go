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

// Package cmd provides the entrypoint and CLI command configuration for
// tracechart.
package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

func buildVersion(version, commit string) string {
	result := version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	return fmt.Sprintf("%s\ngoos: %s\ngoarch: %s", result, runtime.GOOS, runtime.GOARCH)
}

func newRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tracechart",
		Short: "Adaptive data reduction for interactive charts.",
		Long: "tracechart crops and groups large traces so that the data drawn " +
			"for a viewport is bounded by its width rather than by the trace's length.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`tracechart {{printf "version %s\n" .Version}}`)
	rootCmd.AddCommand(newSimulateCmd())
	return rootCmd
}

// Execute runs the tracechart CLI.
func Execute(version, commit string) error {
	rootCmd := newRootCmd(buildVersion(version, commit))
	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}
