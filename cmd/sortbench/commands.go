// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/sortbench/services/sortbench/driver"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	timing      string
	logLevel    string
	logFormat   string
	quiet       bool
	output      string
	archiveDir  string
	metricsFile string
	traceFile   string
}

// paramFlags holds the per-run overrides of a harness command.
type paramFlags struct {
	iterations int
	startSize  int
	step       int
	endSize    int
}

// apply copies every flag the user set onto p.
func (f *paramFlags) apply(cmd *cobra.Command, p *driver.Params) {
	flags := cmd.Flags()
	if flags.Changed("iterations") {
		p.Iterations = f.iterations
	}
	if flags.Changed("start") {
		p.StartSize = f.startSize
	}
	if flags.Changed("step") {
		p.Step = f.step
	}
	if flags.Changed("end") {
		p.EndSize = f.endSize
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "sortbench",
		Short: "Benchmark a sort over generated input families",
		Long: `sortbench times a stable comparison sort over families of generated
sequences (random, reversed, sorted, nearly sorted, few distinct values, and
sequences of different element types) and records per-iteration totals for
later analysis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "run profile (YAML); defaults to $SORTBENCH_CONFIG")
	pf.StringVar(&opts.timing, "timing", "", "timing mode: callback or capture")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "console log format: text or json")
	pf.BoolVar(&opts.quiet, "quiet", false, "suppress console logs")
	pf.StringVar(&opts.output, "output", "", "console output: styled or plain (default: detect)")
	pf.StringVar(&opts.archiveDir, "archive-dir", "", "BadgerDB directory for the run archive")
	pf.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after a run")
	pf.StringVar(&opts.traceFile, "trace-file", "", "write OpenTelemetry spans of the run to this file as JSON")

	rootCmd.AddCommand(
		newHarnessCmd(opts, driver.HarnessStructural,
			"Time the structural families (*sort, \\sort, /sort, 3sort, +sort, %sort, ~sort, =sort)"),
		newHarnessCmd(opts, driver.HarnessShape,
			"Time the element-shape families as scalars and as 1-tuples"),
		newRunsCmd(opts),
	)
	return rootCmd
}

func newHarnessCmd(opts *rootOptions, harness, short string) *cobra.Command {
	pflags := &paramFlags{}

	cmd := &cobra.Command{
		Use:   harness + " <destination>",
		Short: short,
		Long: fmt.Sprintf(`%s

The destination is a local path or gs://bucket/object. Paths ending in .yaml
or .yml are written as YAML; everything else is JSON. Nothing is written if
the run fails or is interrupted.`, short),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHarness(cmd, opts, pflags, harness, args[0])
		},
	}

	f := cmd.Flags()
	f.IntVar(&pflags.iterations, "iterations", 0, "number of passes over the catalog")
	f.IntVar(&pflags.startSize, "start", 0, "smallest sequence length")
	f.IntVar(&pflags.step, "step", 0, "length increment")
	f.IntVar(&pflags.endSize, "end", 0, "exclusive upper bound on sequence length")
	return cmd
}

func newRunsCmd(opts *rootOptions) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect archived runs",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print an archived run's result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args[0])
		},
	}

	runsCmd.AddCommand(listCmd, showCmd)
	return runsCmd
}
