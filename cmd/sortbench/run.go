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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/sortbench/pkg/logging"
	"github.com/AleutianAI/sortbench/pkg/ux"
	"github.com/AleutianAI/sortbench/services/sortbench/adapter"
	"github.com/AleutianAI/sortbench/services/sortbench/catalog"
	"github.com/AleutianAI/sortbench/services/sortbench/config"
	"github.com/AleutianAI/sortbench/services/sortbench/driver"
	"github.com/AleutianAI/sortbench/services/sortbench/results"
	bstore "github.com/AleutianAI/sortbench/services/sortbench/storage/badger"
)

// errNoArchive is returned by the runs commands when no archive is configured.
var errNoArchive = errors.New("no archive directory configured (set archive.dir or --archive-dir)")

// ---- Session ----

// session is the configuration, logger and console shared by one command.
type session struct {
	cfg     config.Config
	logger  *logging.Logger
	printer *ux.Printer
}

func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.timing != "" {
		cfg.Timing = opts.timing
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.quiet {
		cfg.Log.Quiet = true
	}
	if opts.archiveDir != "" {
		cfg.Archive.Dir = opts.archiveDir
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}
	if opts.traceFile != "" {
		cfg.TraceFile = opts.traceFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return &session{
		cfg: cfg,
		logger: logging.New(logging.Config{
			Level:   level,
			LogDir:  cfg.Log.Dir,
			Service: "sortbench",
			JSON:    cfg.Log.Format == "json",
			Quiet:   cfg.Log.Quiet,
			Output:  cmd.ErrOrStderr(),
		}),
		printer: ux.NewPrinter(cmd.OutOrStdout(), outputMode(cmd, opts.output)),
	}, nil
}

func (s *session) close() {
	if err := s.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}

func outputMode(cmd *cobra.Command, flag string) ux.OutputMode {
	if m := ux.ParseOutputMode(flag); m != "" {
		return m
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return ux.DetectOutputMode(f)
	}
	return ux.DetectOutputMode(nil)
}

func (s *session) openArchive() (*bstore.DB, *results.Archive, error) {
	if s.cfg.Archive.Dir == "" {
		return nil, nil, errNoArchive
	}
	cfg := bstore.DefaultConfig(logging.ExpandPath(s.cfg.Archive.Dir))
	cfg.Logger = s.logger.Slog()
	db, err := bstore.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open run archive: %w", err)
	}
	return db, results.NewArchive(db), nil
}

// ---- Harness run ----

// runOutcome is a finished run waiting to be persisted.
type runOutcome struct {
	id       uuid.UUID
	harness  string
	params   driver.Params
	started  time.Time
	finished time.Time
	result   any
}

func runHarness(cmd *cobra.Command, opts *rootOptions, pflags *paramFlags, harness, dest string) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	mode, err := adapter.ParseMode(s.cfg.Timing)
	if err != nil {
		return err
	}

	out := runOutcome{id: uuid.New(), harness: harness}
	logger := s.logger.With("run_id", out.id.String())

	reg := prometheus.NewRegistry()
	driverOpts := []driver.Option{
		driver.WithLogger(logger.Slog()),
		driver.WithProgress(ux.NewBenchmarkProgress(s.printer)),
		driver.WithMetrics(driver.NewMetrics(reg)),
	}
	if s.cfg.TraceFile != "" {
		tracer, shutdown, err := openTraceFile(logging.ExpandPath(s.cfg.TraceFile))
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("flush trace file", "error", err.Error())
			}
		}()
		driverOpts = append(driverOpts, driver.WithTracer(tracer))
	}

	out.started = time.Now()
	switch harness {
	case driver.HarnessStructural:
		out.params = s.cfg.Structural
		pflags.apply(cmd, &out.params)
		timer, err := adapter.NewStructural(mode)
		if err != nil {
			return err
		}
		series, err := driver.New(catalog.Structural(), driverOpts...).RunStructural(ctx, timer, out.params)
		if err != nil {
			return err
		}
		out.result = series
	case driver.HarnessShape:
		out.params = s.cfg.Shape
		pflags.apply(cmd, &out.params)
		timer, err := adapter.NewShape(mode)
		if err != nil {
			return err
		}
		shape, err := driver.New(catalog.Shape(), driverOpts...).RunShape(ctx, timer, out.params)
		if err != nil {
			return err
		}
		out.result = shape
	default:
		return fmt.Errorf("unknown harness %q", harness)
	}
	out.finished = time.Now()

	if err := persist(ctx, s, dest, out.result); err != nil {
		return err
	}
	s.printer.Field("run", out.id.String())
	s.printer.Field("saved", dest)

	// Every configured sink is attempted; their errors are joined.
	var errs []error
	if s.cfg.Archive.Dir != "" {
		errs = append(errs, archiveRun(ctx, s, dest, mode, out))
	}
	if s.cfg.Influx.Enabled() {
		errs = append(errs, exportInflux(ctx, s, out))
	}
	if s.cfg.MetricsFile != "" {
		path := logging.ExpandPath(s.cfg.MetricsFile)
		if err := prometheus.WriteToTextfile(path, reg); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		} else {
			logger.Debug("metrics written", "path", path)
		}
	}
	return errors.Join(errs...)
}

// openTraceFile installs a tracer whose spans are written synchronously to
// path. shutdown flushes the exporter and closes the file.
func openTraceFile(path string) (trace.Tracer, func(context.Context) error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace file: %w", err)
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), f.Close())
	}
	return tp.Tracer("sortbench.driver"), shutdown, nil
}

func persist(ctx context.Context, s *session, dest string, result any) error {
	store := &results.Store{}
	if _, _, ok := results.ParseGCSURL(dest); ok {
		client, err := results.NewGCSClient(ctx, s.cfg.GCS.CredentialsFile)
		if err != nil {
			return err
		}
		defer client.Close()
		store.Objects = client
	}
	if err := store.Persist(ctx, dest, result); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func archiveRun(ctx context.Context, s *session, dest string, mode adapter.Mode, out runOutcome) error {
	db, archive, err := s.openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	payload, err := json.Marshal(out.result)
	if err != nil {
		return fmt.Errorf("encode result for archive: %w", err)
	}
	_, err = archive.Save(ctx, results.Record{
		ID:          out.id,
		Harness:     out.harness,
		Timing:      string(mode),
		Iterations:  out.params.Iterations,
		StartSize:   out.params.StartSize,
		Step:        out.params.Step,
		EndSize:     out.params.EndSize,
		Destination: dest,
		StartedAt:   out.started,
		FinishedAt:  out.finished,
		Result:      payload,
	})
	return err
}

func exportInflux(ctx context.Context, s *session, out runOutcome) error {
	sink := results.NewInfluxSink(results.InfluxConfig{
		URL:    s.cfg.Influx.URL,
		Token:  s.cfg.Influx.Token,
		Org:    s.cfg.Influx.Org,
		Bucket: s.cfg.Influx.Bucket,
	})
	defer sink.Close()

	switch r := out.result.(type) {
	case *results.Series:
		return sink.ExportSeries(ctx, out.id.String(), out.harness, results.VariantScalar, out.started, r)
	case *results.ShapeSeries:
		return sink.ExportShape(ctx, out.id.String(), out.harness, out.started, r)
	default:
		return fmt.Errorf("cannot export %T to influxdb", out.result)
	}
}

// ---- Archive inspection ----

func runList(cmd *cobra.Command, opts *rootOptions) error {
	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	db, archive, err := s.openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := archive.List(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			rec.ID, rec.Harness, rec.FinishedAt.UTC().Format(time.RFC3339), rec.Iterations, rec.Destination)
	}
	return nil
}

func runShow(cmd *cobra.Command, opts *rootOptions, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", rawID, err)
	}

	s, err := openSession(cmd, opts)
	if err != nil {
		return err
	}
	defer s.close()

	db, archive, err := s.openArchive()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := archive.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
