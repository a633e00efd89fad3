// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package results

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement is the InfluxDB measurement name for exported totals.
const Measurement = "sort_benchmark"

// Variant tags distinguish scalar and tuple totals of the shape harness.
const (
	VariantScalar = "scalar"
	VariantTuple  = "tuple"
)

// InfluxConfig holds connection settings for the InfluxDB export.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxSink writes finished series to InfluxDB v2.
//
// Description:
//
//	Each total becomes one point tagged with run_id, harness, variant and
//	label, with field total_ticks and field iteration. Point times are the
//	run start plus the iteration index in milliseconds, so iterations of a
//	label never overwrite each other.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInfluxSink creates a sink. No connection is made until the first write.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}
}

// ExportSeries writes every total of s.
func (k *InfluxSink) ExportSeries(ctx context.Context, runID, harness, variant string, start time.Time, s *Series) error {
	points := seriesPoints(runID, harness, variant, start, s)
	if len(points) == 0 {
		return nil
	}
	if err := k.writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("write %d points to influxdb: %w", len(points), err)
	}
	return nil
}

// ExportShape writes both halves of a shape result.
func (k *InfluxSink) ExportShape(ctx context.Context, runID, harness string, start time.Time, s *ShapeSeries) error {
	if err := k.ExportSeries(ctx, runID, harness, VariantScalar, start, s.Scalar); err != nil {
		return err
	}
	return k.ExportSeries(ctx, runID, harness, VariantTuple, start, s.Tuple)
}

// Close releases the client.
func (k *InfluxSink) Close() {
	k.client.Close()
}

func seriesPoints(runID, harness, variant string, start time.Time, s *Series) []*write.Point {
	var points []*write.Point
	for _, label := range s.labels {
		for i, total := range s.totals[label] {
			p := influxdb2.NewPointWithMeasurement(Measurement).
				AddTag("run_id", runID).
				AddTag("harness", harness).
				AddTag("variant", variant).
				AddTag("label", label).
				AddField("iteration", i).
				AddField("total_ticks", total).
				SetTime(start.Add(time.Duration(i) * time.Millisecond))
			points = append(points, p)
		}
	}
	return points
}
