// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package results aggregates benchmark totals and persists them.
//
// # Overview
//
//	Series       label -> []total, one total per iteration, catalog order
//	ShapeSeries  (scalar Series, tuple Series) for the element-shape harness
//	Store        writes a finished result to a file or gs:// object
//	Archive      keeps finished runs in BadgerDB for later analysis
//	InfluxSink   exports totals as InfluxDB points
//
// Nothing in this package persists partial runs: callers hand over a result
// only after the driver has finished every iteration.
package results

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrUnknownLabel indicates an append to a label the series was not built with.
var ErrUnknownLabel = errors.New("unknown series label")

// Series is an ordered label -> totals mapping.
//
// Description:
//
//	Labels are fixed at construction and keep their order in every
//	encoding. Totals are append-only. Series is not safe for concurrent
//	mutation; the driver owns it until the run completes.
type Series struct {
	labels []string
	totals map[string][]uint64
}

// NewSeries creates an empty series with the given labels, in order.
// Duplicate labels are collapsed to their first occurrence.
func NewSeries(labels []string) *Series {
	s := &Series{totals: make(map[string][]uint64, len(labels))}
	for _, l := range labels {
		if _, ok := s.totals[l]; ok {
			continue
		}
		s.labels = append(s.labels, l)
		s.totals[l] = []uint64{}
	}
	return s
}

// Append adds the next iteration's total for label.
func (s *Series) Append(label string, total uint64) error {
	cur, ok := s.totals[label]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	s.totals[label] = append(cur, total)
	return nil
}

// Labels returns the labels in order.
func (s *Series) Labels() []string {
	return slices.Clone(s.labels)
}

// Get returns a copy of the totals for label.
func (s *Series) Get(label string) ([]uint64, bool) {
	v, ok := s.totals[label]
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Len returns the number of labels.
func (s *Series) Len() int { return len(s.labels) }

// Iterations returns the length of the shortest label's totals.
//
// Every label has the same length once a run completes.
func (s *Series) Iterations() int {
	if len(s.labels) == 0 {
		return 0
	}
	n := len(s.totals[s.labels[0]])
	for _, l := range s.labels[1:] {
		n = min(n, len(s.totals[l]))
	}
	return n
}

// MarshalJSON encodes the series as a JSON object with keys in label order.
func (s *Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range s.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(l)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, v := range s.totals[l] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatUint(v, 10))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping key order.
func (s *Series) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("series: expected object, got %v", tok)
	}

	*s = Series{totals: map[string][]uint64{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("series: expected label, got %v", tok)
		}
		var totals []uint64
		if err := dec.Decode(&totals); err != nil {
			return fmt.Errorf("series %q: %w", label, err)
		}
		if _, dup := s.totals[label]; !dup {
			s.labels = append(s.labels, label)
		}
		if totals == nil {
			totals = []uint64{}
		}
		s.totals[label] = totals
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML encodes the series as a mapping node with keys in label order.
func (s *Series) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, l := range s.labels {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, v := range s.totals[l] {
			seq.Content = append(seq.Content, &yaml.Node{
				Kind:  yaml.ScalarNode,
				Tag:   "!!int",
				Value: strconv.FormatUint(v, 10),
			})
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: l},
			seq,
		)
	}
	return node, nil
}

// UnmarshalYAML decodes a mapping node, keeping key order.
func (s *Series) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("series: expected mapping at line %d", node.Line)
	}
	*s = Series{totals: map[string][]uint64{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		label := node.Content[i].Value
		var totals []uint64
		if err := node.Content[i+1].Decode(&totals); err != nil {
			return fmt.Errorf("series %q: %w", label, err)
		}
		if _, dup := s.totals[label]; !dup {
			s.labels = append(s.labels, label)
		}
		if totals == nil {
			totals = []uint64{}
		}
		s.totals[label] = totals
	}
	return nil
}

// ShapeSeries is the result of the element-shape harness.
//
// It encodes as a two-element sequence: [scalar, tuple].
type ShapeSeries struct {
	Scalar *Series
	Tuple  *Series
}

// NewShapeSeries creates an empty pair of series with the same labels.
func NewShapeSeries(labels []string) *ShapeSeries {
	return &ShapeSeries{Scalar: NewSeries(labels), Tuple: NewSeries(labels)}
}

// MarshalJSON implements json.Marshaler.
func (s *ShapeSeries) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]*Series{s.Scalar, s.Tuple})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ShapeSeries) UnmarshalJSON(data []byte) error {
	var pair [2]*Series
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	s.Scalar, s.Tuple = pair[0], pair[1]
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s *ShapeSeries) MarshalYAML() (any, error) {
	return []*Series{s.Scalar, s.Tuple}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *ShapeSeries) UnmarshalYAML(node *yaml.Node) error {
	var pair []*Series
	if err := node.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("shape series: expected 2 entries, got %d", len(pair))
	}
	s.Scalar, s.Tuple = pair[0], pair[1]
	return nil
}
