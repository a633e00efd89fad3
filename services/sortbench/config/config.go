// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads sortbench run profiles.
//
// A profile is a YAML document. Every field is optional; missing fields keep
// their defaults. The profile path comes from the command line or the
// SORTBENCH_CONFIG environment variable, and with neither set the built-in
// defaults are used unchanged.
//
//	structural:
//	  iterations: 50
//	  start_size: 1000
//	  step: 100
//	  end_size: 10000
//	timing: capture
//	log:
//	  level: debug
//	  format: json
//	archive:
//	  dir: ~/.sortbench/archive
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/sortbench/services/sortbench/driver"
)

// EnvPath names the environment variable holding the profile path.
const EnvPath = "SORTBENCH_CONFIG"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is a complete run profile.
type Config struct {
	Structural  driver.Params `yaml:"structural"`
	Shape       driver.Params `yaml:"shape"`
	Timing      string        `yaml:"timing" validate:"oneof=callback capture"`
	Log         LogConfig     `yaml:"log"`
	Archive     ArchiveConfig `yaml:"archive"`
	MetricsFile string        `yaml:"metrics_file"`
	TraceFile   string        `yaml:"trace_file"`
	Influx      InfluxConfig  `yaml:"influx"`
	GCS         GCSConfig     `yaml:"gcs"`
}

// LogConfig controls pkg/logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Quiet  bool   `yaml:"quiet"`
	Dir    string `yaml:"dir"`
}

// ArchiveConfig enables the BadgerDB run archive when Dir is set.
type ArchiveConfig struct {
	Dir string `yaml:"dir"`
}

// InfluxConfig enables InfluxDB export when URL is set.
type InfluxConfig struct {
	URL    string `yaml:"url" validate:"omitempty,url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org" validate:"required_with=URL"`
	Bucket string `yaml:"bucket" validate:"required_with=URL"`
}

// Enabled reports whether an InfluxDB URL is configured.
func (c InfluxConfig) Enabled() bool { return c.URL != "" }

// GCSConfig holds Google Cloud Storage credentials for gs:// destinations.
type GCSConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// Default returns the built-in profile.
func Default() Config {
	return Config{
		Structural: driver.DefaultStructural(),
		Shape:      driver.DefaultShape(),
		Timing:     "callback",
		Log:        LogConfig{Level: "info"},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and returns all violations at once.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads the profile at path over the defaults.
//
// Inputs:
//
//	path - Profile location. Empty falls back to $SORTBENCH_CONFIG, and an
//	       empty variable means defaults only.
//
// Outputs:
//
//	Config - The validated profile.
//	error - Read, parse or validation failure.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read the config file %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses a profile from r over the defaults and validates it.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse the config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
