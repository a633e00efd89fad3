// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// EnvOutputMode overrides terminal detection.
const EnvOutputMode = "SORTBENCH_OUTPUT"

// OutputMode selects between styled terminal output and plain lines.
type OutputMode string

const (
	// ModeStyled uses colors, icons and progress bars.
	ModeStyled OutputMode = "styled"

	// ModePlain writes bare lines suitable for scripting and log capture.
	ModePlain OutputMode = "plain"
)

// ParseOutputMode converts a string to an OutputMode.
// Unknown and empty values return "" so callers can fall back to detection.
func ParseOutputMode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "styled", "color", "full":
		return ModeStyled
	case "plain", "machine", "quiet":
		return ModePlain
	default:
		return ""
	}
}

// DetectOutputMode picks the mode for f.
//
// SORTBENCH_OUTPUT wins when set to a known value; otherwise terminals get
// ModeStyled and everything else (pipes, files, CI logs) ModePlain.
func DetectOutputMode(f *os.File) OutputMode {
	if m := ParseOutputMode(os.Getenv(EnvOutputMode)); m != "" {
		return m
	}
	if f != nil && isTerminal(f) {
		return ModeStyled
	}
	return ModePlain
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
