// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateBucketName(t *testing.T) {
	tests := []struct {
		name    string
		bucket  string
		wantErr bool
	}{
		{"simple", "bench-results", false},
		{"underscore", "bench_results", false},
		{"digits", "123", false},
		{"dotted", "results.example.com", false},
		{"max length", strings.Repeat("a", 63), false},
		{"dotted long", strings.Repeat("a", 63) + "." + strings.Repeat("b", 63), false},

		{"too short", "ab", true},
		{"too long", strings.Repeat("a", 64), true},
		{"uppercase", "Bench", true},
		{"starts with dash", "-bench", true},
		{"ends with dot", "bench.", true},
		{"double dot", "bench..results", true},
		{"long component", strings.Repeat("a", 64) + ".com", true},
		{"spaces", "my bucket", true},
		{"ip address", "192.168.1.10", true},
		{"goog prefix", "goog-bench", true},
		{"contains google", "my-google-bucket", true},
		{"slash", "a/b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBucketName(tt.bucket)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBucket)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateObjectName(t *testing.T) {
	tests := []struct {
		name    string
		object  string
		wantErr bool
	}{
		{"simple", "out.json", false},
		{"nested", "runs/2025/out.yaml", false},
		{"unicode", "résultats.json", false},
		{"max bytes", strings.Repeat("a", 1024), false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 1025), true},
		{"newline", "out\n.json", true},
		{"carriage return", "out\r.json", true},
		{"dot", ".", true},
		{"dot dot", "..", true},
		{"invalid utf8", "out\xff.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectName(tt.object)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidObject)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
