// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation checks user-provided names before they reach an
// external service, so a bad destination fails before a run is uploaded
// rather than after.
package validation

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// ErrInvalidBucket indicates a name Cloud Storage would reject as a bucket.
	ErrInvalidBucket = errors.New("invalid bucket name")

	// ErrInvalidObject indicates a name Cloud Storage would reject as an object.
	ErrInvalidObject = errors.New("invalid object name")
)

// bucketPattern matches the allowed characters of a bucket name.
// Lowercase letters, digits, dashes, underscores and dots; the first and
// last characters must be a letter or digit.
var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*[a-z0-9]$`)

const (
	maxBucketLen    = 222
	maxComponentLen = 63
	maxObjectBytes  = 1024
)

// ValidateBucketName checks a Cloud Storage bucket name.
//
// Valid names:
//   - 3-63 characters, or up to 222 when dot-separated with each
//     component at most 63
//   - lowercase letters, digits, dashes, underscores and dots
//   - start and end with a letter or digit
//   - not an IPv4 address, not starting with "goog", not containing "google"
//
// Example:
//
//	if err := validation.ValidateBucketName(bucket); err != nil {
//	    return fmt.Errorf("destination %s: %w", dest, err)
//	}
func ValidateBucketName(name string) error {
	if len(name) < 3 || len(name) > maxBucketLen {
		return fmt.Errorf("%w: %q must be 3-%d characters", ErrInvalidBucket, name, maxBucketLen)
	}
	if !bucketPattern.MatchString(name) {
		return fmt.Errorf("%w: %q (lowercase letters, digits, '-', '_', '.'; must start and end with a letter or digit)", ErrInvalidBucket, name)
	}
	if !strings.Contains(name, ".") && len(name) > maxComponentLen {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidBucket, name, maxComponentLen)
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return fmt.Errorf("%w: %q has an empty dot-separated component", ErrInvalidBucket, name)
		}
		if len(part) > maxComponentLen {
			return fmt.Errorf("%w: component %q exceeds %d characters", ErrInvalidBucket, part, maxComponentLen)
		}
	}
	if ip := net.ParseIP(name); ip != nil {
		return fmt.Errorf("%w: %q looks like an IP address", ErrInvalidBucket, name)
	}
	if strings.HasPrefix(name, "goog") || strings.Contains(name, "google") {
		return fmt.Errorf("%w: %q uses a reserved prefix or word", ErrInvalidBucket, name)
	}
	return nil
}

// ValidateObjectName checks a Cloud Storage object name: 1-1024 bytes of
// valid UTF-8 without carriage returns or line feeds, and not "." or "..".
func ValidateObjectName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidObject)
	case len(name) > maxObjectBytes:
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidObject, len(name), maxObjectBytes)
	case !utf8.ValidString(name):
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidObject)
	case strings.ContainsAny(name, "\r\n"):
		return fmt.Errorf("%w: %q contains a line break", ErrInvalidObject, name)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidObject, name)
	}
	return nil
}
