// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package capture

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// Line prefixes written by the instrumented sort.
const (
	// TotalPrefix starts the single line reported per structural sort call.
	TotalPrefix = "TOT "

	// SortTimePrefix starts each of the two lines reported by the shape
	// harness, scalar call first.
	SortTimePrefix = "SORT TIME: "
)

// ErrMalformedCapture indicates the captured text did not match the
// expected instrumentation pattern.
var ErrMalformedCapture = errors.New("malformed capture")

var (
	totalPattern     = regexp.MustCompile(`\A` + regexp.QuoteMeta(TotalPrefix) + `(\d+)`)
	sortTimesPattern = regexp.MustCompile(`\A` + regexp.QuoteMeta(SortTimePrefix) + `(\d+)\n` +
		regexp.QuoteMeta(SortTimePrefix) + `(\d+)`)
)

// ParseError reports captured text that did not match its pattern.
//
// Raw holds the full captured text for diagnosis.
type ParseError struct {
	Pattern string
	Raw     string
	Err     error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture %q does not match %s: %v", e.Raw, e.Pattern, e.Err)
	}
	return fmt.Sprintf("capture %q does not match %s", e.Raw, e.Pattern)
}

// Unwrap returns ErrMalformedCapture and any underlying conversion error.
func (e *ParseError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedCapture, e.Err}
	}
	return []error{ErrMalformedCapture}
}

// ParseTotal extracts the tick count from "TOT <n>".
//
// Description:
//
//	The match is anchored at the start of text. Trailing text is ignored.
//	There is no fallback: anything that does not match is an error.
//
// Outputs:
//   - uint64: The reported ticks.
//   - error: *ParseError wrapping ErrMalformedCapture.
func ParseTotal(text string) (uint64, error) {
	m := totalPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, &ParseError{Pattern: totalPattern.String(), Raw: text}
	}
	v, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, &ParseError{Pattern: totalPattern.String(), Raw: text, Err: err}
	}
	return v, nil
}

// ParseSortTimes extracts the two tick counts from
// "SORT TIME: <a>\nSORT TIME: <b>", in that order.
//
// Outputs:
//   - first: Ticks of the first sort call (scalar elements).
//   - second: Ticks of the second sort call (tuple elements).
//   - err: *ParseError wrapping ErrMalformedCapture.
func ParseSortTimes(text string) (first, second uint64, err error) {
	m := sortTimesPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, &ParseError{Pattern: sortTimesPattern.String(), Raw: text}
	}
	first, err = strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, 0, &ParseError{Pattern: sortTimesPattern.String(), Raw: text, Err: err}
	}
	second, err = strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return 0, 0, &ParseError{Pattern: sortTimesPattern.String(), Raw: text, Err: err}
	}
	return first, second, nil
}
