// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sortbench measures sort performance over families of generated
// input sequences and writes the per-label totals to a file or gs:// object.
//
//	sortbench structural results.json
//	sortbench shape results.yaml --iterations 50
//	sortbench runs list
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/sortbench/pkg/ux"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		ux.NewPrinter(os.Stderr, ux.DetectOutputMode(os.Stderr)).Error(err.Error())
		stop()
		os.Exit(1)
	}
}
