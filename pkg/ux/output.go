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
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Aleutian color palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // main brand color
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorTealBright),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealPrimary).Bold(true),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return Styles.Muted.Render(string(i))
	}
}

// Printer writes user-facing lines in one OutputMode.
//
// Plain mode never emits escape sequences or icons so the output stays
// greppable.
type Printer struct {
	W    io.Writer
	Mode OutputMode
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, mode OutputMode) *Printer {
	if mode == "" {
		mode = ModePlain
	}
	return &Printer{W: w, Mode: mode}
}

func (p *Printer) styled() bool { return p.Mode == ModeStyled }

// Title prints a heading.
func (p *Printer) Title(text string) {
	if p.styled() {
		text = Styles.Title.Render(text)
	}
	fmt.Fprintln(p.W, text)
}

// Success prints a completion line.
func (p *Printer) Success(text string) {
	if p.styled() {
		fmt.Fprintf(p.W, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
		return
	}
	fmt.Fprintln(p.W, text)
}

// Warning prints a warning line.
func (p *Printer) Warning(text string) {
	if p.styled() {
		fmt.Fprintf(p.W, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
		return
	}
	fmt.Fprintf(p.W, "WARN: %s\n", text)
}

// Error prints an error line.
func (p *Printer) Error(text string) {
	if p.styled() {
		fmt.Fprintf(p.W, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
		return
	}
	fmt.Fprintf(p.W, "ERROR: %s\n", text)
}

// Field prints an aligned "key: value" pair.
func (p *Printer) Field(key, value string) {
	if p.styled() {
		fmt.Fprintf(p.W, "  %s %s\n", Styles.Muted.Render(fmt.Sprintf("%-12s", key+":")), Styles.Highlight.Render(value))
		return
	}
	fmt.Fprintf(p.W, "%s: %s\n", key, value)
}

// ProgressBar renders a bar of width cells followed by the percentage.
// In plain mode only the percentage is returned, as "N%".
func ProgressBar(mode OutputMode, percent, width int) string {
	percent = max(0, min(percent, 100))
	if mode != ModeStyled {
		return fmt.Sprintf("%d%%", percent)
	}
	filled := percent * width / 100
	bar := Styles.Success.Render(strings.Repeat("█", filled)) +
		Styles.Muted.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, percent)
}
