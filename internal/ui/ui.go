// Package ui holds the terminal styling shared by the CLI and the REPL.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"flowview/internal/domain"
)

// Palette
var (
	Brand  = color.New(color.FgHiGreen, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
	Mark   = color.New(color.FgHiYellow, color.Bold)
)

var kindColors = map[domain.NodeKind]*color.Color{
	domain.KindEntry:   color.New(color.FgHiMagenta),
	domain.KindAction:  color.New(color.FgHiBlue),
	domain.KindSwitch:  color.New(color.FgHiCyan),
	domain.KindFork:    color.New(color.FgHiGreen),
	domain.KindJoin:    color.New(color.FgGreen),
	domain.KindSubFlow: color.New(color.FgHiRed),
}

// Kind returns the color nodes of kind are drawn in
func Kind(kind domain.NodeKind) *color.Color {
	if c, ok := kindColors[kind]; ok {
		return c
	}
	return Subtle
}

// Banner prints the flowview banner
func Banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s - %s\n\n", Brand.Sprint("flowview"), subtitle)
}

// Table prints a simple aligned table. Cells may carry color codes; widths are
// measured on the plain text.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && visibleLen(cell) > widths[i] {
				widths[i] = visibleLen(cell)
			}
		}
	}

	headerLine := "  "
	sepLine := "  "
	for i, h := range headers {
		headerLine += pad(h, widths[i]) + "  "
		sepLine += strings.Repeat("─", widths[i]) + "  "
	}
	Subtle.Fprintln(w, strings.TrimRight(headerLine, " "))
	Subtle.Fprintln(w, strings.TrimRight(sepLine, " "))

	for _, row := range rows {
		line := "  "
		for i, cell := range row {
			if i < len(widths) {
				line += pad(cell, widths[i]) + "  "
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

func pad(s string, width int) string {
	if n := visibleLen(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// visibleLen counts runes outside ANSI escape sequences
func visibleLen(s string) int {
	n := 0
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if r == 'm' {
				inEscape = false
			}
		case r == '\x1b':
			inEscape = true
		default:
			n++
		}
	}
	return n
}

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}
