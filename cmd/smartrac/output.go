package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lhaig/smartra/internal/diagnostic"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	hintColor    = color.New(color.Faint)
)

// printDiagnostics writes diags as file:line:col: severity: message lines,
// with hint and source fragment on the following lines.
func printDiagnostics(w io.Writer, diags *diagnostic.Diagnostics, file string) {
	if diags == nil {
		return
	}
	for _, d := range diags.All() {
		name := file
		if d.File != "" {
			name = d.File
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", name, d.Line, d.Column, severityLabel(d.Severity), d.Message)
		if d.Fragment != "" {
			fmt.Fprintf(w, "    | %s\n", d.Fragment)
		}
		if d.Hint != "" {
			fmt.Fprintf(w, "    %s\n", hintColor.Sprint("hint: "+d.Hint))
		}
	}
}

func severityLabel(s diagnostic.Severity) string {
	switch s {
	case diagnostic.Error:
		return errorColor.Sprint(s.String())
	case diagnostic.Warning:
		return warningColor.Sprint(s.String())
	default:
		return infoColor.Sprint(s.String())
	}
}
