package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// ANSI escapes for the progress helpers. colorize drops them when --no-color
// is set.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// stderrLine prints one marker-prefixed message. Human-facing progress goes
// to stderr so stdout stays parseable.
func stderrLine(color, marker, format string, args ...any) {
	fmt.Fprintln(os.Stderr, colorize(color, marker+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { stderrLine(colorGreen, "✓", format, args...) }

func printError(format string, args ...any) { stderrLine(colorRed, "✗", format, args...) }

func printWarning(format string, args ...any) { stderrLine(colorYellow, "⚠", format, args...) }

func printStep(format string, args ...any) { stderrLine(colorCyan, "→", format, args...) }

// printStatus writes an indented "Label: value" line for the status and
// config listings.
func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(os.Stderr, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}

// printJSON pretty-prints a structured result to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
