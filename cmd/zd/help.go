package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/ui"
)

// Patterns matched against cobra's plain help text.
var (
	// Section headers such as "Requests:" or "Flags:".
	reSectionHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)\s*$`)

	// A command row: two-space indent, name, then the description column.
	reCommandRow = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Flag value types, e.g. "--limit int", "--interval duration".
	reFlagType = regexp.MustCompile(`(--?\S+\s+)(string|int|duration)\b`)

	// Defaults rendered by pflag: (default "x") or (default 10).
	reDefault = regexp.MustCompile(`\(default [^)]*\)`)

	// Example invocations in an Examples section.
	reExample = regexp.MustCompile(`(?m)^(\s+)(zd .*)$`)
)

// colorizedHelpFunc renders cobra's usage with ANSI styling when stdout
// supports color and plain otherwise.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)
		fmt.Fprint(out, colorizeHelpOutput(buf.String()))
	}
}

func colorizeHelpOutput(s string) string {
	s = reSectionHeader.ReplaceAllStringFunc(s, func(m string) string {
		return ui.RenderAccent(strings.TrimSpace(m))
	})
	s = reCommandRow.ReplaceAllStringFunc(s, func(m string) string {
		p := reCommandRow.FindStringSubmatch(m)
		return p[1] + ui.RenderCommand(p[2]) + p[3]
	})
	s = reFlagType.ReplaceAllStringFunc(s, func(m string) string {
		p := reFlagType.FindStringSubmatch(m)
		return p[1] + ui.RenderMuted(p[2])
	})
	s = reDefault.ReplaceAllStringFunc(s, ui.RenderMuted)
	s = reExample.ReplaceAllStringFunc(s, func(m string) string {
		p := reExample.FindStringSubmatch(m)
		return p[1] + ui.RenderCommand(p[2])
	})
	return s
}
