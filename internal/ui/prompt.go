package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a yes/no question and reports whether the answer was yes.
// Anything other than "y" or "yes" is a no, including end of input.
// Successive prompts on one stream must share a *bufio.Reader, which
// Confirm reads from directly instead of wrapping.
func Confirm(prompt string, in io.Reader, out io.Writer) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
