package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
)

// Out and Err are where status lines and panels go. Tests swap them.
var (
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// StripANSI removes color escapes, leaving the visible text.
func StripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

func OK(msg string) {
	fmt.Fprintln(Out, current.Success.Render(current.SymOK+" "+msg))
}

func Fail(msg string) {
	fmt.Fprintln(Err, current.Error.Render(current.SymFail+" "+msg))
}

// Hint prints a muted follow-up under a failure.
func Hint(msg string) {
	fmt.Fprintln(Err, current.Muted.Render(msg))
}
