package framework

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrintFilterDescription explains, before the run starts, which tests will be
// left out: those excluded by -run/-skip patterns, and those that need a
// capability the target environment does not provide.
func PrintFilterDescription(w io.Writer, filters RegexFilters, missingCapabilities []string) {
	if filters.IsDefined() {
		fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(w)
	}

	if len(missingCapabilities) > 0 {
		fmt.Fprintln(w, "Some tests will be skipped because the target environment does not provide the following capabilities:")
		fmt.Fprintf(w, "  %s\n", strings.Join(missingCapabilities, ", "))
		fmt.Fprintln(w)
	}
}

// PrintResults writes the end-of-run summary: a green pass line, a yellow
// skip list, or a red failure list with each case's errors.
func PrintResults(w io.Writer, results Results) {
	if len(results.Skips) > 0 {
		fmt.Fprintln(w, color.YellowString("Skipped %d tests:", len(results.Skips)))
		for _, s := range results.Skips {
			if s.SkipReason == "" {
				fmt.Fprintf(w, "  %s\n", s.TestID)
			} else {
				fmt.Fprintf(w, "  %s (%s)\n", s.TestID, s.SkipReason)
			}
		}
		fmt.Fprintln(w)
	}

	if results.OK() {
		fmt.Fprintln(w, color.GreenString("All %d tests passed", results.PassCount()))
		return
	}

	fmt.Fprintln(w, color.RedString("FAILED: %d tests (%d passed)", len(results.Failures), results.PassCount()))
	for _, f := range results.Failures {
		fmt.Fprintf(w, "  %s\n", color.RedString("* %s", f.TestID))
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(w, "      %s\n", line)
			}
		}
	}
}

// reformatError cleans up multi-line assertion failures (as produced by the
// assert/require packages) for console output: indentation is collapsed and
// the stack-trace/test-name lines, which are meaningless outside of the Go
// test runner, are dropped.
func reformatError(err error) error {
	lines := strings.Split(err.Error(), "\n")
	var kept []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "Error Trace:") || strings.HasPrefix(trimmed, "Test:") {
			continue
		}
		kept = append(kept, trimmed)
	}
	if len(kept) == 0 {
		return err
	}
	return errors.New(strings.Join(kept, "\n"))
}
