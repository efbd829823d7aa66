package framework

import (
	"strings"
)

// TestID identifies a test case within the suite as the path of subtest names
// leading to it, e.g. {"api routes", "dynamic segment"}.
type TestID struct {
	Path []string
}

// Child returns the TestID of a subtest of this test.
func (t TestID) Child(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// TestResult is the outcome of a single test case.
type TestResult struct {
	TestID     TestID
	Errors     []error
	Skipped    bool
	SkipReason string
}

// Results accumulates the outcomes of every test case in a suite run.
// Tests contains all executed or skipped cases in execution order; Failures
// and Skips are subsets of it.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skips    []TestResult
}

// OK returns true if no test case failed. Skipped cases do not count as
// failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// PassCount returns the number of cases that ran and passed.
func (r Results) PassCount() int {
	return len(r.Tests) - len(r.Failures) - len(r.Skips)
}

func (r *Results) record(result TestResult) {
	r.Tests = append(r.Tests, result)
	switch {
	case result.Skipped:
		r.Skips = append(r.Skips, result)
	case len(result.Errors) > 0:
		r.Failures = append(r.Failures, result)
	}
}
