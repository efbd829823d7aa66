package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// Context represents a running test case. It plays the same role as Go's
// *testing.T: it accumulates failures, supports immediate exit via FailNow
// (implemented with a panic that is recovered by the harness), can be
// skipped, runs named subtests, and owns a capturing debug logger whose
// output is reported only when wanted.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
	ranSubtests bool
}

// Run executes a suite. The action receives the root Context and is expected
// to call Run on it for each top-level test group. The returned Results
// contain one entry per executed or skipped case; cases excluded by the
// filter are not recorded.
func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	root := &Context{env: env}
	root.execute(action, false)
	return env.results
}

// ID returns the identifier of the current test case.
func (c *Context) ID() TestID {
	return c.id
}

// Run executes a named subtest in its own Context. A failure or skip in the
// subtest never propagates to the parent; sibling subtests always run.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Child(name)

	if c.env.filter != nil && !c.env.filter(id) {
		return
	}
	c.ranSubtests = true
	c.env.testLogger.TestStarted(id)
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.execute(action, true)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

func (c *Context) execute(action func(*Context), record bool) {
	defer func() {
		if r := recover(); r != nil {
			if !c.skipped {
				c.failed = true
				var addError error
				if _, ok := r.(*Context); ok {
					if len(c.errors) == 0 {
						addError = errors.New("test failed with no failure message")
					}
				} else {
					addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
				}
				if addError != nil {
					c.errors = append(c.errors, addError)
					c.env.testLogger.TestError(c.id, addError)
				}
			}
		}
		c.runCleanups()
		// Group contexts that only dispatch subtests are not test cases in
		// their own right; they are recorded only if they failed or skipped
		// at their own level.
		if record && (!c.ranSubtests || c.failed || c.skipped) {
			c.env.results.record(TestResult{
				TestID:     c.id,
				Errors:     c.errors,
				Skipped:    c.skipped,
				SkipReason: c.skipReason,
			})
		}
	}()

	action(c)
}

// Defer registers a cleanup function that runs when this test case ends,
// in last-in-first-out order, whether the case passed, failed, or was
// skipped. A panic in a cleanup fails the case.
func (c *Context) Defer(cleanup func()) {
	c.cleanups = append(c.cleanups, cleanup)
}

func (c *Context) runCleanups() {
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		cleanup := c.cleanups[i]
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.failed = true
					err := fmt.Errorf("panic in test cleanup: %+v", r)
					c.errors = append(c.errors, err)
					c.env.testLogger.TestError(c.id, err)
				}
			}()
			cleanup()
		}()
	}
	c.cleanups = nil
}

// Errorf records a test failure without stopping the test. It is also what
// the assert package calls through the TestingT interface.
func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := fmt.Errorf(format, args...)
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, reformatError(err))
}

// FailNow stops the current test case immediately. The require package calls
// this through the TestingT interface.
func (c *Context) FailNow() {
	panic(c)
}

// Skip marks the test case as skipped and stops it immediately.
func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

// SkipWithReason is Skip with an explanation that ends up in the results.
func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Debug logs debug output for this test case. The output is buffered and is
// only displayed according to the harness's debug settings.
func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

// DebugLogger exposes the case's capturing logger so it can be handed to
// components that take a Logger.
func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
