package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordsPassingAndFailingCases(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("passes", func(c *Context) {})
		c.Run("fails", func(c *Context) { c.Errorf("boom %d", 1) })
	})

	assert.False(t, results.OK())
	assert.Equal(t, 1, results.PassCount())
	require.Len(t, results.Failures, 1)
	assert.Equal(t, "fails", results.Failures[0].TestID.String())
	require.Len(t, results.Failures[0].Errors, 1)
}

func TestFailNowStopsTheCaseButNotSiblings(t *testing.T) {
	var reachedAfterFailNow, siblingRan bool

	results := Run(nil, nil, func(c *Context) {
		c.Run("stops", func(c *Context) {
			c.Errorf("first failure")
			c.FailNow()
			reachedAfterFailNow = true
		})
		c.Run("sibling", func(c *Context) { siblingRan = true })
	})

	assert.False(t, reachedAfterFailNow)
	assert.True(t, siblingRan)
	assert.False(t, results.OK())
	assert.Equal(t, 1, results.PassCount())
}

func TestSkipWithReasonIsRecordedAndDoesNotFail(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("skipped", func(c *Context) {
			c.SkipWithReason("no network egress")
			c.Errorf("not reached")
		})
	})

	assert.True(t, results.OK())
	require.Len(t, results.Skips, 1)
	assert.Equal(t, "no network egress", results.Skips[0].SkipReason)
	assert.Empty(t, results.Skips[0].Errors)
}

func TestDeferRunsInReverseOrderEvenAfterFailNow(t *testing.T) {
	var order []string

	Run(nil, nil, func(c *Context) {
		c.Run("case", func(c *Context) {
			c.Defer(func() { order = append(order, "first") })
			c.Defer(func() { order = append(order, "second") })
			c.FailNow()
		})
	})

	assert.Equal(t, []string{"second", "first"}, order)
}

func TestFilteredOutCasesAreNotRunOrRecorded(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("^keep"))

	var excludedRan bool
	results := Run(filters.AsFilter, nil, func(c *Context) {
		c.Run("keep this", func(c *Context) {})
		c.Run("drop this", func(c *Context) { excludedRan = true })
	})

	assert.False(t, excludedRan)
	assert.Len(t, results.Tests, 1)
	assert.True(t, results.OK())
}

func TestUnexpectedPanicBecomesFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("panics", func(c *Context) { panic("kaboom") })
	})

	require.Len(t, results.Failures, 1)
	require.Len(t, results.Failures[0].Errors, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "kaboom")
}

func TestSubtestIDsAreSlashJoinedAndIndependent(t *testing.T) {
	var ids []string
	results := Run(nil, nil, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("one", func(c *Context) { ids = append(ids, c.ID().String()) })
			c.Run("two", func(c *Context) { ids = append(ids, c.ID().String()) })
		})
	})

	assert.Equal(t, []string{"group/one", "group/two"}, ids)

	// The group context only dispatched subtests, so it is not itself a case.
	assert.Len(t, results.Tests, 2)
	assert.Equal(t, 2, results.PassCount())
}
