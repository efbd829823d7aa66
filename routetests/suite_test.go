package routetests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utrolig/route-contract-tests/fixture"
	"github.com/utrolig/route-contract-tests/framework"
)

// startFixtureEnvironment stands up the same environment main builds: the
// stand-in origin plus the bundled fixture application serving DefaultTree.
func startFixtureEnvironment(t *testing.T) *SuiteEnvironment {
	t.Helper()

	origin, err := fixture.StartStandInOrigin(framework.NullLogger())
	require.NoError(t, err)
	t.Cleanup(origin.Stop)

	app, err := fixture.Build(DefaultTree(origin.BaseURL()), fixture.BuildOptions{})
	require.NoError(t, err)
	t.Cleanup(app.Stop)
	baseURL, err := app.Start()
	require.NoError(t, err)

	return &SuiteEnvironment{
		BaseURL:      baseURL,
		Capabilities: AllCapabilities,
	}
}

func TestSuitePassesAgainstTheBundledFixture(t *testing.T) {
	env := startFixtureEnvironment(t)

	results := RunTestSuite(env, nil, nil)

	require.True(t, results.OK(), "failures: %+v", results.Failures)
	assert.Empty(t, results.Skips)
	assert.Greater(t, results.PassCount(), 10)
}

func TestSuiteSkipsExternalTestsWithoutTheCapability(t *testing.T) {
	env := startFixtureEnvironment(t)
	env.Capabilities = nil

	results := RunTestSuite(env, nil, nil)

	require.True(t, results.OK(), "failures: %+v", results.Failures)
	require.Len(t, results.Skips, 1)
	assert.Contains(t, results.Skips[0].SkipReason, CapabilityExternalFetch)
}

func TestSuiteHonorsRunFilters(t *testing.T) {
	env := startFixtureEnvironment(t)
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("^pages"))

	results := RunTestSuite(env, filters.AsFilter, nil)

	require.True(t, results.OK(), "failures: %+v", results.Failures)
	require.NotEmpty(t, results.Tests)
	for _, result := range results.Tests {
		assert.Equal(t, "pages", result.TestID.Path[0])
	}
}
