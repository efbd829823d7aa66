package routetests

import (
	"github.com/utrolig/route-contract-tests/framework"
)

func RunTestSuite(
	env *SuiteEnvironment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)

		t.Run("pages", DoPageTests)
		t.Run("api routes", DoAPIRouteTests)
		t.Run("redirects", DoRedirectTests)
		t.Run("waterfalls", DoWaterfallTests)
		t.Run("external fetch", DoExternalFetchTests)
	})
}
