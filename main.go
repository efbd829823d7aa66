package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/utrolig/route-contract-tests/config"
	"github.com/utrolig/route-contract-tests/fixture"
	"github.com/utrolig/route-contract-tests/framework"
	"github.com/utrolig/route-contract-tests/routetests"
)

func main() {
	os.Exit(run(os.Args))
}

// run is main with an exit code, so deferred cleanup of the fixture
// application and the stand-in origin still happens on every path.
func run(args []string) int {
	// A .env file may carry the ROUTE_CONTRACT_* settings; absence is fine.
	_ = godotenv.Load()

	var params commandParams
	if !params.Read(args) {
		return 1
	}

	cfg, err := config.Load(params.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		return 1
	}
	if params.externalOriginURL != "" {
		cfg.ExternalOriginURL = params.externalOriginURL
	}
	if params.requestTimeoutMS > 0 {
		cfg.RequestTimeoutMS = params.requestTimeoutMS
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid parameters: %s\n", err)
		return 1
	}

	mainDebugLogger := framework.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(os.Stdout, "", log.LstdFlags)
	}

	// The external-fetch capability is granted only when there is an origin
	// the target's fetch routes can actually reach: either the configured
	// one (probed here) or a stand-in started for the bundled fixture. An
	// external target with no declared origin gets no capability, so the
	// external tests are skipped rather than failed.
	var capabilities []string
	externalOriginURL := cfg.ExternalOriginURL
	switch {
	case externalOriginURL != "":
		if err := probeURL(externalOriginURL+"/json", cfg.StartupTimeout(), mainDebugLogger); err == nil {
			capabilities = append(capabilities, routetests.CapabilityExternalFetch)
		} else {
			fmt.Fprintf(os.Stderr, "External origin is not answering (%s); external fetch tests will be skipped\n", err)
		}
	case params.serviceURL == "":
		origin, err := fixture.StartStandInOrigin(framework.PrefixedLogger("origin: ", mainDebugLogger))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not start the stand-in origin: %s\n", err)
			return 1
		}
		defer origin.Stop()
		externalOriginURL = origin.BaseURL()
		capabilities = append(capabilities, routetests.CapabilityExternalFetch)
	}

	baseURL := params.serviceURL
	if baseURL == "" {
		app, err := fixture.Build(routetests.DefaultTree(externalOriginURL), fixture.BuildOptions{
			Logger:         framework.PrefixedLogger("app: ", mainDebugLogger),
			FetchTimeoutMS: ldvalue.NewOptionalInt(cfg.FetchTimeoutMS),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not build the fixture application: %s\n", err)
			return 1
		}
		defer app.Stop()
		baseURL, err = app.Start()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not start the fixture application: %s\n", err)
			return 1
		}
	} else if err := probeURL(baseURL, cfg.StartupTimeout(), mainDebugLogger); err != nil {
		fmt.Fprintf(os.Stderr, "Target application error: %s\n", err)
		return 1
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters, missingCapabilities(capabilities))

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	env := &routetests.SuiteEnvironment{
		BaseURL:          baseURL,
		Capabilities:     capabilities,
		RequestTimeoutMS: ldvalue.NewOptionalInt(cfg.RequestTimeoutMS),
		BrowserTimeoutMS: ldvalue.NewOptionalInt(cfg.BrowserTimeoutMS),
	}
	results := routetests.RunTestSuite(env, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To re-run only the failed tests:")
		fmt.Printf("  %s\n", params.rerunCommand(args[0], results.Failures))
		return 1
	}
	return 0
}

// probeURL polls the URL until it answers with a 200 status, giving a
// target that is still starting up time to come around.
func probeURL(target string, timeout time.Duration, logger framework.Logger) error {
	deadline := time.Now().Add(timeout)
	for {
		logger.Printf("Probing %s", target)
		resp, err := http.DefaultClient.Get(target)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				logger.Printf("Got 200 status from %s", target)
				return nil
			}
			err = fmt.Errorf("status code %d", resp.StatusCode)
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("%s did not become ready, result of last query was: %s", target, err)
		}
		time.Sleep(time.Millisecond * 20)
	}
}

func missingCapabilities(present []string) []string {
	var missing []string
	for _, capability := range routetests.AllCapabilities {
		found := false
		for _, p := range present {
			if p == capability {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, capability)
		}
	}
	return missing
}
