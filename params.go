package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/utrolig/route-contract-tests/framework"
)

type commandParams struct {
	serviceURL        string
	externalOriginURL string
	configPath        string
	filters           framework.RegexFilters
	requestTimeoutMS  int
	debug             bool
	debugAll          bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.serviceURL, "url", "",
		"base URL of an externally running application implementing the route contract"+
			" (default: build and serve the bundled fixture application)")
	fs.StringVar(&c.externalOriginURL, "external-url", "",
		"base URL of the external origin used by the fetch routes (default: start a stand-in origin)")
	fs.StringVar(&c.configPath, "config", "", "path to a YAML configuration file")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.IntVar(&c.requestTimeoutMS, "timeout", 0,
		"per-request timeout in milliseconds (overrides the configured value)")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}
	if c.requestTimeoutMS < 0 {
		fmt.Fprintln(os.Stderr, "-timeout must not be negative")
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a copy-pasteable command line that re-runs exactly the
// given failed tests against the same target.
func (c commandParams) rerunCommand(program string, failed []framework.TestResult) string {
	patterns := make([]string, 0, len(failed))
	for _, f := range failed {
		patterns = append(patterns, "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}

	var b commandBuilder
	b.add(program)
	if c.serviceURL != "" {
		b.add("-url", c.serviceURL)
	}
	if c.externalOriginURL != "" {
		b.add("-external-url", c.externalOriginURL)
	}
	if c.configPath != "" {
		b.add("-config", c.configPath)
	}
	b.add("-run", strings.Join(patterns, "|"))
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
