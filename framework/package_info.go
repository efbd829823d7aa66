// Package framework contains the low-level test harness infrastructure that is not
// specific to file-route testing.
//
// The general model is:
//
// 1. A suite is a tree of named test cases executed outside of the Go test runner,
// so that the same binary can be pointed at any implementation of the route
// contract.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier, to
// accumulate success/failure/skip results, and to register cleanup functions that
// run when the test case ends.
//
// 3. Test selection is done with regular-expression filters over slash-joined
// test identifiers, and per-test debug output is captured so that it can be
// shown only for failed tests.
//
// The domain-specific code that knows what is being tested (the fixture
// application, the HTTP client and browser driver, and the route conformance
// tests themselves) lives in the higher-level packages.
package framework
