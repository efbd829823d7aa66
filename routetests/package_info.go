// Package routetests contains the route contract tests themselves and their
// supporting API.
//
// Harness infrastructure that is not specific to the route domain, such as
// the test runner, result collection, and filtering, is in the lower-level
// framework package. The application surface the tests exercise is defined
// declaratively in DefaultTree; an external target run with -url must serve
// that same surface.
package routetests
