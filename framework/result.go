package framework

import (
	"strings"
)

// Results is the outcome of a batch of tests. Skipped tests appear in Tests and Skipped but
// never in Failures.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
	Skipped  []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// ExitStatus is 0 if no test failed, otherwise 1.
func (r Results) ExitStatus() int {
	if r.OK() {
		return 0
	}
	return 1
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name is the last path component, which for a top-level test is the test id itself.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}
