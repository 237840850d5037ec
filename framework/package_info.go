// Package framework contains the harness infrastructure that is not specific to verifying
// transferred trees.
//
// The general model is:
//
// 1. A batch of tests shares one root directory. Each test runs exactly one receiver and one
// sender process of the external transfer binary (see Runner), which write into disjoint
// subdirectories and log files of that root (see Layout).
//
// 2. The options passed to the external binary come from a Config value, normally read from
// the environment once at startup, rather than from package state.
//
// 3. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure/skip results.
package framework
