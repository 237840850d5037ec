// Package verification decides whether a batch of transfers succeeded.
//
// Ground truth is a manifest of the source tree: one "digest name" line per regular file,
// sorted so that the text does not depend on directory listing order. Each test's
// destination tree gets the same treatment and the two manifests are compared as text, so
// that a failure report shows exactly which files differ. A test whose data matched still
// fails if its client or server log contains a protocol error marker.
package verification
