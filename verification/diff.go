package verification

import (
	"github.com/pmezard/go-difflib/difflib"
)

const diffContextLines = 3

// Diff returns a unified diff from manifest a to manifest b, labelled with the given names.
// The result is empty if and only if the manifests are identical.
func Diff(a, b Manifest, fromName, toName string) string {
	d := difflib.UnifiedDiff{
		A:        a.Lines(),
		B:        b.Lines(),
		FromFile: fromName,
		ToFile:   toName,
		Context:  diffContextLines,
	}
	// the only possible errors come from the writer, which here is an in-memory buffer
	text, _ := difflib.GetUnifiedDiffString(d)
	return text
}
