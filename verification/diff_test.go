package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffOfIdenticalManifestsIsEmpty(t *testing.T) {
	m := Manifest{{Name: "a.txt", Digest: md5OfX}, {Name: "b.txt", Digest: md5OfY}}
	assert.Equal(t, "", Diff(m, m, "src.md5", "dst1.md5"))
	assert.Equal(t, "", Diff(Manifest{}, Manifest{}, "src.md5", "dst1.md5"))
}

func TestDiffNamesTheChangedFile(t *testing.T) {
	src := Manifest{{Name: "b.txt", Digest: md5OfY}, {Name: "a.txt", Digest: md5OfX}}
	dst := Manifest{{Name: "a.txt", Digest: md5OfX}, {Name: "b.txt", Digest: md5OfZ}}

	delta := Diff(src, dst, "src.md5", "dst1.md5")
	assert.Contains(t, delta, "--- src.md5\n")
	assert.Contains(t, delta, "+++ dst1.md5\n")
	assert.Contains(t, delta, "-"+md5OfY+" b.txt\n")
	assert.Contains(t, delta, "+"+md5OfZ+" b.txt\n")
	assert.Contains(t, delta, " "+md5OfX+" a.txt\n")
}

func TestDiffOfMissingFile(t *testing.T) {
	src := Manifest{{Name: "a.txt", Digest: md5OfX}}
	delta := Diff(src, Manifest{}, "src.md5", "dst2.md5")
	assert.Contains(t, delta, "-"+md5OfX+" a.txt\n")
	assert.NotContains(t, delta, "\n+"+md5OfX)
}
