package verification

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	md5OfX = "9dd4e461268c8034f5c8564e155c67a6"
	md5OfY = "415290769594460e2e485922904f345d"
	md5OfZ = "fbade9e36a3f36d3d676c1b808451dd7"
)

func writeTree(t *testing.T, dir string, files map[string]string) {
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestDigestFile(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "x"})

	d, err := DigestFile(filepath.Join(dir, "a.txt"), MD5)
	require.NoError(t, err)
	assert.Equal(t, md5OfX, d)

	d, err = DigestFile(filepath.Join(dir, "a.txt"), BLAKE3)
	require.NoError(t, err)
	assert.Len(t, d, 64)
	assert.NotEqual(t, md5OfX, d)
}

func TestDigestFileMissing(t *testing.T) {
	_, err := DigestFile(filepath.Join(t.TempDir(), "nope"), MD5)
	assert.True(t, os.IsNotExist(err))
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"md5", MD5, false},
		{" MD5 ", MD5, false},
		{"Blake3", BLAKE3, false},
		{"sha1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildManifestIsSortedByLine(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"a.txt": "x", "b.txt": "y", "sub/c.txt": "z"})

	m, err := BuildManifest(dir, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t,
		md5OfY+" b.txt\n"+
			md5OfX+" a.txt\n"+
			md5OfZ+" c.txt\n",
		m.String())
}

func TestBuildManifestIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"f1": "one", "d/f2": "two", "d/e/f3": "three", "f4": ""})

	m1, err := BuildManifest(dir, ManifestOptions{})
	require.NoError(t, err)
	m2, err := BuildManifest(dir, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t, m1.String(), m2.String())
	assert.Len(t, m1, 4)
}

func TestBuildManifestIndependentOfCreationOrder(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"one": "1"})
	writeTree(t, a, map[string]string{"two": "2"})
	writeTree(t, b, map[string]string{"two": "2"})
	writeTree(t, b, map[string]string{"one": "1"})

	ma, err := BuildManifest(a, ManifestOptions{})
	require.NoError(t, err)
	mb, err := BuildManifest(b, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t, ma.String(), mb.String())
}

func TestBuildManifestOfEmptyDirectory(t *testing.T) {
	m, err := BuildManifest(t.TempDir(), ManifestOptions{})
	require.NoError(t, err)
	assert.Empty(t, m)
	assert.Equal(t, "", m.String())
}

func TestBuildManifestOfMissingDirectory(t *testing.T) {
	_, err := BuildManifest(filepath.Join(t.TempDir(), "dst9"), ManifestOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestBuildManifestKeysByBaseNameByDefault(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeTree(t, a, map[string]string{"x/data": "same"})
	writeTree(t, b, map[string]string{"y/data": "same"})

	ma, err := BuildManifest(a, ManifestOptions{})
	require.NoError(t, err)
	mb, err := BuildManifest(b, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t, ma.String(), mb.String())

	ra, err := BuildManifest(a, ManifestOptions{KeyByRelativePath: true})
	require.NoError(t, err)
	rb, err := BuildManifest(b, ManifestOptions{KeyByRelativePath: true})
	require.NoError(t, err)
	assert.NotEqual(t, ra.String(), rb.String())
	assert.Equal(t, "x/data", ra[0].Name)
}

func TestManifestWriteFile(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{{Name: "a.txt", Digest: md5OfX}}
	path := filepath.Join(dir, "src.md5")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, md5OfX+" a.txt\n", string(data))
}

func TestBuildManifestFollowsLinksToFilesOnly(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"real": "x", "sub/inner": "y"})
	if err := os.Symlink("real", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %s", err)
	}
	require.NoError(t, os.Symlink("sub", filepath.Join(dir, "sublink")))

	m, err := BuildManifest(dir, ManifestOptions{})
	require.NoError(t, err)
	assert.Equal(t,
		md5OfY+" inner\n"+
			md5OfX+" link\n"+
			md5OfX+" real\n",
		m.String())
}

func TestBuildManifestWithDanglingLinkIsAnError(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink("missing", filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks not supported: %s", err)
	}
	_, err := BuildManifest(dir, ManifestOptions{})
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
