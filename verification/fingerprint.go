package verification

import (
	"crypto/md5" // #nosec G501 -- equality checking only
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Algorithm identifies the content hash used for file digests.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	BLAKE3 Algorithm = "blake3"
)

const defaultAlgorithm = MD5

// ParseAlgorithm accepts an algorithm name in any case.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case MD5, BLAKE3:
		return a, nil
	default:
		return "", fmt.Errorf("unsupported digest algorithm: %q", s)
	}
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case MD5, "":
		return md5.New(), nil // #nosec G401
	case BLAKE3:
		return blake3.New(), nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm: %q", string(a))
	}
}

// DigestFile returns the lowercase hex digest of the file's content.
func DigestFile(path string, algorithm Algorithm) (string, error) {
	h, err := algorithm.newHash()
	if err != nil {
		return "", err
	}
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileDigest is one manifest entry.
type FileDigest struct {
	Name   string
	Digest string
}

// Line is the entry as it appears in a manifest file, without the line terminator.
func (d FileDigest) Line() string {
	return d.Digest + " " + d.Name
}

// Manifest is the content fingerprint of a directory tree, sorted by line.
type Manifest []FileDigest

// Lines returns every entry as a newline-terminated line.
func (m Manifest) Lines() []string {
	lines := make([]string, len(m))
	for i, d := range m {
		lines[i] = d.Line() + "\n"
	}
	return lines
}

func (m Manifest) String() string {
	return strings.Join(m.Lines(), "")
}

// WriteFile saves the manifest text to path.
func (m Manifest) WriteFile(path string) error {
	return os.WriteFile(path, []byte(m.String()), 0o644)
}

// ManifestOptions controls how BuildManifest fingerprints a tree.
type ManifestOptions struct {
	Algorithm Algorithm
	// KeyByRelativePath names entries by their slash-separated path relative to the tree
	// root. By default only the base name is used, so files with the same name in different
	// subdirectories are not told apart by position.
	KeyByRelativePath bool
}

// BuildManifest digests every regular file under dir, including symbolic links to regular
// files. The result does not depend on the
// order in which the filesystem lists directory entries.
func BuildManifest(dir string, opts ManifestOptions) (Manifest, error) {
	m := Manifest{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			// Links to files are digested through their target; links to directories are
			// not descended into.
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		digest, err := DigestFile(path, opts.Algorithm)
		if err != nil {
			return err
		}
		name := d.Name()
		if opts.KeyByRelativePath {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name = filepath.ToSlash(rel)
		}
		m = append(m, FileDigest{Name: name, Digest: digest})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest of %s: %w", dir, err)
	}
	sort.Slice(m, func(i, j int) bool { return m[i].Line() < m[j].Line() })
	return m, nil
}
