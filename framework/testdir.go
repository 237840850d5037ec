package framework

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
)

const (
	randomSampleCount = 4
	randomFileCount   = 16
	samplesPerFile    = 4
	encryptionKeySize = 16
)

// Layout names the files and directories of a test root. Every test id writes into its own
// dst{id} directory and log files, so tests sharing a root never collide.
type Layout struct {
	Root string
}

func (l Layout) SourceDir() string {
	return filepath.Join(l.Root, "src")
}

func (l Layout) SourceManifest() string {
	return filepath.Join(l.Root, "src.md5")
}

func (l Layout) DestDir(id string) string {
	return filepath.Join(l.Root, "dst"+id)
}

func (l Layout) DestManifest(id string) string {
	return filepath.Join(l.Root, "dst"+id+".md5")
}

func (l Layout) ServerLog(id string) string {
	return filepath.Join(l.Root, "server"+id+".log")
}

func (l Layout) ClientLog(id string) string {
	return filepath.Join(l.Root, "client"+id+".log")
}

// CreateTestDirectory creates a fresh directory under prefix/wdtTest_<user> and returns its
// path. The per-user directory may be created concurrently by other runs.
func CreateTestDirectory(prefix, user string) (string, error) {
	baseDir := filepath.Join(prefix, "wdtTest_"+user)
	if err := os.Mkdir(baseDir, 0o755); err != nil && !os.IsExist(err) {
		return "", fmt.Errorf("failed to create base test directory: %w", err)
	}
	rootDir, err := os.MkdirTemp(baseDir, "")
	if err != nil {
		return "", fmt.Errorf("failed to create test directory: %w", err)
	}
	return rootDir, nil
}

// GenerateRandomFiles fills dir with a small number of random seed files and a larger
// number of files built by concatenating randomly chosen seeds, so that the tree has both
// unique and repeated content. totalSize is approximate.
func GenerateRandomFiles(dir string, totalSize int64) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}
	seedSize := totalSize / 70
	samples := make([][]byte, randomSampleCount)
	for i := range samples {
		data := make([]byte, seedSize)
		if _, err := io.ReadFull(rand.Reader, data); err != nil {
			return fmt.Errorf("failed to generate random data: %w", err)
		}
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("sample%d", i)), data, 0o644); err != nil {
			return err
		}
		samples[i] = data
	}
	for i := 0; i < randomFileCount; i++ {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("file%d", i)))
		if err != nil {
			return err
		}
		for j := 0; j < samplesPerFile; j++ {
			n, err := randomInt(randomSampleCount)
			if err == nil {
				_, err = f.Write(samples[n])
			}
			if err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to write %s: %w", f.Name(), err)
			}
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// GenerateEncryptionKey returns a random key of lowercase letters.
func GenerateEncryptionKey() (string, error) {
	key := make([]byte, encryptionKeySize)
	for i := range key {
		n, err := randomInt(26)
		if err != nil {
			return "", err
		}
		key[i] = byte('a' + n)
	}
	return string(key), nil
}

func randomInt(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
