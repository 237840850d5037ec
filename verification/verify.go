package verification

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wdt-tools/transfer-verify-tests/framework"
	"github.com/wdt-tools/transfer-verify-tests/logging"
)

// VerificationResult is the outcome for one test id.
type VerificationResult struct {
	TestID string
	// Matched is true if the destination manifest equals the source manifest.
	Matched bool
	// ProtocolErrorDetected is true if a failure marker was found in the client or server
	// log, which fails the test even when the data matched.
	ProtocolErrorDetected bool
	Skipped               bool
	Delta                 string
	// Err is set if the destination tree or the logs could not be read.
	Err error
}

func (r VerificationResult) Failed() bool {
	return !r.Skipped && (r.Err != nil || !r.Matched || r.ProtocolErrorDetected)
}

// Report is the outcome of a Verify call.
type Report struct {
	Results []VerificationResult
	Summary framework.Results
	// Removed is true if the run passed and the root directory was deleted.
	Removed bool
}

func (r Report) OK() bool {
	return r.Summary.OK()
}

func (r Report) ExitStatus() int {
	return r.Summary.ExitStatus()
}

// Verifier compares the destination trees of a batch of tests against their shared source
// tree.
type Verifier struct {
	layout        framework.Layout
	manifestOpts  ManifestOptions
	failMarkers   []string
	testLogger    framework.TestLogger
	logger        logging.Logger
	keepArtifacts bool
}

type Option func(*Verifier)

func WithAlgorithm(a Algorithm) Option {
	return func(v *Verifier) { v.manifestOpts.Algorithm = a }
}

// WithKeyByRelativePath makes manifests distinguish files by their path in the tree
// rather than by base name only.
func WithKeyByRelativePath(enabled bool) Option {
	return func(v *Verifier) { v.manifestOpts.KeyByRelativePath = enabled }
}

func WithTestLogger(l framework.TestLogger) Option {
	return func(v *Verifier) { v.testLogger = l }
}

func WithLogger(l logging.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// WithFailMarkers replaces the log substrings that fail a test whose data matched.
func WithFailMarkers(markers ...string) Option {
	return func(v *Verifier) { v.failMarkers = markers }
}

// WithKeepArtifacts keeps the root directory even after a passing run.
func WithKeepArtifacts(keep bool) Option {
	return func(v *Verifier) { v.keepArtifacts = keep }
}

func NewVerifier(rootDir string, options ...Option) *Verifier {
	v := &Verifier{
		layout:       framework.Layout{Root: rootDir},
		manifestOpts: ManifestOptions{Algorithm: defaultAlgorithm},
		failMarkers:  []string{ProtocolErrorMarker},
		testLogger:   framework.NullTestLogger(),
		logger:       logging.NullLogger(),
	}
	for _, o := range options {
		o(v)
	}
	return v
}

// Verify checks every test id not in skip. The source manifest is built once; any error
// building it is returned and nothing is deleted. Per-test problems, including a missing
// destination tree, fail that test and verification continues with the next id.
//
// If every non-skipped test passed, the whole root directory is deleted. Otherwise it is
// kept so that the logs and the partial transfers can be inspected.
func (v *Verifier) Verify(testIDs []string, skip framework.IDSet) (Report, error) {
	src, err := BuildManifest(v.layout.SourceDir(), v.manifestOpts)
	if err != nil {
		return Report{}, err
	}
	if err := src.WriteFile(v.layout.SourceManifest()); err != nil {
		return Report{}, fmt.Errorf("failed to save source manifest: %w", err)
	}
	v.logger.Printf("Source manifest has %d entries", len(src))

	var report Report
	report.Summary = framework.Run(skip.ExcludeFilter(), v.testLogger, func(c *framework.Context) {
		for _, id := range testIDs {
			id := id
			if skip.Has(id) {
				logging.ForTest(v.logger, id).Printf("Skipping verification")
				report.Results = append(report.Results, VerificationResult{TestID: id, Skipped: true})
			}
			c.Run(id, func(c *framework.Context) {
				r := VerificationResult{TestID: id}
				defer func() { report.Results = append(report.Results, r) }()
				v.verifyTest(c, id, src, &r)
			})
		}
	})

	if !report.OK() {
		logging.Infof(v.logger, "Bad run - keeping full logs and partial transfer in %s", v.layout.Root)
		return report, nil
	}
	if v.keepArtifacts {
		return report, nil
	}
	logging.Infof(v.logger, "Good run, deleting logs in %s", v.layout.Root)
	if err := os.RemoveAll(v.layout.Root); err != nil {
		return report, fmt.Errorf("failed to delete %s: %w", v.layout.Root, err)
	}
	report.Removed = true
	return report, nil
}

func (v *Verifier) verifyTest(c *framework.Context, id string, src Manifest, r *VerificationResult) {
	log := logging.ForTest(v.logger, id)
	c.Debug("Verifying correctness for test %s", id)

	dst, err := BuildManifest(v.layout.DestDir(id), v.manifestOpts)
	if err != nil {
		r.Err = err
		log.Printf("%s", err)
		c.Errorf("%s", err)
		c.FailNow()
	}
	log.Printf("Destination manifest has %d entries", len(dst))
	if err := dst.WriteFile(v.layout.DestManifest(id)); err != nil {
		c.Debug("Could not save manifest: %s", err)
	}

	r.Delta = Diff(src, dst,
		filepath.Base(v.layout.SourceManifest()),
		filepath.Base(v.layout.DestManifest(id)))
	if r.Delta != "" {
		log.Printf("Destination differs from source")
		c.Errorf("transferred data differs from source:\n%s", r.Delta)
		v.attachServerLog(c, id)
		return
	}
	r.Matched = true
	c.Debug("Found no diff for test %s", id)

	for _, marker := range v.failMarkers {
		found, err := AnyLogContains(v.layout.ClientLog(id), v.layout.ServerLog(id), marker)
		for _, p := range found {
			r.ProtocolErrorDetected = true
			log.Printf("%s found in %s", marker, p)
			c.Errorf("%s found in %s", marker, p)
		}
		if err != nil {
			r.Err = err
			c.Errorf("failed to scan logs: %s", err)
			return
		}
	}
}

func (v *Verifier) attachServerLog(c *framework.Context, id string) {
	path := v.layout.ServerLog(id)
	data, err := os.ReadFile(path)
	if err != nil {
		c.Debug("Server log %s is unavailable: %s", path, err)
		return
	}
	c.Debug("Server log %s:\n%s", path, string(data))
}
