package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wdt-tools/transfer-verify-tests/framework"
)

type commandParams struct {
	rootDir       string
	prefix        string
	generateSize  int64
	tests         framework.IDList
	skip          framework.IDSet
	receiverArgs  string
	senderArgs    string
	algorithm     string
	relativePaths bool
	keep          bool
	debug         bool
	debugAll      bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	c.skip = framework.NewIDSet()

	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.rootDir, "root", "", "test root directory containing src/ and dst<id>/ (created if empty)")
	fs.StringVar(&c.prefix, "prefix", os.TempDir(), "parent of the per-user test directory, used when -root is empty")
	fs.Int64Var(&c.generateSize, "generate", 0, "generate about this many bytes of random source files")
	fs.Var(&c.tests, "tests", "test id(s) to verify, comma-separated or repeated")
	fs.Var(c.skip, "skip", "test id(s) whose output is known to diverge")
	fs.StringVar(&c.receiverArgs, "receiver-args", "", "receiver arguments; runs one transfer per test id when set")
	fs.StringVar(&c.senderArgs, "sender-args", "", "sender arguments, may use {url} for the receiver's connection URL")
	fs.StringVar(&c.algorithm, "algorithm", "md5", "digest algorithm (md5 or blake3)")
	fs.BoolVar(&c.relativePaths, "relative-paths", false, "compare files by path relative to the tree root instead of base name")
	fs.BoolVar(&c.keep, "keep", false, "keep the test root even if all tests pass")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging")
	fs.BoolVar(&c.debugAll, "debug-all", false, "show per-test debug output for passing tests too")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if len(c.tests) == 0 {
		fmt.Fprintln(errOut, "-tests is required")
		fs.Usage()
		return false
	}
	if c.rootDir == "" && c.generateSize <= 0 {
		fmt.Fprintln(errOut, "-root is required unless -generate is set")
		fs.Usage()
		return false
	}
	if (c.receiverArgs == "") != (c.senderArgs == "") {
		fmt.Fprintln(errOut, "-receiver-args and -sender-args must be used together")
		fs.Usage()
		return false
	}
	return true
}

// transferVars are the placeholder values that are only known once a transfer is under way.
type transferVars struct {
	url string
	// key is a fresh encryption key shared by the sender and receiver of one test.
	key string
}

// expandArgs splits an argument template on whitespace and substitutes the placeholders
// {root}, {id}, {src}, {dst}, {url} and {key} in each argument.
func expandArgs(template string, layout framework.Layout, id string, vars transferVars) []string {
	r := strings.NewReplacer(
		"{root}", layout.Root,
		"{id}", id,
		"{src}", layout.SourceDir(),
		"{dst}", layout.DestDir(id),
		"{url}", vars.url,
		"{key}", vars.key,
	)
	fields := strings.Fields(template)
	for i, f := range fields {
		fields[i] = r.Replace(f)
	}
	return fields
}
