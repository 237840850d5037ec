package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"

	"github.com/wdt-tools/transfer-verify-tests/framework"
	"github.com/wdt-tools/transfer-verify-tests/logging"
	"github.com/wdt-tools/transfer-verify-tests/verification"

	"github.com/google/uuid"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr, os.LookupEnv))
}

// run is the only place that decides the process exit status: 0 if every verified test
// passed, 1 for verification failures and harness errors, or the failing sender's or
// receiver's own exit code if a transfer failed.
func run(args []string, out, errOut io.Writer, lookupEnv func(string) (string, bool)) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 1
	}
	algorithm, err := verification.ParseAlgorithm(params.algorithm)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	logger := logging.NewStructuredLogger(errOut, uuid.NewString(), params.debug)
	config := framework.ConfigFromEnvironment(lookupEnv)

	rootDir := params.rootDir
	if rootDir == "" {
		rootDir, err = framework.CreateTestDirectory(params.prefix, currentUser(lookupEnv))
		if err != nil {
			logger.Error(err, "could not create test directory")
			return 1
		}
	}
	fmt.Fprintf(out, "Testing in %s\n", rootDir)
	layout := framework.Layout{Root: rootDir}

	if params.generateSize > 0 {
		if err := framework.GenerateRandomFiles(layout.SourceDir(), params.generateSize); err != nil {
			logger.Error(err, "could not generate source files")
			return 1
		}
	}

	if params.receiverArgs != "" {
		for _, line := range config.Describe() {
			fmt.Fprintln(out, line)
		}
		runner := framework.NewRunner(config, logger, out)
		if version, err := runner.ReceiverVersion(context.Background()); err == nil {
			fmt.Fprintf(out, "Receiver protocol version %s\n", version)
		} else {
			logger.Printf("%s", err)
		}
		for _, id := range params.tests {
			if err := runTransfer(context.Background(), runner, layout, id, params); err != nil {
				var te *framework.TransferError
				if errors.As(err, &te) {
					fmt.Fprint(out, te.ServerLog)
					fmt.Fprintf(out, "Transfer failed %s\n", te.Result)
					return te.ExitCode()
				}
				logger.Error(err, "could not run transfer for test "+id)
				return 1
			}
		}
	}

	testLogger := &ConsoleTestLogger{
		Output:               out,
		DebugOutputOnFailure: true,
		DebugOutputOnSuccess: params.debugAll,
	}
	verifier := verification.NewVerifier(rootDir,
		verification.WithAlgorithm(algorithm),
		verification.WithKeyByRelativePath(params.relativePaths),
		verification.WithKeepArtifacts(params.keep),
		verification.WithTestLogger(testLogger),
		verification.WithLogger(logger),
	)
	fmt.Fprintln(out, "Verifying transfers")
	report, err := verifier.Verify(params.tests, params.skip)
	if err != nil {
		logger.Error(err, "could not verify transfers")
		return 1
	}

	fmt.Fprintln(out)
	PrintResults(out, report.Summary)
	switch {
	case report.Removed:
		fmt.Fprintf(out, "Good run, deleted logs in %s\n", rootDir)
	case !report.OK():
		fmt.Fprintf(out, "Bad run - keeping full logs and partial transfer in %s\n", rootDir)
	}
	return report.ExitStatus()
}

// runTransfer runs one receiver and one sender for a test, and returns a
// *framework.TransferError if either of them failed.
func runTransfer(ctx context.Context, runner *framework.Runner, layout framework.Layout, id string, params commandParams) error {
	if err := os.MkdirAll(layout.DestDir(id), 0o755); err != nil {
		return err
	}
	key, err := framework.GenerateEncryptionKey()
	if err != nil {
		return err
	}
	vars := transferVars{key: key}
	receiver, url, err := runner.StartReceiver(ctx, expandArgs(params.receiverArgs, layout, id, vars), layout.ServerLog(id))
	if err != nil {
		return err
	}
	vars.url = url
	result, err := runner.RunSender(ctx, expandArgs(params.senderArgs, layout, id, vars), layout.ClientLog(id))
	if err == nil {
		err = framework.CheckTransferStatus(id, result, layout.ServerLog(id))
	}
	if err != nil {
		_ = receiver.Stop()
		return err
	}
	result, err = receiver.Wait()
	if err != nil {
		return err
	}
	return framework.CheckTransferStatus(id, result, layout.ServerLog(id))
}

func currentUser(lookupEnv func(string) (string, bool)) string {
	if name, ok := lookupEnv("USER"); ok && name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
