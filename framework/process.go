package framework

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/wdt-tools/transfer-verify-tests/logging"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// ErrNoConnectionURL means the receiver exited or closed its standard output before printing
// the URL that the sender needs.
var ErrNoConnectionURL = errors.New("unable to get the connection url from receiver")

// ProcessResult describes how a sender or receiver process ended.
type ProcessResult struct {
	ExitCode int
	// Signal is defined only if the process was terminated by a signal.
	Signal ldvalue.OptionalInt
}

func (r ProcessResult) Succeeded() bool {
	return r.ExitCode == 0 && !r.Signal.IsDefined()
}

func (r ProcessResult) String() string {
	if r.Signal.IsDefined() {
		return fmt.Sprintf("killed by signal %d", r.Signal.IntValue())
	}
	return fmt.Sprintf("exit code %d", r.ExitCode)
}

func resultFromError(err error) (ProcessResult, error) {
	if err == nil {
		return ProcessResult{}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r := ProcessResult{ExitCode: exitErr.ExitCode()}
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			r.Signal = ldvalue.NewOptionalInt(int(ws.Signal()))
		}
		return r, nil
	}
	return ProcessResult{}, err
}

// Runner starts sender and receiver processes of the transfer binary. Every command line
// is extended with the options from its Config.
type Runner struct {
	config Config
	logger logging.Logger
	output io.Writer
}

// NewRunner creates a Runner. Commands being run, and the sender's own output, are written
// to output.
func NewRunner(config Config, logger logging.Logger, output io.Writer) *Runner {
	if logger == nil {
		logger = logging.NullLogger()
	}
	if output == nil {
		output = io.Discard
	}
	return &Runner{config: config, logger: logger, output: output}
}

// Receiver is a running receiver process.
type Receiver struct {
	cmd      *exec.Cmd
	logFile  *os.File
	drained  chan struct{}
	waitOnce sync.Once
	result   ProcessResult
	err      error
}

// StartReceiver starts the receiver with its standard error going to logPath, and waits for
// the first line of its standard output, which is the connection URL. Anything the receiver
// prints after that is appended to the same log.
func (r *Runner) StartReceiver(ctx context.Context, args []string, logPath string) (*Receiver, string, error) {
	args = r.config.ExtendArgs(args)
	fmt.Fprintf(r.output, "Receiver: %s\n", commandLine(r.config.ReceiverBinary, args))

	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create receiver log: %w", err)
	}
	cmd := exec.CommandContext(ctx, r.config.ReceiverBinary, args...)
	cmd.Stderr = logFile
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		_ = logFile.Close()
		return nil, "", err
	}
	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return nil, "", fmt.Errorf("failed to start receiver %s: %w", r.config.ReceiverBinary, err)
	}

	reader := bufio.NewReader(stdout)
	line, _ := reader.ReadString('\n')
	url := strings.TrimSpace(line)

	rcv := &Receiver{
		cmd:     cmd,
		logFile: logFile,
		drained: make(chan struct{}),
	}
	go func() {
		_, _ = io.Copy(logFile, reader)
		close(rcv.drained)
	}()

	if url == "" {
		_ = rcv.Stop()
		return nil, "", ErrNoConnectionURL
	}
	r.logger.Printf("Receiver pid %d listening at %s", cmd.Process.Pid, url)
	return rcv, url, nil
}

// Wait blocks until the receiver exits. It can be called more than once.
func (rcv *Receiver) Wait() (ProcessResult, error) {
	rcv.waitOnce.Do(func() {
		<-rcv.drained
		rcv.result, rcv.err = resultFromError(rcv.cmd.Wait())
		_ = rcv.logFile.Close()
	})
	return rcv.result, rcv.err
}

// Stop kills the receiver if it is still running and waits for it.
func (rcv *Receiver) Stop() error {
	if rcv.cmd.ProcessState == nil {
		_ = rcv.cmd.Process.Kill()
	}
	_, err := rcv.Wait()
	return err
}

// RunSender runs the sender to completion. Its standard output and standard error both go
// to the Runner's output and to logPath.
func (r *Runner) RunSender(ctx context.Context, args []string, logPath string) (ProcessResult, error) {
	args = r.config.ExtendArgs(args)
	fmt.Fprintf(r.output, "Sender: %s\n", commandLine(r.config.SenderBinary, args))

	logFile, err := os.Create(logPath)
	if err != nil {
		return ProcessResult{}, fmt.Errorf("failed to create sender log: %w", err)
	}
	defer logFile.Close()

	w := io.MultiWriter(r.output, logFile)
	cmd := exec.CommandContext(ctx, r.config.SenderBinary, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	result, err := resultFromError(cmd.Run())
	if err != nil {
		return result, fmt.Errorf("failed to run sender %s: %w", r.config.SenderBinary, err)
	}
	r.logger.Printf("Sender finished with %s", result)
	return result, nil
}

// ReceiverVersion returns the protocol version reported by the receiver binary, which is
// the fifth word of the first line printed by --version.
func (r *Runner) ReceiverVersion(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, r.config.ReceiverBinary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get version of %s: %w", r.config.ReceiverBinary, err)
	}
	first := strings.SplitN(string(out), "\n", 2)[0]
	fields := strings.Fields(first)
	if len(fields) < 5 {
		return "", fmt.Errorf("unexpected version output from %s: %q", r.config.ReceiverBinary, first)
	}
	r.logger.Printf("Receiver %s version is %s", r.config.ReceiverBinary, first)
	return fields[4], nil
}

// TransferError is a sender or receiver that did not exit successfully.
type TransferError struct {
	TestID    string
	Result    ProcessResult
	ServerLog string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer failed for test %s: %s", e.TestID, e.Result)
}

// ExitCode is the status the harness should exit with: the process's own exit code, or
// 128+signal if it was killed.
func (e *TransferError) ExitCode() int {
	switch {
	case e.Result.Signal.IsDefined():
		return 128 + e.Result.Signal.IntValue()
	case e.Result.ExitCode > 0:
		return e.Result.ExitCode
	default:
		return 1
	}
}

// CheckTransferStatus returns a *TransferError, including the text of the server log, if
// result is not a success.
func CheckTransferStatus(testID string, result ProcessResult, serverLogPath string) error {
	if result.Succeeded() {
		return nil
	}
	data, err := os.ReadFile(serverLogPath)
	if err != nil {
		return fmt.Errorf("transfer failed for test %s (%s) and server log is unreadable: %w", testID, result, err)
	}
	return &TransferError{TestID: testID, Result: result, ServerLog: string(data)}
}
