// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pinentry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/passprompt/lib/clock"
)

// ExitAgentMissing is the exit status that marks an agent which could
// not run its real program, such as a wrapper whose exec failed. It is
// handled exactly like a missing executable: the terminal prompt is used
// instead.
const ExitAgentMissing = 76

// ErrAgentNotFound is returned by Spawn when the agent executable does
// not exist or cannot be executed.
var ErrAgentNotFound = errors.New("pinentry: agent executable not available")

// ExitStatus describes how an agent process ended.
type ExitStatus struct {
	// Code is the exit code, or -1 when the process was terminated by
	// a signal.
	Code int

	// Signal is the terminating signal, or zero for a normal exit.
	Signal syscall.Signal
}

// Signaled reports whether the process was terminated by a signal.
func (s ExitStatus) Signaled() bool { return s.Signal != 0 }

func (s ExitStatus) String() string {
	if s.Signaled() {
		return "terminated by " + unix.SignalName(s.Signal)
	}
	return fmt.Sprintf("exit code %d", s.Code)
}

// SpawnConfig configures an agent process.
type SpawnConfig struct {
	// Program is the agent executable. Names without a slash are
	// resolved via PATH. The program is run without arguments.
	Program string

	// GracePeriod is how long each shutdown step waits before
	// escalating. Zero means one second.
	GracePeriod time.Duration

	// Clock times the shutdown steps. Nil means clock.Real().
	Clock clock.Clock

	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger
}

// Agent is a running secret-entry agent connected over two pipes. The
// Agent owns the parent ends of both pipes until Shutdown has reaped the
// child.
type Agent struct {
	program     string
	command     *exec.Cmd
	requests    *os.File
	responses   *os.File
	exited      chan ExitStatus
	clock       clock.Clock
	gracePeriod time.Duration
	logger      *slog.Logger

	shutdownOnce sync.Once
	status       ExitStatus
}

// Spawn starts the agent with its stdin fed from a request pipe and its
// stdout feeding a response pipe. The child's stderr is discarded.
//
// If the executable is missing or not executable, the returned error
// wraps ErrAgentNotFound. Any other failure (pipe creation, fork) is a
// setup error with no degraded path.
//
// Cancelling ctx kills the agent; the conversation then sees its
// responses end.
func Spawn(ctx context.Context, config SpawnConfig) (*Agent, error) {
	requestRead, requestWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating request pipe: %w", err)
	}
	responseRead, responseWrite, err := os.Pipe()
	if err != nil {
		requestRead.Close()
		requestWrite.Close()
		return nil, fmt.Errorf("creating response pipe: %w", err)
	}

	command := exec.CommandContext(ctx, config.Program)
	command.Stdin = requestRead
	command.Stdout = responseWrite

	startErr := command.Start()

	// The child holds its own copies of these ends now. Keeping ours
	// open would hide EOF from both sides.
	requestRead.Close()
	responseWrite.Close()

	if startErr != nil {
		requestWrite.Close()
		responseRead.Close()
		if isNotExecutable(startErr) {
			return nil, fmt.Errorf("%w: %s: %v", ErrAgentNotFound, config.Program, startErr)
		}
		return nil, fmt.Errorf("starting %s: %w", config.Program, startErr)
	}

	agent := &Agent{
		program:     config.Program,
		command:     command,
		requests:    requestWrite,
		responses:   responseRead,
		exited:      make(chan ExitStatus, 1),
		clock:       config.Clock,
		gracePeriod: config.GracePeriod,
		logger:      config.Logger,
	}
	if agent.clock == nil {
		agent.clock = clock.Real()
	}
	if agent.gracePeriod <= 0 {
		agent.gracePeriod = time.Second
	}
	if agent.logger == nil {
		agent.logger = slog.New(slog.DiscardHandler)
	}
	agent.logger = agent.logger.With("program", config.Program, "pid", command.Process.Pid)

	go func() {
		agent.exited <- waitStatus(command)
	}()

	agent.logger.Debug("pinentry started")
	return agent, nil
}

// Shutdown ends the agent and returns how it exited. The request pipe is
// closed first so that a well-behaved agent sees EOF and exits on its
// own. Then, escalating:
//
//  1. non-blocking check for exit
//  2. wait one grace period
//  3. SIGTERM, wait one grace period
//  4. SIGKILL, wait for exit without a bound
//
// The response pipe is closed after the child is reaped. Shutdown is
// idempotent; later calls return the first result.
func (a *Agent) Shutdown() ExitStatus {
	a.shutdownOnce.Do(func() {
		a.requests.Close()
		a.status = a.reap()
		a.responses.Close()
		a.logger.Debug("pinentry exited", "status", a.status.String())
	})
	return a.status
}

func (a *Agent) reap() ExitStatus {
	select {
	case status := <-a.exited:
		return status
	default:
	}

	if status, exited := a.waitGrace(); exited {
		return status
	}

	a.logger.Warn("pinentry did not exit, sending SIGTERM", "grace_period", a.gracePeriod)
	a.signal(unix.SIGTERM)
	if status, exited := a.waitGrace(); exited {
		return status
	}

	a.logger.Warn("pinentry ignored SIGTERM, sending SIGKILL", "grace_period", a.gracePeriod)
	a.signal(unix.SIGKILL)
	return <-a.exited
}

func (a *Agent) waitGrace() (ExitStatus, bool) {
	select {
	case status := <-a.exited:
		return status, true
	case <-a.clock.After(a.gracePeriod):
		return ExitStatus{}, false
	}
}

func (a *Agent) signal(signal syscall.Signal) {
	// The process may exit between the check and the signal; the
	// resulting "process already finished" error is harmless.
	if err := a.command.Process.Signal(signal); err != nil && !errors.Is(err, os.ErrProcessDone) {
		a.logger.Warn("signalling pinentry failed", "signal", unix.SignalName(signal), "error", err)
	}
}

// waitStatus waits for the command and converts its state. Wait errors
// other than a non-zero exit (context cancellation, I/O) still leave
// ProcessState populated once the child has been reaped.
func waitStatus(command *exec.Cmd) ExitStatus {
	_ = command.Wait()

	state := command.ProcessState
	if state == nil {
		return ExitStatus{Code: -1}
	}
	if raw, ok := state.Sys().(syscall.WaitStatus); ok && raw.Signaled() {
		return ExitStatus{Code: -1, Signal: raw.Signal()}
	}
	return ExitStatus{Code: state.ExitCode()}
}

// isNotExecutable reports whether a start error means the program
// itself could not be run, as opposed to a resource failure.
func isNotExecutable(err error) bool {
	return errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, unix.ENOEXEC)
}
