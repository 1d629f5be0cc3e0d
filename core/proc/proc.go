// Package proc launches child processes and observes how they
// terminate. It is the only package that touches fork/exec, wait, and
// pipe file descriptors; callers deal in Commands, Handles, and
// ExitReports.
package proc

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
)

var (
	// ErrInvalidCommand is returned for an empty argv or an empty
	// program path, before anything is forked.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrLaunchFailed is returned when the process couldn't be created
	// at all (resource exhaustion). Nothing was started.
	ErrLaunchFailed = errors.New("launch failed")

	// ErrAlreadyWaited is returned by the second and later calls to
	// Wait on the same Handle. The OS reclaims exit data on first
	// collection, so there is nothing left to report.
	ErrAlreadyWaited = errors.New("process already waited on")
)

// Command is a resolved program invocation: an executable path plus
// the argv handed to it. The path is used verbatim; there is no PATH
// search, so it must be absolute or relative to the working directory.
type Command struct {
	Path string
	Args []string // Args[0] is the program path.
}

// NewCommand builds a Command from tokenized argv.
func NewCommand(argv []string) (Command, error) {
	if len(argv) == 0 || argv[0] == "" {
		return Command{}, fmt.Errorf("%w: empty program path", ErrInvalidCommand)
	}
	return Command{Path: argv[0], Args: argv}, nil
}

// String renders the command the way it was typed.
func (c Command) String() string {
	return strings.Join(c.Args, " ")
}

// Stdio holds the standard streams handed to a child. A nil field
// means the child inherits the parent's stream.
type Stdio struct {
	In  *os.File
	Out *os.File
	Err *os.File
}

// files returns the complete descriptor set the child will inherit,
// in fd order. Nothing beyond these three crosses the fork.
func (s Stdio) files() []*os.File {
	in, out, errf := s.In, s.Out, s.Err
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if errf == nil {
		errf = os.Stderr
	}
	return []*os.File{in, out, errf}
}

// Handle identifies one launched child. Wait collects its termination
// exactly once.
type Handle struct {
	proc   *os.Process
	report *ExitReport // non-nil when the outcome is already known
	waited bool
}

// Pid returns the child's process ID, or -1 when the child never
// reached a running state (failed image load).
func (h *Handle) Pid() int {
	if h.proc == nil {
		return -1
	}
	return h.proc.Pid
}

// Launch starts cmd with the given standard streams and an inherited
// environment.
//
// A failure to create the process at all wraps ErrLaunchFailed and no
// Handle is returned. A failure to load the program image (missing
// path, permission denied, not executable) is not an error from
// Launch's caller's point of view: the diagnostic goes to the child's
// error stream and the returned Handle reports "exited with status 1",
// the same observable behavior as a forked child whose exec failed.
func Launch(cmd Command, stdio Stdio) (*Handle, error) {
	if len(cmd.Args) == 0 || cmd.Path == "" {
		return nil, fmt.Errorf("%w: empty program path", ErrInvalidCommand)
	}

	files := stdio.files()
	p, err := os.StartProcess(cmd.Path, cmd.Args, &os.ProcAttr{Files: files})
	if err != nil {
		if spawnFailure(err) {
			return nil, fmt.Errorf("%w: %s: %v", ErrLaunchFailed, cmd.Path, err)
		}
		fmt.Fprintf(files[2], "%s: %v\n", cmd.Path, cause(err))
		report := Exited(imageLoadExitStatus)
		return &Handle{report: &report}, nil
	}
	return &Handle{proc: p}, nil
}

// imageLoadExitStatus is the status a child reports when its program
// image can't be loaded, matching execv-then-exit(1) semantics.
const imageLoadExitStatus = 1

// spawnFailure reports whether err means the process couldn't be
// created at all, as opposed to created-but-image-load-failed.
func spawnFailure(err error) bool {
	for _, errno := range []syscall.Errno{
		syscall.EAGAIN, // process table or rlimit exhausted
		syscall.ENOMEM,
		syscall.EMFILE,
		syscall.ENFILE,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

// cause unwraps the PathError shell around a syscall errno so the
// diagnostic reads like perror output.
func cause(err error) error {
	if u := errors.Unwrap(err); u != nil {
		if u2 := errors.Unwrap(u); u2 != nil {
			return u2
		}
		return u
	}
	return err
}

// Wait blocks until the child terminates and returns its ExitReport.
// It must be called exactly once per Handle; later calls return
// ErrAlreadyWaited.
func (h *Handle) Wait() (ExitReport, error) {
	if h.waited {
		return ExitReport{}, ErrAlreadyWaited
	}
	h.waited = true

	if h.report != nil {
		return *h.report, nil
	}

	state, err := h.proc.Wait()
	if err != nil {
		return ExitReport{}, fmt.Errorf("wait pid %d: %w", h.proc.Pid, err)
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return Signaled(int(ws.Signal())), nil
	}
	return Exited(state.ExitCode()), nil
}
