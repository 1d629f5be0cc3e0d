package proc

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrPipeCreationFailed is returned when the anonymous pipe can't
	// be created. Neither child was launched.
	ErrPipeCreationFailed = errors.New("pipe creation failed")

	// ErrPipelineLaunchFailed is returned when either stage of a
	// pipeline couldn't be launched. Any stage that did launch has
	// already been waited on.
	ErrPipelineLaunchFailed = errors.New("pipeline launch failed")
)

// LaunchPipeline starts first and second connected by an anonymous
// pipe: first's stdout is the pipe's write end, second's stdin is its
// read end. The remaining streams come from stdio.
//
// Both children are launched before either is waited on, so the
// reader exists before the writer can block on a full pipe buffer.
// Each child inherits only the pipe end it owns, and the parent's
// copies of both ends are closed before LaunchPipeline returns on
// every path. Holding the write end open anywhere but inside the
// first child would keep the reader from ever seeing end-of-stream.
//
// The caller must Wait on both handles; termination order is
// unrelated to launch order.
func LaunchPipeline(first, second Command, stdio Stdio) (*Handle, *Handle, error) {
	for _, cmd := range []Command{first, second} {
		if len(cmd.Args) == 0 || cmd.Path == "" {
			return nil, nil, fmt.Errorf("%w: empty program path", ErrInvalidCommand)
		}
	}

	readEnd, writeEnd, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPipeCreationFailed, err)
	}

	firstHandle, err := Launch(first, Stdio{In: stdio.In, Out: writeEnd, Err: stdio.Err})
	if err != nil {
		readEnd.Close()
		writeEnd.Close()
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrPipelineLaunchFailed, first.Path, err)
	}

	secondHandle, err := Launch(second, Stdio{In: readEnd, Out: stdio.Out, Err: stdio.Err})

	// The parent's references go away no matter what happened.
	readEnd.Close()
	writeEnd.Close()

	if err != nil {
		// The first child is already running; reap it before
		// propagating the failure so no zombie is left behind. Its
		// write end is fully closed by now, so it can't block forever
		// on a full buffer.
		if _, waitErr := firstHandle.Wait(); waitErr != nil {
			return nil, nil, fmt.Errorf("%w: %s: %v (and waiting on %s: %v)",
				ErrPipelineLaunchFailed, second.Path, err, first.Path, waitErr)
		}
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrPipelineLaunchFailed, second.Path, err)
	}

	return firstHandle, secondHandle, nil
}
