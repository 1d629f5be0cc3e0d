package proc

import "fmt"

// ExitReport is the observed outcome of one child process: either a
// normal exit with a status code or termination by a signal. It is
// produced once per Handle, only after the child has terminated.
type ExitReport struct {
	// Exited is true for a normal exit; Code then holds the exit
	// status (0-255). Otherwise Signal holds the terminating signal
	// number.
	Exited bool `json:"exited"`
	Code   int  `json:"code"`
	Signal int  `json:"signal,omitempty"`
}

// Exited builds a report for a normal exit.
func Exited(code int) ExitReport {
	return ExitReport{Exited: true, Code: code & 0xff}
}

// Signaled builds a report for a signal termination.
func Signaled(signal int) ExitReport {
	return ExitReport{Signal: signal}
}

func (r ExitReport) String() string {
	if r.Exited {
		return fmt.Sprintf("exited with status %d", r.Code)
	}
	return fmt.Sprintf("terminated by signal %d", r.Signal)
}
