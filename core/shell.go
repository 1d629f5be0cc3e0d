// Package core ties the tokenizer, launcher, and event log together
// into the interactive loop.
package core

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"

	"github.com/spencertipping/pipesh/core/config"
	"github.com/spencertipping/pipesh/core/logger"
	"github.com/spencertipping/pipesh/core/proc"
	"github.com/spencertipping/pipesh/core/token"
)

var (
	colorOK   = color.New(color.FgGreen)
	colorFail = color.New(color.FgRed, color.Bold)
)

// Shell reads command lines and launches the processes they name.
// Each line is fully dispatched (launched, waited on, and reported)
// before the next one is read; two dispatches never overlap.
type Shell struct {
	Config   *config.Configuration
	Readline *readline.Instance
	Events   *logger.Logger

	stdio   proc.Stdio
	stderr  io.Writer
	toClose listCloser
}

// NewDispatcher returns a Shell that can Dispatch lines but has no
// interactive input attached. Children inherit the streams in stdio;
// status reports go to its error stream.
func NewDispatcher(configuration *config.Configuration, events *logger.Logger, stdio proc.Stdio) *Shell {
	stderr := io.Writer(os.Stderr)
	if stdio.Err != nil {
		stderr = stdio.Err
	}
	return &Shell{
		Config: configuration,
		Events: events,
		stdio:  stdio,
		stderr: stderr,
	}
}

// NewShell builds an interactive Shell reading from stdio's input
// stream.
func NewShell(configuration *config.Configuration, events *logger.Logger, stdio proc.Stdio) (*Shell, error) {
	shell := NewDispatcher(configuration, events, stdio)

	stdin, stdout := os.Stdin, io.Writer(os.Stdout)
	if stdio.In != nil {
		stdin = stdio.In
	}
	if stdio.Out != nil {
		stdout = stdio.Out
	}
	isTerm := isTerminal(stdin)

	cfg := &readline.Config{
		Stdin:  readline.NewCancelableStdin(stdin),
		Stdout: stdout,
		Stderr: shell.stderr,
		FuncGetWidth: func() int {
			return 80
		},
		FuncIsTerminal: func() bool {
			return isTerm
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	shell.Readline = rl
	shell.toClose = append(shell.toClose, rl)
	return shell, nil
}

// Run reads lines until end-of-input, dispatching each one in turn.
func (s *Shell) Run() error {
	for {
		s.Readline.SetPrompt(s.Config.Prompt)
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return nil // Input closed, quit.

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			return fmt.Errorf("readline: %w", err)

		default:
			s.Dispatch(line)
		}
	}
}

// Dispatch tokenizes one line, launches its command or two-stage
// pipeline, waits for every child, and reports each child's
// termination to the error stream. It returns only once all children
// spawned for the line are reaped; no failure here ends the loop.
func (s *Shell) Dispatch(line string) {
	first, second, piped, err := token.SplitPipeline(line, s.Config.PipeSeparator)
	if err != nil {
		s.printError(err)
		return
	}

	if piped {
		s.dispatchPipeline(line, first, second)
	} else {
		s.dispatchSingle(line, first)
	}
}

func (s *Shell) dispatchSingle(line string, argv []string) {
	cmd, err := proc.NewCommand(argv)
	if err != nil {
		s.printError(err)
		return
	}

	handle, err := proc.Launch(cmd, s.stdio)
	if err != nil {
		s.printError(err)
		return
	}

	report, err := handle.Wait()
	if err != nil {
		s.printError(err)
		return
	}

	s.printReport(cmd, report)
	s.record(line, logger.Stage{Argv: cmd.Args, Report: report})
}

func (s *Shell) dispatchPipeline(line string, firstArgv, secondArgv []string) {
	firstCmd, err := proc.NewCommand(firstArgv)
	if err != nil {
		s.printError(err)
		return
	}
	secondCmd, err := proc.NewCommand(secondArgv)
	if err != nil {
		s.printError(err)
		return
	}

	firstHandle, secondHandle, err := proc.LaunchPipeline(firstCmd, secondCmd, s.stdio)
	if err != nil {
		s.printError(err)
		return
	}

	// Both children get reaped before anything else happens, whatever
	// either wait reports.
	firstReport, firstErr := firstHandle.Wait()
	secondReport, secondErr := secondHandle.Wait()

	if firstErr != nil {
		s.printError(firstErr)
	} else {
		s.printReport(firstCmd, firstReport)
	}
	if secondErr != nil {
		s.printError(secondErr)
	} else {
		s.printReport(secondCmd, secondReport)
	}
	if firstErr != nil || secondErr != nil {
		return
	}

	s.record(line,
		logger.Stage{Argv: firstCmd.Args, Report: firstReport},
		logger.Stage{Argv: secondCmd.Args, Report: secondReport})
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.stderr, "pipesh: %v\n", err)
}

func (s *Shell) printReport(cmd proc.Command, report proc.ExitReport) {
	c := colorOK
	if !report.Exited || report.Code != 0 {
		c = colorFail
	}
	fmt.Fprintln(s.stderr, c.Sprintf("%s: %s", cmd.Path, report))
}

func (s *Shell) record(line string, stages ...logger.Stage) {
	if s.Events == nil {
		return
	}
	if err := s.Events.RecordDispatch(&logger.Dispatch{Line: line, Stages: stages}); err != nil {
		log.Printf("recording dispatch: %v", err)
	}
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
