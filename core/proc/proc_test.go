package proc

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outFile returns a temp file children can write to plus a reader for
// its final contents.
func outFile(t *testing.T) (*os.File, func() string) {
	t.Helper()
	fd, err := ioutil.TempFile(t.TempDir(), "stdio")
	require.NoError(t, err)
	t.Cleanup(func() { fd.Close() })

	return fd, func() string {
		contents, err := ioutil.ReadFile(fd.Name())
		require.NoError(t, err)
		return string(contents)
	}
}

// assertReaped fails if pid still has an entry in the process table
// once both Wait calls have returned.
func assertReaped(t *testing.T, pid int) {
	t.Helper()
	if pid < 0 {
		return // never ran
	}
	stat, err := ioutil.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	// Field three of /proc/pid/stat is the state; Z means unreaped.
	fields := strings.Fields(string(stat))
	require.Greater(t, len(fields), 2)
	assert.NotEqual(t, "Z", fields[2], "pid %d left as a zombie", pid)
}

func TestNewCommand(t *testing.T) {
	cases := []struct {
		name string
		argv []string
		err  bool
	}{
		{name: "nil argv", argv: nil, err: true},
		{name: "empty argv", argv: []string{}, err: true},
		{name: "empty program path", argv: []string{""}, err: true},
		{name: "path only", argv: []string{"/bin/ls"}},
		{name: "path and args", argv: []string{"/bin/ls", "-l"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := NewCommand(tc.argv)
			if tc.err {
				assert.ErrorIs(t, err, ErrInvalidCommand)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.argv[0], cmd.Path)
			assert.Equal(t, tc.argv, cmd.Args)
		})
	}
}

func TestLaunchEmptyCommandNeverForks(t *testing.T) {
	_, err := Launch(Command{}, Stdio{})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

func TestLaunchWaitExitStatus(t *testing.T) {
	for _, status := range []int{0, 1, 42} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			cmd, err := NewCommand([]string{"/bin/sh", "-c", fmt.Sprintf("exit %d", status)})
			require.NoError(t, err)

			handle, err := Launch(cmd, Stdio{})
			require.NoError(t, err)

			report, err := handle.Wait()
			require.NoError(t, err)
			assert.Equal(t, Exited(status), report)
			assert.True(t, report.Exited)
			assertReaped(t, handle.Pid())
		})
	}
}

func TestLaunchCapturesStdout(t *testing.T) {
	fd, contents := outFile(t)

	cmd, err := NewCommand([]string{"/bin/echo", "hello", "world"})
	require.NoError(t, err)

	handle, err := Launch(cmd, Stdio{Out: fd})
	require.NoError(t, err)

	report, err := handle.Wait()
	require.NoError(t, err)
	assert.Equal(t, Exited(0), report)
	assert.Equal(t, "hello world\n", contents())
}

func TestLaunchNonexistentPath(t *testing.T) {
	fd, contents := outFile(t)

	cmd, err := NewCommand([]string{"/no/such/binary"})
	require.NoError(t, err)

	handle, err := Launch(cmd, Stdio{Err: fd})
	require.NoError(t, err, "image-load failure is a child outcome, not a launch error")

	report, err := handle.Wait()
	require.NoError(t, err)
	assert.Equal(t, Exited(1), report)
	assert.Contains(t, contents(), "/no/such/binary")
}

func TestLaunchNotExecutable(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, ioutil.WriteFile(plain, []byte("not a program\n"), 0644))

	fd, contents := outFile(t)

	cmd, err := NewCommand([]string{plain})
	require.NoError(t, err)

	handle, err := Launch(cmd, Stdio{Err: fd})
	require.NoError(t, err)

	report, err := handle.Wait()
	require.NoError(t, err)
	assert.Equal(t, Exited(1), report)
	assert.Contains(t, contents(), plain)
}

func TestWaitTwice(t *testing.T) {
	cmd, err := NewCommand([]string{"/bin/sh", "-c", "exit 0"})
	require.NoError(t, err)

	handle, err := Launch(cmd, Stdio{})
	require.NoError(t, err)

	_, err = handle.Wait()
	require.NoError(t, err)

	_, err = handle.Wait()
	assert.ErrorIs(t, err, ErrAlreadyWaited)
}

func TestWaitSignaled(t *testing.T) {
	cmd, err := NewCommand([]string{"/bin/sh", "-c", "kill -TERM $$"})
	require.NoError(t, err)

	handle, err := Launch(cmd, Stdio{})
	require.NoError(t, err)

	report, err := handle.Wait()
	require.NoError(t, err)
	assert.False(t, report.Exited)
	assert.Equal(t, 15, report.Signal) // SIGTERM
	assertReaped(t, handle.Pid())
}

func TestExitReportString(t *testing.T) {
	assert.Equal(t, "exited with status 0", Exited(0).String())
	assert.Equal(t, "exited with status 1", Exited(1).String())
	assert.Equal(t, "terminated by signal 9", Signaled(9).String())
}
