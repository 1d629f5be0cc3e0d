package proc

import (
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaunchPipelineLsWc(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, name), nil, 0644))
	}

	fd, contents := outFile(t)

	ls, err := NewCommand([]string{"/bin/ls", dir})
	require.NoError(t, err)
	wc, err := NewCommand([]string{"/usr/bin/wc", "-l"})
	require.NoError(t, err)

	first, second, err := LaunchPipeline(ls, wc, Stdio{Out: fd})
	require.NoError(t, err)

	// Termination order is not launch order; wait in reverse to prove
	// it doesn't matter.
	secondReport, err := second.Wait()
	require.NoError(t, err)
	firstReport, err := first.Wait()
	require.NoError(t, err)

	assert.Equal(t, Exited(0), firstReport)
	assert.Equal(t, Exited(0), secondReport)
	assert.Equal(t, "3", strings.TrimSpace(contents()))

	assertReaped(t, first.Pid())
	assertReaped(t, second.Pid())
}

// The second stage sees end-of-stream once the first stage and the
// parent have released the write end; wc must not hang on a
// half-open pipe.
func TestLaunchPipelineReaderSeesEOF(t *testing.T) {
	fd, contents := outFile(t)

	echo, err := NewCommand([]string{"/bin/echo", "one", "two", "three"})
	require.NoError(t, err)
	wc, err := NewCommand([]string{"/usr/bin/wc", "-w"})
	require.NoError(t, err)

	first, second, err := LaunchPipeline(echo, wc, Stdio{Out: fd})
	require.NoError(t, err)

	firstReport, err := first.Wait()
	require.NoError(t, err)
	secondReport, err := second.Wait()
	require.NoError(t, err)

	assert.Equal(t, Exited(0), firstReport)
	assert.Equal(t, Exited(0), secondReport)
	assert.Equal(t, "3", strings.TrimSpace(contents()))
}

func TestLaunchPipelineFirstStageImageLoadFailure(t *testing.T) {
	errFd, errContents := outFile(t)
	outFd, outContents := outFile(t)

	bad, err := NewCommand([]string{"/no/such/binary"})
	require.NoError(t, err)
	wc, err := NewCommand([]string{"/usr/bin/wc", "-l"})
	require.NoError(t, err)

	// A failed image load is a child outcome, so the pipeline still
	// launches; the reader just sees an empty stream.
	first, second, err := LaunchPipeline(bad, wc, Stdio{Out: outFd, Err: errFd})
	require.NoError(t, err)

	firstReport, err := first.Wait()
	require.NoError(t, err)
	secondReport, err := second.Wait()
	require.NoError(t, err)

	assert.Equal(t, Exited(1), firstReport)
	assert.Equal(t, Exited(0), secondReport)
	assert.Contains(t, errContents(), "/no/such/binary")
	assert.Equal(t, "0", strings.TrimSpace(outContents()))

	assertReaped(t, second.Pid())
}

func TestLaunchPipelineSecondStageImageLoadFailure(t *testing.T) {
	errFd, errContents := outFile(t)

	echo, err := NewCommand([]string{"/bin/echo", "hi"})
	require.NoError(t, err)
	bad, err := NewCommand([]string{"/no/such/binary"})
	require.NoError(t, err)

	first, second, err := LaunchPipeline(echo, bad, Stdio{Err: errFd})
	require.NoError(t, err)

	// Neither wait may hang even though the pipe lost its reader.
	_, err = first.Wait()
	require.NoError(t, err)
	secondReport, err := second.Wait()
	require.NoError(t, err)

	assert.Equal(t, Exited(1), secondReport)
	assert.Contains(t, errContents(), "/no/such/binary")

	assertReaped(t, first.Pid())
}

func TestLaunchPipelineEmptyCommand(t *testing.T) {
	wc, err := NewCommand([]string{"/usr/bin/wc", "-l"})
	require.NoError(t, err)

	_, _, err = LaunchPipeline(Command{}, wc, Stdio{})
	assert.ErrorIs(t, err, ErrInvalidCommand)
}
