// Package token splits raw command lines into argv words.
//
// Splitting is deliberately naive: the only delimiter is the literal
// space byte, runs of spaces yield empty words, and there is no
// quoting, escaping, or tab handling. A word is whatever sits between
// two spaces, including nothing at all.
package token

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSeparator is the word that splits a line into a two-stage
// pipeline when no other separator is configured.
const DefaultSeparator = "|"

// ErrBadPipeline is returned when a line uses the pipeline separator
// in a way that doesn't leave exactly two command groups.
var ErrBadPipeline = errors.New("bad pipeline")

// Split breaks one line (without its trailing line terminator) into
// words. The result is never empty: an empty line yields a single
// empty word, which downstream rejects as an invalid program path.
func Split(line string) []string {
	return strings.Split(line, " ")
}

// SplitPipeline splits a line at the separator word. With no separator
// present it returns the whole argv as first and piped=false. The
// separator must be a standalone word; it is never recognized inside
// another word.
func SplitPipeline(line, separator string) (first, second []string, piped bool, err error) {
	words := Split(line)

	sepAt := -1
	for i, w := range words {
		if w != separator {
			continue
		}
		if sepAt >= 0 {
			return nil, nil, false, fmt.Errorf("%w: more than one %q (only two-stage pipelines are supported)", ErrBadPipeline, separator)
		}
		sepAt = i
	}

	if sepAt < 0 {
		return words, nil, false, nil
	}
	first, second = words[:sepAt], words[sepAt+1:]
	if len(first) == 0 || len(second) == 0 {
		return nil, nil, false, fmt.Errorf("%w: %q needs a command on both sides", ErrBadPipeline, separator)
	}
	return first, second, true, nil
}
