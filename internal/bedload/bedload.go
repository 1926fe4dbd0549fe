// Package bedload reads River output state from river-bedload.
// The real implementation runs the river-bedload process.
// The fake implementation allows testing without a compositor.
package bedload

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sweeney/river-swww/internal/logic"
)

// Command and arguments that stream output state as minified JSON lines.
const Command = "river-bedload"

// Args are the default river-bedload arguments.
var Args = []string{"-watch", "outputs", "-minified"}

// maxLineSize bounds a single JSON line.
const maxLineSize = 1 << 20

// ErrSpawn is returned when the status process cannot be started.
var ErrSpawn = errors.New("bedload: spawn failed")

// Source streams observations.
type Source interface {
	// Run sends one observation per output per line, in order, until the
	// stream ends (nil), a line fails to parse, or ctx is cancelled.
	Run(ctx context.Context, out chan<- logic.Observation) error
}

// OutputInfo is one element of a river-bedload outputs array.
type OutputInfo struct {
	Name        string `json:"name"`
	FocusedTags uint64 `json:"focused_tags"`
}

// ParseError reports a line that is not a JSON array of outputs.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bedload: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseLine decodes one line of river-bedload output.
func ParseLine(line []byte) ([]OutputInfo, error) {
	var outputs []OutputInfo
	if err := json.Unmarshal(line, &outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Stream parses newline-delimited output arrays from r and forwards every
// element to out. Blank lines are skipped.
func Stream(ctx context.Context, r io.Reader, out chan<- logic.Observation) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		outputs, err := ParseLine(line)
		if err != nil {
			return &ParseError{Line: n, Text: string(line), Err: err}
		}
		for _, o := range outputs {
			select {
			case out <- logic.Observation{Output: o.Name, FocusedTags: o.FocusedTags}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("bedload: read: %w", err)
	}
	return nil
}
