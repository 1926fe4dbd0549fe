package bedload

import (
	"context"
	"strings"

	"github.com/sweeney/river-swww/internal/logic"
)

// FakeSource is a test double that replays scripted river-bedload lines.
type FakeSource struct {
	// Lines are streamed in order, exactly as Stream would read them.
	Lines []string

	// Hold keeps Run blocked after the last line until ctx is cancelled,
	// like a status process that stays alive.
	Hold bool

	// RunError, if set, is returned by Run before streaming anything.
	RunError error
}

// NewFakeSource creates a FakeSource with the given lines.
func NewFakeSource(lines ...string) *FakeSource {
	return &FakeSource{Lines: lines}
}

// Run streams Lines.
func (f *FakeSource) Run(ctx context.Context, out chan<- logic.Observation) error {
	if f.RunError != nil {
		return f.RunError
	}
	if err := Stream(ctx, strings.NewReader(strings.Join(f.Lines, "\n")), out); err != nil {
		return err
	}
	if f.Hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}
