package bedload

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
	"github.com/sweeney/river-swww/internal/logic"
)

// RealSource runs a status process and streams its stdout.
type RealSource struct {
	name string
	args []string
	log  *logrus.Entry
}

// NewRealSource returns a source running river-bedload with its default arguments.
func NewRealSource(log *logrus.Entry) *RealSource {
	return NewCommandSource(log, Command, Args...)
}

// NewCommandSource returns a source running an arbitrary command whose
// stdout speaks the river-bedload outputs format.
func NewCommandSource(log *logrus.Entry, name string, args ...string) *RealSource {
	return &RealSource{name: name, args: args, log: log}
}

// Run starts the process and streams it until it exits.
// The process is killed when Run returns early.
func (s *RealSource) Run(ctx context.Context, out chan<- logic.Observation) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, s.name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSpawn, s.name, err)
	}
	s.log.WithField("pid", cmd.Process.Pid).Infof("started %s", s.name)

	streamErr := Stream(ctx, stdout, out)
	if streamErr != nil {
		// Stop the process before reaping it.
		cancel()
	}
	waitErr := cmd.Wait()

	if streamErr != nil {
		return streamErr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		s.log.Warnf("%s exited with status %d", s.name, exitErr.ExitCode())
	} else if waitErr != nil {
		return fmt.Errorf("bedload: wait: %w", waitErr)
	}
	s.log.Infof("%s stream ended", s.name)
	return nil
}
