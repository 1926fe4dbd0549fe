package swww

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ExitFunc is told how each spawned process ended.
// err is nil on success.
type ExitFunc func(output, path string, err error)

// RealApplier spawns swww for every Apply and reaps it in the background.
type RealApplier struct {
	name   string
	extra  []string
	log    *logrus.Entry
	onExit ExitFunc

	wg sync.WaitGroup
}

// NewRealApplier returns an applier that runs swww with extra arguments
// inserted before the wallpaper path.
func NewRealApplier(log *logrus.Entry, extra []string, onExit ExitFunc) *RealApplier {
	return NewCommandApplier(log, Command, extra, onExit)
}

// NewCommandApplier is NewRealApplier with a different binary.
func NewCommandApplier(log *logrus.Entry, name string, extra []string, onExit ExitFunc) *RealApplier {
	return &RealApplier{
		name:   name,
		extra:  append([]string(nil), extra...),
		log:    log,
		onExit: onExit,
	}
}

// Apply spawns swww and returns as soon as it has started.
func (a *RealApplier) Apply(output, path string) error {
	cmd := exec.Command(a.name, Args(output, path, a.extra)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", a.name, err)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := cmd.Wait()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			err = fmt.Errorf("%s exited with status %d", a.name, exitErr.ExitCode())
		}
		if err != nil {
			a.log.WithFields(logrus.Fields{"output": output, "path": path}).Warnf("swww failed: %v", err)
		}
		if a.onExit != nil {
			a.onExit(output, path, err)
		}
	}()
	return nil
}

// Wait blocks until every spawned process has been reaped.
func (a *RealApplier) Wait() {
	a.wg.Wait()
}

// WaitTimeout is Wait bounded by d. It reports whether every process was
// reaped in time; processes still running are left alone.
func (a *RealApplier) WaitTimeout(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-done:
		return true
	case <-t.C:
		return false
	}
}
