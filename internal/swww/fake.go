package swww

import "sync"

// Call is one recorded Apply.
type Call struct {
	Output string
	Path   string
}

// FakeApplier records Apply calls for test assertions.
// Safe for concurrent use; the loop applies while tests inspect.
type FakeApplier struct {
	mu    sync.Mutex
	calls []Call

	// ApplyError, if set, is returned by Apply (the call is still recorded).
	ApplyError error

	// Notify, if non-nil, receives every call after it is recorded.
	Notify chan Call
}

// NewFakeApplier creates a FakeApplier.
func NewFakeApplier() *FakeApplier {
	return &FakeApplier{}
}

// Apply records the call.
func (f *FakeApplier) Apply(output, path string) error {
	c := Call{Output: output, Path: path}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	err := f.ApplyError
	notify := f.Notify
	f.mu.Unlock()

	if notify != nil {
		notify <- c
	}
	return err
}

// Calls returns a copy of the recorded calls.
func (f *FakeApplier) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// SetError changes ApplyError under the lock.
func (f *FakeApplier) SetError(err error) {
	f.mu.Lock()
	f.ApplyError = err
	f.mu.Unlock()
}

// Reset clears recorded calls.
func (f *FakeApplier) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.ApplyError = nil
	f.mu.Unlock()
}
