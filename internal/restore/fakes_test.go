package restore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"statekeep/internal/capability"
)

// fakeAccess is an in-memory capability used as a test double for registry,
// file and application-setting access.
type fakeAccess struct {
	mu         sync.Mutex
	values     map[string]capability.Value
	failWith   map[string]error
	writeDelay time.Duration
	// ignoreContext makes delayed writes sleep through ctx cancellation,
	// imitating a capability that never observes its context
	ignoreContext bool
	writes        map[string]capability.Value
}

func newFakeAccess() *fakeAccess {
	return &fakeAccess{
		values:   make(map[string]capability.Value),
		failWith: make(map[string]error),
		writes:   make(map[string]capability.Value),
	}
}

func (f *fakeAccess) Read(ctx context.Context, locator string) (capability.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failWith[locator]; ok {
		return nil, err
	}
	value, ok := f.values[locator]
	if !ok {
		return nil, fmt.Errorf("locator %q not found", locator)
	}
	return value, nil
}

func (f *fakeAccess) Write(ctx context.Context, locator string, value capability.Value) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if f.writeDelay > 0 {
		if f.ignoreContext {
			time.Sleep(f.writeDelay)
		} else {
			select {
			case <-time.After(f.writeDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err, ok := f.failWith[locator]; ok {
		return err
	}
	f.writes[locator] = value
	return nil
}

func (f *fakeAccess) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeAccess) written(locator string) (capability.Value, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.writes[locator]
	return value, ok
}
