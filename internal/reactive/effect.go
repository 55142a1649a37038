package reactive

import "sync"

// Cleanup undoes whatever an effect's setup acquired.
type Cleanup func()

// Phase is the lifecycle position of an Effect.
type Phase int

const (
	// Idle means no setup is currently held.
	Idle Phase = iota
	// Active means a setup ran and its cleanup is pending.
	Active
)

func (p Phase) String() string {
	if p == Active {
		return "active"
	}
	return "idle"
}

// Effect holds at most one active setup. Running it again tears the previous
// activation down first.
type Effect struct {
	mu      sync.Mutex
	cleanup Cleanup
	phase   Phase
}

// Run tears down the current activation, if any, then runs setup. A nil
// cleanup returned by setup still moves the effect to Active.
func (e *Effect) Run(setup func() Cleanup) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
	e.cleanup = setup()
	e.phase = Active
}

// Stop tears down the current activation. Stop on an idle effect does nothing.
func (e *Effect) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.teardownLocked()
}

// Phase reports the current lifecycle position.
func (e *Effect) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Effect) teardownLocked() {
	if e.phase != Active {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
	}
	e.cleanup = nil
	e.phase = Idle
}
