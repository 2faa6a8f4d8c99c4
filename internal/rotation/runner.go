// Package rotation replays a rotation's key sequence, one key per trigger press.
package rotation

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"

	"oneclick/internal/config"
	"oneclick/internal/input"
)

// Listener delivers one value per trigger key press until ctx is done
type Listener interface {
	Listen(ctx context.Context, key string) (<-chan struct{}, error)
}

// Emission describes one trigger press handled by the runner
type Emission struct {
	RunID string
	Key   string
	Index int
	Err   error // *EmissionError when the keystroke failed
}

// State is a snapshot of the runner
type State struct {
	Running  bool
	RunID    string
	Rotation config.Rotation
	Cursor   int
	Emitted  int
}

// Runner cycles through the active rotation's sequence. It is Idle until
// Start and Active until Stop; at most one rotation runs per Runner.
type Runner struct {
	// ops serialises Start and Stop
	ops sync.Mutex

	mu       sync.Mutex
	listener Listener
	injector input.Injector
	onEmit   func(Emission)

	running  bool
	runID    string
	rotation config.Rotation
	cursor   int
	emitted  int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates an idle runner
func NewRunner(listener Listener, injector input.Injector) *Runner {
	return &Runner{
		listener: listener,
		injector: injector,
	}
}

// SetOnEmit sets the callback invoked after every trigger press is handled.
// It runs on the runner goroutine.
func (r *Runner) SetOnEmit(callback func(Emission)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEmit = callback
}

// Start activates rot with the cursor at 0. It fails with ErrAlreadyActive
// when a rotation is running, with a *config.ValidationError for an unusable
// rotation and with a *HookError when the trigger cannot be registered; in
// every failure case the runner stays idle.
func (r *Runner) Start(rot config.Rotation) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	running := r.running
	r.mu.Unlock()
	if running {
		return ErrAlreadyActive
	}

	if err := config.Validate(rot); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	triggers, err := r.listener.Listen(ctx, rot.Trigger)
	if err != nil {
		cancel()
		return &HookError{Trigger: rot.Trigger, Err: err}
	}

	rot.Sequence = append([]string(nil), rot.Sequence...)
	done := make(chan struct{})

	r.mu.Lock()
	r.running = true
	r.runID = uuid.NewString()
	r.rotation = rot
	r.cursor = 0
	r.emitted = 0
	r.cancel = cancel
	r.done = done
	runID := r.runID
	r.mu.Unlock()

	go r.loop(ctx, triggers, done)

	log.Printf("Rotation: Started %q on %s (run %s)", rot.Name, rot.Trigger, runID)
	return nil
}

// Stop deactivates the running rotation and returns once the runner
// goroutine has exited. It returns ErrNotActive when idle.
func (r *Runner) Stop() error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotActive
	}
	r.running = false
	cancel, done := r.cancel, r.done
	name, runID := r.rotation.Name, r.runID
	r.mu.Unlock()

	cancel()
	<-done

	r.mu.Lock()
	r.runID = ""
	r.rotation = config.Rotation{}
	r.cursor = 0
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	log.Printf("Rotation: Stopped %q (run %s)", name, runID)
	return nil
}

// Active reports whether a rotation is running
func (r *Runner) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// State returns a snapshot of the runner
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()

	rot := r.rotation
	rot.Sequence = append([]string(nil), rot.Sequence...)
	return State{
		Running:  r.running,
		RunID:    r.runID,
		Rotation: rot,
		Cursor:   r.cursor,
		Emitted:  r.emitted,
	}
}

func (r *Runner) loop(ctx context.Context, triggers <-chan struct{}, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-triggers:
			r.advance()
		}
	}
}

// advance emits the key under the cursor and moves the cursor forward.
// The cursor moves even when the emission fails.
func (r *Runner) advance() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	index := r.cursor
	key := r.rotation.Sequence[index]
	runID := r.runID
	r.mu.Unlock()

	var emitErr error
	if err := r.injector.Tap(key); err != nil {
		emitErr = &EmissionError{Key: key, Index: index, Err: err}
		log.Printf("Rotation: %v", emitErr)
	}

	r.mu.Lock()
	r.cursor = (index + 1) % len(r.rotation.Sequence)
	r.emitted++
	onEmit := r.onEmit
	r.mu.Unlock()

	if onEmit != nil {
		onEmit(Emission{RunID: runID, Key: key, Index: index, Err: emitErr})
	}
}
