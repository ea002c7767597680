package stopwatch

import (
	"context"
	"errors"
	"log"
	gosync "sync"
	"time"

	"github.com/nhle/task-tracker/internal/model"
)

// State is the stopwatch lifecycle state.
type State int

const (
	Idle State = iota
	Running
	StoppedUnsaved
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case StoppedUnsaved:
		return "stopped (unsaved)"
	default:
		return "idle"
	}
}

var (
	// ErrNoTaskSelected is returned by Start when no task is selected.
	ErrNoTaskSelected = errors.New("Please select a task first")

	// ErrRunning is returned by operations that need a stopped stopwatch.
	ErrRunning = errors.New("stop the timer first")

	// ErrNotRunning is returned by Stop when nothing is running.
	ErrNotRunning = errors.New("timer is not running")

	// ErrSaving is returned while a save of the current seconds is in flight.
	ErrSaving = errors.New("still saving, try again in a moment")
)

// TimeSaver persists tracked seconds to a task.
type TimeSaver interface {
	AddTime(ctx context.Context, id string, seconds int) (model.Task, error)
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

// WithTicker replaces the tick source.
func WithTicker(f TickerFunc) Option {
	return func(s *Stopwatch) { s.newTicker = f }
}

// WithInterval changes the tick period. Each tick still counts as one
// second.
func WithInterval(d time.Duration) Option {
	return func(s *Stopwatch) { s.interval = d }
}

// WithOnTick registers a callback invoked from the tick goroutine with
// the new elapsed count.
func WithOnTick(fn func(elapsed int)) Option {
	return func(s *Stopwatch) { s.onTick = fn }
}

// WithOnSaved registers a callback invoked after seconds were saved.
func WithOnSaved(fn func(task model.Task, seconds int)) Option {
	return func(s *Stopwatch) { s.onSaved = fn }
}

// Stopwatch counts seconds spent on one selected task and saves them to
// the task when stopped. Unsaved seconds survive a failed save.
type Stopwatch struct {
	saver     TimeSaver
	newTicker TickerFunc
	interval  time.Duration
	onTick    func(int)
	onSaved   func(model.Task, int)

	mu       gosync.Mutex
	state    State
	elapsed  int
	selected string
	saving   bool
	ticking  *handle
}

// New creates an idle stopwatch saving through saver.
func New(saver TimeSaver, opts ...Option) *Stopwatch {
	s := &Stopwatch{
		saver:     saver,
		newTicker: NewTimeTicker,
		interval:  time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Stopwatch) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Running reports whether the stopwatch is ticking.
func (s *Stopwatch) Running() bool { return s.State() == Running }

// Elapsed returns the unsaved seconds.
func (s *Stopwatch) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// Saving reports whether a save is in flight.
func (s *Stopwatch) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving
}

// SelectedTaskID returns the task being tracked, or "".
func (s *Stopwatch) SelectedTaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select picks the task to track and starts a new session at zero.
// An empty id clears the selection.
func (s *Stopwatch) Select(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return ErrRunning
	}
	if s.saving {
		return ErrSaving
	}
	s.selected = taskID
	s.elapsed = 0
	s.state = Idle
	return nil
}

// Start begins ticking. It fails without side effects when no task is
// selected.
func (s *Stopwatch) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return ErrRunning
	}
	if s.saving {
		return ErrSaving
	}
	if s.selected == "" {
		return ErrNoTaskSelected
	}

	s.ticking = startTicking(s.newTicker(s.interval), s.tick)
	s.state = Running
	return nil
}

// tick is the only mutator of elapsed while running.
func (s *Stopwatch) tick() {
	s.mu.Lock()
	s.elapsed++
	elapsed := s.elapsed
	s.mu.Unlock()

	if s.onTick != nil {
		s.onTick(elapsed)
	}
}

// Stop cancels the tick and saves the elapsed seconds to the selected
// task. With nothing elapsed it makes no call. On success elapsed drops
// back to zero; on failure the seconds are kept so Stop's save can be
// retried with Save.
func (s *Stopwatch) Stop(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	if s.state != Running {
		s.mu.Unlock()
		return model.Task{}, ErrNotRunning
	}
	h := s.ticking
	s.ticking = nil
	s.state = StoppedUnsaved
	s.saving = true
	s.mu.Unlock()

	h.Cancel()

	return s.save(ctx)
}

// Save persists unsaved seconds of a stopped stopwatch. Only one save
// runs at a time; a second call while one is in flight gets ErrSaving.
func (s *Stopwatch) Save(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	if s.state == Running {
		s.mu.Unlock()
		return model.Task{}, ErrRunning
	}
	if s.saving {
		s.mu.Unlock()
		return model.Task{}, ErrSaving
	}
	s.saving = true
	s.mu.Unlock()

	return s.save(ctx)
}

// save runs with saving set and clears it when done. Select, Start and
// Reset are refused meanwhile, so elapsed and selected cannot change
// under it.
func (s *Stopwatch) save(ctx context.Context) (model.Task, error) {
	s.mu.Lock()
	id, seconds := s.selected, s.elapsed
	if seconds == 0 || id == "" {
		s.state = Idle
		s.saving = false
		s.mu.Unlock()
		return model.Task{}, nil
	}
	s.mu.Unlock()

	task, err := s.saver.AddTime(ctx, id, seconds)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		log.Printf("stopwatch: saving %ds to task %s: %v", seconds, id, err)
		return model.Task{}, err
	}
	s.elapsed = 0
	s.state = Idle
	s.mu.Unlock()

	if s.onSaved != nil {
		s.onSaved(task, seconds)
	}
	return task, nil
}

// Reset discards unsaved seconds.
func (s *Stopwatch) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return ErrRunning
	}
	if s.saving {
		return ErrSaving
	}
	s.elapsed = 0
	s.state = Idle
	return nil
}

// Close releases the tick goroutine without saving. It is safe to call
// in any state and more than once.
func (s *Stopwatch) Close() {
	s.mu.Lock()
	h := s.ticking
	s.ticking = nil
	if s.state == Running {
		s.state = StoppedUnsaved
	}
	s.mu.Unlock()

	if h != nil {
		h.Cancel()
	}
}
