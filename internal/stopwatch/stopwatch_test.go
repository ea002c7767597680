package stopwatch

import (
	"context"
	"errors"
	gosync "sync"
	"testing"
	"time"

	"github.com/nhle/task-tracker/internal/model"
)

// manualTicker is a Ticker driven by the test.
type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { close(m.stopped) }

// fire delivers n ticks; each send returns once the goroutine took it.
func (m *manualTicker) fire(n int) {
	for i := 0; i < n; i++ {
		m.ch <- time.Now()
	}
}

// fakeSaver records AddTime calls and adds to a running total.
type fakeSaver struct {
	totals map[string]int
	calls  int
	err    error
}

func (f *fakeSaver) AddTime(_ context.Context, id string, seconds int) (model.Task, error) {
	f.calls++
	if f.err != nil {
		return model.Task{}, f.err
	}
	f.totals[id] += seconds
	return model.Task{ID: id, TimeSpent: model.Seconds(f.totals[id])}, nil
}

func newTestStopwatch(saver TimeSaver, opts ...Option) (*Stopwatch, *[]*manualTicker) {
	var tickers []*manualTicker
	opts = append([]Option{WithTicker(func(time.Duration) Ticker {
		mt := newManualTicker()
		tickers = append(tickers, mt)
		return mt
	})}, opts...)
	return New(saver, opts...), &tickers
}

func TestStartWithoutSelection(t *testing.T) {
	sw, tickers := newTestStopwatch(&fakeSaver{totals: map[string]int{}})

	if err := sw.Start(); !errors.Is(err, ErrNoTaskSelected) {
		t.Fatalf("Start: err = %v, want ErrNoTaskSelected", err)
	}
	if sw.Running() {
		t.Error("stopwatch must not run")
	}
	if len(*tickers) != 0 {
		t.Error("no tick source should be created")
	}
}

func TestStopSavesElapsedSeconds(t *testing.T) {
	saver := &fakeSaver{totals: map[string]int{"t1": 100}}
	var saved []int
	sw, tickers := newTestStopwatch(saver, WithOnSaved(func(_ model.Task, seconds int) {
		saved = append(saved, seconds)
	}))

	if err := sw.Select("t1"); err != nil {
		t.Fatal(err)
	}
	if err := sw.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	(*tickers)[0].fire(5)

	task, err := sw.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if task.TimeSpent != 105 {
		t.Errorf("TimeSpent = %d, want 105", task.TimeSpent)
	}
	if sw.Elapsed() != 0 {
		t.Errorf("Elapsed = %d, want 0", sw.Elapsed())
	}
	if sw.State() != Idle {
		t.Errorf("State = %v, want idle", sw.State())
	}
	if len(saved) != 1 || saved[0] != 5 {
		t.Errorf("onSaved calls = %v", saved)
	}

	select {
	case <-(*tickers)[0].stopped:
	default:
		t.Error("tick source should be stopped")
	}
}

func TestStopWithZeroElapsedMakesNoCall(t *testing.T) {
	saver := &fakeSaver{totals: map[string]int{}}
	sw, _ := newTestStopwatch(saver)

	_ = sw.Select("t1")
	if err := sw.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := sw.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if saver.calls != 0 {
		t.Errorf("saver called %d times", saver.calls)
	}
	if sw.State() != Idle {
		t.Errorf("State = %v", sw.State())
	}
}

func TestFailedSaveKeepsSeconds(t *testing.T) {
	saver := &fakeSaver{totals: map[string]int{}, err: errors.New("Failed to update task time")}
	sw, tickers := newTestStopwatch(saver)

	_ = sw.Select("t1")
	_ = sw.Start()
	(*tickers)[0].fire(3)

	if _, err := sw.Stop(context.Background()); err == nil {
		t.Fatal("expected save error")
	}
	if sw.Elapsed() != 3 {
		t.Errorf("Elapsed = %d, want 3", sw.Elapsed())
	}
	if sw.State() != StoppedUnsaved {
		t.Errorf("State = %v, want stopped (unsaved)", sw.State())
	}

	saver.err = nil
	task, err := sw.Save(context.Background())
	if err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if task.TimeSpent != 3 || sw.Elapsed() != 0 || sw.State() != Idle {
		t.Errorf("after retry: task=%+v elapsed=%d state=%v", task, sw.Elapsed(), sw.State())
	}
}

func TestResumeAfterFailedSaveAccumulates(t *testing.T) {
	saver := &fakeSaver{totals: map[string]int{}, err: errors.New("down")}
	sw, tickers := newTestStopwatch(saver)

	_ = sw.Select("t1")
	_ = sw.Start()
	(*tickers)[0].fire(2)
	_, _ = sw.Stop(context.Background())

	saver.err = nil
	if err := sw.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	(*tickers)[1].fire(4)
	task, err := sw.Stop(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if task.TimeSpent != 6 {
		t.Errorf("TimeSpent = %d, want 6", task.TimeSpent)
	}
}

func TestSelectAndResetRules(t *testing.T) {
	sw, tickers := newTestStopwatch(&fakeSaver{totals: map[string]int{}})

	_ = sw.Select("t1")
	_ = sw.Start()
	(*tickers)[0].fire(2)

	if err := sw.Select("t2"); !errors.Is(err, ErrRunning) {
		t.Errorf("Select while running: err = %v", err)
	}
	if err := sw.Reset(); !errors.Is(err, ErrRunning) {
		t.Errorf("Reset while running: err = %v", err)
	}
	if err := sw.Start(); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start: err = %v", err)
	}
	if sw.SelectedTaskID() != "t1" || sw.Elapsed() != 2 {
		t.Errorf("selection=%q elapsed=%d", sw.SelectedTaskID(), sw.Elapsed())
	}

	sw.Close()
	if sw.Running() {
		t.Fatal("Close should stop the ticking")
	}
	if err := sw.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sw.Elapsed() != 0 {
		t.Errorf("Elapsed after reset = %d", sw.Elapsed())
	}

	if err := sw.Select("t2"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sw.SelectedTaskID() != "t2" || sw.Elapsed() != 0 {
		t.Errorf("selection=%q elapsed=%d", sw.SelectedTaskID(), sw.Elapsed())
	}
}

func TestCloseReleasesTicker(t *testing.T) {
	sw, tickers := newTestStopwatch(&fakeSaver{totals: map[string]int{}})
	_ = sw.Select("t1")
	_ = sw.Start()

	sw.Close()
	sw.Close()

	select {
	case <-(*tickers)[0].stopped:
	case <-time.After(time.Second):
		t.Fatal("tick source not released on Close")
	}
	if _, err := sw.Stop(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop after Close: err = %v", err)
	}
}

func TestOnTickReportsElapsed(t *testing.T) {
	got := make(chan int, 3)
	sw, tickers := newTestStopwatch(&fakeSaver{totals: map[string]int{}}, WithOnTick(func(e int) { got <- e }))
	_ = sw.Select("t1")
	_ = sw.Start()
	(*tickers)[0].fire(3)
	sw.Close()

	for want := 1; want <= 3; want++ {
		if e := <-got; e != want {
			t.Errorf("tick %d reported %d", want, e)
		}
	}
}

func TestRealTickerCounts(t *testing.T) {
	sw := New(&fakeSaver{totals: map[string]int{}}, WithInterval(5*time.Millisecond))
	_ = sw.Select("t1")
	if err := sw.Start(); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for sw.Elapsed() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	sw.Close()

	if sw.Elapsed() < 3 {
		t.Errorf("Elapsed = %d, want at least 3", sw.Elapsed())
	}
}

// blockingSaver holds every AddTime until release is closed.
type blockingSaver struct {
	started chan struct{}
	release chan struct{}

	mu    gosync.Mutex
	calls []int
	total int
}

func newBlockingSaver() *blockingSaver {
	return &blockingSaver{started: make(chan struct{}, 4), release: make(chan struct{})}
}

func (b *blockingSaver) AddTime(_ context.Context, id string, seconds int) (model.Task, error) {
	b.mu.Lock()
	b.calls = append(b.calls, seconds)
	b.mu.Unlock()

	b.started <- struct{}{}
	<-b.release

	b.mu.Lock()
	defer b.mu.Unlock()
	b.total += seconds
	return model.Task{ID: id, TimeSpent: model.Seconds(b.total)}, nil
}

// stopInBackground stops sw and waits until the save reached the saver.
func stopInBackground(t *testing.T, sw *Stopwatch, saver *blockingSaver) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := sw.Stop(context.Background())
		done <- err
	}()
	select {
	case <-saver.started:
	case <-time.After(time.Second):
		t.Fatal("save never reached the saver")
	}
	return done
}

func TestSaveInFlightRejectsSecondSave(t *testing.T) {
	saver := newBlockingSaver()
	sw, tickers := newTestStopwatch(saver)

	_ = sw.Select("t1")
	_ = sw.Start()
	(*tickers)[0].fire(5)
	done := stopInBackground(t, sw, saver)

	if !sw.Saving() {
		t.Error("Saving should report the in-flight save")
	}
	if _, err := sw.Save(context.Background()); !errors.Is(err, ErrSaving) {
		t.Errorf("Save while saving: err = %v, want ErrSaving", err)
	}
	if err := sw.Reset(); !errors.Is(err, ErrSaving) {
		t.Errorf("Reset while saving: err = %v, want ErrSaving", err)
	}

	close(saver.release)
	if err := <-done; err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(saver.calls) != 1 || saver.total != 5 {
		t.Errorf("AddTime calls = %v, total = %d, want one call of 5", saver.calls, saver.total)
	}
	if sw.Saving() || sw.State() != Idle || sw.Elapsed() != 0 {
		t.Errorf("after save: saving=%v state=%v elapsed=%d", sw.Saving(), sw.State(), sw.Elapsed())
	}
}

func TestSaveInFlightKeepsNextTaskUntouched(t *testing.T) {
	saver := newBlockingSaver()
	sw, tickers := newTestStopwatch(saver)

	_ = sw.Select("a")
	_ = sw.Start()
	(*tickers)[0].fire(5)
	done := stopInBackground(t, sw, saver)

	if err := sw.Select("b"); !errors.Is(err, ErrSaving) {
		t.Errorf("Select while saving: err = %v, want ErrSaving", err)
	}
	if err := sw.Start(); !errors.Is(err, ErrSaving) {
		t.Errorf("Start while saving: err = %v, want ErrSaving", err)
	}
	if len(*tickers) != 1 {
		t.Error("no new tick source may start while saving")
	}

	close(saver.release)
	if err := <-done; err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if err := sw.Select("b"); err != nil {
		t.Fatalf("Select after save: %v", err)
	}
	if err := sw.Start(); err != nil {
		t.Fatalf("Start after save: %v", err)
	}
	(*tickers)[1].fire(3)
	sw.Close()
	if sw.SelectedTaskID() != "b" || sw.Elapsed() != 3 {
		t.Errorf("selection=%q elapsed=%d, want b with 3", sw.SelectedTaskID(), sw.Elapsed())
	}
}
