package refresh

import (
	"errors"
	"sync"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/transparency/collectors"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/tier"
)

// fakeTicker is driven by the test through fire.
type fakeTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	resets  []time.Duration
	stopped bool
}

func newFakeTicker() *fakeTicker {
	return &fakeTicker{ch: make(chan time.Time)}
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Reset(d time.Duration) {
	f.mu.Lock()
	f.resets = append(f.resets, d)
	f.mu.Unlock()
}

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) fire() { f.ch <- time.Now() }

func (f *fakeTicker) resetCalls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.resets...)
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

// scriptSampler returns values and errors in order, repeating the last.
type scriptSampler struct {
	mu    sync.Mutex
	steps []step
	calls int
}

type step struct {
	v   float64
	err error
}

func (s *scriptSampler) Name() string { return "script" }

func (s *scriptSampler) Sample() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.steps[min(s.calls, len(s.steps)-1)]
	s.calls++
	return st.v, st.err
}

func values(vs ...float64) *scriptSampler {
	s := &scriptSampler{}
	for _, v := range vs {
		s.steps = append(s.steps, step{v: v})
	}
	return s
}

// harness wires a loop to a fake ticker and an update channel.
type harness struct {
	loop    *Loop
	ticker  *fakeTicker
	updates chan Update
	created chan time.Duration
}

func newHarness(t *testing.T, sampler collectors.Sampler, opts Options) *harness {
	t.Helper()
	h := &harness{
		ticker:  newFakeTicker(),
		updates: make(chan Update, 16),
		created: make(chan time.Duration, 1),
	}
	opts.Sampler = sampler
	opts.Consumer = ConsumerFunc(func(u Update) { h.updates <- u })
	h.loop = New(opts)
	h.loop.newTicker = func(d time.Duration) Ticker {
		h.created <- d
		return h.ticker
	}
	t.Cleanup(h.loop.Shutdown)
	return h
}

func (h *harness) next(t *testing.T) Update {
	t.Helper()
	h.ticker.fire()
	select {
	case u := <-h.updates:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return Update{}
	}
}

func TestLoop_TickPipeline(t *testing.T) {
	h := newHarness(t, values(50), Options{
		Interval: time.Second,
		Settings: Settings{Scaler: scale.Log{Ceiling: 150}, Opacity: 0.65},
	})
	if err := h.loop.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := <-h.created; got != time.Second {
		t.Errorf("ticker period = %v, want 1s", got)
	}

	u := h.next(t)
	if u.Loading || u.Err != nil {
		t.Fatalf("unexpected status update: %+v", u)
	}
	if u.Raw != 50 || u.Tier != tier.Tier4 || !u.Appended {
		t.Errorf("update = %+v", u)
	}
	if want := (scale.Log{Ceiling: 150}).Scale(50); u.Magnitude != want {
		t.Errorf("Magnitude = %f, want %f", u.Magnitude, want)
	}
	if len(u.History) != 1 || u.History[0].Opacity != 0.65 || u.History[0].Amount != "50%" {
		t.Errorf("History = %+v", u.History)
	}
}

func TestLoop_DuplicateSuppression(t *testing.T) {
	h := newHarness(t, values(12, 12.7, 15, 15, 15, 8), Options{Interval: time.Second})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}

	var last Update
	appended := 0
	for range 6 {
		last = h.next(t)
		if last.Appended {
			appended++
		}
	}
	if appended != 3 {
		t.Errorf("appended = %d, want 3", appended)
	}
	got := make([]float64, 0, len(last.History))
	for _, s := range last.History {
		got = append(got, s.Raw)
	}
	want := []float64{8, 15, 12}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("history[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if s := h.loop.Stats(); s.Ticks != 6 || s.Appended != 3 {
		t.Errorf("stats = %+v", s)
	}
}

func TestLoop_NotReadyPublishesLoading(t *testing.T) {
	s := &scriptSampler{steps: []step{{err: collectors.ErrNotReady}, {v: 30}}}
	h := newHarness(t, s, Options{Interval: time.Second})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}

	u := h.next(t)
	if !u.Loading || u.Err != nil || u.Raw != 0 || len(u.History) != 0 {
		t.Errorf("loading update = %+v", u)
	}
	u = h.next(t)
	if u.Loading || u.Raw != 30 {
		t.Errorf("ready update = %+v", u)
	}
	if st := h.loop.Stats(); st.Loading != 1 || st.Failures != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestLoop_FailureSkipsDisplayUpdate(t *testing.T) {
	failure := errors.New("pdh: invalid data")
	s := &scriptSampler{steps: []step{{v: 40}, {err: failure}, {v: 60}}}
	h := newHarness(t, s, Options{Interval: time.Second})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}

	h.next(t)
	u := h.next(t)
	if !errors.Is(u.Err, failure) {
		t.Fatalf("Err = %v, want %v", u.Err, failure)
	}
	if u.Appended || u.Raw != 0 || len(u.History) != 1 {
		t.Errorf("failure update = %+v", u)
	}
	if st := h.loop.Stats(); st.Failures != 1 || !errors.Is(st.LastError, failure) {
		t.Errorf("stats = %+v", st)
	}

	u = h.next(t)
	if u.Err != nil || u.Raw != 60 || len(u.History) != 2 {
		t.Errorf("recovered update = %+v", u)
	}
	if st := h.loop.Stats(); st.LastError != nil {
		t.Errorf("LastError = %v after recovery", st.LastError)
	}
}

func TestLoop_SetIntervalRearmsRunningTicker(t *testing.T) {
	h := newHarness(t, values(10, 20, 30), Options{Interval: time.Second})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}
	<-h.created

	h.next(t)
	if err := h.loop.SetInterval(500 * time.Millisecond); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(h.ticker.resetCalls()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := h.ticker.resetCalls(); len(got) != 1 || got[0] != 500*time.Millisecond {
		t.Fatalf("Reset calls = %v, want [500ms]", got)
	}
	if h.loop.Interval() != 500*time.Millisecond {
		t.Errorf("Interval() = %v", h.loop.Interval())
	}

	u := h.next(t)
	if len(u.History) != 2 {
		t.Errorf("history len = %d after re-arm, want 2", len(u.History))
	}
}

func TestLoop_SetIntervalStartsStoppedLoop(t *testing.T) {
	h := newHarness(t, values(10), Options{Interval: time.Second})
	if h.loop.State() != Stopped {
		t.Fatalf("State = %v, want stopped", h.loop.State())
	}
	if err := h.loop.SetInterval(750 * time.Millisecond); err != nil {
		t.Fatalf("SetInterval: %v", err)
	}
	if got := <-h.created; got != 750*time.Millisecond {
		t.Errorf("ticker period = %v, want 750ms", got)
	}
	if h.loop.State() != Running {
		t.Errorf("State = %v, want running", h.loop.State())
	}
}

func TestLoop_InvalidIntervalFallsBack(t *testing.T) {
	l := New(Options{Sampler: values(1), Interval: -5})
	if l.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", l.Interval(), DefaultInterval)
	}
}

func TestLoop_ApplySettingsAffectsNewSamplesOnly(t *testing.T) {
	h := newHarness(t, values(50, 60), Options{
		Interval: time.Second,
		Settings: Settings{Scaler: scale.Log{Ceiling: 150}, Opacity: 0.6},
	})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}

	first := h.next(t)
	h.loop.ApplySettings(Settings{Scaler: scale.Tiered{Clamp: 200}, Opacity: 0.9})
	second := h.next(t)

	if second.Magnitude != 150 || second.Opacity != 0.9 {
		t.Errorf("second = %+v, want tiered magnitude 150 at opacity 0.9", second)
	}
	older := second.History[1]
	if older.Magnitude != first.Magnitude || older.Opacity != 0.6 {
		t.Errorf("older sample rewritten: %+v", older)
	}
}

func TestLoop_ApplySettingsDefaults(t *testing.T) {
	l := New(Options{Sampler: values(1)})
	l.ApplySettings(Settings{Opacity: 3})
	s := l.Settings()
	if s.Opacity != DefaultOpacity {
		t.Errorf("Opacity = %v, want %v", s.Opacity, DefaultOpacity)
	}
	if s.Scaler == nil || s.Scaler.Max() != scale.GaugeMax {
		t.Errorf("Scaler = %#v, want log K=%v", s.Scaler, scale.GaugeMax)
	}
}

func TestLoop_Shutdown(t *testing.T) {
	h := newHarness(t, values(10), Options{Interval: time.Second})
	if err := h.loop.Start(); err != nil {
		t.Fatal(err)
	}
	<-h.created
	h.next(t)

	h.loop.Shutdown()
	if !h.ticker.isStopped() {
		t.Error("ticker not released after Shutdown")
	}
	if h.loop.State() != Stopped {
		t.Errorf("State = %v, want stopped", h.loop.State())
	}
	if err := h.loop.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start after Shutdown = %v, want ErrClosed", err)
	}
	if err := h.loop.SetInterval(time.Second); !errors.Is(err, ErrClosed) {
		t.Errorf("SetInterval after Shutdown = %v, want ErrClosed", err)
	}

	// Idempotent.
	h.loop.Shutdown()
}

func TestLoop_ShutdownBeforeStart(t *testing.T) {
	l := New(Options{Sampler: values(1)})
	l.Shutdown()
	if err := l.Start(); !errors.Is(err, ErrClosed) {
		t.Errorf("Start = %v, want ErrClosed", err)
	}
}

func TestLoop_StartWithoutSampler(t *testing.T) {
	l := New(Options{})
	if err := l.Start(); err == nil {
		t.Error("Start without sampler should fail")
	}
}

func TestFanout(t *testing.T) {
	var got []string
	f := Fanout{
		ConsumerFunc(func(Update) { got = append(got, "a") }),
		nil,
		ConsumerFunc(func(Update) { got = append(got, "b") }),
	}
	f.Consume(Update{})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("fanout order = %v", got)
	}
}

func TestStateString(t *testing.T) {
	if Stopped.String() != "stopped" || Running.String() != "running" {
		t.Error("unexpected state names")
	}
	if State(9).String() != "state(9)" {
		t.Errorf("State(9) = %q", State(9).String())
	}
}
