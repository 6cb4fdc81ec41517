// Package refresh drives the periodic sample, scale, record and notify
// sequence.
//
// One goroutine owns the ticker and the history buffer. Every tick runs to
// completion before the next is scheduled, so buffer access needs no lock.
package refresh

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"gitlab.com/tinyland/lab/transparency/collectors"
	"gitlab.com/tinyland/lab/transparency/history"
	"gitlab.com/tinyland/lab/transparency/scale"
	"gitlab.com/tinyland/lab/transparency/tier"
)

const (
	// DefaultInterval is used when no valid interval is configured.
	DefaultInterval = 2000 * time.Millisecond

	// DefaultOpacity is copied into samples when Settings carries none.
	DefaultOpacity = 0.6

	// DefaultStopTimeout bounds how long Shutdown waits for the loop
	// goroutine to release the ticker.
	DefaultStopTimeout = 5 * time.Second

	// warnEvery throttles repeated sampling warnings: the first failure is
	// logged, then one in every warnEvery, and at most one per warnInterval.
	warnEvery    = 30
	warnInterval = time.Minute
)

// ErrClosed is returned by Start after Shutdown.
var ErrClosed = errors.New("refresh: loop is shut down")

// State is the loop's lifecycle state.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Settings are the per-sample parameters the configuration provider may
// change at runtime. They only affect samples taken after the change.
type Settings struct {
	Scaler  scale.Scaler
	Opacity float64
}

// Options configure a Loop.
type Options struct {
	Sampler  collectors.Sampler
	Buffer   *history.Buffer
	Consumer Consumer
	Logger   *slog.Logger

	// Interval is the initial tick period. Values <= 0 fall back to
	// DefaultInterval.
	Interval time.Duration

	Settings Settings

	// StopTimeout overrides DefaultStopTimeout.
	StopTimeout time.Duration
}

// Stats is a point-in-time view of the loop counters.
type Stats struct {
	State     State
	Interval  time.Duration
	Ticks     int64
	Appended  int64
	Failures  int64
	Loading   int64
	LastError error
	LastTick  time.Time
}

// Loop is the refresh loop.
type Loop struct {
	sampler  collectors.Sampler
	buffer   *history.Buffer
	consumer Consumer
	logger   *slog.Logger
	timeout  time.Duration

	settings atomic.Pointer[Settings]
	state    atomic.Int32
	closing  atomic.Bool
	interval atomic.Int64

	mu       sync.Mutex // guards start and shutdown transitions
	started  bool
	quit     chan struct{}
	done     chan struct{}
	rearm    chan time.Duration
	stopOnce sync.Once

	statsMu sync.Mutex
	stats   Stats

	warn rate.Sometimes

	// Overridable for testing.
	newTicker func(time.Duration) Ticker
	now       func() time.Time
}

// New builds a loop in the Stopped state.
func New(opts Options) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	buffer := opts.Buffer
	if buffer == nil {
		buffer = history.NewBuffer(history.DefaultCapacity)
	}
	consumer := opts.Consumer
	if consumer == nil {
		consumer = ConsumerFunc(func(Update) {})
	}
	timeout := opts.StopTimeout
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	l := &Loop{
		sampler:   opts.Sampler,
		buffer:    buffer,
		consumer:  consumer,
		logger:    logger,
		timeout:   timeout,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		rearm:     make(chan time.Duration, 1),
		warn:      rate.Sometimes{First: 1, Every: warnEvery, Interval: warnInterval},
		newTicker: newRealTicker,
		now:       time.Now,
	}
	l.interval.Store(int64(l.validInterval(opts.Interval)))
	l.ApplySettings(opts.Settings)
	return l
}

// State reports whether the loop goroutine is running.
func (l *Loop) State() State {
	return State(l.state.Load())
}

// Interval returns the current tick period.
func (l *Loop) Interval() time.Duration {
	return time.Duration(l.interval.Load())
}

// Start moves the loop from Stopped to Running. Starting a running loop is
// a no-op.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closing.Load() {
		return ErrClosed
	}
	if l.started {
		return nil
	}
	if l.sampler == nil {
		return errors.New("refresh: no sampler configured")
	}
	l.started = true
	l.state.Store(int32(Running))

	go l.run(l.newTicker(l.Interval()))
	return nil
}

// SetInterval changes the tick period. A running loop is re-armed so the
// next tick fires d from now; a tick already in flight completes first. A
// loop that was never started is started with d. Invalid periods fall back
// to DefaultInterval with a warning.
func (l *Loop) SetInterval(d time.Duration) error {
	d = l.validInterval(d)
	l.interval.Store(int64(d))

	if l.State() == Stopped {
		return l.Start()
	}

	// Keep only the latest pending period.
	for {
		select {
		case l.rearm <- d:
			return nil
		default:
		}
		select {
		case <-l.rearm:
		default:
		}
	}
}

// ApplySettings publishes new per-sample settings. The next tick reads them.
func (l *Loop) ApplySettings(s Settings) {
	if s.Scaler == nil {
		s.Scaler = scale.Log{Ceiling: scale.GaugeMax}
	}
	if s.Opacity <= 0 || s.Opacity > 1 {
		s.Opacity = DefaultOpacity
	}
	l.settings.Store(&s)
}

// Settings returns the settings the next tick will use.
func (l *Loop) Settings() Settings {
	return *l.settings.Load()
}

// Shutdown sets the closing flag, wakes the loop goroutine and waits for it
// to release the ticker. It is safe to call more than once.
func (l *Loop) Shutdown() {
	l.mu.Lock()
	l.closing.Store(true)
	started := l.started
	l.stopOnce.Do(func() { close(l.quit) })
	l.mu.Unlock()

	if !started {
		return
	}

	select {
	case <-l.done:
	case <-time.After(l.timeout):
		l.logger.Warn("refresh loop stop timed out", "timeout", l.timeout)
	}
}

// Stats returns a copy of the loop counters.
func (l *Loop) Stats() Stats {
	l.statsMu.Lock()
	s := l.stats
	l.statsMu.Unlock()
	s.State = l.State()
	s.Interval = l.Interval()
	return s
}

func (l *Loop) validInterval(d time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	l.logger.Warn("invalid refresh interval, using default",
		"interval", d, "default", DefaultInterval)
	return DefaultInterval
}

func (l *Loop) run(t Ticker) {
	defer close(l.done)
	defer l.state.Store(int32(Stopped))
	defer t.Stop()

	l.logger.Debug("refresh loop started", "interval", l.Interval())

	for {
		select {
		case <-l.quit:
			l.logger.Debug("refresh loop stopped")
			return
		case d := <-l.rearm:
			t.Reset(d)
			l.logger.Debug("refresh interval changed", "interval", d)
		case <-t.C():
			if l.closing.Load() {
				return
			}
			l.tick()
		}
	}
}

// tick runs one sample, scale, record and notify sequence.
func (l *Loop) tick() {
	now := l.now()
	settings := l.Settings()

	l.statsMu.Lock()
	l.stats.Ticks++
	l.stats.LastTick = now
	l.statsMu.Unlock()

	raw, err := l.sampler.Sample()
	switch {
	case errors.Is(err, collectors.ErrNotReady):
		l.statsMu.Lock()
		l.stats.Loading++
		l.statsMu.Unlock()
		l.consumer.Consume(Update{
			Time:    now,
			Tier:    tier.Tier1,
			Opacity: settings.Opacity,
			History: l.buffer.Snapshot(),
			Loading: true,
		})
		return
	case err != nil:
		l.statsMu.Lock()
		l.stats.Failures++
		l.stats.LastError = err
		l.statsMu.Unlock()
		l.warn.Do(func() {
			l.logger.Warn("cpu sample failed", "sampler", l.sampler.Name(), "error", err)
		})
		l.consumer.Consume(Update{
			Time:    now,
			History: l.buffer.Snapshot(),
			Err:     err,
		})
		return
	}

	s := history.NewSample(now, raw, settings.Scaler, settings.Opacity)
	appended := l.buffer.Add(s)

	l.statsMu.Lock()
	l.stats.LastError = nil
	if appended {
		l.stats.Appended++
	}
	l.statsMu.Unlock()

	l.consumer.Consume(Update{
		Time:      now,
		Raw:       s.Raw,
		Tier:      s.Tier,
		Magnitude: s.Magnitude,
		Opacity:   s.Opacity,
		Appended:  appended,
		History:   l.buffer.Snapshot(),
	})
}
