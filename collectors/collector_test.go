package collectors

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSampler returns queued values, then repeats its last error or value.
type fakeSampler struct {
	mu     sync.Mutex
	values []float64
	err    error
	closed atomic.Bool
}

func (f *fakeSampler) Name() string { return "fake" }

func (f *fakeSampler) Sample() (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if len(f.values) == 0 {
		return 0, nil
	}
	v := f.values[0]
	if len(f.values) > 1 {
		f.values = f.values[1:]
	}
	return v, nil
}

func (f *fakeSampler) Close() error {
	f.closed.Store(true)
	return nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	open := func(context.Context) (Sampler, error) { return &fakeSampler{}, nil }
	r.Register("procstat", open)
	r.Register("gopsutil", open)
	r.Alias("auto", "gopsutil")

	if names := r.Names(); len(names) != 2 || names[0] != "gopsutil" || names[1] != "procstat" {
		t.Errorf("Names() = %v", names)
	}
	if _, err := r.Get("auto"); err != nil {
		t.Errorf("Get(auto): %v", err)
	}
	if _, err := r.Get("wmi"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLazy_NotReadyBeforeWarmup(t *testing.T) {
	l := NewLazy(LazyConfig{
		Name: "fake",
		Open: func(context.Context) (Sampler, error) { return &fakeSampler{values: []float64{5}}, nil },
	})

	if _, err := l.Sample(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Sample before warmup err = %v, want ErrNotReady", err)
	}
	if l.Ready() {
		t.Error("Ready() before warmup")
	}
	if l.Name() != "fake" {
		t.Errorf("Name() = %q", l.Name())
	}
}

func TestLazy_WarmupPublishesSampler(t *testing.T) {
	release := make(chan struct{})
	l := NewLazy(LazyConfig{
		Name: "slow",
		Open: func(ctx context.Context) (Sampler, error) {
			<-release
			return &fakeSampler{values: []float64{37.5}}, nil
		},
	})

	l.Warmup(context.Background())

	// Acquisition is blocked: the sampler stays in its loading state.
	if _, err := l.Sample(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Sample during acquisition err = %v, want ErrNotReady", err)
	}

	close(release)
	l.Wait()

	v, err := l.Sample()
	if err != nil {
		t.Fatalf("Sample after warmup: %v", err)
	}
	if v != 37.5 {
		t.Errorf("Sample() = %v, want 37.5", v)
	}
}

func TestLazy_RetriesFailedAcquisition(t *testing.T) {
	var attempts atomic.Int32
	l := NewLazy(LazyConfig{
		Name:           "flaky",
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Open: func(context.Context) (Sampler, error) {
			if attempts.Add(1) < 3 {
				return nil, fmt.Errorf("counter category missing")
			}
			return &fakeSampler{values: []float64{1}}, nil
		},
	})

	l.Warmup(context.Background())
	l.Wait()

	if !l.Ready() {
		t.Fatal("expected sampler to be ready after retries")
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if l.LastError() != nil {
		t.Errorf("LastError() = %v after success", l.LastError())
	}
}

func TestLazy_WarmupStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLazy(LazyConfig{
		Name:           "broken",
		InitialBackoff: time.Hour,
		Open: func(context.Context) (Sampler, error) {
			return nil, errors.New("access denied")
		},
	})

	l.Warmup(ctx)
	cancel()
	l.Wait()

	if l.Ready() {
		t.Error("sampler should not be ready")
	}
	if l.LastError() == nil {
		t.Error("expected acquisition error to be recorded")
	}
}

func TestLazy_ReopensAfterConsecutiveFailures(t *testing.T) {
	first := &fakeSampler{err: fmt.Errorf("counter handle invalid: %w", ErrSamplingUnavailable)}
	second := &fakeSampler{values: []float64{64}}

	var opens atomic.Int32
	l := NewLazy(LazyConfig{
		Name:        "resume",
		ReopenAfter: 2,
		Open: func(context.Context) (Sampler, error) {
			if opens.Add(1) == 1 {
				return first, nil
			}
			return second, nil
		},
	})

	l.Warmup(context.Background())
	l.Wait()

	for i := 0; i < 2; i++ {
		if _, err := l.Sample(); !errors.Is(err, ErrSamplingUnavailable) {
			t.Fatalf("sample %d err = %v, want ErrSamplingUnavailable", i, err)
		}
	}
	if !first.closed.Load() {
		t.Error("stale sampler was not closed")
	}

	l.Wait()
	v, err := l.Sample()
	if err != nil {
		t.Fatalf("Sample after reopen: %v", err)
	}
	if v != 64 {
		t.Errorf("Sample() = %v, want 64", v)
	}
	if opens.Load() != 2 {
		t.Errorf("opens = %d, want 2", opens.Load())
	}
}

func TestLazy_OtherErrorsDoNotReopen(t *testing.T) {
	boom := errors.New("boom")
	l := NewLazy(LazyConfig{
		Name:        "odd",
		ReopenAfter: 1,
		Open:        func(context.Context) (Sampler, error) { return &fakeSampler{err: boom}, nil },
	})
	l.Warmup(context.Background())
	l.Wait()

	if _, err := l.Sample(); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !l.Ready() {
		t.Error("non-availability errors should not drop the handle")
	}
}
