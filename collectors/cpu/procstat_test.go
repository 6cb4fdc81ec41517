package cpu

import (
	"context"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/transparency/collectors"
)

// stringReadCloser wraps a strings.Reader to implement io.ReadCloser.
type stringReadCloser struct {
	*strings.Reader
}

func (s *stringReadCloser) Close() error { return nil }

func newReadCloser(content string) io.ReadCloser {
	return &stringReadCloser{strings.NewReader(content)}
}

// feed returns an opener that yields each content string in turn.
func feed(contents ...string) func() (io.ReadCloser, error) {
	i := 0
	return func() (io.ReadCloser, error) {
		c := contents[i]
		if i < len(contents)-1 {
			i++
		}
		return newReadCloser(c), nil
	}
}

func TestProcStat_Delta(t *testing.T) {
	s := newProcStatSampler(feed(
		"cpu  100 0 50 800 10 5 3 0 0 0\n",
		"cpu  150 0 75 850 20 10 6 0 0 0\n",
	))
	if err := s.seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	pct, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	// Delta total = 1111 - 968 = 143, delta idle = 50.
	want := (1 - 50.0/143.0) * 100
	if math.Abs(pct-want) > 1e-9 {
		t.Errorf("Sample() = %f, want %f", pct, want)
	}
}

func TestProcStat_NoProgress(t *testing.T) {
	line := "cpu  100 0 50 800 10 5 3 0 0 0\n"
	s := newProcStatSampler(feed(line, line))
	if err := s.seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	pct, err := s.Sample()
	if err != nil || pct != 0 {
		t.Errorf("Sample() = %v, %v; want 0, nil", pct, err)
	}
}

func TestProcStat_CounterReset(t *testing.T) {
	s := newProcStatSampler(feed(
		"cpu  5000 0 500 9000 10 5 3 0 0 0\n",
		"cpu  100 0 50 800 10 5 3 0 0 0\n",
		"cpu  150 0 75 850 20 10 6 0 0 0\n",
	))
	if err := s.seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := s.Sample(); !errors.Is(err, collectors.ErrSamplingUnavailable) {
		t.Fatalf("err = %v, want ErrSamplingUnavailable after counter reset", err)
	}

	pct, err := s.Sample()
	if err != nil {
		t.Fatalf("Sample after reseed: %v", err)
	}
	if pct < 60 || pct > 70 {
		t.Errorf("Sample() = %f, want ~65%%", pct)
	}
}

func TestProcStat_Malformed(t *testing.T) {
	tests := map[string]string{
		"missing cpu line": "intr 12345\nctxt 999\n",
		"short line":       "cpu  1 2 3\n",
		"bad field":        "cpu  1 2 x 4 5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			s := newProcStatSampler(feed(content))
			err := s.seed()
			if !errors.Is(err, collectors.ErrSamplingUnavailable) {
				t.Errorf("err = %v, want ErrSamplingUnavailable", err)
			}
		})
	}
}

func TestProcStat_UnseededSampleReseeds(t *testing.T) {
	s := newProcStatSampler(feed(
		"cpu  100 0 50 800 10 5 3 0 0 0\n",
		"cpu  150 0 75 850 20 10 6 0 0 0\n",
	))
	if _, err := s.Sample(); !errors.Is(err, collectors.ErrSamplingUnavailable) {
		t.Fatalf("first unseeded Sample err = %v", err)
	}
	if _, err := s.Sample(); err != nil {
		t.Errorf("second Sample: %v", err)
	}
}

func TestOpenProcStat_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := OpenProcStat(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestGopsutilSampler(t *testing.T) {
	s := &GopsutilSampler{percent: func(context.Context) ([]float64, error) {
		return []float64{12.5}, nil
	}}
	v, err := s.Sample()
	if err != nil || v != 12.5 {
		t.Errorf("Sample() = %v, %v", v, err)
	}

	s.percent = func(context.Context) ([]float64, error) { return nil, errors.New("pdh: no data") }
	if _, err := s.Sample(); !errors.Is(err, collectors.ErrSamplingUnavailable) {
		t.Errorf("err = %v, want ErrSamplingUnavailable", err)
	}

	s.percent = func(context.Context) ([]float64, error) { return []float64{}, nil }
	if _, err := s.Sample(); !errors.Is(err, collectors.ErrSamplingUnavailable) {
		t.Errorf("empty totals err = %v, want ErrSamplingUnavailable", err)
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{NameAuto, NameGopsutil, NameProcStat} {
		if _, err := r.Get(name); err != nil {
			t.Errorf("Get(%q): %v", name, err)
		}
	}
}
