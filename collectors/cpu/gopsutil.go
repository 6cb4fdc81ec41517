package cpu

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"

	"gitlab.com/tinyland/lab/transparency/collectors"
)

// GopsutilSampler reads total CPU utilization through gopsutil. Each call
// reports the utilization since the previous one without blocking.
type GopsutilSampler struct {
	// Model is the CPU model name reported at acquisition, if known.
	Model string
	// Logical is the logical CPU count reported at acquisition.
	Logical int

	percent func(ctx context.Context) ([]float64, error)
}

// OpenGopsutil acquires the counters: it reads the CPU description and
// primes the delta so the first real Sample has a baseline. On Windows the
// description query goes through WMI and can take several seconds.
func OpenGopsutil(ctx context.Context) (collectors.Sampler, error) {
	s := &GopsutilSampler{percent: nonBlockingPercent}

	infos, err := cpu.InfoWithContext(ctx)
	if err == nil && len(infos) > 0 {
		s.Model = infos[0].ModelName
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		s.Logical = n
	}

	if _, err := s.percent(ctx); err != nil {
		return nil, fmt.Errorf("cpu: prime gopsutil counters: %w", err)
	}
	return s, nil
}

func nonBlockingPercent(ctx context.Context) ([]float64, error) {
	return cpu.PercentWithContext(ctx, 0, false)
}

// Name returns the backend identifier.
func (s *GopsutilSampler) Name() string {
	return NameGopsutil
}

// Sample returns the utilization percentage since the previous call.
func (s *GopsutilSampler) Sample() (float64, error) {
	values, err := s.percent(context.Background())
	if err != nil {
		return 0, fmt.Errorf("cpu: gopsutil percent: %v: %w", err, collectors.ErrSamplingUnavailable)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("cpu: gopsutil returned no totals: %w", collectors.ErrSamplingUnavailable)
	}
	return values[0], nil
}

// Compile-time interface compliance check.
var _ collectors.Sampler = (*GopsutilSampler)(nil)
