package cpu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gitlab.com/tinyland/lab/transparency/collectors"
)

// ProcStatSampler computes CPU utilization from the aggregate "cpu" line of
// /proc/stat as 1 - Δidle/Δtotal between consecutive reads.
type ProcStatSampler struct {
	prevIdle  uint64
	prevTotal uint64
	seeded    bool

	// Overridable file opener for testing.
	openProcStat func() (io.ReadCloser, error)
}

// OpenProcStat seeds the counters from /proc/stat.
func OpenProcStat(ctx context.Context) (collectors.Sampler, error) {
	s := newProcStatSampler(func() (io.ReadCloser, error) {
		return os.Open("/proc/stat")
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

func newProcStatSampler(open func() (io.ReadCloser, error)) *ProcStatSampler {
	return &ProcStatSampler{openProcStat: open}
}

// Name returns the backend identifier.
func (s *ProcStatSampler) Name() string {
	return NameProcStat
}

func (s *ProcStatSampler) seed() error {
	idle, total, err := s.readCounters()
	if err != nil {
		return err
	}
	s.prevIdle, s.prevTotal, s.seeded = idle, total, true
	return nil
}

// Sample returns the utilization since the previous call. When the counters
// move backwards (suspend/resume, counter reset) the baseline is reseeded
// and ErrSamplingUnavailable is returned for this call.
func (s *ProcStatSampler) Sample() (float64, error) {
	if !s.seeded {
		if err := s.seed(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("cpu: /proc/stat baseline reseeded: %w", collectors.ErrSamplingUnavailable)
	}

	idle, total, err := s.readCounters()
	if err != nil {
		return 0, err
	}

	if total < s.prevTotal || idle < s.prevIdle {
		s.prevIdle, s.prevTotal = idle, total
		return 0, fmt.Errorf("cpu: /proc/stat counters went backwards: %w", collectors.ErrSamplingUnavailable)
	}

	deltaTotal := total - s.prevTotal
	deltaIdle := idle - s.prevIdle
	s.prevIdle = idle
	s.prevTotal = total

	if deltaTotal == 0 {
		return 0, nil
	}

	pct := (1.0 - float64(deltaIdle)/float64(deltaTotal)) * 100.0
	if pct < 0 {
		pct = 0
	}
	return pct, nil
}

// readCounters parses the idle and total jiffies from the aggregate line.
// Fields: cpu user nice system idle iowait irq softirq steal ...
func (s *ProcStatSampler) readCounters() (idle, total uint64, err error) {
	f, err := s.openProcStat()
	if err != nil {
		return 0, 0, fmt.Errorf("cpu: open /proc/stat: %v: %w", err, collectors.ErrSamplingUnavailable)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, 0, fmt.Errorf("cpu: /proc/stat cpu line too short: %w", collectors.ErrSamplingUnavailable)
		}

		for i := 1; i < len(fields); i++ {
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("cpu: parse /proc/stat field %d: %v: %w", i, err, collectors.ErrSamplingUnavailable)
			}
			total += val
			if i == 4 { // idle field
				idle = val
			}
		}
		return idle, total, nil
	}

	return 0, 0, fmt.Errorf("cpu: cpu line not found in /proc/stat: %w", collectors.ErrSamplingUnavailable)
}

// Compile-time interface compliance check.
var _ collectors.Sampler = (*ProcStatSampler)(nil)
