package scale

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestLog_Endpoints(t *testing.T) {
	for _, k := range []float64{GaugeMax, HistogramMax} {
		l := Log{Ceiling: k}
		if got := l.Scale(1); math.Abs(got-(1+(k-1)*math.Log10(1.1)/math.Log10(11))) > epsilon {
			t.Errorf("K=%v: Scale(1) = %v", k, got)
		}
		if got := l.Scale(1); got < 1 || got >= k*0.05 {
			t.Errorf("K=%v: Scale(1) = %v, want close to the floor", k, got)
		}
		if got := l.Scale(100); math.Abs(got-k) > epsilon {
			t.Errorf("K=%v: Scale(100) = %v, want %v", k, got, k)
		}
	}
}

func TestLog_Clamps(t *testing.T) {
	l := Log{Ceiling: GaugeMax}
	if l.Scale(-20) != l.Scale(1) {
		t.Errorf("values below 1 should clamp to 1")
	}
	if l.Scale(0) != l.Scale(1) {
		t.Errorf("zero should clamp to 1")
	}
	if l.Scale(250) != l.Scale(100) {
		t.Errorf("values above 100 should clamp to 100")
	}
	if l.Scale(math.NaN()) != l.Scale(1) {
		t.Errorf("NaN should clamp to the floor")
	}
}

func TestLog_Monotonic(t *testing.T) {
	l := Log{Ceiling: HistogramMax}
	prev := l.Scale(1)
	for v := 1.0; v <= 100; v += 0.5 {
		got := l.Scale(v)
		if got < prev {
			t.Fatalf("Scale(%v) = %v < previous %v", v, got, prev)
		}
		prev = got
	}
}

func TestLog_FivePercentGauge(t *testing.T) {
	want := 1 + 149*math.Log10(1+0.5)/math.Log10(11)
	got := Log{Ceiling: GaugeMax}.Scale(5)
	if math.Abs(got-want) > epsilon {
		t.Errorf("Scale(5) = %v, want %v", got, want)
	}
	if math.Abs(got-26.3) > 2 {
		t.Errorf("Scale(5) = %v, expected roughly a sixth of the range", got)
	}
}

func TestTiered(t *testing.T) {
	tr := Tiered{Clamp: DefaultClamp}
	tests := []struct {
		value float64
		want  float64
	}{
		{0, 1},
		{0.1, 1},
		{5, 30},
		{9.5, 57},
		{10, 50},
		{19, 95},
		{20, 80},
		{39, 156},
		{40, 120},
		{59, 177},
		{60, 150},
		{79, 197.5},
		{80, 160},
		{100, 200},
		{150, 200},
	}
	for _, tt := range tests {
		if got := tr.Scale(tt.value); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Scale(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestTiered_CustomClamp(t *testing.T) {
	tr := Tiered{Clamp: 100}
	if got := tr.Scale(39); got != 100 {
		t.Errorf("Scale(39) = %v, want clamp 100", got)
	}
	if tr.Max() != 100 {
		t.Errorf("Max() = %v", tr.Max())
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"log": ModeLog, " LOG ": ModeLog, "Linear": ModeLinear} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMode("cubic"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFor(t *testing.T) {
	if s, ok := For(ModeLog, GaugeMax, 0).(Log); !ok || s.Ceiling != GaugeMax {
		t.Errorf("For(log) = %#v", For(ModeLog, GaugeMax, 0))
	}
	if s, ok := For(ModeLinear, 0, 0).(Tiered); !ok || s.Clamp != DefaultClamp {
		t.Errorf("For(linear) = %#v", For(ModeLinear, 0, 0))
	}
	if s := For(ModeLog, 0, 0); s.Max() != HistogramMax {
		t.Errorf("invalid ceiling should fall back to %v, got %v", HistogramMax, s.Max())
	}
}
