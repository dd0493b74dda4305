package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// KernelTimer accumulates per-step kernel execution times. Count, total,
// min and max cover the whole run; spread and percentiles cover a rolling
// window of recent steps.
type KernelTimer struct {
	windowSize  int
	samples     []float64 // seconds
	writeIndex  int
	sampleCount int

	count int
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// NewKernelTimer creates a timer with the given rolling window size.
func NewKernelTimer(windowSize int) *KernelTimer {
	if windowSize < 1 {
		windowSize = 256
	}
	return &KernelTimer{
		windowSize: windowSize,
		samples:    make([]float64, windowSize),
	}
}

// Add records the execution time of one step.
func (k *KernelTimer) Add(d time.Duration) {
	if k.count == 0 || d < k.min {
		k.min = d
	}
	if d > k.max {
		k.max = d
	}
	k.count++
	k.total += d

	k.samples[k.writeIndex] = d.Seconds()
	k.writeIndex = (k.writeIndex + 1) % k.windowSize
	if k.sampleCount < k.windowSize {
		k.sampleCount++
	}
}

// Count returns the number of recorded steps.
func (k *KernelTimer) Count() int { return k.count }

// Total returns the summed execution time.
func (k *KernelTimer) Total() time.Duration { return k.total }

// Average returns the mean execution time, or zero before the first step.
func (k *KernelTimer) Average() time.Duration {
	if k.count == 0 {
		return 0
	}
	return k.total / time.Duration(k.count)
}

// KernelStats is a point-in-time view of a KernelTimer.
type KernelStats struct {
	Count int
	Avg   time.Duration
	Min   time.Duration
	Max   time.Duration

	// Rolling window, seconds
	WindowMean float64
	WindowStd  float64
	WindowP50  float64
	WindowP90  float64
}

// Stats computes the current statistics.
func (k *KernelTimer) Stats() KernelStats {
	s := KernelStats{
		Count: k.count,
		Avg:   k.Average(),
		Min:   k.min,
		Max:   k.max,
	}
	if k.sampleCount == 0 {
		return s
	}

	window := make([]float64, k.sampleCount)
	copy(window, k.samples[:k.sampleCount])
	s.WindowMean, s.WindowStd = MeanStd(window)

	sort.Float64s(window)
	s.WindowP50 = Percentile(window, 0.50)
	s.WindowP90 = Percentile(window, 0.90)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s KernelStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", s.Count),
		slog.Float64("avg_s", s.Avg.Seconds()),
		slog.Float64("min_s", s.Min.Seconds()),
		slog.Float64("max_s", s.Max.Seconds()),
		slog.Float64("window_std_s", s.WindowStd),
		slog.Float64("window_p90_s", s.WindowP90),
	)
}

// PerfRecord is one perf.csv row, written at every output step.
type PerfRecord struct {
	Step        int     `csv:"step"`
	Snapshot    int     `csv:"snapshot"`
	KernelAvgS  float64 `csv:"kernel_avg_s"`
	KernelMinS  float64 `csv:"kernel_min_s"`
	KernelMaxS  float64 `csv:"kernel_max_s"`
	KernelStdS  float64 `csv:"kernel_std_s"`
	WallSeconds float64 `csv:"wall_s"`
}

// ToCSV converts the stats to a perf.csv row.
func (s KernelStats) ToCSV(step, snapshot int, wall time.Duration) PerfRecord {
	return PerfRecord{
		Step:        step,
		Snapshot:    snapshot,
		KernelAvgS:  s.Avg.Seconds(),
		KernelMinS:  s.Min.Seconds(),
		KernelMaxS:  s.Max.Seconds(),
		KernelStdS:  s.WindowStd,
		WallSeconds: wall.Seconds(),
	}
}
