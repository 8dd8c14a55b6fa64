package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/casualjim/courier/pkg/slogx"
	"github.com/casualjim/courier/sink"
	"github.com/fogfish/opts"
)

const (
	// DefaultSlowThreshold is the latency above which a request triggers a
	// slow-response alert.
	DefaultSlowThreshold = 30 * time.Second

	// DefaultMaxHistory is the sample ring capacity.
	DefaultMaxHistory = 1000

	// minPercentileSamples is the smallest population for which a percentile
	// is reported at all; below this the value would be noise.
	minPercentileSamples = 20
)

// Sample is one completed request's latency measurement. Samples are
// immutable once recorded.
type Sample struct {
	RequestID string
	Duration  time.Duration
	UserID    string
	ChannelID string
}

// Bucket is one fixed histogram range and the number of retained samples
// falling into it.
type Bucket struct {
	Label string
	Count int
}

// The five fixed histogram ranges. Upper bounds are exclusive; the last
// bucket is unbounded.
var (
	bucketBounds = [...]time.Duration{time.Second, 2 * time.Second, 5 * time.Second, 10 * time.Second}
	bucketLabels = [...]string{"0-1s", "1-2s", "2-5s", "5-10s", "10s+"}
)

// Recorder accumulates per-request latency samples in a fixed-capacity ring
// and answers rolling-statistics queries over the retained window. It has no
// phases: it accepts Record calls for its entire lifetime and is safe for
// concurrent use by every request-handling goroutine.
type Recorder struct {
	mu      sync.RWMutex
	samples []Sample
	next    int

	slowThreshold time.Duration
	maxHistory    int
	alerts        sink.AlertSink
}

var (
	// WithSlowThreshold overrides the latency ceiling for slow-response alerts.
	WithSlowThreshold = opts.ForName[Recorder, time.Duration]("slowThreshold")

	// WithMaxHistory overrides the sample ring capacity.
	WithMaxHistory = opts.ForName[Recorder, int]("maxHistory")

	// WithAlertSink sets the destination for slow-response alerts. Without
	// one, alerts are silently skipped.
	WithAlertSink = opts.ForName[Recorder, sink.AlertSink]("alerts")
)

// New creates a Recorder.
func New(options ...opts.Option[Recorder]) *Recorder {
	r := &Recorder{
		slowThreshold: DefaultSlowThreshold,
		maxHistory:    DefaultMaxHistory,
	}
	if err := opts.Apply(r, options); err != nil {
		panic(err)
	}
	return r
}

// Record appends the sample, evicting the oldest one once the ring is at
// capacity. A sample slower than the threshold synchronously forwards a
// slow-response alert; a missing or failing alert sink never surfaces to the
// caller.
func (r *Recorder) Record(ctx context.Context, sample Sample) {
	r.mu.Lock()
	if len(r.samples) < r.maxHistory {
		r.samples = append(r.samples, sample)
	} else {
		r.samples[r.next] = sample
		r.next = (r.next + 1) % r.maxHistory
	}
	r.mu.Unlock()

	if sample.Duration <= r.slowThreshold {
		return
	}

	slog.Warn("slow response",
		slog.String("request_id", sample.RequestID),
		slogx.Dur("duration", sample.Duration),
		slogx.Dur("threshold", r.slowThreshold),
	)
	if r.alerts == nil {
		return
	}
	message := fmt.Sprintf("Request %s took %.2fs (threshold: %.0fs)",
		sample.RequestID, sample.Duration.Seconds(), r.slowThreshold.Seconds())
	if err := r.alerts.Notify(ctx, "Slow Response Detected", message, sample.ChannelID); err != nil {
		slog.Debug("dropping failed alert delivery", slogx.Error(err))
	}
}

// Len returns the number of retained samples.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.samples)
}

// Average returns the arithmetic mean latency over the retained samples. The
// second return is false when no samples are retained.
func (r *Recorder) Average() (time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.samples) == 0 {
		return 0, false
	}
	var total time.Duration
	for _, s := range r.samples {
		total += s.Duration
	}
	return total / time.Duration(len(r.samples)), true
}

// P95 returns the 95th-percentile latency over the retained samples, as the
// simple order statistic at floor(n*0.95) of the ascending-sorted durations,
// clamped to the last index. It is deliberately not an interpolated
// percentile; callers must not assume higher precision. The second return is
// false when fewer than 20 samples are retained.
func (r *Recorder) P95() (time.Duration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.samples) < minPercentileSamples {
		return 0, false
	}

	durations := make([]time.Duration, len(r.samples))
	for i, s := range r.samples {
		durations[i] = s.Duration
	}
	slices.Sort(durations)

	idx := int(math.Floor(float64(len(durations)) * 0.95))
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	return durations[idx], true
}

// Histogram counts the retained samples into the five fixed duration ranges.
// All buckets are zero when nothing is retained; the counts always sum to
// the number of retained samples.
func (r *Recorder) Histogram() []Bucket {
	r.mu.RLock()
	defer r.mu.RUnlock()

	buckets := make([]Bucket, len(bucketLabels))
	for i, label := range bucketLabels {
		buckets[i].Label = label
	}
	for _, s := range r.samples {
		buckets[bucketFor(s.Duration)].Count++
	}
	return buckets
}

func bucketFor(d time.Duration) int {
	for i, bound := range bucketBounds {
		if d < bound {
			return i
		}
	}
	return len(bucketBounds)
}

// Samples returns the retained samples in recording order, oldest first.
func (r *Recorder) Samples() []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Sample, 0, len(r.samples))
	out = append(out, r.samples[r.next:]...)
	out = append(out, r.samples[:r.next]...)
	return out
}
