package collector

import (
	"context"
	"sync"
	"time"

	"github.com/lifepulse-app/lifepulse/cmd/healthsync/sources"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthsync_source_fetches_total",
		Help: "The total number of source fetches, labelled by metric kind and outcome",
	}, []string{"kind", "reason"})
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "healthsync_batch_fetch_duration_seconds",
		Help: "The wall clock duration of one full collection fan-out",
	})
)

// Batch is the outcome of one fan-out across every registered adapter.
// Results holds exactly one entry per metric kind the adapters cover,
// degraded kinds included.
type Batch struct {
	Range   datamodel.TimeRange
	Results map[datamodel.MetricKind]sources.FetchResult
}

// Samples returns the samples collected for one kind, never nil.
func (b *Batch) Samples(kind datamodel.MetricKind) []datamodel.Sample {
	if r, ok := b.Results[kind]; ok {
		return r.Samples
	}
	return []datamodel.Sample{}
}

// Degraded lists every kind that did not come back clean, with its reason.
func (b *Batch) Degraded() map[datamodel.MetricKind]sources.Reason {
	out := make(map[datamodel.MetricKind]sources.Reason)
	for kind, r := range b.Results {
		if r.Reason != sources.ReasonOK {
			out[kind] = r.Reason
		}
	}
	return out
}

// Collector fans one time range out to every (adapter, kind) pair in
// parallel and gathers the results. A failing source never fails the batch;
// it contributes an empty result tagged with its degradation reason.
type Collector struct {
	adapters []sources.Adapter
}

// New returns a Collector over the given adapters.
func New(adapters ...sources.Adapter) *Collector {
	return &Collector{adapters: adapters}
}

// Collect runs one full fan-out for the given range. It blocks until every
// fetch has finished or timed out.
func (c *Collector) Collect(ctx context.Context, r datamodel.TimeRange) *Batch {
	start := time.Now()

	batch := &Batch{
		Range:   r,
		Results: make(map[datamodel.MetricKind]sources.FetchResult),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, adapter := range c.adapters {
		for _, kind := range adapter.Kinds() {
			wg.Add(1)
			go func(adapter sources.Adapter, kind datamodel.MetricKind) {
				defer wg.Done()
				result := adapter.Fetch(ctx, kind, r)
				fetchesTotal.WithLabelValues(string(kind), string(result.Reason)).Inc()
				mu.Lock()
				batch.Results[kind] = result
				mu.Unlock()
			}(adapter, kind)
		}
	}
	wg.Wait()

	fetchDuration.Observe(time.Since(start).Seconds())
	if degraded := batch.Degraded(); len(degraded) > 0 {
		zap.S().Infof("Collected %d kinds, %d degraded: %v", len(batch.Results), len(degraded), degraded)
	} else {
		zap.S().Debugf("Collected %d kinds", len(batch.Results))
	}
	return batch
}
