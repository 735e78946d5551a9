package sources

import (
	"context"
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"
	"go.uber.org/zap"
)

const (
	// gyroPollInterval is how often the background subscription refreshes
	// the cached reading.
	gyroPollInterval = 100 * time.Millisecond
	// gyroReadingTTL bounds how stale a cached reading may be before the
	// adapter reports the sensor as unavailable.
	gyroReadingTTL = 5 * time.Minute
)

const latestKey = "latest"

// MotionAdapter keeps the most recent gyroscope reading in a TTL cache fed
// by a background subscription. A collection run only ever pulls that
// snapshot, it never subscribes itself.
type MotionAdapter struct {
	store  MotionStore
	latest *expiremap.ExpireMap[string, GyroReading]
	stop   func()
}

// NewMotionAdapter wires a MotionAdapter over the given store. Start must be
// called before readings are served.
func NewMotionAdapter(store MotionStore) *MotionAdapter {
	return newMotionAdapter(store, gyroReadingTTL)
}

func newMotionAdapter(store MotionStore, ttl time.Duration) *MotionAdapter {
	return &MotionAdapter{
		store:  store,
		latest: expiremap.NewEx[string, GyroReading](time.Minute, ttl),
	}
}

// Start begins the background subscription that keeps the latest reading
// fresh. It is a no-op when the sensor is not available.
func (a *MotionAdapter) Start(ctx context.Context) {
	if !a.store.IsAvailable(ctx) {
		zap.S().Infof("Gyroscope not available, motion readings will be empty")
		return
	}
	stop, err := a.store.Subscribe(ctx, gyroPollInterval, func(r GyroReading) {
		a.latest.Set(latestKey, r)
	})
	if err != nil {
		zap.S().Warnf("Gyroscope subscription failed: %s", err)
		return
	}
	a.stop = stop
}

// Stop ends the background subscription.
func (a *MotionAdapter) Stop() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
}

func (a *MotionAdapter) Name() string {
	return "motion"
}

func (a *MotionAdapter) Kinds() []datamodel.MetricKind {
	return []datamodel.MetricKind{datamodel.Gyroscope}
}

// Fetch returns a snapshot of the most recent cached reading. The time range
// is ignored: the snapshot is attached identically to every bucket of a run.
func (a *MotionAdapter) Fetch(_ context.Context, kind datamodel.MetricKind, _ datamodel.TimeRange) FetchResult {
	reading, ok := a.latest.Load(latestKey)
	if !ok || reading == nil {
		return empty(kind, ReasonUnavailable, nil)
	}
	gyro := datamodel.GyroPayload{X: reading.X, Y: reading.Y, Z: reading.Z}
	return FetchResult{
		Kind: kind,
		Samples: []datamodel.Sample{{
			Kind:  kind,
			Value: gyro.Magnitude(),
			Start: reading.Timestamp,
			End:   reading.Timestamp,
			Gyro:  &gyro,
		}},
		Reason: ReasonOK,
	}
}
