package sources

import (
	"context"
	"errors"
	"time"

	"github.com/lifepulse-app/lifepulse/cmd/healthsync/permission"
	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single source fetch. A fetch that exceeds it
// degrades to an empty result tagged unavailable, so one stuck source cannot
// stall the whole batch.
const DefaultFetchTimeout = 30 * time.Second

// HealthAdapter covers every biometric, nutrition, activity, sleep, mindful
// and workout kind over a HealthStore. Authorization is requested lazily on
// first use per kind and remembered through the permission cache.
type HealthAdapter struct {
	store   HealthStore
	perms   *permission.Cache
	timeout time.Duration
}

// NewHealthAdapter wires a HealthAdapter over the given store and cache.
func NewHealthAdapter(store HealthStore, perms *permission.Cache) *HealthAdapter {
	return &HealthAdapter{store: store, perms: perms, timeout: DefaultFetchTimeout}
}

func (a *HealthAdapter) Name() string {
	return "health"
}

func (a *HealthAdapter) Kinds() []datamodel.MetricKind {
	kinds := make([]datamodel.MetricKind, 0, len(datamodel.AllKinds()))
	for _, k := range datamodel.AllKinds() {
		if k == datamodel.CalendarEvent || k == datamodel.Gyroscope {
			continue
		}
		kinds = append(kinds, k)
	}
	return kinds
}

func (a *HealthAdapter) Fetch(ctx context.Context, kind datamodel.MetricKind, r datamodel.TimeRange) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if !a.store.IsAvailable(ctx) {
		return empty(kind, ReasonUnavailable, nil)
	}
	if err := a.ensureAuthorized(ctx, kind); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			zap.S().Warnf("Permission denied for %s", kind)
			return empty(kind, ReasonDenied, nil)
		}
		if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return empty(kind, ReasonUnavailable, nil)
		}
		zap.S().Warnf("Authorization for %s failed: %s", kind, err)
		return empty(kind, ReasonError, err)
	}

	rows, err := a.store.FetchSamples(ctx, kind, r)
	if err != nil {
		switch {
		case errors.Is(err, ErrPermissionDenied):
			zap.S().Warnf("Permission denied fetching %s", kind)
			return empty(kind, ReasonDenied, nil)
		case errors.Is(err, ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
			zap.S().Warnf("Source for %s unavailable: %s", kind, err)
			return empty(kind, ReasonUnavailable, nil)
		default:
			zap.S().Warnf("Fetching %s failed: %s", kind, err)
			return empty(kind, ReasonError, err)
		}
	}

	samples := make([]datamodel.Sample, 0, len(rows))
	for _, row := range rows {
		samples = append(samples, normalizeHealthSample(kind, row))
	}
	return FetchResult{Kind: kind, Samples: samples, Reason: ReasonOK}
}

func (a *HealthAdapter) ensureAuthorized(ctx context.Context, kind datamodel.MetricKind) error {
	if a.perms.IsAuthorized(kind) {
		return nil
	}
	if err := a.store.RequestAuthorization(ctx, []datamodel.MetricKind{kind}); err != nil {
		// Denials are deliberately not cached, the next run asks again.
		return err
	}
	a.perms.MarkAuthorized(kind)
	return nil
}

// normalizeHealthSample maps one loosely-shaped source row onto the
// canonical sample shape. Malformed rows degrade to zero values instead of
// being rejected.
func normalizeHealthSample(kind datamodel.MetricKind, row HealthSample) datamodel.Sample {
	value := row.Value
	if value == 0 && row.Kilocalories != 0 {
		// Energy sources report kilocalories under their own key. Other
		// kinds keep their zero rather than picking up a stray field.
		switch kind {
		case datamodel.ActiveEnergy, datamodel.BasalEnergy:
			value = row.Kilocalories
		}
	}

	start := row.StartDate
	end := row.EndDate
	if end.Before(start) || end.IsZero() {
		end = start
	}

	s := datamodel.Sample{Kind: kind, Value: value, Start: start, End: end}
	switch kind {
	case datamodel.Sleep:
		s.Sleep = &datamodel.SleepPayload{Category: row.Category}
	case datamodel.ActivitySummary:
		if row.Summary != nil {
			payload := *row.Summary
			s.Activity = &payload
		} else {
			s.Activity = &datamodel.ActivityPayload{}
		}
	case datamodel.Workout:
		s.Workout = &datamodel.WorkoutPayload{
			ActivityType:   row.ActivityType,
			Calories:       row.Kilocalories,
			DistanceMeters: row.Distance,
		}
	}
	return s
}
