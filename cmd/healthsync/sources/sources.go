package sources

import (
	"context"
	"errors"
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
)

// Reason classifies the outcome of one fetch. Everything except ReasonOK
// degrades to an empty sample list instead of failing the batch.
type Reason string

const (
	ReasonOK          Reason = "ok"
	ReasonDenied      Reason = "denied"
	ReasonUnavailable Reason = "unavailable"
	ReasonError       Reason = "error"
)

// Sentinel errors capability collaborators return for the two expected
// degradation conditions. Anything else is treated as an unexpected fault.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnavailable      = errors.New("capability unavailable")
)

// FetchResult is the outcome of fetching one metric kind. Samples is never
// nil; on degradation it is empty and Reason carries the cause. Err is only
// set for ReasonError and is informational, it never aborts a batch.
type FetchResult struct {
	Kind    datamodel.MetricKind
	Samples []datamodel.Sample
	Reason  Reason
	Err     error
}

// Adapter exposes a uniform fetch contract over a capability it does not
// own, one adapter per metric family. Fetch must not return a Go error for
// permission or capability conditions; both map to an empty FetchResult
// with the matching reason code.
type Adapter interface {
	Name() string
	Kinds() []datamodel.MetricKind
	Fetch(ctx context.Context, kind datamodel.MetricKind, r datamodel.TimeRange) FetchResult
}

// HealthStore is the platform health capability the core consumes.
// Implementations return ErrPermissionDenied / ErrUnavailable for the
// expected degradation conditions.
type HealthStore interface {
	IsAvailable(ctx context.Context) bool
	RequestAuthorization(ctx context.Context, kinds []datamodel.MetricKind) error
	FetchSamples(ctx context.Context, kind datamodel.MetricKind, r datamodel.TimeRange) ([]HealthSample, error)
}

// HealthSample is one loosely-shaped row as the platform store reports it.
// Energy sources report their value under Kilocalories instead of Value, and
// some rows omit the end date entirely; normalization happens once at the
// adapter boundary.
type HealthSample struct {
	Value        float64                    `json:"value"`
	Kilocalories float64                    `json:"kilocalories"`
	Category     string                     `json:"category"`
	StartDate    time.Time                  `json:"startDate"`
	EndDate      time.Time                  `json:"endDate"`
	ActivityType string                     `json:"activityType"`
	Distance     float64                    `json:"distance"`
	Summary      *datamodel.ActivityPayload `json:"summary,omitempty"`
}

// CalendarStore is the calendar capability the core consumes.
type CalendarStore interface {
	RequestPermission(ctx context.Context) (bool, error)
	ListEvents(ctx context.Context, calendarIDs []string, r datamodel.TimeRange) ([]CalendarEventRow, error)
}

// CalendarEventRow is one event as the calendar source reports it.
type CalendarEventRow struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	AllDay    bool      `json:"allDay"`
	Location  string    `json:"location"`
	Notes     string    `json:"notes"`
}

// MotionStore is the motion sensor capability the core consumes. Subscribe
// starts delivering readings at the given interval until the returned stop
// function is called.
type MotionStore interface {
	IsAvailable(ctx context.Context) bool
	Subscribe(ctx context.Context, interval time.Duration, fn func(GyroReading)) (stop func(), err error)
}

// GyroReading is one raw gyroscope reading.
type GyroReading struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

func empty(kind datamodel.MetricKind, reason Reason, err error) FetchResult {
	return FetchResult{
		Kind:    kind,
		Samples: []datamodel.Sample{},
		Reason:  reason,
		Err:     err,
	}
}
