package aggregate

import (
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"go.uber.org/zap"
)

// MaxBuckets caps one run at a week of hourly buckets. Ranges longer than
// that are truncated from the front; the oldest hours are dropped.
const MaxBuckets = 168

// Bucket is one local-time hour of a collection range with the samples
// assigned to it, grouped by kind.
type Bucket struct {
	Start   time.Time
	Samples map[datamodel.MetricKind][]datamodel.Sample
}

// End returns the exclusive upper bound of the bucket's hour.
func (b *Bucket) End() time.Time {
	return nextHour(b.Start)
}

// Range returns the bucket's hour as a time range.
func (b *Bucket) Range() datamodel.TimeRange {
	return datamodel.TimeRange{Start: b.Start, End: b.End()}
}

func (b *Bucket) add(kind datamodel.MetricKind, s datamodel.Sample) {
	b.Samples[kind] = append(b.Samples[kind], s)
}

// BucketRange lays out one empty bucket per local-time hour covered by the
// range, capped at MaxBuckets. Hours are walked via the calendar rather than
// fixed 1h addition, so daylight saving transitions stay aligned with wall
// clock hours.
func BucketRange(r datamodel.TimeRange) []*Bucket {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), r.Start.Hour(), 0, 0, 0, r.Start.Location())

	var buckets []*Bucket
	for cur := start; cur.Before(r.End); cur = nextHour(cur) {
		buckets = append(buckets, &Bucket{
			Start:   cur,
			Samples: make(map[datamodel.MetricKind][]datamodel.Sample),
		})
	}
	if len(buckets) > MaxBuckets {
		zap.S().Warnf("Range covers %d hours, keeping the most recent %d", len(buckets), MaxBuckets)
		buckets = buckets[len(buckets)-MaxBuckets:]
	}
	return buckets
}

// Assign distributes samples over the buckets according to the kind's
// aggregation policy. Samples outside every bucket are dropped silently.
func Assign(buckets []*Bucket, kind datamodel.MetricKind, samples []datamodel.Sample) {
	if len(buckets) == 0 || len(samples) == 0 {
		return
	}

	switch datamodel.PolicyFor(kind) {
	case datamodel.PolicyScalarSnapshot:
		// The snapshot is attached identically to every bucket; only the
		// most recent sample counts.
		latest := samples[0]
		for _, s := range samples[1:] {
			if s.Start.After(latest.Start) {
				latest = s
			}
		}
		for _, b := range buckets {
			b.add(kind, latest)
		}
	case datamodel.PolicyIntervalPassthrough:
		for _, s := range samples {
			for _, b := range buckets {
				if overlaps(b, s) {
					b.add(kind, s)
				}
			}
		}
	default:
		// Sum and average assign by the sample's start instant only.
		for _, s := range samples {
			if b := bucketContaining(buckets, s.Start); b != nil {
				b.add(kind, s)
			}
		}
	}
}

// overlaps reports whether a sample's interval touches the bucket's hour.
// Point samples count only for the bucket containing their instant.
func overlaps(b *Bucket, s datamodel.Sample) bool {
	if s.IsPoint() {
		return !s.Start.Before(b.Start) && s.Start.Before(b.End())
	}
	return s.Start.Before(b.End()) && s.End.After(b.Start)
}

func nextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour()+1, 0, 0, 0, t.Location())
}

func bucketContaining(buckets []*Bucket, t time.Time) *Bucket {
	for _, b := range buckets {
		if !t.Before(b.Start) && t.Before(b.End()) {
			return b
		}
	}
	return nil
}
