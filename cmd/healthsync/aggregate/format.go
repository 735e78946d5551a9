package aggregate

import (
	"math"
	"time"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
)

// FormatRecords renders one wire record per bucket. collectedAt stamps every
// record with the moment the run happened. The record's interval slices are
// always initialized, never nil, so they serialize as [] instead of null.
func FormatRecords(buckets []*Bucket, collectedAt time.Time) []datamodel.HourlyRecord {
	records := make([]datamodel.HourlyRecord, 0, len(buckets))
	for _, b := range buckets {
		records = append(records, formatBucket(b, collectedAt))
	}
	return records
}

func formatBucket(b *Bucket, collectedAt time.Time) datamodel.HourlyRecord {
	rec := datamodel.HourlyRecord{
		Timestamp:               datamodel.EpochMillis(collectedAt),
		StartDate:               datamodel.EpochMillis(b.Start),
		EndDate:                 datamodel.EpochMillis(b.End()),
		StepCount:               roundedSum(b, datamodel.StepCount),
		BasalEnergyBurned:       roundedSum(b, datamodel.BasalEnergy),
		ActiveEnergyBurned:      roundedSum(b, datamodel.ActiveEnergy),
		FlightsClimbed:          roundedSum(b, datamodel.FlightsClimbed),
		DistanceWalkingRunning:  roundedSum(b, datamodel.Distance),
		EnergyConsumed:          roundedSum(b, datamodel.EnergyConsumed),
		Protein:                 roundedSum(b, datamodel.Protein),
		Carbohydrates:           roundedSum(b, datamodel.Carbohydrates),
		Sugar:                   roundedSum(b, datamodel.Sugar),
		Water:                   roundedSum(b, datamodel.Water),
		HeartRate:               roundedMean(b, datamodel.HeartRate),
		RestingHeartRate:        roundedMean(b, datamodel.RestingHeartRate),
		HeartRateVariability:    roundedMean(b, datamodel.HeartRateVariability),
		WalkingHeartRateAverage: roundedMean(b, datamodel.WalkingHeartRateAverage),
		ActivitySummary:         activitySummaries(b),
		SleepAnalysis:           sleepItems(b),
		MindfulSession:          mindfulItems(b),
		CalendarEvents:          calendarItems(b),
		Gyroscope:               gyroscopeMagnitude(b),
	}
	return rec
}

func roundedSum(b *Bucket, kind datamodel.MetricKind) int {
	return int(math.Round(SumValues(b.Samples[kind])))
}

func roundedMean(b *Bucket, kind datamodel.MetricKind) int {
	return int(math.Round(MeanValue(b.Samples[kind])))
}

func activitySummaries(b *Bucket) []datamodel.ActivitySummaryItem {
	items := make([]datamodel.ActivitySummaryItem, 0)
	for _, s := range b.Samples[datamodel.ActivitySummary] {
		if s.Activity == nil {
			continue
		}
		items = append(items, datamodel.ActivitySummaryItem{
			Date:                   datamodel.EpochMillis(s.Start),
			ActiveEnergyBurned:     s.Activity.ActiveEnergyBurned,
			ActiveEnergyBurnedGoal: s.Activity.ActiveEnergyBurnedGoal,
			ExerciseTime:           s.Activity.ExerciseTime,
			ExerciseTimeGoal:       s.Activity.ExerciseTimeGoal,
			StandHours:             s.Activity.StandHours,
			StandHoursGoal:         s.Activity.StandHoursGoal,
		})
	}
	return items
}

func sleepItems(b *Bucket) []datamodel.SleepItem {
	samples := b.Samples[datamodel.Sleep]
	SortByStart(samples)
	items := make([]datamodel.SleepItem, 0, len(samples))
	for _, s := range samples {
		item := datamodel.SleepItem{
			StartDate: datamodel.EpochMillis(s.Start),
			EndDate:   datamodel.EpochMillis(s.End),
			Value:     s.Value,
		}
		if s.Sleep != nil {
			item.Category = s.Sleep.Category
		}
		items = append(items, item)
	}
	return items
}

func mindfulItems(b *Bucket) []datamodel.MindfulItem {
	samples := b.Samples[datamodel.MindfulSession]
	SortByStart(samples)
	items := make([]datamodel.MindfulItem, 0, len(samples))
	for _, s := range samples {
		items = append(items, datamodel.MindfulItem{
			StartDate: datamodel.EpochMillis(s.Start),
			EndDate:   datamodel.EpochMillis(s.End),
			Value:     s.Value,
		})
	}
	return items
}

func calendarItems(b *Bucket) []datamodel.CalendarEventItem {
	samples := b.Samples[datamodel.CalendarEvent]
	SortByStart(samples)
	items := make([]datamodel.CalendarEventItem, 0, len(samples))
	for _, s := range samples {
		if s.Calendar == nil {
			continue
		}
		items = append(items, datamodel.CalendarEventItem{
			ID:        s.Calendar.ID,
			Title:     s.Calendar.Title,
			StartDate: datamodel.EpochMillis(s.Start),
			EndDate:   datamodel.EpochMillis(s.End),
			AllDay:    s.Calendar.AllDay,
			Location:  s.Calendar.Location,
			Notes:     s.Calendar.Notes,
		})
	}
	return items
}

// gyroscopeMagnitude reports the snapshot magnitude at 2-decimal precision,
// the only non-integer scalar in the record.
func gyroscopeMagnitude(b *Bucket) float64 {
	samples := b.Samples[datamodel.Gyroscope]
	if len(samples) == 0 {
		return 0
	}
	return math.Round(samples[0].Value*100) / 100
}
