package datamodel

import (
	"math"
	"time"
)

// Sample is one raw reading or interval from a source, normalized at the
// adapter boundary. Point samples have Start == End, interval samples
// (sleep segments, calendar events, mindful sessions, workouts) have
// End > Start. Exactly one of the payload pointers is set for kinds that
// carry structured data; plain numeric kinds only use Value.
type Sample struct {
	Kind     MetricKind
	Value    float64
	Start    time.Time
	End      time.Time
	Sleep    *SleepPayload
	Calendar *CalendarPayload
	Activity *ActivityPayload
	Gyro     *GyroPayload
	Workout  *WorkoutPayload
}

// IsPoint reports whether the sample is a point-in-time reading.
func (s Sample) IsPoint() bool {
	return !s.End.After(s.Start)
}

// SleepPayload carries the sleep stage of a sleep analysis segment.
type SleepPayload struct {
	Category string
}

// CalendarPayload carries the calendar event fields shipped in the record.
type CalendarPayload struct {
	ID       string
	Title    string
	AllDay   bool
	Location string
	Notes    string
}

// ActivityPayload carries the daily activity ring values and goals.
type ActivityPayload struct {
	ActiveEnergyBurned     float64
	ActiveEnergyBurnedGoal float64
	ExerciseTime           float64
	ExerciseTimeGoal       float64
	StandHours             float64
	StandHoursGoal         float64
}

// GyroPayload carries the raw rotation rate axes of a gyroscope reading.
type GyroPayload struct {
	X float64
	Y float64
	Z float64
}

// Magnitude returns the euclidean norm of the rotation rate.
func (g GyroPayload) Magnitude() float64 {
	return math.Sqrt(g.X*g.X + g.Y*g.Y + g.Z*g.Z)
}

// WorkoutPayload carries the descriptive fields of a workout session.
type WorkoutPayload struct {
	ActivityType   string
	Calories       float64
	DistanceMeters float64
}

// TimeRange is a normalized half-open interval [Start, End).
// Start <= End always holds after resolution.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the half-open interval.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}
