package datamodel

import (
	"strconv"
	"time"
)

// HourlyRecord is the fixed wire schema shipped to the backend, one record
// per covered hour. All epoch fields are strings containing milliseconds, as
// the backend expects. Numeric metrics are rounded to integers, except the
// gyroscope magnitude which keeps 2-decimal precision.
type HourlyRecord struct {
	Timestamp               string                `json:"timestamp"`
	StepCount               int                   `json:"step_count"`
	StartDate               string                `json:"startDate"`
	EndDate                 string                `json:"endDate"`
	BasalEnergyBurned       int                   `json:"basal_energy_burned"`
	ActiveEnergyBurned      int                   `json:"active_energy_burned"`
	ActivitySummary         []ActivitySummaryItem `json:"activity_summary"`
	FlightsClimbed          int                   `json:"flights_climbed"`
	DistanceWalkingRunning  int                   `json:"distance_walking_running"`
	HeartRate               int                   `json:"heart_rate"`
	RestingHeartRate        int                   `json:"resting_heart_rate"`
	HeartRateVariability    int                   `json:"heart_rate_variability"`
	WalkingHeartRateAverage int                   `json:"walking_heart_rate_average"`
	EnergyConsumed          int                   `json:"energy_consumed"`
	Protein                 int                   `json:"protein"`
	Carbohydrates           int                   `json:"carbohydrates"`
	Sugar                   int                   `json:"sugar"`
	Water                   int                   `json:"water"`
	SleepAnalysis           []SleepItem           `json:"sleep_analysis"`
	MindfulSession          []MindfulItem         `json:"mindful_session"`
	CalendarEvents          []CalendarEventItem   `json:"calendar_events"`
	Gyroscope               float64               `json:"gyroscope"`
}

// ActivitySummaryItem is one activity ring summary inside a record.
type ActivitySummaryItem struct {
	Date                   string  `json:"date"`
	ActiveEnergyBurned     float64 `json:"activeEnergyBurned"`
	ActiveEnergyBurnedGoal float64 `json:"activeEnergyBurnedGoal"`
	ExerciseTime           float64 `json:"exerciseTime"`
	ExerciseTimeGoal       float64 `json:"exerciseTimeGoal"`
	StandHours             float64 `json:"standHours"`
	StandHoursGoal         float64 `json:"standHoursGoal"`
}

// SleepItem is one sleep segment overlapping the record's hour.
type SleepItem struct {
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Value     float64 `json:"value"`
	Category  string  `json:"category"`
}

// MindfulItem is one mindful session overlapping the record's hour.
type MindfulItem struct {
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Value     float64 `json:"value"`
}

// CalendarEventItem is one calendar event overlapping the record's hour.
type CalendarEventItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	AllDay    bool   `json:"allDay"`
	Location  string `json:"location"`
	Notes     string `json:"notes"`
}

// EpochMillis renders a timestamp the way the backend expects epoch fields:
// a string of milliseconds since the Unix epoch.
func EpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
