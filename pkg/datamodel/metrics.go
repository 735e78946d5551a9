package datamodel

// MetricKind identifies one family of telemetry data collected from the phone.
// The string values match the identifiers the platform health store uses, so
// they can be passed through to capability collaborators unchanged.
type MetricKind string

const (
	StepCount               MetricKind = "StepCount"
	HeartRate               MetricKind = "HeartRate"
	RestingHeartRate        MetricKind = "RestingHeartRate"
	HeartRateVariability    MetricKind = "HeartRateVariability"
	WalkingHeartRateAverage MetricKind = "WalkingHeartRateAverage"
	ActiveEnergy            MetricKind = "ActiveEnergyBurned"
	BasalEnergy             MetricKind = "BasalEnergyBurned"
	FlightsClimbed          MetricKind = "FlightsClimbed"
	Distance                MetricKind = "DistanceWalkingRunning"
	EnergyConsumed          MetricKind = "EnergyConsumed"
	Protein                 MetricKind = "Protein"
	Carbohydrates           MetricKind = "Carbohydrates"
	Sugar                   MetricKind = "Sugar"
	Water                   MetricKind = "Water"
	Sleep                   MetricKind = "SleepAnalysis"
	MindfulSession          MetricKind = "MindfulSession"
	ActivitySummary         MetricKind = "ActivitySummary"
	CalendarEvent           MetricKind = "CalendarEvent"
	Gyroscope               MetricKind = "Gyroscope"
	Workout                 MetricKind = "Workout"
)

// AggregationPolicy is the reduction rule applied to the samples of one
// MetricKind inside one hour bucket.
type AggregationPolicy int

const (
	// PolicySum adds up the values of all samples whose start falls into the bucket.
	PolicySum AggregationPolicy = iota
	// PolicyAverage takes the arithmetic mean; an empty bucket yields 0.
	PolicyAverage
	// PolicyIntervalPassthrough keeps every sample overlapping the bucket unreduced.
	PolicyIntervalPassthrough
	// PolicyScalarSnapshot attaches the most recent single reading to every bucket.
	PolicyScalarSnapshot
)

var policies = map[MetricKind]AggregationPolicy{
	StepCount:               PolicySum,
	ActiveEnergy:            PolicySum,
	BasalEnergy:             PolicySum,
	FlightsClimbed:          PolicySum,
	Distance:                PolicySum,
	EnergyConsumed:          PolicySum,
	Protein:                 PolicySum,
	Carbohydrates:           PolicySum,
	Sugar:                   PolicySum,
	Water:                   PolicySum,
	HeartRate:               PolicyAverage,
	RestingHeartRate:        PolicyAverage,
	HeartRateVariability:    PolicyAverage,
	WalkingHeartRateAverage: PolicyAverage,
	Sleep:                   PolicyIntervalPassthrough,
	MindfulSession:          PolicyIntervalPassthrough,
	CalendarEvent:           PolicyIntervalPassthrough,
	Workout:                 PolicyIntervalPassthrough,
	ActivitySummary:         PolicyIntervalPassthrough,
	Gyroscope:               PolicyScalarSnapshot,
}

// PolicyFor returns the aggregation policy of a metric kind. Unknown kinds
// fall back to PolicySum, which degrades to 0 for empty sample sets.
func PolicyFor(kind MetricKind) AggregationPolicy {
	if p, ok := policies[kind]; ok {
		return p
	}
	return PolicySum
}

// AllKinds lists every metric kind the pipeline collects, in a stable order.
func AllKinds() []MetricKind {
	return []MetricKind{
		StepCount,
		HeartRate,
		RestingHeartRate,
		HeartRateVariability,
		WalkingHeartRateAverage,
		ActiveEnergy,
		BasalEnergy,
		FlightsClimbed,
		Distance,
		EnergyConsumed,
		Protein,
		Carbohydrates,
		Sugar,
		Water,
		Sleep,
		MindfulSession,
		ActivitySummary,
		CalendarEvent,
		Gyroscope,
		Workout,
	}
}
