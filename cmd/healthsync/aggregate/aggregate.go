package aggregate

import (
	"sort"

	"github.com/lifepulse-app/lifepulse/pkg/datamodel"
	"gonum.org/v1/gonum/stat"
)

// SumValues adds up the values of all samples. An empty set yields 0.
func SumValues(samples []datamodel.Sample) float64 {
	var total float64
	for _, s := range samples {
		total += s.Value
	}
	return total
}

// MeanValue returns the arithmetic mean of the sample values, 0 for an
// empty set.
func MeanValue(samples []datamodel.Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	values := make([]float64, 0, len(samples))
	for _, s := range samples {
		values = append(values, s.Value)
	}
	return stat.Mean(values, nil)
}

// SortByStart orders samples chronologically in place.
func SortByStart(samples []datamodel.Sample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Start.Before(samples[j].Start)
	})
}
